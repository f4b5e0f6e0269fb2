package consultav1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "consulta.v1.ConsultationsService"

const (
	ConsultationsService_CreateConsultation_FullMethodName          = "/consulta.v1.ConsultationsService/CreateConsultation"
	ConsultationsService_UpdateConsultation_FullMethodName          = "/consulta.v1.ConsultationsService/UpdateConsultation"
	ConsultationsService_DeleteConsultation_FullMethodName          = "/consulta.v1.ConsultationsService/DeleteConsultation"
	ConsultationsService_GetConsultation_FullMethodName             = "/consulta.v1.ConsultationsService/GetConsultation"
	ConsultationsService_ListOfficeConsultations_FullMethodName     = "/consulta.v1.ConsultationsService/ListOfficeConsultations"
	ConsultationsService_CancelConsultation_FullMethodName          = "/consulta.v1.ConsultationsService/CancelConsultation"
	ConsultationsService_CancelConsultationDate_FullMethodName      = "/consulta.v1.ConsultationsService/CancelConsultationDate"
	ConsultationsService_CancelConsultationsFromDate_FullMethodName = "/consulta.v1.ConsultationsService/CancelConsultationsFromDate"
	ConsultationsService_ListCancelledDates_FullMethodName          = "/consulta.v1.ConsultationsService/ListCancelledDates"
	ConsultationsService_MaterializeOccurrences_FullMethodName      = "/consulta.v1.ConsultationsService/MaterializeOccurrences"
)

type ConsultationsServiceServer interface {
	CreateConsultation(context.Context, *CreateConsultationRequest) (*CreateConsultationResponse, error)
	UpdateConsultation(context.Context, *UpdateConsultationRequest) (*UpdateConsultationResponse, error)
	DeleteConsultation(context.Context, *DeleteConsultationRequest) (*DeleteConsultationResponse, error)
	GetConsultation(context.Context, *GetConsultationRequest) (*GetConsultationResponse, error)
	ListOfficeConsultations(context.Context, *ListOfficeConsultationsRequest) (*ListOfficeConsultationsResponse, error)
	CancelConsultation(context.Context, *CancelConsultationRequest) (*CancelConsultationResponse, error)
	CancelConsultationDate(context.Context, *CancelConsultationDateRequest) (*CancelConsultationDateResponse, error)
	CancelConsultationsFromDate(context.Context, *CancelConsultationsFromDateRequest) (*CancelConsultationsFromDateResponse, error)
	ListCancelledDates(context.Context, *ListCancelledDatesRequest) (*ListCancelledDatesResponse, error)
	MaterializeOccurrences(context.Context, *MaterializeOccurrencesRequest) (*MaterializeOccurrencesResponse, error)
}

// UnimplementedConsultationsServiceServer can be embedded so servers keep
// compiling when methods are added.
type UnimplementedConsultationsServiceServer struct{}

func (UnimplementedConsultationsServiceServer) CreateConsultation(context.Context, *CreateConsultationRequest) (*CreateConsultationResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateConsultation not implemented")
}
func (UnimplementedConsultationsServiceServer) UpdateConsultation(context.Context, *UpdateConsultationRequest) (*UpdateConsultationResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateConsultation not implemented")
}
func (UnimplementedConsultationsServiceServer) DeleteConsultation(context.Context, *DeleteConsultationRequest) (*DeleteConsultationResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method DeleteConsultation not implemented")
}
func (UnimplementedConsultationsServiceServer) GetConsultation(context.Context, *GetConsultationRequest) (*GetConsultationResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetConsultation not implemented")
}
func (UnimplementedConsultationsServiceServer) ListOfficeConsultations(context.Context, *ListOfficeConsultationsRequest) (*ListOfficeConsultationsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListOfficeConsultations not implemented")
}
func (UnimplementedConsultationsServiceServer) CancelConsultation(context.Context, *CancelConsultationRequest) (*CancelConsultationResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CancelConsultation not implemented")
}
func (UnimplementedConsultationsServiceServer) CancelConsultationDate(context.Context, *CancelConsultationDateRequest) (*CancelConsultationDateResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CancelConsultationDate not implemented")
}
func (UnimplementedConsultationsServiceServer) CancelConsultationsFromDate(context.Context, *CancelConsultationsFromDateRequest) (*CancelConsultationsFromDateResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CancelConsultationsFromDate not implemented")
}
func (UnimplementedConsultationsServiceServer) ListCancelledDates(context.Context, *ListCancelledDatesRequest) (*ListCancelledDatesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListCancelledDates not implemented")
}
func (UnimplementedConsultationsServiceServer) MaterializeOccurrences(context.Context, *MaterializeOccurrencesRequest) (*MaterializeOccurrencesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method MaterializeOccurrences not implemented")
}

func RegisterConsultationsServiceServer(s grpc.ServiceRegistrar, srv ConsultationsServiceServer) {
	s.RegisterService(&ConsultationsService_ServiceDesc, srv)
}

// unaryMethod builds the method descriptor for one unary RPC.
func unaryMethod[Req, Resp any](name, fullMethod string, call func(ConsultationsServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(ConsultationsServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(ConsultationsServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var ConsultationsService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ConsultationsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("CreateConsultation", ConsultationsService_CreateConsultation_FullMethodName, ConsultationsServiceServer.CreateConsultation),
		unaryMethod("UpdateConsultation", ConsultationsService_UpdateConsultation_FullMethodName, ConsultationsServiceServer.UpdateConsultation),
		unaryMethod("DeleteConsultation", ConsultationsService_DeleteConsultation_FullMethodName, ConsultationsServiceServer.DeleteConsultation),
		unaryMethod("GetConsultation", ConsultationsService_GetConsultation_FullMethodName, ConsultationsServiceServer.GetConsultation),
		unaryMethod("ListOfficeConsultations", ConsultationsService_ListOfficeConsultations_FullMethodName, ConsultationsServiceServer.ListOfficeConsultations),
		unaryMethod("CancelConsultation", ConsultationsService_CancelConsultation_FullMethodName, ConsultationsServiceServer.CancelConsultation),
		unaryMethod("CancelConsultationDate", ConsultationsService_CancelConsultationDate_FullMethodName, ConsultationsServiceServer.CancelConsultationDate),
		unaryMethod("CancelConsultationsFromDate", ConsultationsService_CancelConsultationsFromDate_FullMethodName, ConsultationsServiceServer.CancelConsultationsFromDate),
		unaryMethod("ListCancelledDates", ConsultationsService_ListCancelledDates_FullMethodName, ConsultationsServiceServer.ListCancelledDates),
		unaryMethod("MaterializeOccurrences", ConsultationsService_MaterializeOccurrences_FullMethodName, ConsultationsServiceServer.MaterializeOccurrences),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "consulta/v1/consultations.proto",
}
