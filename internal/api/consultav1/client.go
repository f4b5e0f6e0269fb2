package consultav1

import (
	"context"

	"google.golang.org/grpc"
)

type ConsultationsServiceClient interface {
	CreateConsultation(ctx context.Context, in *CreateConsultationRequest, opts ...grpc.CallOption) (*CreateConsultationResponse, error)
	UpdateConsultation(ctx context.Context, in *UpdateConsultationRequest, opts ...grpc.CallOption) (*UpdateConsultationResponse, error)
	DeleteConsultation(ctx context.Context, in *DeleteConsultationRequest, opts ...grpc.CallOption) (*DeleteConsultationResponse, error)
	GetConsultation(ctx context.Context, in *GetConsultationRequest, opts ...grpc.CallOption) (*GetConsultationResponse, error)
	ListOfficeConsultations(ctx context.Context, in *ListOfficeConsultationsRequest, opts ...grpc.CallOption) (*ListOfficeConsultationsResponse, error)
	CancelConsultation(ctx context.Context, in *CancelConsultationRequest, opts ...grpc.CallOption) (*CancelConsultationResponse, error)
	CancelConsultationDate(ctx context.Context, in *CancelConsultationDateRequest, opts ...grpc.CallOption) (*CancelConsultationDateResponse, error)
	CancelConsultationsFromDate(ctx context.Context, in *CancelConsultationsFromDateRequest, opts ...grpc.CallOption) (*CancelConsultationsFromDateResponse, error)
	ListCancelledDates(ctx context.Context, in *ListCancelledDatesRequest, opts ...grpc.CallOption) (*ListCancelledDatesResponse, error)
	MaterializeOccurrences(ctx context.Context, in *MaterializeOccurrencesRequest, opts ...grpc.CallOption) (*MaterializeOccurrencesResponse, error)
}

type consultationsServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewConsultationsServiceClient returns a client whose calls use the JSON codec.
func NewConsultationsServiceClient(cc grpc.ClientConnInterface) ConsultationsServiceClient {
	return &consultationsServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{CallCodec()}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *consultationsServiceClient) CreateConsultation(ctx context.Context, in *CreateConsultationRequest, opts ...grpc.CallOption) (*CreateConsultationResponse, error) {
	return invoke[CreateConsultationResponse](ctx, c.cc, ConsultationsService_CreateConsultation_FullMethodName, in, opts)
}

func (c *consultationsServiceClient) UpdateConsultation(ctx context.Context, in *UpdateConsultationRequest, opts ...grpc.CallOption) (*UpdateConsultationResponse, error) {
	return invoke[UpdateConsultationResponse](ctx, c.cc, ConsultationsService_UpdateConsultation_FullMethodName, in, opts)
}

func (c *consultationsServiceClient) DeleteConsultation(ctx context.Context, in *DeleteConsultationRequest, opts ...grpc.CallOption) (*DeleteConsultationResponse, error) {
	return invoke[DeleteConsultationResponse](ctx, c.cc, ConsultationsService_DeleteConsultation_FullMethodName, in, opts)
}

func (c *consultationsServiceClient) GetConsultation(ctx context.Context, in *GetConsultationRequest, opts ...grpc.CallOption) (*GetConsultationResponse, error) {
	return invoke[GetConsultationResponse](ctx, c.cc, ConsultationsService_GetConsultation_FullMethodName, in, opts)
}

func (c *consultationsServiceClient) ListOfficeConsultations(ctx context.Context, in *ListOfficeConsultationsRequest, opts ...grpc.CallOption) (*ListOfficeConsultationsResponse, error) {
	return invoke[ListOfficeConsultationsResponse](ctx, c.cc, ConsultationsService_ListOfficeConsultations_FullMethodName, in, opts)
}

func (c *consultationsServiceClient) CancelConsultation(ctx context.Context, in *CancelConsultationRequest, opts ...grpc.CallOption) (*CancelConsultationResponse, error) {
	return invoke[CancelConsultationResponse](ctx, c.cc, ConsultationsService_CancelConsultation_FullMethodName, in, opts)
}

func (c *consultationsServiceClient) CancelConsultationDate(ctx context.Context, in *CancelConsultationDateRequest, opts ...grpc.CallOption) (*CancelConsultationDateResponse, error) {
	return invoke[CancelConsultationDateResponse](ctx, c.cc, ConsultationsService_CancelConsultationDate_FullMethodName, in, opts)
}

func (c *consultationsServiceClient) CancelConsultationsFromDate(ctx context.Context, in *CancelConsultationsFromDateRequest, opts ...grpc.CallOption) (*CancelConsultationsFromDateResponse, error) {
	return invoke[CancelConsultationsFromDateResponse](ctx, c.cc, ConsultationsService_CancelConsultationsFromDate_FullMethodName, in, opts)
}

func (c *consultationsServiceClient) ListCancelledDates(ctx context.Context, in *ListCancelledDatesRequest, opts ...grpc.CallOption) (*ListCancelledDatesResponse, error) {
	return invoke[ListCancelledDatesResponse](ctx, c.cc, ConsultationsService_ListCancelledDates_FullMethodName, in, opts)
}

func (c *consultationsServiceClient) MaterializeOccurrences(ctx context.Context, in *MaterializeOccurrencesRequest, opts ...grpc.CallOption) (*MaterializeOccurrencesResponse, error) {
	return invoke[MaterializeOccurrencesResponse](ctx, c.cc, ConsultationsService_MaterializeOccurrences_FullMethodName, in, opts)
}
