package grpc

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"

	consultav1 "consulta/backend/internal/api/consultav1"
	"consulta/backend/internal/domain"
	"consulta/backend/internal/service/consultations"
	"consulta/backend/internal/service/materializer"
	"consulta/backend/internal/store"
)

type ConsultationsServer struct {
	consultav1.UnimplementedConsultationsServiceServer

	svc           consultationsService
	materializer  materializeRunner
	defaultWindow int
	log           *slog.Logger
}

type consultationsService interface {
	CreateBooking(ctx context.Context, in consultations.CreateInput) (domain.Consultation, error)
	UpdateBooking(ctx context.Context, id int64, in consultations.UpdateInput) (domain.Consultation, error)
	DeleteBooking(ctx context.Context, id int64) error
	GetConsultation(ctx context.Context, id int64) (domain.Consultation, error)
	ListOfficeConsultations(ctx context.Context, officeID int64, windowStart, windowEnd time.Time) ([]domain.Consultation, error)
	CancelDirect(ctx context.Context, id int64, reason string) (domain.Consultation, error)
	CancelSingleDate(ctx context.Context, memberID int64, target time.Time, reason string) (domain.Consultation, error)
	CancelFromDateForward(ctx context.Context, memberID int64, fromDate time.Time, reason string) (consultations.CancelResult, error)
	ListCancelledDates(ctx context.Context, memberID int64) ([]domain.Consultation, error)
}

type materializeRunner interface {
	Run(ctx context.Context, windowDays int) (materializer.Result, error)
}

// NewConsultationsServer wires the RPC surface. runner may be nil, in which case
// MaterializeOccurrences reports Unimplemented.
func NewConsultationsServer(svc consultationsService, runner materializeRunner, defaultWindowDays int, log *slog.Logger) *ConsultationsServer {
	if log == nil {
		log = slog.Default()
	}
	return &ConsultationsServer{
		svc:           svc,
		materializer:  runner,
		defaultWindow: defaultWindowDays,
		log:           log.With(slog.String("component", "grpc.consultations")),
	}
}

func (s *ConsultationsServer) rpcLogger(ctx context.Context, rpc string) *slog.Logger {
	log := s.log.With(slog.String("rpc", rpc))
	if id := requestID(ctx); id != "" {
		log = log.With(slog.String("request_id", id))
	}
	return log
}

func requestID(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get("x-request-id")
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}

// errorStatus maps a service error to a gRPC status. conflictCode is the code
// used for conflicts, which differ between slot collisions and repeated
// cancellations.
func errorStatus(log *slog.Logger, err error, action string, conflictCode codes.Code, attrs ...any) error {
	switch consultations.KindOf(err) {
	case consultations.KindValidation:
		log.Warn("invalid request", append([]any{slog.Any("err", err)}, attrs...)...)
		return status.Error(codes.InvalidArgument, err.Error())
	case consultations.KindConflict:
		log.Info(action+" conflict", append([]any{slog.Any("err", err)}, attrs...)...)
		return status.Error(conflictCode, err.Error())
	case consultations.KindNotFound:
		log.Info("consultation not found", attrs...)
		return status.Error(codes.NotFound, err.Error())
	case consultations.KindBusinessRule:
		log.Info(action+" rejected", append([]any{slog.Any("err", err)}, attrs...)...)
		return status.Error(codes.FailedPrecondition, err.Error())
	}
	if errors.Is(err, context.DeadlineExceeded) {
		log.Warn(action+" timed out", attrs...)
		return status.Error(codes.DeadlineExceeded, "request timed out")
	}
	log.Error(action+" failed", append([]any{slog.Any("err", err)}, attrs...)...)
	return status.Error(codes.Internal, "internal error")
}

func (s *ConsultationsServer) CreateConsultation(ctx context.Context, req *consultav1.CreateConsultationRequest) (*consultav1.CreateConsultationResponse, error) {
	log := s.rpcLogger(ctx, "CreateConsultation")

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	in := consultations.CreateInput{
		OfficeID:        req.OfficeId,
		UserID:          req.UserId,
		StartDate:       optionalTime(req.StartDate),
		EndDate:         optionalTime(req.EndDate),
		WeeklyFrequency: int(req.WeeklyFrequency),
	}
	if req.IsFlex != nil {
		v := req.IsFlex.GetValue()
		in.IsFlex = &v
	}
	if req.FirstId != 0 {
		v := req.FirstId
		in.FirstID = &v
	}

	c, err := s.svc.CreateBooking(ctx, in)
	if err != nil {
		return nil, errorStatus(log, err, "consultation create", codes.FailedPrecondition,
			slog.Int64("office_id", req.OfficeId), slog.Any("start_date", in.StartDate))
	}

	log.Info(
		"consultation created",
		slog.Int64("consultation_id", c.ID),
		slog.Int64("office_id", c.OfficeID),
		slog.Bool("is_flex", c.IsFlex),
		slog.Any("start_date", c.StartDate),
	)
	return &consultav1.CreateConsultationResponse{Consultation: toProtoConsultation(c)}, nil
}

func (s *ConsultationsServer) UpdateConsultation(ctx context.Context, req *consultav1.UpdateConsultationRequest) (*consultav1.UpdateConsultationResponse, error) {
	log := s.rpcLogger(ctx, "UpdateConsultation")

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	in := consultations.UpdateInput{
		StartDate: optionalTime(req.StartDate),
		EndDate:   optionalTime(req.EndDate),
	}
	if req.OfficeId != nil {
		v := req.OfficeId.GetValue()
		in.OfficeID = &v
	}
	if req.UserId != nil {
		v := req.UserId.GetValue()
		in.UserID = &v
	}
	if req.IsFlex != nil {
		v := req.IsFlex.GetValue()
		in.IsFlex = &v
	}
	if req.WeeklyFrequency != nil {
		v := int(req.WeeklyFrequency.GetValue())
		in.WeeklyFrequency = &v
	}

	c, err := s.svc.UpdateBooking(ctx, req.Id, in)
	if err != nil {
		return nil, errorStatus(log, err, "consultation update", codes.FailedPrecondition, slog.Int64("consultation_id", req.Id))
	}

	log.Info("consultation updated", slog.Int64("consultation_id", c.ID))
	return &consultav1.UpdateConsultationResponse{Consultation: toProtoConsultation(c)}, nil
}

func (s *ConsultationsServer) DeleteConsultation(ctx context.Context, req *consultav1.DeleteConsultationRequest) (*consultav1.DeleteConsultationResponse, error) {
	log := s.rpcLogger(ctx, "DeleteConsultation")

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	if err := s.svc.DeleteBooking(ctx, req.Id); err != nil {
		return nil, errorStatus(log, err, "consultation delete", codes.FailedPrecondition, slog.Int64("consultation_id", req.Id))
	}

	log.Info("consultation deleted", slog.Int64("consultation_id", req.Id))
	return &consultav1.DeleteConsultationResponse{}, nil
}

func (s *ConsultationsServer) GetConsultation(ctx context.Context, req *consultav1.GetConsultationRequest) (*consultav1.GetConsultationResponse, error) {
	log := s.rpcLogger(ctx, "GetConsultation")

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	c, err := s.svc.GetConsultation(ctx, req.Id)
	if err != nil {
		return nil, errorStatus(log, err, "consultation get", codes.FailedPrecondition, slog.Int64("consultation_id", req.Id))
	}
	return &consultav1.GetConsultationResponse{Consultation: toProtoConsultation(c)}, nil
}

func (s *ConsultationsServer) ListOfficeConsultations(ctx context.Context, req *consultav1.ListOfficeConsultationsRequest) (*consultav1.ListOfficeConsultationsResponse, error) {
	log := s.rpcLogger(ctx, "ListOfficeConsultations")

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	if req.WindowStart == nil || req.WindowEnd == nil {
		log.Warn("invalid request", slog.String("reason", "missing_window"), slog.Int64("office_id", req.OfficeId))
		return nil, status.Error(codes.InvalidArgument, "window_start and window_end are required")
	}

	rows, err := s.svc.ListOfficeConsultations(ctx, req.OfficeId, req.WindowStart.AsTime(), req.WindowEnd.AsTime())
	if err != nil {
		return nil, errorStatus(log, err, "consultations list", codes.FailedPrecondition, slog.Int64("office_id", req.OfficeId))
	}

	log.Debug(
		"consultations listed",
		slog.Int64("office_id", req.OfficeId),
		slog.Int("count", len(rows)),
		slog.Time("window_start", req.WindowStart.AsTime()),
		slog.Time("window_end", req.WindowEnd.AsTime()),
	)
	return &consultav1.ListOfficeConsultationsResponse{Consultations: toProtoConsultations(rows)}, nil
}

func (s *ConsultationsServer) CancelConsultation(ctx context.Context, req *consultav1.CancelConsultationRequest) (*consultav1.CancelConsultationResponse, error) {
	log := s.rpcLogger(ctx, "CancelConsultation")

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	c, err := s.svc.CancelDirect(ctx, req.Id, req.Reason)
	if err != nil {
		return nil, errorStatus(log, err, "consultation cancel", codes.FailedPrecondition, slog.Int64("consultation_id", req.Id))
	}

	log.Info("consultation cancelled", slog.Int64("consultation_id", c.ID))
	return &consultav1.CancelConsultationResponse{Consultation: toProtoConsultation(c)}, nil
}

func (s *ConsultationsServer) CancelConsultationDate(ctx context.Context, req *consultav1.CancelConsultationDateRequest) (*consultav1.CancelConsultationDateResponse, error) {
	log := s.rpcLogger(ctx, "CancelConsultationDate")

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	if req.Date == nil {
		log.Warn("invalid request", slog.String("reason", "missing_date"), slog.Int64("consultation_id", req.Id))
		return nil, status.Error(codes.InvalidArgument, "date is required")
	}

	date := req.Date.AsTime()
	exc, err := s.svc.CancelSingleDate(ctx, req.Id, date, req.Reason)
	if err != nil {
		return nil, errorStatus(log, err, "date cancel", codes.AlreadyExists,
			slog.Int64("consultation_id", req.Id), slog.Time("date", date))
	}

	log.Info(
		"consultation date cancelled",
		slog.Int64("consultation_id", req.Id),
		slog.Int64("root_id", exc.RootID()),
		slog.Time("date", date),
	)
	return &consultav1.CancelConsultationDateResponse{Exception: toProtoConsultation(exc)}, nil
}

func (s *ConsultationsServer) CancelConsultationsFromDate(ctx context.Context, req *consultav1.CancelConsultationsFromDateRequest) (*consultav1.CancelConsultationsFromDateResponse, error) {
	log := s.rpcLogger(ctx, "CancelConsultationsFromDate")

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	if req.FromDate == nil {
		log.Warn("invalid request", slog.String("reason", "missing_from_date"), slog.Int64("consultation_id", req.Id))
		return nil, status.Error(codes.InvalidArgument, "from_date is required")
	}

	from := req.FromDate.AsTime()
	res, err := s.svc.CancelFromDateForward(ctx, req.Id, from, req.Reason)
	if err != nil {
		return nil, errorStatus(log, err, "series cancel", codes.AlreadyExists,
			slog.Int64("consultation_id", req.Id), slog.Time("from_date", from))
	}

	log.Info(
		"consultations cancelled from date",
		slog.Int64("consultation_id", req.Id),
		slog.Time("from_date", from),
		slog.Int("cancelled_count", res.CancelledCount),
	)
	return &consultav1.CancelConsultationsFromDateResponse{
		CancelledCount: int32(res.CancelledCount),
		Message:        res.Message,
	}, nil
}

func (s *ConsultationsServer) ListCancelledDates(ctx context.Context, req *consultav1.ListCancelledDatesRequest) (*consultav1.ListCancelledDatesResponse, error) {
	log := s.rpcLogger(ctx, "ListCancelledDates")

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	rows, err := s.svc.ListCancelledDates(ctx, req.Id)
	if err != nil {
		return nil, errorStatus(log, err, "cancelled dates list", codes.FailedPrecondition, slog.Int64("consultation_id", req.Id))
	}

	log.Debug("cancelled dates listed", slog.Int64("consultation_id", req.Id), slog.Int("count", len(rows)))
	return &consultav1.ListCancelledDatesResponse{Exceptions: toProtoConsultations(rows)}, nil
}

func (s *ConsultationsServer) MaterializeOccurrences(ctx context.Context, req *consultav1.MaterializeOccurrencesRequest) (*consultav1.MaterializeOccurrencesResponse, error) {
	log := s.rpcLogger(ctx, "MaterializeOccurrences")

	if s.materializer == nil {
		return nil, status.Error(codes.Unimplemented, "materializer is not enabled")
	}
	window := s.defaultWindow
	if req != nil && req.WindowDays > 0 {
		window = int(req.WindowDays)
	}

	res, err := s.materializer.Run(ctx, window)
	if err != nil {
		if errors.Is(err, store.ErrLeaseHeld) {
			log.Info("materializer run skipped", slog.String("reason", "lease_held"))
			return &consultav1.MaterializeOccurrencesResponse{Skipped: true}, nil
		}
		log.Error("materializer run failed", slog.Any("err", err), slog.Int("window_days", window))
		return nil, status.Error(codes.Internal, "internal error")
	}

	log.Info(
		"materializer run requested",
		slog.Int("window_days", window),
		slog.Int("created", res.Created),
		slog.Int("series_processed", res.SeriesProcessed),
	)
	return &consultav1.MaterializeOccurrencesResponse{
		Created:         int32(res.Created),
		SeriesProcessed: int32(res.SeriesProcessed),
		SeriesFailed:    int32(res.SeriesFailed),
	}, nil
}

func optionalTime(ts *timestamppb.Timestamp) *time.Time {
	if ts == nil {
		return nil
	}
	t := ts.AsTime()
	return &t
}

func optionalTimestamp(t *time.Time) *timestamppb.Timestamp {
	if t == nil {
		return nil
	}
	return timestamppb.New(*t)
}

func toProtoConsultation(c domain.Consultation) *consultav1.Consultation {
	out := &consultav1.Consultation{
		Id:                 c.ID,
		OfficeId:           c.OfficeID,
		UserId:             c.UserID,
		StartDate:          optionalTimestamp(c.StartDate),
		EndDate:            optionalTimestamp(c.EndDate),
		IsFlex:             c.IsFlex,
		WeeklyFrequency:    int32(c.WeeklyFrequency),
		IsDeleted:          c.IsDeleted,
		IsCancelled:        c.IsCancelled,
		CancelledAt:        optionalTimestamp(c.CancelledAt),
		CancellationReason: c.CancellationReason,
		CreatedAt:          timestamppb.New(c.CreatedAt),
		UpdatedAt:          timestamppb.New(c.UpdatedAt),
	}
	if c.FirstID != nil {
		out.FirstId = *c.FirstID
	}
	return out
}

func toProtoConsultations(rows []domain.Consultation) []*consultav1.Consultation {
	out := make([]*consultav1.Consultation, 0, len(rows))
	for _, c := range rows {
		out = append(out, toProtoConsultation(c))
	}
	return out
}
