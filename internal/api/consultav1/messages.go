// Package consultav1 declares the consulta.v1 gRPC contract: request and
// response messages, the service descriptor and a client.
package consultav1

import (
	"google.golang.org/protobuf/types/known/timestamppb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type Consultation struct {
	Id                 int64                  `json:"id,omitempty"`
	OfficeId           int64                  `json:"office_id,omitempty"`
	UserId             int64                  `json:"user_id,omitempty"`
	StartDate          *timestamppb.Timestamp `json:"start_date,omitempty"`
	EndDate            *timestamppb.Timestamp `json:"end_date,omitempty"`
	IsFlex             bool                   `json:"is_flex,omitempty"`
	FirstId            int64                  `json:"first_id,omitempty"`
	WeeklyFrequency    int32                  `json:"weekly_frequency,omitempty"`
	IsDeleted          bool                   `json:"is_deleted,omitempty"`
	IsCancelled        bool                   `json:"is_cancelled,omitempty"`
	CancelledAt        *timestamppb.Timestamp `json:"cancelled_at,omitempty"`
	CancellationReason string                 `json:"cancellation_reason,omitempty"`
	CreatedAt          *timestamppb.Timestamp `json:"created_at,omitempty"`
	UpdatedAt          *timestamppb.Timestamp `json:"updated_at,omitempty"`
}

type CreateConsultationRequest struct {
	OfficeId  int64                  `json:"office_id,omitempty"`
	UserId    int64                  `json:"user_id,omitempty"`
	StartDate *timestamppb.Timestamp `json:"start_date,omitempty"`
	EndDate   *timestamppb.Timestamp `json:"end_date,omitempty"`
	// IsFlex unset means a one-off booking, or a series member when FirstId is set.
	IsFlex          *wrapperspb.BoolValue `json:"is_flex,omitempty"`
	FirstId         int64                 `json:"first_id,omitempty"`
	WeeklyFrequency int32                 `json:"weekly_frequency,omitempty"`
}

type CreateConsultationResponse struct {
	Consultation *Consultation `json:"consultation,omitempty"`
}

type UpdateConsultationRequest struct {
	Id              int64                  `json:"id,omitempty"`
	OfficeId        *wrapperspb.Int64Value `json:"office_id,omitempty"`
	UserId          *wrapperspb.Int64Value `json:"user_id,omitempty"`
	StartDate       *timestamppb.Timestamp `json:"start_date,omitempty"`
	EndDate         *timestamppb.Timestamp `json:"end_date,omitempty"`
	IsFlex          *wrapperspb.BoolValue  `json:"is_flex,omitempty"`
	WeeklyFrequency *wrapperspb.Int32Value `json:"weekly_frequency,omitempty"`
}

type UpdateConsultationResponse struct {
	Consultation *Consultation `json:"consultation,omitempty"`
}

type DeleteConsultationRequest struct {
	Id int64 `json:"id,omitempty"`
}

type DeleteConsultationResponse struct{}

type GetConsultationRequest struct {
	Id int64 `json:"id,omitempty"`
}

type GetConsultationResponse struct {
	Consultation *Consultation `json:"consultation,omitempty"`
}

type ListOfficeConsultationsRequest struct {
	OfficeId    int64                  `json:"office_id,omitempty"`
	WindowStart *timestamppb.Timestamp `json:"window_start,omitempty"`
	WindowEnd   *timestamppb.Timestamp `json:"window_end,omitempty"`
}

type ListOfficeConsultationsResponse struct {
	Consultations []*Consultation `json:"consultations,omitempty"`
}

type CancelConsultationRequest struct {
	Id     int64  `json:"id,omitempty"`
	Reason string `json:"reason,omitempty"`
}

type CancelConsultationResponse struct {
	Consultation *Consultation `json:"consultation,omitempty"`
}

type CancelConsultationDateRequest struct {
	Id     int64                  `json:"id,omitempty"`
	Date   *timestamppb.Timestamp `json:"date,omitempty"`
	Reason string                 `json:"reason,omitempty"`
}

type CancelConsultationDateResponse struct {
	Exception *Consultation `json:"exception,omitempty"`
}

type CancelConsultationsFromDateRequest struct {
	Id       int64                  `json:"id,omitempty"`
	FromDate *timestamppb.Timestamp `json:"from_date,omitempty"`
	Reason   string                 `json:"reason,omitempty"`
}

type CancelConsultationsFromDateResponse struct {
	CancelledCount int32  `json:"cancelled_count,omitempty"`
	Message        string `json:"message,omitempty"`
}

type ListCancelledDatesRequest struct {
	Id int64 `json:"id,omitempty"`
}

type ListCancelledDatesResponse struct {
	Exceptions []*Consultation `json:"exceptions,omitempty"`
}

type MaterializeOccurrencesRequest struct {
	// WindowDays <= 0 uses the server's configured window.
	WindowDays int32 `json:"window_days,omitempty"`
}

type MaterializeOccurrencesResponse struct {
	Created         int32 `json:"created,omitempty"`
	SeriesProcessed int32 `json:"series_processed,omitempty"`
	SeriesFailed    int32 `json:"series_failed,omitempty"`
	// Skipped is set when another run held the job lease.
	Skipped bool `json:"skipped,omitempty"`
}
