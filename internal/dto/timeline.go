package dto

import (
	"github.com/lmichaud/caq-advisor/internal/models"
	"github.com/lmichaud/caq-advisor/pkg/dates"
)

// TimelineAnalysisRequest carries the event list to score.
type TimelineAnalysisRequest struct {
	Events []TimelineEventPayload `json:"events" validate:"required,dive"`
}

// TimelineEventPayload is the wire form of one timeline event. The type is a
// closed enumeration and is rejected at validation, not silently coerced.
type TimelineEventPayload struct {
	ID             string `json:"id"`
	Type           string `json:"type" validate:"required,oneof=CAQ CAQ_REFUSAL INTENT_REFUSAL INTENT_CANCEL CAQ_CANCEL FRAUD_REJECTION DOCS_SENT INTERVIEW ENTRY EXIT WORK_PERMIT STUDIES INSURANCE MEDICAL OTHER"`
	Category       string `json:"category" validate:"omitempty,oneof=ADMINISTRATIVE CANDIDATE"`
	SubmissionDate string `json:"submissionDate"`
	Start          string `json:"start"`
	End            string `json:"end"`
	Label          string `json:"label"`
	LinkedProgram  string `json:"linkedProgram"`
	Level          string `json:"level"`
	OutsideCanada  bool   `json:"outsideCanada"`
	Note           string `json:"note"`
}

// ToEvents converts the validated request into analyzer input. Dates parse
// defensively; events that end up with no usable date are dropped by the
// analyzer itself.
func (r *TimelineAnalysisRequest) ToEvents() []models.TimelineEvent {
	events := make([]models.TimelineEvent, 0, len(r.Events))
	for _, payload := range r.Events {
		events = append(events, models.TimelineEvent{
			ID:             payload.ID,
			Type:           models.EventType(payload.Type),
			Category:       models.EventCategory(payload.Category),
			SubmissionDate: dates.ParsePtr(payload.SubmissionDate),
			Start:          dates.ParsePtr(payload.Start),
			End:            dates.ParsePtr(payload.End),
			Label:          payload.Label,
			LinkedProgram:  payload.LinkedProgram,
			Level:          payload.Level,
			OutsideCanada:  payload.OutsideCanada,
			Note:           payload.Note,
		})
	}
	return events
}
