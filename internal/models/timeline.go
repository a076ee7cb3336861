package models

import "time"

// EventType is the closed enumeration of timeline event kinds. Events are
// decoded once at ingestion; the analyzer never re-interprets raw strings.
type EventType string

const (
	EventCAQ            EventType = "CAQ"
	EventCAQRefusal     EventType = "CAQ_REFUSAL"
	EventIntentRefusal  EventType = "INTENT_REFUSAL"
	EventIntentCancel   EventType = "INTENT_CANCEL"
	EventCAQCancel      EventType = "CAQ_CANCEL"
	EventFraudRejection EventType = "FRAUD_REJECTION"
	EventDocsSent       EventType = "DOCS_SENT"
	EventInterview      EventType = "INTERVIEW"
	EventEntry          EventType = "ENTRY"
	EventExit           EventType = "EXIT"
	EventWorkPermit     EventType = "WORK_PERMIT"
	EventStudies        EventType = "STUDIES"
	EventInsurance      EventType = "INSURANCE"
	EventMedical        EventType = "MEDICAL"
	EventOther          EventType = "OTHER"
)

// EventCategory tells who originated the event.
type EventCategory string

const (
	CategoryAdministrative EventCategory = "ADMINISTRATIVE"
	CategoryCandidate      EventCategory = "CANDIDATE"
)

// TimelineEvent is one occurrence on the applicant's immigration timeline.
// SubmissionDate is the filing date of a request; Start without End is a
// point-in-time outcome; Start with End is a period; SubmissionDate alone
// means the request is still pending.
type TimelineEvent struct {
	ID             string        `json:"id"`
	Type           EventType     `json:"type"`
	Category       EventCategory `json:"category"`
	SubmissionDate *time.Time    `json:"submission_date"`
	Start          *time.Time    `json:"start"`
	End            *time.Time    `json:"end"`
	Label          string        `json:"label,omitempty"`
	LinkedProgram  string        `json:"linked_program,omitempty"`
	Level          string        `json:"level,omitempty"`
	OutsideCanada  bool          `json:"outside_canada"`
	Note           string        `json:"note,omitempty"`
}

// Anchor returns the date placing the event on the timeline: the submission
// date when present, otherwise the start date. Nil means the event cannot be
// placed and is excluded from analysis.
func (e TimelineEvent) Anchor() *time.Time {
	if e.SubmissionDate != nil {
		return e.SubmissionDate
	}
	return e.Start
}

// HasPeriod reports whether the event carries a full date range.
func (e TimelineEvent) HasPeriod() bool {
	return e.Start != nil && e.End != nil
}

// Pending reports whether the event is a filed request with no outcome yet.
func (e TimelineEvent) Pending() bool {
	return e.SubmissionDate != nil && e.Start == nil
}

// FindingSeverity grades one analyzer finding.
type FindingSeverity string

const (
	FindingOK      FindingSeverity = "OK"
	FindingWarning FindingSeverity = "WARNING"
	FindingError   FindingSeverity = "ERROR"
)

// Finding is one unit of analyzer output.
type Finding struct {
	Severity FindingSeverity `json:"severity"`
	Message  string          `json:"message"`
	Date     *time.Time      `json:"date"`
}

// GlobalStatus buckets the timeline score.
type GlobalStatus string

const (
	TimelineEmpty     GlobalStatus = "EMPTY"
	TimelineExemplary GlobalStatus = "EXEMPLARY"
	TimelineCompliant GlobalStatus = "COMPLIANT"
	TimelineAtRisk    GlobalStatus = "AT_RISK"
	TimelineCritical  GlobalStatus = "CRITICAL"
)

// TimelineAnalysisResult is the complete output of one analyzer run.
// AllAlerts is the union of the three finding lists sorted by date
// ascending, undated findings first.
type TimelineAnalysisResult struct {
	Score            int          `json:"score"`
	GlobalStatus     GlobalStatus `json:"global_status"`
	Controls         []Finding    `json:"controls"`
	InsuranceIssues  []Finding    `json:"insurance_issues"`
	SuccessionIssues []Finding    `json:"succession_issues"`
	AllAlerts        []Finding    `json:"all_alerts"`
}
