package models

import "time"

// ControlStatus is the outcome of a single checklist rule.
type ControlStatus string

const (
	ControlOK           ControlStatus = "OK"
	ControlMissing      ControlStatus = "MISSING"
	ControlInconsistent ControlStatus = "INCONSISTENT"
	ControlExpired      ControlStatus = "EXPIRED"
	ControlInsufficient ControlStatus = "INSUFFICIENT"
)

// ControlSeverity weighs a checklist rule in the final recommendation.
type ControlSeverity string

const (
	SeverityBlocking ControlSeverity = "BLOCKING"
	SeverityMajor    ControlSeverity = "MAJOR"
	SeverityMinor    ControlSeverity = "MINOR"
)

// ChecklistItem is one evaluated rule. Items are produced once per run, in
// evaluation order, and never merged across runs.
type ChecklistItem struct {
	Label          string          `json:"label"`
	Status         ControlStatus   `json:"status"`
	Severity       ControlSeverity `json:"severity"`
	LegalReference string          `json:"legal_reference,omitempty"`
	Note           string          `json:"note,omitempty"`
}

// Violated reports whether the item counts against the recommendation.
func (i ChecklistItem) Violated() bool {
	return i.Status != ControlOK
}

// Recommendation is the overall advisory verdict on a dossier.
type Recommendation string

const (
	RecommendationAcceptable      Recommendation = "ACCEPTABLE"
	RecommendationNeedsCompletion Recommendation = "NEEDS_COMPLETION"
	RecommendationHighRisk        Recommendation = "HIGH_RISK"
)

// DossierSummary aggregates counts and display labels for the checklist UI.
type DossierSummary struct {
	BlockingCount int    `json:"blocking_count"`
	MajorCount    int    `json:"major_count"`
	TotalControls int    `json:"total_controls"`
	ProfileLabel  string `json:"profile_label"`
	LevelLabel    string `json:"level_label"`
	TypeLabel     string `json:"type_label"`
	PassportLabel string `json:"passport_label"`
}

// DossierAnalysisResult is the complete output of one evaluation run.
type DossierAnalysisResult struct {
	Controls       []ChecklistItem `json:"controls"`
	Recommendation Recommendation  `json:"recommendation"`
	CAQWindowStart *time.Time      `json:"caq_window_start"`
	CAQWindowEnd   *time.Time      `json:"caq_window_end"`
	Summary        DossierSummary  `json:"summary"`
}
