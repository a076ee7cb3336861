package models

import (
	"encoding/json"
	"time"
)

// AssessmentKind tells which engine produced a stored assessment.
type AssessmentKind string

const (
	AssessmentDossier  AssessmentKind = "DOSSIER"
	AssessmentTimeline AssessmentKind = "TIMELINE"
)

// Assessment is one persisted analysis run. The full result is kept as raw
// JSON so past runs can be re-rendered without re-evaluating; the scalar
// columns exist for listing and filtering.
type Assessment struct {
	ID            string          `db:"id" json:"id"`
	ConsultantID  string          `db:"consultant_id" json:"consultant_id"`
	Kind          AssessmentKind  `db:"kind" json:"kind"`
	Outcome       string          `db:"outcome" json:"outcome"`
	Score         *int            `db:"score" json:"score,omitempty"`
	BlockingCount int             `db:"blocking_count" json:"blocking_count"`
	MajorCount    int             `db:"major_count" json:"major_count"`
	Result        json.RawMessage `db:"result" json:"result"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}
