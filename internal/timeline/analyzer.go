// Package timeline reconstructs an applicant's multi-year immigration
// timeline and scores its consistency. Analyze is pure and total: each pass
// is an independent function over the sorted event list returning weighted
// findings, folded into the final score at the end.
package timeline

import (
	"sort"
	"time"

	"github.com/lmichaud/caq-advisor/internal/models"
)

// Penalty weights per finding kind. The arrival-delay and insurance-gap
// tolerances are administrative practice values carried over from the
// ministry's review habits, not statutory minima.
const (
	penaltyContinuityBroken   = 20
	penaltyRefusalResolved    = 2
	penaltyRefusalPending     = 5
	penaltyRefusalUnanswered  = 25
	penaltyIntentNoResponse   = 15
	penaltyCancelNoResponse   = 30
	penaltyCancelAnswered     = 10
	penaltyCAQCancelled       = 50
	penaltyFraudRejection     = 60
	penaltyStudiesUncovered   = 5
	penaltyLevelMismatch      = 20
	penaltyStudyOutsideWindow = 5
	penaltyNoPermitOverlap    = 15
	penaltyStudiesWhileAbsent = 20
	penaltyGapMedical         = 5
	penaltyGapUnexplained     = 15
	penaltyCAQWithoutStudies  = 5
	penaltyInsuranceGap       = 5
	penaltyNoInsurance        = 15
	penaltyInsuranceFallback  = 10
	penaltyArrivalDelayLong   = 15
	penaltyArrivalDelayShort  = 5
)

// Heuristic thresholds shared by several passes.
const (
	caqToleranceDays    = 30
	extendedGapDays     = 150
	insuranceGapDays    = 15
	arrivalDelayWarnMo  = 1
	arrivalDelayErrorMo = 3
)

// Score thresholds for the global status.
const (
	scoreCompliant = 80
	scoreAtRisk    = 60
)

type scoredFinding struct {
	finding models.Finding
	penalty int
}

func finding(severity models.FindingSeverity, message string, date *time.Time, penalty int) scoredFinding {
	return scoredFinding{finding: models.Finding{Severity: severity, Message: message, Date: date}, penalty: penalty}
}

// Analyze scores the event list. Events that cannot be placed on the
// timeline (no submission date and no start) are excluded up front; the
// clock bounds open-ended work permits.
func Analyze(events []models.TimelineEvent, now time.Time) *models.TimelineAnalysisResult {
	placed := make([]models.TimelineEvent, 0, len(events))
	for _, event := range events {
		if event.Anchor() != nil {
			placed = append(placed, event)
		}
	}

	if len(placed) == 0 {
		return &models.TimelineAnalysisResult{
			Score:            100,
			GlobalStatus:     models.TimelineEmpty,
			Controls:         []models.Finding{},
			InsuranceIssues:  []models.Finding{},
			SuccessionIssues: []models.Finding{},
			AllAlerts:        []models.Finding{},
		}
	}

	// Chronological order, ties kept in input order.
	sort.SliceStable(placed, func(i, j int) bool {
		return placed[i].Anchor().Before(*placed[j].Anchor())
	})

	var succession []scoredFinding
	succession = append(succession, statusContinuity(placed)...)
	succession = append(succession, refusalResolution(placed)...)
	succession = append(succession, intentResponses(placed)...)
	succession = append(succession, cancellations(placed)...)

	var controls []scoredFinding
	controls = append(controls, programConsistency(placed)...)
	controls = append(controls, permitContinuity(placed, now)...)
	controls = append(controls, physicalPresence(placed)...)
	controls = append(controls, extendedGaps(placed)...)
	controls = append(controls, arrivalDelay(placed)...)

	insurance := insuranceCoverage(placed)

	score := 100
	for _, group := range [][]scoredFinding{succession, controls, insurance} {
		for _, sf := range group {
			score -= sf.penalty
		}
	}
	if score < 0 {
		score = 0
	}

	result := &models.TimelineAnalysisResult{
		Score:            score,
		GlobalStatus:     statusFor(score),
		Controls:         findingsOf(controls),
		InsuranceIssues:  findingsOf(insurance),
		SuccessionIssues: findingsOf(succession),
	}
	result.AllAlerts = mergeAlerts(result.Controls, result.InsuranceIssues, result.SuccessionIssues)
	return result
}

func statusFor(score int) models.GlobalStatus {
	switch {
	case score == 100:
		return models.TimelineExemplary
	case score >= scoreCompliant:
		return models.TimelineCompliant
	case score >= scoreAtRisk:
		return models.TimelineAtRisk
	default:
		return models.TimelineCritical
	}
}

func findingsOf(scored []scoredFinding) []models.Finding {
	findings := make([]models.Finding, 0, len(scored))
	for _, sf := range scored {
		findings = append(findings, sf.finding)
	}
	return findings
}

// mergeAlerts concatenates the finding lists and stable-sorts them by date
// ascending; undated findings come first.
func mergeAlerts(groups ...[]models.Finding) []models.Finding {
	merged := []models.Finding{}
	for _, group := range groups {
		merged = append(merged, group...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		di, dj := merged[i].Date, merged[j].Date
		switch {
		case di == nil:
			return dj != nil
		case dj == nil:
			return false
		default:
			return di.Before(*dj)
		}
	})
	return merged
}

// ofType filters the placed events by type, preserving order.
func ofType(events []models.TimelineEvent, types ...models.EventType) []models.TimelineEvent {
	var matched []models.TimelineEvent
	for _, event := range events {
		for _, t := range types {
			if event.Type == t {
				matched = append(matched, event)
				break
			}
		}
	}
	return matched
}
