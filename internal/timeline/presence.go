package timeline

import (
	"fmt"
	"time"

	"github.com/lmichaud/caq-advisor/internal/models"
	"github.com/lmichaud/caq-advisor/pkg/dates"
)

// absence is an interval spent outside Canada. A nil start means "since
// always" (before the first recorded entry); a nil end means the absence is
// still open.
type absence struct {
	start *time.Time
	end   *time.Time
}

// absences derives the out-of-country intervals from the ENTRY/EXIT events
// in chronological order. The applicant is implicitly abroad before the
// first entry; an unmatched trailing exit opens an absence with no end.
func absences(events []models.TimelineEvent) []absence {
	var intervals []absence
	inCountry := false
	var openSince *time.Time // nil while the initial open-ended absence runs

	for _, event := range ofType(events, models.EventEntry, models.EventExit) {
		anchor := event.Anchor()
		switch event.Type {
		case models.EventEntry:
			if !inCountry {
				intervals = append(intervals, absence{start: openSince, end: anchor})
				inCountry = true
			}
		case models.EventExit:
			if inCountry {
				openSince = anchor
				inCountry = false
			}
		}
	}

	if !inCountry {
		intervals = append(intervals, absence{start: openSince, end: nil})
	}
	return intervals
}

// overlaps reports whether the study range shares a day with the possibly
// open-ended absence interval. The exit and entry days themselves count as
// in-country.
func (a absence) overlaps(start, end time.Time) bool {
	if a.end != nil && !start.Before(*a.end) {
		return false
	}
	if a.start != nil && !end.After(*a.start) {
		return false
	}
	return true
}

// physicalPresence flags study periods that overlap an interval during
// which the applicant was outside the territory. Without any recorded
// border movement the whereabouts are unknown and nothing is flagged.
func physicalPresence(events []models.TimelineEvent) []scoredFinding {
	if len(ofType(events, models.EventEntry, models.EventExit)) == 0 {
		return nil
	}
	intervals := absences(events)

	var findings []scoredFinding
	for _, study := range ofType(events, models.EventStudies) {
		if !study.HasPeriod() {
			continue
		}
		for _, interval := range intervals {
			if interval.overlaps(*study.Start, *study.End) {
				findings = append(findings, finding(
					models.FindingError,
					fmt.Sprintf("Études déclarées du %s au %s alors que le candidat était hors du territoire.",
						dates.FormatHuman(study.Start), dates.FormatHuman(study.End)),
					study.Start, penaltyStudiesWhileAbsent,
				))
				break
			}
		}
	}
	return findings
}
