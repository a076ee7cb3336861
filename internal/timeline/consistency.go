package timeline

import (
	"fmt"
	"time"

	"github.com/lmichaud/caq-advisor/internal/models"
	"github.com/lmichaud/caq-advisor/pkg/dates"
)

// datedCAQs returns the CAQ events carrying a full validity period.
func datedCAQs(events []models.TimelineEvent) []models.TimelineEvent {
	var caqs []models.TimelineEvent
	for _, event := range ofType(events, models.EventCAQ) {
		if event.HasPeriod() {
			caqs = append(caqs, event)
		}
	}
	return caqs
}

// coveringCAQ finds the CAQ whose validity overlaps the study period,
// preferring one whose declared level matches the study's level. The boolean
// is false when no CAQ overlaps at all.
func coveringCAQ(study models.TimelineEvent, caqs []models.TimelineEvent) (models.TimelineEvent, bool) {
	var fallback *models.TimelineEvent
	for i, caq := range caqs {
		if !dates.Overlaps(*study.Start, *study.End, *caq.Start, *caq.End) {
			continue
		}
		if levelsMatch(study.Level, caq.Level) {
			return caq, true
		}
		if fallback == nil {
			fallback = &caqs[i]
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return models.TimelineEvent{}, false
}

// levelsMatch treats a blank level on either side as unknown, hence
// compatible.
func levelsMatch(a, b string) bool {
	return a == "" || b == "" || a == b
}

// programConsistency verifies that every study period is covered by a CAQ of
// the right program level, within a 30-day tolerance on both edges.
func programConsistency(events []models.TimelineEvent) []scoredFinding {
	caqs := datedCAQs(events)

	var findings []scoredFinding
	for _, study := range ofType(events, models.EventStudies) {
		if !study.HasPeriod() {
			continue
		}

		caq, covered := coveringCAQ(study, caqs)
		if !covered {
			if len(caqs) > 0 {
				findings = append(findings, finding(
					models.FindingWarning,
					fmt.Sprintf("Période d'études du %s au %s non couverte par un CAQ valide.",
						dates.FormatHuman(study.Start), dates.FormatHuman(study.End)),
					study.Start, penaltyStudiesUncovered,
				))
			}
			continue
		}

		if !levelsMatch(study.Level, caq.Level) {
			findings = append(findings, finding(
				models.FindingError,
				fmt.Sprintf("Niveau du programme d'études (%s) différent du niveau autorisé par le CAQ (%s).",
					study.Level, caq.Level),
				study.Start, penaltyLevelMismatch,
			))
			continue
		}

		if study.Start.Before(caq.Start.AddDate(0, 0, -caqToleranceDays)) {
			findings = append(findings, finding(
				models.FindingWarning,
				fmt.Sprintf("Études débutées le %s, plus de %d jours avant la prise d'effet du CAQ le %s.",
					dates.FormatHuman(study.Start), caqToleranceDays, dates.FormatHuman(caq.Start)),
				study.Start, penaltyStudyOutsideWindow,
			))
		}
		if study.End.After(caq.End.AddDate(0, 0, caqToleranceDays)) {
			findings = append(findings, finding(
				models.FindingWarning,
				fmt.Sprintf("Études terminées le %s, plus de %d jours après l'échéance du CAQ le %s.",
					dates.FormatHuman(study.End), caqToleranceDays, dates.FormatHuman(caq.End)),
				study.End, penaltyStudyOutsideWindow,
			))
		}
	}
	return findings
}

// permitContinuity requires, once any work permit exists on the timeline,
// that each study period overlap at least one permit.
func permitContinuity(events []models.TimelineEvent, now time.Time) []scoredFinding {
	permits := ofType(events, models.EventWorkPermit)
	if len(permits) == 0 {
		return nil
	}

	var findings []scoredFinding
	for _, study := range ofType(events, models.EventStudies) {
		if !study.HasPeriod() {
			continue
		}
		overlapping := false
		for _, permit := range permits {
			if permit.Start == nil {
				continue
			}
			permitEnd := now
			if permit.End != nil {
				permitEnd = *permit.End
			}
			if dates.Overlaps(*study.Start, *study.End, *permit.Start, permitEnd) {
				overlapping = true
				break
			}
		}
		if !overlapping {
			findings = append(findings, finding(
				models.FindingError,
				fmt.Sprintf("Période d'études du %s au %s sans permis valide.",
					dates.FormatHuman(study.Start), dates.FormatHuman(study.End)),
				study.Start, penaltyNoPermitOverlap,
			))
		}
	}
	return findings
}

// extendedGaps flags interruptions of more than 150 days between study
// periods when the interruption falls inside a CAQ validity window, and the
// degenerate case of a CAQ with no declared studies at all.
func extendedGaps(events []models.TimelineEvent) []scoredFinding {
	caqs := datedCAQs(events)
	allStudies := ofType(events, models.EventStudies)

	var findings []scoredFinding
	if len(caqs) > 0 && len(allStudies) == 0 {
		findings = append(findings, finding(
			models.FindingWarning,
			"CAQ émis sans aucune période d'études déclarée sur la ligne du temps.",
			caqs[0].Start, penaltyCAQWithoutStudies,
		))
		return findings
	}

	var studies []models.TimelineEvent
	for _, study := range allStudies {
		if study.HasPeriod() {
			studies = append(studies, study)
		}
	}

	for i := 1; i < len(studies); i++ {
		previous, next := studies[i-1], studies[i]
		gap := dates.DaysBetween(*previous.End, *next.Start)
		if gap <= extendedGapDays {
			continue
		}

		midpoint := dates.Midpoint(*previous.End, *next.Start)
		insideCAQ := false
		for _, caq := range caqs {
			if dates.Within(midpoint, *caq.Start, *caq.End) {
				insideCAQ = true
				break
			}
		}
		if !insideCAQ {
			continue
		}

		if medicalOverlap(events, *previous.End, *next.Start) {
			findings = append(findings, finding(
				models.FindingWarning,
				fmt.Sprintf("Interruption de %d jours justifiée par un motif médical; la preuve reste à fournir.", gap),
				previous.End, penaltyGapMedical,
			))
		} else {
			findings = append(findings, finding(
				models.FindingWarning,
				fmt.Sprintf("Interruption prolongée de %d jours sans justification entre deux périodes d'études.", gap),
				previous.End, penaltyGapUnexplained,
			))
		}
	}
	return findings
}

func medicalOverlap(events []models.TimelineEvent, from, to time.Time) bool {
	for _, medical := range ofType(events, models.EventMedical) {
		if medical.Start == nil {
			continue
		}
		end := *medical.Start
		if medical.End != nil {
			end = *medical.End
		}
		if dates.Overlaps(from, to, *medical.Start, end) {
			return true
		}
	}
	return false
}

// arrivalDelay measures the time between the first entry into the country
// and the first study period starting after it.
func arrivalDelay(events []models.TimelineEvent) []scoredFinding {
	entry := firstEntry(events)
	if entry == nil {
		return nil
	}

	var firstStudy *time.Time
	for _, study := range ofType(events, models.EventStudies) {
		if study.Start == nil || !study.Start.After(*entry) {
			continue
		}
		if firstStudy == nil || study.Start.Before(*firstStudy) {
			firstStudy = study.Start
		}
	}
	if firstStudy == nil {
		return nil
	}

	months := dates.MonthsBetween(*entry, *firstStudy)
	switch {
	case months >= arrivalDelayErrorMo:
		return []scoredFinding{finding(
			models.FindingError,
			fmt.Sprintf("Délai suspect de %d mois entre l'arrivée le %s et le début des études.",
				months, dates.FormatHuman(entry)),
			entry, penaltyArrivalDelayLong,
		)}
	case months >= arrivalDelayWarnMo:
		return []scoredFinding{finding(
			models.FindingWarning,
			fmt.Sprintf("Délai de %d mois entre l'arrivée le %s et le début des études.",
				months, dates.FormatHuman(entry)),
			entry, penaltyArrivalDelayShort,
		)}
	default:
		return nil
	}
}

// firstEntry returns the anchor of the earliest ENTRY event, if any.
func firstEntry(events []models.TimelineEvent) *time.Time {
	var earliest *time.Time
	for _, entry := range ofType(events, models.EventEntry) {
		anchor := entry.Anchor()
		if anchor == nil {
			continue
		}
		if earliest == nil || anchor.Before(*earliest) {
			earliest = anchor
		}
	}
	return earliest
}
