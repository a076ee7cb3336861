package timeline

import (
	"fmt"
	"sort"
	"time"

	"github.com/lmichaud/caq-advisor/internal/models"
	"github.com/lmichaud/caq-advisor/pkg/dates"
)

// period is a closed insurance-coverage interval.
type period struct {
	start time.Time
	end   time.Time
}

// insuranceCoverage audits health-insurance continuity over every CAQ whose
// level matches a study period it covers. The required window runs from the
// later of the CAQ start and the country-entry date through the CAQ end;
// any hole longer than the tolerance is flagged. Without any CAQ/studies
// linkage the audit falls back to a single presence-based check.
func insuranceCoverage(events []models.TimelineEvent) []scoredFinding {
	caqs := datedCAQs(events)
	entry := firstEntry(events)
	insurances := insurancePeriods(events)

	var findings []scoredFinding
	linkage := false
	audited := map[string]bool{}

	for _, study := range ofType(events, models.EventStudies) {
		if !study.HasPeriod() {
			continue
		}
		caq, covered := coveringCAQ(study, caqs)
		if !covered {
			continue
		}
		linkage = true
		if !levelsMatch(study.Level, caq.Level) {
			continue
		}

		// One audit per CAQ window even when several study periods match it.
		key := caqKey(caq)
		if audited[key] {
			continue
		}
		audited[key] = true

		windowStart := *caq.Start
		if entry != nil {
			if caq.End.Before(*entry) {
				// CAQ expired before the applicant ever entered the country.
				continue
			}
			windowStart = dates.Max(windowStart, *entry)
		}
		windowEnd := *caq.End

		findings = append(findings, auditWindow(windowStart, windowEnd, insurances)...)
	}

	if !linkage && presenceIndicators(events) && len(ofType(events, models.EventInsurance)) == 0 {
		findings = append(findings, finding(
			models.FindingWarning,
			"Présence au pays détectée sans aucune assurance déclarée sur la ligne du temps.",
			nil, penaltyInsuranceFallback,
		))
	}
	return findings
}

func caqKey(caq models.TimelineEvent) string {
	if caq.ID != "" {
		return caq.ID
	}
	return caq.Start.Format(dates.ISO) + "/" + caq.End.Format(dates.ISO)
}

// auditWindow walks the merged insurance periods across the required window
// and flags every sub-gap above the tolerance. A window with no overlapping
// coverage at all yields a single finding instead of per-gap detail.
func auditWindow(windowStart, windowEnd time.Time, insurances []period) []scoredFinding {
	var overlapping []period
	for _, p := range insurances {
		if dates.Overlaps(windowStart, windowEnd, p.start, p.end) {
			overlapping = append(overlapping, p)
		}
	}

	if len(overlapping) == 0 {
		return []scoredFinding{finding(
			models.FindingWarning,
			fmt.Sprintf("Aucune assurance ne couvre la période du CAQ du %s au %s.",
				windowStart.Format(dates.Human), windowEnd.Format(dates.Human)),
			&windowStart, penaltyNoInsurance,
		)}
	}

	merged := mergePeriods(overlapping)

	var findings []scoredFinding
	cursor := windowStart
	for _, p := range merged {
		if gap := dates.DaysBetween(cursor, p.start); gap > insuranceGapDays {
			gapStart := cursor
			findings = append(findings, finding(
				models.FindingWarning,
				fmt.Sprintf("Trou d'assurance de %d jours à compter du %s.", gap, gapStart.Format(dates.Human)),
				&gapStart, penaltyInsuranceGap,
			))
		}
		if p.end.After(cursor) {
			cursor = p.end
		}
	}
	if gap := dates.DaysBetween(cursor, windowEnd); gap > insuranceGapDays {
		gapStart := cursor
		findings = append(findings, finding(
			models.FindingWarning,
			fmt.Sprintf("Trou d'assurance de %d jours entre le %s et la fin du CAQ.", gap, gapStart.Format(dates.Human)),
			&gapStart, penaltyInsuranceGap,
		))
	}
	return findings
}

// insurancePeriods extracts the dated insurance intervals.
func insurancePeriods(events []models.TimelineEvent) []period {
	var periods []period
	for _, event := range ofType(events, models.EventInsurance) {
		if event.HasPeriod() {
			periods = append(periods, period{start: *event.Start, end: *event.End})
		}
	}
	return periods
}

// mergePeriods coalesces overlapping or adjacent coverage intervals.
func mergePeriods(periods []period) []period {
	sorted := make([]period, len(periods))
	copy(sorted, periods)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].start.Before(sorted[j].start) })

	var merged []period
	for _, p := range sorted {
		if len(merged) == 0 {
			merged = append(merged, p)
			continue
		}
		last := &merged[len(merged)-1]
		if !p.start.After(last.end.AddDate(0, 0, 1)) {
			if p.end.After(last.end) {
				last.end = p.end
			}
			continue
		}
		merged = append(merged, p)
	}
	return merged
}

// presenceIndicators reports whether the timeline shows the applicant
// actually in the country with something to insure.
func presenceIndicators(events []models.TimelineEvent) bool {
	return len(ofType(events, models.EventEntry, models.EventStudies, models.EventWorkPermit)) > 0
}
