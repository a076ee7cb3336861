package timeline

import (
	"fmt"

	"github.com/lmichaud/caq-advisor/internal/models"
	"github.com/lmichaud/caq-advisor/pkg/dates"
)

// statusContinuity walks the CAQ decision chain: a refusal immediately
// followed by another status event means the applicant continued without a
// restored status.
func statusContinuity(events []models.TimelineEvent) []scoredFinding {
	chain := ofType(events, models.EventCAQ, models.EventCAQRefusal, models.EventIntentRefusal)

	var findings []scoredFinding
	for i := 1; i < len(chain); i++ {
		previous := chain[i-1]
		if previous.Type != models.EventCAQRefusal && previous.Type != models.EventIntentRefusal {
			continue
		}
		findings = append(findings, finding(
			models.FindingError,
			fmt.Sprintf("Continuité de statut rompue à la suite du refus du %s.",
				dates.FormatHuman(previous.Anchor())),
			previous.Anchor(),
			penaltyContinuityBroken,
		))
	}
	return findings
}

// refusalResolution checks how each CAQ refusal was resolved. An approved
// CAQ later on is a closed chapter (small history note); a pending new
// request is almost as good; nothing afterwards is the worst outcome.
func refusalResolution(events []models.TimelineEvent) []scoredFinding {
	var findings []scoredFinding
	for i, event := range events {
		if event.Type != models.EventCAQRefusal {
			continue
		}

		approved, pending := false, false
		for _, later := range events[i+1:] {
			if later.Type != models.EventCAQ {
				continue
			}
			if later.HasPeriod() {
				approved = true
				break
			}
			if later.Pending() {
				pending = true
			}
		}

		refusedOn := dates.FormatHuman(event.Anchor())
		switch {
		case approved:
			findings = append(findings, finding(
				models.FindingOK,
				fmt.Sprintf("Refus du %s suivi d'un CAQ approuvé.", refusedOn),
				event.Anchor(),
				penaltyRefusalResolved,
			))
		case pending:
			findings = append(findings, finding(
				models.FindingWarning,
				fmt.Sprintf("Refus du %s suivi d'une nouvelle demande encore en traitement.", refusedOn),
				event.Anchor(),
				penaltyRefusalPending,
			))
		default:
			findings = append(findings, finding(
				models.FindingError,
				fmt.Sprintf("Refus du %s sans aucune demande subséquente.", refusedOn),
				event.Anchor(),
				penaltyRefusalUnanswered,
			))
		}
	}
	return findings
}

// intentResponses verifies that every intent to refuse and intent to cancel
// received a documented response.
func intentResponses(events []models.TimelineEvent) []scoredFinding {
	var findings []scoredFinding
	for i, event := range events {
		if event.Type != models.EventIntentRefusal && event.Type != models.EventIntentCancel {
			continue
		}

		answered := false
		for _, later := range events[i+1:] {
			if later.Type == models.EventDocsSent {
				answered = true
				break
			}
		}

		noticedOn := dates.FormatHuman(event.Anchor())
		if event.Type == models.EventIntentRefusal {
			if answered {
				findings = append(findings, finding(
					models.FindingOK,
					fmt.Sprintf("Documents transmis en réponse à l'intention de refus du %s.", noticedOn),
					event.Anchor(), 0,
				))
			} else {
				findings = append(findings, finding(
					models.FindingError,
					fmt.Sprintf("Aucune réponse à l'intention de refus du %s.", noticedOn),
					event.Anchor(), penaltyIntentNoResponse,
				))
			}
			continue
		}

		if answered {
			findings = append(findings, finding(
				models.FindingWarning,
				fmt.Sprintf("Documents transmis en réponse à l'intention d'annulation du %s; la situation demeure sérieuse.", noticedOn),
				event.Anchor(), penaltyCancelAnswered,
			))
		} else {
			findings = append(findings, finding(
				models.FindingError,
				fmt.Sprintf("Aucune réponse à l'intention d'annulation du %s.", noticedOn),
				event.Anchor(), penaltyCancelNoResponse,
			))
		}
	}
	return findings
}

// cancellations flags every cancelled CAQ and every fraud-based rejection
// unconditionally.
func cancellations(events []models.TimelineEvent) []scoredFinding {
	var findings []scoredFinding
	for _, event := range events {
		switch event.Type {
		case models.EventCAQCancel:
			findings = append(findings, finding(
				models.FindingError,
				fmt.Sprintf("CAQ annulé le %s (art. 31 et 33, Loi sur l'immigration au Québec).",
					dates.FormatHuman(event.Anchor())),
				event.Anchor(), penaltyCAQCancelled,
			))
		case models.EventFraudRejection:
			findings = append(findings, finding(
				models.FindingError,
				fmt.Sprintf("Demande rejetée le %s pour fausses représentations (art. 9.1 et 59, Loi sur l'immigration au Québec).",
					dates.FormatHuman(event.Anchor())),
				event.Anchor(), penaltyFraudRejection,
			))
		}
	}
	return findings
}
