// Package engine evaluates the administrative completeness of a CAQ dossier.
// Evaluate is pure and total: it never fails, never mutates its input, and
// surfaces missing data as MISSING checklist statuses instead of errors.
package engine

import (
	"fmt"
	"time"

	"github.com/lmichaud/caq-advisor/internal/models"
	"github.com/lmichaud/caq-advisor/pkg/dates"
)

// programMinimumMonths is the shortest program duration a CAQ covers.
const programMinimumMonths = 6

// CAQ validity window offsets around the program dates.
const (
	caqWindowStartMonths = -1
	caqWindowEndMonths   = 3
)

// Evaluate runs every applicable rule against the profile, in a fixed order,
// and derives the overall recommendation. The clock is injected so age and
// window computations are deterministic under test.
func Evaluate(profile *models.ApplicantProfile, now time.Time) *models.DossierAnalysisResult {
	e := &evaluation{profile: profile, now: now, isAdult: profile.IsAdult(now)}

	e.checkPrimaryExemption()
	e.checkPassport()
	e.checkDeclarationForm()
	e.checkAdmissionLetter()
	e.checkRenewal()
	e.checkMinor()
	e.checkEmancipation()
	e.checkProgramDuration()
	e.checkInsurance()
	e.checkFinances()

	return e.result()
}

type evaluation struct {
	profile  *models.ApplicantProfile
	now      time.Time
	isAdult  bool
	controls []models.ChecklistItem
}

func (e *evaluation) add(item models.ChecklistItem) {
	e.controls = append(e.controls, item)
}

func (e *evaluation) checkPrimaryExemption() {
	if e.profile.StudyLevel != models.LevelPrimary {
		return
	}
	e.add(models.ChecklistItem{
		Label:    "Exemption de CAQ au niveau primaire",
		Status:   models.ControlOK,
		Severity: models.SeverityMinor,
		Note: "Un enfant mineur qui accompagne un parent travailleur temporaire ou étudiant " +
			"n'a pas besoin de CAQ pour étudier au primaire ou au secondaire.",
		LegalReference: "RIQ, a. 19",
	})
}

func (e *evaluation) checkPassport() {
	item := models.ChecklistItem{
		Label:          "Passeport",
		Severity:       models.SeverityBlocking,
		LegalReference: "RIQ, a. 27",
	}
	switch e.profile.Passport.State {
	case models.PassportAbsent:
		item.Status = models.ControlMissing
		item.Note = "Aucun passeport au dossier."
	case models.PassportExpired:
		item.Status = models.ControlExpired
		item.Note = "Le passeport est expiré ou non conforme."
	default:
		if e.isAdult && !e.profile.Passport.Signed {
			item.Status = models.ControlInconsistent
			item.Note = "Le passeport d'un adulte doit être signé, ou accompagné d'une pièce d'identité substitutive signée."
		} else {
			item.Status = models.ControlOK
		}
	}
	e.add(item)
}

func (e *evaluation) checkDeclarationForm() {
	item := models.ChecklistItem{
		Label:          "Formulaire de déclaration et d'engagement",
		Severity:       models.SeverityBlocking,
		Status:         models.ControlOK,
		LegalReference: "RIQ, a. 25",
	}
	if !e.profile.Documents.DeclarationForm {
		item.Status = models.ControlMissing
		item.Note = "Le formulaire signé de déclaration et d'engagement est requis."
	}
	e.add(item)
}

func (e *evaluation) checkAdmissionLetter() {
	item := models.ChecklistItem{
		Label:          "Lettre d'admission ou preuve de fréquentation",
		Severity:       models.SeverityBlocking,
		Status:         models.ControlOK,
		LegalReference: "RIQ, a. 26",
	}
	present := e.profile.Documents.AdmissionLetter || e.profile.Documents.AttendanceProof
	if !present {
		if e.profile.Category.IsMinorCategory() || e.profile.StudyLevel == models.LevelPrimary {
			item.Note = "L'absence de lettre d'admission est tolérée pour un dossier mineur ou de niveau primaire."
		} else {
			item.Status = models.ControlMissing
			item.Note = "La lettre d'admission de l'établissement désigné est requise."
		}
	}
	e.add(item)
}

func (e *evaluation) checkRenewal() {
	if e.profile.Category.ApplicationType() != models.ApplicationRenewal {
		return
	}
	docs := e.profile.Documents

	transcripts := models.ChecklistItem{
		Label:    "Relevés de notes des études antérieures",
		Severity: models.SeverityMajor,
	}
	switch {
	case docs.Transcripts:
		transcripts.Status = models.ControlOK
	case docs.ExplanatoryLetter:
		transcripts.Status = models.ControlInconsistent
		transcripts.Note = "Relevés absents mais une lettre explicative est fournie; le dossier sera examiné sur cette base."
	default:
		transcripts.Status = models.ControlMissing
		transcripts.Note = "Relevés de notes absents et aucune lettre explicative au dossier."
	}
	e.add(transcripts)

	if docs.ExplanatoryLetter {
		justification := models.ChecklistItem{
			Label:    "Justification d'études à temps plein",
			Severity: models.SeverityMinor,
			Status:   models.ControlOK,
		}
		if !docs.FullTimeJustification {
			justification.Status = models.ControlMissing
			justification.Note = "La lettre explicative doit être appuyée d'une justification d'études à temps plein."
		}
		e.add(justification)
	}

	renewal := e.profile.Renewal
	if renewal == nil {
		return
	}

	if renewal.PreviousCAQStart != nil && renewal.PreviousCAQEnd != nil &&
		renewal.PreviousStudyStart != nil && renewal.PreviousStudyEnd != nil {
		continuity := models.ChecklistItem{
			Label:    "Continuité entre le CAQ précédent et les études",
			Severity: models.SeverityMajor,
			Status:   models.ControlOK,
		}
		covered := !renewal.PreviousCAQStart.After(*renewal.PreviousStudyStart) &&
			!renewal.PreviousCAQEnd.Before(*renewal.PreviousStudyEnd)
		if !covered {
			continuity.Status = models.ControlMissing
			continuity.Note = fmt.Sprintf(
				"Les études du %s au %s débordent de la validité du CAQ précédent (%s au %s).",
				dates.FormatHuman(renewal.PreviousStudyStart), dates.FormatHuman(renewal.PreviousStudyEnd),
				dates.FormatHuman(renewal.PreviousCAQStart), dates.FormatHuman(renewal.PreviousCAQEnd))
		}
		e.add(continuity)
	}

	if renewal.CountryEntryDate != nil && e.profile.ProgramStart != nil {
		entry := models.ChecklistItem{
			Label:    "Date d'entrée au pays",
			Severity: models.SeverityMinor,
			Status:   models.ControlOK,
		}
		if renewal.CountryEntryDate.After(*e.profile.ProgramStart) {
			entry.Status = models.ControlInconsistent
			entry.Note = fmt.Sprintf("Entrée au pays le %s, après le début du programme le %s.",
				dates.FormatHuman(renewal.CountryEntryDate), dates.FormatHuman(e.profile.ProgramStart))
		}
		e.add(entry)
	}

	if renewal.IsNewProgram {
		e.add(models.ChecklistItem{
			Label:    "Changement de programme",
			Severity: models.SeverityMinor,
			Status:   models.ControlOK,
			Note:     "Nouveau programme déclaré : joindre la lettre d'admission du nouveau programme.",
		})
	}
}

func (e *evaluation) checkMinor() {
	if e.isAdult {
		return
	}
	minor := e.profile.Minor
	if minor == nil {
		// Absent minor record: evaluate with every minor document absent.
		minor = &models.MinorInfo{}
	}
	if minor.Situation == models.MinorEmancipated {
		return
	}

	e.addRequired("Certificat de naissance mentionnant le nom des parents",
		minor.BirthCertificateWithParents, models.SeverityBlocking, "RIQ, a. 31")
	e.addRequired("Pièces d'identité des deux parents",
		minor.ParentsIdentity, models.SeverityBlocking, "RIQ, a. 31")

	switch minor.Situation {
	case models.MinorBothParents:
		e.addRequired("Preuve de la durée du séjour des parents au Québec",
			minor.ParentsStayProof, models.SeverityMajor, "")

	case models.MinorOneParent:
		e.addRequired("Pièce d'identité du parent non accompagnateur",
			minor.NonAccompanyingParentID, models.SeverityBlocking, "")

		consent := models.ChecklistItem{
			Label:          "Consentement du parent non accompagnateur ou garde exclusive",
			Severity:       models.SeverityBlocking,
			LegalReference: "C.c.Q., a. 600",
		}
		switch {
		case minor.ConsentDeclaration:
			consent.Status = models.ControlOK
			consent.Note = "Déclaration de consentement fournie."
		case minor.SoleCustodyProof:
			consent.Status = models.ControlOK
			consent.Note = "Preuve de garde exclusive fournie."
		default:
			consent.Status = models.ControlMissing
			consent.Note = "Fournir la déclaration de consentement du parent non accompagnateur ou la preuve de garde exclusive."
		}
		e.add(consent)

	case models.MinorUnaccompanied:
		e.addRequired("Délégation de l'autorité parentale",
			minor.AuthorityDelegation, models.SeverityBlocking, "C.c.Q., a. 601")
		e.addRequired("Déclaration de prise en charge par un adulte",
			minor.CustodyDeclaration, models.SeverityBlocking, "")
		e.addRequired("Preuve de citoyenneté ou de résidence permanente de l'adulte responsable",
			minor.GuardianCitizenshipProof, models.SeverityMajor, "")
		e.addRequired("Pièce d'identité de l'adulte responsable",
			minor.GuardianIdentity, models.SeverityBlocking, "")
		e.addRequired("Preuve de résidence de l'adulte responsable",
			minor.GuardianResidenceProof, models.SeverityMajor, "")
		e.addRequired("Vérification d'absence d'antécédents judiciaires des adultes du foyer",
			minor.CriminalRecordClearance, models.SeverityBlocking, "")
	}

	signature := models.ChecklistItem{
		Label:    "Format des signatures",
		Severity: models.SeverityMinor,
		Note: "Les signatures manuscrites ou numérisées sont obligatoires; " +
			"les signatures dactylographiées sont refusées.",
	}
	if e.profile.Documents.DeclarationForm && e.profile.Documents.AdmissionLetter {
		signature.Status = models.ControlOK
	} else {
		signature.Status = models.ControlInconsistent
	}
	e.add(signature)
}

func (e *evaluation) checkEmancipation() {
	minor := e.profile.Minor
	if minor == nil || minor.Situation != models.MinorEmancipated {
		return
	}
	item := models.ChecklistItem{
		Label:          "Jugement d'émancipation",
		Severity:       models.SeverityBlocking,
		Status:         models.ControlOK,
		LegalReference: "C.c.Q., a. 167",
	}
	if !minor.EmancipationJudgment {
		item.Status = models.ControlMissing
		item.Note = "Le jugement d'émancipation du tribunal est requis."
	}
	e.add(item)
}

func (e *evaluation) checkProgramDuration() {
	item := models.ChecklistItem{
		Label:    "Durée du programme d'études",
		Severity: models.SeverityBlocking,
	}
	if e.profile.ProgramStart == nil || e.profile.ProgramEnd == nil {
		item.Status = models.ControlMissing
		item.Note = "Les dates de début et de fin du programme sont requises."
		e.add(item)
		return
	}
	months := dates.MonthsBetween(*e.profile.ProgramStart, *e.profile.ProgramEnd)
	if months < programMinimumMonths {
		item.Status = models.ControlInconsistent
		item.Note = fmt.Sprintf("Programme de %d mois : un CAQ vise un programme d'au moins %d mois.",
			months, programMinimumMonths)
	} else {
		item.Status = models.ControlOK
	}
	e.add(item)
}

func (e *evaluation) checkInsurance() {
	if e.profile.StudyLevel == models.LevelUniversity {
		e.add(models.ChecklistItem{
			Label:    "Assurance maladie et hospitalisation",
			Severity: models.SeverityMinor,
			Status:   models.ControlOK,
			Note:     "Au niveau universitaire, l'assurance est réputée incluse par l'établissement.",
		})
		return
	}

	if e.profile.Category.ApplicationType() == models.ApplicationRenewal {
		past := models.ChecklistItem{
			Label:    "Assurance pour la période de séjour écoulée",
			Severity: models.SeverityMajor,
			Status:   models.ControlOK,
		}
		if !e.profile.Insurance.HasPastCoverage {
			past.Status = models.ControlMissing
			past.Note = "Aucune preuve d'assurance couvrant le séjour écoulé."
		}
		e.add(past)
	}

	future := models.ChecklistItem{
		Label:    "Assurance pour la période d'études à venir",
		Severity: models.SeverityMajor,
		Status:   models.ControlOK,
	}
	if !e.profile.Insurance.HasFutureCoverage {
		future.Status = models.ControlMissing
		future.Note = "Aucune preuve d'assurance couvrant la période d'études à venir."
	}
	e.add(future)
}

func (e *evaluation) checkFinances() {
	severity := models.SeverityMajor
	if !e.isAdult {
		severity = models.SeverityBlocking
	}
	item := models.ChecklistItem{
		Label:          "Capacité financière",
		Severity:       severity,
		LegalReference: "RIQ, a. 39",
	}

	if e.profile.Category.FinanceExempt() {
		item.Severity = models.SeverityMinor
		item.Status = models.ControlOK
		item.Note = "Catégorie exemptée de la démonstration de capacité financière."
		e.add(item)
		return
	}

	if !financeVerifiedByMIFI(e.profile.CountryOfResidence) {
		item.Status = models.ControlOK
		item.Note = "Pays de résidence hors de la liste ministérielle : la capacité financière sera vérifiée au palier fédéral."
		e.add(item)
		return
	}

	finances := e.profile.Finances
	switch finances.Payer {
	case models.PayerGuarantor:
		if !finances.GuarantorSupportForm || !finances.GuarantorProof {
			item.Status = models.ControlMissing
			item.Note = "Le formulaire de prise en charge du garant et ses preuves financières sont requis."
			e.add(item)
			return
		}
	default:
		switch {
		case !finances.SelfProof && !finances.BankStatements6Mo:
			item.Status = models.ControlMissing
			item.Note = "Preuves de fonds personnelles et relevés bancaires des 6 derniers mois absents."
			e.add(item)
			return
		case !finances.SelfProof:
			item.Status = models.ControlMissing
			item.Note = "Preuves de fonds personnelles absentes."
			e.add(item)
			return
		case !finances.BankStatements6Mo:
			item.Status = models.ControlMissing
			item.Note = "Relevés bancaires des 6 derniers mois absents."
			e.add(item)
			return
		}
	}

	if finances.Mode == models.FinanceDeclared {
		if finances.FinancialProof {
			item.Status = models.ControlOK
		} else {
			item.Status = models.ControlMissing
			item.Note = "En mode déclaré, la preuve de capacité financière signée est requise."
		}
		e.add(item)
		return
	}

	threshold := financialThreshold(e.profile.StudyLevel)
	if finances.AvailableFunds >= threshold {
		item.Status = models.ControlOK
	} else {
		item.Status = models.ControlInsufficient
		item.Note = fmt.Sprintf("Fonds disponibles de %.0f $ sous le seuil de %.0f $ : manque %.0f $.",
			finances.AvailableFunds, threshold, threshold-finances.AvailableFunds)
	}
	e.add(item)
}

// addRequired appends a simple presence rule: OK when the document flag is
// set, MISSING otherwise.
func (e *evaluation) addRequired(label string, present bool, severity models.ControlSeverity, ref string) {
	item := models.ChecklistItem{Label: label, Severity: severity, LegalReference: ref, Status: models.ControlOK}
	if !present {
		item.Status = models.ControlMissing
	}
	e.add(item)
}

func (e *evaluation) result() *models.DossierAnalysisResult {
	blocking, major := 0, 0
	for _, item := range e.controls {
		if !item.Violated() {
			continue
		}
		switch item.Severity {
		case models.SeverityBlocking:
			blocking++
		case models.SeverityMajor:
			major++
		}
	}

	recommendation := models.RecommendationAcceptable
	switch {
	case blocking > 0:
		recommendation = models.RecommendationHighRisk
	case major > 0:
		recommendation = models.RecommendationNeedsCompletion
	}

	var windowStart, windowEnd *time.Time
	if e.profile.ProgramStart != nil && e.profile.ProgramEnd != nil {
		start := dates.AddMonths(*e.profile.ProgramStart, caqWindowStartMonths)
		end := dates.AddMonths(*e.profile.ProgramEnd, caqWindowEndMonths)
		windowStart, windowEnd = &start, &end
	}

	return &models.DossierAnalysisResult{
		Controls:       e.controls,
		Recommendation: recommendation,
		CAQWindowStart: windowStart,
		CAQWindowEnd:   windowEnd,
		Summary: models.DossierSummary{
			BlockingCount: blocking,
			MajorCount:    major,
			TotalControls: len(e.controls),
			ProfileLabel:  profileLabel(e.profile.Category),
			LevelLabel:    string(e.profile.StudyLevel),
			TypeLabel:     typeLabel(e.profile.Category.ApplicationType()),
			PassportLabel: passportLabel(e.profile.Passport.State),
		},
	}
}

func profileLabel(category models.DossierCategory) string {
	age := "Majeur"
	if category.IsMinorCategory() {
		age = "Mineur"
	}
	finance := "capacité financière vérifiée"
	if category.FinanceExempt() {
		finance = "exempté de capacité financière"
	}
	return fmt.Sprintf("%s · %s · %s", age, typeLabel(category.ApplicationType()), finance)
}

func typeLabel(appType models.ApplicationType) string {
	if appType == models.ApplicationRenewal {
		return "Renouvellement"
	}
	return "Première demande"
}

func passportLabel(state models.PassportState) string {
	switch state {
	case models.PassportExpired:
		return "Expiré"
	case models.PassportAbsent:
		return "Absent"
	default:
		return "Valide"
	}
}
