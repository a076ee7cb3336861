package dto

import (
	"github.com/lmichaud/caq-advisor/internal/models"
	"github.com/lmichaud/caq-advisor/pkg/dates"
)

// DossierEvaluationRequest is the wire form of a dossier evaluation. Dates
// travel as ISO strings and are parsed defensively: an unparseable date is
// treated as absent, never as an error.
type DossierEvaluationRequest struct {
	DateOfBirth        string           `json:"dateOfBirth"`
	CountryOfResidence string           `json:"countryOfResidence" validate:"required"`
	Category           string           `json:"category" validate:"required,oneof=ADULT_FIRST_VERIFIED ADULT_FIRST_EXEMPT ADULT_RENEWAL_VERIFIED ADULT_RENEWAL_EXEMPT MINOR_FIRST_VERIFIED MINOR_FIRST_EXEMPT MINOR_RENEWAL_VERIFIED MINOR_RENEWAL_EXEMPT"`
	StudyLevel         string           `json:"studyLevel" validate:"required,oneof=Primaire 'Formation professionnelle' Collégial Universitaire"`
	Passport           PassportPayload  `json:"passport"`
	ProgramStart       string           `json:"programStart"`
	ProgramEnd         string           `json:"programEnd"`
	Documents          DocumentsPayload `json:"documents"`
	Finances           FinancesPayload  `json:"finances"`
	Insurance          InsurancePayload `json:"insurance"`
	Renewal            *RenewalPayload  `json:"renewal,omitempty"`
	Minor              *MinorPayload    `json:"minor,omitempty"`
}

// PassportPayload mirrors models.PassportInfo on the wire.
type PassportPayload struct {
	State  string `json:"state" validate:"omitempty,oneof=VALID EXPIRED ABSENT"`
	Signed bool   `json:"signed"`
}

// DocumentsPayload mirrors models.DocumentSet on the wire.
type DocumentsPayload struct {
	DeclarationForm       bool `json:"declarationForm"`
	AdmissionLetter       bool `json:"admissionLetter"`
	AttendanceProof       bool `json:"attendanceProof"`
	Transcripts           bool `json:"transcripts"`
	ExplanatoryLetter     bool `json:"explanatoryLetter"`
	FullTimeJustification bool `json:"fullTimeJustification"`
}

// FinancesPayload mirrors models.FinanceInfo on the wire.
type FinancesPayload struct {
	Payer                string  `json:"payer" validate:"omitempty,oneof=SELF GUARANTOR"`
	Mode                 string  `json:"mode" validate:"omitempty,oneof=CALCULATED DECLARED"`
	AvailableFunds       float64 `json:"availableFunds" validate:"gte=0"`
	SelfProof            bool    `json:"selfProof"`
	BankStatements6Mo    bool    `json:"bankStatements6Mo"`
	GuarantorSupportForm bool    `json:"guarantorSupportForm"`
	GuarantorProof       bool    `json:"guarantorProof"`
	FinancialProof       bool    `json:"financialProof"`
}

// InsurancePayload mirrors models.InsuranceInfo on the wire.
type InsurancePayload struct {
	HasPastCoverage   bool `json:"hasPastCoverage"`
	HasFutureCoverage bool `json:"hasFutureCoverage"`
}

// RenewalPayload mirrors models.RenewalInfo on the wire.
type RenewalPayload struct {
	PreviousCAQStart   string `json:"previousCaqStart"`
	PreviousCAQEnd     string `json:"previousCaqEnd"`
	PreviousStudyStart string `json:"previousStudyStart"`
	PreviousStudyEnd   string `json:"previousStudyEnd"`
	CountryEntryDate   string `json:"countryEntryDate"`
	IsNewProgram       bool   `json:"isNewProgram"`
}

// MinorPayload mirrors models.MinorInfo on the wire.
type MinorPayload struct {
	Situation                   string `json:"situation" validate:"omitempty,oneof=BOTH_PARENTS ONE_PARENT UNACCOMPANIED EMANCIPATED"`
	EmancipationJudgment        bool   `json:"emancipationJudgment"`
	BirthCertificateWithParents bool   `json:"birthCertificateWithParents"`
	ParentsIdentity             bool   `json:"parentsIdentity"`
	ParentsStayProof            bool   `json:"parentsStayProof"`
	NonAccompanyingParentID     bool   `json:"nonAccompanyingParentId"`
	ConsentDeclaration          bool   `json:"consentDeclaration"`
	SoleCustodyProof            bool   `json:"soleCustodyProof"`
	AuthorityDelegation         bool   `json:"authorityDelegation"`
	CustodyDeclaration          bool   `json:"custodyDeclaration"`
	GuardianCitizenshipProof    bool   `json:"guardianCitizenshipProof"`
	GuardianIdentity            bool   `json:"guardianIdentity"`
	GuardianResidenceProof      bool   `json:"guardianResidenceProof"`
	CriminalRecordClearance     bool   `json:"criminalRecordClearance"`
}

// ToProfile converts the validated request into the engine's input model.
func (r *DossierEvaluationRequest) ToProfile() *models.ApplicantProfile {
	passportState := models.PassportState(r.Passport.State)
	if passportState == "" {
		passportState = models.PassportAbsent
	}

	profile := &models.ApplicantProfile{
		DateOfBirth:        dates.ParsePtr(r.DateOfBirth),
		CountryOfResidence: r.CountryOfResidence,
		Category:           models.DossierCategory(r.Category),
		StudyLevel:         models.StudyLevel(r.StudyLevel),
		Passport: models.PassportInfo{
			State:  passportState,
			Signed: r.Passport.Signed,
		},
		ProgramStart: dates.ParsePtr(r.ProgramStart),
		ProgramEnd:   dates.ParsePtr(r.ProgramEnd),
		Documents: models.DocumentSet{
			DeclarationForm:       r.Documents.DeclarationForm,
			AdmissionLetter:       r.Documents.AdmissionLetter,
			AttendanceProof:       r.Documents.AttendanceProof,
			Transcripts:           r.Documents.Transcripts,
			ExplanatoryLetter:     r.Documents.ExplanatoryLetter,
			FullTimeJustification: r.Documents.FullTimeJustification,
		},
		Finances: models.FinanceInfo{
			Payer:                models.PayerType(r.Finances.Payer),
			Mode:                 models.FinanceMode(r.Finances.Mode),
			AvailableFunds:       r.Finances.AvailableFunds,
			SelfProof:            r.Finances.SelfProof,
			BankStatements6Mo:    r.Finances.BankStatements6Mo,
			GuarantorSupportForm: r.Finances.GuarantorSupportForm,
			GuarantorProof:       r.Finances.GuarantorProof,
			FinancialProof:       r.Finances.FinancialProof,
		},
		Insurance: models.InsuranceInfo{
			HasPastCoverage:   r.Insurance.HasPastCoverage,
			HasFutureCoverage: r.Insurance.HasFutureCoverage,
		},
	}

	category := profile.Category
	if category.ApplicationType() == models.ApplicationRenewal && r.Renewal != nil {
		profile.Renewal = &models.RenewalInfo{
			PreviousCAQStart:   dates.ParsePtr(r.Renewal.PreviousCAQStart),
			PreviousCAQEnd:     dates.ParsePtr(r.Renewal.PreviousCAQEnd),
			PreviousStudyStart: dates.ParsePtr(r.Renewal.PreviousStudyStart),
			PreviousStudyEnd:   dates.ParsePtr(r.Renewal.PreviousStudyEnd),
			CountryEntryDate:   dates.ParsePtr(r.Renewal.CountryEntryDate),
			IsNewProgram:       r.Renewal.IsNewProgram,
		}
	}
	if category.IsMinorCategory() && r.Minor != nil {
		profile.Minor = &models.MinorInfo{
			Situation:                   models.MinorSituation(r.Minor.Situation),
			EmancipationJudgment:        r.Minor.EmancipationJudgment,
			BirthCertificateWithParents: r.Minor.BirthCertificateWithParents,
			ParentsIdentity:             r.Minor.ParentsIdentity,
			ParentsStayProof:            r.Minor.ParentsStayProof,
			NonAccompanyingParentID:     r.Minor.NonAccompanyingParentID,
			ConsentDeclaration:          r.Minor.ConsentDeclaration,
			SoleCustodyProof:            r.Minor.SoleCustodyProof,
			AuthorityDelegation:         r.Minor.AuthorityDelegation,
			CustodyDeclaration:          r.Minor.CustodyDeclaration,
			GuardianCitizenshipProof:    r.Minor.GuardianCitizenshipProof,
			GuardianIdentity:            r.Minor.GuardianIdentity,
			GuardianResidenceProof:      r.Minor.GuardianResidenceProof,
			CriminalRecordClearance:     r.Minor.CriminalRecordClearance,
		}
	}

	return profile
}
