package models

import "time"

// ApplicationType distinguishes a first CAQ application from a renewal.
type ApplicationType string

const (
	ApplicationFirst   ApplicationType = "FIRST"
	ApplicationRenewal ApplicationType = "RENEWAL"
)

// StudyLevel carries the MIFI program-level wording used across the product.
type StudyLevel string

const (
	LevelPrimary      StudyLevel = "Primaire"
	LevelProfessional StudyLevel = "Formation professionnelle"
	LevelCollegial    StudyLevel = "Collégial"
	LevelUniversity   StudyLevel = "Universitaire"
)

// DossierCategory encodes the eight dossier profiles the consultant can pick:
// {major, minor} x {first, renewal} x {finance verified, finance exempt}.
// Application type and finance exemption are always derived from the
// category, never set independently.
type DossierCategory string

const (
	CategoryAdultFirstVerified   DossierCategory = "ADULT_FIRST_VERIFIED"
	CategoryAdultFirstExempt     DossierCategory = "ADULT_FIRST_EXEMPT"
	CategoryAdultRenewalVerified DossierCategory = "ADULT_RENEWAL_VERIFIED"
	CategoryAdultRenewalExempt   DossierCategory = "ADULT_RENEWAL_EXEMPT"
	CategoryMinorFirstVerified   DossierCategory = "MINOR_FIRST_VERIFIED"
	CategoryMinorFirstExempt     DossierCategory = "MINOR_FIRST_EXEMPT"
	CategoryMinorRenewalVerified DossierCategory = "MINOR_RENEWAL_VERIFIED"
	CategoryMinorRenewalExempt   DossierCategory = "MINOR_RENEWAL_EXEMPT"
)

// ApplicationType derives the application type from the category.
func (c DossierCategory) ApplicationType() ApplicationType {
	switch c {
	case CategoryAdultRenewalVerified, CategoryAdultRenewalExempt,
		CategoryMinorRenewalVerified, CategoryMinorRenewalExempt:
		return ApplicationRenewal
	default:
		return ApplicationFirst
	}
}

// FinanceExempt derives the financial-capacity exemption from the category.
func (c DossierCategory) FinanceExempt() bool {
	switch c {
	case CategoryAdultFirstExempt, CategoryAdultRenewalExempt,
		CategoryMinorFirstExempt, CategoryMinorRenewalExempt:
		return true
	default:
		return false
	}
}

// IsMinorCategory reports whether the dossier was filed as a minor dossier.
// A minor-category dossier is treated as a minor regardless of birth date.
func (c DossierCategory) IsMinorCategory() bool {
	switch c {
	case CategoryMinorFirstVerified, CategoryMinorFirstExempt,
		CategoryMinorRenewalVerified, CategoryMinorRenewalExempt:
		return true
	default:
		return false
	}
}

// PassportState describes the travel document as declared by the consultant.
type PassportState string

const (
	PassportValid   PassportState = "VALID"
	PassportExpired PassportState = "EXPIRED"
	PassportAbsent  PassportState = "ABSENT"
)

// PayerType identifies who funds the stay.
type PayerType string

const (
	PayerSelf      PayerType = "SELF"
	PayerGuarantor PayerType = "GUARANTOR"
)

// FinanceMode selects how the financial capacity is established.
type FinanceMode string

const (
	FinanceCalculated FinanceMode = "CALCULATED"
	FinanceDeclared   FinanceMode = "DECLARED"
)

// MinorSituation discriminates the custody arrangement of a minor applicant.
type MinorSituation string

const (
	MinorBothParents   MinorSituation = "BOTH_PARENTS"
	MinorOneParent     MinorSituation = "ONE_PARENT"
	MinorUnaccompanied MinorSituation = "UNACCOMPANIED"
	MinorEmancipated   MinorSituation = "EMANCIPATED"
)

// PassportInfo groups the travel-document declarations.
type PassportInfo struct {
	State  PassportState `json:"state"`
	Signed bool          `json:"signed"`
}

// DocumentSet holds the presence flags for the dossier's base documents.
type DocumentSet struct {
	DeclarationForm       bool `json:"declaration_form"`
	AdmissionLetter       bool `json:"admission_letter"`
	AttendanceProof       bool `json:"attendance_proof"`
	Transcripts           bool `json:"transcripts"`
	ExplanatoryLetter     bool `json:"explanatory_letter"`
	FullTimeJustification bool `json:"full_time_justification"`
}

// FinanceInfo groups the financial-capacity declarations. The exemption
// itself is derived from the dossier category, not stored here.
type FinanceInfo struct {
	Payer                PayerType   `json:"payer"`
	Mode                 FinanceMode `json:"mode"`
	AvailableFunds       float64     `json:"available_funds"`
	SelfProof            bool        `json:"self_proof"`
	BankStatements6Mo    bool        `json:"bank_statements_6mo"`
	GuarantorSupportForm bool        `json:"guarantor_support_form"`
	GuarantorProof       bool        `json:"guarantor_proof"`
	FinancialProof       bool        `json:"financial_proof"`
}

// InsuranceInfo declares coverage for the past stay and the coming program.
type InsuranceInfo struct {
	HasPastCoverage   bool `json:"has_past_coverage"`
	HasFutureCoverage bool `json:"has_future_coverage"`
}

// RenewalInfo is present only on renewal dossiers.
type RenewalInfo struct {
	PreviousCAQStart   *time.Time `json:"previous_caq_start"`
	PreviousCAQEnd     *time.Time `json:"previous_caq_end"`
	PreviousStudyStart *time.Time `json:"previous_study_start"`
	PreviousStudyEnd   *time.Time `json:"previous_study_end"`
	CountryEntryDate   *time.Time `json:"country_entry_date"`
	IsNewProgram       bool       `json:"is_new_program"`
}

// MinorInfo is present only on minor dossiers.
type MinorInfo struct {
	Situation            MinorSituation `json:"situation"`
	EmancipationJudgment bool           `json:"emancipation_judgment"`

	BirthCertificateWithParents bool `json:"birth_certificate_with_parents"`
	ParentsIdentity             bool `json:"parents_identity"`

	// both parents accompanying
	ParentsStayProof bool `json:"parents_stay_proof"`

	// one accompanying parent
	NonAccompanyingParentID bool `json:"non_accompanying_parent_id"`
	ConsentDeclaration      bool `json:"consent_declaration"`
	SoleCustodyProof        bool `json:"sole_custody_proof"`

	// unaccompanied minor
	AuthorityDelegation      bool `json:"authority_delegation"`
	CustodyDeclaration       bool `json:"custody_declaration"`
	GuardianCitizenshipProof bool `json:"guardian_citizenship_proof"`
	GuardianIdentity         bool `json:"guardian_identity"`
	GuardianResidenceProof   bool `json:"guardian_residence_proof"`
	CriminalRecordClearance  bool `json:"criminal_record_clearance"`
}

// ApplicantProfile is the immutable input of one dossier evaluation run.
// Renewal and Minor are nil unless the category calls for them, making the
// impossible combinations unrepresentable instead of presence-checked.
type ApplicantProfile struct {
	DateOfBirth        *time.Time      `json:"date_of_birth"`
	CountryOfResidence string          `json:"country_of_residence"`
	Category           DossierCategory `json:"category"`
	StudyLevel         StudyLevel      `json:"study_level"`
	Passport           PassportInfo    `json:"passport"`
	ProgramStart       *time.Time      `json:"program_start"`
	ProgramEnd         *time.Time      `json:"program_end"`
	Documents          DocumentSet     `json:"documents"`
	Finances           FinanceInfo     `json:"finances"`
	Insurance          InsuranceInfo   `json:"insurance"`
	Renewal            *RenewalInfo    `json:"renewal,omitempty"`
	Minor              *MinorInfo      `json:"minor,omitempty"`
}

// adulthoodAge is the age at which the dossier is handled as an adult file.
const adulthoodAge = 17

// IsAdult computes adulthood at evaluation time. Minor-category dossiers are
// always minors; an unknown birth date on an adult category counts as adult,
// since the engine only tightens requirements for proven minors.
func (p *ApplicantProfile) IsAdult(now time.Time) bool {
	if p.Category.IsMinorCategory() {
		return false
	}
	if p.DateOfBirth == nil {
		return true
	}
	age := now.Year() - p.DateOfBirth.Year()
	anniversary := p.DateOfBirth.AddDate(age, 0, 0)
	if anniversary.After(now) {
		age--
	}
	return age >= adulthoodAge
}
