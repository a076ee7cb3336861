package engine

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmichaud/caq-advisor/internal/models"
	"github.com/lmichaud/caq-advisor/pkg/dates"
)

var testNow = time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

func day(t *testing.T, raw string) *time.Time {
	t.Helper()
	parsed := dates.ParsePtr(raw)
	require.NotNil(t, parsed, "bad test date %q", raw)
	return parsed
}

// completeAdultProfile is a first-application collegial dossier with every
// document present and sufficient calculated funds.
func completeAdultProfile(t *testing.T) *models.ApplicantProfile {
	t.Helper()
	return &models.ApplicantProfile{
		DateOfBirth:        day(t, "2000-04-15"),
		CountryOfResidence: "France",
		Category:           models.CategoryAdultFirstVerified,
		StudyLevel:         models.LevelCollegial,
		Passport:           models.PassportInfo{State: models.PassportValid, Signed: true},
		ProgramStart:       day(t, "2025-09-01"),
		ProgramEnd:         day(t, "2027-06-15"),
		Documents: models.DocumentSet{
			DeclarationForm:       true,
			AdmissionLetter:       true,
			AttendanceProof:       true,
			Transcripts:           true,
			ExplanatoryLetter:     true,
			FullTimeJustification: true,
		},
		Finances: models.FinanceInfo{
			Payer:             models.PayerSelf,
			Mode:              models.FinanceCalculated,
			AvailableFunds:    20000,
			SelfProof:         true,
			BankStatements6Mo: true,
			FinancialProof:    true,
		},
		Insurance: models.InsuranceInfo{HasPastCoverage: true, HasFutureCoverage: true},
	}
}

func findControl(t *testing.T, result *models.DossierAnalysisResult, label string) models.ChecklistItem {
	t.Helper()
	for _, item := range result.Controls {
		if item.Label == label {
			return item
		}
	}
	t.Fatalf("control %q not found", label)
	return models.ChecklistItem{}
}

func TestEvaluateCompleteDossierAcceptable(t *testing.T) {
	result := Evaluate(completeAdultProfile(t), testNow)

	assert.Equal(t, models.RecommendationAcceptable, result.Recommendation)
	assert.Zero(t, result.Summary.BlockingCount)
	assert.Zero(t, result.Summary.MajorCount)
	assert.Equal(t, len(result.Controls), result.Summary.TotalControls)
	assert.Equal(t, "Collégial", result.Summary.LevelLabel)
	assert.Equal(t, "Première demande", result.Summary.TypeLabel)
	assert.Equal(t, "Valide", result.Summary.PassportLabel)
}

func TestEvaluateUnsignedPassportIsHighRisk(t *testing.T) {
	profile := completeAdultProfile(t)
	profile.Passport.Signed = false

	result := Evaluate(profile, testNow)

	passport := findControl(t, result, "Passeport")
	assert.Equal(t, models.ControlInconsistent, passport.Status)
	assert.Equal(t, models.SeverityBlocking, passport.Severity)
	assert.Equal(t, models.RecommendationHighRisk, result.Recommendation)
	assert.Equal(t, 1, result.Summary.BlockingCount)
}

func TestEvaluatePassportStates(t *testing.T) {
	profile := completeAdultProfile(t)
	profile.Passport.State = models.PassportAbsent
	assert.Equal(t, models.ControlMissing, findControl(t, Evaluate(profile, testNow), "Passeport").Status)

	profile.Passport.State = models.PassportExpired
	assert.Equal(t, models.ControlExpired, findControl(t, Evaluate(profile, testNow), "Passeport").Status)
}

func TestEvaluateMinorOneParentWithoutConsentIsHighRisk(t *testing.T) {
	profile := completeAdultProfile(t)
	profile.Category = models.CategoryMinorFirstVerified
	profile.DateOfBirth = day(t, "2012-02-01")
	profile.Minor = &models.MinorInfo{
		Situation:                   models.MinorOneParent,
		BirthCertificateWithParents: true,
		ParentsIdentity:             true,
		NonAccompanyingParentID:     true,
	}

	result := Evaluate(profile, testNow)

	consent := findControl(t, result, "Consentement du parent non accompagnateur ou garde exclusive")
	assert.Equal(t, models.ControlMissing, consent.Status)
	assert.Equal(t, models.SeverityBlocking, consent.Severity)
	assert.Equal(t, models.RecommendationHighRisk, result.Recommendation)
}

func TestEvaluateMinorCategoryWithoutMinorRecordIsHighRisk(t *testing.T) {
	profile := completeAdultProfile(t)
	profile.Category = models.CategoryMinorFirstVerified
	profile.DateOfBirth = day(t, "2012-02-01")
	profile.Minor = nil

	result := Evaluate(profile, testNow)

	birth := findControl(t, result, "Certificat de naissance mentionnant le nom des parents")
	assert.Equal(t, models.ControlMissing, birth.Status)
	assert.Equal(t, models.SeverityBlocking, birth.Severity)
	identity := findControl(t, result, "Pièces d'identité des deux parents")
	assert.Equal(t, models.ControlMissing, identity.Status)
	assert.Equal(t, models.RecommendationHighRisk, result.Recommendation)
	assert.GreaterOrEqual(t, result.Summary.BlockingCount, 2)
}

func TestEvaluateMinorConsentAlternatives(t *testing.T) {
	profile := completeAdultProfile(t)
	profile.Category = models.CategoryMinorFirstVerified
	profile.Minor = &models.MinorInfo{
		Situation:                   models.MinorOneParent,
		BirthCertificateWithParents: true,
		ParentsIdentity:             true,
		NonAccompanyingParentID:     true,
		SoleCustodyProof:            true,
	}

	consent := findControl(t, Evaluate(profile, testNow),
		"Consentement du parent non accompagnateur ou garde exclusive")
	assert.Equal(t, models.ControlOK, consent.Status)
	assert.Contains(t, consent.Note, "garde exclusive")
}

func TestEvaluateUnaccompaniedMinorSeverities(t *testing.T) {
	profile := completeAdultProfile(t)
	profile.Category = models.CategoryMinorFirstVerified
	profile.Minor = &models.MinorInfo{Situation: models.MinorUnaccompanied}

	result := Evaluate(profile, testNow)

	citizenship := findControl(t, result, "Preuve de citoyenneté ou de résidence permanente de l'adulte responsable")
	assert.Equal(t, models.SeverityMajor, citizenship.Severity)
	residence := findControl(t, result, "Preuve de résidence de l'adulte responsable")
	assert.Equal(t, models.SeverityMajor, residence.Severity)
	delegation := findControl(t, result, "Délégation de l'autorité parentale")
	assert.Equal(t, models.SeverityBlocking, delegation.Severity)
	assert.Equal(t, models.ControlMissing, delegation.Status)
}

func TestEvaluateEmancipatedMinorNeedsJudgment(t *testing.T) {
	profile := completeAdultProfile(t)
	profile.Category = models.CategoryMinorFirstVerified
	profile.Minor = &models.MinorInfo{Situation: models.MinorEmancipated}

	result := Evaluate(profile, testNow)

	judgment := findControl(t, result, "Jugement d'émancipation")
	assert.Equal(t, models.ControlMissing, judgment.Status)
	assert.Equal(t, models.RecommendationHighRisk, result.Recommendation)

	// Emancipated minors skip the custody document rules.
	for _, item := range result.Controls {
		assert.NotEqual(t, "Pièces d'identité des deux parents", item.Label)
	}
}

func TestEvaluateRenewalContinuityViolation(t *testing.T) {
	profile := completeAdultProfile(t)
	profile.Category = models.CategoryAdultRenewalVerified
	profile.Renewal = &models.RenewalInfo{
		PreviousCAQStart:   day(t, "2023-08-01"),
		PreviousCAQEnd:     day(t, "2024-06-30"),
		PreviousStudyStart: day(t, "2023-09-01"),
		PreviousStudyEnd:   day(t, "2024-08-30"),
	}

	result := Evaluate(profile, testNow)

	continuity := findControl(t, result, "Continuité entre le CAQ précédent et les études")
	assert.Equal(t, models.ControlMissing, continuity.Status)
	assert.Equal(t, models.SeverityMajor, continuity.Severity)
	assert.Equal(t, models.RecommendationNeedsCompletion, result.Recommendation)
}

func TestEvaluateRenewalTranscriptsFallback(t *testing.T) {
	profile := completeAdultProfile(t)
	profile.Category = models.CategoryAdultRenewalVerified
	profile.Documents.Transcripts = false

	result := Evaluate(profile, testNow)
	transcripts := findControl(t, result, "Relevés de notes des études antérieures")
	assert.Equal(t, models.ControlInconsistent, transcripts.Status)

	profile.Documents.ExplanatoryLetter = false
	result = Evaluate(profile, testNow)
	transcripts = findControl(t, result, "Relevés de notes des études antérieures")
	assert.Equal(t, models.ControlMissing, transcripts.Status)
}

func TestEvaluateShortProgramIsBlocking(t *testing.T) {
	profile := completeAdultProfile(t)
	profile.ProgramStart = day(t, "2025-09-01")
	profile.ProgramEnd = day(t, "2025-12-15")

	result := Evaluate(profile, testNow)

	duration := findControl(t, result, "Durée du programme d'études")
	assert.Equal(t, models.ControlInconsistent, duration.Status)
	assert.Equal(t, models.RecommendationHighRisk, result.Recommendation)
}

func TestEvaluateMissingProgramDatesDegradesGracefully(t *testing.T) {
	profile := completeAdultProfile(t)
	profile.ProgramStart = nil
	profile.ProgramEnd = nil

	result := Evaluate(profile, testNow)

	duration := findControl(t, result, "Durée du programme d'études")
	assert.Equal(t, models.ControlMissing, duration.Status)
	assert.Nil(t, result.CAQWindowStart)
	assert.Nil(t, result.CAQWindowEnd)
}

func TestEvaluateCAQWindow(t *testing.T) {
	result := Evaluate(completeAdultProfile(t), testNow)

	require.NotNil(t, result.CAQWindowStart)
	require.NotNil(t, result.CAQWindowEnd)
	assert.Equal(t, *day(t, "2025-08-01"), *result.CAQWindowStart)
	assert.Equal(t, *day(t, "2027-09-15"), *result.CAQWindowEnd)
}

func TestEvaluateUniversityInsuranceDeemedIncluded(t *testing.T) {
	profile := completeAdultProfile(t)
	profile.StudyLevel = models.LevelUniversity
	profile.Insurance = models.InsuranceInfo{}

	result := Evaluate(profile, testNow)

	insurance := findControl(t, result, "Assurance maladie et hospitalisation")
	assert.Equal(t, models.ControlOK, insurance.Status)
	assert.Equal(t, models.SeverityMinor, insurance.Severity)
}

func TestEvaluateInsufficientFunds(t *testing.T) {
	profile := completeAdultProfile(t)
	profile.Finances.AvailableFunds = 10000

	result := Evaluate(profile, testNow)

	finances := findControl(t, result, "Capacité financière")
	assert.Equal(t, models.ControlInsufficient, finances.Status)
	assert.Equal(t, models.SeverityMajor, finances.Severity)
	assert.Contains(t, finances.Note, "manque")
	assert.Equal(t, models.RecommendationNeedsCompletion, result.Recommendation)
}

func TestEvaluateFinanceSeverityBlockingForMinor(t *testing.T) {
	profile := completeAdultProfile(t)
	profile.Category = models.CategoryMinorFirstVerified
	profile.Minor = &models.MinorInfo{
		Situation:                   models.MinorBothParents,
		BirthCertificateWithParents: true,
		ParentsIdentity:             true,
		ParentsStayProof:            true,
	}
	profile.Finances.SelfProof = false

	finances := findControl(t, Evaluate(profile, testNow), "Capacité financière")
	assert.Equal(t, models.SeverityBlocking, finances.Severity)
	assert.Equal(t, models.ControlMissing, finances.Status)
}

func TestEvaluateFinanceExemptCategory(t *testing.T) {
	profile := completeAdultProfile(t)
	profile.Category = models.CategoryAdultFirstExempt
	profile.Finances = models.FinanceInfo{}

	finances := findControl(t, Evaluate(profile, testNow), "Capacité financière")
	assert.Equal(t, models.ControlOK, finances.Status)
	assert.Contains(t, finances.Note, "exemptée")
}

func TestEvaluateFederalFinanceVerification(t *testing.T) {
	profile := completeAdultProfile(t)
	profile.CountryOfResidence = "Brésil"
	profile.Finances = models.FinanceInfo{}

	finances := findControl(t, Evaluate(profile, testNow), "Capacité financière")
	assert.Equal(t, models.ControlOK, finances.Status)
	assert.Contains(t, finances.Note, "fédéral")
}

func TestEvaluatePrimaryLevelExemptionNote(t *testing.T) {
	profile := completeAdultProfile(t)
	profile.StudyLevel = models.LevelPrimary

	first := Evaluate(profile, testNow).Controls[0]
	assert.Equal(t, "Exemption de CAQ au niveau primaire", first.Label)
	assert.Equal(t, models.ControlOK, first.Status)
	assert.Equal(t, models.SeverityMinor, first.Severity)
}

func TestEvaluateIsIdempotent(t *testing.T) {
	profile := completeAdultProfile(t)
	first := Evaluate(profile, testNow)
	second := Evaluate(profile, testNow)
	assert.True(t, reflect.DeepEqual(first, second))
}

func TestRecommendationDerivation(t *testing.T) {
	// HIGH_RISK iff a blocking violation exists, NEEDS_COMPLETION iff only
	// major violations exist, ACCEPTABLE otherwise.
	cases := []struct {
		name   string
		mutate func(*models.ApplicantProfile)
		want   models.Recommendation
	}{
		{"clean", func(p *models.ApplicantProfile) {}, models.RecommendationAcceptable},
		{"majorOnly", func(p *models.ApplicantProfile) { p.Insurance.HasFutureCoverage = false }, models.RecommendationNeedsCompletion},
		{"blocking", func(p *models.ApplicantProfile) { p.Documents.DeclarationForm = false }, models.RecommendationHighRisk},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			profile := completeAdultProfile(t)
			tc.mutate(profile)
			result := Evaluate(profile, testNow)
			assert.Equal(t, tc.want, result.Recommendation)

			hasBlocking, hasMajor := false, false
			for _, item := range result.Controls {
				if item.Violated() && item.Severity == models.SeverityBlocking {
					hasBlocking = true
				}
				if item.Violated() && item.Severity == models.SeverityMajor {
					hasMajor = true
				}
			}
			switch result.Recommendation {
			case models.RecommendationHighRisk:
				assert.True(t, hasBlocking)
			case models.RecommendationNeedsCompletion:
				assert.True(t, hasMajor && !hasBlocking)
			default:
				assert.False(t, hasBlocking || hasMajor)
			}
		})
	}
}
