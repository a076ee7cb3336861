package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmichaud/caq-advisor/internal/dto"
	"github.com/lmichaud/caq-advisor/internal/models"
	appErrors "github.com/lmichaud/caq-advisor/pkg/errors"
)

type mockAssessmentWriter struct {
	created []*models.Assessment
	err     error
}

func (m *mockAssessmentWriter) Create(ctx context.Context, assessment *models.Assessment) error {
	if m.err != nil {
		return m.err
	}
	m.created = append(m.created, assessment)
	return nil
}

func validDossierRequest() dto.DossierEvaluationRequest {
	return dto.DossierEvaluationRequest{
		DateOfBirth:        "2000-03-15",
		CountryOfResidence: "France",
		Category:           "ADULT_FIRST_VERIFIED",
		StudyLevel:         "Collégial",
		Passport:           dto.PassportPayload{State: "VALID", Signed: true},
		ProgramStart:       "2025-09-01",
		ProgramEnd:         "2027-06-15",
		Documents: dto.DocumentsPayload{
			DeclarationForm: true,
			AdmissionLetter: true,
		},
		Finances: dto.FinancesPayload{
			Payer:             "SELF",
			Mode:              "CALCULATED",
			AvailableFunds:    20000,
			SelfProof:         true,
			BankStatements6Mo: true,
		},
		Insurance: dto.InsurancePayload{HasFutureCoverage: true},
	}
}

func TestDossierServiceEvaluate(t *testing.T) {
	writer := &mockAssessmentWriter{}
	svc := NewDossierService(DossierServiceParams{Assessments: writer})

	result, cached, err := svc.Evaluate(context.Background(), "user-1", validDossierRequest())
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, models.RecommendationAcceptable, result.Recommendation)

	require.Len(t, writer.created, 1)
	stored := writer.created[0]
	assert.Equal(t, "user-1", stored.ConsultantID)
	assert.Equal(t, models.AssessmentDossier, stored.Kind)
	assert.Equal(t, string(models.RecommendationAcceptable), stored.Outcome)
	assert.NotEmpty(t, stored.Result)
}

func TestDossierServiceRejectsInvalidCategory(t *testing.T) {
	svc := NewDossierService(DossierServiceParams{})

	req := validDossierRequest()
	req.Category = "SOMETHING_ELSE"

	_, _, err := svc.Evaluate(context.Background(), "user-1", req)
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestDossierServicePersistenceFailureDoesNotFailEvaluation(t *testing.T) {
	writer := &mockAssessmentWriter{err: errors.New("db down")}
	svc := NewDossierService(DossierServiceParams{Assessments: writer})

	result, _, err := svc.Evaluate(context.Background(), "user-1", validDossierRequest())
	require.NoError(t, err)
	assert.NotNil(t, result)
}

func TestDossierServiceUnsignedPassportIsHighRisk(t *testing.T) {
	svc := NewDossierService(DossierServiceParams{})

	req := validDossierRequest()
	req.Passport.Signed = false

	result, _, err := svc.Evaluate(context.Background(), "user-1", req)
	require.NoError(t, err)
	assert.Equal(t, models.RecommendationHighRisk, result.Recommendation)
}
