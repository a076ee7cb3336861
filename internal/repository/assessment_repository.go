package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/lmichaud/caq-advisor/internal/models"
)

// AssessmentRepository persists analysis outcomes for later review.
type AssessmentRepository struct {
	db *sqlx.DB
}

// NewAssessmentRepository constructs the repository.
func NewAssessmentRepository(db *sqlx.DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

// Create inserts a new assessment row.
func (r *AssessmentRepository) Create(ctx context.Context, assessment *models.Assessment) error {
	if assessment.ID == "" {
		assessment.ID = uuid.NewString()
	}
	if assessment.CreatedAt.IsZero() {
		assessment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO assessments
	(id, consultant_id, kind, outcome, score, blocking_count, major_count, result, created_at)
	VALUES (:id, :consultant_id, :kind, :outcome, :score, :blocking_count, :major_count, :result, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assessment); err != nil {
		return fmt.Errorf("create assessment: %w", err)
	}
	return nil
}

// GetByID fetches an assessment by identifier.
func (r *AssessmentRepository) GetByID(ctx context.Context, id string) (*models.Assessment, error) {
	const query = `SELECT id, consultant_id, kind, outcome, score, blocking_count, major_count, result, created_at
	FROM assessments WHERE id = $1`
	var assessment models.Assessment
	if err := r.db.GetContext(ctx, &assessment, query, id); err != nil {
		return nil, err
	}
	return &assessment, nil
}

// AssessmentFilter narrows List results.
type AssessmentFilter struct {
	Kind         models.AssessmentKind
	ConsultantID string
	Limit        int
	Offset       int
}

// List returns assessments matching the filter, latest first.
func (r *AssessmentRepository) List(ctx context.Context, filter AssessmentFilter) ([]models.Assessment, error) {
	builder := strings.Builder{}
	args := make([]interface{}, 0, 2)
	builder.WriteString(`SELECT id, consultant_id, kind, outcome, score, blocking_count, major_count, result, created_at FROM assessments`)

	conditions := make([]string, 0, 2)
	if filter.Kind != "" {
		args = append(args, filter.Kind)
		conditions = append(conditions, fmt.Sprintf("kind = $%d", len(args)))
	}
	if filter.ConsultantID != "" {
		args = append(args, filter.ConsultantID)
		conditions = append(conditions, fmt.Sprintf("consultant_id = $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY created_at DESC")

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset))

	var assessments []models.Assessment
	if err := r.db.SelectContext(ctx, &assessments, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	return assessments, nil
}
