package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/isg-tracker/internal/core/riskassessment"
	pgdb "github.com/ogurasousui/isg-tracker/internal/platform/db/postgres"
)

// RiskAssessmentRepository は PostgreSQL を利用したリスク評価永続化の実装です。
type RiskAssessmentRepository struct {
	pool pgdb.Queryer
}

// NewRiskAssessmentRepository は RiskAssessmentRepository を生成します。
func NewRiskAssessmentRepository(pool pgdb.Queryer) *RiskAssessmentRepository {
	return &RiskAssessmentRepository{pool: pool}
}

// Create はリスク評価を新規作成します。
func (r *RiskAssessmentRepository) Create(ctx context.Context, a *riskassessment.Assessment) (*riskassessment.Assessment, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO risk_assessments (id, firm_id, assessment_date, valid_until, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, firm_id, assessment_date, valid_until, created_at, updated_at
    `, a.ID, a.FirmID, a.AssessmentDate, a.ValidUntil, a.CreatedAt, a.UpdatedAt)

	created, err := scanAssessment(row)
	if err != nil {
		return nil, translateFirmScopedPgError(err, riskassessment.ErrFirmNotFound)
	}
	return created, nil
}

// Update はリスク評価を更新します。
func (r *RiskAssessmentRepository) Update(ctx context.Context, a *riskassessment.Assessment) (*riskassessment.Assessment, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE risk_assessments
           SET assessment_date = $1,
               valid_until = $2,
               updated_at = $3
         WHERE id = $4
        RETURNING id, firm_id, assessment_date, valid_until, created_at, updated_at
    `, a.AssessmentDate, a.ValidUntil, a.UpdatedAt, a.ID)

	updated, err := scanAssessment(row)
	if err != nil {
		return nil, translateFirmScopedPgError(err, riskassessment.ErrFirmNotFound)
	}
	return updated, nil
}

// FindByFirmID は事業所のリスク評価を取得します。
func (r *RiskAssessmentRepository) FindByFirmID(ctx context.Context, firmID string) (*riskassessment.Assessment, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, firm_id, assessment_date, valid_until, created_at, updated_at
          FROM risk_assessments
         WHERE firm_id = $1
         LIMIT 1
    `, firmID)

	return scanAssessment(row)
}

// ListAll は全リスク評価を取得します。
func (r *RiskAssessmentRepository) ListAll(ctx context.Context) ([]*riskassessment.Assessment, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT id, firm_id, assessment_date, valid_until, created_at, updated_at
          FROM risk_assessments
         ORDER BY valid_until ASC, id ASC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assessments []*riskassessment.Assessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, err
		}
		assessments = append(assessments, a)
	}
	return assessments, rows.Err()
}

func scanAssessment(row pgx.Row) (*riskassessment.Assessment, error) {
	var (
		id, firmID           string
		assessed, validUntil time.Time
		createdAt, updatedAt time.Time
	)

	if err := row.Scan(&id, &firmID, &assessed, &validUntil, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, riskassessment.ErrAssessmentNotFound
		}
		return nil, err
	}

	return &riskassessment.Assessment{
		ID:             id,
		FirmID:         firmID,
		AssessmentDate: assessed,
		ValidUntil:     validUntil,
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}, nil
}

// translateFirmScopedPgError は事業所に一件だけ紐づく記録の外部キー違反を notFound に置き換えます。
func translateFirmScopedPgError(err, notFound error) error {
	if pgErrorCode(err) == foreignKeyViolationCode {
		return notFound
	}
	return err
}
