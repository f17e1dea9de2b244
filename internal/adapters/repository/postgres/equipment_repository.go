package postgres

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/isg-tracker/internal/core/equipment"
	pgdb "github.com/ogurasousui/isg-tracker/internal/platform/db/postgres"
)

// EquipmentRepository は PostgreSQL を利用した設備永続化の実装です。
type EquipmentRepository struct {
	pool pgdb.Queryer
}

// NewEquipmentRepository は EquipmentRepository を生成します。
func NewEquipmentRepository(pool pgdb.Queryer) *EquipmentRepository {
	return &EquipmentRepository{pool: pool}
}

// Create は設備を新規作成します。
func (r *EquipmentRepository) Create(ctx context.Context, e *equipment.Equipment) (*equipment.Equipment, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO equipment (id, firm_id, name, last_inspection_date, period_months, next_inspection_date, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, firm_id, name, last_inspection_date, period_months, next_inspection_date, created_at, updated_at
    `, e.ID, e.FirmID, e.Name, e.LastInspectionDate, e.PeriodMonths, e.NextInspectionDate, e.CreatedAt, e.UpdatedAt)

	created, err := scanEquipment(row)
	if err != nil {
		return nil, translateEquipmentPgError(err)
	}
	return created, nil
}

// Update は設備を更新します。
func (r *EquipmentRepository) Update(ctx context.Context, e *equipment.Equipment) (*equipment.Equipment, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE equipment
           SET name = $1,
               last_inspection_date = $2,
               period_months = $3,
               next_inspection_date = $4,
               updated_at = $5
         WHERE id = $6
        RETURNING id, firm_id, name, last_inspection_date, period_months, next_inspection_date, created_at, updated_at
    `, e.Name, e.LastInspectionDate, e.PeriodMonths, e.NextInspectionDate, e.UpdatedAt, e.ID)

	updated, err := scanEquipment(row)
	if err != nil {
		return nil, translateEquipmentPgError(err)
	}
	return updated, nil
}

// Delete は設備を削除します。
func (r *EquipmentRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM equipment WHERE id = $1`, id)
	if err != nil {
		return translateEquipmentPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return equipment.ErrEquipmentNotFound
	}
	return nil
}

// FindByID は ID で設備を取得します。
func (r *EquipmentRepository) FindByID(ctx context.Context, id string) (*equipment.Equipment, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, firm_id, name, last_inspection_date, period_months, next_inspection_date, created_at, updated_at
          FROM equipment
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanEquipment(row)
	if err != nil {
		return nil, translateEquipmentPgError(err)
	}
	return found, nil
}

// List は事業所の設備を名前順で取得します。
func (r *EquipmentRepository) List(ctx context.Context, filter equipment.ListEquipmentFilter) ([]*equipment.Equipment, string, error) {
	if filter.Limit <= 0 {
		return nil, "", equipment.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", equipment.ErrInvalidPageToken
	}

	items, err := r.query(ctx, `
        SELECT id, firm_id, name, last_inspection_date, period_months, next_inspection_date, created_at, updated_at
          FROM equipment
         WHERE firm_id = $1
         ORDER BY name ASC, id ASC
         LIMIT $2
        OFFSET $3
    `, filter.FirmID, filter.Limit+1, filter.Offset)
	if err != nil {
		return nil, "", err
	}

	var nextToken string
	if len(items) > filter.Limit {
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
		items = items[:filter.Limit]
	}

	return items, nextToken, nil
}

// ListAll は全設備を取得します。
func (r *EquipmentRepository) ListAll(ctx context.Context) ([]*equipment.Equipment, error) {
	return r.query(ctx, `
        SELECT id, firm_id, name, last_inspection_date, period_months, next_inspection_date, created_at, updated_at
          FROM equipment
         ORDER BY next_inspection_date ASC, id ASC
    `)
}

func (r *EquipmentRepository) query(ctx context.Context, query string, args ...any) ([]*equipment.Equipment, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, translateEquipmentPgError(err)
	}
	defer rows.Close()

	var items []*equipment.Equipment
	for rows.Next() {
		e, err := scanEquipment(rows)
		if err != nil {
			return nil, translateEquipmentPgError(err)
		}
		items = append(items, e)
	}

	if err := rows.Err(); err != nil {
		return nil, translateEquipmentPgError(err)
	}
	return items, nil
}

func scanEquipment(row pgx.Row) (*equipment.Equipment, error) {
	var (
		id, firmID, name     string
		last, next           time.Time
		period               int
		createdAt, updatedAt time.Time
	)

	if err := row.Scan(&id, &firmID, &name, &last, &period, &next, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, equipment.ErrEquipmentNotFound
		}
		return nil, err
	}

	return &equipment.Equipment{
		ID:                 id,
		FirmID:             firmID,
		Name:               name,
		LastInspectionDate: last,
		PeriodMonths:       period,
		NextInspectionDate: next,
		CreatedAt:          createdAt,
		UpdatedAt:          updatedAt,
	}, nil
}

func translateEquipmentPgError(err error) error {
	if pgErrorCode(err) == foreignKeyViolationCode {
		return equipment.ErrFirmNotFound
	}
	return err
}
