package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/isg-tracker/internal/core/firm"
	"github.com/ogurasousui/isg-tracker/internal/core/schedule"
	pgdb "github.com/ogurasousui/isg-tracker/internal/platform/db/postgres"
)

// FirmRepository は PostgreSQL を利用した事業所永続化の実装です。
type FirmRepository struct {
	pool pgdb.Queryer
}

// NewFirmRepository は FirmRepository を生成します。
func NewFirmRepository(pool pgdb.Queryer) *FirmRepository {
	return &FirmRepository{pool: pool}
}

// Create は事業所を新規作成します。
func (r *FirmRepository) Create(ctx context.Context, f *firm.Firm) (*firm.Firm, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO firms (id, name, hazard_tier, notes, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, name, hazard_tier, notes, created_at, updated_at
    `, f.ID, f.Name, string(f.HazardTier), nullableString(f.Notes), f.CreatedAt, f.UpdatedAt)

	created, err := scanFirm(row)
	if err != nil {
		return nil, translateFirmPgError(err)
	}
	return created, nil
}

// Update は事業所を更新します。
func (r *FirmRepository) Update(ctx context.Context, f *firm.Firm) (*firm.Firm, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE firms
           SET name = $1,
               hazard_tier = $2,
               notes = $3,
               updated_at = $4
         WHERE id = $5
        RETURNING id, name, hazard_tier, notes, created_at, updated_at
    `, f.Name, string(f.HazardTier), nullableString(f.Notes), f.UpdatedAt, f.ID)

	updated, err := scanFirm(row)
	if err != nil {
		return nil, translateFirmPgError(err)
	}
	return updated, nil
}

// Delete は事業所を削除します。従属する記録は外部キーで連鎖削除されます。
func (r *FirmRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM firms WHERE id = $1`, id)
	if err != nil {
		return translateFirmPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return firm.ErrFirmNotFound
	}
	return nil
}

// FindByID は ID で事業所を取得します。
func (r *FirmRepository) FindByID(ctx context.Context, id string) (*firm.Firm, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, name, hazard_tier, notes, created_at, updated_at
          FROM firms
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanFirm(row)
	if err != nil {
		return nil, translateFirmPgError(err)
	}
	return found, nil
}

// FindByName は名前で事業所を取得します。
func (r *FirmRepository) FindByName(ctx context.Context, name string) (*firm.Firm, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, name, hazard_tier, notes, created_at, updated_at
          FROM firms
         WHERE name = $1
         LIMIT 1
    `, name)

	found, err := scanFirm(row)
	if err != nil {
		return nil, translateFirmPgError(err)
	}
	return found, nil
}

// List は事業所を名前順で取得します。
func (r *FirmRepository) List(ctx context.Context, filter firm.ListFirmsFilter) ([]*firm.Firm, string, error) {
	if filter.Limit <= 0 {
		return nil, "", firm.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", firm.ErrInvalidPageToken
	}
	if filter.IDs != nil && len(filter.IDs) == 0 {
		return []*firm.Firm{}, "", nil
	}

	args := make([]any, 0, 4)
	conditions := make([]string, 0, 2)

	if filter.HazardTier != nil {
		args = append(args, string(*filter.HazardTier))
		conditions = append(conditions, "hazard_tier = $"+strconv.Itoa(len(args)))
	}
	if filter.IDs != nil {
		args = append(args, filter.IDs)
		conditions = append(conditions, "id = ANY($"+strconv.Itoa(len(args))+")")
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	args = append(args, filter.Limit+1)
	limitPlaceholder := "$" + strconv.Itoa(len(args))
	args = append(args, filter.Offset)
	offsetPlaceholder := "$" + strconv.Itoa(len(args))

	query := `
        SELECT id, name, hazard_tier, notes, created_at, updated_at
          FROM firms` + whereClause + `
         ORDER BY name ASC, id ASC
         LIMIT ` + limitPlaceholder + `
        OFFSET ` + offsetPlaceholder + `
    `

	firms, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, "", err
	}

	var nextToken string
	if len(firms) > filter.Limit {
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
		firms = firms[:filter.Limit]
	}

	return firms, nextToken, nil
}

// ListAll は全事業所を名前順で取得します。
func (r *FirmRepository) ListAll(ctx context.Context) ([]*firm.Firm, error) {
	return r.query(ctx, `
        SELECT id, name, hazard_tier, notes, created_at, updated_at
          FROM firms
         ORDER BY name ASC, id ASC
    `)
}

func (r *FirmRepository) query(ctx context.Context, query string, args ...any) ([]*firm.Firm, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, translateFirmPgError(err)
	}
	defer rows.Close()

	var firms []*firm.Firm
	for rows.Next() {
		found, err := scanFirm(rows)
		if err != nil {
			return nil, translateFirmPgError(err)
		}
		firms = append(firms, found)
	}

	if err := rows.Err(); err != nil {
		return nil, translateFirmPgError(err)
	}
	return firms, nil
}

func scanFirm(row pgx.Row) (*firm.Firm, error) {
	var (
		id, name, tier       string
		notes                sql.NullString
		createdAt, updatedAt time.Time
	)

	if err := row.Scan(&id, &name, &tier, &notes, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, firm.ErrFirmNotFound
		}
		return nil, err
	}

	var notesPtr *string
	if notes.Valid {
		n := notes.String
		notesPtr = &n
	}

	return &firm.Firm{
		ID:         id,
		Name:       name,
		HazardTier: schedule.HazardTier(tier),
		Notes:      notesPtr,
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	}, nil
}

func translateFirmPgError(err error) error {
	if pgErrorCode(err) == uniqueViolationCode {
		return firm.ErrNameAlreadyExists
	}
	return err
}
