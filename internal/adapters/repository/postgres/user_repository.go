package postgres

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/isg-tracker/internal/core/user"
	pgdb "github.com/ogurasousui/isg-tracker/internal/platform/db/postgres"
)

// UserRepository は PostgreSQL を利用したユーザー永続化の実装です。
type UserRepository struct {
	pool pgdb.Queryer
}

// NewUserRepository は UserRepository を生成します。
func NewUserRepository(pool pgdb.Queryer) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create はユーザーを新規作成します。
func (r *UserRepository) Create(ctx context.Context, u *user.User) (*user.User, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO users (id, username, full_name, role, allowed_firm_ids, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, username, full_name, role, allowed_firm_ids, created_at, updated_at
    `, u.ID, u.Username, u.FullName, string(u.Role), allowedFirmIDs(u.AllowedFirmIDs), u.CreatedAt, u.UpdatedAt)

	created, err := scanUser(row)
	if err != nil {
		return nil, translatePgError(err)
	}
	return created, nil
}

// Update はユーザー情報を更新します。
func (r *UserRepository) Update(ctx context.Context, u *user.User) (*user.User, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE users
           SET full_name = $1,
               role = $2,
               allowed_firm_ids = $3,
               updated_at = $4
         WHERE id = $5
        RETURNING id, username, full_name, role, allowed_firm_ids, created_at, updated_at
    `, u.FullName, string(u.Role), allowedFirmIDs(u.AllowedFirmIDs), u.UpdatedAt, u.ID)

	updated, err := scanUser(row)
	if err != nil {
		return nil, translatePgError(err)
	}
	return updated, nil
}

// Delete はユーザーを削除します。
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return translatePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// FindByID はIDでユーザーを取得します。
func (r *UserRepository) FindByID(ctx context.Context, id string) (*user.User, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, username, full_name, role, allowed_firm_ids, created_at, updated_at
          FROM users
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanUser(row)
	if err != nil {
		return nil, translatePgError(err)
	}
	return found, nil
}

// FindByUsername はユーザー名でユーザーを取得します。
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, username, full_name, role, allowed_firm_ids, created_at, updated_at
          FROM users
         WHERE username = $1
         LIMIT 1
    `, username)

	found, err := scanUser(row)
	if err != nil {
		return nil, translatePgError(err)
	}
	return found, nil
}

// List はユーザー一覧を取得します。
func (r *UserRepository) List(ctx context.Context, filter user.ListUsersFilter) ([]*user.User, string, error) {
	if filter.Limit <= 0 {
		return nil, "", user.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", user.ErrInvalidPageToken
	}

	args := make([]any, 0, 3)
	whereClause := ""
	if filter.Role != nil {
		args = append(args, string(*filter.Role))
		whereClause = " WHERE role = $" + strconv.Itoa(len(args))
	}

	args = append(args, filter.Limit+1)
	limitPlaceholder := "$" + strconv.Itoa(len(args))
	args = append(args, filter.Offset)
	offsetPlaceholder := "$" + strconv.Itoa(len(args))

	query := `
        SELECT id, username, full_name, role, allowed_firm_ids, created_at, updated_at
          FROM users` + whereClause + `
         ORDER BY username ASC, id ASC
         LIMIT ` + limitPlaceholder + `
        OFFSET ` + offsetPlaceholder + `
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, "", translatePgError(err)
	}
	defer rows.Close()

	var users []*user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, "", translatePgError(err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, "", translatePgError(err)
	}

	var nextToken string
	if len(users) > filter.Limit {
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
		users = users[:filter.Limit]
	}

	return users, nextToken, nil
}

func scanUser(row pgx.Row) (*user.User, error) {
	var (
		id, username, fullName, role string
		allowed                      []string
		createdAt, updatedAt         time.Time
	)

	if err := row.Scan(&id, &username, &fullName, &role, &allowed, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, err
	}

	return &user.User{
		ID:             id,
		Username:       username,
		FullName:       fullName,
		Role:           user.Role(role),
		AllowedFirmIDs: allowed,
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}, nil
}

// allowedFirmIDs は NULL ではなく空配列を書き込むために nil を詰め替えます。
func allowedFirmIDs(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

func translatePgError(err error) error {
	if pgErrorCode(err) == uniqueViolationCode {
		return user.ErrUsernameAlreadyExists
	}
	return err
}
