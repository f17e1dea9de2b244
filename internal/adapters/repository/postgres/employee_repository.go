package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/isg-tracker/internal/core/employee"
	pgdb "github.com/ogurasousui/isg-tracker/internal/platform/db/postgres"
)

// EmployeeRepository は PostgreSQL を利用した従業員永続化の実装です。
type EmployeeRepository struct {
	pool pgdb.Queryer
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(pool pgdb.Queryer) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// Create は従業員を新規作成します。
func (r *EmployeeRepository) Create(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO employees (id, firm_id, national_id, full_name, last_training_date, next_training_date, status, terminated_at, approval, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING id, firm_id, national_id, full_name, last_training_date, next_training_date, status, terminated_at, approval, created_at, updated_at
    `, e.ID, e.FirmID, e.NationalID, e.FullName, e.LastTrainingDate, e.NextTrainingDate,
		string(e.Status), nullableTime(e.TerminatedAt), string(e.Approval), e.CreatedAt, e.UpdatedAt)

	created, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return created, nil
}

// Update は従業員情報を更新します。
func (r *EmployeeRepository) Update(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE employees
           SET national_id = $1,
               full_name = $2,
               last_training_date = $3,
               next_training_date = $4,
               status = $5,
               terminated_at = $6,
               approval = $7,
               updated_at = $8
         WHERE id = $9
        RETURNING id, firm_id, national_id, full_name, last_training_date, next_training_date, status, terminated_at, approval, created_at, updated_at
    `, e.NationalID, e.FullName, e.LastTrainingDate, e.NextTrainingDate, string(e.Status),
		nullableTime(e.TerminatedAt), string(e.Approval), e.UpdatedAt, e.ID)

	updated, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return updated, nil
}

// FindByID は ID で従業員を取得します。
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, firm_id, national_id, full_name, last_training_date, next_training_date, status, terminated_at, approval, created_at, updated_at
          FROM employees
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return found, nil
}

// FindByNationalID は国民 ID に一致する全事業所の記録を取得します。
func (r *EmployeeRepository) FindByNationalID(ctx context.Context, nationalID string) ([]*employee.Employee, error) {
	return r.query(ctx, `
        SELECT id, firm_id, national_id, full_name, last_training_date, next_training_date, status, terminated_at, approval, created_at, updated_at
          FROM employees
         WHERE national_id = $1
         ORDER BY created_at ASC, id ASC
    `, nationalID)
}

// List は従業員一覧を取得します。
func (r *EmployeeRepository) List(ctx context.Context, filter employee.ListEmployeesFilter) ([]*employee.Employee, string, error) {
	if filter.Limit <= 0 {
		return nil, "", employee.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", employee.ErrInvalidPageToken
	}

	args := make([]any, 0, 4)
	conditions := make([]string, 0, 2)

	if filter.FirmID != "" {
		args = append(args, filter.FirmID)
		conditions = append(conditions, "firm_id = $"+strconv.Itoa(len(args)))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conditions = append(conditions, "status = $"+strconv.Itoa(len(args)))
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
        SELECT id, firm_id, national_id, full_name, last_training_date, next_training_date, status, terminated_at, approval, created_at, updated_at
          FROM employees` + whereClause + `
         ORDER BY full_name ASC, id ASC
         LIMIT ` + limitPlaceholder + `
        OFFSET ` + offsetPlaceholder + `
    `

	employees, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, "", err
	}

	var nextToken string
	if len(employees) > filter.Limit {
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
		employees = employees[:filter.Limit]
	}

	return employees, nextToken, nil
}

// ListAll は全従業員を取得します。期限集計のスナップショットに使います。
func (r *EmployeeRepository) ListAll(ctx context.Context) ([]*employee.Employee, error) {
	return r.query(ctx, `
        SELECT id, firm_id, national_id, full_name, last_training_date, next_training_date, status, terminated_at, approval, created_at, updated_at
          FROM employees
         ORDER BY next_training_date ASC, id ASC
    `)
}

func (r *EmployeeRepository) query(ctx context.Context, query string, args ...any) ([]*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	defer rows.Close()

	var employees []*employee.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, translateEmployeePgError(err)
		}
		employees = append(employees, e)
	}

	if err := rows.Err(); err != nil {
		return nil, translateEmployeePgError(err)
	}
	return employees, nil
}

func scanEmployee(row pgx.Row) (*employee.Employee, error) {
	var (
		id, firmID, nationalID, fullName string
		lastTraining, nextTraining       time.Time
		status, approval                 string
		terminatedAt                     sql.NullTime
		createdAt, updatedAt             time.Time
	)

	if err := row.Scan(&id, &firmID, &nationalID, &fullName, &lastTraining, &nextTraining,
		&status, &terminatedAt, &approval, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, err
	}

	var terminatedPtr *time.Time
	if terminatedAt.Valid {
		t := terminatedAt.Time
		terminatedPtr = &t
	}

	return &employee.Employee{
		ID:               id,
		FirmID:           firmID,
		NationalID:       nationalID,
		FullName:         fullName,
		LastTrainingDate: lastTraining,
		NextTrainingDate: nextTraining,
		Status:           employee.Status(status),
		TerminatedAt:     terminatedPtr,
		Approval:         employee.Approval(approval),
		CreatedAt:        createdAt,
		UpdatedAt:        updatedAt,
	}, nil
}

func translateEmployeePgError(err error) error {
	switch pgErrorCode(err) {
	case uniqueViolationCode:
		return employee.ErrNationalIDAlreadyExists
	case foreignKeyViolationCode:
		return employee.ErrFirmNotFound
	}
	return err
}
