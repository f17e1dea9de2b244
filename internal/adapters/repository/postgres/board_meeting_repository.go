package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/isg-tracker/internal/core/boardmeeting"
	pgdb "github.com/ogurasousui/isg-tracker/internal/platform/db/postgres"
)

// BoardMeetingRepository は PostgreSQL を利用した委員会記録永続化の実装です。
type BoardMeetingRepository struct {
	pool pgdb.Queryer
}

// NewBoardMeetingRepository は BoardMeetingRepository を生成します。
func NewBoardMeetingRepository(pool pgdb.Queryer) *BoardMeetingRepository {
	return &BoardMeetingRepository{pool: pool}
}

// Create は委員会記録を新規作成します。
func (r *BoardMeetingRepository) Create(ctx context.Context, m *boardmeeting.Meeting) (*boardmeeting.Meeting, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO board_meetings (id, firm_id, last_meeting_date, period_months, next_meeting_date, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, firm_id, last_meeting_date, period_months, next_meeting_date, created_at, updated_at
    `, m.ID, m.FirmID, m.LastMeetingDate, m.PeriodMonths, m.NextMeetingDate, m.CreatedAt, m.UpdatedAt)

	created, err := scanMeeting(row)
	if err != nil {
		return nil, translateFirmScopedPgError(err, boardmeeting.ErrFirmNotFound)
	}
	return created, nil
}

// Update は委員会記録を更新します。
func (r *BoardMeetingRepository) Update(ctx context.Context, m *boardmeeting.Meeting) (*boardmeeting.Meeting, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE board_meetings
           SET last_meeting_date = $1,
               period_months = $2,
               next_meeting_date = $3,
               updated_at = $4
         WHERE id = $5
        RETURNING id, firm_id, last_meeting_date, period_months, next_meeting_date, created_at, updated_at
    `, m.LastMeetingDate, m.PeriodMonths, m.NextMeetingDate, m.UpdatedAt, m.ID)

	updated, err := scanMeeting(row)
	if err != nil {
		return nil, translateFirmScopedPgError(err, boardmeeting.ErrFirmNotFound)
	}
	return updated, nil
}

// FindByFirmID は事業所の委員会記録を取得します。
func (r *BoardMeetingRepository) FindByFirmID(ctx context.Context, firmID string) (*boardmeeting.Meeting, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, firm_id, last_meeting_date, period_months, next_meeting_date, created_at, updated_at
          FROM board_meetings
         WHERE firm_id = $1
         LIMIT 1
    `, firmID)

	return scanMeeting(row)
}

// ListAll は全委員会記録を取得します。
func (r *BoardMeetingRepository) ListAll(ctx context.Context) ([]*boardmeeting.Meeting, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT id, firm_id, last_meeting_date, period_months, next_meeting_date, created_at, updated_at
          FROM board_meetings
         ORDER BY next_meeting_date ASC, id ASC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meetings []*boardmeeting.Meeting
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, err
		}
		meetings = append(meetings, m)
	}
	return meetings, rows.Err()
}

func scanMeeting(row pgx.Row) (*boardmeeting.Meeting, error) {
	var (
		id, firmID           string
		last, next           time.Time
		period               int
		createdAt, updatedAt time.Time
	)

	if err := row.Scan(&id, &firmID, &last, &period, &next, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, boardmeeting.ErrMeetingNotFound
		}
		return nil, err
	}

	return &boardmeeting.Meeting{
		ID:              id,
		FirmID:          firmID,
		LastMeetingDate: last,
		PeriodMonths:    period,
		NextMeetingDate: next,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
	}, nil
}
