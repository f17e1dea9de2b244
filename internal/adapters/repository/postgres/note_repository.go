package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/isg-tracker/internal/core/note"
	pgdb "github.com/ogurasousui/isg-tracker/internal/platform/db/postgres"
)

// NoteRepository は PostgreSQL を利用したカレンダーメモ永続化の実装です。
type NoteRepository struct {
	pool pgdb.Queryer
}

// NewNoteRepository は NoteRepository を生成します。
func NewNoteRepository(pool pgdb.Queryer) *NoteRepository {
	return &NoteRepository{pool: pool}
}

// Create はメモを新規作成します。
func (r *NoteRepository) Create(ctx context.Context, n *note.Note) (*note.Note, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO calendar_notes (id, title, note_date, description, created_at)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, title, note_date, description, created_at
    `, n.ID, n.Title, n.Date, nullableString(n.Description), n.CreatedAt)

	return scanNote(row)
}

// Delete はメモを削除します。
func (r *NoteRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM calendar_notes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return note.ErrNoteNotFound
	}
	return nil
}

// ListBetween は from 以上 to 未満のメモを日付順で取得します。
func (r *NoteRepository) ListBetween(ctx context.Context, from, to time.Time) ([]*note.Note, error) {
	return r.query(ctx, `
        SELECT id, title, note_date, description, created_at
          FROM calendar_notes
         WHERE note_date >= $1
           AND note_date < $2
         ORDER BY note_date ASC, id ASC
    `, from, to)
}

// ListAll は全メモを日付順で取得します。
func (r *NoteRepository) ListAll(ctx context.Context) ([]*note.Note, error) {
	return r.query(ctx, `
        SELECT id, title, note_date, description, created_at
          FROM calendar_notes
         ORDER BY note_date ASC, id ASC
    `)
}

func (r *NoteRepository) query(ctx context.Context, query string, args ...any) ([]*note.Note, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []*note.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func scanNote(row pgx.Row) (*note.Note, error) {
	var (
		id, title   string
		date        time.Time
		description sql.NullString
		createdAt   time.Time
	)

	if err := row.Scan(&id, &title, &date, &description, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, note.ErrNoteNotFound
		}
		return nil, err
	}

	var descPtr *string
	if description.Valid {
		d := description.String
		descPtr = &d
	}

	return &note.Note{
		ID:          id,
		Title:       title,
		Date:        date,
		Description: descPtr,
		CreatedAt:   createdAt,
	}, nil
}
