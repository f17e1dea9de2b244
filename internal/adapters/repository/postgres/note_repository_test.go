package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/ogurasousui/isg-tracker/internal/core/note"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestNoteRepository_ListBetween(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	query := regexp.QuoteMeta(`
        SELECT id, title, note_date, description, created_at
          FROM calendar_notes
         WHERE note_date >= $1
           AND note_date < $2
         ORDER BY note_date ASC, id ASC
    `)

	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	now := time.Now().UTC()
	mock.ExpectQuery(query).WithArgs(from, to).
		WillReturnRows(pgxmock.NewRows([]string{"id", "title", "note_date", "description", "created_at"}).
			AddRow("n-1", "Denetim", from.AddDate(0, 0, 2), nil, now).
			AddRow("n-2", "Tatbikat", from.AddDate(0, 0, 21), "Yangın tatbikatı", now))

	notes, err := NewNoteRepository(mock).ListBetween(context.Background(), from, to)
	if err != nil {
		t.Fatalf("ListBetween returned error: %v", err)
	}
	if len(notes) != 2 || notes[0].Description != nil {
		t.Fatalf("unexpected notes %+v", notes)
	}
	if notes[1].Description == nil || *notes[1].Description != "Yangın tatbikatı" {
		t.Fatalf("unexpected description %+v", notes[1].Description)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestNoteRepository_Delete_NotFound(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM calendar_notes WHERE id = $1`)).
		WithArgs("n-x").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	if err := NewNoteRepository(mock).Delete(context.Background(), "n-x"); !errors.Is(err, note.ErrNoteNotFound) {
		t.Fatalf("expected ErrNoteNotFound, got %v", err)
	}
}
