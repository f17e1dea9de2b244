package note

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ogurasousui/isg-tracker/internal/core/schedule"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// Service はカレンダーメモのユースケースです。
type Service struct {
	repo  Repository
	clock Clock
	newID func() string
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock) *Service {
	if clock == nil {
		clock = realClock{}
	}
	return &Service{repo: repo, clock: clock, newID: uuid.NewString}
}

// CreateNoteInput はメモ作成時の入力です。
type CreateNoteInput struct {
	Title       string
	Date        string
	Description *string
}

// CreateNote はメモを作成します。
func (s *Service) CreateNote(ctx context.Context, in CreateNoteInput) (*Note, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrInvalidTitle
	}

	date, err := schedule.ParseDate(in.Date)
	if err != nil || date.IsZero() {
		return nil, ErrInvalidDate
	}

	var desc *string
	if in.Description != nil {
		if trimmed := strings.TrimSpace(*in.Description); trimmed != "" {
			desc = &trimmed
		}
	}

	return s.repo.Create(ctx, &Note{
		ID:          s.newID(),
		Title:       title,
		Date:        date,
		Description: desc,
		CreatedAt:   s.clock.Now(),
	})
}

// DeleteNote はメモを削除します。
func (s *Service) DeleteNote(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("id: %w", ErrInvalidID)
	}
	return s.repo.Delete(ctx, id)
}

// ListMonth は指定月のメモを日付順で返します。
func (s *Service) ListMonth(ctx context.Context, year int, month time.Month) ([]*Note, error) {
	if month < time.January || month > time.December {
		return nil, ErrInvalidMonth
	}
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return s.repo.ListBetween(ctx, from, from.AddDate(0, 1, 0))
}
