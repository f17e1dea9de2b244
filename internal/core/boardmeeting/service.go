package boardmeeting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ogurasousui/isg-tracker/internal/core/firm"
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

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

// FirmFinder は区分参照のために事業所を取得します。
type FirmFinder interface {
	FindByID(ctx context.Context, id string) (*firm.Firm, error)
}

// Service は委員会記録のユースケースです。
type Service struct {
	repo  Repository
	firms FirmFinder
	clock Clock
	tx    TransactionManager
	newID func() string
}

// NewService は Service を生成します。
func NewService(repo Repository, firms FirmFinder, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, firms: firms, clock: clock, tx: tx, newID: uuid.NewString}
}

// RecordMeetingInput は委員会記録時の入力です。PeriodMonths が 0 の場合は区分の既定周期を使います。
type RecordMeetingInput struct {
	FirmID       string
	MeetingDate  string
	PeriodMonths int
}

// RecordMeeting は事業所の委員会記録を登録または上書きします。
func (s *Service) RecordMeeting(ctx context.Context, in RecordMeetingInput) (*Meeting, error) {
	firmID := strings.TrimSpace(in.FirmID)
	if firmID == "" {
		return nil, ErrInvalidFirmID
	}

	date, err := schedule.ParseDate(in.MeetingDate)
	if err != nil || date.IsZero() {
		return nil, ErrInvalidMeetingDate
	}

	var saved *Meeting
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		f, err := s.firms.FindByID(txCtx, firmID)
		if err != nil {
			if errors.Is(err, firm.ErrFirmNotFound) {
				return ErrFirmNotFound
			}
			return err
		}

		period := in.PeriodMonths
		if period == 0 {
			period = schedule.DefaultBoardMeetingPeriod(f.HazardTier)
		}
		if !schedule.IsAllowedBoardMeetingPeriod(f.HazardTier, period) {
			return fmt.Errorf("%d months for %s: %w", period, f.HazardTier, ErrPeriodNotAllowed)
		}

		now := s.clock.Now()
		next := schedule.NextBoardMeetingDate(date, period)

		existing, err := s.repo.FindByFirmID(txCtx, firmID)
		switch {
		case errors.Is(err, ErrMeetingNotFound):
			saved, err = s.repo.Create(txCtx, &Meeting{
				ID:              s.newID(),
				FirmID:          firmID,
				LastMeetingDate: date,
				PeriodMonths:    period,
				NextMeetingDate: next,
				CreatedAt:       now,
				UpdatedAt:       now,
			})
			return err
		case err != nil:
			return err
		}

		existing.LastMeetingDate = date
		existing.PeriodMonths = period
		existing.NextMeetingDate = next
		existing.UpdatedAt = now
		saved, err = s.repo.Update(txCtx, existing)
		return err
	}); err != nil {
		return nil, err
	}

	return saved, nil
}

// GetMeeting は事業所の委員会記録を取得します。
func (s *Service) GetMeeting(ctx context.Context, firmID string) (*Meeting, error) {
	firmID = strings.TrimSpace(firmID)
	if firmID == "" {
		return nil, ErrInvalidFirmID
	}
	return s.repo.FindByFirmID(ctx, firmID)
}
