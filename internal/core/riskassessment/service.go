package riskassessment

import (
	"context"
	"errors"
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

// Service はリスク評価のユースケースです。
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

// RecordAssessmentInput はリスク評価記録時の入力です。
type RecordAssessmentInput struct {
	FirmID         string
	AssessmentDate string
}

// RecordAssessment は事業所のリスク評価を登録または上書きし、有効期限を区分から算出します。
func (s *Service) RecordAssessment(ctx context.Context, in RecordAssessmentInput) (*Assessment, error) {
	firmID := strings.TrimSpace(in.FirmID)
	if firmID == "" {
		return nil, ErrInvalidFirmID
	}

	date, err := schedule.ParseDate(in.AssessmentDate)
	if err != nil || date.IsZero() {
		return nil, ErrInvalidAssessmentDate
	}

	var saved *Assessment
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		f, err := s.firms.FindByID(txCtx, firmID)
		if err != nil {
			if errors.Is(err, firm.ErrFirmNotFound) {
				return ErrFirmNotFound
			}
			return err
		}

		now := s.clock.Now()
		validUntil := schedule.NextRiskAssessmentDate(date, f.HazardTier)

		existing, err := s.repo.FindByFirmID(txCtx, firmID)
		switch {
		case errors.Is(err, ErrAssessmentNotFound):
			saved, err = s.repo.Create(txCtx, &Assessment{
				ID:             s.newID(),
				FirmID:         firmID,
				AssessmentDate: date,
				ValidUntil:     validUntil,
				CreatedAt:      now,
				UpdatedAt:      now,
			})
			return err
		case err != nil:
			return err
		}

		existing.AssessmentDate = date
		existing.ValidUntil = validUntil
		existing.UpdatedAt = now
		saved, err = s.repo.Update(txCtx, existing)
		return err
	}); err != nil {
		return nil, err
	}

	return saved, nil
}

// GetAssessment は事業所のリスク評価を取得します。
func (s *Service) GetAssessment(ctx context.Context, firmID string) (*Assessment, error) {
	firmID = strings.TrimSpace(firmID)
	if firmID == "" {
		return nil, ErrInvalidFirmID
	}
	return s.repo.FindByFirmID(ctx, firmID)
}
