package equipment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
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

// FirmFinder は事業所の存在確認に使います。
type FirmFinder interface {
	FindByID(ctx context.Context, id string) (*firm.Firm, error)
}

const (
	defaultListPageSize = 50
	maxListPageSize     = 200
)

// Service は設備に関するユースケースをまとめます。
type Service struct {
	repo  Repository
	firms FirmFinder
	clock Clock
	newID func() string
}

// UseCase は設備ユースケースの公開インターフェースです。
type UseCase interface {
	RecordEquipment(ctx context.Context, in RecordEquipmentInput) (*Equipment, error)
	UpdateEquipment(ctx context.Context, in UpdateEquipmentInput) (*Equipment, error)
	DeleteEquipment(ctx context.Context, in DeleteEquipmentInput) error
	ListEquipment(ctx context.Context, in ListEquipmentInput) (*ListEquipmentResult, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, firms FirmFinder, clock Clock) *Service {
	if clock == nil {
		clock = realClock{}
	}
	return &Service{repo: repo, firms: firms, clock: clock, newID: uuid.NewString}
}

// RecordEquipmentInput は設備登録時の入力です。
type RecordEquipmentInput struct {
	FirmID             string
	Name               string
	LastInspectionDate string
	PeriodMonths       int
}

// UpdateEquipmentInput は設備更新時の入力です。
type UpdateEquipmentInput struct {
	ID                 string
	Name               *string
	LastInspectionDate *string
	PeriodMonths       *int
}

// DeleteEquipmentInput は設備削除時の入力です。
type DeleteEquipmentInput struct {
	ID string
}

// ListEquipmentInput は一覧取得時の入力です。
type ListEquipmentInput struct {
	FirmID    string
	PageSize  int
	PageToken string
}

// ListEquipmentResult は一覧取得結果を表します。
type ListEquipmentResult struct {
	Equipment     []*Equipment
	NextPageToken string
}

// RecordEquipment は設備を登録し、次回検査日を算出します。
func (s *Service) RecordEquipment(ctx context.Context, in RecordEquipmentInput) (*Equipment, error) {
	firmID := strings.TrimSpace(in.FirmID)
	if firmID == "" {
		return nil, ErrInvalidFirmID
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrInvalidName
	}

	last, err := parseInspectionDate(in.LastInspectionDate)
	if err != nil {
		return nil, err
	}

	if in.PeriodMonths < 1 {
		return nil, ErrInvalidPeriod
	}

	if _, err := s.firms.FindByID(ctx, firmID); err != nil {
		if errors.Is(err, firm.ErrFirmNotFound) {
			return nil, ErrFirmNotFound
		}
		return nil, err
	}

	now := s.clock.Now()
	return s.repo.Create(ctx, &Equipment{
		ID:                 s.newID(),
		FirmID:             firmID,
		Name:               name,
		LastInspectionDate: last,
		PeriodMonths:       in.PeriodMonths,
		NextInspectionDate: schedule.NextInspectionDate(last, in.PeriodMonths),
		CreatedAt:          now,
		UpdatedAt:          now,
	})
}

// UpdateEquipment は設備を更新します。検査日か周期が変わると次回検査日を再計算します。
func (s *Service) UpdateEquipment(ctx context.Context, in UpdateEquipmentInput) (*Equipment, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	existing, err := s.repo.FindByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, ErrInvalidName
		}
		existing.Name = name
	}

	if in.LastInspectionDate != nil {
		last, err := parseInspectionDate(*in.LastInspectionDate)
		if err != nil {
			return nil, err
		}
		existing.LastInspectionDate = last
	}

	if in.PeriodMonths != nil {
		if *in.PeriodMonths < 1 {
			return nil, ErrInvalidPeriod
		}
		existing.PeriodMonths = *in.PeriodMonths
	}

	existing.NextInspectionDate = schedule.NextInspectionDate(existing.LastInspectionDate, existing.PeriodMonths)
	existing.UpdatedAt = s.clock.Now()

	return s.repo.Update(ctx, existing)
}

// DeleteEquipment は設備を削除します。
func (s *Service) DeleteEquipment(ctx context.Context, in DeleteEquipmentInput) error {
	if strings.TrimSpace(in.ID) == "" {
		return fmt.Errorf("id: %w", ErrInvalidID)
	}
	return s.repo.Delete(ctx, in.ID)
}

// ListEquipment は事業所の設備一覧を取得します。
func (s *Service) ListEquipment(ctx context.Context, in ListEquipmentInput) (*ListEquipmentResult, error) {
	firmID := strings.TrimSpace(in.FirmID)
	if firmID == "" {
		return nil, ErrInvalidFirmID
	}

	limit, err := normalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}

	offset, err := parsePageToken(in.PageToken)
	if err != nil {
		return nil, err
	}

	items, next, err := s.repo.List(ctx, ListEquipmentFilter{FirmID: firmID, Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}

	return &ListEquipmentResult{Equipment: items, NextPageToken: next}, nil
}

func parseInspectionDate(raw string) (time.Time, error) {
	d, err := schedule.ParseDate(raw)
	if err != nil || d.IsZero() {
		return time.Time{}, ErrInvalidInspectionDate
	}
	return d, nil
}

func normalizePageSize(pageSize int) (int, error) {
	if pageSize <= 0 {
		return defaultListPageSize, nil
	}
	if pageSize > maxListPageSize {
		return 0, ErrInvalidPageSize
	}
	return pageSize, nil
}

func parsePageToken(token string) (int, error) {
	if strings.TrimSpace(token) == "" {
		return 0, nil
	}

	offset, err := strconv.Atoi(token)
	if err != nil || offset < 0 {
		return 0, ErrInvalidPageToken
	}

	return offset, nil
}
