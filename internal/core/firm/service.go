package firm

import (
	"context"
	"errors"
	"fmt"
	"strconv"
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

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

const (
	defaultListPageSize = 50
	maxListPageSize     = 200
)

// Service は事業所に関するユースケースをまとめます。
type Service struct {
	repo  Repository
	clock Clock
	tx    TransactionManager
	newID func() string
}

// UseCase は事業所ユースケースの公開インターフェースです。
type UseCase interface {
	CreateFirm(ctx context.Context, in CreateFirmInput) (*Firm, error)
	GetFirm(ctx context.Context, in GetFirmInput) (*Firm, error)
	ListFirms(ctx context.Context, in ListFirmsInput) (*ListFirmsResult, error)
	UpdateFirm(ctx context.Context, in UpdateFirmInput) (*Firm, error)
	DeleteFirm(ctx context.Context, in DeleteFirmInput) error
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, clock: clock, tx: tx, newID: uuid.NewString}
}

// CreateFirmInput は事業所作成時の入力です。
type CreateFirmInput struct {
	Name       string
	HazardTier string
	Notes      *string
}

// UpdateFirmInput は事業所更新時の入力です。
// 区分を変更しても既存の期限日は再計算されません。各記録の次回更新時に反映されます。
type UpdateFirmInput struct {
	ID         string
	Name       *string
	HazardTier *string
	Notes      *string
}

// DeleteFirmInput は事業所削除時の入力です。
type DeleteFirmInput struct {
	ID string
}

// GetFirmInput は事業所取得時の入力です。
type GetFirmInput struct {
	ID string
}

// ListFirmsInput は一覧取得時の入力です。VisibleIDs が nil の場合は全件が対象です。
type ListFirmsInput struct {
	PageSize   int
	PageToken  string
	HazardTier *string
	VisibleIDs []string
}

// ListFirmsResult は一覧取得結果を表します。
type ListFirmsResult struct {
	Firms         []*Firm
	NextPageToken string
}

// CreateFirm は新しい事業所を登録します。
func (s *Service) CreateFirm(ctx context.Context, in CreateFirmInput) (*Firm, error) {
	name, err := normalizeName(in.Name)
	if err != nil {
		return nil, err
	}

	tier, err := normalizeTier(in.HazardTier)
	if err != nil {
		return nil, err
	}

	notes := normalizeNotes(in.Notes)

	var created *Firm
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.ensureNameNotExists(txCtx, name); err != nil {
			return err
		}

		now := s.clock.Now()
		result, err := s.repo.Create(txCtx, &Firm{
			ID:         s.newID(),
			Name:       name,
			HazardTier: tier,
			Notes:      notes,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
		if err != nil {
			return err
		}

		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	return created, nil
}

// UpdateFirm は事業所情報を更新します。
func (s *Service) UpdateFirm(ctx context.Context, in UpdateFirmInput) (*Firm, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var updated *Firm
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}

		if in.Name != nil {
			name, err := normalizeName(*in.Name)
			if err != nil {
				return err
			}
			if name != existing.Name {
				if err := s.ensureNameNotExists(txCtx, name); err != nil {
					return err
				}
				existing.Name = name
			}
		}

		if in.HazardTier != nil {
			tier, err := normalizeTier(*in.HazardTier)
			if err != nil {
				return err
			}
			existing.HazardTier = tier
		}

		if in.Notes != nil {
			existing.Notes = normalizeNotes(in.Notes)
		}

		existing.UpdatedAt = s.clock.Now()

		result, err := s.repo.Update(txCtx, existing)
		if err != nil {
			return err
		}

		updated = result
		return nil
	}); err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteFirm は事業所を削除します。従属する記録はストレージ側で連鎖削除されます。
func (s *Service) DeleteFirm(ctx context.Context, in DeleteFirmInput) error {
	if strings.TrimSpace(in.ID) == "" {
		return fmt.Errorf("id: %w", ErrInvalidID)
	}

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, in.ID)
	})
}

// GetFirm は ID で事業所を取得します。
func (s *Service) GetFirm(ctx context.Context, in GetFirmInput) (*Firm, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var found *Firm
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}
		found = result
		return nil
	}); err != nil {
		return nil, err
	}

	return found, nil
}

// FindByID は他ユースケースから区分を参照するための取得口です。
func (s *Service) FindByID(ctx context.Context, id string) (*Firm, error) {
	return s.GetFirm(ctx, GetFirmInput{ID: id})
}

// ListFirms は事業所の一覧を名前順で取得します。
func (s *Service) ListFirms(ctx context.Context, in ListFirmsInput) (*ListFirmsResult, error) {
	limit, err := normalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}

	offset, err := parsePageToken(in.PageToken)
	if err != nil {
		return nil, err
	}

	var tierPtr *schedule.HazardTier
	if in.HazardTier != nil {
		tier, err := normalizeTier(*in.HazardTier)
		if err != nil {
			return nil, err
		}
		tierPtr = &tier
	}

	if in.VisibleIDs != nil && len(in.VisibleIDs) == 0 {
		return &ListFirmsResult{Firms: []*Firm{}}, nil
	}

	var (
		firms     []*Firm
		nextToken string
	)

	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, token, err := s.repo.List(txCtx, ListFirmsFilter{
			Limit:      limit,
			Offset:     offset,
			HazardTier: tierPtr,
			IDs:        in.VisibleIDs,
		})
		if err != nil {
			return err
		}
		firms = result
		nextToken = token
		return nil
	}); err != nil {
		return nil, err
	}

	return &ListFirmsResult{Firms: firms, NextPageToken: nextToken}, nil
}

func (s *Service) ensureNameNotExists(ctx context.Context, name string) error {
	found, err := s.repo.FindByName(ctx, name)
	if err != nil && !errors.Is(err, ErrFirmNotFound) {
		return err
	}
	if found != nil {
		return ErrNameAlreadyExists
	}
	return nil
}

func normalizeName(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidName
	}
	return trimmed, nil
}

func normalizeTier(raw string) (schedule.HazardTier, error) {
	tier, err := schedule.ParseHazardTier(raw)
	if err != nil {
		return "", ErrInvalidHazardTier
	}
	return tier, nil
}

func normalizeNotes(raw *string) *string {
	if raw == nil {
		return nil
	}

	trimmed := strings.TrimSpace(*raw)
	if trimmed == "" {
		return nil
	}

	notes := trimmed
	return &notes
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
