package firm

import (
	"context"

	"github.com/ogurasousui/isg-tracker/internal/core/schedule"
)

// Repository は事業所エンティティの永続化を行うインターフェースです。
type Repository interface {
	Create(ctx context.Context, firm *Firm) (*Firm, error)
	Update(ctx context.Context, firm *Firm) (*Firm, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Firm, error)
	FindByName(ctx context.Context, name string) (*Firm, error)
	List(ctx context.Context, filter ListFirmsFilter) ([]*Firm, string, error)
	ListAll(ctx context.Context) ([]*Firm, error)
}

// ListFirmsFilter は一覧取得時の検索条件を表します。
type ListFirmsFilter struct {
	Limit      int
	Offset     int
	HazardTier *schedule.HazardTier
	IDs        []string
}
