package equipment

import "context"

// Repository は設備の永続化を行うインターフェースです。
type Repository interface {
	Create(ctx context.Context, equipment *Equipment) (*Equipment, error)
	Update(ctx context.Context, equipment *Equipment) (*Equipment, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Equipment, error)
	List(ctx context.Context, filter ListEquipmentFilter) ([]*Equipment, string, error)
	ListAll(ctx context.Context) ([]*Equipment, error)
}

// ListEquipmentFilter は一覧取得用フィルタです。
type ListEquipmentFilter struct {
	FirmID string
	Limit  int
	Offset int
}
