package note

import (
	"context"
	"time"
)

// Repository はカレンダーメモの永続化を行うインターフェースです。
type Repository interface {
	Create(ctx context.Context, note *Note) (*Note, error)
	Delete(ctx context.Context, id string) error
	// ListBetween は from 以上 to 未満の日付のメモを日付順で返します。
	ListBetween(ctx context.Context, from, to time.Time) ([]*Note, error)
	ListAll(ctx context.Context) ([]*Note, error)
}
