package riskassessment

import "context"

// Repository はリスク評価の永続化を行うインターフェースです。
type Repository interface {
	Create(ctx context.Context, assessment *Assessment) (*Assessment, error)
	Update(ctx context.Context, assessment *Assessment) (*Assessment, error)
	FindByFirmID(ctx context.Context, firmID string) (*Assessment, error)
	ListAll(ctx context.Context) ([]*Assessment, error)
}
