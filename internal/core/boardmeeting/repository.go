package boardmeeting

import "context"

// Repository は委員会記録の永続化を行うインターフェースです。
type Repository interface {
	Create(ctx context.Context, meeting *Meeting) (*Meeting, error)
	Update(ctx context.Context, meeting *Meeting) (*Meeting, error)
	FindByFirmID(ctx context.Context, firmID string) (*Meeting, error)
	ListAll(ctx context.Context) ([]*Meeting, error)
}
