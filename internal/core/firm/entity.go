package firm

import (
	"time"

	"github.com/ogurasousui/isg-tracker/internal/core/schedule"
)

// Firm は顧客事業所のエンティティです。
type Firm struct {
	ID         string
	Name       string
	HazardTier schedule.HazardTier
	Notes      *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
