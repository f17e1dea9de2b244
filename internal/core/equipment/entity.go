package equipment

import "time"

// Equipment は定期検査の対象となる設備です。
type Equipment struct {
	ID                 string
	FirmID             string
	Name               string
	LastInspectionDate time.Time
	PeriodMonths       int
	NextInspectionDate time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
