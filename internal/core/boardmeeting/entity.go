package boardmeeting

import "time"

// Meeting は事業所の安全衛生委員会の開催記録です。事業所ごとに一件のみ保持します。
type Meeting struct {
	ID              string
	FirmID          string
	LastMeetingDate time.Time
	PeriodMonths    int
	NextMeetingDate time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
