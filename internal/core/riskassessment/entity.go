package riskassessment

import "time"

// Assessment は事業所のリスク評価記録です。事業所ごとに一件のみ保持します。
type Assessment struct {
	ID             string
	FirmID         string
	AssessmentDate time.Time
	ValidUntil     time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
