package schedule

import (
	"math"
	"time"
)

// Status は期限日の判定結果です。保存されず、参照時に算出されます。
type Status string

const (
	StatusExpired     Status = "EXPIRED"
	StatusApproaching Status = "APPROACHING"
	StatusValid       Status = "VALID"
)

const (
	// DefaultThresholdDays は教育・機器点検・リスクアセスメントの接近判定日数です。
	DefaultThresholdDays = 30
	// BoardMeetingThresholdDays は安全委員会の接近判定日数です。
	BoardMeetingThresholdDays = 15
)

// NextTrainingDate は最終教育日と区分から次回教育期限を算出します。
func NextTrainingDate(last time.Time, tier HazardTier) time.Time {
	return AddYears(last, trainingYears(tier))
}

// NextRiskAssessmentDate はリスクアセスメントの有効期限を算出します。
func NextRiskAssessmentDate(last time.Time, tier HazardTier) time.Time {
	return AddYears(last, riskAssessmentYears(tier))
}

// NextInspectionDate は機器の次回点検日を算出します。
func NextInspectionDate(last time.Time, periodMonths int) time.Time {
	return AddMonths(last, periodMonths)
}

// NextBoardMeetingDate は次回の安全委員会開催日を算出します。
// periodMonths が区分で許可されているかは呼び出し側が保証します。
func NextBoardMeetingDate(last time.Time, periodMonths int) time.Time {
	return AddMonths(last, periodMonths)
}

// DaysRemaining は today から due までの残り日数を返します。過ぎていれば負になります。
func DaysRemaining(due, today time.Time) int {
	diff := Day(due).Sub(Day(today))
	return int(math.Ceil(diff.Hours() / 24))
}

// IsExpired は期限切れかどうかを返します。
func IsExpired(due, today time.Time) bool {
	return DaysRemaining(due, today) < 0
}

// IsApproaching は期限が今日から thresholdDays 日以内かどうかを返します。当日は含みます。
func IsApproaching(due, today time.Time, thresholdDays int) bool {
	days := DaysRemaining(due, today)
	return days >= 0 && days <= thresholdDays
}

// IsDueOrOverdue は期限切れまたは当日期限かを返します。
func IsDueOrOverdue(due, today time.Time) bool {
	return DaysRemaining(due, today) <= 0
}

// Classify は期限日を三状態に分類します。due がゼロ値の場合の扱いは呼び出し側の責務です。
func Classify(due, today time.Time, thresholdDays int) Status {
	switch {
	case IsExpired(due, today):
		return StatusExpired
	case IsApproaching(due, today, thresholdDays):
		return StatusApproaching
	default:
		return StatusValid
	}
}
