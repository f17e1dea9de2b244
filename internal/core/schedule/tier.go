package schedule

import (
	"errors"
	"strings"
)

// HazardTier は事業所の危険有害性区分を表します。
type HazardTier string

const (
	TierLow      HazardTier = "LOW"
	TierHigh     HazardTier = "HIGH"
	TierVeryHigh HazardTier = "VERY_HIGH"
)

// ErrInvalidHazardTier は区分が解釈できない場合に返却されます。
var ErrInvalidHazardTier = errors.New("schedule: invalid hazard tier")

var tierLabels = map[HazardTier]string{
	TierLow:      "Az Tehlikeli",
	TierHigh:     "Tehlikeli",
	TierVeryHigh: "Çok Tehlikeli",
}

// Label は帳票に表示する区分名を返します。
func (t HazardTier) Label() string {
	if label, ok := tierLabels[t]; ok {
		return label
	}
	return string(t)
}

// Valid は定義済みの区分かどうかを返します。
func (t HazardTier) Valid() bool {
	_, ok := tierLabels[t]
	return ok
}

// ParseHazardTier は列挙名または表示名から区分を解釈します。
func ParseHazardTier(raw string) (HazardTier, error) {
	trimmed := strings.TrimSpace(raw)
	upper := HazardTier(strings.ToUpper(trimmed))
	if upper.Valid() {
		return upper, nil
	}
	for tier, label := range tierLabels {
		if trimmed == label {
			return tier, nil
		}
	}
	return "", ErrInvalidHazardTier
}

func trainingYears(t HazardTier) int {
	switch t {
	case TierHigh:
		return 2
	case TierVeryHigh:
		return 1
	default:
		return 3
	}
}

func riskAssessmentYears(t HazardTier) int {
	switch t {
	case TierHigh:
		return 4
	case TierVeryHigh:
		return 2
	default:
		return 6
	}
}

// AllowedBoardMeetingPeriods は区分ごとに選択可能な安全委員会の開催間隔 (月) を返します。
func AllowedBoardMeetingPeriods(t HazardTier) []int {
	switch t {
	case TierVeryHigh:
		return []int{1}
	case TierHigh:
		return []int{1, 2}
	default:
		return []int{1, 2, 3}
	}
}

// DefaultBoardMeetingPeriod は区分で許される最長の開催間隔を返します。
func DefaultBoardMeetingPeriod(t HazardTier) int {
	periods := AllowedBoardMeetingPeriods(t)
	return periods[len(periods)-1]
}

// IsAllowedBoardMeetingPeriod は開催間隔が区分で許可されているかを判定します。
func IsAllowedBoardMeetingPeriod(t HazardTier, months int) bool {
	for _, p := range AllowedBoardMeetingPeriods(t) {
		if p == months {
			return true
		}
	}
	return false
}
