package employee

import (
	"fmt"
	"strings"
	"time"

	"github.com/ogurasousui/isg-tracker/internal/core/schedule"
)

// RehireRule は再雇用時の空白期間の測り方です。
type RehireRule string

const (
	// RehireRuleCalendar は退職日から 6 暦月を超えたら再教育を必須とします。
	RehireRuleCalendar RehireRule = "calendar"
	// RehireRuleDays は退職日から 183 日を超えたら再教育を必須とします。
	RehireRuleDays RehireRule = "days"
)

const (
	RehireGapMonths = 6
	RehireGapDays   = 183
)

// ParseRehireRule は設定値を解釈します。空文字は RehireRuleCalendar です。
func ParseRehireRule(raw string) (RehireRule, error) {
	switch RehireRule(strings.ToLower(strings.TrimSpace(raw))) {
	case "", RehireRuleCalendar:
		return RehireRuleCalendar, nil
	case RehireRuleDays:
		return RehireRuleDays, nil
	default:
		return "", fmt.Errorf("employee: unknown rehire rule %q", raw)
	}
}

// RehireDecision は再雇用可否の判定結果です。
type RehireDecision struct {
	Since             time.Time
	GapDays           int
	GapMonths         int
	RefresherRequired bool
}

// EvaluateRehire は退職からの空白期間を測り、再教育が必須かを判定します。
// 退職日が記録されていない古いデータは最終教育日を起点にします。
func EvaluateRehire(e *Employee, now time.Time, rule RehireRule) RehireDecision {
	since := e.LastTrainingDate
	if e.TerminatedAt != nil && !e.TerminatedAt.IsZero() {
		since = *e.TerminatedAt
	}
	since = schedule.Day(since)
	today := schedule.Day(now)

	decision := RehireDecision{
		Since:     since,
		GapDays:   -schedule.DaysRemaining(since, today),
		GapMonths: wholeMonthsBetween(since, today),
	}

	switch rule {
	case RehireRuleDays:
		decision.RefresherRequired = decision.GapDays > RehireGapDays
	default:
		decision.RefresherRequired = today.After(schedule.AddMonths(since, RehireGapMonths))
	}

	return decision
}

func wholeMonthsBetween(from, to time.Time) int {
	if from.IsZero() || !to.After(from) {
		return 0
	}
	months := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	if schedule.AddMonths(from, months).After(to) {
		months--
	}
	return months
}
