package alert

import (
	"context"
	"fmt"
	"time"

	"github.com/ogurasousui/isg-tracker/internal/core/marker"
	"github.com/ogurasousui/isg-tracker/internal/core/schedule"
)

const lastAlertDatePrefix = "last_alert_date:"

// LastAlertDateKey は閲覧者ごとに日次サマリを最後に表示した日付を保持するマーカーのキーです。
func LastAlertDateKey(viewerID string) string {
	return lastAlertDatePrefix + viewerID
}

// Summary は期限切れまたは当日期限の件数です。リスク評価は数えません。
type Summary struct {
	Employees int
	Equipment int
	Meetings  int
}

// Any はいずれかの件数が正かを返します。
func (s Summary) Any() bool {
	return s.Employees > 0 || s.Equipment > 0 || s.Meetings > 0
}

// DailySummary は日次サマリの件数を数えます。
func DailySummary(s Snapshot, vis Visibility, today time.Time) Summary {
	var sum Summary
	for _, e := range s.Employees {
		if vis.Visible(e.FirmID) && e.Counts() && due(e.NextTrainingDate, today) {
			sum.Employees++
		}
	}
	for _, eq := range s.Equipment {
		if vis.Visible(eq.FirmID) && due(eq.NextInspectionDate, today) {
			sum.Equipment++
		}
	}
	for _, m := range s.Meetings {
		if vis.Visible(m.FirmID) && due(m.NextMeetingDate, today) {
			sum.Meetings++
		}
	}
	return sum
}

func due(d, today time.Time) bool {
	return !d.IsZero() && schedule.IsDueOrOverdue(d, today)
}

// DailyGate は日次サマリを一日一回だけ表示させます。
type DailyGate struct {
	Store marker.Store
}

// Check は viewerID がまだ今日表示しておらず件数があるときに true を返し、表示済みとして記録します。
// 件数がない日は記録しないため、同じ日のうちに件数が出れば表示されます。
// Store が marker.ConditionalSetter を実装していれば、同時に来た要求のうち一つだけが true になります。
func (g DailyGate) Check(ctx context.Context, viewerID string, summary Summary, today time.Time) (bool, error) {
	key := LastAlertDateKey(viewerID)
	todayKey := schedule.FormatDate(today)

	if cs, ok := g.Store.(marker.ConditionalSetter); ok {
		if !summary.Any() {
			return false, nil
		}
		changed, err := cs.SetIfChanged(ctx, key, todayKey)
		if err != nil {
			return false, fmt.Errorf("alert: write %s: %w", key, err)
		}
		return changed, nil
	}

	last, ok, err := g.Store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("alert: read %s: %w", key, err)
	}
	if ok && last == todayKey {
		return false, nil
	}
	if !summary.Any() {
		return false, nil
	}

	if err := g.Store.Set(ctx, key, todayKey); err != nil {
		return false, fmt.Errorf("alert: write %s: %w", key, err)
	}
	return true, nil
}
