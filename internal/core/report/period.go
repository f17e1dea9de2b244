package report

import (
	"time"

	"github.com/ogurasousui/isg-tracker/internal/core/schedule"
)

// Range は両端を含む暦日の期間です。
type Range struct {
	Start time.Time
	End   time.Time
}

// Contains は d が期間内かを返します。
func (r Range) Contains(d time.Time) bool {
	d = schedule.Day(d)
	return !d.Before(r.Start) && !d.After(r.End)
}

// Label は "DD.MM.YYYY - DD.MM.YYYY" 形式の表記を返します。
func (r Range) Label() string {
	const layout = "02.01.2006"
	return r.Start.Format(layout) + " - " + r.End.Format(layout)
}

// MonthRange は指定月の初日から末日までです。
func MonthRange(year int, month time.Month) Range {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Range{Start: start, End: start.AddDate(0, 1, -1)}
}

// CurrentWeek は today を含む月曜から日曜までです。
func CurrentWeek(today time.Time) Range {
	day := schedule.Day(today)
	offset := (int(day.Weekday()) + 6) % 7
	start := day.AddDate(0, 0, -offset)
	return Range{Start: start, End: start.AddDate(0, 0, 6)}
}

// NextWeek は today の翌週の月曜から日曜までです。
func NextWeek(today time.Time) Range {
	cur := CurrentWeek(today)
	return Range{Start: cur.Start.AddDate(0, 0, 7), End: cur.End.AddDate(0, 0, 7)}
}
