package schedule

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout は日付の受け渡しに用いる ISO-8601 形式です。
const DateLayout = "2006-01-02"

// Day は t の暦日を UTC の 0 時として返します。時刻とタイムゾーンは捨てられます。
func Day(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate は YYYY-MM-DD 形式の文字列を暦日に変換します。空文字はゼロ値 (記録なし) です。
func ParseDate(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, nil
	}
	// 日時付きの値は日付部分だけを使う
	if len(trimmed) > len(DateLayout) && trimmed[len(DateLayout)] == 'T' {
		trimmed = trimmed[:len(DateLayout)]
	}
	t, err := time.Parse(DateLayout, trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("schedule: parse date %q: %w", raw, err)
	}
	return t, nil
}

// FormatDate は暦日を YYYY-MM-DD で返します。ゼロ値は空文字になります。
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return Day(t).Format(DateLayout)
}

// AddMonths は月を加算します。結果の月に同じ日が無い場合は月末日に丸めます。
func AddMonths(t time.Time, months int) time.Time {
	d := Day(t)
	if d.IsZero() {
		return d
	}

	total := int(d.Month()) - 1 + months
	year := d.Year() + floorDiv(total, 12)
	month := time.Month(floorMod(total, 12) + 1)

	day := d.Day()
	if last := daysIn(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// AddYears は年を加算します。2/29 は平年では 2/28 になります。
func AddYears(t time.Time, years int) time.Time {
	return AddMonths(t, years*12)
}

// SameMonth は二つの暦日が同じ年月かを返します。
func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
