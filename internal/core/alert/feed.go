package alert

import (
	"sort"
	"time"

	"github.com/ogurasousui/isg-tracker/internal/core/schedule"
)

// FeedLimit は警告一覧に表示する最大件数です。
const FeedLimit = 10

// Type は警告の種別です。
type Type string

const (
	TypeInfo    Type = "info"
	TypeDanger  Type = "danger"
	TypeWarning Type = "warning"
)

// Category は警告の対象区分です。
type Category string

const (
	CategoryTraining  Category = "training"
	CategoryEquipment Category = "equipment"
	CategoryRisk      Category = "risk"
	CategoryMeeting   Category = "meeting"
)

// Categories は集計・表示の既定順です。
var Categories = []Category{CategoryRisk, CategoryMeeting, CategoryTraining, CategoryEquipment}

// ThresholdDays は区分ごとの接近判定の日数を返します。
func (c Category) ThresholdDays() int {
	if c == CategoryMeeting {
		return schedule.BoardMeetingThresholdDays
	}
	return schedule.DefaultThresholdDays
}

// Alert は警告一覧の一件です。
type Alert struct {
	Type     Type
	Message  string
	Date     time.Time
	FirmID   string
	FirmName string
	Category Category
	EntityID string
}

// Counts は期限切れと期限接近の件数です。
type Counts struct {
	Expired     int
	Approaching int
	ByCategory  map[Category]Counts
}

type dueItem struct {
	category Category
	entityID string
	firmID   string
	label    string
	due      time.Time
}

// dueItems は集計対象となる期限を区分順に並べます。退職者と承認待ちは含みません。
func dueItems(s Snapshot, vis Visibility) []dueItem {
	var items []dueItem
	for _, r := range s.Risks {
		if vis.Visible(r.FirmID) && !r.ValidUntil.IsZero() {
			items = append(items, dueItem{CategoryRisk, r.ID, r.FirmID, "", r.ValidUntil})
		}
	}
	for _, m := range s.Meetings {
		if vis.Visible(m.FirmID) && !m.NextMeetingDate.IsZero() {
			items = append(items, dueItem{CategoryMeeting, m.ID, m.FirmID, "", m.NextMeetingDate})
		}
	}
	for _, e := range s.Employees {
		if vis.Visible(e.FirmID) && e.Counts() && !e.NextTrainingDate.IsZero() {
			items = append(items, dueItem{CategoryTraining, e.ID, e.FirmID, e.FullName, e.NextTrainingDate})
		}
	}
	for _, eq := range s.Equipment {
		if vis.Visible(eq.FirmID) && !eq.NextInspectionDate.IsZero() {
			items = append(items, dueItem{CategoryEquipment, eq.ID, eq.FirmID, eq.Name, eq.NextInspectionDate})
		}
	}
	return items
}

// Count は可視事業所の期限切れ・期限接近の件数を数えます。件数は打ち切りません。
func Count(s Snapshot, vis Visibility, today time.Time) Counts {
	counts := Counts{ByCategory: make(map[Category]Counts, len(Categories))}
	for _, item := range dueItems(s, vis) {
		c := counts.ByCategory[item.category]
		switch schedule.Classify(item.due, today, item.category.ThresholdDays()) {
		case schedule.StatusExpired:
			counts.Expired++
			c.Expired++
		case schedule.StatusApproaching:
			counts.Approaching++
			c.Approaching++
		}
		counts.ByCategory[item.category] = c
	}
	return counts
}

// Feed は警告一覧を返します。承認待ちの従業員は info として先頭に並び、
// 残りは期限の早い順に FeedLimit 件までです。
func Feed(s Snapshot, vis Visibility, today time.Time) []Alert {
	firms := indexFirms(s.Firms)

	var alerts []Alert
	for _, item := range dueItems(s, vis) {
		var typ Type
		switch schedule.Classify(item.due, today, item.category.ThresholdDays()) {
		case schedule.StatusExpired:
			typ = TypeDanger
		case schedule.StatusApproaching:
			typ = TypeWarning
		default:
			continue
		}
		alerts = append(alerts, Alert{
			Type:     typ,
			Message:  message(item.category, typ, item.label),
			Date:     item.due,
			FirmID:   item.firmID,
			FirmName: firms.name(item.firmID),
			Category: item.category,
			EntityID: item.entityID,
		})
	}

	for _, e := range s.Employees {
		if !vis.Visible(e.FirmID) || !e.IsActive() || !e.IsPending() {
			continue
		}
		alerts = append(alerts, Alert{
			Type:     TypeInfo,
			Message:  "Onay Bekleyen Personel: " + e.FullName,
			Date:     e.NextTrainingDate,
			FirmID:   e.FirmID,
			FirmName: firms.name(e.FirmID),
			Category: CategoryTraining,
			EntityID: e.ID,
		})
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		a, b := alerts[i], alerts[j]
		if (a.Type == TypeInfo) != (b.Type == TypeInfo) {
			return a.Type == TypeInfo
		}
		if a.Type == TypeInfo {
			return false
		}
		return a.Date.Before(b.Date)
	})

	if len(alerts) > FeedLimit {
		alerts = alerts[:FeedLimit]
	}
	return alerts
}

func message(c Category, t Type, label string) string {
	expired := t == TypeDanger
	var text string
	switch c {
	case CategoryRisk:
		text = pick(expired, "Risk Analizi Süresi Doldu", "Risk Analizi Süresi Yaklaşıyor")
	case CategoryMeeting:
		text = pick(expired, "Kurul Toplantısı Gecikti", "Kurul Toplantısı Yaklaşıyor")
	case CategoryTraining:
		text = pick(expired, "Eğitim Süresi Doldu", "Eğitim Süresi Yaklaşıyor")
	case CategoryEquipment:
		text = pick(expired, "Periyodik Kontrol Gecikti", "Periyodik Kontrol Yaklaşıyor")
	}
	if label != "" {
		text += ": " + label
	}
	return text
}

func pick(cond bool, a, b string) string {
	if cond {
		return a
	}
	return b
}
