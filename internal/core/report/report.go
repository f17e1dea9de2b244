// Package report は期限切れと期間内に予定される作業を事業所ごとにまとめた計画表を作ります。
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/ogurasousui/isg-tracker/internal/core/alert"
	"github.com/ogurasousui/isg-tracker/internal/core/schedule"
)

// Status は計画表の行の状態です。
type Status string

const (
	StatusExpired Status = "EXPIRED"
	StatusPlanned Status = "PLANNED"
)

// Label は表示用の文言を返します。
func (s Status) Label() string {
	if s == StatusExpired {
		return "GECİKMİŞ"
	}
	return "PLANLI"
}

// Item は計画表の一行です。
type Item struct {
	Category alert.Category
	Name     string
	Detail   string
	Date     time.Time
	Status   Status
}

// FirmSection は事業所ごとの行のまとまりです。
type FirmSection struct {
	FirmID     string
	FirmName   string
	HazardTier schedule.HazardTier
	Items      []Item
}

// Report は計画表です。
type Report struct {
	Title       string
	Range       Range
	GeneratedOn time.Time
	Firms       []FirmSection
	TotalItems  int
}

// Build は today より前に期限が切れた記録と Range 内に期限を迎える記録を集めます。
// 事業所は名前順、行は期限切れを先にして日付順です。行の無い事業所は含めません。
func Build(s alert.Snapshot, vis alert.Visibility, today time.Time, title string, r Range) Report {
	today = schedule.Day(today)
	rep := Report{Title: title, Range: r, GeneratedOn: today}

	classify := func(d time.Time) (Status, bool) {
		switch {
		case d.IsZero():
			return "", false
		case d.Before(today):
			return StatusExpired, true
		case r.Contains(d):
			return StatusPlanned, true
		default:
			return "", false
		}
	}

	firms := append(s.Firms[:0:0], s.Firms...)
	sort.SliceStable(firms, func(i, j int) bool { return firms[i].Name < firms[j].Name })

	for _, f := range firms {
		if !vis.Visible(f.ID) {
			continue
		}

		var items []Item
		add := func(c alert.Category, name, detail string, d time.Time) {
			if st, ok := classify(d); ok {
				items = append(items, Item{Category: c, Name: name, Detail: detail, Date: d, Status: st})
			}
		}

		for _, e := range s.Employees {
			if e.FirmID != f.ID || !e.Counts() {
				continue
			}
			detail := "-"
			if e.NationalID != "" {
				detail = "TC: " + e.NationalID
			}
			add(alert.CategoryTraining, e.FullName, detail, e.NextTrainingDate)
		}
		for _, eq := range s.Equipment {
			if eq.FirmID == f.ID {
				add(alert.CategoryEquipment, eq.Name, fmt.Sprintf("%d Aylık", eq.PeriodMonths), eq.NextInspectionDate)
			}
		}
		for _, ra := range s.Risks {
			if ra.FirmID == f.ID {
				add(alert.CategoryRisk, "Risk Analizi", "Firma Geneli", ra.ValidUntil)
			}
		}
		for _, m := range s.Meetings {
			if m.FirmID == f.ID {
				add(alert.CategoryMeeting, "Kurul Toplantısı", fmt.Sprintf("%d Ayda Bir", m.PeriodMonths), m.NextMeetingDate)
			}
		}

		if len(items) == 0 {
			continue
		}

		sort.SliceStable(items, func(i, j int) bool {
			a, b := items[i], items[j]
			if (a.Status == StatusExpired) != (b.Status == StatusExpired) {
				return a.Status == StatusExpired
			}
			return a.Date.Before(b.Date)
		})

		rep.Firms = append(rep.Firms, FirmSection{FirmID: f.ID, FirmName: f.Name, HazardTier: f.HazardTier, Items: items})
		rep.TotalItems += len(items)
	}

	return rep
}
