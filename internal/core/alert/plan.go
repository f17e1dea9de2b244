package alert

import (
	"sort"
	"time"

	"github.com/ogurasousui/isg-tracker/internal/core/note"
	"github.com/ogurasousui/isg-tracker/internal/core/schedule"
)

// PlanItem は月次計画の一件です。
type PlanItem struct {
	ID     string
	Text   string
	Detail string
	Date   time.Time
	// Status は StatusExpired か StatusApproaching のどちらかです。
	Status schedule.Status
}

// FirmPlan は事業所ごとの月次計画です。
type FirmPlan struct {
	FirmID     string
	FirmName   string
	HazardTier schedule.HazardTier
	Trainings  []PlanItem
	Equipment  []PlanItem
	Risk       *PlanItem
	Meeting    *PlanItem
	TotalCount int
	HasExpired bool
}

// Plan は指定月の計画です。
type Plan struct {
	Year  int
	Month time.Month
	Firms []*FirmPlan
	Notes []*note.Note
}

// MonthlyPlan は (year, month) に期限を迎える記録を事業所ごとにまとめます。
// 表示月が today と同じ月のときに限り、期限切れの記録も繰り越して含めます。
func MonthlyPlan(s Snapshot, vis Visibility, today time.Time, year int, month time.Month) Plan {
	firms := indexFirms(s.Firms)
	viewing := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	current := schedule.SameMonth(viewing, today)

	qualifies := func(d time.Time) bool {
		if d.IsZero() {
			return false
		}
		if schedule.SameMonth(d, viewing) {
			return true
		}
		return current && schedule.IsExpired(d, today)
	}

	groups := make(map[string]*FirmPlan)
	entry := func(firmID string) *FirmPlan {
		if g, ok := groups[firmID]; ok {
			return g
		}
		g := &FirmPlan{FirmID: firmID, FirmName: UnknownFirmName, HazardTier: schedule.TierLow}
		if f, ok := firms[firmID]; ok {
			g.FirmName = f.Name
			g.HazardTier = f.HazardTier
		}
		groups[firmID] = g
		return g
	}
	item := func(g *FirmPlan, id, text, detail string, d time.Time) PlanItem {
		it := PlanItem{ID: id, Text: text, Detail: detail, Date: d, Status: schedule.StatusApproaching}
		if schedule.IsExpired(d, today) {
			it.Status = schedule.StatusExpired
			g.HasExpired = true
		}
		g.TotalCount++
		return it
	}

	for _, e := range s.Employees {
		if !vis.Visible(e.FirmID) || !e.Counts() || !qualifies(e.NextTrainingDate) {
			continue
		}
		g := entry(e.FirmID)
		g.Trainings = append(g.Trainings, item(g, e.ID, e.FullName, e.NationalID, e.NextTrainingDate))
	}
	for _, eq := range s.Equipment {
		if !vis.Visible(eq.FirmID) || !qualifies(eq.NextInspectionDate) {
			continue
		}
		g := entry(eq.FirmID)
		g.Equipment = append(g.Equipment, item(g, eq.ID, eq.Name, "", eq.NextInspectionDate))
	}
	for _, r := range s.Risks {
		if !vis.Visible(r.FirmID) || !qualifies(r.ValidUntil) {
			continue
		}
		g := entry(r.FirmID)
		it := item(g, r.ID, "Risk Analizi Yenileme", "", r.ValidUntil)
		g.Risk = &it
	}
	for _, m := range s.Meetings {
		if !vis.Visible(m.FirmID) || !qualifies(m.NextMeetingDate) {
			continue
		}
		g := entry(m.FirmID)
		it := item(g, m.ID, "Kurul Toplantısı", "", m.NextMeetingDate)
		g.Meeting = &it
	}

	plan := Plan{Year: year, Month: month, Firms: make([]*FirmPlan, 0, len(groups))}
	for _, g := range groups {
		plan.Firms = append(plan.Firms, g)
	}
	sort.Slice(plan.Firms, func(i, j int) bool {
		a, b := plan.Firms[i], plan.Firms[j]
		if a.HasExpired != b.HasExpired {
			return a.HasExpired
		}
		if a.FirmName != b.FirmName {
			return a.FirmName < b.FirmName
		}
		return a.FirmID < b.FirmID
	})

	for _, n := range s.Notes {
		if schedule.SameMonth(n.Date, viewing) {
			plan.Notes = append(plan.Notes, n)
		}
	}
	sort.SliceStable(plan.Notes, func(i, j int) bool { return plan.Notes[i].Date.Before(plan.Notes[j].Date) })

	return plan
}
