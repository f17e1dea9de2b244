package alert

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogurasousui/isg-tracker/internal/core/boardmeeting"
	"github.com/ogurasousui/isg-tracker/internal/core/employee"
	"github.com/ogurasousui/isg-tracker/internal/core/equipment"
	"github.com/ogurasousui/isg-tracker/internal/core/firm"
	"github.com/ogurasousui/isg-tracker/internal/core/marker"
	"github.com/ogurasousui/isg-tracker/internal/core/note"
	"github.com/ogurasousui/isg-tracker/internal/core/riskassessment"
	"github.com/ogurasousui/isg-tracker/internal/core/schedule"
)

func d(t *testing.T, raw string) time.Time {
	t.Helper()
	v, err := schedule.ParseDate(raw)
	require.NoError(t, err)
	return v
}

func only(ids ...string) Visibility {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return VisibilityFunc(func(id string) bool { return set[id] })
}

func active(t *testing.T, id, firmID, next string) *employee.Employee {
	return &employee.Employee{
		ID: id, FirmID: firmID, FullName: "Personel " + id,
		NextTrainingDate: d(t, next),
		Status:           employee.StatusActive, Approval: employee.ApprovalApproved,
	}
}

func baseSnapshot(t *testing.T) Snapshot {
	pending := active(t, "e-pending", "f-a", "2025-01-01")
	pending.Approval = employee.ApprovalPending

	terminated := active(t, "e-gone", "f-a", "2025-01-01")
	terminated.Status = employee.StatusTerminated

	return Snapshot{
		Firms: []*firm.Firm{
			{ID: "f-a", Name: "Beta", HazardTier: schedule.TierHigh},
			{ID: "f-b", Name: "Alfa", HazardTier: schedule.TierLow},
		},
		Employees: []*employee.Employee{
			active(t, "e-expired", "f-a", "2025-02-01"),
			active(t, "e-soon", "f-a", "2025-03-20"),
			active(t, "e-valid", "f-b", "2026-01-01"),
			pending,
			terminated,
		},
		Equipment: []*equipment.Equipment{
			{ID: "eq-1", FirmID: "f-b", Name: "Forklift", NextInspectionDate: d(t, "2025-03-01")},
			{ID: "eq-none", FirmID: "f-b", Name: "Kayıtsız"},
		},
		Risks: []*riskassessment.Assessment{
			{ID: "r-1", FirmID: "f-b", ValidUntil: d(t, "2025-01-15")},
		},
		Meetings: []*boardmeeting.Meeting{
			{ID: "m-1", FirmID: "f-a", NextMeetingDate: d(t, "2025-04-05")},
		},
	}
}

func TestCount_ExcludesPendingAndTerminated(t *testing.T) {
	t.Parallel()

	counts := Count(baseSnapshot(t), Everything, d(t, "2025-03-01"))

	// e-expired, r-1 期限切れ / e-soon, eq-1 (当日) 接近 / m-1 は 35 日先で委員会の閾値外
	assert.Equal(t, 2, counts.Expired)
	assert.Equal(t, 2, counts.Approaching)
	assert.Equal(t, Counts{Expired: 1, Approaching: 1}, counts.ByCategory[CategoryTraining])
	assert.Equal(t, 0, counts.ByCategory[CategoryMeeting].Approaching)
}

func TestCount_MeetingUsesNarrowThreshold(t *testing.T) {
	t.Parallel()

	s := Snapshot{Meetings: []*boardmeeting.Meeting{{ID: "m", FirmID: "f", NextMeetingDate: d(t, "2025-03-20")}}}

	assert.Equal(t, 0, Count(s, Everything, d(t, "2025-03-01")).Approaching, "19 days out")
	assert.Equal(t, 1, Count(s, Everything, d(t, "2025-03-05")).Approaching, "15 days out")
}

func TestCount_Visibility(t *testing.T) {
	t.Parallel()

	counts := Count(baseSnapshot(t), only("f-a"), d(t, "2025-03-01"))
	assert.Equal(t, 1, counts.Expired)
	assert.Equal(t, 1, counts.Approaching)

	none := Count(baseSnapshot(t), only(), d(t, "2025-03-01"))
	assert.Zero(t, none.Expired+none.Approaching)
}

func TestFeed_PendingEmployeeAppearsOnceAsInfo(t *testing.T) {
	t.Parallel()

	s := baseSnapshot(t)
	today := d(t, "2025-03-01")
	feed := Feed(s, Everything, today)

	require.NotEmpty(t, feed)
	assert.Equal(t, TypeInfo, feed[0].Type)
	assert.Equal(t, "e-pending", feed[0].EntityID)

	seen := 0
	for _, a := range feed {
		if a.EntityID == "e-pending" {
			seen++
		}
		assert.NotEqual(t, "e-gone", a.EntityID)
	}
	assert.Equal(t, 1, seen)
	assert.Equal(t, 2, Count(s, Everything, today).Expired)
}

func TestFeed_OrderAndFields(t *testing.T) {
	t.Parallel()

	feed := Feed(baseSnapshot(t), Everything, d(t, "2025-03-01"))

	var ids []string
	for _, a := range feed {
		ids = append(ids, a.EntityID)
	}
	assert.Equal(t, []string{"e-pending", "r-1", "e-expired", "eq-1", "e-soon"}, ids)

	risk := feed[1]
	assert.Equal(t, TypeDanger, risk.Type)
	assert.Equal(t, CategoryRisk, risk.Category)
	assert.Equal(t, "Alfa", risk.FirmName)
	assert.Equal(t, "Risk Analizi Süresi Doldu", risk.Message)

	assert.Equal(t, TypeWarning, feed[3].Type)
	assert.Equal(t, "Periyodik Kontrol Yaklaşıyor: Forklift", feed[3].Message)
}

func TestFeed_TruncatesButCountsDoNot(t *testing.T) {
	t.Parallel()

	var s Snapshot
	for i := 0; i < 25; i++ {
		s.Employees = append(s.Employees, active(t, fmt.Sprintf("e-%02d", i), "f", fmt.Sprintf("2024-12-%02d", i+1)))
	}
	today := d(t, "2025-01-01")

	feed := Feed(s, Everything, today)
	require.Len(t, feed, FeedLimit)
	assert.Equal(t, "e-00", feed[0].EntityID)
	assert.Equal(t, "e-09", feed[FeedLimit-1].EntityID)
	assert.Equal(t, 25, Count(s, Everything, today).Expired)
}

func TestFeed_UnknownFirm(t *testing.T) {
	t.Parallel()

	s := Snapshot{Equipment: []*equipment.Equipment{{ID: "eq", FirmID: "ghost", Name: "Vinç", NextInspectionDate: d(t, "2025-01-01")}}}
	feed := Feed(s, Everything, d(t, "2025-02-01"))

	require.Len(t, feed, 1)
	assert.Equal(t, UnknownFirmName, feed[0].FirmName)
}

func TestDailySummary_IgnoresRisk(t *testing.T) {
	t.Parallel()

	today := d(t, "2025-03-01")
	s := Snapshot{Risks: []*riskassessment.Assessment{{ID: "r", FirmID: "f", ValidUntil: d(t, "2020-01-01")}}}

	sum := DailySummary(s, Everything, today)
	assert.False(t, sum.Any())
	assert.Equal(t, 1, Count(s, Everything, today).Expired)
}

func TestDailySummary_IncludesDueToday(t *testing.T) {
	t.Parallel()

	sum := DailySummary(baseSnapshot(t), Everything, d(t, "2025-03-01"))
	assert.Equal(t, Summary{Employees: 1, Equipment: 1, Meetings: 0}, sum)

	later := DailySummary(baseSnapshot(t), Everything, d(t, "2025-04-05"))
	assert.Equal(t, Summary{Employees: 2, Equipment: 1, Meetings: 1}, later)
}

// plainStore は ConditionalSetter を隠し、Get/Set だけで判定する経路を通します。
type plainStore struct{ marker.Store }

func TestDailyGate_OncePerDay(t *testing.T) {
	t.Parallel()

	stores := map[string]func() (marker.Store, *marker.MemoryStore){
		"conditional": func() (marker.Store, *marker.MemoryStore) {
			m := marker.NewMemoryStore()
			return m, m
		},
		"get-set": func() (marker.Store, *marker.MemoryStore) {
			m := marker.NewMemoryStore()
			return plainStore{m}, m
		},
	}

	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			store, mem := newStore()
			gate := DailyGate{Store: store}
			sum := Summary{Employees: 1}
			day1 := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

			shown, err := gate.Check(ctx, "admin", Summary{}, day1)
			require.NoError(t, err)
			assert.False(t, shown, "nothing to show")

			shown, err = gate.Check(ctx, "admin", sum, day1)
			require.NoError(t, err)
			assert.True(t, shown)

			shown, err = gate.Check(ctx, "admin", sum, day1.Add(6*time.Hour))
			require.NoError(t, err)
			assert.False(t, shown, "second open on the same day")

			shown, err = gate.Check(ctx, "limited", sum, day1.Add(6*time.Hour))
			require.NoError(t, err)
			assert.True(t, shown, "other viewer has not seen it yet")

			v, ok, err := mem.Get(ctx, LastAlertDateKey("admin"))
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "2025-03-01", v)
			assert.Equal(t, "last_alert_date:admin", LastAlertDateKey("admin"))

			shown, err = gate.Check(ctx, "admin", sum, day1.AddDate(0, 0, 1))
			require.NoError(t, err)
			assert.True(t, shown)
		})
	}
}

func TestDailyGate_ConcurrentOpensShowOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	gate := DailyGate{Store: marker.NewMemoryStore()}
	day := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	var (
		wg    sync.WaitGroup
		shown atomic.Int32
	)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := gate.Check(ctx, "admin", Summary{Meetings: 1}, day)
			assert.NoError(t, err)
			if ok {
				shown.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), shown.Load())
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("boom")
}

func (failingStore) Set(context.Context, string, string) error {
	return errors.New("boom")
}

func TestDailyGate_StoreError(t *testing.T) {
	t.Parallel()

	_, err := DailyGate{Store: failingStore{}}.Check(context.Background(), "admin", Summary{Meetings: 1}, time.Now())
	assert.ErrorContains(t, err, LastAlertDateKey("admin"))
}

func TestMonthlyPlan_PastMonthHidesOverdue(t *testing.T) {
	t.Parallel()

	today := d(t, "2025-03-10")
	s := Snapshot{
		Firms:     []*firm.Firm{{ID: "f", Name: "Acme", HazardTier: schedule.TierHigh}},
		Employees: []*employee.Employee{active(t, "e-jan", "f", "2025-01-20")},
	}

	jan := MonthlyPlan(s, Everything, today, 2025, time.January)
	require.Len(t, jan.Firms, 1, "due in the viewed month")

	// 一月期限の記録は二月表示には出ず、今月表示にだけ繰り越される
	feb := MonthlyPlan(s, Everything, today, 2025, time.February)
	assert.Empty(t, feb.Firms)

	mar := MonthlyPlan(s, Everything, today, 2025, time.March)
	require.Len(t, mar.Firms, 1)
	assert.True(t, mar.Firms[0].HasExpired)
	assert.Equal(t, schedule.StatusExpired, mar.Firms[0].Trainings[0].Status)

	apr := MonthlyPlan(s, Everything, today, 2025, time.April)
	assert.Empty(t, apr.Firms)
}

func TestMonthlyPlan_GroupingAndOrder(t *testing.T) {
	t.Parallel()

	today := d(t, "2025-03-10")
	s := baseSnapshot(t)
	s.Firms = append(s.Firms, &firm.Firm{ID: "f-c", Name: "Cem", HazardTier: schedule.TierVeryHigh})
	s.Equipment = append(s.Equipment, &equipment.Equipment{ID: "eq-c", FirmID: "f-c", Name: "Pres", NextInspectionDate: d(t, "2025-03-25")})
	s.Meetings = append(s.Meetings, &boardmeeting.Meeting{ID: "m-c", FirmID: "f-c", NextMeetingDate: d(t, "2025-03-28")})
	s.Notes = []*note.Note{
		{ID: "n-2", Title: "Tatbikat", Date: d(t, "2025-03-22")},
		{ID: "n-1", Title: "Denetim", Date: d(t, "2025-03-03")},
		{ID: "n-x", Title: "Nisan", Date: d(t, "2025-04-03")},
	}

	plan := MonthlyPlan(s, Everything, today, 2025, time.March)

	require.Len(t, plan.Firms, 3)
	// 期限切れを含む事業所が先、その中は名前順
	assert.Equal(t, "Alfa", plan.Firms[0].FirmName)
	assert.Equal(t, "Beta", plan.Firms[1].FirmName)
	assert.Equal(t, "Cem", plan.Firms[2].FirmName)

	alfa := plan.Firms[0]
	require.NotNil(t, alfa.Risk)
	assert.Len(t, alfa.Equipment, 1)
	assert.Equal(t, 2, alfa.TotalCount)

	beta := plan.Firms[1]
	assert.Len(t, beta.Trainings, 2, "expired carry-over plus due this month, pending excluded")
	assert.Nil(t, beta.Meeting)

	cem := plan.Firms[2]
	assert.False(t, cem.HasExpired)
	require.NotNil(t, cem.Meeting)
	assert.Equal(t, schedule.StatusApproaching, cem.Meeting.Status)
	assert.Equal(t, schedule.TierVeryHigh, cem.HazardTier)

	require.Len(t, plan.Notes, 2)
	assert.Equal(t, "n-1", plan.Notes[0].ID)
}

func TestMonthlyPlan_Visibility(t *testing.T) {
	t.Parallel()

	plan := MonthlyPlan(baseSnapshot(t), only("f-b"), d(t, "2025-03-10"), 2025, time.March)
	require.Len(t, plan.Firms, 1)
	assert.Equal(t, "f-b", plan.Firms[0].FirmID)
}
