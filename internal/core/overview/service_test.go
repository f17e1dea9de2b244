package overview

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ogurasousui/isg-tracker/internal/core/alert"
	"github.com/ogurasousui/isg-tracker/internal/core/boardmeeting"
	"github.com/ogurasousui/isg-tracker/internal/core/employee"
	"github.com/ogurasousui/isg-tracker/internal/core/equipment"
	"github.com/ogurasousui/isg-tracker/internal/core/firm"
	"github.com/ogurasousui/isg-tracker/internal/core/marker"
	"github.com/ogurasousui/isg-tracker/internal/core/note"
	"github.com/ogurasousui/isg-tracker/internal/core/riskassessment"
	"github.com/ogurasousui/isg-tracker/internal/core/schedule"
	"github.com/ogurasousui/isg-tracker/internal/core/user"
)

type stubClock struct {
	now time.Time
}

func (s stubClock) Now() time.Time {
	return s.now
}

type lister[T any] struct {
	items []T
	err   error
}

func (l lister[T]) ListAll(context.Context) ([]T, error) {
	return l.items, l.err
}

type fakeUsers map[string]*user.User

func (f fakeUsers) FindByID(_ context.Context, id string) (*user.User, error) {
	u, ok := f[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

type recordingTx struct {
	calls int
}

func (r *recordingTx) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	r.calls++
	return fn(ctx)
}

type countsRecorder struct {
	last *alert.Counts
}

func (c *countsRecorder) ObserveCounts(counts alert.Counts) {
	c.last = &counts
}

func date(raw string) time.Time {
	d, err := schedule.ParseDate(raw)
	if err != nil {
		panic(err)
	}
	return d
}

func testRepositories() Repositories {
	approved := func(id, firmID, next string) *employee.Employee {
		return &employee.Employee{
			ID: id, FirmID: firmID, FullName: id, NextTrainingDate: date(next),
			Status: employee.StatusActive, Approval: employee.ApprovalApproved,
		}
	}
	return Repositories{
		Firms: lister[*firm.Firm]{items: []*firm.Firm{
			{ID: "f-1", Name: "Birinci", HazardTier: schedule.TierHigh},
			{ID: "f-2", Name: "İkinci", HazardTier: schedule.TierLow},
		}},
		Employees: lister[*employee.Employee]{items: []*employee.Employee{
			approved("e-1", "f-1", "2025-03-01"),
			approved("e-2", "f-2", "2025-03-10"),
		}},
		Equipment: lister[*equipment.Equipment]{items: []*equipment.Equipment{
			{ID: "eq-1", FirmID: "f-2", Name: "Kazan", PeriodMonths: 12, NextInspectionDate: date("2025-02-01")},
		}},
		Risks: lister[*riskassessment.Assessment]{},
		Meetings: lister[*boardmeeting.Meeting]{items: []*boardmeeting.Meeting{
			{ID: "m-1", FirmID: "f-1", PeriodMonths: 2, NextMeetingDate: date("2025-03-20")},
		}},
		Notes: lister[*note.Note]{items: []*note.Note{{ID: "n-1", Title: "Tatbikat", Date: date("2025-03-12")}}},
	}
}

var testUsers = fakeUsers{
	"admin": {ID: "admin", Role: user.RoleAdmin},
	"limited": {
		ID: "limited", Role: user.RoleUser, AllowedFirmIDs: []string{"f-1"},
	},
}

func newTestService(repos Repositories, opts ...Option) (*Service, *recordingTx, marker.Store) {
	tx := &recordingTx{}
	store := marker.NewMemoryStore()
	svc := NewService(repos, testUsers, store, stubClock{now: time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC)}, tx, opts...)
	return svc, tx, store
}

func TestService_Dashboard_ScopesToViewer(t *testing.T) {
	t.Parallel()

	rec := &countsRecorder{}
	svc, tx, _ := newTestService(testRepositories(), WithObserver(rec))

	all, err := svc.Dashboard(context.Background(), "admin")
	if err != nil {
		t.Fatalf("Dashboard returned error: %v", err)
	}
	if all.FirmCount != 2 || all.ActiveEmployees != 2 {
		t.Fatalf("unexpected totals %+v", all)
	}
	// e-1, eq-1 期限切れ / e-2, m-1 接近
	if all.Counts.Expired != 2 || all.Counts.Approaching != 2 {
		t.Fatalf("unexpected counts %+v", all.Counts)
	}
	if tx.calls != 1 {
		t.Fatalf("expected snapshot in a single transaction, got %d", tx.calls)
	}

	limited, err := svc.Dashboard(context.Background(), "limited")
	if err != nil {
		t.Fatalf("Dashboard returned error: %v", err)
	}
	if limited.FirmCount != 1 || limited.Counts.Expired != 1 || limited.Counts.Approaching != 1 {
		t.Fatalf("unexpected scoped dashboard %+v", limited)
	}
	for _, a := range limited.Alerts {
		if a.FirmID != "f-1" {
			t.Fatalf("alert from invisible firm: %+v", a)
		}
	}

	if rec.last == nil || rec.last.Expired != 2 {
		t.Fatalf("observer must see unscoped counts, got %+v", rec.last)
	}
}

func TestService_Dashboard_Viewer(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(testRepositories())

	if _, err := svc.Dashboard(context.Background(), " "); !errors.Is(err, ErrInvalidViewer) {
		t.Fatalf("expected ErrInvalidViewer, got %v", err)
	}
	if _, err := svc.Dashboard(context.Background(), "ghost"); !errors.Is(err, user.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestService_Snapshot_PropagatesErrors(t *testing.T) {
	t.Parallel()

	repos := testRepositories()
	boom := errors.New("boom")
	repos.Meetings = lister[*boardmeeting.Meeting]{err: boom}
	svc, _, _ := newTestService(repos)

	if _, err := svc.Snapshot(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestService_DailySummary_ShowsOncePerDay(t *testing.T) {
	t.Parallel()

	svc, _, store := newTestService(testRepositories())

	first, err := svc.DailySummary(context.Background(), "admin")
	if err != nil {
		t.Fatalf("DailySummary returned error: %v", err)
	}
	if !first.Show || first.Summary.Employees != 1 || first.Summary.Equipment != 1 {
		t.Fatalf("unexpected first result %+v", first)
	}

	second, err := svc.DailySummary(context.Background(), "admin")
	if err != nil {
		t.Fatalf("DailySummary returned error: %v", err)
	}
	if second.Show {
		t.Fatal("summary must not show twice on the same day")
	}

	if v, _, _ := store.Get(context.Background(), alert.LastAlertDateKey("admin")); v != "2025-03-05" {
		t.Fatalf("unexpected marker %q", v)
	}
}

func TestService_DailySummaryPerViewer(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(testRepositories())
	ctx := context.Background()

	admin, err := svc.DailySummary(ctx, "admin")
	if err != nil {
		t.Fatalf("DailySummary returned error: %v", err)
	}
	if !admin.Show {
		t.Fatal("admin should see the summary")
	}

	limited, err := svc.DailySummary(ctx, "limited")
	if err != nil {
		t.Fatalf("DailySummary returned error: %v", err)
	}
	if limited.Summary != (alert.Summary{Employees: 1}) {
		t.Fatalf("unexpected limited summary %+v", limited.Summary)
	}
	if !limited.Show {
		t.Fatal("limited viewer has due items and must see its own summary")
	}

	again, err := svc.DailySummary(ctx, "limited")
	if err != nil {
		t.Fatalf("DailySummary returned error: %v", err)
	}
	if again.Show {
		t.Fatal("limited viewer must not see the summary twice on the same day")
	}
}

func TestService_MonthlyPlan(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(testRepositories())

	plan, err := svc.MonthlyPlan(context.Background(), "limited", 2025, time.March)
	if err != nil {
		t.Fatalf("MonthlyPlan returned error: %v", err)
	}
	if len(plan.Firms) != 1 || plan.Firms[0].FirmID != "f-1" {
		t.Fatalf("unexpected firms %+v", plan.Firms)
	}
	if len(plan.Notes) != 1 {
		t.Fatalf("expected the march note, got %d", len(plan.Notes))
	}

	if _, err := svc.MonthlyPlan(context.Background(), "admin", 2025, 0); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestService_PlanningReport(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(testRepositories())

	month, err := svc.PlanningReport(context.Background(), PlanningReportInput{ViewerID: "admin", Period: "month", Year: 2025, Month: time.March})
	if err != nil {
		t.Fatalf("PlanningReport returned error: %v", err)
	}
	if month.TotalItems != 4 || month.Title != "Aylık Plan" {
		t.Fatalf("unexpected monthly report %+v", month)
	}

	week, err := svc.PlanningReport(context.Background(), PlanningReportInput{ViewerID: "admin", Period: "week"})
	if err != nil {
		t.Fatalf("PlanningReport returned error: %v", err)
	}
	if !week.Range.Start.Equal(date("2025-03-03")) {
		t.Fatalf("unexpected week %+v", week.Range)
	}
	// 今週は e-1 と eq-1 の期限切れだけ
	if week.TotalItems != 2 {
		t.Fatalf("unexpected weekly items %d", week.TotalItems)
	}

	if _, err := svc.PlanningReport(context.Background(), PlanningReportInput{ViewerID: "admin", Period: "year"}); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}
