package employee

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"testing"
	"time"

	"github.com/ogurasousui/isg-tracker/internal/core/firm"
	"github.com/ogurasousui/isg-tracker/internal/core/schedule"
	"github.com/ogurasousui/isg-tracker/internal/core/user"
)

type stubClock struct {
	now time.Time
}

func (s *stubClock) Now() time.Time {
	return s.now
}

type fakeFirms map[string]*firm.Firm

func (f fakeFirms) FindByID(_ context.Context, id string) (*firm.Firm, error) {
	found, ok := f[id]
	if !ok {
		return nil, firm.ErrFirmNotFound
	}
	return found, nil
}

type fakeRepo struct {
	employees map[string]*Employee
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{employees: make(map[string]*Employee)}
}

func (r *fakeRepo) Create(_ context.Context, e *Employee) (*Employee, error) {
	r.employees[e.ID] = cloneEmployee(e)
	return cloneEmployee(e), nil
}

func (r *fakeRepo) Update(_ context.Context, e *Employee) (*Employee, error) {
	if _, ok := r.employees[e.ID]; !ok {
		return nil, ErrEmployeeNotFound
	}
	r.employees[e.ID] = cloneEmployee(e)
	return cloneEmployee(e), nil
}

func (r *fakeRepo) FindByID(_ context.Context, id string) (*Employee, error) {
	e, ok := r.employees[id]
	if !ok {
		return nil, ErrEmployeeNotFound
	}
	return cloneEmployee(e), nil
}

func (r *fakeRepo) FindByNationalID(_ context.Context, nationalID string) ([]*Employee, error) {
	var out []*Employee
	for _, e := range r.sorted() {
		if e.NationalID == nationalID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeRepo) List(_ context.Context, filter ListEmployeesFilter) ([]*Employee, string, error) {
	var filtered []*Employee
	for _, e := range r.sorted() {
		if e.FirmID != filter.FirmID {
			continue
		}
		if filter.Status != nil && e.Status != *filter.Status {
			continue
		}
		filtered = append(filtered, e)
	}

	if filter.Offset > len(filtered) {
		return []*Employee{}, "", nil
	}
	end := filter.Offset + filter.Limit
	if end > len(filtered) {
		end = len(filtered)
	}
	var next string
	if end < len(filtered) {
		next = strconv.Itoa(end)
	}
	return filtered[filter.Offset:end], next, nil
}

func (r *fakeRepo) ListAll(_ context.Context) ([]*Employee, error) {
	return r.sorted(), nil
}

func (r *fakeRepo) sorted() []*Employee {
	out := make([]*Employee, 0, len(r.employees))
	for _, e := range r.employees {
		out = append(out, cloneEmployee(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func cloneEmployee(e *Employee) *Employee {
	if e == nil {
		return nil
	}
	copy := *e
	if e.TerminatedAt != nil {
		at := *e.TerminatedAt
		copy.TerminatedAt = &at
	}
	return &copy
}

var testFirms = fakeFirms{
	"firm-low":  {ID: "firm-low", Name: "Alfa", HazardTier: schedule.TierLow},
	"firm-high": {ID: "firm-high", Name: "Beta", HazardTier: schedule.TierHigh},
	"firm-very": {ID: "firm-very", Name: "Gama", HazardTier: schedule.TierVeryHigh},
}

var (
	admin     = &user.User{ID: "u-admin", Role: user.RoleAdmin}
	secretary = &user.User{ID: "u-sec", Role: user.RoleSecretary}
)

func newTestService(repo Repository, clk *stubClock, opts ...Option) *Service {
	svc := NewService(repo, testFirms, clk, nil, opts...)
	seq := 0
	svc.newID = func() string {
		seq++
		return fmt.Sprintf("emp-%d", seq)
	}
	return svc
}

func day(t *testing.T, raw string) time.Time {
	t.Helper()
	d, err := schedule.ParseDate(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return d
}

func TestService_CreateEmployee_ComputesNextTraining(t *testing.T) {
	t.Parallel()

	clk := &stubClock{now: time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)}
	svc := newTestService(newFakeRepo(), clk)

	created, err := svc.CreateEmployee(context.Background(), CreateEmployeeInput{
		FirmID:           "firm-high",
		NationalID:       " 12345678901 ",
		FullName:         "  Ali   Veli ",
		LastTrainingDate: "2023-03-15",
		Actor:            admin,
	})
	if err != nil {
		t.Fatalf("CreateEmployee returned error: %v", err)
	}

	if created.ID != "emp-1" {
		t.Fatalf("unexpected id %s", created.ID)
	}
	if created.FullName != "Ali Veli" || created.NationalID != "12345678901" {
		t.Fatalf("expected normalized fields, got %+v", created)
	}
	if want := day(t, "2025-03-15"); !created.NextTrainingDate.Equal(want) {
		t.Fatalf("next training = %s, want %s", created.NextTrainingDate, want)
	}
	if created.Status != StatusActive || created.Approval != ApprovalApproved {
		t.Fatalf("unexpected state %s/%s", created.Status, created.Approval)
	}
}

func TestService_CreateEmployee_Validation(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeRepo(), &stubClock{now: time.Now().UTC()})

	cases := []struct {
		name string
		in   CreateEmployeeInput
		want error
	}{
		{"missing firm", CreateEmployeeInput{NationalID: "1", FullName: "A", LastTrainingDate: "2024-01-01"}, ErrInvalidFirmID},
		{"non digit national id", CreateEmployeeInput{FirmID: "firm-low", NationalID: "12a", FullName: "A", LastTrainingDate: "2024-01-01"}, ErrInvalidNationalID},
		{"blank name", CreateEmployeeInput{FirmID: "firm-low", NationalID: "1", FullName: " ", LastTrainingDate: "2024-01-01"}, ErrInvalidName},
		{"bad date", CreateEmployeeInput{FirmID: "firm-low", NationalID: "1", FullName: "A", LastTrainingDate: "2024-13-01"}, ErrInvalidTrainingDate},
		{"missing date", CreateEmployeeInput{FirmID: "firm-low", NationalID: "1", FullName: "A"}, ErrInvalidTrainingDate},
		{"unknown firm", CreateEmployeeInput{FirmID: "firm-x", NationalID: "1", FullName: "A", LastTrainingDate: "2024-01-01"}, ErrFirmNotFound},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := svc.CreateEmployee(context.Background(), tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestService_CreateEmployee_SecretaryCreatesPending(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeRepo(), &stubClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)})

	created, err := svc.CreateEmployee(context.Background(), CreateEmployeeInput{
		FirmID: "firm-low", NationalID: "111", FullName: "A", LastTrainingDate: "2024-06-01", Actor: secretary,
	})
	if err != nil {
		t.Fatalf("CreateEmployee returned error: %v", err)
	}
	if !created.IsPending() || created.Counts() {
		t.Fatalf("expected pending employee excluded from counts, got %+v", created)
	}

	if _, err := svc.ApproveEmployee(context.Background(), ApproveEmployeeInput{ID: created.ID, Actor: secretary}); !errors.Is(err, ErrNotPermitted) {
		t.Fatalf("expected ErrNotPermitted for secretary, got %v", err)
	}

	stranger := &user.User{Role: user.RoleUser, AllowedFirmIDs: []string{"firm-high"}}
	if _, err := svc.ApproveEmployee(context.Background(), ApproveEmployeeInput{ID: created.ID, Actor: stranger}); !errors.Is(err, ErrNotPermitted) {
		t.Fatalf("expected ErrNotPermitted for unassigned user, got %v", err)
	}

	assigned := &user.User{Role: user.RoleUser, AllowedFirmIDs: []string{"firm-low"}}
	approved, err := svc.ApproveEmployee(context.Background(), ApproveEmployeeInput{ID: created.ID, Actor: assigned})
	if err != nil {
		t.Fatalf("ApproveEmployee returned error: %v", err)
	}
	if approved.IsPending() {
		t.Fatal("expected employee to be approved")
	}
}

func TestService_CreateEmployee_SameFirmConflicts(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := newTestService(repo, &stubClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)})
	in := CreateEmployeeInput{FirmID: "firm-low", NationalID: "222", FullName: "B", LastTrainingDate: "2024-01-01", Actor: admin}

	created, err := svc.CreateEmployee(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.CreateEmployee(context.Background(), in); !errors.Is(err, ErrAlreadyActive) {
		t.Fatalf("expected ErrAlreadyActive, got %v", err)
	}

	if _, err := svc.TerminateEmployee(context.Background(), TerminateEmployeeInput{ID: created.ID}); err != nil {
		t.Fatalf("TerminateEmployee returned error: %v", err)
	}
	if _, err := svc.CreateEmployee(context.Background(), in); !errors.Is(err, ErrRehireRequired) {
		t.Fatalf("expected ErrRehireRequired, got %v", err)
	}
}

func TestService_CreateEmployee_Transfer(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	clk := &stubClock{now: time.Date(2025, 2, 3, 15, 0, 0, 0, time.UTC)}
	svc := newTestService(repo, clk)

	original, err := svc.CreateEmployee(context.Background(), CreateEmployeeInput{
		FirmID: "firm-low", NationalID: "333", FullName: "C", LastTrainingDate: "2024-01-01", Actor: admin,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	transfer := CreateEmployeeInput{FirmID: "firm-very", NationalID: "333", FullName: "C", LastTrainingDate: "2025-01-20", Actor: admin}
	if _, err := svc.CreateEmployee(context.Background(), transfer); !errors.Is(err, ErrTransferConfirmationRequired) {
		t.Fatalf("expected ErrTransferConfirmationRequired, got %v", err)
	}

	transfer.ConfirmTransfer = true
	moved, err := svc.CreateEmployee(context.Background(), transfer)
	if err != nil {
		t.Fatalf("transfer returned error: %v", err)
	}
	if moved.FirmID != "firm-very" || !moved.NextTrainingDate.Equal(day(t, "2026-01-20")) {
		t.Fatalf("unexpected transferred employee %+v", moved)
	}

	old, err := repo.FindByID(context.Background(), original.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if old.IsActive() || old.TerminatedAt == nil || !old.TerminatedAt.Equal(day(t, "2025-02-03")) {
		t.Fatalf("expected old record terminated today, got %+v", old)
	}
}

func TestService_UpdateEmployee_RecomputesWithCurrentTier(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeRepo(), &stubClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)})
	created, err := svc.CreateEmployee(context.Background(), CreateEmployeeInput{
		FirmID: "firm-very", NationalID: "444", FullName: "D", LastTrainingDate: "2024-01-01", Actor: admin,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	date := "2024-10-31"
	name := "Deniz"
	updated, err := svc.UpdateEmployee(context.Background(), UpdateEmployeeInput{ID: created.ID, LastTrainingDate: &date, FullName: &name})
	if err != nil {
		t.Fatalf("UpdateEmployee returned error: %v", err)
	}
	if !updated.NextTrainingDate.Equal(day(t, "2025-10-31")) || updated.FullName != "Deniz" {
		t.Fatalf("unexpected update %+v", updated)
	}

	if _, err := svc.UpdateEmployee(context.Background(), UpdateEmployeeInput{ID: ""}); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestService_BulkUpdateTraining(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeRepo(), &stubClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)})
	var ids []string
	for i := 0; i < 3; i++ {
		e, err := svc.CreateEmployee(context.Background(), CreateEmployeeInput{
			FirmID: "firm-high", NationalID: strconv.Itoa(500 + i), FullName: "E", LastTrainingDate: "2022-01-01", Actor: admin,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		ids = append(ids, e.ID)
	}

	updated, err := svc.BulkUpdateTraining(context.Background(), BulkUpdateTrainingInput{FirmID: "firm-high", IDs: ids, LastTrainingDate: "2024-12-20"})
	if err != nil {
		t.Fatalf("BulkUpdateTraining returned error: %v", err)
	}
	if len(updated) != 3 {
		t.Fatalf("expected 3 updates, got %d", len(updated))
	}
	for _, e := range updated {
		if !e.NextTrainingDate.Equal(day(t, "2026-12-20")) {
			t.Fatalf("unexpected next training for %s: %s", e.ID, e.NextTrainingDate)
		}
	}

	other, err := svc.CreateEmployee(context.Background(), CreateEmployeeInput{
		FirmID: "firm-low", NationalID: "900", FullName: "F", LastTrainingDate: "2022-01-01", Actor: admin,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = svc.BulkUpdateTraining(context.Background(), BulkUpdateTrainingInput{FirmID: "firm-high", IDs: []string{other.ID}, LastTrainingDate: "2024-12-20"})
	if !errors.Is(err, ErrFirmMismatch) {
		t.Fatalf("expected ErrFirmMismatch, got %v", err)
	}
}

func TestEvaluateRehire_Boundaries(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		terminated string
		now        string
		calendar   bool
		days       bool
	}{
		{"183 days after", "2023-04-01", "2023-10-01", false, false},
		{"184 days after", "2023-04-01", "2023-10-02", true, true},
		{"month end clamps in calendar rule", "2023-07-31", "2024-01-31", false, true},
		{"short february span", "2023-01-31", "2023-08-01", true, false},
		{"eight months", "2024-01-01", "2024-09-01", true, true},
		{"four months", "2024-01-01", "2024-05-01", false, false},
		{"same day", "2024-01-01", "2024-01-01", false, false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			at := day(t, tc.terminated)
			e := &Employee{Status: StatusTerminated, TerminatedAt: &at, LastTrainingDate: day(t, "2020-01-01")}
			now := day(t, tc.now)

			if got := EvaluateRehire(e, now, RehireRuleCalendar).RefresherRequired; got != tc.calendar {
				t.Errorf("calendar rule = %v, want %v", got, tc.calendar)
			}
			if got := EvaluateRehire(e, now, RehireRuleDays).RefresherRequired; got != tc.days {
				t.Errorf("days rule = %v, want %v", got, tc.days)
			}
		})
	}
}

func TestEvaluateRehire_FallsBackToLastTraining(t *testing.T) {
	t.Parallel()

	e := &Employee{Status: StatusTerminated, LastTrainingDate: day(t, "2024-01-15")}
	decision := EvaluateRehire(e, day(t, "2024-04-20"), RehireRuleCalendar)

	if !decision.Since.Equal(day(t, "2024-01-15")) {
		t.Fatalf("since = %s", decision.Since)
	}
	if decision.GapDays != 96 || decision.GapMonths != 3 || decision.RefresherRequired {
		t.Fatalf("unexpected decision %+v", decision)
	}
}

func TestParseRehireRule(t *testing.T) {
	t.Parallel()

	if rule, err := ParseRehireRule(""); err != nil || rule != RehireRuleCalendar {
		t.Fatalf("expected calendar default, got %q %v", rule, err)
	}
	if rule, err := ParseRehireRule(" DAYS "); err != nil || rule != RehireRuleDays {
		t.Fatalf("expected days, got %q %v", rule, err)
	}
	if _, err := ParseRehireRule("weeks"); err == nil {
		t.Fatal("expected error for unknown rule")
	}
}

func TestService_RehireEmployee(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	clk := &stubClock{now: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)}
	svc := newTestService(repo, clk)

	created, err := svc.CreateEmployee(context.Background(), CreateEmployeeInput{
		FirmID: "firm-high", NationalID: "777", FullName: "G", LastTrainingDate: "2023-06-01", Actor: admin,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.EvaluateRehire(context.Background(), EvaluateRehireInput{ID: created.ID}); !errors.Is(err, ErrNotTerminated) {
		t.Fatalf("expected ErrNotTerminated, got %v", err)
	}
	if _, err := svc.TerminateEmployee(context.Background(), TerminateEmployeeInput{ID: created.ID}); err != nil {
		t.Fatalf("TerminateEmployee returned error: %v", err)
	}

	clk.now = time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	decision, err := svc.EvaluateRehire(context.Background(), EvaluateRehireInput{ID: created.ID})
	if err != nil {
		t.Fatalf("EvaluateRehire returned error: %v", err)
	}
	if !decision.RefresherRequired {
		t.Fatalf("expected refresher after eight months, got %+v", decision)
	}

	if _, err := svc.RehireEmployee(context.Background(), RehireEmployeeInput{ID: created.ID, ReusePreviousTraining: true, Actor: admin}); !errors.Is(err, ErrRefresherTrainingRequired) {
		t.Fatalf("expected ErrRefresherTrainingRequired, got %v", err)
	}

	rehired, err := svc.RehireEmployee(context.Background(), RehireEmployeeInput{ID: created.ID, LastTrainingDate: "2024-08-30", Actor: secretary})
	if err != nil {
		t.Fatalf("RehireEmployee returned error: %v", err)
	}
	if !rehired.IsActive() || rehired.TerminatedAt != nil {
		t.Fatalf("expected active employee, got %+v", rehired)
	}
	if !rehired.NextTrainingDate.Equal(day(t, "2026-08-30")) {
		t.Fatalf("unexpected next training %s", rehired.NextTrainingDate)
	}
	if !rehired.IsPending() {
		t.Fatal("expected secretary rehire to await approval")
	}
}

func TestService_RehireEmployee_ReusesTrainingWithinGap(t *testing.T) {
	t.Parallel()

	clk := &stubClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	svc := newTestService(newFakeRepo(), clk)

	created, err := svc.CreateEmployee(context.Background(), CreateEmployeeInput{
		FirmID: "firm-low", NationalID: "888", FullName: "H", LastTrainingDate: "2023-11-01", Actor: admin,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.TerminateEmployee(context.Background(), TerminateEmployeeInput{ID: created.ID}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	clk.now = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	if _, err := svc.RehireEmployee(context.Background(), RehireEmployeeInput{ID: created.ID, Actor: admin}); !errors.Is(err, ErrInvalidTrainingDate) {
		t.Fatalf("expected ErrInvalidTrainingDate without a date or reuse flag, got %v", err)
	}

	rehired, err := svc.RehireEmployee(context.Background(), RehireEmployeeInput{ID: created.ID, ReusePreviousTraining: true, Actor: admin})
	if err != nil {
		t.Fatalf("RehireEmployee returned error: %v", err)
	}
	if !rehired.LastTrainingDate.Equal(day(t, "2023-11-01")) || !rehired.NextTrainingDate.Equal(day(t, "2026-11-01")) {
		t.Fatalf("unexpected dates %+v", rehired)
	}
}

func TestService_RehireEmployee_ActiveElsewhere(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	clk := &stubClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	svc := newTestService(repo, clk)
	ctx := context.Background()

	first, err := svc.CreateEmployee(ctx, CreateEmployeeInput{
		FirmID: "firm-low", NationalID: "444", FullName: "D", LastTrainingDate: "2024-12-01", Actor: admin,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.TerminateEmployee(ctx, TerminateEmployeeInput{ID: first.ID}); err != nil {
		t.Fatalf("TerminateEmployee returned error: %v", err)
	}

	// 退職済みの記録は移籍確認の対象にならない
	second, err := svc.CreateEmployee(ctx, CreateEmployeeInput{
		FirmID: "firm-very", NationalID: "444", FullName: "D", LastTrainingDate: "2024-12-15", Actor: admin,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	clk.now = time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	in := RehireEmployeeInput{ID: first.ID, LastTrainingDate: "2025-01-20", Actor: admin}
	if _, err := svc.RehireEmployee(ctx, in); !errors.Is(err, ErrTransferConfirmationRequired) {
		t.Fatalf("expected ErrTransferConfirmationRequired, got %v", err)
	}
	if stored, _ := repo.FindByID(ctx, first.ID); stored.IsActive() {
		t.Fatal("rehire must not apply without confirmation")
	}

	in.ConfirmTransfer = true
	rehired, err := svc.RehireEmployee(ctx, in)
	if err != nil {
		t.Fatalf("RehireEmployee returned error: %v", err)
	}
	if !rehired.IsActive() {
		t.Fatalf("expected active employee, got %+v", rehired)
	}

	other, err := repo.FindByID(ctx, second.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if other.IsActive() || other.TerminatedAt == nil || !other.TerminatedAt.Equal(day(t, "2025-02-01")) {
		t.Fatalf("expected the other record to be terminated, got %+v", other)
	}

	active, err := repo.FindByNationalID(ctx, "444")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	count := 0
	for _, e := range active {
		if e.IsActive() {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one active record, got %d", count)
	}
}

func TestService_RehireEmployee_DaysRule(t *testing.T) {
	t.Parallel()

	clk := &stubClock{now: time.Date(2023, 7, 31, 0, 0, 0, 0, time.UTC)}
	svc := newTestService(newFakeRepo(), clk, WithRehireRule(RehireRuleDays))

	created, err := svc.CreateEmployee(context.Background(), CreateEmployeeInput{
		FirmID: "firm-low", NationalID: "999", FullName: "I", LastTrainingDate: "2023-01-01", Actor: admin,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.TerminateEmployee(context.Background(), TerminateEmployeeInput{ID: created.ID}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	clk.now = time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	decision, err := svc.EvaluateRehire(context.Background(), EvaluateRehireInput{ID: created.ID})
	if err != nil {
		t.Fatalf("EvaluateRehire returned error: %v", err)
	}
	if decision.GapDays != 184 || !decision.RefresherRequired {
		t.Fatalf("unexpected decision %+v", decision)
	}
}

func TestService_ListEmployees(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeRepo(), &stubClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)})
	for i := 0; i < 3; i++ {
		if _, err := svc.CreateEmployee(context.Background(), CreateEmployeeInput{
			FirmID: "firm-low", NationalID: strconv.Itoa(100 + i), FullName: "J", LastTrainingDate: "2024-01-01", Actor: admin,
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if _, err := svc.TerminateEmployee(context.Background(), TerminateEmployeeInput{ID: "emp-2"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	status := StatusActive
	result, err := svc.ListEmployees(context.Background(), ListEmployeesInput{FirmID: "firm-low", Status: &status, PageSize: 1})
	if err != nil {
		t.Fatalf("ListEmployees returned error: %v", err)
	}
	if len(result.Employees) != 1 || result.NextPageToken != "1" {
		t.Fatalf("unexpected page %+v", result)
	}

	bad := Status("GONE")
	if _, err := svc.ListEmployees(context.Background(), ListEmployeesInput{FirmID: "firm-low", Status: &bad}); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if _, err := svc.ListEmployees(context.Background(), ListEmployeesInput{}); !errors.Is(err, ErrInvalidFirmID) {
		t.Fatalf("expected ErrInvalidFirmID, got %v", err)
	}
}
