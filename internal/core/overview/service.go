// Package overview は保存済みの記録を読み込み、閲覧者の可視範囲で集計結果を返します。
package overview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ogurasousui/isg-tracker/internal/core/alert"
	"github.com/ogurasousui/isg-tracker/internal/core/boardmeeting"
	"github.com/ogurasousui/isg-tracker/internal/core/employee"
	"github.com/ogurasousui/isg-tracker/internal/core/equipment"
	"github.com/ogurasousui/isg-tracker/internal/core/firm"
	"github.com/ogurasousui/isg-tracker/internal/core/marker"
	"github.com/ogurasousui/isg-tracker/internal/core/note"
	"github.com/ogurasousui/isg-tracker/internal/core/report"
	"github.com/ogurasousui/isg-tracker/internal/core/riskassessment"
	"github.com/ogurasousui/isg-tracker/internal/core/user"
)

var (
	ErrInvalidViewer = errors.New("overview: invalid viewer")
	ErrInvalidPeriod = errors.New("overview: invalid period")
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

// Repositories は集計に必要な全件取得の入口です。
type Repositories struct {
	Firms     FirmLister
	Employees EmployeeLister
	Equipment EquipmentLister
	Risks     RiskLister
	Meetings  MeetingLister
	Notes     NoteLister
}

type FirmLister interface {
	ListAll(ctx context.Context) ([]*firm.Firm, error)
}

type EmployeeLister interface {
	ListAll(ctx context.Context) ([]*employee.Employee, error)
}

type EquipmentLister interface {
	ListAll(ctx context.Context) ([]*equipment.Equipment, error)
}

type RiskLister interface {
	ListAll(ctx context.Context) ([]*riskassessment.Assessment, error)
}

type MeetingLister interface {
	ListAll(ctx context.Context) ([]*boardmeeting.Meeting, error)
}

type NoteLister interface {
	ListAll(ctx context.Context) ([]*note.Note, error)
}

// UserFinder は閲覧者を取得します。
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*user.User, error)
}

// CountsObserver は集計結果を受け取ります。
type CountsObserver interface {
	ObserveCounts(counts alert.Counts)
}

// Service は集計系のユースケースです。
type Service struct {
	repos    Repositories
	users    UserFinder
	markers  marker.Store
	clock    Clock
	tx       TransactionManager
	observer CountsObserver
}

// Option は Service の任意設定です。
type Option func(*Service)

// WithObserver は Dashboard の集計結果の通知先を設定します。
func WithObserver(o CountsObserver) Option {
	return func(s *Service) { s.observer = o }
}

// NewService は Service を生成します。
func NewService(repos Repositories, users UserFinder, markers marker.Store, clock Clock, tx TransactionManager, opts ...Option) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	s := &Service{repos: repos, users: users, markers: markers, clock: clock, tx: tx}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dashboard は件数と警告一覧です。
type Dashboard struct {
	Today           time.Time
	FirmCount       int
	ActiveEmployees int
	Counts          alert.Counts
	Alerts          []alert.Alert
}

// DailyResult は日次サマリと、今回表示すべきかどうかです。
type DailyResult struct {
	Summary alert.Summary
	Show    bool
}

// Snapshot は全記録を一つの読み取りトランザクションで読み込みます。
func (s *Service) Snapshot(ctx context.Context) (alert.Snapshot, error) {
	var snap alert.Snapshot
	err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		var err error
		if snap.Firms, err = s.repos.Firms.ListAll(txCtx); err != nil {
			return fmt.Errorf("overview: list firms: %w", err)
		}
		if snap.Employees, err = s.repos.Employees.ListAll(txCtx); err != nil {
			return fmt.Errorf("overview: list employees: %w", err)
		}
		if snap.Equipment, err = s.repos.Equipment.ListAll(txCtx); err != nil {
			return fmt.Errorf("overview: list equipment: %w", err)
		}
		if snap.Risks, err = s.repos.Risks.ListAll(txCtx); err != nil {
			return fmt.Errorf("overview: list risk assessments: %w", err)
		}
		if snap.Meetings, err = s.repos.Meetings.ListAll(txCtx); err != nil {
			return fmt.Errorf("overview: list board meetings: %w", err)
		}
		if snap.Notes, err = s.repos.Notes.ListAll(txCtx); err != nil {
			return fmt.Errorf("overview: list notes: %w", err)
		}
		return nil
	})
	return snap, err
}

// Dashboard は閲覧者の可視範囲での件数と警告一覧を返します。
func (s *Service) Dashboard(ctx context.Context, viewerID string) (*Dashboard, error) {
	vis, snap, err := s.load(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	today := s.clock.Now()
	result := &Dashboard{
		Today:  today,
		Counts: alert.Count(snap, vis, today),
		Alerts: alert.Feed(snap, vis, today),
	}
	for _, f := range snap.Firms {
		if vis.Visible(f.ID) {
			result.FirmCount++
		}
	}
	for _, e := range snap.Employees {
		if vis.Visible(e.FirmID) && e.IsActive() {
			result.ActiveEmployees++
		}
	}

	if s.observer != nil {
		s.observer.ObserveCounts(alert.Count(snap, alert.Everything, today))
	}
	return result, nil
}

// DailySummary は日次サマリを返し、閲覧者にとって今日初めての表示であれば Show を立てます。
func (s *Service) DailySummary(ctx context.Context, viewerID string) (*DailyResult, error) {
	vis, snap, err := s.load(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	today := s.clock.Now()
	summary := alert.DailySummary(snap, vis, today)
	show, err := alert.DailyGate{Store: s.markers}.Check(ctx, viewerID, summary, today)
	if err != nil {
		return nil, err
	}
	return &DailyResult{Summary: summary, Show: show}, nil
}

// MonthlyPlan は指定月の計画を返します。
func (s *Service) MonthlyPlan(ctx context.Context, viewerID string, year int, month time.Month) (*alert.Plan, error) {
	if month < time.January || month > time.December || year < 1 {
		return nil, ErrInvalidPeriod
	}

	vis, snap, err := s.load(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	plan := alert.MonthlyPlan(snap, vis, s.clock.Now(), year, month)
	return &plan, nil
}

// PlanningReportInput は計画表の期間指定です。
type PlanningReportInput struct {
	ViewerID string
	// Period は "month"、"week"、"next_week" のいずれかです。
	Period string
	Year   int
	Month  time.Month
}

// PlanningReport は閲覧者の可視範囲で計画表を組み立てます。
func (s *Service) PlanningReport(ctx context.Context, in PlanningReportInput) (*report.Report, error) {
	today := s.clock.Now()

	var (
		r     report.Range
		title string
	)
	switch strings.ToLower(strings.TrimSpace(in.Period)) {
	case "month":
		if in.Month < time.January || in.Month > time.December || in.Year < 1 {
			return nil, ErrInvalidPeriod
		}
		r, title = report.MonthRange(in.Year, in.Month), "Aylık Plan"
	case "", "week":
		r, title = report.CurrentWeek(today), "Haftalık Plan"
	case "next_week":
		r, title = report.NextWeek(today), "Gelecek Hafta Planı"
	default:
		return nil, ErrInvalidPeriod
	}

	vis, snap, err := s.load(ctx, in.ViewerID)
	if err != nil {
		return nil, err
	}

	rep := report.Build(snap, vis, today, title, r)
	return &rep, nil
}

func (s *Service) load(ctx context.Context, viewerID string) (alert.Visibility, alert.Snapshot, error) {
	viewerID = strings.TrimSpace(viewerID)
	if viewerID == "" {
		return nil, alert.Snapshot{}, ErrInvalidViewer
	}

	viewer, err := s.users.FindByID(ctx, viewerID)
	if err != nil {
		return nil, alert.Snapshot{}, err
	}

	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, alert.Snapshot{}, err
	}
	return viewer.Visibility(), snap, nil
}
