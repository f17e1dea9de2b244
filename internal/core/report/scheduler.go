package report

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ogurasousui/isg-tracker/internal/core/alert"
	"github.com/ogurasousui/isg-tracker/internal/core/marker"
	"github.com/ogurasousui/isg-tracker/internal/core/schedule"
)

// AutoReportTitle は自動出力する週次計画のタイトルです。
const AutoReportTitle = "Otomatik Haftalık Plan"

// DefaultPollInterval は自動レポート時刻の確認間隔です。
const DefaultPollInterval = 30 * time.Second

// Clock は現在時刻を提供します。壁時計の曜日と時刻で判定するためローカル時刻を返します。
type Clock interface {
	Now() time.Time
}

type localClock struct{}

func (localClock) Now() time.Time {
	return time.Now()
}

// Source は計画表の元になるスナップショットを読み込みます。
type Source interface {
	Snapshot(ctx context.Context) (alert.Snapshot, error)
}

// RunMarkerKey は同じ日の同じ時刻に二度実行しないためのマーカーのキーです。
func RunMarkerKey(now time.Time, timeOfDay string) string {
	return fmt.Sprintf("auto_report_run_%s_%s", schedule.FormatDate(now), timeOfDay)
}

// Scheduler は設定された曜日と時刻に翌週の計画表を出力します。
type Scheduler struct {
	source   Source
	store    marker.Store
	renderer Renderer
	clock    Clock
	logger   *zap.Logger
	onRun    func(Report, string)
}

// SchedulerOption は Scheduler の任意設定です。
type SchedulerOption func(*Scheduler)

// WithClock は時刻の取得元を差し替えます。
func WithClock(c Clock) SchedulerOption {
	return func(s *Scheduler) { s.clock = c }
}

// WithLogger はロガーを設定します。
func WithLogger(l *zap.Logger) SchedulerOption {
	return func(s *Scheduler) { s.logger = l }
}

// WithRunHook は出力が完了するたびに呼ばれる関数を設定します。
func WithRunHook(fn func(Report, string)) SchedulerOption {
	return func(s *Scheduler) { s.onRun = fn }
}

// NewScheduler は Scheduler を生成します。
func NewScheduler(source Source, store marker.Store, renderer Renderer, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		source:   source,
		store:    store,
		renderer: renderer,
		clock:    localClock{},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tick は現在時刻が設定と一致し、今日まだ実行していなければ計画表を出力します。
// 出力した場合は true を返します。
func (s *Scheduler) Tick(ctx context.Context) (bool, error) {
	settings, err := LoadSettings(ctx, s.store)
	if err != nil {
		return false, err
	}

	now := s.clock.Now()
	if now.Weekday() != settings.Weekday || now.Format("15:04") != settings.TimeOfDay {
		return false, nil
	}

	key := RunMarkerKey(now, settings.TimeOfDay)
	if _, done, err := s.store.Get(ctx, key); err != nil {
		return false, fmt.Errorf("report: read %s: %w", key, err)
	} else if done {
		return false, nil
	}

	snapshot, err := s.source.Snapshot(ctx)
	if err != nil {
		return false, fmt.Errorf("report: load snapshot: %w", err)
	}

	rep := Build(snapshot, alert.Everything, now, AutoReportTitle, NextWeek(now))
	location, err := s.renderer.Render(ctx, rep)
	if err != nil {
		return false, err
	}

	if err := s.store.Set(ctx, key, "true"); err != nil {
		return true, fmt.Errorf("report: write %s: %w", key, err)
	}

	s.logger.Info("auto report generated",
		zap.String("location", location),
		zap.String("period", rep.Range.Label()),
		zap.Int("items", rep.TotalItems),
	)
	if s.onRun != nil {
		s.onRun(rep, location)
	}
	return true, nil
}

// Run は ctx が終わるまで interval ごとに Tick を呼びます。
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Tick(ctx); err != nil {
				s.logger.Error("auto report failed", zap.Error(err))
			}
		}
	}
}
