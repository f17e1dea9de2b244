package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/ogurasousui/isg-tracker/internal/adapters/grpc/handler"
	"github.com/ogurasousui/isg-tracker/internal/adapters/repository/postgres"
	redisstore "github.com/ogurasousui/isg-tracker/internal/adapters/repository/redis"
	"github.com/ogurasousui/isg-tracker/internal/core/boardmeeting"
	"github.com/ogurasousui/isg-tracker/internal/core/employee"
	"github.com/ogurasousui/isg-tracker/internal/core/equipment"
	"github.com/ogurasousui/isg-tracker/internal/core/firm"
	"github.com/ogurasousui/isg-tracker/internal/core/marker"
	"github.com/ogurasousui/isg-tracker/internal/core/note"
	"github.com/ogurasousui/isg-tracker/internal/core/overview"
	"github.com/ogurasousui/isg-tracker/internal/core/report"
	"github.com/ogurasousui/isg-tracker/internal/core/riskassessment"
	"github.com/ogurasousui/isg-tracker/internal/core/user"
	"github.com/ogurasousui/isg-tracker/internal/platform/config"
	pg "github.com/ogurasousui/isg-tracker/internal/platform/db/postgres"
	"github.com/ogurasousui/isg-tracker/internal/platform/logging"
	"github.com/ogurasousui/isg-tracker/internal/platform/metrics"
	"github.com/ogurasousui/isg-tracker/internal/platform/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	dbPool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("initialize database pool: %w", err)
	}
	defer dbPool.Close()

	markers, closeMarkers, err := newMarkerStore(ctx, cfg.Markers, dbPool)
	if err != nil {
		return err
	}
	defer closeMarkers()

	rehireRule, err := employee.ParseRehireRule(cfg.Employees.RehireRule)
	if err != nil {
		return err
	}

	tx := pg.NewTransactionManager(dbPool)

	firmRepo := postgres.NewFirmRepository(dbPool)
	employeeRepo := postgres.NewEmployeeRepository(dbPool)
	equipmentRepo := postgres.NewEquipmentRepository(dbPool)
	riskRepo := postgres.NewRiskAssessmentRepository(dbPool)
	meetingRepo := postgres.NewBoardMeetingRepository(dbPool)
	noteRepo := postgres.NewNoteRepository(dbPool)
	userRepo := postgres.NewUserRepository(dbPool)

	firmSvc := firm.NewService(firmRepo, nil, tx)
	employeeSvc := employee.NewService(employeeRepo, firmRepo, nil, tx, employee.WithRehireRule(rehireRule))
	equipmentSvc := equipment.NewService(equipmentRepo, firmRepo, nil)
	riskSvc := riskassessment.NewService(riskRepo, firmRepo, nil, tx)
	meetingSvc := boardmeeting.NewService(meetingRepo, firmRepo, nil, tx)
	noteSvc := note.NewService(noteRepo, nil)
	userSvc := user.NewService(userRepo, nil)
	overviewSvc := overview.NewService(overview.Repositories{
		Firms:     firmRepo,
		Employees: employeeRepo,
		Equipment: equipmentRepo,
		Risks:     riskRepo,
		Meetings:  meetingRepo,
		Notes:     noteRepo,
	}, userRepo, markers, nil, tx, overview.WithObserver(metrics.Observer{}))

	compliance := handler.NewComplianceHandler(handler.Dependencies{
		Overview:  overviewSvc,
		Firms:     firmSvc,
		Employees: employeeSvc,
		Equipment: equipmentSvc,
		Risks:     riskSvc,
		Meetings:  meetingSvc,
		Notes:     noteSvc,
		Accounts:  userSvc,
		Markers:   markers,
		Users:     userRepo,
	})
	grpcServer := server.New(cfg.Server.ListenAddr, compliance, grpc.UnaryInterceptor(server.UnaryLogging(logger)))

	if cfg.Server.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.Server.MetricsAddr, logger); err != nil {
				logger.Error("metrics server stopped", zap.Error(err))
			}
		}()
	}

	if cfg.Scheduler.Enabled {
		scheduler := report.NewScheduler(overviewSvc, markers, report.TextRenderer{Dir: cfg.Scheduler.ReportDir},
			report.WithLogger(logger),
			report.WithRunHook(func(report.Report, string) { metrics.AutoReportsTotal.Inc() }),
		)
		go scheduler.Run(ctx, cfg.Scheduler.PollInterval)
	}

	logger.Info("gRPC server listening",
		zap.String("addr", cfg.Server.ListenAddr),
		zap.String("markers", cfg.Markers.Backend),
		zap.Bool("scheduler", cfg.Scheduler.Enabled),
	)

	return grpcServer.Run(ctx)
}

func newMarkerStore(ctx context.Context, cfg config.MarkersConfig, pool pg.Queryer) (marker.Store, func(), error) {
	switch cfg.Backend {
	case config.MarkerBackendRedis:
		client, err := redisstore.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("initialize redis: %w", err)
		}
		return redisstore.NewMarkerStore(client, cfg.Redis.KeyPrefix), func() { _ = client.Close() }, nil
	case config.MarkerBackendMemory:
		return marker.NewMemoryStore(), func() {}, nil
	case config.MarkerBackendPostgres:
		return postgres.NewMarkerStore(pool), func() {}, nil
	default:
		return nil, nil, errors.New("unknown marker backend " + cfg.Backend)
	}
}
