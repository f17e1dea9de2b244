package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ogurasousui/isg-tracker/internal/core/alert"
)

var (
	ItemsExpired = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "isg_items_expired",
			Help: "Number of overdue compliance items by category",
		},
		[]string{"category"},
	)

	ItemsApproaching = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "isg_items_approaching",
			Help: "Number of compliance items inside their warning window by category",
		},
		[]string{"category"},
	)

	AutoReportsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "isg_auto_reports_total",
			Help: "Total number of generated weekly plan reports",
		},
	)

	RPCRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "isg_rpc_requests_total",
			Help: "Total number of gRPC requests by method and status code",
		},
		[]string{"method", "code"},
	)
)

// Observer はダッシュボード集計をゲージへ反映します。
type Observer struct{}

// ObserveCounts はカテゴリ別の期限切れ・接近件数を記録します。
func (Observer) ObserveCounts(counts alert.Counts) {
	for _, c := range alert.Categories {
		byCat := counts.ByCategory[c]
		ItemsExpired.WithLabelValues(string(c)).Set(float64(byCat.Expired))
		ItemsApproaching.WithLabelValues(string(c)).Set(float64(byCat.Approaching))
	}
}

// Serve は /metrics を公開し、ctx が終わるとサーバーを停止します。
func Serve(ctx context.Context, addr string, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics server listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
