package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

const (
	StageInitializing = iota + 1
	StageCatchup
	StageServing
	StageUpdating
)

func fqn(name string) string {
	return prometheus.BuildFQName("riema", "dividend_ledger", name)
}

var (
	Version = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: fqn("version"),
			Help: "Service version number",
		},
		[]string{"version"},
	)

	Stage = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: fqn("stage"),
		Help: "Service stage (e.g. initializing, catchup)",
	})

	DBQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    fqn("dbquery_duration"),
			Help:    "Duration of action source queries",
			Buckets: []float64{0.02, 0.05, 0.1, 0.2, 0.5, 1, 5},
		},
		[]string{"op"},
	)

	CurrentHeight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: fqn("current_height"),
		Help: "Source height applied during catchup or serving",
	})

	LedgerVersion = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: fqn("ledger_version"),
		Help: "Current checkpoint ledger version",
	})

	Payouts = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: fqn("payouts"),
		Help: "Number of declared payouts",
	})

	Actions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: fqn("actions_total"),
			Help: "Applied actions by operation and result",
		},
		[]string{"op", "result"},
	)

	HttpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    fqn("http_duration"),
			Help:    "HTTP request duration",
			Buckets: []float64{0.01, 0.05, 0.1, 0.2, 0.5, 1, 5, 15},
		},
		[]string{"method", "path", "status"},
	)
)

func ObserveDBQuery(op string, started time.Time) {
	DBQueryDuration.WithLabelValues(op).Observe(time.Since(started).Seconds())
}

// ObserveAction counts one applied action.
func ObserveAction(op string, err error) {
	result := "ok"
	if err != nil {
		result = "rejected"
	}
	Actions.WithLabelValues(op, result).Inc()
}

func HTTP(c *gin.Context) {
	started := time.Now()

	c.Next()

	path := c.FullPath()
	if path == "" {
		path = c.Request.URL.Path
	}
	HttpDuration.WithLabelValues(
		c.Request.Method,
		path,
		strconv.Itoa(c.Writer.Status()),
	).Observe(time.Since(started).Seconds())
}

func init() {
	prometheus.MustRegister(
		Version,
		Stage,
		DBQueryDuration,
		CurrentHeight,
		LedgerVersion,
		Payouts,
		Actions,
		HttpDuration,
	)
}

func ListenAndServe(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := (&http.Server{Addr: addr, Handler: mux}).ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
