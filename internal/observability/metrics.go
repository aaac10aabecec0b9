package observability

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Metrics keeps in-process counters and renders them in the Prometheus text format.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	apiRequests  *CounterVec
	apiLatency   *HistogramVec
	apiInflight  *Gauge
	llmRequests  *CounterVec
	llmLatency   *HistogramVec
	streamEvents *CounterVec
	uploads      *CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("nc_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"nc_api_request_duration_seconds",
			"API request latency in seconds by method/route/status.",
			[]string{"method", "route", "status"},
			[]float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		),
		apiInflight: NewGauge("nc_api_inflight_requests", "In-flight API requests."),
		llmRequests: NewCounterVec("nc_llm_requests_total", "Model calls by provider/op/outcome.", []string{"provider", "op", "outcome"}),
		llmLatency: NewHistogramVec(
			"nc_llm_request_duration_seconds",
			"Model call latency in seconds by provider/op.",
			[]string{"provider", "op"},
			[]float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60, 120},
		),
		streamEvents: NewCounterVec("nc_stream_replies_total", "Streamed replies by mode/outcome.", []string{"mode", "outcome"}),
		uploads:      NewCounterVec("nc_uploads_total", "File uploads by extension/outcome.", []string{"ext", "outcome"}),
	}
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
}

func (m *Metrics) ObserveModelCall(provider, op, outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	m.llmRequests.Inc(provider, op, outcome)
	m.llmLatency.Observe(dur.Seconds(), provider, op)
}

func (m *Metrics) IncStream(mode, outcome string) {
	if m == nil {
		return
	}
	m.streamEvents.Inc(mode, outcome)
}

func (m *Metrics) IncUpload(ext, outcome string) {
	if m == nil {
		return
	}
	m.uploads.Inc(ext, outcome)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, c := range []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests,
		m.apiLatency,
		m.apiInflight,
		m.llmRequests,
		m.llmLatency,
		m.streamEvents,
		m.uploads,
	} {
		if err := c.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

// Middleware counts requests and latency per matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		m.apiInflight.Inc()
		defer m.apiInflight.Dec()

		c.Next()

		m.ObserveAPI(c.Request.Method, c.FullPath(), strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
