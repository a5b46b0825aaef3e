package middleware

import (
	"bufio"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// findMetric pulls the first metric from a collector whose labels contain
// every entry in want.
func findMetric(c prometheus.Collector, want map[string]string) *dto.Metric {
	ch := make(chan prometheus.Metric, 100)
	c.Collect(ch)
	close(ch)

	for m := range ch {
		d := &dto.Metric{}
		if err := m.Write(d); err != nil {
			continue
		}
		got := make(map[string]string, len(d.GetLabel()))
		for _, lp := range d.GetLabel() {
			got[lp.GetName()] = lp.GetValue()
		}
		matched := true
		for k, v := range want {
			if got[k] != v {
				matched = false
				break
			}
		}
		if matched {
			return d
		}
	}
	return nil
}

// metricsRouter mounts the handler behind chi so RoutePattern resolves.
func metricsRouter(service string, handler http.HandlerFunc) *chi.Mux {
	r := chi.NewRouter()
	r.Use(PrometheusMetrics(service))
	r.Get("/widgets/{id}", handler)
	return r
}

func TestPrometheusMetrics_CountsByRoutePattern(t *testing.T) {
	r := metricsRouter("count-svc", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, id := range []string{"1", "2", "3"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/widgets/"+id, nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	// Distinct ids collapse into one series keyed by the route pattern.
	m := findMetric(httpRequestsTotal, map[string]string{
		"service": "count-svc", "method": "GET", "path": "/widgets/{id}", "status": "200",
	})
	require.NotNil(t, m)
	assert.GreaterOrEqual(t, m.GetCounter().GetValue(), float64(3))
}

func TestPrometheusMetrics_ObservesDuration(t *testing.T) {
	r := metricsRouter("duration-svc", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/widgets/9", nil))

	m := findMetric(httpRequestDuration, map[string]string{
		"service": "duration-svc", "status": "201",
	})
	require.NotNil(t, m)
	assert.GreaterOrEqual(t, m.GetHistogram().GetSampleCount(), uint64(1))
}

func TestPrometheusMetrics_InFlightGauge(t *testing.T) {
	var seen float64
	r := metricsRouter("inflight-svc", func(w http.ResponseWriter, req *http.Request) {
		if m := findMetric(httpRequestsInFlight, map[string]string{"service": "inflight-svc"}); m != nil {
			seen = m.GetGauge().GetValue()
		}
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/widgets/1", nil))

	assert.GreaterOrEqual(t, seen, float64(1))
}

func TestPrometheusMetrics_ImplicitStatusIs200(t *testing.T) {
	r := metricsRouter("implicit-svc", func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/widgets/1", nil))

	m := findMetric(httpRequestsTotal, map[string]string{"service": "implicit-svc", "status": "200"})
	require.NotNil(t, m)
}

type flushRecorder struct {
	http.ResponseWriter
	flushed bool
}

func (f *flushRecorder) Flush() { f.flushed = true }

type hijackRecorder struct {
	http.ResponseWriter
	hijacked bool
}

func (h *hijackRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h.hijacked = true
	return nil, nil, nil
}

type bareResponseWriter struct {
	header http.Header
}

func (b *bareResponseWriter) Header() http.Header {
	if b.header == nil {
		b.header = make(http.Header)
	}
	return b.header
}

func (b *bareResponseWriter) Write(p []byte) (int, error) { return len(p), nil }
func (b *bareResponseWriter) WriteHeader(int)             {}

func TestStatusRecorder_FlushDelegates(t *testing.T) {
	inner := &flushRecorder{ResponseWriter: httptest.NewRecorder()}
	rec := &statusRecorder{ResponseWriter: inner, status: http.StatusOK}

	rec.Flush()
	assert.True(t, inner.flushed)

	// No Flusher underneath: must not panic.
	(&statusRecorder{ResponseWriter: &bareResponseWriter{}}).Flush()
}

func TestStatusRecorder_HijackDelegates(t *testing.T) {
	inner := &hijackRecorder{ResponseWriter: httptest.NewRecorder()}
	rec := &statusRecorder{ResponseWriter: inner, status: http.StatusOK}

	_, _, err := rec.Hijack()
	assert.NoError(t, err)
	assert.True(t, inner.hijacked)

	_, _, err = (&statusRecorder{ResponseWriter: &bareResponseWriter{}}).Hijack()
	assert.ErrorIs(t, err, http.ErrNotSupported)
}
