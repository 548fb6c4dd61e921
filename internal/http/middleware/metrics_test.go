package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_CountersInflightAndUnmatched(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Metrics(MetricsOptions{StreamPaths: []string{"/live"}}))
	r.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, "hello") })
	r.GET("/statusonly", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	var openDuring float64
	r.GET("/live", func(c *gin.Context) {
		openDuring = testutil.ToFloat64(httpStreams.WithLabelValues("/live"))
		c.String(http.StatusOK, "data: x\n\n")
	})

	baseOK := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/ok", "200"))
	base404 := testutil.ToFloat64(httpReqs.WithLabelValues("GET", unmatchedPath, "404"))
	baseLive := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/live", "200"))

	for _, p := range []string{"/ok", "/does-not-exist", "/another/missing", "/statusonly", "/live"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	if got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/ok", "200")); got != baseOK+1 {
		t.Fatalf("counter /ok 200 = %v; want %v", got, baseOK+1)
	}
	if got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", unmatchedPath, "404")); got != base404+2 {
		t.Fatalf("unmatched 404 = %v; want %v", got, base404+2)
	}
	if got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/live", "200")); got != baseLive+1 {
		t.Fatalf("stream counter = %v; want %v", got, baseLive+1)
	}
	if openDuring != 1 {
		t.Fatalf("open streams during handler = %v; want 1", openDuring)
	}
	if open := testutil.ToFloat64(httpStreams.WithLabelValues("/live")); open != 0 {
		t.Fatalf("open streams after = %v; want 0", open)
	}
	if inFlight := testutil.ToFloat64(httpInflight); inFlight != 0 {
		t.Fatalf("httpInflight = %v; want 0", inFlight)
	}
}
