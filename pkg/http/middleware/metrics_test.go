package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsPassesThrough(t *testing.T) {
	mw := Metrics(nil, 0)
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("ok"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/signals", nil))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if rec.Body.String() != "ok" {
		t.Fatalf("body = %q, want ok", rec.Body.String())
	}
}

func TestMetricsCountsRequests(t *testing.T) {
	mw := Metrics(nil, 0)
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	counter := httpRequestsTotal.WithLabelValues("/api/notifications", http.MethodGet, "200")
	before := testutil.ToFloat64(counter)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/notifications", nil))

	if got := testutil.ToFloat64(counter); got != before+1 {
		t.Fatalf("http_requests_total = %v, want %v", got, before+1)
	}
}

func TestStatusClass(t *testing.T) {
	cases := []struct {
		code int
		want string
	}{
		{102, "1xx"},
		{200, "2xx"},
		{301, "3xx"},
		{404, "4xx"},
		{500, "5xx"},
	}
	for _, tc := range cases {
		if got := statusClass(tc.code); got != tc.want {
			t.Errorf("statusClass(%d) = %s, want %s", tc.code, got, tc.want)
		}
	}
}
