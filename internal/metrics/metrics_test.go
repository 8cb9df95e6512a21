package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRefreshTotal_CountsByOutcome(t *testing.T) {
	before := testutil.ToFloat64(RefreshTotal.WithLabelValues(OutcomeSuperseded))
	RefreshTotal.WithLabelValues(OutcomeSuperseded).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(RefreshTotal.WithLabelValues(OutcomeSuperseded)))
}

func TestNewServer_ServesMetricsAndHealth(t *testing.T) {
	srv := NewServer(":0", nil)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	AnnotationSavesTotal.WithLabelValues(OutcomeOK).Inc()
	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "alertboard_annotation_saves_total"))
}

func TestNewServer_Readiness(t *testing.T) {
	var down error
	srv := NewServer(":0", func(context.Context) error { return down })

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	down = errors.New("backend unreachable")
	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "backend unreachable")
}

func TestNewServer_NoReadinessWithoutChecker(t *testing.T) {
	rec := httptest.NewRecorder()
	NewServer(":0", nil).Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
