package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fekuna/school-inventory-service/pkg/metrics"
	"github.com/stretchr/testify/assert"
)

func TestOpsRouter(t *testing.T) {
	m := metrics.New()
	m.ObserveTransition("distribution", "approved")

	healthy := opsRouter(m, func(context.Context) error { return nil })

	rec := httptest.NewRecorder()
	healthy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	healthy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "distribution")

	down := opsRouter(m, func(context.Context) error { return errors.New("db down") })
	rec = httptest.NewRecorder()
	down.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	healthy.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/healthz", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestNormalizePort(t *testing.T) {
	assert.Equal(t, ":8082", normalizePort("8082"))
	assert.Equal(t, ":8082", normalizePort(":8082"))
	assert.Equal(t, "0.0.0.0:8082", normalizePort("0.0.0.0:8082"))
}
