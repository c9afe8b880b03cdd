// Copyright (c) 2026 CLinCoDa. All rights reserved.

package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func probeReadiness(t *testing.T, deps HealthDependencies) *httptest.ResponseRecorder {
	t.Helper()
	_, readiness := NewHealthHandlers(deps, slog.New(slog.DiscardHandler))

	recorder := httptest.NewRecorder()
	readiness(recorder, httptest.NewRequest(http.MethodGet, "/ready", nil))
	return recorder
}

func TestReadiness_AllDependenciesHealthy(t *testing.T) {
	recorder := probeReadiness(t, HealthDependencies{
		CheckStore: func() error { return nil },
		CheckCache: func() error { return nil },
	})

	assert.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Data struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "ready", body.Data.Status)
}

func TestReadiness_DegradedReturns503Once(t *testing.T) {
	recorder := probeReadiness(t, HealthDependencies{
		CheckStore: func() error { return nil },
		CheckCache: func() error { return errors.New("connection refused") },
	})

	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)

	var body struct {
		Data struct {
			Status string `json:"status"`
			Checks []struct {
				Name  string `json:"name"`
				IsOK  bool   `json:"ok"`
				Error string `json:"error"`
			} `json:"checks"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Data.Status)

	require.Len(t, body.Data.Checks, 2)
	assert.True(t, body.Data.Checks[0].IsOK)
	assert.False(t, body.Data.Checks[1].IsOK)
	assert.Equal(t, "connection refused", body.Data.Checks[1].Error)
}

func TestLiveness_AlwaysOK(t *testing.T) {
	liveness, _ := NewHealthHandlers(HealthDependencies{}, slog.New(slog.DiscardHandler))

	recorder := httptest.NewRecorder()
	liveness(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"data":{"status":"ok"}}`, recorder.Body.String())
}
