package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/traffic-insights-import/internal/config"
	"github.com/vfg2006/traffic-insights-import/internal/domain"
	"github.com/vfg2006/traffic-insights-import/internal/schema"
	"github.com/vfg2006/traffic-insights-import/internal/usecases/authenticating"
	"github.com/vfg2006/traffic-insights-import/internal/usecases/importing"
	"github.com/vfg2006/traffic-insights-import/pkg/middleware"
)

type stubImportService struct{}

func (stubImportService) Import(ctx context.Context, req importing.Request, reporter importing.ProgressReporter) (*domain.RunSummary, error) {
	return &domain.RunSummary{}, nil
}

func (stubImportService) Summary(ctx context.Context, sourceType, scope string) (*domain.ImportRollup, error) {
	return &domain.ImportRollup{SourceType: sourceType}, nil
}

func (stubImportService) Schemas() []*schema.Definition {
	return schema.NewRegistry().List()
}

type okPinger struct{}

func (okPinger) Ping(ctx context.Context) error { return nil }

func TestNewHandler_Rotas(t *testing.T) {
	auth := authenticating.NewService("segredo")
	handler := NewHandler(&config.Config{}, stubImportService{}, auth, okPinger{}, nil)

	supervisor, err := auth.IssueToken(domain.Claims{UserID: 2, UserRoleID: middleware.RoleSupervisor}, time.Hour)
	require.NoError(t, err)
	client, err := auth.IssueToken(domain.Claims{UserID: 3, UserRoleID: middleware.RoleClient}, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		wantStatus int
	}{
		{name: "healthcheck público", method: http.MethodGet, path: "/healthcheck", wantStatus: http.StatusOK},
		{name: "métricas públicas", method: http.MethodGet, path: "/metrics", wantStatus: http.StatusOK},
		{name: "resumo sem token", method: http.MethodGet, path: "/v1/imports/ads_daily/summary?clientId=1", wantStatus: http.StatusUnauthorized},
		{name: "resumo como supervisor", method: http.MethodGet, path: "/v1/imports/ads_daily/summary?clientId=1", token: supervisor, wantStatus: http.StatusOK},
		{name: "resumo como cliente", method: http.MethodGet, path: "/v1/imports/ads_daily/summary?clientId=1", token: client, wantStatus: http.StatusForbidden},
		{name: "schemas como cliente", method: http.MethodGet, path: "/v1/schemas", token: client, wantStatus: http.StatusOK},
		{name: "rota inexistente", method: http.MethodGet, path: "/v1/nada", token: supervisor, wantStatus: http.StatusNotFound},
		{name: "cron como supervisor", method: http.MethodPost, path: "/v1/cron/upload-cleanup/run", token: supervisor, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
