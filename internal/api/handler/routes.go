package handler

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vfg2006/traffic-insights-import/internal/api/handler/router"
	"github.com/vfg2006/traffic-insights-import/internal/config"
	"github.com/vfg2006/traffic-insights-import/internal/usecases/importing"
	"github.com/vfg2006/traffic-insights-import/pkg/middleware"
)

func Healthcheck(db Pinger) []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(db),
		},
	}
}

func Metrics() []router.Route {
	return []router.Route{
		{
			Path:    "/metrics",
			Method:  http.MethodGet,
			Handler: promhttp.Handler(),
		},
	}
}

func Imports(service importing.Service, cfg config.Import) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/imports",
			Method:      http.MethodPost,
			Handler:     ImportFile(service, cfg),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOrSupervisor()},
		},
		{
			Path:        "/v1/imports/:dataType/summary",
			Method:      http.MethodGet,
			Handler:     GetImportSummary(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOrSupervisor()},
		},
		{
			Path:        "/v1/schemas",
			Method:      http.MethodGet,
			Handler:     ListImportSchemas(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
	}
}

func CronJobs(services CronJobServices) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/cron/:type/run",
			Method:      http.MethodPost,
			Handler:     RunCronJob(services),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly()},
		},
		{
			Path:        "/v1/cron/status",
			Method:      http.MethodGet,
			Handler:     GetCronStatus(services),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOrSupervisor()},
		},
	}
}
