package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/traffic-insights-import/internal/scheduler"
	"github.com/vfg2006/traffic-insights-import/pkg/apiErrors"
)

const CronJobTypeUploadCleanup = "upload-cleanup"

// CronJobServices contém os serviços de cron necessários para executar manualmente
type CronJobServices struct {
	UploadCleanupService *scheduler.UploadCleanupService
}

// RunCronJob executa manualmente uma cron job específica
func RunCronJob(services CronJobServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - RunCronJob")

		cronType := httprouter.ParamsFromContext(r.Context()).ByName("type")
		if cronType == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Tipo de cron job não especificado", nil)
			return
		}

		switch cronType {
		case CronJobTypeUploadCleanup:
			if services.UploadCleanupService == nil {
				apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Serviço de limpeza de uploads não disponível", nil)
				return
			}
			services.UploadCleanupService.TriggerManualRun()
		default:
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Tipo de cron job inválido. Valores aceitos: upload-cleanup", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]any{
			"message": "Cron job iniciada com sucesso",
			"type":    cronType,
		})
	}
}

// GetCronStatus retorna o status das cron jobs
func GetCronStatus(services CronJobServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]any{}
		if services.UploadCleanupService != nil {
			status[CronJobTypeUploadCleanup] = services.UploadCleanupService.GetStatus()
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(status)
	}
}
