package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/traffic-insights-import/pkg/apiErrors"
)

// Pinger é a dependência verificada pelo healthcheck (conexão com o banco)
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthcheckHandler(db Pinger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			logrus.WithError(err).Warn("Healthcheck falhou ao acessar o banco")
			apiErrors.WriteError(w, apiErrors.ErrCommunication, "Banco de dados indisponível", nil)
			return
		}

		_, err := w.Write([]byte(time.Now().String()))
		if err != nil {
			logrus.WithError(err).Warn("error responding to healthcheck")
		}
	})
}
