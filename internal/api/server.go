package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/justinas/alice"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/traffic-insights-import/internal/api/handler"
	"github.com/vfg2006/traffic-insights-import/internal/api/handler/router"
	"github.com/vfg2006/traffic-insights-import/internal/config"
	"github.com/vfg2006/traffic-insights-import/internal/scheduler"
	"github.com/vfg2006/traffic-insights-import/internal/usecases/authenticating"
	"github.com/vfg2006/traffic-insights-import/internal/usecases/importing"
	"github.com/vfg2006/traffic-insights-import/pkg/middleware"
)

type Server struct {
	httpServer *http.Server
}

func New(
	config *config.Config,
	importService importing.Service,
	authenticator authenticating.Authenticator,
	db handler.Pinger,
	uploadCleanupService *scheduler.UploadCleanupService,
) (*Server, error) {
	rt := NewHandler(config, importService, authenticator, db, uploadCleanupService)

	srv := &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port),
			Handler:           rt,
			ReadHeaderTimeout: 2 * time.Second,
			// Sem WriteTimeout: o stream de progresso dura o tempo da importação
		},
	}

	return srv, nil
}

// NewHandler monta o router com a cadeia de middlewares
func NewHandler(
	config *config.Config,
	importService importing.Service,
	authenticator authenticating.Authenticator,
	db handler.Pinger,
	uploadCleanupService *scheduler.UploadCleanupService,
) http.Handler {
	cronServices := handler.CronJobServices{
		UploadCleanupService: uploadCleanupService,
	}

	rt := router.New(
		router.WithRoutes(handler.Healthcheck(db)...),
		router.WithRoutes(handler.Metrics()...),
		router.WithRoutes(handler.Imports(importService, config.Import)...),
		router.WithRoutes(handler.CronJobs(cronServices)...),
	)

	logrus.WithField("routes", rt.Routes()).Debug("Rotas registradas")

	middlewares := []alice.Constructor{
		middleware.LogPanicMiddleware(),
		middleware.LoggingMiddleware(),
		middleware.Cors(config.Server.AllowedOrigins),
		middleware.AuthMiddleware(authenticator),
	}

	return alice.New(middlewares...).Then(rt)
}

func (s Server) Run(ctx context.Context) error {
	go func() {
		logrus.WithFields(logrus.Fields{
			"address": s.httpServer.Addr,
		}).Info("Servidor iniciando")

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Error("Erro durante a execução do servidor")
		}
	}()

	// Canal para aguardar sinais de término
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	// Aguardar pelo sinal ou pelo cancelamento do contexto
	select {
	case <-done:
		logrus.Info("Sinal de interrupção recebido")
	case <-ctx.Done():
		logrus.Info("Contexto de aplicação cancelado")
	}

	// Define timeout para desligamento
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Log de início do desligamento
	logrus.WithFields(logrus.Fields{
		"timeout": "15s",
	}).Info("Iniciando desligamento gracioso do servidor")

	if err := s.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Erro durante o desligamento do servidor")
		return err
	}

	logrus.Info("Servidor desligado com sucesso")
	return nil
}

func (s Server) Shutdown(ctx context.Context) error {
	logrus.Info("Executando operações de limpeza antes do desligamento")

	err := s.httpServer.Shutdown(ctx)
	if err != nil {
		return err
	}

	logrus.Info("Servidor HTTP desligado com sucesso")
	return nil
}
