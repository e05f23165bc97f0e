package main

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/traffic-insights-import/internal/api"
	"github.com/vfg2006/traffic-insights-import/internal/app"
	"github.com/vfg2006/traffic-insights-import/internal/config"
	"github.com/vfg2006/traffic-insights-import/internal/scheduler"
	"github.com/vfg2006/traffic-insights-import/internal/usecases/authenticating"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	app.ConfigureLogger(cfg.App.LogLevel)
	logrus.Infof("Nível de log configurado para: %s", logrus.GetLevel())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgConn, err := app.Connect(ctx, cfg.Database)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao PostgreSQL")
	}
	defer pgConn.Close()

	registry := app.NewRegistry(cfg)

	importService, err := app.NewImportService(cfg, pgConn, registry)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao montar o serviço de importação")
	}

	authenticator := authenticating.NewService(cfg.SecretKey)

	uploadCleanupService := scheduler.NewUploadCleanupService(cfg)
	if err := uploadCleanupService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador de limpeza de uploads")
	} else {
		logrus.Info("Agendador de limpeza de uploads iniciado com sucesso")
	}

	server, err := api.New(
		cfg,
		importService,
		authenticator,
		pgConn,
		uploadCleanupService,
	)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}
