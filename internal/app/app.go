// Package app monta as dependências compartilhadas pela API e pela CLI.
package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/traffic-insights-import/infrastructure/database/postgres"
	"github.com/vfg2006/traffic-insights-import/infrastructure/repository"
	"github.com/vfg2006/traffic-insights-import/internal/config"
	"github.com/vfg2006/traffic-insights-import/internal/schema"
	"github.com/vfg2006/traffic-insights-import/internal/usecases/campaign"
	"github.com/vfg2006/traffic-insights-import/internal/usecases/importing"
	"github.com/vfg2006/traffic-insights-import/internal/usecases/quality"
	"github.com/vfg2006/traffic-insights-import/internal/usecases/reconciling"
	"github.com/vfg2006/traffic-insights-import/pkg/log"
)

// ConfigureLogger define formato e nível dos logs. Fora do ambiente de
// desenvolvimento os logs saem em JSON.
func ConfigureLogger(level string) {
	if log.IsDevelopment() {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	} else {
		logrus.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	}

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.Warnf("Nível de log inválido: %s, usando 'info'", level)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
}

// NewRegistry aplica as sobrescritas de qualidade da configuração
func NewRegistry(cfg *config.Config) *schema.Registry {
	return schema.NewRegistry(
		schema.WithMaturityDays(cfg.Quality.MaturityDaysBySource()),
		schema.WithVarianceThresholds(cfg.Quality.VarianceThresholdBySource()),
	)
}

// Connect abre o pool do PostgreSQL
func Connect(ctx context.Context, cfg config.Database) (*postgres.Connection, error) {
	conn, err := postgres.NewConnection(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("erro ao conectar ao PostgreSQL: %w", err)
	}

	logrus.Info("Conexão com PostgreSQL estabelecida com sucesso")
	return conn, nil
}

// NewImportService liga repositórios, executor e serviços do pipeline de importação
func NewImportService(cfg *config.Config, conn *postgres.Connection, registry *schema.Registry) (importing.Service, error) {
	campaignDef, ok := registry.Get(schema.SourceCampaignPerformance)
	if !ok {
		return nil, fmt.Errorf("tipo de fonte %s não registrado", schema.SourceCampaignPerformance)
	}

	if err := os.MkdirAll(cfg.Import.UploadDir, 0o700); err != nil {
		return nil, fmt.Errorf("erro ao criar diretório de uploads: %w", err)
	}

	exec := postgres.NewExecutor(postgres.NewRetryPolicy(cfg.Retry))

	accountRepo := repository.NewAccountRepository(conn)
	factRepo := repository.NewFactRepository(conn)
	campaignRepo := repository.NewCampaignRepository()
	qualityRepo := repository.NewQualityEvaluationRepository(conn)
	summaryRepo := repository.NewSummaryRepository(conn)

	evaluator := quality.NewEvaluator(qualityRepo, exec)
	reconciler := reconciling.NewReconciler(factRepo, evaluator, exec)
	campaigns := campaign.NewService(conn, accountRepo, campaignRepo, evaluator, exec, campaignDef.Quality)

	return importing.NewService(registry, accountRepo, summaryRepo, reconciler, campaigns, exec, cfg.Import), nil
}
