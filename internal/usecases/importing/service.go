package importing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/vfg2006/traffic-insights-import/infrastructure/database/postgres"
	"github.com/vfg2006/traffic-insights-import/infrastructure/repository"
	"github.com/vfg2006/traffic-insights-import/infrastructure/tabular"
	"github.com/vfg2006/traffic-insights-import/internal/config"
	"github.com/vfg2006/traffic-insights-import/internal/domain"
	"github.com/vfg2006/traffic-insights-import/internal/schema"
	"github.com/vfg2006/traffic-insights-import/internal/usecases/campaign"
	"github.com/vfg2006/traffic-insights-import/internal/usecases/reconciling"
	"github.com/vfg2006/traffic-insights-import/pkg/log"
	"github.com/vfg2006/traffic-insights-import/pkg/utils"
)

const defaultSummaryEvery = 100

// Janela de novas tentativas do resumo da tabela
const rollupTimeout = 10 * time.Second

// Request é uma chamada de importação
type Request struct {
	SourceType string
	Scope      string
	FilePath   string
	// RemoveFile apaga o arquivo ao final (uploads temporários)
	RemoveFile bool
}

type Service interface {
	Import(ctx context.Context, req Request, reporter ProgressReporter) (*domain.RunSummary, error)
	Summary(ctx context.Context, sourceType, scope string) (*domain.ImportRollup, error)
	Schemas() []*schema.Definition
}

type service struct {
	registry     *schema.Registry
	accounts     repository.AccountRepository
	summaries    repository.SummaryRepository
	reconciler   reconciling.Reconciler
	campaigns    campaign.Service
	exec         *postgres.Executor
	summaryEvery int
	now          func() time.Time
}

func NewService(
	registry *schema.Registry,
	accounts repository.AccountRepository,
	summaries repository.SummaryRepository,
	reconciler reconciling.Reconciler,
	campaigns campaign.Service,
	exec *postgres.Executor,
	cfg config.Import,
) Service {
	summaryEvery := cfg.SummaryEvery
	if summaryEvery <= 0 {
		summaryEvery = defaultSummaryEvery
	}

	return &service{
		registry:     registry,
		accounts:     accounts,
		summaries:    summaries,
		reconciler:   reconciler,
		campaigns:    campaigns,
		exec:         exec,
		summaryEvery: summaryEvery,
		now:          time.Now,
	}
}

func (s *service) Schemas() []*schema.Definition {
	return s.registry.List()
}

// Import processa o arquivo linha a linha, na ordem, e devolve o resumo final.
// Erros de validação (tipo, escopo, arquivo, colunas) interrompem a chamada antes
// de qualquer evento; erros de linha são apenas contabilizados.
func (s *service) Import(ctx context.Context, req Request, reporter ProgressReporter) (*domain.RunSummary, error) {
	if reporter == nil {
		reporter = DiscardReporter{}
	}
	if req.RemoveFile && req.FilePath != "" {
		defer removeFile(ctx, req.FilePath)
	}

	def, scope, err := s.validateRequest(req)
	if err != nil {
		return nil, err
	}

	reader, err := tabular.Open(req.FilePath)
	if err != nil {
		return nil, newValidationError(CodeUnreadableFile, []error{ErrUnreadableFile, err}, []string{err.Error()})
	}
	defer reader.Close()

	mapping, missing := def.Validate(reader.Header())
	if _, ok := mapping[schema.FieldAccountName]; scope.All && !ok {
		missing = append(missing, schema.FieldAccountName)
	}
	if len(missing) > 0 {
		return nil, newValidationError(CodeMissingColumns, []error{ErrMissingColumns}, missing)
	}

	total, err := tabular.CountRows(req.FilePath)
	if err != nil {
		return nil, newValidationError(CodeUnreadableFile, []error{ErrUnreadableFile, err}, []string{err.Error()})
	}

	run := &domain.ImportRun{
		ID:         utils.GenerateID(),
		SourceType: def.SourceType,
		Scope:      scope,
		Total:      total,
		StartedAt:  s.now(),
	}

	logger := log.ForContext(ctx).WithFields(log.Fields{
		"import_id":   run.ID,
		"source_type": run.SourceType,
		"scope":       run.Scope.String(),
	})

	if scope.All {
		accounts, err := postgres.Query(ctx, s.exec, func(ctx context.Context) ([]*domain.Account, error) {
			return s.accounts.ListAccounts(ctx)
		})
		if err != nil {
			getMetrics().runsTotal.WithLabelValues(run.SourceType, domain.ProgressStatusFailed).Inc()
			return nil, fmt.Errorf("erro ao carregar contas: %w", err)
		}
		run.Lookup = domain.NewAccountLookup(accounts)
	}

	logger.WithField("total", total).Info("Iniciando importação")
	reporter.Progress(domain.ProgressEvent{
		Total:  run.Total,
		Status: domain.ProgressStatusStarted,
	})

	if err := s.processRows(ctx, run, def, mapping, reader, reporter, logger); err != nil {
		logger.WithError(err).Error("Importação interrompida")
		getMetrics().runsTotal.WithLabelValues(run.SourceType, domain.ProgressStatusFailed).Inc()
		reporter.Progress(domain.ProgressEvent{
			Processed: run.Counters.Processed,
			Total:     run.Total,
			Status:    domain.ProgressStatusFailed,
			Message:   err.Error(),
			Completed: true,
			Result:    run.Summary(s.now()),
		})
		return nil, err
	}

	summary := run.Summary(s.now())

	// Após a importação o resumo é complementar: uma única nova tentativa para não atrasar o evento final
	rollup, err := s.rollup(ctx, def, scope, postgres.WithTimeout(rollupTimeout), postgres.WithRetries(1))
	if err != nil {
		logger.WithError(err).Warn("Não foi possível calcular o resumo da tabela após a importação")
	}
	summary.Rollup = rollup

	logger.WithFields(log.Fields{
		"processed":   summary.TotalProcessed,
		"added":       summary.Added,
		"updated":     summary.Updated,
		"skipped":     summary.Skipped,
		"errors":      summary.Errors,
		"duration_ms": summary.Timestamp.Sub(run.StartedAt).Milliseconds(),
	}).Info("Importação concluída")

	getMetrics().runsTotal.WithLabelValues(run.SourceType, domain.ProgressStatusCompleted).Inc()
	reporter.Progress(domain.ProgressEvent{
		Processed: run.Counters.Processed,
		Total:     run.Total,
		Status:    domain.ProgressStatusCompleted,
		Message:   countersMessage(run.Counters),
		Completed: true,
		Result:    summary,
	})

	return summary, nil
}

// validateRequest reúne todas as violações da requisição antes de devolver o erro
func (s *service) validateRequest(req Request) (*schema.Definition, domain.Scope, error) {
	var (
		errs       []error
		violations []string
	)

	def, ok := s.registry.Get(req.SourceType)
	if !ok {
		errs = append(errs, ErrUnknownSourceType)
		violations = append(violations, fmt.Sprintf("dataType %q não registrado (disponíveis: %s)", req.SourceType, strings.Join(s.registry.SourceTypes(), ", ")))
	}

	scope, err := domain.ParseScope(req.Scope)
	if err != nil {
		errs = append(errs, ErrInvalidScope)
		violations = append(violations, err.Error())
	}

	if req.FilePath == "" {
		errs = append(errs, ErrMissingFile)
		violations = append(violations, ErrMissingFile.Error())
	} else if _, err := os.Stat(req.FilePath); err != nil {
		errs = append(errs, ErrMissingFile)
		violations = append(violations, fmt.Sprintf("%s: %s", ErrMissingFile.Error(), err.Error()))
	}

	if len(errs) > 0 {
		return nil, domain.Scope{}, newValidationError(CodeInvalidRequest, errs, violations)
	}

	return def, scope, nil
}

func (s *service) processRows(
	ctx context.Context,
	run *domain.ImportRun,
	def *schema.Definition,
	mapping schema.Mapping,
	reader tabular.Reader,
	reporter ProgressReporter,
	logger log.Logger,
) error {
	line := 0
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("importação cancelada após %d linhas: %w", run.Counters.Processed, err)
		}

		row, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		line++

		var outcome domain.Outcome
		switch {
		case errors.Is(err, tabular.ErrMalformedRow):
			logger.WithFields(log.Fields{"line": line, "error": err.Error()}).Error("Linha malformada ignorada")
			outcome = domain.OutcomeError
		case err != nil:
			return fmt.Errorf("erro ao ler a linha %d: %w", line, err)
		default:
			var evaluation *domain.QualityEvaluation
			outcome, evaluation = s.processRow(ctx, run, def, mapping, line, row, logger)
			if evaluation != nil {
				reporter.Quality(domain.NewQualityEvent(evaluation))
			}
		}

		run.Record(outcome)
		getMetrics().rowsTotal.WithLabelValues(run.SourceType, string(outcome)).Inc()

		event := domain.ProgressEvent{
			Processed: run.Counters.Processed,
			Total:     run.Total,
			Status:    domain.ProgressStatusProcessing,
		}
		if run.Counters.Processed%s.summaryEvery == 0 {
			event.Message = countersMessage(run.Counters)
			logger.WithField("processed", run.Counters.Processed).Debug(event.Message)
		}
		reporter.Progress(event)
	}
}

// processRow classifica uma linha; falhas ficam restritas à própria linha
func (s *service) processRow(
	ctx context.Context,
	run *domain.ImportRun,
	def *schema.Definition,
	mapping schema.Mapping,
	line int,
	row []string,
	logger log.Logger,
) (domain.Outcome, *domain.QualityEvaluation) {
	record := def.Map(mapping, line, row)
	rowLogger := logger.WithFields(log.Fields{
		"line":   line,
		"fields": record.Fields,
	})

	values, err := def.Convert(record)
	if err != nil {
		rowLogger.WithError(err).Error("Erro ao converter a linha")
		return domain.OutcomeError, nil
	}

	accountID := run.Scope.AccountID
	if run.Scope.All {
		id, ok := run.Lookup.Resolve(record.AccountName)
		if !ok {
			rowLogger.WithField("reason", domain.SkipReasonUnknownAccount).Warnf("Conta não encontrada para o nome %q", record.AccountName)
			return domain.OutcomeSkipped, nil
		}
		accountID = id
	}

	switch def.Dispatch {
	case schema.DispatchCampaign:
		if missing := def.MissingDimensions(values); len(missing) > 0 {
			rowLogger.WithField("reason", domain.SkipReasonMissingDimension).Debugf("Linha sem dimensões obrigatórias: %s", strings.Join(missing, ", "))
			return domain.OutcomeSkipped, nil
		}

		campaignRecord, err := domain.NewCampaignRecord(record.AccountName, values)
		if err != nil {
			rowLogger.WithField("reason", domain.SkipReasonMissingDimension).Debug(err.Error())
			return domain.OutcomeSkipped, nil
		}

		result, err := s.campaigns.ProcessRecord(ctx, run.Scope, run.Lookup, campaignRecord)
		if err != nil {
			rowLogger.WithError(err).Error("Erro ao gravar linha de campanha")
			return domain.OutcomeError, nil
		}
		if result.Reason != "" {
			rowLogger.WithField("reason", result.Reason).Debug("Desempenho da campanha sem alteração")
		}
		return result.Outcome, result.Evaluation

	default:
		result, err := s.reconciler.Reconcile(ctx, def, accountID, values)
		if err != nil {
			rowLogger.WithError(err).Error("Erro ao reconciliar a linha")
			return domain.OutcomeError, nil
		}
		if result.Reason != "" {
			rowLogger.WithField("reason", result.Reason).Debug("Linha ignorada")
		}
		return result.Outcome, result.Evaluation
	}
}

// Summary devolve o resumo atual da tabela principal do tipo de fonte
func (s *service) Summary(ctx context.Context, sourceType, scopeToken string) (*domain.ImportRollup, error) {
	var (
		errs       []error
		violations []string
	)

	def, ok := s.registry.Get(sourceType)
	if !ok {
		errs = append(errs, ErrUnknownSourceType)
		violations = append(violations, fmt.Sprintf("dataType %q não registrado", sourceType))
	}

	scope, err := domain.ParseScope(scopeToken)
	if err != nil {
		errs = append(errs, ErrInvalidScope)
		violations = append(violations, err.Error())
	}

	if len(errs) > 0 {
		return nil, newValidationError(CodeInvalidRequest, errs, violations)
	}

	return s.rollup(ctx, def, scope, postgres.WithTimeout(rollupTimeout))
}

func (s *service) rollup(ctx context.Context, def *schema.Definition, scope domain.Scope, opts ...postgres.ExecOption) (*domain.ImportRollup, error) {
	table := rollupTable(def)

	var accountID *int64
	if !scope.All {
		id := scope.AccountID
		accountID = &id
	}

	rollup, err := postgres.Query(ctx, s.exec, func(ctx context.Context) (*domain.ImportRollup, error) {
		return s.summaries.GetRollup(ctx, table, accountID)
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("erro ao calcular o resumo de %s: %w", table, err)
	}

	rollup.SourceType = def.SourceType
	rollup.Table = table
	return rollup, nil
}

// rollupTable é a tabela que representa o histórico do tipo de fonte
func rollupTable(def *schema.Definition) string {
	if def.Fact != nil {
		return def.Fact.Name
	}
	return schema.TableCampaignPerformanceDaily
}

func countersMessage(c domain.RunCounters) string {
	return fmt.Sprintf("%d processadas: %d adicionadas, %d atualizadas, %d ignoradas, %d com erro",
		c.Processed, c.Added, c.Updated, c.Skipped, c.Errors)
}

func removeFile(ctx context.Context, path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.ForContext(ctx).WithFields(log.Fields{
			"path":  path,
			"error": err.Error(),
		}).Warn("Não foi possível remover o arquivo temporário")
	}
}
