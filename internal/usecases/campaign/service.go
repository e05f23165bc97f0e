package campaign

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/traffic-insights-import/infrastructure/database/postgres"
	"github.com/vfg2006/traffic-insights-import/infrastructure/repository"
	"github.com/vfg2006/traffic-insights-import/internal/domain"
	"github.com/vfg2006/traffic-insights-import/internal/schema"
	"github.com/vfg2006/traffic-insights-import/internal/usecases/quality"
	"github.com/vfg2006/traffic-insights-import/pkg/utils"
)

// Result é a classificação de um registro de campanha gravado
type Result struct {
	Outcome    domain.Outcome
	Reason     string
	AccountID  int64
	Evaluation *domain.QualityEvaluation
}

type Service interface {
	ProcessRecord(ctx context.Context, scope domain.Scope, lookup domain.AccountLookup, record *domain.CampaignRecord) (*Result, error)
}

type service struct {
	conn      postgres.Conn
	accounts  repository.AccountRepository
	campaigns repository.CampaignRepository
	evaluator quality.Evaluator
	exec      *postgres.Executor
	quality   schema.QualityConfig

	// Último nome de exibição conhecido por conta, evita reler a conta a cada linha
	displayNames sync.Map
}

func NewService(
	conn postgres.Conn,
	accounts repository.AccountRepository,
	campaigns repository.CampaignRepository,
	evaluator quality.Evaluator,
	exec *postgres.Executor,
	qualityConfig schema.QualityConfig,
) Service {
	return &service{
		conn:      conn,
		accounts:  accounts,
		campaigns: campaigns,
		evaluator: evaluator,
		exec:      exec,
		quality:   qualityConfig,
	}
}

// ProcessRecord resolve a conta do registro e grava as cinco partes em uma única
// transação: cabeçalho, orçamento, estratégia de lances e otimização sobrescrevem
// o estado atual; o desempenho diário acumula uma linha por data.
func (s *service) ProcessRecord(ctx context.Context, scope domain.Scope, lookup domain.AccountLookup, record *domain.CampaignRecord) (*Result, error) {
	accountID, err := s.resolveAccount(ctx, scope, lookup, record.AccountName)
	if err != nil {
		return &Result{Outcome: domain.OutcomeError}, err
	}
	record.WithAccount(accountID)

	var previous *domain.CampaignPerformanceDaily
	err = s.exec.Execute(ctx, func(ctx context.Context) error {
		return s.conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
			prev, err := s.campaigns.FindPerformanceDaily(ctx, tx, record.Performance.CampaignKey, record.Performance.Date)
			if err != nil {
				return err
			}
			previous = prev

			if err := s.campaigns.UpsertCampaign(ctx, tx, &record.Entity); err != nil {
				return fmt.Errorf("campaigns: %w", err)
			}
			if err := s.campaigns.UpsertBudget(ctx, tx, &record.Budget); err != nil {
				return fmt.Errorf("campaign_budgets: %w", err)
			}
			if err := s.campaigns.UpsertBidStrategy(ctx, tx, &record.BidStrategy); err != nil {
				return fmt.Errorf("campaign_bid_strategies: %w", err)
			}
			if err := s.campaigns.UpsertOptimization(ctx, tx, &record.Optimization); err != nil {
				return fmt.Errorf("campaign_optimizations: %w", err)
			}
			if err := s.campaigns.UpsertPerformanceDaily(ctx, tx, &record.Performance); err != nil {
				return fmt.Errorf("campaign_performance_daily: %w", err)
			}
			return nil
		})
	})
	if err != nil {
		return &Result{Outcome: domain.OutcomeError, AccountID: accountID}, fmt.Errorf("erro ao gravar campanha %s: %w", record.Entity.CampaignKey, err)
	}

	if previous == nil {
		return &Result{Outcome: domain.OutcomeAdded, AccountID: accountID}, nil
	}

	result := &Result{Outcome: domain.OutcomeUpdated, AccountID: accountID}

	previousValues := previous.Values()
	current := record.Performance.Values()
	if !performanceChanged(current, previousValues) {
		result.Outcome = domain.OutcomeSkipped
		result.Reason = domain.SkipReasonUnchanged
	}

	current["campaign_id"] = record.Entity.CampaignID
	current["campaign_name"] = record.Entity.Name
	current["date"] = record.Performance.Date

	evaluation, err := s.evaluator.Evaluate(ctx, quality.Input{
		SourceTable: schema.TableCampaignPerformanceDaily,
		RecordID:    record.Performance.RecordID(),
		AccountID:   accountID,
		RecordDate:  record.Performance.Date,
		New:         current,
		Old:         previousValues,
		Config:      s.quality,
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"record_id": record.Performance.RecordID(),
			"error":     err.Error(),
		}).Warn("Falha ao registrar avaliação de qualidade da campanha")
	}
	result.Evaluation = evaluation

	return result, nil
}

// performanceChanged compara as métricas diárias por valor numérico; o estado atual
// da campanha é sobrescrito mesmo quando o desempenho não mudou
func performanceChanged(current, previous domain.Values) bool {
	for name := range previous {
		if !utils.NumericEqual(current[name], previous[name]) {
			return true
		}
	}
	return false
}

// resolveAccount usa o ID informado (preenchendo o nome de exibição da conta quando
// difere do arquivo) ou, no escopo "all", busca a conta pelo nome de exibição
func (s *service) resolveAccount(ctx context.Context, scope domain.Scope, lookup domain.AccountLookup, accountName string) (int64, error) {
	if scope.All {
		accountID, ok := lookup.Resolve(accountName)
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrEntityNotResolved, accountName)
		}
		return accountID, nil
	}

	s.backfillDisplayName(ctx, scope.AccountID, strings.TrimSpace(accountName))

	return scope.AccountID, nil
}

func (s *service) backfillDisplayName(ctx context.Context, accountID int64, accountName string) {
	if accountName == "" {
		return
	}
	if known, ok := s.displayNames.Load(accountID); ok && known == accountName {
		return
	}

	account, err := postgres.Query(ctx, s.exec, func(ctx context.Context) (*domain.Account, error) {
		return s.accounts.GetAccountByID(ctx, accountID)
	})
	if err != nil || account == nil {
		logrus.WithField("account_id", accountID).Warn("Não foi possível verificar o nome de exibição da conta")
		return
	}

	if account.DisplayName != nil && *account.DisplayName == accountName {
		s.displayNames.Store(accountID, accountName)
		return
	}

	err = s.exec.Execute(ctx, func(ctx context.Context) error {
		return s.accounts.UpdateDisplayName(ctx, accountID, accountName)
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"account_id": accountID,
			"error":      err.Error(),
		}).Warn("Falha ao atualizar o nome de exibição da conta")
		return
	}

	s.displayNames.Store(accountID, accountName)
	logrus.WithFields(logrus.Fields{
		"account_id":   accountID,
		"display_name": accountName,
	}).Info("Nome de exibição da conta atualizado a partir da importação")
}
