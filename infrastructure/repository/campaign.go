package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"
	"github.com/vfg2006/traffic-insights-import/infrastructure/database/postgres"
	"github.com/vfg2006/traffic-insights-import/internal/domain"
)

// CampaignRepository grava as cinco partes de um registro de campanha. Todos os
// métodos recebem o Queryer da transação aberta pelo chamador.
type CampaignRepository interface {
	FindPerformanceDaily(ctx context.Context, q postgres.Queryer, key domain.CampaignKey, date time.Time) (*domain.CampaignPerformanceDaily, error)
	UpsertCampaign(ctx context.Context, q postgres.Queryer, campaign *domain.CampaignEntity) error
	UpsertBudget(ctx context.Context, q postgres.Queryer, budget *domain.CampaignBudget) error
	UpsertBidStrategy(ctx context.Context, q postgres.Queryer, strategy *domain.CampaignBidStrategy) error
	UpsertOptimization(ctx context.Context, q postgres.Queryer, optimization *domain.CampaignOptimization) error
	UpsertPerformanceDaily(ctx context.Context, q postgres.Queryer, performance *domain.CampaignPerformanceDaily) error
}

type campaignRepository struct{}

func NewCampaignRepository() CampaignRepository {
	return &campaignRepository{}
}

func nullable(d decimal.NullDecimal) any {
	if d.Valid {
		return d.Decimal
	}
	return nil
}

func exec(ctx context.Context, q postgres.Queryer, builder squirrel.InsertBuilder) error {
	query, args, err := builder.PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return wrapExecError(err)
	}

	return nil
}

// FindPerformanceDaily bloqueia a linha diária (se existir) até o fim da transação
func (r *campaignRepository) FindPerformanceDaily(ctx context.Context, q postgres.Queryer, key domain.CampaignKey, date time.Time) (*domain.CampaignPerformanceDaily, error) {
	query, args, err := squirrel.
		Select("impressions", "clicks", "cost", "conversions", "conversion_value", "ctr", "avg_cpc").
		From("campaign_performance_daily").
		Where(squirrel.Eq{
			"account_id":  key.AccountID,
			"campaign_id": key.CampaignID,
			"date":        date.Format(time.DateOnly),
		}).
		Suffix("FOR UPDATE").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	perf := &domain.CampaignPerformanceDaily{CampaignKey: key, Date: date}
	err = q.QueryRowContext(ctx, query, args...).Scan(
		&perf.Impressions,
		&perf.Clicks,
		&perf.Cost,
		&perf.Conversions,
		&perf.ConversionValue,
		&perf.CTR,
		&perf.AvgCPC,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapExecError(err)
	}

	return perf, nil
}

func (r *campaignRepository) UpsertCampaign(ctx context.Context, q postgres.Queryer, campaign *domain.CampaignEntity) error {
	return exec(ctx, q, squirrel.
		Insert("campaigns").
		Columns("account_id", "campaign_id", "name", "status", "campaign_type", "updated_at").
		Values(campaign.AccountID, campaign.CampaignID, campaign.Name, campaign.Status, campaign.Type, squirrel.Expr("NOW()")).
		Suffix(`
			ON CONFLICT (account_id, campaign_id) DO UPDATE SET
				name = EXCLUDED.name,
				status = EXCLUDED.status,
				campaign_type = EXCLUDED.campaign_type,
				updated_at = NOW()
		`))
}

func (r *campaignRepository) UpsertBudget(ctx context.Context, q postgres.Queryer, budget *domain.CampaignBudget) error {
	return exec(ctx, q, squirrel.
		Insert("campaign_budgets").
		Columns("account_id", "campaign_id", "amount", "period", "updated_at").
		Values(budget.AccountID, budget.CampaignID, nullable(budget.Amount), budget.Period, squirrel.Expr("NOW()")).
		Suffix(`
			ON CONFLICT (account_id, campaign_id) DO UPDATE SET
				amount = EXCLUDED.amount,
				period = EXCLUDED.period,
				updated_at = NOW()
		`))
}

func (r *campaignRepository) UpsertBidStrategy(ctx context.Context, q postgres.Queryer, strategy *domain.CampaignBidStrategy) error {
	return exec(ctx, q, squirrel.
		Insert("campaign_bid_strategies").
		Columns("account_id", "campaign_id", "strategy_type", "target_cpa", "target_roas", "updated_at").
		Values(strategy.AccountID, strategy.CampaignID, strategy.StrategyType, nullable(strategy.TargetCPA), nullable(strategy.TargetROAS), squirrel.Expr("NOW()")).
		Suffix(`
			ON CONFLICT (account_id, campaign_id) DO UPDATE SET
				strategy_type = EXCLUDED.strategy_type,
				target_cpa = EXCLUDED.target_cpa,
				target_roas = EXCLUDED.target_roas,
				updated_at = NOW()
		`))
}

func (r *campaignRepository) UpsertOptimization(ctx context.Context, q postgres.Queryer, optimization *domain.CampaignOptimization) error {
	return exec(ctx, q, squirrel.
		Insert("campaign_optimizations").
		Columns("account_id", "campaign_id", "optimization_score", "search_impression_share", "search_lost_is_budget", "search_lost_is_rank", "updated_at").
		Values(
			optimization.AccountID,
			optimization.CampaignID,
			nullable(optimization.OptimizationScore),
			nullable(optimization.SearchImpressionShare),
			nullable(optimization.SearchLostISBudget),
			nullable(optimization.SearchLostISRank),
			squirrel.Expr("NOW()"),
		).
		Suffix(`
			ON CONFLICT (account_id, campaign_id) DO UPDATE SET
				optimization_score = EXCLUDED.optimization_score,
				search_impression_share = EXCLUDED.search_impression_share,
				search_lost_is_budget = EXCLUDED.search_lost_is_budget,
				search_lost_is_rank = EXCLUDED.search_lost_is_rank,
				updated_at = NOW()
		`))
}

// UpsertPerformanceDaily é a única escrita que acumula histórico: uma linha por data
func (r *campaignRepository) UpsertPerformanceDaily(ctx context.Context, q postgres.Queryer, perf *domain.CampaignPerformanceDaily) error {
	return exec(ctx, q, squirrel.
		Insert("campaign_performance_daily").
		Columns("account_id", "campaign_id", "date", "impressions", "clicks", "cost", "conversions", "conversion_value", "ctr", "avg_cpc", "imported_at").
		Values(
			perf.AccountID,
			perf.CampaignID,
			perf.Date.Format(time.DateOnly),
			nullable(perf.Impressions),
			nullable(perf.Clicks),
			nullable(perf.Cost),
			nullable(perf.Conversions),
			nullable(perf.ConversionValue),
			nullable(perf.CTR),
			nullable(perf.AvgCPC),
			squirrel.Expr("NOW()"),
		).
		Suffix(`
			ON CONFLICT (account_id, campaign_id, date) DO UPDATE SET
				impressions = EXCLUDED.impressions,
				clicks = EXCLUDED.clicks,
				cost = EXCLUDED.cost,
				conversions = EXCLUDED.conversions,
				conversion_value = EXCLUDED.conversion_value,
				ctr = EXCLUDED.ctr,
				avg_cpc = EXCLUDED.avg_cpc,
				imported_at = NOW()
		`))
}
