package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CampaignKey identifica o estado atual de uma campanha de uma conta
type CampaignKey struct {
	AccountID  int64
	CampaignID string
}

func (k CampaignKey) String() string {
	return fmt.Sprintf("%d|%s", k.AccountID, k.CampaignID)
}

// CampaignEntity é o cabeçalho da campanha; sobrescrito a cada ocorrência
type CampaignEntity struct {
	CampaignKey
	Name   string
	Status *string
	Type   *string
}

// CampaignBudget guarda o orçamento atual da campanha
type CampaignBudget struct {
	CampaignKey
	Amount decimal.NullDecimal
	Period *string
}

// CampaignBidStrategy guarda a estratégia de lances atual da campanha
type CampaignBidStrategy struct {
	CampaignKey
	StrategyType *string
	TargetCPA    decimal.NullDecimal
	TargetROAS   decimal.NullDecimal
}

// CampaignOptimization guarda os sinais de otimização atuais da campanha
type CampaignOptimization struct {
	CampaignKey
	OptimizationScore     decimal.NullDecimal
	SearchImpressionShare decimal.NullDecimal
	SearchLostISBudget    decimal.NullDecimal
	SearchLostISRank      decimal.NullDecimal
}

// CampaignPerformanceDaily é o fato diário da campanha; é a única das cinco
// tabelas que acumula histórico (uma linha por data)
type CampaignPerformanceDaily struct {
	CampaignKey
	Date            time.Time
	Impressions     decimal.NullDecimal
	Clicks          decimal.NullDecimal
	Cost            decimal.NullDecimal
	Conversions     decimal.NullDecimal
	ConversionValue decimal.NullDecimal
	CTR             decimal.NullDecimal
	AvgCPC          decimal.NullDecimal
}

// RecordID identifica o fato diário na auditoria de qualidade
func (p *CampaignPerformanceDaily) RecordID() string {
	return fmt.Sprintf("%s|%s", p.CampaignKey.String(), p.Date.Format(time.DateOnly))
}

// Values expõe as métricas como mapa para a avaliação de qualidade
func (p *CampaignPerformanceDaily) Values() Values {
	out := Values{}
	put := func(name string, d decimal.NullDecimal) {
		if d.Valid {
			out[name] = d.Decimal
		} else {
			out[name] = nil
		}
	}
	put("impressions", p.Impressions)
	put("clicks", p.Clicks)
	put("cost", p.Cost)
	put("conversions", p.Conversions)
	put("conversion_value", p.ConversionValue)
	put("ctr", p.CTR)
	put("avg_cpc", p.AvgCPC)
	return out
}

// CampaignRecord é a decomposição de uma linha de desempenho de campanha
// nas cinco escritas relacionadas
type CampaignRecord struct {
	AccountName  string
	Entity       CampaignEntity
	Budget       CampaignBudget
	BidStrategy  CampaignBidStrategy
	Optimization CampaignOptimization
	Performance  CampaignPerformanceDaily
}

// WithAccount aplica o ID da conta resolvida em todas as partes do registro
func (r *CampaignRecord) WithAccount(accountID int64) {
	r.Entity.AccountID = accountID
	r.Budget.AccountID = accountID
	r.BidStrategy.AccountID = accountID
	r.Optimization.AccountID = accountID
	r.Performance.AccountID = accountID
}

// NewCampaignRecord monta o registro a partir dos valores tipados da linha
func NewCampaignRecord(accountName string, values Values) (*CampaignRecord, error) {
	campaignID := values.Text("campaign_id")
	if campaignID == nil {
		return nil, fmt.Errorf("campaign_id ausente")
	}
	date, ok := values.Date("date")
	if !ok {
		return nil, fmt.Errorf("data ausente para a campanha %s", *campaignID)
	}

	key := CampaignKey{CampaignID: *campaignID}
	name := ""
	if n := values.Text("campaign_name"); n != nil {
		name = *n
	}

	return &CampaignRecord{
		AccountName: accountName,
		Entity: CampaignEntity{
			CampaignKey: key,
			Name:        name,
			Status:      values.Text("status"),
			Type:        values.Text("campaign_type"),
		},
		Budget: CampaignBudget{
			CampaignKey: key,
			Amount:      values.Decimal("budget_amount"),
			Period:      values.Text("budget_period"),
		},
		BidStrategy: CampaignBidStrategy{
			CampaignKey:  key,
			StrategyType: values.Text("bid_strategy_type"),
			TargetCPA:    values.Decimal("target_cpa"),
			TargetROAS:   values.Decimal("target_roas"),
		},
		Optimization: CampaignOptimization{
			CampaignKey:           key,
			OptimizationScore:     values.Decimal("optimization_score"),
			SearchImpressionShare: values.Decimal("search_impression_share"),
			SearchLostISBudget:    values.Decimal("search_lost_is_budget"),
			SearchLostISRank:      values.Decimal("search_lost_is_rank"),
		},
		Performance: CampaignPerformanceDaily{
			CampaignKey:     key,
			Date:            date,
			Impressions:     values.Decimal("impressions"),
			Clicks:          values.Decimal("clicks"),
			Cost:            values.Decimal("cost"),
			Conversions:     values.Decimal("conversions"),
			ConversionValue: values.Decimal("conversion_value"),
			CTR:             values.Decimal("ctr"),
			AvgCPC:          values.Decimal("avg_cpc"),
		},
	}, nil
}
