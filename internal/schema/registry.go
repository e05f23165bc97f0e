package schema

import (
	"sort"

	"github.com/vfg2006/traffic-insights-import/internal/domain"
)

const (
	SourceSearchConsoleDaily  = "search_console_daily"
	SourceAdsDaily            = "ads_daily"
	SourceCampaignPerformance = "campaign_performance"
)

// Tabelas escritas pela fonte de desempenho de campanhas
const (
	TableCampaigns                = "campaigns"
	TableCampaignBudgets          = "campaign_budgets"
	TableCampaignBidStrategies    = "campaign_bid_strategies"
	TableCampaignOptimizations    = "campaign_optimizations"
	TableCampaignPerformanceDaily = "campaign_performance_daily"
)

// Registry é a tabela estática de tipos de fonte suportados
type Registry struct {
	definitions map[string]*Definition
}

type Option func(*Registry)

// WithMaturityDays sobrescreve o período de maturação por tipo de fonte
func WithMaturityDays(days map[string]int) Option {
	return func(r *Registry) {
		for sourceType, value := range days {
			if def, ok := r.definitions[sourceType]; ok && value > 0 {
				def.Quality.MaturityDays = value
			}
		}
	}
}

// WithVarianceThresholds sobrescreve o limite de variação (%) por tipo de fonte
func WithVarianceThresholds(thresholds map[string]float64) Option {
	return func(r *Registry) {
		for sourceType, value := range thresholds {
			if def, ok := r.definitions[sourceType]; ok && value >= 0 {
				def.Quality.VarianceThreshold = value
			}
		}
	}
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{definitions: make(map[string]*Definition)}
	for _, def := range []*Definition{
		searchConsoleDaily(),
		adsDaily(),
		campaignPerformance(),
	} {
		r.definitions[def.SourceType] = def
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Get retorna a definição de um tipo de fonte registrado
func (r *Registry) Get(sourceType string) (*Definition, bool) {
	def, ok := r.definitions[sourceType]
	return def, ok
}

// List devolve as definições ordenadas pelo tipo de fonte
func (r *Registry) List() []*Definition {
	out := make([]*Definition, 0, len(r.definitions))
	for _, def := range r.definitions {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SourceType < out[j].SourceType
	})
	return out
}

// SourceTypes lista as chaves registradas
func (r *Registry) SourceTypes() []string {
	defs := r.List()
	out := make([]string, len(defs))
	for i, def := range defs {
		out[i] = def.SourceType
	}
	return out
}

var (
	dateHeaders        = []string{"date", "day", "data", "dia"}
	accountHeaders     = []string{"account", "account name", "customer name", "conta", "nome da conta", "cliente"}
	campaignHeaders    = []string{"campaign", "campaign name", "campanha", "nome da campanha"}
	impressionsHeaders = []string{"impressions", "impr.", "impressões", "impr"}
	clicksHeaders      = []string{"clicks", "cliques"}
	costHeaders        = []string{"cost", "spend", "amount spent", "custo", "valor gasto"}
	conversionsHeaders = []string{"conversions", "conversões", "conv."}
	convValueHeaders   = []string{"conversion value", "conv. value", "valor de conv.", "valor da conversão"}
	ctrHeaders         = []string{"ctr", "taxa de cliques"}
	avgCPCHeaders      = []string{"avg. cpc", "average cpc", "cpc médio", "cpc méd."}
)

func searchConsoleDaily() *Definition {
	return &Definition{
		SourceType: SourceSearchConsoleDaily,
		Dispatch:   DispatchReconcile,
		Fact: &domain.FactTable{
			Name:       "search_console_daily",
			Dimensions: []string{"query", "page"},
			Measures:   []string{"clicks", "impressions", "ctr", "position"},
		},
		Tables: []string{"search_console_daily"},
		Fields: []Field{
			{Name: "date", Kind: KindDate, Required: true, Headers: dateHeaders},
			{Name: "query", Kind: KindText, Required: true, Dimension: true, Headers: []string{"query", "top queries", "search query", "consulta", "consultas principais"}},
			{Name: "page", Kind: KindText, Headers: []string{"page", "landing page", "top pages", "url", "página", "páginas principais"}},
			{Name: "clicks", Kind: KindInteger, Required: true, Headers: clicksHeaders},
			{Name: "impressions", Kind: KindInteger, Required: true, Headers: impressionsHeaders},
			{Name: "ctr", Kind: KindPercent, Required: true, Derived: true, Headers: ctrHeaders},
			{Name: "position", Kind: KindDecimal, Required: true, Headers: []string{"position", "average position", "posição", "posição média"}},
			{Name: FieldAccountName, Kind: KindText, Headers: append([]string{"site", "property", "propriedade"}, accountHeaders...)},
		},
		Quality: QualityConfig{
			MaturityDays:      3,
			VarianceThreshold: 10,
			RequiredFields:    []string{"date", "query", "clicks", "impressions", "ctr", "position"},
			ValueRanges: map[string]Range{
				"ctr":      {Min: 0, Max: 100},
				"position": {Min: 1, Max: 1000},
			},
		},
	}
}

func adsDaily() *Definition {
	return &Definition{
		SourceType: SourceAdsDaily,
		Dispatch:   DispatchReconcile,
		Fact: &domain.FactTable{
			Name:       "ads_daily_metrics",
			Dimensions: []string{"campaign_name"},
			Measures:   []string{"impressions", "clicks", "cost", "conversions", "conversion_value", "ctr", "avg_cpc"},
		},
		Tables: []string{"ads_daily_metrics"},
		Fields: []Field{
			{Name: "date", Kind: KindDate, Required: true, Headers: dateHeaders},
			{Name: "campaign_name", Kind: KindText, Required: true, Dimension: true, Headers: campaignHeaders},
			{Name: "impressions", Kind: KindInteger, Required: true, Headers: impressionsHeaders},
			{Name: "clicks", Kind: KindInteger, Required: true, Headers: clicksHeaders},
			{Name: "cost", Kind: KindDecimal, Required: true, Headers: costHeaders},
			{Name: "conversions", Kind: KindDecimal, Required: true, Headers: conversionsHeaders},
			{Name: "conversion_value", Kind: KindDecimal, Headers: convValueHeaders},
			{Name: "ctr", Kind: KindPercent, Derived: true, Headers: ctrHeaders},
			{Name: "avg_cpc", Kind: KindDecimal, Derived: true, Headers: avgCPCHeaders},
			{Name: FieldAccountName, Kind: KindText, Headers: accountHeaders},
		},
		Quality: QualityConfig{
			MaturityDays:      7,
			VarianceThreshold: 15,
			RequiredFields:    []string{"date", "campaign_name", "impressions", "clicks", "cost", "conversions"},
			ValueRanges: map[string]Range{
				"ctr": {Min: 0, Max: 100},
			},
		},
	}
}

func campaignPerformance() *Definition {
	return &Definition{
		SourceType: SourceCampaignPerformance,
		Dispatch:   DispatchCampaign,
		Tables: []string{
			TableCampaigns,
			TableCampaignBudgets,
			TableCampaignBidStrategies,
			TableCampaignOptimizations,
			TableCampaignPerformanceDaily,
		},
		Fields: []Field{
			{Name: "campaign_id", Kind: KindText, Required: true, Dimension: true, Headers: []string{"campaign id", "id da campanha"}},
			{Name: "campaign_name", Kind: KindText, Required: true, Headers: campaignHeaders},
			{Name: "date", Kind: KindDate, Required: true, Headers: dateHeaders},
			{Name: "status", Kind: KindText, Headers: []string{"campaign status", "status", "status da campanha"}},
			{Name: "campaign_type", Kind: KindText, Headers: []string{"campaign type", "advertising channel type", "tipo de campanha"}},
			{Name: "budget_amount", Kind: KindDecimal, Headers: []string{"budget", "budget amount", "daily budget", "orçamento"}},
			{Name: "budget_period", Kind: KindText, Headers: []string{"budget period", "budget type", "período do orçamento"}},
			{Name: "bid_strategy_type", Kind: KindText, Headers: []string{"bid strategy type", "bid strategy", "tipo de estratégia de lances", "estratégia de lances"}},
			{Name: "target_cpa", Kind: KindDecimal, Headers: []string{"target cpa", "cpa desejado"}},
			{Name: "target_roas", Kind: KindPercent, Headers: []string{"target roas", "roas desejado"}},
			{Name: "optimization_score", Kind: KindPercent, Headers: []string{"optimization score", "índice de otimização"}},
			{Name: "search_impression_share", Kind: KindPercent, Headers: []string{"search impr. share", "search impression share", "parcela de impressões de pesquisa", "parc. impr. de pesquisa"}},
			{Name: "search_lost_is_budget", Kind: KindPercent, Headers: []string{"search lost is (budget)", "search lost impression share (budget)", "parc. impr. perdidas na rede de pesquisa (orçamento)"}},
			{Name: "search_lost_is_rank", Kind: KindPercent, Headers: []string{"search lost is (rank)", "search lost impression share (rank)", "parc. impr. perdidas na rede de pesquisa (classificação)"}},
			{Name: "impressions", Kind: KindInteger, Required: true, Headers: impressionsHeaders},
			{Name: "clicks", Kind: KindInteger, Required: true, Headers: clicksHeaders},
			{Name: "cost", Kind: KindDecimal, Required: true, Headers: costHeaders},
			{Name: "conversions", Kind: KindDecimal, Headers: conversionsHeaders},
			{Name: "conversion_value", Kind: KindDecimal, Headers: convValueHeaders},
			{Name: "ctr", Kind: KindPercent, Derived: true, Headers: ctrHeaders},
			{Name: "avg_cpc", Kind: KindDecimal, Derived: true, Headers: avgCPCHeaders},
			{Name: FieldAccountName, Kind: KindText, Headers: accountHeaders},
		},
		Quality: QualityConfig{
			MaturityDays:      7,
			VarianceThreshold: 15,
			RequiredFields:    []string{"campaign_id", "campaign_name", "date", "impressions", "clicks", "cost"},
			ValueRanges: map[string]Range{
				"optimization_score":      {Min: 0, Max: 100},
				"search_impression_share": {Min: 0, Max: 100},
			},
		},
	}
}
