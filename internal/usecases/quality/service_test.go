package quality

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/traffic-insights-import/infrastructure/database/postgres"
	"github.com/vfg2006/traffic-insights-import/infrastructure/repository/mocks"
	"github.com/vfg2006/traffic-insights-import/internal/domain"
	"github.com/vfg2006/traffic-insights-import/internal/schema"
	"go.uber.org/mock/gomock"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestMaturity(t *testing.T) {
	recordDate := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	period := 7 * 24 * time.Hour

	tests := []struct {
		name string
		age  time.Duration
		want domain.MaturityState
	}{
		{name: "Recém importado", age: 0, want: domain.MaturityPreliminary},
		{name: "Um instante antes de P", age: period - time.Second, want: domain.MaturityPreliminary},
		{name: "Exatamente P", age: period, want: domain.MaturityMaturing},
		{name: "Entre P e 2P", age: period + 3*24*time.Hour, want: domain.MaturityMaturing},
		{name: "Um instante antes de 2P", age: 2*period - time.Second, want: domain.MaturityMaturing},
		{name: "Exatamente 2P", age: 2 * period, want: domain.MaturityStable},
		{name: "Muito depois de 2P", age: 30 * period, want: domain.MaturityStable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Maturity(recordDate, recordDate.Add(tt.age), period))
		})
	}
}

func TestScore_ChangeSignificance(t *testing.T) {
	config := schema.QualityConfig{MaturityDays: 3, VarianceThreshold: 10, RequiredFields: []string{"clicks"}}
	now := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name            string
		newValue        string
		wantChange      float64
		wantSignificant bool
		wantConsistency float64
	}{
		{name: "Variação acima do limite", newValue: "112", wantChange: 12, wantSignificant: true, wantConsistency: 50},
		{name: "Variação dentro do limite", newValue: "105", wantChange: 5, wantSignificant: false, wantConsistency: 100},
		{name: "Variação igual ao limite", newValue: "110", wantChange: 10, wantSignificant: false, wantConsistency: 100},
		{name: "Queda acima do limite", newValue: "85", wantChange: -15, wantSignificant: true, wantConsistency: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(Input{
				RecordDate: now.AddDate(0, 0, -1),
				New:        domain.Values{"clicks": dec(tt.newValue)},
				Old:        domain.Values{"clicks": dec("100")},
				Config:     config,
			}, now)

			assert.Equal(t, tt.wantChange, got.ChangePercentage)
			assert.Equal(t, tt.wantSignificant, got.IsSignificantChange)
			assert.Equal(t, tt.wantConsistency, got.ConsistencyScore)
			assert.Equal(t, 100.0, got.CompletenessScore)
			assert.Equal(t, (100+tt.wantConsistency)/2, got.ConfidenceScore)
			assert.Equal(t, domain.MaturityPreliminary, got.MaturityState)
		})
	}
}

func TestScore_WithoutPreviousState(t *testing.T) {
	got := Score(Input{
		New:    domain.Values{"clicks": dec("10"), "impressions": nil},
		Config: schema.QualityConfig{VarianceThreshold: 10, RequiredFields: []string{"clicks", "impressions"}},
	}, time.Now())

	assert.Equal(t, 50.0, got.CompletenessScore)
	assert.Equal(t, 100.0, got.ConsistencyScore)
	assert.Equal(t, 75.0, got.ConfidenceScore)
	assert.Zero(t, got.ChangePercentage)
	assert.False(t, got.IsSignificantChange)
}

func TestAverageChange(t *testing.T) {
	tests := []struct {
		name     string
		current  domain.Values
		previous domain.Values
		want     float64
	}{
		{
			name:     "Média de dois campos",
			current:  domain.Values{"clicks": dec("110"), "cost": dec("30")},
			previous: domain.Values{"clicks": dec("100"), "cost": dec("20")},
			want:     30,
		},
		{
			name:     "Representações mistas",
			current:  domain.Values{"clicks": "1,200"},
			previous: domain.Values{"clicks": int64(1000)},
			want:     20,
		},
		{
			name:     "Ignora anterior zero e campos não numéricos",
			current:  domain.Values{"clicks": dec("50"), "cost": dec("10"), "query": "óculos"},
			previous: domain.Values{"clicks": dec("0"), "cost": dec("8"), "query": "óculos"},
			want:     25,
		},
		{
			name:     "Sem campos comparáveis",
			current:  domain.Values{"ctr": nil},
			previous: domain.Values{"ctr": dec("4")},
			want:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AverageChange(tt.current, tt.previous))
		})
	}
}

func TestEvaluator_AlwaysPersists(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockQualityEvaluationRepository(ctrl)
	exec := postgres.NewExecutor(postgres.RetryPolicy{})

	evaluator := NewEvaluator(repo, exec)

	values := domain.Values{"clicks": dec("10")}
	repo.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, evaluation *domain.QualityEvaluation) error {
			assert.Equal(t, "ads_daily_metrics", evaluation.SourceTable)
			assert.False(t, evaluation.IsSignificantChange)
			return nil
		})

	got, err := evaluator.Evaluate(context.Background(), Input{
		SourceTable: "ads_daily_metrics",
		RecordID:    "1|2024-03-10|Marca",
		New:         values,
		Old:         values.Clone(),
		Config:      schema.QualityConfig{VarianceThreshold: 15},
	})

	require.NoError(t, err)
	assert.Zero(t, got.ChangePercentage)
}

func TestEvaluator_PersistFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockQualityEvaluationRepository(ctrl)
	exec := postgres.NewExecutor(postgres.RetryPolicy{})

	evaluator := NewEvaluator(repo, exec)

	repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errors.New("tabela ausente"))

	got, err := evaluator.Evaluate(context.Background(), Input{
		SourceTable: "search_console_daily",
		New:         domain.Values{},
		Config:      schema.QualityConfig{VarianceThreshold: 10},
	})

	assert.ErrorIs(t, err, ErrPersistEvaluation)
	require.NotNil(t, got)
}
