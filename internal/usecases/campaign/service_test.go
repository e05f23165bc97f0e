package campaign

import (
	"context"
	"syscall"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/traffic-insights-import/infrastructure/database/postgres"
	"github.com/vfg2006/traffic-insights-import/infrastructure/repository"
	"github.com/vfg2006/traffic-insights-import/infrastructure/repository/mocks"
	"github.com/vfg2006/traffic-insights-import/internal/domain"
	"github.com/vfg2006/traffic-insights-import/internal/schema"
	"github.com/vfg2006/traffic-insights-import/internal/usecases/quality"
	"go.uber.org/mock/gomock"
)

var writeStatements = []string{
	"INSERT INTO campaigns ",
	"INSERT INTO campaign_budgets ",
	"INSERT INTO campaign_bid_strategies ",
	"INSERT INTO campaign_optimizations ",
	"INSERT INTO campaign_performance_daily ",
}

var performanceColumns = []string{"impressions", "clicks", "cost", "conversions", "conversion_value", "ctr", "avg_cpc"}

type stubEvaluator struct {
	inputs []quality.Input
}

func (s *stubEvaluator) Evaluate(ctx context.Context, input quality.Input) (*domain.QualityEvaluation, error) {
	s.inputs = append(s.inputs, input)
	return quality.Score(input, input.RecordDate), nil
}

type fixture struct {
	mock      sqlmock.Sqlmock
	accounts  *mocks.MockAccountRepository
	evaluator *stubEvaluator
	service   Service
}

func newFixture(t *testing.T, policy postgres.RetryPolicy) *fixture {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctrl := gomock.NewController(t)
	accounts := mocks.NewMockAccountRepository(ctrl)
	evaluator := &stubEvaluator{}
	def, _ := schema.NewRegistry().Get(schema.SourceCampaignPerformance)

	svc := NewService(
		postgres.NewConnectionFromDB(db),
		accounts,
		repository.NewCampaignRepository(),
		evaluator,
		postgres.NewExecutor(policy),
		def.Quality,
	)

	return &fixture{mock: mock, accounts: accounts, evaluator: evaluator, service: svc}
}

func newRecord(t *testing.T, accountName string) *domain.CampaignRecord {
	t.Helper()
	def, _ := schema.NewRegistry().Get(schema.SourceCampaignPerformance)

	values, err := def.Convert(domain.CanonicalRecord{Fields: map[string]string{
		"campaign_id":        "9876",
		"campaign_name":      "Marca | Pesquisa",
		"date":               "2024-03-10",
		"status":             "Enabled",
		"budget_amount":      "150.00",
		"optimization_score": "87.5%",
		"impressions":        "1,000",
		"clicks":             "50",
		"cost":               "25.00",
		"account_name":       accountName,
	}})
	require.NoError(t, err)

	record, err := domain.NewCampaignRecord(accountName, values)
	require.NoError(t, err)
	return record
}

func TestProcessRecord_Atomicity(t *testing.T) {
	for failAt := range writeStatements {
		t.Run(writeStatements[failAt], func(t *testing.T) {
			f := newFixture(t, postgres.RetryPolicy{})

			f.mock.ExpectBegin()
			f.mock.ExpectQuery("FROM campaign_performance_daily").
				WillReturnRows(sqlmock.NewRows(performanceColumns))
			for i := 0; i < failAt; i++ {
				f.mock.ExpectExec(writeStatements[i]).WillReturnResult(sqlmock.NewResult(0, 1))
			}
			f.mock.ExpectExec(writeStatements[failAt]).
				WillReturnError(&pq.Error{Code: "23502", Message: "null value in column violates not-null constraint"})
			f.mock.ExpectRollback()

			result, err := f.service.ProcessRecord(context.Background(), domain.Scope{AccountID: 7}, nil, newRecord(t, ""))

			require.Error(t, err)
			assert.Equal(t, domain.OutcomeError, result.Outcome)
			assert.NoError(t, f.mock.ExpectationsWereMet(), "nenhuma escrita pode ser confirmada")
		})
	}
}

func TestProcessRecord_Added(t *testing.T) {
	f := newFixture(t, postgres.RetryPolicy{})

	f.mock.ExpectBegin()
	f.mock.ExpectQuery("FROM campaign_performance_daily").
		WithArgs(int64(7), "9876", "2024-03-10").
		WillReturnRows(sqlmock.NewRows(performanceColumns))
	for _, stmt := range writeStatements {
		f.mock.ExpectExec(stmt).WillReturnResult(sqlmock.NewResult(0, 1))
	}
	f.mock.ExpectCommit()

	result, err := f.service.ProcessRecord(context.Background(), domain.Scope{AccountID: 7}, nil, newRecord(t, ""))

	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeAdded, result.Outcome)
	assert.Nil(t, result.Evaluation)
	assert.Empty(t, f.evaluator.inputs)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestProcessRecord_UpdatedWithEvaluation(t *testing.T) {
	f := newFixture(t, postgres.RetryPolicy{})

	f.mock.ExpectBegin()
	f.mock.ExpectQuery("FROM campaign_performance_daily").
		WillReturnRows(sqlmock.NewRows(performanceColumns).AddRow("1000", "40", "10", nil, nil, "4", "0.5"))
	for _, stmt := range writeStatements {
		f.mock.ExpectExec(stmt).WillReturnResult(sqlmock.NewResult(0, 1))
	}
	f.mock.ExpectCommit()

	result, err := f.service.ProcessRecord(context.Background(), domain.Scope{AccountID: 7}, nil, newRecord(t, ""))

	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeUpdated, result.Outcome)
	require.NotNil(t, result.Evaluation)
	require.Len(t, f.evaluator.inputs, 1)

	input := f.evaluator.inputs[0]
	assert.Equal(t, schema.TableCampaignPerformanceDaily, input.SourceTable)
	assert.Equal(t, "7|9876|2024-03-10", input.RecordID)
	assert.Equal(t, 100.0, result.Evaluation.CompletenessScore)
	assert.True(t, result.Evaluation.IsSignificantChange)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestProcessRecord_ReimportacaoSemMudanca(t *testing.T) {
	f := newFixture(t, postgres.RetryPolicy{})

	f.mock.ExpectBegin()
	f.mock.ExpectQuery("FROM campaign_performance_daily").
		WillReturnRows(sqlmock.NewRows(performanceColumns).AddRow("1000.00", "50", "25", nil, nil, "5", "0.5"))
	for _, stmt := range writeStatements {
		f.mock.ExpectExec(stmt).WillReturnResult(sqlmock.NewResult(0, 1))
	}
	f.mock.ExpectCommit()

	result, err := f.service.ProcessRecord(context.Background(), domain.Scope{AccountID: 7}, nil, newRecord(t, ""))

	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeSkipped, result.Outcome)
	assert.Equal(t, domain.SkipReasonUnchanged, result.Reason)
	require.NotNil(t, result.Evaluation, "a avaliação de qualidade continua registrada")
	assert.False(t, result.Evaluation.IsSignificantChange)
	assert.NoError(t, f.mock.ExpectationsWereMet(), "o estado atual da campanha é sobrescrito na mesma transação")
}

func TestProcessRecord_ScopeAll(t *testing.T) {
	lookup := domain.NewAccountLookup([]*domain.Account{{ID: 3, Name: "Óticas Centro"}})

	t.Run("Conta desconhecida falha o registro", func(t *testing.T) {
		f := newFixture(t, postgres.RetryPolicy{})

		result, err := f.service.ProcessRecord(context.Background(), domain.Scope{All: true}, lookup, newRecord(t, "Loja Inexistente"))

		assert.ErrorIs(t, err, ErrEntityNotResolved)
		assert.Equal(t, domain.OutcomeError, result.Outcome)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("Resolve pelo nome sem diferenciar maiúsculas", func(t *testing.T) {
		f := newFixture(t, postgres.RetryPolicy{})

		f.mock.ExpectBegin()
		f.mock.ExpectQuery("FROM campaign_performance_daily").
			WithArgs(int64(3), "9876", "2024-03-10").
			WillReturnRows(sqlmock.NewRows(performanceColumns))
		for _, stmt := range writeStatements {
			f.mock.ExpectExec(stmt).WillReturnResult(sqlmock.NewResult(0, 1))
		}
		f.mock.ExpectCommit()

		result, err := f.service.ProcessRecord(context.Background(), domain.Scope{All: true}, lookup, newRecord(t, "  ÓTICAS centro "))

		require.NoError(t, err)
		assert.Equal(t, int64(3), result.AccountID)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})
}

func TestProcessRecord_BackfillsDisplayName(t *testing.T) {
	f := newFixture(t, postgres.RetryPolicy{})

	f.accounts.EXPECT().
		GetAccountByID(gomock.Any(), int64(7)).
		Return(&domain.Account{ID: 7, Name: "Loja Centro"}, nil).
		Times(1)
	f.accounts.EXPECT().
		UpdateDisplayName(gomock.Any(), int64(7), "Óticas Centro").
		Return(nil).
		Times(1)

	for i := 0; i < 2; i++ {
		f.mock.ExpectBegin()
		f.mock.ExpectQuery("FROM campaign_performance_daily").
			WillReturnRows(sqlmock.NewRows(performanceColumns))
		for _, stmt := range writeStatements {
			f.mock.ExpectExec(stmt).WillReturnResult(sqlmock.NewResult(0, 1))
		}
		f.mock.ExpectCommit()

		_, err := f.service.ProcessRecord(context.Background(), domain.Scope{AccountID: 7}, nil, newRecord(t, "Óticas Centro"))
		require.NoError(t, err)
	}

	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestProcessRecord_RetriesWholeTransaction(t *testing.T) {
	f := newFixture(t, postgres.RetryPolicy{Retries: 2, Factor: 2, MinDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond})

	f.mock.ExpectBegin()
	f.mock.ExpectQuery("FROM campaign_performance_daily").
		WillReturnRows(sqlmock.NewRows(performanceColumns))
	f.mock.ExpectExec(writeStatements[0]).WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectExec(writeStatements[1]).WillReturnError(syscall.ECONNRESET)
	f.mock.ExpectRollback()

	f.mock.ExpectBegin()
	f.mock.ExpectQuery("FROM campaign_performance_daily").
		WillReturnRows(sqlmock.NewRows(performanceColumns))
	for _, stmt := range writeStatements {
		f.mock.ExpectExec(stmt).WillReturnResult(sqlmock.NewResult(0, 1))
	}
	f.mock.ExpectCommit()

	result, err := f.service.ProcessRecord(context.Background(), domain.Scope{AccountID: 7}, nil, newRecord(t, ""))

	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeAdded, result.Outcome)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}
