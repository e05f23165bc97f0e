package importing

import (
	"context"
	"database/sql/driver"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/traffic-insights-import/infrastructure/database/postgres"
	"github.com/vfg2006/traffic-insights-import/infrastructure/repository/mocks"
	"github.com/vfg2006/traffic-insights-import/internal/config"
	"github.com/vfg2006/traffic-insights-import/internal/domain"
	"github.com/vfg2006/traffic-insights-import/internal/schema"
	"github.com/vfg2006/traffic-insights-import/internal/usecases/campaign"
	"github.com/vfg2006/traffic-insights-import/internal/usecases/quality"
	"github.com/vfg2006/traffic-insights-import/internal/usecases/reconciling"
	"go.uber.org/mock/gomock"
)

// memoryFacts simula as tabelas de fatos com a chave natural única
type memoryFacts struct {
	rows map[string]*domain.FactRow
}

func newMemoryFacts() *memoryFacts {
	return &memoryFacts{rows: make(map[string]*domain.FactRow)}
}

func (m *memoryFacts) Find(ctx context.Context, table domain.FactTable, key domain.FactKey) (*domain.FactRow, error) {
	row, ok := m.rows[table.Name+"|"+key.String()]
	if !ok {
		return nil, nil
	}
	copied := *row
	copied.Measures = row.Measures.Clone()
	return &copied, nil
}

func (m *memoryFacts) Insert(ctx context.Context, table domain.FactTable, row *domain.FactRow) error {
	m.rows[table.Name+"|"+row.Key.String()] = row
	return nil
}

func (m *memoryFacts) Update(ctx context.Context, table domain.FactTable, row *domain.FactRow) error {
	m.rows[table.Name+"|"+row.Key.String()] = row
	return nil
}

type scoringEvaluator struct{}

func (scoringEvaluator) Evaluate(ctx context.Context, input quality.Input) (*domain.QualityEvaluation, error) {
	return quality.Score(input, time.Now()), nil
}

type fakeCampaigns struct {
	records []*domain.CampaignRecord
	scopes  []domain.Scope
	results []*campaign.Result
	err     error
}

func (f *fakeCampaigns) ProcessRecord(ctx context.Context, scope domain.Scope, lookup domain.AccountLookup, record *domain.CampaignRecord) (*campaign.Result, error) {
	f.records = append(f.records, record)
	f.scopes = append(f.scopes, scope)
	if f.err != nil {
		return &campaign.Result{Outcome: domain.OutcomeError}, f.err
	}
	result := f.results[0]
	if len(f.results) > 1 {
		f.results = f.results[1:]
	}
	return result, nil
}

type recordingReporter struct {
	progress []domain.ProgressEvent
	quality  []domain.QualityEvent
}

func (r *recordingReporter) Progress(event domain.ProgressEvent) {
	r.progress = append(r.progress, event)
}

func (r *recordingReporter) Quality(event domain.QualityEvent) {
	r.quality = append(r.quality, event)
}

func (r *recordingReporter) last() domain.ProgressEvent {
	return r.progress[len(r.progress)-1]
}

type fixture struct {
	svc       *service
	accounts  *mocks.MockAccountRepository
	summaries *mocks.MockSummaryRepository
	facts     *memoryFacts
	campaigns *fakeCampaigns
}

func newFixture(t *testing.T, cfg config.Import) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	exec := postgres.NewExecutor(postgres.RetryPolicy{})
	f := &fixture{
		accounts:  mocks.NewMockAccountRepository(ctrl),
		summaries: mocks.NewMockSummaryRepository(ctrl),
		facts:     newMemoryFacts(),
		campaigns: &fakeCampaigns{},
	}

	svc := NewService(
		schema.NewRegistry(),
		f.accounts,
		f.summaries,
		reconciling.NewReconciler(f.facts, scoringEvaluator{}, exec),
		f.campaigns,
		exec,
		cfg,
	)
	f.svc = svc.(*service)
	return f
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const searchConsoleCSV = `Date,Query,Page,Clicks,Impressions,Position
2024-03-10,óculos de sol,/sol,10,200,3.1
2024-03-10,óculos de grau,/grau,"1,200","40,000",2
2024-03-11,óculos de sol,/sol,12,210,3
`

func TestImport_Idempotencia(t *testing.T) {
	f := newFixture(t, config.Import{})
	path := writeFile(t, "search.csv", searchConsoleCSV)

	f.summaries.EXPECT().
		GetRollup(gomock.Any(), "search_console_daily", gomock.Any()).
		Return(&domain.ImportRollup{RowCount: 3}, nil).
		Times(2)

	req := Request{SourceType: schema.SourceSearchConsoleDaily, Scope: "7", FilePath: path}

	first := &recordingReporter{}
	summary, err := f.svc.Import(context.Background(), req, first)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalProcessed)
	assert.Equal(t, 3, summary.Added)
	assert.Equal(t, 0, summary.Skipped)
	assert.Empty(t, first.quality)
	require.NotNil(t, summary.Rollup)
	assert.Equal(t, schema.SourceSearchConsoleDaily, summary.Rollup.SourceType)
	assert.EqualValues(t, 3, summary.Rollup.RowCount)

	second := &recordingReporter{}
	summary, err = f.svc.Import(context.Background(), req, second)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Added)
	assert.Equal(t, 0, summary.Updated)
	assert.Equal(t, 3, summary.Skipped)
	assert.Len(t, second.quality, 3)
	assert.Len(t, f.facts.rows, 3)

	// O arquivo só é removido quando pedido
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestImport_EventosDeProgresso(t *testing.T) {
	f := newFixture(t, config.Import{SummaryEvery: 2})
	path := writeFile(t, "search.csv", searchConsoleCSV)

	f.summaries.EXPECT().GetRollup(gomock.Any(), gomock.Any(), gomock.Any()).Return(&domain.ImportRollup{}, nil)

	reporter := &recordingReporter{}
	_, err := f.svc.Import(context.Background(), Request{
		SourceType: schema.SourceSearchConsoleDaily,
		Scope:      "7",
		FilePath:   path,
	}, reporter)
	require.NoError(t, err)

	require.Len(t, reporter.progress, 5)
	assert.Equal(t, domain.ProgressStatusStarted, reporter.progress[0].Status)
	assert.Equal(t, 3, reporter.progress[0].Total)

	for i, event := range reporter.progress[1:4] {
		assert.Equal(t, domain.ProgressStatusProcessing, event.Status)
		assert.Equal(t, i+1, event.Processed)
		assert.False(t, event.Completed)
	}
	assert.Empty(t, reporter.progress[1].Message)
	assert.NotEmpty(t, reporter.progress[2].Message)

	final := reporter.last()
	assert.Equal(t, domain.ProgressStatusCompleted, final.Status)
	assert.True(t, final.Completed)
	require.NotNil(t, final.Result)
	assert.Equal(t, 3, final.Result.Added)
	assert.NotNil(t, final.Result.Rollup)
}

func TestImport_ColunaObrigatoriaAusente(t *testing.T) {
	f := newFixture(t, config.Import{})
	path := writeFile(t, "search.csv", "Date,Query,Page,Clicks,Position\n2024-03-10,óculos,/sol,10,3\n")

	reporter := &recordingReporter{}
	summary, err := f.svc.Import(context.Background(), Request{
		SourceType: schema.SourceSearchConsoleDaily,
		Scope:      "7",
		FilePath:   path,
		RemoveFile: true,
	}, reporter)

	assert.Nil(t, summary)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.ErrorIs(t, err, ErrMissingColumns)
	assert.Equal(t, CodeMissingColumns, validationErr.Code)
	assert.Equal(t, []string{"impressions"}, validationErr.Violations)
	assert.Empty(t, reporter.progress)
	assert.Empty(t, f.facts.rows)

	_, err = os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestImport_EscopoAllSemColunaDeConta(t *testing.T) {
	f := newFixture(t, config.Import{})
	path := writeFile(t, "search.csv", searchConsoleCSV)

	reporter := &recordingReporter{}
	summary, err := f.svc.Import(context.Background(), Request{
		SourceType: schema.SourceSearchConsoleDaily,
		Scope:      "all",
		FilePath:   path,
	}, reporter)

	assert.Nil(t, summary)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.ErrorIs(t, err, ErrMissingColumns)
	assert.Equal(t, CodeMissingColumns, validationErr.Code)
	assert.Equal(t, []string{schema.FieldAccountName}, validationErr.Violations)
	assert.Empty(t, reporter.progress)
	assert.Empty(t, f.facts.rows)
}

func TestImport_RequisicaoInvalida(t *testing.T) {
	tests := []struct {
		name       string
		req        Request
		wantErrs   []error
		violations int
	}{
		{
			name:       "todas as violações juntas",
			req:        Request{SourceType: "desconhecido", Scope: "abc"},
			wantErrs:   []error{ErrUnknownSourceType, ErrInvalidScope, ErrMissingFile},
			violations: 3,
		},
		{
			name:       "arquivo inexistente",
			req:        Request{SourceType: schema.SourceAdsDaily, Scope: "all", FilePath: "/nao/existe.csv"},
			wantErrs:   []error{ErrMissingFile},
			violations: 1,
		},
		{
			name:       "escopo zero",
			req:        Request{SourceType: schema.SourceAdsDaily, Scope: "0", FilePath: writeFile(t, "ads.csv", "a,b\n1,2\n")},
			wantErrs:   []error{ErrInvalidScope},
			violations: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, config.Import{})

			_, err := f.svc.Import(context.Background(), tt.req, nil)

			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, CodeInvalidRequest, validationErr.Code)
			assert.Len(t, validationErr.Violations, tt.violations)
			for _, want := range tt.wantErrs {
				assert.ErrorIs(t, err, want)
			}
		})
	}
}

func TestImport_ArquivoIlegivel(t *testing.T) {
	f := newFixture(t, config.Import{})
	path := writeFile(t, "vazio.csv", "")

	_, err := f.svc.Import(context.Background(), Request{
		SourceType: schema.SourceAdsDaily,
		Scope:      "1",
		FilePath:   path,
	}, nil)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, CodeUnreadableFile, validationErr.Code)
	assert.ErrorIs(t, err, ErrUnreadableFile)
}

func TestImport_ContaDesconhecidaEscopoAll(t *testing.T) {
	f := newFixture(t, config.Import{})
	path := writeFile(t, "ads.csv", `Day,Campaign,Account,Impressions,Clicks,Cost,Conversions
2024-03-10,Marca,Loja Centro,1000,50,25.50,3
2024-03-10,Marca,Loja Inexistente,800,40,20,2
2024-03-11,Marca, loja centro ,900,45,22,1
`)

	display := "Loja Centro"
	f.accounts.EXPECT().ListAccounts(gomock.Any()).Return([]*domain.Account{
		{ID: 4, Name: "centro", DisplayName: &display, Active: true},
	}, nil)
	f.summaries.EXPECT().GetRollup(gomock.Any(), "ads_daily_metrics", (*int64)(nil)).Return(&domain.ImportRollup{}, nil)

	summary, err := f.svc.Import(context.Background(), Request{
		SourceType: schema.SourceAdsDaily,
		Scope:      "all",
		FilePath:   path,
	}, &recordingReporter{})
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TotalProcessed)
	assert.Equal(t, 2, summary.Added)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 0, summary.Errors)

	for _, row := range f.facts.rows {
		assert.EqualValues(t, 4, row.Key.AccountID)
	}
}

func TestImport_ErroDeLinhaNaoInterrompe(t *testing.T) {
	f := newFixture(t, config.Import{})
	path := writeFile(t, "search.csv", `Date,Query,Page,Clicks,Impressions,Position
2024-03-10,óculos,/sol,abc,200,3
2024-03-10,,/grau,5,100,2
2024-03-10,lentes,/lentes,5,100,2
`)

	f.summaries.EXPECT().GetRollup(gomock.Any(), gomock.Any(), gomock.Any()).Return(&domain.ImportRollup{}, nil)

	summary, err := f.svc.Import(context.Background(), Request{
		SourceType: schema.SourceSearchConsoleDaily,
		Scope:      "7",
		FilePath:   path,
	}, &recordingReporter{})
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TotalProcessed)
	assert.Equal(t, 1, summary.Errors)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 1, summary.Added)
}

func TestImport_Campanhas(t *testing.T) {
	f := newFixture(t, config.Import{})
	path := writeFile(t, "campaigns.csv", `Campaign ID,Campaign,Day,Impressions,Clicks,Cost,Optimization score
111,Marca,2024-03-10,1000,50,25.50,>90%
222,Genérica,2024-03-10,800,40,20,--
`)

	evaluation := &domain.QualityEvaluation{SourceTable: schema.TableCampaignPerformanceDaily}
	f.campaigns.results = []*campaign.Result{
		{Outcome: domain.OutcomeAdded, AccountID: 9},
		{Outcome: domain.OutcomeUpdated, AccountID: 9, Evaluation: evaluation},
	}
	f.summaries.EXPECT().
		GetRollup(gomock.Any(), schema.TableCampaignPerformanceDaily, gomock.Any()).
		Return(nil, errors.New("relation does not exist"))

	reporter := &recordingReporter{}
	summary, err := f.svc.Import(context.Background(), Request{
		SourceType: schema.SourceCampaignPerformance,
		Scope:      "9",
		FilePath:   path,
	}, reporter)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Added)
	assert.Equal(t, 1, summary.Updated)
	assert.Nil(t, summary.Rollup)

	require.Len(t, f.campaigns.records, 2)
	assert.Equal(t, "111", f.campaigns.records[0].Entity.CampaignID)
	assert.Equal(t, domain.Scope{AccountID: 9}, f.campaigns.scopes[0])

	require.Len(t, reporter.quality, 1)
	assert.Equal(t, "quality", reporter.quality[0].Type)
	assert.Same(t, evaluation, reporter.quality[0].Metrics)
}

func TestImport_FalhaNaCampanhaContaComoErro(t *testing.T) {
	f := newFixture(t, config.Import{})
	path := writeFile(t, "campaigns.csv", `Campaign ID,Campaign,Day,Impressions,Clicks,Cost
111,Marca,2024-03-10,1000,50,25.50
,Sem ID,2024-03-10,800,40,20
`)

	f.campaigns.err = errors.New("erro ao gravar campanha")
	f.summaries.EXPECT().GetRollup(gomock.Any(), gomock.Any(), gomock.Any()).Return(&domain.ImportRollup{}, nil)

	summary, err := f.svc.Import(context.Background(), Request{
		SourceType: schema.SourceCampaignPerformance,
		Scope:      "9",
		FilePath:   path,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.TotalProcessed)
	assert.Equal(t, 1, summary.Errors)
	assert.Equal(t, 1, summary.Skipped)
	assert.Len(t, f.campaigns.records, 1)
}

func TestImport_Cancelado(t *testing.T) {
	f := newFixture(t, config.Import{})
	path := writeFile(t, "search.csv", searchConsoleCSV)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reporter := &recordingReporter{}
	summary, err := f.svc.Import(ctx, Request{
		SourceType: schema.SourceSearchConsoleDaily,
		Scope:      "7",
		FilePath:   path,
	}, reporter)

	assert.Nil(t, summary)
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, reporter.progress, 2)
	assert.Equal(t, domain.ProgressStatusStarted, reporter.progress[0].Status)
	assert.Equal(t, domain.ProgressStatusFailed, reporter.last().Status)
	assert.True(t, reporter.last().Completed)
	assert.Empty(t, f.facts.rows)
}

func TestImport_FalhaAoCarregarContas(t *testing.T) {
	f := newFixture(t, config.Import{})
	path := writeFile(t, "search.csv", "Site,Date,Query,Page,Clicks,Impressions,Position\nLoja Centro,2024-03-10,lentes,/lentes,5,100,2\n")

	f.accounts.EXPECT().ListAccounts(gomock.Any()).Return(nil, errors.New("permission denied"))

	reporter := &recordingReporter{}
	_, err := f.svc.Import(context.Background(), Request{
		SourceType: schema.SourceSearchConsoleDaily,
		Scope:      "all",
		FilePath:   path,
	}, reporter)

	require.Error(t, err)
	var validationErr *ValidationError
	assert.False(t, errors.As(err, &validationErr))
	assert.Empty(t, reporter.progress)
}

func TestImport_ResumoRepeteFalhaTransitoria(t *testing.T) {
	f := newFixture(t, config.Import{})
	path := writeFile(t, "search.csv", "Date,Query,Page,Clicks,Impressions,Position\n2024-03-10,lentes,/lentes,5,100,2\n")

	gomock.InOrder(
		f.summaries.EXPECT().GetRollup(gomock.Any(), "search_console_daily", gomock.Any()).Return(nil, driver.ErrBadConn),
		f.summaries.EXPECT().GetRollup(gomock.Any(), "search_console_daily", gomock.Any()).Return(&domain.ImportRollup{RowCount: 1}, nil),
	)

	summary, err := f.svc.Import(context.Background(), Request{
		SourceType: schema.SourceSearchConsoleDaily,
		Scope:      "7",
		FilePath:   path,
	}, &recordingReporter{})
	require.NoError(t, err)
	require.NotNil(t, summary.Rollup)
	assert.EqualValues(t, 1, summary.Rollup.RowCount)
}

func TestImport_ResumoIndisponivelNaoFalhaImportacao(t *testing.T) {
	f := newFixture(t, config.Import{})
	path := writeFile(t, "search.csv", "Date,Query,Page,Clicks,Impressions,Position\n2024-03-10,lentes,/lentes,5,100,2\n")

	f.summaries.EXPECT().GetRollup(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, driver.ErrBadConn).Times(2)

	summary, err := f.svc.Import(context.Background(), Request{
		SourceType: schema.SourceSearchConsoleDaily,
		Scope:      "7",
		FilePath:   path,
	}, &recordingReporter{})
	require.NoError(t, err)
	assert.Nil(t, summary.Rollup)
	assert.Equal(t, 1, summary.Added)
}

func TestSummary(t *testing.T) {
	t.Run("escopo all", func(t *testing.T) {
		f := newFixture(t, config.Import{})
		f.summaries.EXPECT().
			GetRollup(gomock.Any(), "ads_daily_metrics", (*int64)(nil)).
			Return(&domain.ImportRollup{RowCount: 12}, nil)

		rollup, err := f.svc.Summary(context.Background(), schema.SourceAdsDaily, "all")
		require.NoError(t, err)
		assert.Equal(t, schema.SourceAdsDaily, rollup.SourceType)
		assert.Equal(t, "ads_daily_metrics", rollup.Table)
		assert.EqualValues(t, 12, rollup.RowCount)
	})

	t.Run("conta específica", func(t *testing.T) {
		f := newFixture(t, config.Import{})
		f.summaries.EXPECT().
			GetRollup(gomock.Any(), schema.TableCampaignPerformanceDaily, gomock.Any()).
			DoAndReturn(func(ctx context.Context, table string, accountID *int64) (*domain.ImportRollup, error) {
				require.NotNil(t, accountID)
				assert.EqualValues(t, 5, *accountID)
				return &domain.ImportRollup{}, nil
			})

		_, err := f.svc.Summary(context.Background(), schema.SourceCampaignPerformance, "5")
		require.NoError(t, err)
	})

	t.Run("parâmetros inválidos", func(t *testing.T) {
		f := newFixture(t, config.Import{})

		_, err := f.svc.Summary(context.Background(), "x", "")
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Len(t, validationErr.Violations, 2)
	})
}

func TestSchemas(t *testing.T) {
	f := newFixture(t, config.Import{})

	defs := f.svc.Schemas()
	require.Len(t, defs, 3)
	assert.Equal(t, schema.SourceAdsDaily, defs[0].SourceType)
}
