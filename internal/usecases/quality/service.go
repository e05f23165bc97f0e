package quality

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vfg2006/traffic-insights-import/infrastructure/database/postgres"
	"github.com/vfg2006/traffic-insights-import/infrastructure/repository"
	"github.com/vfg2006/traffic-insights-import/internal/domain"
	"github.com/vfg2006/traffic-insights-import/internal/schema"
	"github.com/vfg2006/traffic-insights-import/pkg/utils"
)

// ErrPersistEvaluation indica que a avaliação foi calculada mas não pôde ser gravada
var ErrPersistEvaluation = errors.New("erro ao gravar avaliação de qualidade")

const (
	consistencyFull    = 100.0
	consistencyPartial = 50.0
)

var hundred = decimal.NewFromInt(100)

// Input é o registro avaliado. Old é nil quando não havia estado anterior.
type Input struct {
	SourceTable string
	RecordID    string
	AccountID   int64
	RecordDate  time.Time
	New         domain.Values
	Old         domain.Values
	Config      schema.QualityConfig
}

type Evaluator interface {
	Evaluate(ctx context.Context, input Input) (*domain.QualityEvaluation, error)
}

type evaluator struct {
	repo repository.QualityEvaluationRepository
	exec *postgres.Executor
	now  func() time.Time
}

func NewEvaluator(repo repository.QualityEvaluationRepository, exec *postgres.Executor) Evaluator {
	return &evaluator{
		repo: repo,
		exec: exec,
		now:  time.Now,
	}
}

// Evaluate calcula os escores do registro e grava uma linha de auditoria em toda
// chamada, mesmo sem mudança. Em falha na gravação a avaliação calculada ainda é
// devolvida junto com ErrPersistEvaluation.
func (e *evaluator) Evaluate(ctx context.Context, input Input) (*domain.QualityEvaluation, error) {
	now := e.now()
	evaluation := Score(input, now)

	err := e.exec.Execute(ctx, func(ctx context.Context) error {
		return e.repo.Insert(ctx, evaluation)
	})
	if err != nil {
		return evaluation, fmt.Errorf("%w: %w", ErrPersistEvaluation, err)
	}

	return evaluation, nil
}

// Score calcula a avaliação sem gravá-la
func Score(input Input, now time.Time) *domain.QualityEvaluation {
	threshold := input.Config.VarianceThreshold
	completeness := Completeness(input.Config.RequiredFields, input.New)

	change := 0.0
	consistency := consistencyFull
	if input.Old != nil {
		change = AverageChange(input.New, input.Old)
		if math.Abs(change) > threshold {
			consistency = consistencyPartial
		}
	}

	return &domain.QualityEvaluation{
		SourceTable:         input.SourceTable,
		RecordID:            input.RecordID,
		AccountID:           input.AccountID,
		MaturityState:       Maturity(input.RecordDate, now, input.Config.MaturityPeriod()),
		ConfidenceScore:     utils.RoundWithTwoDecimalPlace((completeness + consistency) / 2),
		CompletenessScore:   completeness,
		ConsistencyScore:    consistency,
		PreviousValue:       input.Old,
		CurrentValue:        input.New,
		ChangePercentage:    change,
		IsSignificantChange: math.Abs(change) > threshold,
		Timestamp:           now,
	}
}

// Completeness é o percentual de campos obrigatórios presentes e não nulos
func Completeness(required []string, values domain.Values) float64 {
	if len(required) == 0 {
		return 100
	}

	present := 0
	for _, name := range required {
		if hasValue(values[name]) {
			present++
		}
	}

	return utils.RoundWithTwoDecimalPlace(float64(present) / float64(len(required)) * 100)
}

func hasValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return val != "" && !utils.IsNoData(val)
	case time.Time:
		return !val.IsZero()
	case decimal.NullDecimal:
		return val.Valid
	}
	return true
}

// AverageChange é a média da variação percentual dos campos numéricos presentes nos
// dois lados com valor anterior diferente de zero; 0 quando não há campo comparável
func AverageChange(current, previous domain.Values) float64 {
	sum := decimal.Zero
	count := 0

	for name, raw := range current {
		newValue, ok := utils.ToDecimal(raw)
		if !ok {
			continue
		}
		oldValue, ok := utils.ToDecimal(previous[name])
		if !ok || oldValue.IsZero() {
			continue
		}

		sum = sum.Add(newValue.Sub(oldValue).Div(oldValue).Mul(hundred))
		count++
	}

	if count == 0 {
		return 0
	}

	return sum.Div(decimal.NewFromInt(int64(count))).Round(4).InexactFloat64()
}

// Maturity classifica o registro pela idade em relação ao período de maturação P:
// menos de P é preliminar, de P até 2P em maturação, a partir de 2P estável
func Maturity(recordDate, now time.Time, period time.Duration) domain.MaturityState {
	if recordDate.IsZero() {
		return domain.MaturityPreliminary
	}

	age := now.Sub(recordDate)
	switch {
	case age < period:
		return domain.MaturityPreliminary
	case age < 2*period:
		return domain.MaturityMaturing
	default:
		return domain.MaturityStable
	}
}
