package reconciling

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/traffic-insights-import/infrastructure/database/postgres"
	"github.com/vfg2006/traffic-insights-import/infrastructure/repository"
	"github.com/vfg2006/traffic-insights-import/internal/domain"
	"github.com/vfg2006/traffic-insights-import/internal/schema"
	"github.com/vfg2006/traffic-insights-import/internal/usecases/quality"
	"github.com/vfg2006/traffic-insights-import/pkg/utils"
)

var ErrNotFactSource = errors.New("tipo de fonte não grava em tabela de fatos simples")

// Result é a classificação de um registro reconciliado
type Result struct {
	Outcome    domain.Outcome
	Reason     string
	Evaluation *domain.QualityEvaluation
}

type Reconciler interface {
	Reconcile(ctx context.Context, def *schema.Definition, accountID int64, values domain.Values) (*Result, error)
}

type reconciler struct {
	facts     repository.FactRepository
	evaluator quality.Evaluator
	exec      *postgres.Executor
}

func NewReconciler(facts repository.FactRepository, evaluator quality.Evaluator, exec *postgres.Executor) Reconciler {
	return &reconciler{
		facts:     facts,
		evaluator: evaluator,
		exec:      exec,
	}
}

// Reconcile decide entre inserir, atualizar ou ignorar o registro comparando-o com
// a linha já armazenada para a mesma chave natural. Erros de banco são devolvidos
// com Outcome de erro para que o chamador contabilize e siga para a próxima linha.
func (r *reconciler) Reconcile(ctx context.Context, def *schema.Definition, accountID int64, values domain.Values) (*Result, error) {
	table := def.Fact
	if table == nil {
		return &Result{Outcome: domain.OutcomeError}, fmt.Errorf("%w: %s", ErrNotFactSource, def.SourceType)
	}

	if missing := def.MissingDimensions(values); len(missing) > 0 {
		return &Result{Outcome: domain.OutcomeSkipped, Reason: domain.SkipReasonMissingDimension}, nil
	}

	date, ok := values.Date("date")
	if !ok {
		return &Result{Outcome: domain.OutcomeSkipped, Reason: domain.SkipReasonMissingDimension}, nil
	}

	key := domain.FactKey{
		AccountID:  accountID,
		Date:       date,
		Dimensions: make(map[string]string, len(table.Dimensions)),
	}
	for _, dim := range table.Dimensions {
		if text := values.Text(dim); text != nil {
			key.Dimensions[dim] = *text
		} else {
			key.Dimensions[dim] = ""
		}
	}

	existing, err := postgres.Query(ctx, r.exec, func(ctx context.Context) (*domain.FactRow, error) {
		return r.facts.Find(ctx, *table, key)
	})
	if err != nil {
		return &Result{Outcome: domain.OutcomeError}, fmt.Errorf("erro ao buscar registro %s: %w", key, err)
	}

	row := &domain.FactRow{Key: key, Measures: measuresOf(table, values)}

	if existing == nil {
		err := r.exec.Execute(ctx, func(ctx context.Context) error {
			return r.facts.Insert(ctx, *table, row)
		})
		if err != nil {
			return &Result{Outcome: domain.OutcomeError}, fmt.Errorf("erro ao inserir registro %s: %w", key, err)
		}
		return &Result{Outcome: domain.OutcomeAdded}, nil
	}

	result := &Result{}

	evaluation, err := r.evaluator.Evaluate(ctx, quality.Input{
		SourceTable: table.Name,
		RecordID:    key.String(),
		AccountID:   accountID,
		RecordDate:  date,
		New:         values,
		Old:         existing.Measures,
		Config:      def.Quality,
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"source_table": table.Name,
			"record_id":    key.String(),
			"error":        err.Error(),
		}).Warn("Falha ao registrar avaliação de qualidade")
	}
	result.Evaluation = evaluation

	if !measuresChanged(table, row.Measures, existing.Measures) {
		result.Outcome = domain.OutcomeSkipped
		result.Reason = domain.SkipReasonUnchanged
		return result, nil
	}

	err = r.exec.Execute(ctx, func(ctx context.Context) error {
		return r.facts.Update(ctx, *table, row)
	})
	if err != nil {
		result.Outcome = domain.OutcomeError
		return result, fmt.Errorf("erro ao atualizar registro %s: %w", key, err)
	}

	result.Outcome = domain.OutcomeUpdated
	return result, nil
}

func measuresOf(table *domain.FactTable, values domain.Values) domain.Values {
	measures := make(domain.Values, len(table.Measures))
	for _, m := range table.Measures {
		measures[m] = values[m]
	}
	return measures
}

// measuresChanged compara as métricas por valor numérico, nunca pela representação
func measuresChanged(table *domain.FactTable, current, previous domain.Values) bool {
	for _, m := range table.Measures {
		if !utils.NumericEqual(current[m], previous[m]) {
			return true
		}
	}
	return false
}
