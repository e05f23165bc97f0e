package repository

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	jsoniter "github.com/json-iterator/go"
	"github.com/vfg2006/traffic-insights-import/infrastructure/database/postgres"
	"github.com/vfg2006/traffic-insights-import/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// QualityEvaluationRepository grava a auditoria de qualidade; os registros nunca
// são atualizados ou removidos
type QualityEvaluationRepository interface {
	Insert(ctx context.Context, evaluation *domain.QualityEvaluation) error
}

type qualityEvaluationRepository struct {
	conn *postgres.Connection
}

func NewQualityEvaluationRepository(conn *postgres.Connection) QualityEvaluationRepository {
	return &qualityEvaluationRepository{
		conn: conn,
	}
}

func (r *qualityEvaluationRepository) Insert(ctx context.Context, evaluation *domain.QualityEvaluation) error {
	var previousJSON []byte
	if evaluation.PreviousValue != nil {
		var err error
		previousJSON, err = json.Marshal(evaluation.PreviousValue)
		if err != nil {
			return fmt.Errorf("erro ao serializar valor anterior para JSON: %w", err)
		}
	}

	currentJSON, err := json.Marshal(evaluation.CurrentValue)
	if err != nil {
		return fmt.Errorf("erro ao serializar valor atual para JSON: %w", err)
	}

	var accountID any
	if evaluation.AccountID > 0 {
		accountID = evaluation.AccountID
	}

	query, args, err := squirrel.StatementBuilder.
		Insert("quality_evaluations").
		Columns(
			"source_table",
			"record_id",
			"account_id",
			"maturity_state",
			"confidence_score",
			"completeness_score",
			"consistency_score",
			"previous_value",
			"current_value",
			"change_percentage",
			"is_significant_change",
			"evaluated_at",
		).
		Values(
			evaluation.SourceTable,
			evaluation.RecordID,
			accountID,
			string(evaluation.MaturityState),
			evaluation.ConfidenceScore,
			evaluation.CompletenessScore,
			evaluation.ConsistencyScore,
			previousJSON,
			currentJSON,
			evaluation.ChangePercentage,
			evaluation.IsSignificantChange,
			evaluation.Timestamp,
		).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if err := r.conn.QueryRowContext(ctx, query, args...).Scan(&evaluation.ID); err != nil {
		return wrapExecError(err)
	}

	return nil
}
