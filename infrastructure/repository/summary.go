package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vfg2006/traffic-insights-import/infrastructure/database/postgres"
	"github.com/vfg2006/traffic-insights-import/internal/domain"
	"github.com/vfg2006/traffic-insights-import/pkg/utils"
)

// SummaryRepository calcula o resumo de uma tabela importada para uma conta (ou todas)
type SummaryRepository interface {
	GetRollup(ctx context.Context, table string, accountID *int64) (*domain.ImportRollup, error)
}

type summaryRepository struct {
	conn *postgres.Connection
}

func NewSummaryRepository(conn *postgres.Connection) SummaryRepository {
	return &summaryRepository{
		conn: conn,
	}
}

func (r *summaryRepository) GetRollup(ctx context.Context, table string, accountID *int64) (*domain.ImportRollup, error) {
	rollup := &domain.ImportRollup{Table: table, AccountID: accountID}

	factQuery := squirrel.
		Select("COUNT(*)", "MIN(date)", "MAX(date)", "MAX(imported_at)").
		From(table).
		PlaceholderFormat(squirrel.Dollar)
	if accountID != nil {
		factQuery = factQuery.Where(squirrel.Eq{"account_id": *accountID})
	}

	query, args, err := factQuery.ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	var minDate, maxDate, lastUpdate sql.NullTime
	if err := r.conn.QueryRowContext(ctx, query, args...).Scan(&rollup.RowCount, &minDate, &maxDate, &lastUpdate); err != nil {
		return nil, wrapExecError(err)
	}
	rollup.DateRange = domain.DateRange{Start: timePtr(minDate), End: timePtr(maxDate)}
	rollup.LastUpdate = timePtr(lastUpdate)

	qualityQuery := squirrel.
		Select("AVG(confidence_score)", "AVG(completeness_score)", "AVG(consistency_score)").
		From("quality_evaluations").
		Where(squirrel.Eq{"source_table": table}).
		PlaceholderFormat(squirrel.Dollar)
	if accountID != nil {
		qualityQuery = qualityQuery.Where(squirrel.Eq{"account_id": *accountID})
	}

	query, args, err = qualityQuery.ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	var confidence, completeness, consistency sql.NullFloat64
	if err := r.conn.QueryRowContext(ctx, query, args...).Scan(&confidence, &completeness, &consistency); err != nil {
		return nil, wrapExecError(err)
	}
	rollup.AvgConfidenceScore = floatPtr(confidence)
	rollup.AvgCompletenessScore = floatPtr(completeness)
	rollup.AvgConsistencyScore = floatPtr(consistency)

	return rollup, nil
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	return &t.Time
}

func floatPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := utils.RoundWithTwoDecimalPlace(f.Float64)
	return &v
}
