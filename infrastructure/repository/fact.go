package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"
	"github.com/vfg2006/traffic-insights-import/infrastructure/database/postgres"
	"github.com/vfg2006/traffic-insights-import/internal/domain"
)

// FactRepository persiste linhas das tabelas de fatos simples, identificadas pela
// chave natural (account_id, date, dimensões...)
type FactRepository interface {
	Find(ctx context.Context, table domain.FactTable, key domain.FactKey) (*domain.FactRow, error)
	Insert(ctx context.Context, table domain.FactTable, row *domain.FactRow) error
	Update(ctx context.Context, table domain.FactTable, row *domain.FactRow) error
}

type factRepository struct {
	conn *postgres.Connection
}

func NewFactRepository(conn *postgres.Connection) FactRepository {
	return &factRepository{
		conn: conn,
	}
}

func keyColumns(table domain.FactTable) []string {
	return append([]string{"account_id", "date"}, table.Dimensions...)
}

func keyWhere(table domain.FactTable, key domain.FactKey) squirrel.Eq {
	where := squirrel.Eq{
		"account_id": key.AccountID,
		"date":       key.Date.Format(time.DateOnly),
	}
	for _, dim := range table.Dimensions {
		where[dim] = key.Dimensions[dim]
	}
	return where
}

func measureArg(values domain.Values, name string) any {
	if d := values.Decimal(name); d.Valid {
		return d.Decimal
	}
	return nil
}

func (r *factRepository) Find(ctx context.Context, table domain.FactTable, key domain.FactKey) (*domain.FactRow, error) {
	columns := append([]string{"id"}, table.Measures...)
	columns = append(columns, "imported_at")

	query, args, err := squirrel.
		Select(columns...).
		From(table.Name).
		Where(keyWhere(table, key)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	measures := make([]sql.NullString, len(table.Measures))
	row := &domain.FactRow{Key: key, Measures: make(domain.Values, len(table.Measures))}

	dest := []any{&row.ID}
	for i := range measures {
		dest = append(dest, &measures[i])
	}
	dest = append(dest, &row.ImportedAt)

	if err := r.conn.QueryRowContext(ctx, query, args...).Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapExecError(err)
	}

	for i, name := range table.Measures {
		if !measures[i].Valid {
			row.Measures[name] = nil
			continue
		}
		value, err := decimal.NewFromString(measures[i].String)
		if err != nil {
			return nil, fmt.Errorf("valor inválido em %s.%s: %w", table.Name, name, err)
		}
		row.Measures[name] = value
	}

	return row, nil
}

// Insert grava uma nova linha. O ON CONFLICT garante no máximo uma linha por chave
// natural mesmo se outra importação inserir a mesma chave entre a busca e a escrita.
func (r *factRepository) Insert(ctx context.Context, table domain.FactTable, row *domain.FactRow) error {
	columns := append(keyColumns(table), table.Measures...)
	columns = append(columns, "imported_at")

	values := []any{row.Key.AccountID, row.Key.Date.Format(time.DateOnly)}
	for _, dim := range table.Dimensions {
		values = append(values, row.Key.Dimensions[dim])
	}
	for _, m := range table.Measures {
		values = append(values, measureArg(row.Measures, m))
	}
	values = append(values, squirrel.Expr("NOW()"))

	updates := make([]string, 0, len(table.Measures)+1)
	for _, m := range table.Measures {
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", m, m))
	}
	updates = append(updates, "imported_at = NOW()")

	query, args, err := squirrel.StatementBuilder.
		Insert(table.Name).
		Columns(columns...).
		Values(values...).
		Suffix(fmt.Sprintf(
			"ON CONFLICT (%s) DO UPDATE SET %s",
			strings.Join(keyColumns(table), ", "),
			strings.Join(updates, ", "),
		)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		return wrapExecError(err)
	}

	return nil
}

func (r *factRepository) Update(ctx context.Context, table domain.FactTable, row *domain.FactRow) error {
	builder := squirrel.
		Update(table.Name).
		PlaceholderFormat(squirrel.Dollar)

	for _, m := range table.Measures {
		builder = builder.Set(m, measureArg(row.Measures, m))
	}

	query, args, err := builder.
		Set("imported_at", squirrel.Expr("NOW()")).
		Where(keyWhere(table, row.Key)).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		return wrapExecError(err)
	}

	return nil
}
