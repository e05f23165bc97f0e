package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/vfg2006/traffic-insights-import/infrastructure/database/postgres"
	"github.com/vfg2006/traffic-insights-import/internal/domain"
)

const (
	accountsTable = "accounts a"
)

type AccountRepository interface {
	GetAccountByID(ctx context.Context, accountID int64) (*domain.Account, error)
	ListAccounts(ctx context.Context) ([]*domain.Account, error)
	UpdateDisplayName(ctx context.Context, accountID int64, displayName string) error
}

type accountRepository struct {
	conn *postgres.Connection
}

func NewAccountRepository(conn *postgres.Connection) AccountRepository {
	return &accountRepository{
		conn: conn,
	}
}

func (a *accountRepository) GetAccountByID(ctx context.Context, accountID int64) (*domain.Account, error) {
	accountsSQL, accountsArgs, err := squirrel.
		Select("a.id, a.name, a.display_name, a.active").
		From(accountsTable).
		Where(squirrel.Eq{"a.id": accountID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	row := a.conn.QueryRowContext(ctx, accountsSQL, accountsArgs...)

	acc := &domain.Account{}
	if err := row.Scan(&acc.ID, &acc.Name, &acc.DisplayName, &acc.Active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapExecError(err)
	}

	return acc, nil
}

// ListAccounts lista as contas ativas, usadas para montar o mapa nome -> conta
func (a *accountRepository) ListAccounts(ctx context.Context) ([]*domain.Account, error) {
	accountsSQL, accountsArgs, err := squirrel.
		Select("a.id, a.name, a.display_name, a.active").
		From(accountsTable).
		Where(squirrel.Eq{"a.active": true}).
		OrderBy("a.id ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := a.conn.QueryContext(ctx, accountsSQL, accountsArgs...)
	if err != nil {
		return nil, wrapExecError(err)
	}
	defer rows.Close()

	accounts := make([]*domain.Account, 0)
	for rows.Next() {
		acc := &domain.Account{}
		if err := rows.Scan(&acc.ID, &acc.Name, &acc.DisplayName, &acc.Active); err != nil {
			return nil, fmt.Errorf("erro ao escanear conta: %w", err)
		}
		accounts = append(accounts, acc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return accounts, nil
}

// UpdateDisplayName grava o nome da conta como aparece nas exportações
func (a *accountRepository) UpdateDisplayName(ctx context.Context, accountID int64, displayName string) error {
	query, args, err := squirrel.
		Update("accounts").
		Set("display_name", displayName).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": accountID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if _, err := a.conn.ExecContext(ctx, query, args...); err != nil {
		return wrapExecError(err)
	}

	return nil
}
