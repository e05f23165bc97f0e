package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/lib/pq"
	"github.com/vfg2006/traffic-insights-import/internal/config"
)

type Conn interface {
	Queryer
	Close() error
	Ping(context.Context) error
	RunInTransaction(context.Context, func(*sql.Tx) error) error
}

type Connection struct {
	*sql.DB
}

func NewConnection(
	ctx context.Context,
	cfg config.Database,
) (*Connection, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, err
	}

	// O pool é compartilhado por todas as importações em andamento
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Connection{DB: db}, nil
}

// NewConnectionFromDB encapsula um *sql.DB já aberto (usado nos testes com sqlmock)
func NewConnectionFromDB(db *sql.DB) *Connection {
	return &Connection{DB: db}
}

func (c *Connection) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// RunInTransaction executa fn dentro de uma transação; qualquer erro ou panic desfaz tudo
func (c *Connection) RunInTransaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err := recover(); err != nil {
			_ = tx.Rollback()
			panic(err)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, rbErr)
		}
		return err
	}

	return tx.Commit()
}
