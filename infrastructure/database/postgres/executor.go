package postgres

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"net"
	"strings"
	"syscall"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/traffic-insights-import/internal/config"
)

// ErrAborted indica que o contexto foi cancelado durante a espera entre tentativas
var ErrAborted = errors.New("operação abortada durante nova tentativa")

// AbortedError carrega a tentativa em que o cancelamento ocorreu e o último erro da operação
type AbortedError struct {
	Attempt int
	Err     error
}

func (e *AbortedError) Error() string {
	return fmt.Sprintf("%s (tentativa %d): %v", ErrAborted.Error(), e.Attempt, e.Err)
}

func (e *AbortedError) Is(target error) bool {
	return target == ErrAborted
}

func (e *AbortedError) Unwrap() error {
	return e.Err
}

// RetryPolicy define quantas vezes e com qual espera uma operação é repetida
type RetryPolicy struct {
	Retries  int
	Factor   float64
	MinDelay time.Duration
	MaxDelay time.Duration
	Jitter   bool
	Timeout  time.Duration
}

// DefaultRetryPolicy: 3 novas tentativas, fator 2, de 200ms a 5s, com jitter
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Retries:  3,
		Factor:   2,
		MinDelay: 200 * time.Millisecond,
		MaxDelay: 5 * time.Second,
		Jitter:   true,
		Timeout:  30 * time.Second,
	}
}

// NewRetryPolicy monta a política a partir da configuração, completando com os padrões
func NewRetryPolicy(cfg config.Retry) RetryPolicy {
	policy := DefaultRetryPolicy()
	if cfg.Attempts >= 0 {
		policy.Retries = cfg.Attempts
	}
	if cfg.Factor >= 1 {
		policy.Factor = cfg.Factor
	}
	if cfg.MinDelay > 0 {
		policy.MinDelay = cfg.MinDelay
	}
	if cfg.MaxDelay > 0 {
		policy.MaxDelay = cfg.MaxDelay
	}
	policy.Jitter = cfg.Jitter
	policy.Timeout = cfg.Timeout
	return policy
}

// RetryObserver é chamado antes de cada espera entre tentativas
type RetryObserver func(attempt int, delay time.Duration, err error)

// ExecOption ajusta a política de uma única chamada
type ExecOption func(*RetryPolicy)

func WithRetries(retries int) ExecOption {
	return func(p *RetryPolicy) {
		p.Retries = retries
	}
}

func WithTimeout(timeout time.Duration) ExecOption {
	return func(p *RetryPolicy) {
		p.Timeout = timeout
	}
}

// Executor envolve operações de banco com nova tentativa para falhas transitórias
type Executor struct {
	policy  RetryPolicy
	onRetry RetryObserver
	sleep   func(ctx context.Context, d time.Duration) error
	random  func() float64
	now     func() time.Time
}

type ExecutorOption func(*Executor)

// WithObserver registra um observador chamado a cada nova tentativa
func WithObserver(observer RetryObserver) ExecutorOption {
	return func(e *Executor) {
		e.onRetry = observer
	}
}

func NewExecutor(policy RetryPolicy, opts ...ExecutorOption) *Executor {
	e := &Executor{
		policy: policy,
		sleep:  sleepContext,
		random: rand.Float64,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.onRetry == nil {
		e.onRetry = logRetry
	}
	return e
}

// Policy retorna a política padrão do executor
func (e *Executor) Policy() RetryPolicy {
	return e.policy
}

// Delay calcula a espera (sem jitter) antes da nova tentativa de número attempt (base 0)
func (p RetryPolicy) Delay(attempt int) time.Duration {
	delay := float64(p.MinDelay) * math.Pow(p.Factor, float64(attempt))
	if p.MaxDelay > 0 && delay > float64(p.MaxDelay) {
		return p.MaxDelay
	}
	return time.Duration(delay)
}

// Execute roda op e repete apenas enquanto o erro for transitório. Ao esgotar as
// tentativas (ou o tempo limite entre elas) o último erro é devolvido sem alteração.
func (e *Executor) Execute(ctx context.Context, op func(ctx context.Context) error, opts ...ExecOption) error {
	policy := e.policy
	for _, opt := range opts {
		opt(&policy)
	}

	var deadline time.Time
	if policy.Timeout > 0 {
		deadline = e.now().Add(policy.Timeout)
	}

	for attempt := 0; ; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}

		if !IsTransient(err) || attempt >= policy.Retries {
			return err
		}

		delay := policy.Delay(attempt)
		if policy.Jitter && delay > 0 {
			delay -= time.Duration(e.random() * float64(delay) / 2)
		}

		// O tempo limite só é verificado entre tentativas; uma query em andamento não é interrompida
		if !deadline.IsZero() && e.now().Add(delay).After(deadline) {
			return err
		}

		getMetrics().retriesTotal.Inc()
		e.onRetry(attempt+1, delay, err)

		if waitErr := e.sleep(ctx, delay); waitErr != nil {
			return &AbortedError{Attempt: attempt + 1, Err: err}
		}
	}
}

// Query é a versão de Execute para operações que devolvem um valor
func Query[T any](ctx context.Context, e *Executor, op func(ctx context.Context) (T, error), opts ...ExecOption) (T, error) {
	var result T
	err := e.Execute(ctx, func(ctx context.Context) error {
		value, err := op(ctx)
		if err != nil {
			return err
		}
		result = value
		return nil
	}, opts...)
	return result, err
}

// Fragmentos de mensagem de falhas de conexão reconhecidas como transitórias
var transientMessages = []string{
	"connection reset",
	"timeout",
	"timed out",
	"no route to host",
	"broken pipe",
	"connection refused",
	"connection terminated unexpectedly",
	"terminating connection due to administrator command",
}

// IsTransient classifica o erro como falha de conexão passível de nova tentativa.
// Violações de restrição, erros de sintaxe e demais erros estruturais nunca são repetidos.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == "57P01", pqErr.Code == "57P02", pqErr.Code == "57P03":
			return true
		case strings.HasPrefix(string(pqErr.Code), "08"):
			return true
		}
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	for _, errno := range []syscall.Errno{
		syscall.ECONNRESET,
		syscall.ECONNREFUSED,
		syscall.ECONNABORTED,
		syscall.EHOSTUNREACH,
		syscall.ENETUNREACH,
		syscall.EPIPE,
		syscall.ETIMEDOUT,
	} {
		if errors.Is(err, errno) {
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	for _, fragment := range transientMessages {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func logRetry(attempt int, delay time.Duration, err error) {
	logrus.WithFields(logrus.Fields{
		"attempt": attempt,
		"delay":   delay.String(),
		"error":   err.Error(),
	}).Warn("Falha transitória no banco, nova tentativa agendada")
}
