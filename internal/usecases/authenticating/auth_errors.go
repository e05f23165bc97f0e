package authenticating

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidToken = errors.New("token inválido")
	ErrExpiredToken = errors.New("token expirado")
	ErrMissingKey   = errors.New("chave de assinatura não configurada")
)

// AuthError é um erro com contexto adicional para autenticação
type AuthError struct {
	Err     error  // Erro base
	Code    string // Código de erro para API
	Details string // Detalhes adicionais
}

func (e *AuthError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// NewAuthError cria um novo erro de autenticação
func NewAuthError(baseErr error, code string, details string) *AuthError {
	return &AuthError{
		Err:     baseErr,
		Code:    code,
		Details: details,
	}
}
