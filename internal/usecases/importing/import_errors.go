package importing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vfg2006/traffic-insights-import/pkg/apiErrors"
)

var (
	ErrUnknownSourceType = errors.New("tipo de dado não registrado")
	ErrInvalidScope      = errors.New("clientId inválido")
	ErrMissingFile       = errors.New("arquivo não informado")
	ErrUnreadableFile    = errors.New("arquivo ilegível")
	ErrMissingColumns    = errors.New("colunas obrigatórias ausentes")
)

// Códigos devolvidos à API
const (
	CodeInvalidRequest = apiErrors.ErrImportInvalid
	CodeMissingColumns = apiErrors.ErrImportMissingColumns
	CodeUnreadableFile = apiErrors.ErrImportUnreadableFile
)

// ValidationError é o erro fatal anterior ao processamento das linhas. Carrega
// todas as violações encontradas de uma só vez.
type ValidationError struct {
	Err        error
	Code       string
	Violations []string
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("importação inválida: %s", strings.Join(e.Violations, "; "))
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func newValidationError(code string, errs []error, violations []string) *ValidationError {
	return &ValidationError{
		Err:        errors.Join(errs...),
		Code:       code,
		Violations: violations,
	}
}
