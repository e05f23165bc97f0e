// Package repository contém as implementações dos repositórios para acesso aos dados
package repository

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// wrapExecError anexa o código do Postgres à mensagem, preservando o erro original
// para a classificação de falhas transitórias
func wrapExecError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return fmt.Errorf("erro no banco de dados: %w (código: %s)", err, pqErr.Code)
	}
	return fmt.Errorf("erro ao executar a query: %w", err)
}
