package domain

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// Values são os valores tipados de um registro, indexados pelo campo canônico.
// Campos numéricos guardam decimal.Decimal ou nil (sem dado).
type Values map[string]any

// Clone faz uma cópia rasa do mapa
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// CanonicalRecord é a visão de uma linha do arquivo já mapeada para os campos canônicos
type CanonicalRecord struct {
	Line        int               `json:"line"`
	AccountName string            `json:"account_name,omitempty"`
	Fields      map[string]string `json:"fields"`
}

// FactTable descreve uma tabela de fatos simples
type FactTable struct {
	Name       string
	Dimensions []string // Colunas de dimensão da chave natural (além de account_id e date)
	Measures   []string
}

// FactKey é a chave natural de uma linha de fatos
type FactKey struct {
	AccountID  int64
	Date       time.Time
	Dimensions map[string]string
}

// String gera um identificador estável da chave, usado na auditoria de qualidade
func (k FactKey) String() string {
	names := make([]string, 0, len(k.Dimensions))
	for name := range k.Dimensions {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := []string{strconv.FormatInt(k.AccountID, 10), k.Date.Format(time.DateOnly)}
	for _, name := range names {
		parts = append(parts, k.Dimensions[name])
	}
	return strings.Join(parts, "|")
}

// FactRow é uma linha persistida de uma tabela de fatos simples
type FactRow struct {
	ID         int64
	Key        FactKey
	Measures   Values
	ImportedAt time.Time
}
