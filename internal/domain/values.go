package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Text retorna o valor textual do campo, ou nil quando vazio
func (v Values) Text(name string) *string {
	raw, ok := v[name].(string)
	if !ok {
		return nil
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	return &raw
}

// Decimal retorna o valor numérico do campo; Valid=false representa "sem dado"
func (v Values) Decimal(name string) decimal.NullDecimal {
	switch val := v[name].(type) {
	case decimal.Decimal:
		return decimal.NullDecimal{Decimal: val, Valid: true}
	case decimal.NullDecimal:
		return val
	case *decimal.Decimal:
		if val == nil {
			return decimal.NullDecimal{}
		}
		return decimal.NullDecimal{Decimal: *val, Valid: true}
	}
	return decimal.NullDecimal{}
}

// Date retorna a data do campo
func (v Values) Date(name string) (time.Time, bool) {
	date, ok := v[name].(time.Time)
	return date, ok && !date.IsZero()
}
