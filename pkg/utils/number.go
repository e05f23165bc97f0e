package utils

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrNotNumeric indica que o valor não pôde ser convertido para número
var ErrNotNumeric = errors.New("valor não numérico")

// Marcadores de "sem dado" usados pelas exportações
var noDataTokens = map[string]struct{}{
	"":    {},
	"--":  {},
	"-":   {},
	"n/a": {},
	"na":  {},
	"—":   {},
}

func RoundWithTwoDecimalPlace(f float64) float64 {
	if f == 0 {
		return 0
	}

	return math.Round(f*100) / 100
}

// IsNoData informa se o valor bruto é um marcador de ausência de dado
func IsNoData(raw string) bool {
	_, ok := noDataTokens[strings.ToLower(strings.TrimSpace(raw))]
	return ok
}

// Símbolos de moeda aceitos antes ou depois do valor
var currencyStripper = strings.NewReplacer(
	"R$", "",
	"US$", "",
	"$", "",
	"€", "",
	"£", "",
	"\u00a0", "",
	" ", "",
)

// CleanMetric limpa um valor numérico ou percentual vindo da exportação.
// Marcador de sem dado vira Valid=false; prefixos "<" e ">" são descartados
// (">95%" é armazenado como 95, perdendo a semântica de limite); símbolos de
// moeda, o sinal de porcentagem e os separadores de milhar são removidos.
// O separador decimal é decidido por valor: "1.234,56" e "1,234.56" valem o mesmo.
func CleanMetric(raw string) (decimal.NullDecimal, error) {
	value := strings.TrimSpace(raw)
	if IsNoData(value) {
		return decimal.NullDecimal{}, nil
	}

	value = strings.TrimLeft(value, "<>=")
	value = currencyStripper.Replace(value)
	value = strings.TrimSuffix(value, "%")
	value = normalizeSeparators(value)

	if IsNoData(value) {
		return decimal.NullDecimal{}, nil
	}

	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("%w: %q", ErrNotNumeric, raw)
	}

	return decimal.NullDecimal{Decimal: d, Valid: true}, nil
}

// Inteiro com grupos de milhar separados por ponto ou vírgula ("1.250", "40,000")
var groupedInteger = regexp.MustCompile(`^[+-]?\d{1,3}([.,]\d{3})+$`)

// CleanCount limpa uma contagem (impressões, cliques). Em contagens o ponto seguido
// de três dígitos é sempre milhar, então "1.250" vale 1250 e não 1,25.
func CleanCount(raw string) (decimal.NullDecimal, error) {
	value := strings.TrimSpace(raw)
	if groupedInteger.MatchString(value) {
		value = strings.NewReplacer(".", "", ",", "").Replace(value)
	}
	return CleanMetric(value)
}

// normalizeSeparators devolve o número com "." como separador decimal e sem milhar.
// Com os dois separadores presentes, o último é o decimal. Um separador repetido é
// sempre de milhar. Uma vírgula única seguida de exatamente três dígitos, com parte
// inteira diferente de zero, é de milhar ("1,200"); nos demais casos é decimal ("12,5").
// Um ponto único é sempre decimal.
func normalizeSeparators(value string) string {
	lastDot := strings.LastIndex(value, ".")
	lastComma := strings.LastIndex(value, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			value = strings.ReplaceAll(value, ".", "")
			return strings.Replace(value, ",", ".", 1)
		}
		return strings.ReplaceAll(value, ",", "")

	case lastComma >= 0:
		if strings.Count(value, ",") > 1 {
			return strings.ReplaceAll(value, ",", "")
		}
		integer := strings.TrimLeft(value[:lastComma], "+-")
		fraction := value[lastComma+1:]
		if len(fraction) == 3 && strings.Trim(integer, "0") != "" {
			return strings.Replace(value, ",", "", 1)
		}
		return strings.Replace(value, ",", ".", 1)

	case lastDot >= 0 && strings.Count(value, ".") > 1:
		return strings.ReplaceAll(value, ".", "")
	}

	return value
}

// ToDecimal converte explicitamente qualquer representação numérica
// (texto, inteiros, floats, decimal) para decimal.Decimal
func ToDecimal(v any) (decimal.Decimal, bool) {
	switch val := v.(type) {
	case nil:
		return decimal.Decimal{}, false
	case decimal.Decimal:
		return val, true
	case decimal.NullDecimal:
		return val.Decimal, val.Valid
	case *decimal.Decimal:
		if val == nil {
			return decimal.Decimal{}, false
		}
		return *val, true
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return decimal.Decimal{}, false
		}
		return decimal.NewFromFloat(val), true
	case float32:
		return decimal.NewFromFloat32(val), true
	case int:
		return decimal.NewFromInt(int64(val)), true
	case int32:
		return decimal.NewFromInt32(val), true
	case int64:
		return decimal.NewFromInt(val), true
	case []byte:
		return ToDecimal(string(val))
	case string:
		cleaned, err := CleanMetric(val)
		if err != nil || !cleaned.Valid {
			return decimal.Decimal{}, false
		}
		return cleaned.Decimal, true
	}
	return decimal.Decimal{}, false
}

// NumericEqual compara dois valores numéricos independentemente da representação
// ("1,200" == 1200 == decimal 1200.00). Dois valores ausentes são iguais.
func NumericEqual(a, b any) bool {
	da, okA := ToDecimal(a)
	db, okB := ToDecimal(b)
	if !okA || !okB {
		return okA == okB
	}
	return da.Equal(db)
}
