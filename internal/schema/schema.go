package schema

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vfg2006/traffic-insights-import/internal/domain"
	"github.com/vfg2006/traffic-insights-import/pkg/utils"
)

// Kind é o tipo de valor de um campo canônico
type Kind int

const (
	KindText Kind = iota
	KindDate
	KindInteger
	KindDecimal
	KindPercent
)

func (k Kind) String() string {
	switch k {
	case KindDate:
		return "date"
	case KindInteger:
		return "integer"
	case KindDecimal:
		return "decimal"
	case KindPercent:
		return "percent"
	}
	return "text"
}

func (k Kind) numeric() bool {
	return k == KindInteger || k == KindDecimal || k == KindPercent
}

// Dispatch indica qual serviço persiste as linhas de um tipo de fonte
type Dispatch int

const (
	DispatchReconcile Dispatch = iota
	DispatchCampaign
)

// Field declara um campo canônico e os cabeçalhos que o alimentam
type Field struct {
	Name     string
	Kind     Kind
	Required bool
	// Derived é calculado a partir de outros campos quando a coluna não existe,
	// por isso não entra na validação de colunas ausentes
	Derived bool
	// Dimension marca dimensões obrigatórias; linhas sem valor são descartadas
	Dimension bool
	Headers   []string
}

// Range é uma faixa de valores declarada para um campo (ainda não aplicada)
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// QualityConfig é a configuração de qualidade de um tipo de fonte
type QualityConfig struct {
	MaturityDays      int              `json:"maturityDays"`
	VarianceThreshold float64          `json:"varianceThreshold"`
	RequiredFields    []string         `json:"requiredFields"`
	ValueRanges       map[string]Range `json:"valueRanges,omitempty"`
}

// MaturityPeriod converte os dias de maturação em duração
func (q QualityConfig) MaturityPeriod() time.Duration {
	return time.Duration(q.MaturityDays) * 24 * time.Hour
}

// Definition é o contrato de um tipo de fonte
type Definition struct {
	SourceType string
	Dispatch   Dispatch
	// Fact é a tabela de fatos simples; nil para fontes com escrita em várias tabelas
	Fact    *domain.FactTable
	Tables  []string
	Fields  []Field
	Quality QualityConfig
}

// FieldAccountName é o campo com o nome de exibição da conta, obrigatório no escopo "all"
const FieldAccountName = "account_name"

// Mapping associa cada campo canônico à coluna do arquivo que o alimenta
type Mapping map[string]int

// Field busca a declaração de um campo canônico
func (d *Definition) Field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// RequiredColumns lista os campos obrigatórios que precisam vir do arquivo
func (d *Definition) RequiredColumns() []string {
	var out []string
	for _, f := range d.Fields {
		if f.Required && !f.Derived {
			out = append(out, f.Name)
		}
	}
	return out
}

// Validate mapeia o cabeçalho para os campos canônicos e devolve todos os campos
// obrigatórios sem coluna correspondente. Cabeçalhos desconhecidos são ignorados.
func (d *Definition) Validate(header []string) (Mapping, []string) {
	byHeader := make(map[string]string)
	for _, f := range d.Fields {
		byHeader[normalizeHeader(f.Name)] = f.Name
		for _, h := range f.Headers {
			byHeader[normalizeHeader(h)] = f.Name
		}
	}

	mapping := make(Mapping)
	for i, raw := range header {
		name, ok := byHeader[normalizeHeader(raw)]
		if !ok {
			continue
		}
		if _, exists := mapping[name]; !exists {
			mapping[name] = i
		}
	}

	var missing []string
	for _, name := range d.RequiredColumns() {
		if _, ok := mapping[name]; !ok {
			missing = append(missing, name)
		}
	}

	return mapping, missing
}

// Map converte uma linha bruta no registro canônico
func (d *Definition) Map(mapping Mapping, line int, row []string) domain.CanonicalRecord {
	fields := make(map[string]string, len(mapping))
	for name, idx := range mapping {
		if idx < len(row) {
			fields[name] = strings.TrimSpace(row[idx])
		}
	}

	return domain.CanonicalRecord{
		Line:        line,
		AccountName: fields[FieldAccountName],
		Fields:      fields,
	}
}

// Convert tipa os valores do registro aplicando as regras de limpeza numérica e
// calcula os campos derivados ausentes
func (d *Definition) Convert(record domain.CanonicalRecord) (domain.Values, error) {
	values := make(domain.Values, len(d.Fields))

	for _, f := range d.Fields {
		raw, ok := record.Fields[f.Name]
		if !ok {
			continue
		}

		switch {
		case f.Kind == KindDate:
			if utils.IsNoData(raw) {
				values[f.Name] = nil
				continue
			}
			date, err := utils.ParseReportDate(raw)
			if err != nil {
				return nil, fmt.Errorf("campo %s: %w", f.Name, err)
			}
			values[f.Name] = date
		case f.Kind.numeric():
			clean := utils.CleanMetric
			if f.Kind == KindInteger {
				clean = utils.CleanCount
			}
			cleaned, err := clean(raw)
			if err != nil {
				return nil, fmt.Errorf("campo %s: %w", f.Name, err)
			}
			if !cleaned.Valid {
				values[f.Name] = nil
				continue
			}
			values[f.Name] = cleaned.Decimal
		default:
			values[f.Name] = raw
		}
	}

	d.derive(values)

	return values, nil
}

func (d *Definition) derive(values domain.Values) {
	for _, f := range d.Fields {
		if !f.Derived {
			continue
		}
		if values.Decimal(f.Name).Valid {
			continue
		}

		switch f.Name {
		case "ctr":
			values[f.Name] = ratio(values.Decimal("clicks"), values.Decimal("impressions"), decimal.NewFromInt(100))
		case "avg_cpc":
			values[f.Name] = ratio(values.Decimal("cost"), values.Decimal("clicks"), decimal.NewFromInt(1))
		}
	}
}

func ratio(numerator, denominator decimal.NullDecimal, scale decimal.Decimal) any {
	if !numerator.Valid || !denominator.Valid || denominator.Decimal.IsZero() {
		return nil
	}
	return numerator.Decimal.Mul(scale).DivRound(denominator.Decimal, 4)
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, "_", " ")
	return strings.Join(strings.Fields(h), " ")
}

// MissingDimensions lista as dimensões obrigatórias sem valor no registro
func (d *Definition) MissingDimensions(values domain.Values) []string {
	var missing []string
	for _, f := range d.Fields {
		if f.Dimension && values.Text(f.Name) == nil {
			missing = append(missing, f.Name)
		}
	}
	return missing
}
