package domain

import "time"

// Outcome é a classificação de uma linha processada
type Outcome string

const (
	OutcomeAdded   Outcome = "added"
	OutcomeUpdated Outcome = "updated"
	OutcomeSkipped Outcome = "skipped"
	OutcomeError   Outcome = "error"
)

// Motivos de descarte de linha
const (
	SkipReasonUnchanged        = "unchanged"
	SkipReasonMissingDimension = "missing_dimension"
	SkipReasonUnknownAccount   = "unknown_account"
)

// RunCounters são os contadores de uma execução de importação
type RunCounters struct {
	Processed int `json:"processed"`
	Added     int `json:"added"`
	Updated   int `json:"updated"`
	Skipped   int `json:"skipped"`
	Errors    int `json:"errors"`
}

// ImportRun é o contexto de uma chamada de importação. Vive apenas em memória
// e é descartado ao final da chamada.
type ImportRun struct {
	ID         string
	SourceType string
	Scope      Scope
	Total      int
	Counters   RunCounters
	StartedAt  time.Time
	Lookup     AccountLookup
}

// Record contabiliza o resultado de uma linha
func (r *ImportRun) Record(outcome Outcome) {
	r.Counters.Processed++
	switch outcome {
	case OutcomeAdded:
		r.Counters.Added++
	case OutcomeUpdated:
		r.Counters.Updated++
	case OutcomeSkipped:
		r.Counters.Skipped++
	default:
		r.Counters.Errors++
	}
}

// Summary monta o bloco final de resultado
func (r *ImportRun) Summary(finishedAt time.Time) *RunSummary {
	return &RunSummary{
		TotalProcessed: r.Counters.Processed,
		Added:          r.Counters.Added,
		Updated:        r.Counters.Updated,
		Skipped:        r.Counters.Skipped,
		Errors:         r.Counters.Errors,
		Timestamp:      finishedAt,
	}
}

// RunSummary é o resultado final de uma importação
type RunSummary struct {
	TotalProcessed int           `json:"totalProcessed"`
	Added          int           `json:"added"`
	Updated        int           `json:"updated"`
	Skipped        int           `json:"skipped"`
	Errors         int           `json:"errors"`
	Timestamp      time.Time     `json:"timestamp"`
	Rollup         *ImportRollup `json:"rollup,omitempty"`
}
