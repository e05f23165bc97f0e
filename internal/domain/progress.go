package domain

import "time"

// Status do evento de progresso
const (
	ProgressStatusStarted    = "started"
	ProgressStatusProcessing = "processing"
	ProgressStatusCompleted  = "completed"
	ProgressStatusFailed     = "failed"
)

// ProgressEvent é emitido após cada linha e ao final da importação
type ProgressEvent struct {
	Processed int         `json:"processed"`
	Total     int         `json:"total"`
	Status    string      `json:"status"`
	Message   string      `json:"message,omitempty"`
	Completed bool        `json:"completed"`
	Result    *RunSummary `json:"result,omitempty"`
}

// QualityEvent carrega a avaliação de qualidade de uma linha que já existia
type QualityEvent struct {
	Type    string             `json:"type"`
	Metrics *QualityEvaluation `json:"metrics"`
}

// NewQualityEvent monta o evento de qualidade
func NewQualityEvent(q *QualityEvaluation) QualityEvent {
	return QualityEvent{Type: "quality", Metrics: q}
}

// DateRange é o intervalo de datas armazenado
type DateRange struct {
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`
}

// ImportRollup é o resumo atualizado da tabela/conta afetada pela importação
type ImportRollup struct {
	SourceType           string     `json:"sourceType"`
	Table                string     `json:"table"`
	AccountID            *int64     `json:"accountId,omitempty"`
	RowCount             int64      `json:"rowCount"`
	DateRange            DateRange  `json:"dateRange"`
	LastUpdate           *time.Time `json:"lastUpdate"`
	AvgConfidenceScore   *float64   `json:"avgConfidenceScore"`
	AvgCompletenessScore *float64   `json:"avgCompletenessScore"`
	AvgConsistencyScore  *float64   `json:"avgConsistencyScore"`
}
