package domain

import "time"

// MaturityState indica o quanto as métricas de um registro ainda podem mudar
type MaturityState string

const (
	MaturityPreliminary MaturityState = "preliminary"
	MaturityMaturing    MaturityState = "maturing"
	MaturityStable      MaturityState = "stable"
)

// QualityEvaluation é o registro de auditoria de qualidade. Apenas inserido,
// nunca atualizado ou removido.
type QualityEvaluation struct {
	ID                  int64         `json:"id,omitempty"`
	SourceTable         string        `json:"sourceTable"`
	RecordID            string        `json:"recordId"`
	AccountID           int64         `json:"accountId,omitempty"`
	MaturityState       MaturityState `json:"maturityState"`
	ConfidenceScore     float64       `json:"confidenceScore"`
	CompletenessScore   float64       `json:"completenessScore"`
	ConsistencyScore    float64       `json:"consistencyScore"`
	PreviousValue       Values        `json:"previousValue"`
	CurrentValue        Values        `json:"currentValue"`
	ChangePercentage    float64       `json:"changePercentage"`
	IsSignificantChange bool          `json:"isSignificantChange"`
	Timestamp           time.Time     `json:"timestamp"`
}
