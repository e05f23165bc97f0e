package utils

import (
	"fmt"
	"strings"
	"time"
)

// Formatos de data aceitos nas exportações
var dateLayouts = []string{
	time.DateOnly,
	"2006/01/02",
	"02/01/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"Mon, Jan 2, 2006",
	"20060102",
	time.RFC3339,
}

// ParseReportDate interpreta a data de uma linha exportada, testando os formatos conhecidos
func ParseReportDate(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, fmt.Errorf("data vazia")
	}

	for _, layout := range dateLayouts {
		if date, err := time.Parse(layout, value); err == nil {
			y, m, d := date.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}

	return time.Time{}, fmt.Errorf("formato de data não reconhecido: %q", raw)
}
