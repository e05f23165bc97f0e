package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuality_MaturityDaysBySource(t *testing.T) {
	q := Quality{MaturityDays: []string{"search_console_daily=3", " ads_daily = 10 ", "campaign_performance=abc", "sem_valor", "x=-2"}}

	got := q.MaturityDaysBySource()

	assert.Equal(t, map[string]int{"search_console_daily": 3, "ads_daily": 10}, got)
}

func TestQuality_VarianceThresholdBySource(t *testing.T) {
	q := Quality{VarianceThreshold: []string{"ads_daily=12.5", "search_console_daily=", "=4"}}

	got := q.VarianceThresholdBySource()

	assert.Equal(t, map[string]float64{"ads_daily": 12.5}, got)
}
