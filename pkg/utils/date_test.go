package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReportDate(t *testing.T) {
	want := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	for _, raw := range []string{"2024-01-15", "2024/01/15", "15/01/2024", "Jan 15, 2024", "January 15, 2024", "20240115"} {
		got, err := ParseReportDate(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := ParseReportDate("ontem")
	assert.Error(t, err)

	_, err = ParseReportDate(" ")
	assert.Error(t, err)
}
