package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateID()
		assert.Len(t, id, idLength)
		assert.Empty(t, strings.Trim(id, characters), "caracteres fora do alfabeto em %s", id)
		assert.False(t, seen[id], "id repetido %s", id)
		seen[id] = true
	}
}
