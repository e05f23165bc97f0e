package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

const (
	characters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	idLength   = 10
)

// GenerateID gera um identificador curto para execuções de importação e arquivos temporários.
// Alfabeto e tamanho são fixos e válidos, então a geração não falha.
func GenerateID() string {
	return gonanoid.MustGenerate(characters, idLength)
}
