package tabular

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Quantidade de linhas usadas para detectar o separador
const sampleLines = 20

var delimiters = []rune{',', ';', '\t'}

type csvSource struct {
	file *os.File
	csv  *csv.Reader
}

func openCSV(path string) (rowSource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	cr, err := newCSVReader(file)
	if err != nil {
		_ = file.Close()
		return nil, err
	}

	return &csvSource{file: file, csv: cr}, nil
}

// newCSVReader decodifica UTF-8 (com ou sem BOM) e UTF-16 com BOM, como gerado por
// algumas plataformas de anúncios, e detecta o separador pelas primeiras linhas
func newCSVReader(r io.Reader) (*csv.Reader, error) {
	decoded := bufio.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))

	var sample strings.Builder
	for i := 0; i < sampleLines; i++ {
		line, err := decoded.ReadString('\n')
		sample.WriteString(line)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}

	cr := csv.NewReader(io.MultiReader(strings.NewReader(sample.String()), decoded))
	cr.Comma = detectDelimiter(sample.String())
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	return cr, nil
}

// detectDelimiter escolhe o separador que mais aparece em uma única linha da amostra
func detectDelimiter(sample string) rune {
	best, bestCount := ',', 0
	for _, line := range strings.Split(sample, "\n") {
		for _, d := range delimiters {
			if count := strings.Count(line, string(d)); count > bestCount {
				best, bestCount = d, count
			}
		}
	}
	return best
}

func (s *csvSource) next() ([]string, error) {
	row, err := s.csv.Read()
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return nil, fmt.Errorf("%w: %w", ErrMalformedRow, err)
	}
	return row, err
}

func (s *csvSource) close() error {
	return s.file.Close()
}
