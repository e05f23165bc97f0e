package tabular

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var (
	ErrEmptyFile     = errors.New("arquivo vazio")
	ErrHeaderMissing = errors.New("cabeçalho não encontrado")
	ErrUnsupported   = errors.New("formato de arquivo não suportado")

	// ErrMalformedRow afeta apenas a linha atual; a leitura pode continuar
	ErrMalformedRow = errors.New("linha malformada")
)

// Reader percorre as linhas de uma exportação tabular, já posicionado após o cabeçalho
type Reader interface {
	Header() []string
	// Next devolve a próxima linha não vazia, ou io.EOF ao final
	Next() ([]string, error)
	Close() error
}

// rowSource é a origem bruta das linhas (CSV ou planilha)
type rowSource interface {
	next() ([]string, error)
	close() error
}

type reader struct {
	src    rowSource
	header []string
}

// Open detecta o formato pelo conteúdo e abre o leitor adequado. Linhas de título
// acima do cabeçalho (nome do relatório, período) são ignoradas.
func Open(path string) (Reader, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() == 0 {
		return nil, ErrEmptyFile
	}

	mime, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("erro ao detectar o tipo do arquivo: %w", err)
	}

	var src rowSource
	switch {
	case mime.Is(xlsxMIME), mime.Is("application/zip") && strings.EqualFold(filepath.Ext(path), ".xlsx"):
		src, err = openSheet(path)
	case isTextual(mime):
		src, err = openCSV(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, mime.String())
	}
	if err != nil {
		return nil, err
	}

	r := &reader{src: src}
	if err := r.readHeader(); err != nil {
		_ = src.close()
		return nil, err
	}

	return r, nil
}

func isTextual(mime *mimetype.MIME) bool {
	for m := mime; m != nil; m = m.Parent() {
		if m.Is("text/plain") || m.Is("text/csv") || m.Is("text/tab-separated-values") {
			return true
		}
	}
	return false
}

func (r *reader) readHeader() error {
	for {
		row, err := r.src.next()
		if errors.Is(err, io.EOF) {
			return ErrHeaderMissing
		}
		if err != nil {
			return err
		}

		if nonEmptyCells(row) >= 2 {
			r.header = normalizeHeader(row)
			return nil
		}
	}
}

func (r *reader) Header() []string {
	return r.header
}

func (r *reader) Next() ([]string, error) {
	for {
		row, err := r.src.next()
		if err != nil {
			return nil, err
		}
		if nonEmptyCells(row) == 0 {
			continue
		}
		return row, nil
	}
}

func (r *reader) Close() error {
	return r.src.close()
}

// CountRows conta as linhas de dados (sem título, cabeçalho e linhas vazias)
func CountRows(path string) (int, error) {
	r, err := Open(path)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	total := 0
	for {
		_, err := r.Next()
		if errors.Is(err, io.EOF) {
			return total, nil
		}
		if err != nil && !errors.Is(err, ErrMalformedRow) {
			return total, err
		}
		total++
	}
}

func nonEmptyCells(row []string) int {
	count := 0
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			count++
		}
	}
	return count
}

func normalizeHeader(row []string) []string {
	header := make([]string, len(row))
	for i, cell := range row {
		header[i] = strings.TrimSpace(strings.TrimPrefix(cell, "\ufeff"))
	}
	return header
}
