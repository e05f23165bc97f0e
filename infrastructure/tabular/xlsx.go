package tabular

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// sheetSource lê em streaming a primeira aba da planilha
type sheetSource struct {
	file *excelize.File
	rows *excelize.Rows
}

func openSheet(path string) (rowSource, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("erro ao abrir planilha: %w", err)
	}

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		_ = file.Close()
		return nil, ErrEmptyFile
	}

	rows, err := file.Rows(sheets[0])
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("erro ao ler a aba %s: %w", sheets[0], err)
	}

	return &sheetSource{file: file, rows: rows}, nil
}

func (s *sheetSource) next() ([]string, error) {
	if !s.rows.Next() {
		if err := s.rows.Error(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	return s.rows.Columns()
}

func (s *sheetSource) close() error {
	_ = s.rows.Close()
	return s.file.Close()
}
