package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/xuri/excelize/v2"

	"shoreline/internal/files"
)

// readRecords returns every row of a delimited or spreadsheet export,
// header included
func readRecords(path string) ([][]string, error) {
	if files.DataExt(filepath.Base(path)) == ".xlsx" {
		return readWorkbook(path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	var r io.Reader = file
	if strings.HasSuffix(strings.ToLower(path), files.CompressedSuffix) {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("open gzip stream %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}

	return readDelimited(r)
}

func readDelimited(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // GIS exports are not always rectangular
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	return records, nil
}

// readWorkbook reads the first sheet of an .xlsx workbook. Compressed
// workbooks are read through gzip first.
func readWorkbook(path string) ([][]string, error) {
	var (
		f   *excelize.File
		err error
	)
	if strings.HasSuffix(strings.ToLower(path), files.CompressedSuffix) {
		file, openErr := os.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("open %s: %w", path, openErr)
		}
		defer file.Close()

		gz, gzErr := gzip.NewReader(file)
		if gzErr != nil {
			return nil, fmt.Errorf("open gzip stream %s: %w", path, gzErr)
		}
		defer gz.Close()
		f, err = excelize.OpenReader(gz)
	} else {
		f, err = excelize.OpenFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}
