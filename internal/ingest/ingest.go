// Package ingest parses uploaded review files (CSV, JSON, XLSX) into
// header-keyed records ready for normalization.
package ingest

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ablackman/reviewpulse/internal/review"
)

// Load parses the named upload into normalized reviews. The format is
// chosen by file extension; unknown extensions are an error.
func Load(filename string, r io.Reader) ([]review.Review, error) {
	records, err := Parse(filename, r)
	if err != nil {
		return nil, err
	}
	return review.NormalizeAll(records), nil
}

// Parse returns one map per row, keyed by header name.
func Parse(filename string, r io.Reader) ([]map[string]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return parseJSON(r)
	case ".csv":
		return parseCSV(r)
	case ".xlsx":
		return parseXLSX(r)
	default:
		// Legacy .xls (OLE compound files) lands here too: excelize only
		// reads OOXML archives.
		return nil, fmt.Errorf("unsupported file type %q (expected .csv, .json or .xlsx)", filepath.Ext(filename))
	}
}

func parseJSON(r io.Reader) ([]map[string]string, error) {
	var rows []map[string]any
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	out := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		record := make(map[string]string, len(row))
		for key, value := range row {
			record[key] = stringifyValue(value)
		}
		out = append(out, record)
	}
	return out, nil
}

func parseCSV(r io.Reader) ([]map[string]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
		if i == 0 {
			headers[i] = strings.TrimPrefix(headers[i], "\uFEFF")
		}
	}

	var out []map[string]string
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		if isBlankRow(rec) {
			continue
		}
		record := make(map[string]string, len(headers))
		for i, header := range headers {
			if i < len(rec) {
				record[header] = strings.TrimSpace(rec[i])
			}
		}
		out = append(out, record)
	}
	return out, nil
}

// parseXLSX reads the first sheet; the first row carries the headers.
func parseXLSX(r io.Reader) ([]map[string]string, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	var out []map[string]string
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		record := make(map[string]string, len(headers))
		for i, header := range headers {
			if header == "" {
				continue
			}
			if i < len(row) {
				record[header] = strings.TrimSpace(row[i])
			}
		}
		out = append(out, record)
	}
	return out, nil
}

func isBlankRow(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func stringifyValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}
