// Package importer reads batch quote sheets (CSV and Excel) and flat part
// profiles (DXF). Sheets get automatic delimiter detection, flexible column
// mapping and case-insensitive header recognition.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/piwi3910/partquote/internal/model"
	"github.com/xuri/excelize/v2"
)

// ImportResult holds the results of a batch sheet import.
type ImportResult struct {
	Requests []model.QuoteRequest
	Errors   []string
	Warnings []string
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	File      int
	Material  int
	Quantity  int
	Finish    int
	Tolerance int
	LeadTime  int
	Process   int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"file":      {"file", "path", "model", "part", "part file", "filename", "drawing"},
	"material":  {"material", "mat", "alloy", "grade"},
	"quantity":  {"quantity", "qty", "count", "num", "amount", "pcs", "pieces"},
	"finish":    {"finish", "surface", "surface finish", "coating"},
	"tolerance": {"tolerance", "tol", "tolerance class"},
	"lead_time": {"lead time", "lead_time", "leadtime", "lead", "delivery"},
	"process":   {"process", "method", "manufacturing process"},
}

// DetectCSVDelimiter determines the most likely CSV delimiter. It tries
// comma, semicolon, tab and pipe; the one that produces the most consistent
// multi-column rows wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}
		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}
		if weighted := score*10 + firstCols; weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}
	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping. It
// returns a positional mapping (file, material, quantity, finish, tolerance,
// lead time, process) and false when the row is not a header.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{File: -1, Material: -1, Quantity: -1, Finish: -1, Tolerance: -1, LeadTime: -1, Process: -1}
	slots := map[string]*int{
		"file":      &mapping.File,
		"material":  &mapping.Material,
		"quantity":  &mapping.Quantity,
		"finish":    &mapping.Finish,
		"tolerance": &mapping.Tolerance,
		"lead_time": &mapping.LeadTime,
		"process":   &mapping.Process,
	}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized == alias {
					isHeader = true
					if slot := slots[role]; *slot == -1 {
						*slot = i
					}
				}
			}
		}
	}

	if !isHeader {
		return ColumnMapping{File: 0, Material: 1, Quantity: 2, Finish: 3, Tolerance: 4, LeadTime: 5, Process: 6}, false
	}
	return mapping, true
}

// getCell safely retrieves a cell value by column index.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseRow extracts a QuoteRequest from a row. It returns the request, any
// error message and any warnings.
func parseRow(row []string, mapping ColumnMapping, rowLabel string) (model.QuoteRequest, string, []string) {
	req := model.QuoteRequest{
		File:     getCell(row, mapping.File),
		Material: getCell(row, mapping.Material),
		Finish:   getCell(row, mapping.Finish),
	}
	if req.File == "" {
		return model.QuoteRequest{}, fmt.Sprintf("%s: Missing file", rowLabel), nil
	}

	req.Quantity = 1
	if qtyStr := getCell(row, mapping.Quantity); qtyStr != "" {
		qty, err := strconv.Atoi(qtyStr)
		if err != nil {
			// Excel may hand back integral numbers as "5.0".
			f, ferr := strconv.ParseFloat(qtyStr, 64)
			if ferr != nil || f != float64(int(f)) {
				return model.QuoteRequest{}, fmt.Sprintf("%s: Invalid quantity '%s'", rowLabel, qtyStr), nil
			}
			qty = int(f)
		}
		if qty <= 0 {
			return model.QuoteRequest{}, fmt.Sprintf("%s: Quantity must be positive", rowLabel), nil
		}
		req.Quantity = qty
	}

	var warnings []string
	if s := strings.ToLower(getCell(row, mapping.Tolerance)); s != "" {
		if tol, ok := model.ParseToleranceClass(s); ok {
			req.Tolerance = string(tol)
		} else {
			warnings = append(warnings, fmt.Sprintf("%s: Unknown tolerance '%s', defaulting to standard", rowLabel, s))
		}
	}
	if s := strings.ToLower(getCell(row, mapping.LeadTime)); s != "" {
		if lt, ok := model.ParseLeadTime(s); ok {
			req.LeadTime = string(lt)
		} else {
			warnings = append(warnings, fmt.Sprintf("%s: Unknown lead time '%s', defaulting to standard", rowLabel, s))
		}
	}
	if s := strings.ToLower(getCell(row, mapping.Process)); s != "" {
		if p, ok := model.ParseProcess(s); ok {
			req.Process = string(p)
		} else {
			warnings = append(warnings, fmt.Sprintf("%s: Unknown process '%s', using the recommendation", rowLabel, s))
		}
	}
	return req, "", warnings
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportCSV imports quote requests from a CSV file. Relative part paths are
// resolved against the sheet's directory.
func ImportCSV(path string) ImportResult {
	return importFile(path, readCSVFile)
}

// ImportExcel imports quote requests from the first non-empty sheet of a
// workbook.
func ImportExcel(path string) ImportResult {
	return importFile(path, readExcelFile)
}

// ImportCSVFromReader imports quote requests with a known delimiter.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	records, err := readCSV(reader, delimiter)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot read CSV: %v", err)}}
	}
	return importFromRows(records, "Line", nil)
}

// rowSource loads the raw cells of a sheet file. label names a row in
// messages ("Line" or "Row").
type rowSource func(path string) (rows [][]string, label string, warnings []string, err error)

func importFile(path string, read rowSource) ImportResult {
	rows, label, warnings, err := read(path)
	if err != nil {
		return ImportResult{Errors: []string{err.Error()}}
	}
	result := importFromRows(rows, label, warnings)
	resolvePaths(result.Requests, filepath.Dir(path))
	return result
}

var delimiterNames = map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}

func readCSVFile(path string) ([][]string, string, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", nil, fmt.Errorf("cannot open %s: %w", filepath.Base(path), err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, "Line", nil, nil
	}

	delimiter := DetectCSVDelimiter(data)
	var warnings []string
	if name, ok := delimiterNames[delimiter]; ok {
		warnings = append(warnings, fmt.Sprintf("Detected %s delimiter", name))
	}
	rows, err := readCSV(bytes.NewReader(data), delimiter)
	if err != nil {
		return nil, "", nil, fmt.Errorf("cannot read CSV: %w", err)
	}
	return rows, "Line", warnings, nil
}

func readCSV(r io.Reader, delimiter rune) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

func readExcelFile(path string) ([][]string, string, []string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, "", nil, fmt.Errorf("cannot open workbook %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	for i, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, "", nil, fmt.Errorf("cannot read sheet %q: %w", name, err)
		}
		if len(rows) == 0 {
			continue
		}
		var warnings []string
		if i > 0 {
			warnings = append(warnings, fmt.Sprintf("Using sheet %q, earlier sheets are empty", name))
		}
		return rows, "Row", warnings, nil
	}
	return nil, "Row", nil, nil
}

// ImportSheet dispatches on the file extension.
func ImportSheet(path string) ImportResult {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xls":
		return ImportExcel(path)
	default:
		return ImportCSV(path)
	}
}

func resolvePaths(reqs []model.QuoteRequest, dir string) {
	for i := range reqs {
		if !filepath.IsAbs(reqs[i].File) {
			reqs[i].File = filepath.Join(dir, reqs[i].File)
		}
	}
}

// importFromRows is the shared import logic for CSV and Excel data.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{Warnings: initialWarnings}
	if len(rows) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")
		if mapping.File == -1 {
			result.Errors = append(result.Errors, "Required columns not found in header: File")
			return result
		}
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}
		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		req, errMsg, warnings := parseRow(row, mapping, rowLabel)
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		result.Warnings = append(result.Warnings, warnings...)
		result.Requests = append(result.Requests, req)
	}

	if len(result.Requests) == 0 && len(result.Errors) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
	}
	return result
}
