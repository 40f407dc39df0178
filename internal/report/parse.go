package report

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/JakeFAU/snowcourse-crawler/internal/snow"
)

// HeaderMarker prefixes the header line of the report data block.
const HeaderMarker = "Water Year,"

var (
	// ErrShapeMismatch is returned when a data block line does not carry exactly
	// snow.ReportFieldCount fields.
	ErrShapeMismatch = errors.New("report data block shape mismatch")
	// ErrMalformedValue is returned when a water year or measurement cannot be parsed.
	ErrMalformedValue = errors.New("malformed report value")
)

// missingTokens are cell values read as absent, on top of the empty cell.
var missingTokens = map[string]struct{}{
	"NA":   {},
	"N/A":  {},
	"NaN":  {},
	"nan":  {},
	"null": {},
	"NULL": {},
}

// Parse extracts the wide rows of a raw station report.
// A report without a header marker holds no data and yields (nil, nil).
func Parse(raw []byte, stationID string) ([]snow.WideRow, error) {
	block, ok := dataBlock(raw)
	if !ok {
		return nil, nil
	}

	reader := csv.NewReader(strings.NewReader(block))
	reader.FieldsPerRecord = snow.ReportFieldCount
	records, err := reader.ReadAll()
	if err != nil {
		if errors.Is(err, csv.ErrFieldCount) {
			return nil, fmt.Errorf("%w: %w", ErrShapeMismatch, err)
		}
		return nil, fmt.Errorf("read report block: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	rows := make([]snow.WideRow, 0, len(records)-1)
	for i, record := range records[1:] {
		row, keep, err := parseRecord(record, stationID)
		if err != nil {
			return nil, fmt.Errorf("data row %d: %w", i+1, err)
		}
		if keep {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// dataBlock returns the header line followed by every line after the
// measurement description that sits right below it.
func dataBlock(raw []byte) (string, bool) {
	lines := strings.Split(string(bytes.ReplaceAll(raw, []byte("\r\n"), []byte("\n"))), "\n")
	start := -1
	for i, line := range lines {
		if strings.HasPrefix(line, HeaderMarker) {
			start = i
			break
		}
	}
	if start < 0 {
		return "", false
	}
	kept := []string{lines[start]}
	if start+2 < len(lines) {
		kept = append(kept, lines[start+2:]...)
	}
	return strings.Join(kept, "\n"), true
}

func parseRecord(record []string, stationID string) (snow.WideRow, bool, error) {
	yearText := strings.TrimSpace(record[0])
	if isMissing(yearText) {
		return snow.WideRow{}, false, nil
	}
	year, err := strconv.Atoi(yearText)
	if err != nil {
		return snow.WideRow{}, false, fmt.Errorf("%w: water year %q", ErrMalformedValue, yearText)
	}

	row := snow.WideRow{WaterYear: year, Station: stationID}
	for i, month := range snow.Months {
		base := 1 + i*3
		depth, err := parseMeasurement(record[base+1])
		if err != nil {
			return snow.WideRow{}, false, fmt.Errorf("%s snow depth: %w", month, err)
		}
		swe, err := parseMeasurement(record[base+2])
		if err != nil {
			return snow.WideRow{}, false, fmt.Errorf("%s swe: %w", month, err)
		}
		date := strings.TrimSpace(record[base])
		if isMissing(date) {
			date = ""
		}
		row.Readings[i] = snow.Reading{Date: date, SnowDepthIn: depth, SWEIn: swe}
	}
	return row, true, nil
}

func parseMeasurement(cell string) (*float64, error) {
	cell = strings.TrimSpace(cell)
	if isMissing(cell) {
		return nil, nil
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrMalformedValue, cell)
	}
	return &v, nil
}

func isMissing(cell string) bool {
	if cell == "" {
		return true
	}
	_, ok := missingTokens[cell]
	return ok
}
