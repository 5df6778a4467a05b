// internal/sheet/sheet.go
//
// Reads the uploaded SKU table.
// Accepts .xlsx workbooks (first sheet) and CSV files. The header row is
// matched case-insensitively after trimming; "sku" and "url" are required and
// every other column is ignored.
//
// Rows come back trimmed but unfiltered. Row.Valid holds the skip rule so
// the batch driver decides what to do with blanks and "nan" placeholders.

package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/xuri/excelize/v2"
)

// Required column names.
const (
	ColSKU = "sku"
	ColURL = "url"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var (
	ErrMissingColumns    = errors.New("missing required columns")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmpty             = errors.New("file has no header row")
)

// SchemaError reports which required columns were not found in the header.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("file must contain 'sku' and 'url' columns (missing: %s)", strings.Join(e.Missing, ", "))
}

// Is lets errors.Is(err, ErrMissingColumns) match.
func (e *SchemaError) Is(target error) bool { return target == ErrMissingColumns }

// Row is one data line of the table.
type Row struct {
	Line int    `json:"line"` // 1-based line in the source file (header is line 1)
	SKU  string `json:"sku"`
	URL  string `json:"url"`
}

// Valid reports whether the row should be processed: both fields present
// and the URL is not a "nan" placeholder left behind by spreadsheet exports.
func (r Row) Valid() bool {
	return r.SKU != "" && r.URL != "" && !strings.EqualFold(r.URL, "nan")
}

// Read parses an uploaded table. name is the client-side filename and is only
// consulted when content sniffing is inconclusive.
func Read(r io.Reader, name string) ([]Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	records, err := records(data, name)
	if err != nil {
		return nil, err
	}
	return fromRecords(records)
}

// records decodes the raw upload into a grid of cells.
func records(data []byte, name string) ([][]string, error) {
	mt := mimetype.Detect(data)
	ext := strings.ToLower(filepath.Ext(name))

	switch {
	case mt.Is(xlsxMIME), mt.Is("application/zip") && ext == ".xlsx":
		return readXLSX(data)
	case strings.HasPrefix(mt.String(), "text/"):
		return readCSV(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, mt.String())
	}
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmpty
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func readCSV(data []byte) ([][]string, error) {
	cr := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return rows, nil
}

// fromRecords resolves the header and maps every following record to a Row.
func fromRecords(records [][]string) ([]Row, error) {
	if len(records) == 0 {
		return nil, ErrEmpty
	}
	header := readHeader(records[0])

	var missing []string
	for _, col := range []string{ColSKU, ColURL} {
		if _, ok := header[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}

	out := make([]Row, 0, len(records)-1)
	for i, rec := range records[1:] {
		out = append(out, Row{
			Line: i + 2,
			SKU:  valueAt(header, rec, ColSKU),
			URL:  valueAt(header, rec, ColURL),
		})
	}
	return out, nil
}

// readHeader maps normalised column names to their index. The first
// occurrence wins when a name repeats.
func readHeader(row []string) map[string]int {
	header := make(map[string]int, len(row))
	for idx, name := range row {
		key := strings.TrimSpace(strings.ToLower(name))
		if _, dup := header[key]; !dup {
			header[key] = idx
		}
	}
	return header
}

func valueAt(header map[string]int, row []string, key string) string {
	idx, ok := header[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
