package catalog

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/tealeg/xlsx/v2"

	"ecovalley"
	"ecovalley/catalog/storage"
)

// Format is the encoding of a tabular catalog source.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Columns lists the header every tabular source must carry.
var Columns = []string{
	"material_name",
	"energy_per_kg",
	"carbon_per_kg",
	"water_per_kg",
	"cost_per_kg",
	"recyclability",
	"biodegradability",
}

// FormatFromPath picks the format from a file name or object key, defaulting
// to CSV.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return FormatXLSX
	default:
		return FormatCSV
	}
}

// Load reads the raw table from state once and builds the catalog. Any
// failure is an ecovalley.ErrInitialization.
func Load(ctx context.Context, state storage.State, format Format) (*Catalog, error) {
	data, err := state.Load(ctx)
	if err != nil {
		return nil, ecovalley.Initialization("read catalog", err)
	}

	c, err := Parse(data, format)
	if err != nil {
		return nil, err
	}

	slog.Info("CATALOG: Loaded", "materials", c.Len(), "format", format)
	return c, nil
}

// Parse decodes data in the given format.
func Parse(data []byte, format Format) (*Catalog, error) {
	switch format {
	case FormatCSV, "":
		return ParseCSV(data)
	case FormatXLSX:
		return ParseXLSX(data)
	default:
		return nil, ecovalley.Initialization("parse catalog", fmt.Errorf("unsupported format %q", format))
	}
}

// ParseCSV decodes a CSV table with the required Columns header.
func ParseCSV(data []byte) (*Catalog, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.TrimLeadingSpace = true

	dec, err := csvutil.NewDecoder(r)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ecovalley.Initialization("parse catalog", errors.New("empty catalog source"))
		}
		return nil, ecovalley.Initialization("parse catalog header", err)
	}
	dec.DisallowMissingColumns = true

	var records []Record
	for {
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, ecovalley.Initialization("parse catalog row", err)
		}
		records = append(records, rec)
	}

	return New(records)
}

// ParseXLSX decodes the first sheet of a workbook. The first non-empty row is
// the header.
func ParseXLSX(data []byte) (*Catalog, error) {
	wb, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, ecovalley.Initialization("open catalog workbook", err)
	}
	if len(wb.Sheets) == 0 {
		return nil, ecovalley.Initialization("open catalog workbook", errors.New("workbook has no sheets"))
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	var width int
	for _, row := range wb.Sheets[0].Rows {
		if row == nil {
			continue
		}
		cells := make([]string, 0, len(row.Cells))
		blank := true
		for _, cell := range row.Cells {
			v := strings.TrimSpace(cell.Value)
			if v != "" {
				blank = false
			}
			cells = append(cells, v)
		}
		if blank {
			continue
		}
		// Sheets drop trailing empty cells, so rows are squared to the header.
		if width == 0 {
			width = len(cells)
		}
		for len(cells) < width {
			cells = append(cells, "")
		}
		for len(cells) > width && cells[len(cells)-1] == "" {
			cells = cells[:len(cells)-1]
		}
		if err := w.Write(cells); err != nil {
			return nil, ecovalley.Initialization("convert catalog workbook", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, ecovalley.Initialization("convert catalog workbook", err)
	}

	return ParseCSV(buf.Bytes())
}
