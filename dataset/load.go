package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ulikunitz/xz"
	"github.com/xuri/excelize/v2"
)

// Load reads tables from path. A directory yields one table per CSV file in
// it, an .xlsx workbook one table per sheet, and a .csv or .csv.xz file a
// single table named after the file.
func Load(path string) ([]Table, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat input: %w", err)
	}
	if info.IsDir() {
		return LoadDir(path)
	}

	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".xlsx"), strings.HasSuffix(lower, ".xlsm"):
		return LoadWorkbook(path)
	case strings.HasSuffix(lower, ".csv"), strings.HasSuffix(lower, ".csv.xz"):
		t, err := LoadCSV(path)
		if err != nil {
			return nil, err
		}
		return []Table{t}, nil
	default:
		return nil, fmt.Errorf("unsupported input %q (want .xlsx, .csv, .csv.xz or a directory)", path)
	}
}

// LoadWorkbook returns one table per sheet, in workbook order. The first row
// of each sheet is the header. Cell values are read raw so number formats
// like currency do not leak into the prices.
func LoadWorkbook(path string) ([]Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var tables []Table
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		tables = append(tables, fromRecords(sheet, rows))
	}
	return tables, nil
}

// LoadCSV reads a single CSV file, transparently decompressing .xz.
func LoadCSV(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(strings.ToLower(path), ".xz") {
		xr, err := xz.NewReader(f)
		if err != nil {
			return Table{}, fmt.Errorf("xz %s: %w", path, err)
		}
		r = xr
	}
	return ReadCSV(r, tableName(path))
}

// ReadCSV parses CSV with a header row. Ragged rows are accepted.
func ReadCSV(r io.Reader, name string) (Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("parse csv %s: %w", name, err)
	}
	return fromRecords(name, records), nil
}

// LoadDir loads every .csv and .csv.xz file in dir, sorted by name. Two
// files naming the same asset, such as AAPL.csv and AAPL.csv.xz, are an
// error.
func LoadDir(dir string) ([]Table, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		lower := strings.ToLower(e.Name())
		if strings.HasSuffix(lower, ".csv") || strings.HasSuffix(lower, ".csv.xz") {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	seen := make(map[string]string, len(paths))
	for _, p := range paths {
		name := tableName(p)
		if prev, ok := seen[name]; ok {
			return nil, fmt.Errorf("duplicate asset %q: %s and %s", name, filepath.Base(prev), filepath.Base(p))
		}
		seen[name] = p
	}

	tables := make([]Table, 0, len(paths))
	for _, p := range paths {
		t, err := LoadCSV(p)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

func tableName(path string) string {
	base := filepath.Base(path)
	lower := strings.ToLower(base)
	for _, ext := range []string{".csv.xz", ".csv"} {
		if strings.HasSuffix(lower, ext) {
			return base[:len(base)-len(ext)]
		}
	}
	return base
}
