package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/tbourn/elix-bot/internal/domain"
)

// Column captions used by the clinic's price list.
var (
	nameHeaders  = []string{"название анализа", "название", "анализ", "name", "test"}
	priceHeaders = []string{"цена", "стоимость", "price"}
)

// Report describes what the loader did with the source rows. The package
// does not log; callers decide what to surface.
type Report struct {
	Rows       int      // data rows seen (header excluded)
	Skipped    int      // rows without a name or price (section captions, blanks)
	Duplicates []string // names seen again after their first occurrence
}

// Load reads a two-column (name, price) price list from path. The format is
// chosen by extension: .xlsx/.xlsm (first sheet) or .csv. Repeated names keep
// their first occurrence. Loading the same file twice yields identical,
// order-preserving entry sets.
func Load(path string) (*Store, Report, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, Report{}, fmt.Errorf("catalog: open %s: %w", path, err)
		}
		defer f.Close()
		return FromXLSX(f)
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, Report{}, fmt.Errorf("catalog: open %s: %w", path, err)
		}
		defer f.Close()
		return FromCSV(f)
	default:
		return nil, Report{}, fmt.Errorf("catalog: unsupported file type %q", filepath.Ext(path))
	}
}

// FromXLSX builds a Store from the first sheet of an open workbook.
func FromXLSX(f *excelize.File) (*Store, Report, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, Report{}, ErrEmpty
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, Report{}, fmt.Errorf("catalog: read sheet %q: %w", sheets[0], err)
	}
	return FromRows(rows)
}

// FromCSV builds a Store from comma- or semicolon-separated text.
func FromCSV(r io.Reader) (*Store, Report, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, Report{}, err
	}
	text := strings.TrimPrefix(string(b), "\ufeff")

	cr := csv.NewReader(strings.NewReader(text))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	if first, _, _ := strings.Cut(text, "\n"); strings.Count(first, ";") > strings.Count(first, ",") {
		cr.Comma = ';'
	}
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, Report{}, fmt.Errorf("catalog: parse csv: %w", err)
	}
	return FromRows(rows)
}

// FromRows builds a Store from raw spreadsheet rows. A header row is
// recognised by its captions; without one the first two columns are used.
func FromRows(rows [][]string) (*Store, Report, error) {
	var rep Report
	if len(rows) == 0 {
		return nil, rep, ErrEmpty
	}

	nameCol, priceCol, start := 0, 1, 0
	if n, p, ok := headerColumns(rows[0]); ok {
		nameCol, priceCol, start = n, p, 1
	} else if len(rows[0]) > 1 {
		if _, err := ParsePrice(rows[0][1]); err != nil && strings.TrimSpace(rows[0][1]) != "" {
			// Unrecognised caption row.
			start = 1
		}
	}

	entries := make([]domain.CatalogEntry, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	for i := start; i < len(rows); i++ {
		rep.Rows++
		row := rows[i]
		name := cell(row, nameCol)
		rawPrice := cell(row, priceCol)
		if name == "" || rawPrice == "" {
			rep.Skipped++
			continue
		}
		price, err := ParsePrice(rawPrice)
		if err != nil {
			return nil, rep, fmt.Errorf("catalog: row %d (%q): %w", i+1, name, err)
		}
		if _, dup := seen[name]; dup {
			rep.Duplicates = append(rep.Duplicates, name)
			continue
		}
		seen[name] = struct{}{}
		entries = append(entries, domain.CatalogEntry{Name: name, Price: price})
	}

	s, err := New(entries)
	return s, rep, err
}

// ParsePrice accepts the notations found in hand-maintained price lists:
// "1200", "1 200", "1200,50", "1 200.50 ₽", "350 руб.".
func ParsePrice(s string) (decimal.Decimal, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, junk := range []string{"₽", "руб.", "руб", "р.", "rub", "\u00a0", "\u202f", " "} {
		s = strings.ReplaceAll(s, junk, "")
	}
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" {
		return decimal.Zero, errors.New("empty price")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid price %q", s)
	}
	return d, nil
}

func headerColumns(row []string) (nameCol, priceCol int, ok bool) {
	nameCol, priceCol = -1, -1
	for i, c := range row {
		c = strings.ToLower(strings.TrimSpace(c))
		if nameCol < 0 && containsString(nameHeaders, c) {
			nameCol = i
		}
		if priceCol < 0 && containsString(priceHeaders, c) {
			priceCol = i
		}
	}
	return nameCol, priceCol, nameCol >= 0 && priceCol >= 0
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
