package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/tbourn/elix-bot/internal/domain"
)

func entry(name string, price int64) domain.CatalogEntry {
	return domain.CatalogEntry{Name: name, Price: decimal.NewFromInt(price)}
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp: %v", err)
	}
	return p
}

func writeXLSX(t *testing.T, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, r := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cellRef, &r); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	p := filepath.Join(t.TempDir(), "prices.xlsx")
	if err := f.SaveAs(p); err != nil {
		t.Fatalf("save xlsx: %v", err)
	}
	return p
}

func assertEntries(t *testing.T, got, want []domain.CatalogEntry) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("len = %d; want %d (%+v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i].Name != want[i].Name || !got[i].Price.Equal(want[i].Price) {
			t.Fatalf("entry %d = %s/%s; want %s/%s", i, got[i].Name, got[i].Price, want[i].Name, want[i].Price)
		}
	}
}

func TestNew_ValidatesEntries(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
	if _, err := New([]domain.CatalogEntry{entry("  ", 10)}); err == nil {
		t.Fatalf("expected error for blank name")
	}
	if _, err := New([]domain.CatalogEntry{entry("ОАК", 300), entry("ОАК ", 310)}); err == nil {
		t.Fatalf("expected error for duplicate name")
	}
	if _, err := New([]domain.CatalogEntry{entry("ОАК", -1)}); err == nil {
		t.Fatalf("expected error for negative price")
	}

	s, err := New([]domain.CatalogEntry{entry(" ОАК ", 300), entry("ТТГ", 250)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("Len = %d; want 2", s.Len())
	}
	got, ok := s.Lookup("ОАК")
	if !ok || !got.Price.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("Lookup(ОАК) = %+v, %v", got, ok)
	}

	// Entries returns a copy.
	es := s.Entries()
	es[0].Name = "mutated"
	if s.Entries()[0].Name != "ОАК" {
		t.Fatalf("Entries must not expose internal slice")
	}
}

func TestParsePrice(t *testing.T) {
	cases := []struct{ in, want string }{
		{"1200", "1200"},
		{"1 200", "1200"},
		{"1200,50", "1200.5"},
		{"1\u00a0200 ₽", "1200"},
		{"350 руб.", "350"},
		{" 99.90 ", "99.9"},
	}
	for _, tc := range cases {
		got, err := ParsePrice(tc.in)
		if err != nil {
			t.Errorf("ParsePrice(%q) error: %v", tc.in, err)
			continue
		}
		if got.String() != tc.want {
			t.Errorf("ParsePrice(%q) = %s; want %s", tc.in, got.String(), tc.want)
		}
	}
	for _, bad := range []string{"", "бесплатно", "12a"} {
		if _, err := ParsePrice(bad); err == nil {
			t.Errorf("ParsePrice(%q) expected error", bad)
		}
	}
}

func TestFromRows_HeaderDetection_SkipsAndDuplicates(t *testing.T) {
	rows := [][]string{
		{"Код", "Цена", "Название анализа"},
		{"A1", "300", "ОАК"},
		{"", "", "Гормоны"}, // section caption without price
		{"A2", "250", "ТТГ"},
		{"A3", "999", "ОАК"}, // duplicate keeps the first
	}
	s, rep, err := FromRows(rows)
	if err != nil {
		t.Fatalf("FromRows: %v", err)
	}
	want := []domain.CatalogEntry{entry("ОАК", 300), entry("ТТГ", 250)}
	assertEntries(t, s.Entries(), want)
	if rep.Rows != 4 || rep.Skipped != 1 || len(rep.Duplicates) != 1 || rep.Duplicates[0] != "ОАК" {
		t.Fatalf("unexpected report: %+v", rep)
	}
}

func TestFromRows_NoHeader_AndUnknownCaption(t *testing.T) {
	s, _, err := FromRows([][]string{{"ОАК", "300"}, {"ТТГ", "250"}})
	if err != nil || s.Len() != 2 {
		t.Fatalf("headerless rows: len=%v err=%v", s, err)
	}
	s, _, err = FromRows([][]string{{"Услуга", "Руб"}, {"ОАК", "300"}})
	if err != nil || s.Len() != 1 {
		t.Fatalf("caption row should be skipped: %v %v", s, err)
	}
}

func TestFromRows_BadPriceIsAnError(t *testing.T) {
	_, _, err := FromRows([][]string{{"Название анализа", "Цена"}, {"ОАК", "дорого"}})
	if err == nil || !strings.Contains(err.Error(), "row 2") {
		t.Fatalf("expected row-scoped error, got %v", err)
	}
}

func TestLoad_CSV_SemicolonAndBOM(t *testing.T) {
	p := writeTemp(t, "prices.csv", "\ufeffНазвание анализа;Цена\nОАК;300\nТТГ;250\nВитамин D (25-OH);\"1 800,00\"\n")
	s, _, err := Load(p)
	if err != nil {
		t.Fatalf("Load csv: %v", err)
	}
	if s.Len() != 3 {
		t.Fatalf("Len = %d; want 3", s.Len())
	}
	vd, ok := s.Lookup("Витамин D (25-OH)")
	if !ok || vd.Price.String() != "1800" {
		t.Fatalf("vitamin D = %+v, %v", vd, ok)
	}
}

func TestLoad_XLSX(t *testing.T) {
	p := writeXLSX(t, [][]any{
		{"Название анализа", "Цена"},
		{"ОАК", 300},
		{"ТТГ", 250},
	})
	s, _, err := Load(p)
	if err != nil {
		t.Fatalf("Load xlsx: %v", err)
	}
	want := []domain.CatalogEntry{entry("ОАК", 300), entry("ТТГ", 250)}
	assertEntries(t, s.Entries(), want)
}

func TestLoad_TwiceIsIdentical(t *testing.T) {
	p := writeTemp(t, "prices.csv", "Название анализа,Цена\nОАК,300\nТТГ,250\nФерритин,640\n")
	a, _, err := Load(p)
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	b, _, err := Load(p)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	assertEntries(t, b.Entries(), a.Entries())
}

func TestLoad_Errors(t *testing.T) {
	if _, _, err := Load(filepath.Join(t.TempDir(), "missing.xlsx")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if _, _, err := Load(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Fatalf("expected error for missing csv")
	}
	if _, _, err := Load(writeTemp(t, "prices.txt", "ОАК,300")); err == nil {
		t.Fatalf("expected error for unsupported extension")
	}
	if _, _, err := Load(writeTemp(t, "empty.csv", "")); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
}
