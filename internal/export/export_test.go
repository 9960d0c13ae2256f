package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"financas/internal/core"
)

func sample() ([]core.Transaction, []core.Category) {
	txs := []core.Transaction{
		{ID: "1", Date: core.NewDate(2024, 6, 3), Title: "Mercado; semana", CategoryID: 1, Amount: core.Money{Cents: 123456}, Kind: core.Expense},
		{ID: "2", Date: core.NewDate(2024, 6, 5), Title: "", CategoryID: 9, Amount: core.Money{Cents: 500000}, Kind: core.Income},
	}
	cats := []core.Category{{ID: 1, Name: "Alimentação", Kind: core.Expense}}
	return txs, cats
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", CSV, false},
		{"CSV", CSV, false},
		{" xlsx ", XLSX, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestFormat_Filename(t *testing.T) {
	if got := XLSX.Filename(core.NewDate(2024, 6, 10)); got != "transacoes_2024-06-10.xlsx" {
		t.Errorf("Filename() = %q", got)
	}
}

func TestWriteCSV(t *testing.T) {
	txs, cats := sample()
	var buf bytes.Buffer
	if err := WriteCSV(&buf, txs, cats); err != nil {
		t.Fatalf("WriteCSV() error: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "\uFEFF") {
		t.Fatal("missing UTF-8 BOM")
	}
	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(out, "\uFEFF")), "\n")
	want := []string{
		"Data;Descrição;Categoria;Tipo;Valor",
		`03/06/2024;"Mercado; semana";Alimentação;Despesa;1234,56`,
		"05/06/2024;Sem descrição;Category 9;Receita;5000,00",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), out)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestWriteXLSX(t *testing.T) {
	txs, cats := sample()
	var buf bytes.Buffer
	if err := Write(&buf, XLSX, txs, cats); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error: %v", err)
	}
	defer f.Close()

	if got := f.GetSheetName(0); got != sheetName {
		t.Errorf("sheet = %q, want %q", got, sheetName)
	}
	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("GetRows() error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if strings.Join(rows[0], "|") != strings.Join(Header, "|") {
		t.Errorf("header = %v", rows[0])
	}
	if rows[2][1] != core.DefaultTitle || rows[2][2] != "Category 9" || rows[2][3] != "Receita" {
		t.Errorf("row 3 = %v", rows[2])
	}

	raw, err := f.GetCellValue(sheetName, "E2", excelize.Options{RawCellValue: true})
	if err != nil {
		t.Fatalf("GetCellValue() error: %v", err)
	}
	if raw != "1234.56" {
		t.Errorf("E2 raw value = %q, want 1234.56", raw)
	}
}
