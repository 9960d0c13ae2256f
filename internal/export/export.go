// Package export writes the filtered transaction list as CSV or XLSX.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"financas/internal/core"
)

// Format selects the file type of an export.
type Format string

const (
	CSV  Format = "csv"
	XLSX Format = "xlsx"
)

const sheetName = "Transações"

// Header is the column order of both formats.
var Header = []string{"Data", "Descrição", "Categoria", "Tipo", "Valor"}

// ParseFormat accepts "csv" and "xlsx"; anything else is an error.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case CSV, "":
		return CSV, nil
	case XLSX:
		return XLSX, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

func (f Format) ContentType() string {
	if f == XLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Filename names the download after the export date.
func (f Format) Filename(today core.Date) string {
	return fmt.Sprintf("transacoes_%s.%s", today.ISO(), f)
}

// Write dispatches to WriteCSV or WriteXLSX.
func Write(w io.Writer, f Format, txs []core.Transaction, categories []core.Category) error {
	if f == XLSX {
		return WriteXLSX(w, txs, categories)
	}
	return WriteCSV(w, txs, categories)
}

func kindLabel(k core.Kind) string {
	if k == core.Income {
		return "Receita"
	}
	return "Despesa"
}

// decimalComma renders cents as "1234,56", the form spreadsheet apps in pt-BR parse.
func decimalComma(cents int64) string {
	return strings.Replace(core.DecimalString(cents), ".", ",", 1)
}

func title(t core.Transaction) string {
	if strings.TrimSpace(t.Title) == "" {
		return core.DefaultTitle
	}
	return t.Title
}

// WriteCSV writes a semicolon separated file with a UTF-8 BOM so spreadsheet
// apps detect the encoding.
func WriteCSV(w io.Writer, txs []core.Transaction, categories []core.Category) error {
	if _, err := io.WriteString(w, "\uFEFF"); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}
	idx := core.IndexCategories(categories)

	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, t := range txs {
		record := []string{
			t.Date.Format("02/01/2006"),
			title(t),
			core.CategoryLabel(t.CategoryID, idx),
			kindLabel(t.Kind),
			decimalComma(t.Amount.Cents),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %s: %w", t.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes a single-sheet workbook. Amounts are numeric cells.
func WriteXLSX(w io.Writer, txs []core.Transaction, categories []core.Category) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	moneyFmt := `"R$" #,##0.00`
	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFmt})
	if err != nil {
		return fmt.Errorf("create money style: %w", err)
	}

	for i, h := range Header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sheetName, "A1", "E1", headerStyle); err != nil {
		return err
	}

	idx := core.IndexCategories(categories)
	for i, t := range txs {
		row := i + 2
		values := []any{
			t.Date.Format("02/01/2006"),
			title(t),
			core.CategoryLabel(t.CategoryID, idx),
			kindLabel(t.Kind),
			t.Amount.Major(),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return fmt.Errorf("write row %s: %w", t.ID, err)
			}
		}
	}
	if len(txs) > 0 {
		last := fmt.Sprintf("E%d", len(txs)+1)
		if err := f.SetCellStyle(sheetName, "E2", last, moneyStyle); err != nil {
			return err
		}
	}

	for col, width := range map[string]float64{"A": 12, "B": 32, "C": 20, "D": 10, "E": 14} {
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
