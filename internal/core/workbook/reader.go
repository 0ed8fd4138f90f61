// Package workbook turns uploaded spreadsheets into typed tables.
package workbook

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"credit-service/internal/domain"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"
)

// Load parses an .xlsx or .xls file. Every sheet is kept, in workbook order;
// the first non-blank row of a sheet is its header.
func Load(data []byte, filename string) (*domain.Workbook, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xlsx", ".xlsm":
		return loadXLSX(data)
	case ".xls":
		wb, err := loadXLS(data)
		if err != nil {
			// talvez seja xlsx salvo com extensão .xls
			if wbx, errX := loadXLSX(data); errX == nil {
				return wbx, nil
			}
			return nil, fmt.Errorf("erro ao abrir arquivo .xls: %w", err)
		}
		return wb, nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, ext)
	}
}

func loadXLSX(data []byte) (*domain.Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("erro ao abrir arquivo .xlsx: %w", err)
	}
	defer f.Close()

	wb := &domain.Workbook{}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("erro ao ler aba %s: %w", name, err)
		}
		grid := make([][]domain.Cell, len(rows))
		for i, row := range rows {
			cells := make([]domain.Cell, len(row))
			for j, raw := range row {
				cells[j] = xlsxCell(f, name, i, j, raw)
			}
			grid[i] = cells
		}
		wb.Sheets = append(wb.Sheets, buildTable(name, grid))
	}
	return wb, nil
}

// xlsxCell keeps numeric cells numeric so that a stored 1234.56 never goes
// through the thousands-separator cleanup meant for typed text.
func xlsxCell(f *excelize.File, sheet string, row, col int, raw string) domain.Cell {
	if strings.TrimSpace(raw) == "" {
		return domain.Cell{}
	}
	axis, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return domain.TextCell(raw)
	}
	cellType, err := f.GetCellType(sheet, axis)
	if err != nil {
		return domain.TextCell(raw)
	}
	switch cellType {
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return domain.NumberCell(n)
		}
	}
	return domain.TextCell(raw)
}

func loadXLS(data []byte) (*domain.Workbook, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	wb := &domain.Workbook{}
	for _, sheet := range workbook.GetSheets() {
		var grid [][]domain.Cell
		for _, row := range sheet.GetRows() {
			var cells []domain.Cell
			for _, col := range row.GetCols() {
				cells = append(cells, xlsCell(col.GetType(), col.GetString(), col.GetFloat64()))
			}
			grid = append(grid, cells)
		}
		wb.Sheets = append(wb.Sheets, buildTable(sheet.GetName(), grid))
	}
	return wb, nil
}

// xlsCell maps a BIFF record to a cell. Number and RK records are numeric.
func xlsCell(recordType, text string, number float64) domain.Cell {
	if strings.TrimSpace(text) == "" {
		return domain.Cell{}
	}
	if strings.Contains(recordType, "Number") || strings.Contains(recordType, "Rk") {
		return domain.NumberCell(number)
	}
	return domain.TextCell(text)
}

func buildTable(name string, grid [][]domain.Cell) domain.RawTable {
	table := domain.RawTable{Name: name}

	header := -1
	for i, row := range grid {
		if !blankRow(row) {
			header = i
			break
		}
	}
	if header < 0 {
		return table
	}

	table.Columns = NormalizeHeaders(grid[header])
	for _, cells := range grid[header+1:] {
		if blankRow(cells) {
			continue
		}
		row := make(domain.Row, len(table.Columns))
		for j, col := range table.Columns {
			if j < len(cells) {
				row[col] = cells[j]
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

// NormalizeHeaders upper-cases and trims header cells. Blank headers become
// "UNNAMED: <index>" and repeated ones get ".1", ".2" suffixes.
func NormalizeHeaders(cells []domain.Cell) []string {
	columns := make([]string, len(cells))
	seen := make(map[string]int, len(cells))
	for i, cell := range cells {
		h := strings.ToUpper(strings.TrimSpace(cell.String()))
		if h == "" {
			h = fmt.Sprintf("UNNAMED: %d", i)
		}
		if n, dup := seen[h]; dup {
			seen[h] = n + 1
			h = fmt.Sprintf("%s.%d", h, n+1)
		} else {
			seen[h] = 0
		}
		columns[i] = h
	}
	return columns
}

func blankRow(row []domain.Cell) bool {
	for _, c := range row {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}
