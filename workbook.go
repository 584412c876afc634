package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

const (
	sheetBins   = "Bins"
	sheetTracts = "Tracts"
)

// WriteWorkbook saves the bin statistics and the joined tract table as an
// Excel workbook.
func WriteWorkbook(path string, stats Statistics, joined []JoinedTract) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetBins); err != nil {
		return err
	}

	binHeaders := []string{"Non-white (axis)", "Lower", "Upper", "Tracts", "Disadvantaged", "Disadvantaged share"}
	if err := writeHeader(f, sheetBins, binHeaders, 18); err != nil {
		return err
	}
	for i, b := range stats.Bins {
		row := []any{percentLabel(b.Axis), b.Lower, b.Upper, b.Count, b.Disadvantaged, cellFloat(b.Fraction)}
		if err := writeRow(f, sheetBins, i+2, row); err != nil {
			return err
		}
	}
	if err := writeRow(f, sheetBins, len(stats.Bins)+3, []any{"Joined tracts", nil, nil, stats.Joined}); err != nil {
		return err
	}
	if err := writeRow(f, sheetBins, len(stats.Bins)+4, []any{"Unbinned tracts", nil, nil, stats.Unbinned}); err != nil {
		return err
	}

	if _, err := f.NewSheet(sheetTracts); err != nil {
		return err
	}
	tractHeaders := []string{"Tract", "County", "State", "Disadvantaged", "CEJST population",
		"Census population", "White", "Non-white", "Percent non-white"}
	if err := writeHeader(f, sheetTracts, tractHeaders, 20); err != nil {
		return err
	}
	for i, t := range joined {
		row := []any{t.Tract, t.County, t.State, t.Disadvantaged, cellFloat(t.Population),
			cellFloat(t.CensusPopulation), cellFloat(t.White), cellFloat(t.NonWhite), cellFloat(t.PercentNonWhite)}
		if err := writeRow(f, sheetTracts, i+2, row); err != nil {
			return err
		}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("write workbook: %w", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("write workbook %s: %w", path, err)
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, headers []string, width float64) error {
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
	}
	last, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", last, width)
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

// cellFloat leaves NaN cells blank.
func cellFloat(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}
