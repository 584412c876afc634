package main

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteWorkbook(t *testing.T) {
	joined := JoinTracts(
		[]CEJSTTract{
			{Tract: "01001020100", County: "Autauga County", State: "Alabama", Disadvantaged: true, Population: 1993},
			{Tract: "01001020200", County: "Autauga County", State: "Alabama", Population: math.NaN()},
		},
		[]RaceTract{
			NewRaceTract("01001020100", 100, 20),
			NewRaceTract("01001020200", 200, 180),
		},
	)
	stats := ComputeStatistics(joined, defaultBins(t))

	path := filepath.Join(t.TempDir(), "out", "bins.xlsx")
	require.NoError(t, WriteWorkbook(path, stats, joined))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetBins, sheetTracts}, f.GetSheetList())

	rows, err := f.GetRows(sheetBins)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 22)
	assert.Equal(t, "Non-white (axis)", rows[0][0])
	assert.Equal(t, "10%", rows[3][0])
	assert.Equal(t, "1", rows[3][3])
	assert.Equal(t, "0", rows[3][5])
	assert.Equal(t, "80%", rows[17][0])
	assert.Equal(t, "1", rows[17][4])

	// Empty bins leave the share blank.
	share, err := f.GetCellValue(sheetBins, "F2")
	require.NoError(t, err)
	assert.Empty(t, share)

	joinedCount, err := f.GetCellValue(sheetBins, "D24")
	require.NoError(t, err)
	assert.Equal(t, "2", joinedCount)

	tract, err := f.GetCellValue(sheetTracts, "A2")
	require.NoError(t, err)
	assert.Equal(t, "01001020100", tract)

	pop, err := f.GetCellValue(sheetTracts, "E3")
	require.NoError(t, err)
	assert.Empty(t, pop)
}
