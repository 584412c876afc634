package main

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultBins(t *testing.T) Bins {
	t.Helper()
	bins, err := NewBins(DefaultBinEdges())
	require.NoError(t, err)
	return bins
}

func TestDefaultBinEdges(t *testing.T) {
	edges := DefaultBinEdges()
	require.Len(t, edges, 22)
	assert.Equal(t, 0.0, edges[0])
	assert.Equal(t, 0.025, edges[1])
	assert.InDelta(t, 0.075, edges[2], 1e-15)
	assert.InDelta(t, 0.975, edges[20], 1e-15)
	assert.Equal(t, 1.0, edges[21])

	for i := 2; i < 21; i++ {
		assert.InDelta(t, 0.05, edges[i]-edges[i-1], 1e-12, "edge %d", i)
	}
}

func TestNewBins_Invalid(t *testing.T) {
	for _, edges := range [][]float64{
		nil,
		{0},
		{0, 0.5, 0.5, 1},
		{0, 0.6, 0.4, 1},
		{0, math.NaN(), 1},
	} {
		_, err := NewBins(edges)
		assert.Error(t, err, "%v", edges)
	}
}

func TestBinsIndex(t *testing.T) {
	bins := defaultBins(t)
	require.Equal(t, 21, bins.Len())

	tests := []struct {
		ratio float64
		want  int
	}{
		{0, 0},
		{0.01, 0},
		{0.025, 0},
		{0.0251, 1},
		{0.075, 1},
		{0.1, 2},
		{0.5, 10},
		{0.8, 16},
		{0.975, 19},
		{0.98, 20},
		{1, 20},
	}
	for _, tt := range tests {
		got, ok := bins.Index(tt.ratio)
		require.True(t, ok, "%v", tt.ratio)
		assert.Equal(t, tt.want, got, "ratio %v", tt.ratio)
		assert.True(t, tt.ratio <= bins.Upper(got), "ratio %v above upper edge", tt.ratio)
		if got > 0 {
			assert.True(t, tt.ratio > bins.Lower(got), "ratio %v not above lower edge", tt.ratio)
		}
	}

	for _, ratio := range []float64{math.NaN(), -0.1, 1.0001, math.Inf(1), math.Inf(-1)} {
		_, ok := bins.Index(ratio)
		assert.False(t, ok, "%v", ratio)
	}
}

func TestBinsAxis(t *testing.T) {
	axis := defaultBins(t).Axis()
	require.Len(t, axis, 21)
	for i, pos := range axis {
		assert.InDelta(t, float64(i)*0.05, pos, 1e-12)
	}
	assert.Equal(t, 1.0, axis[20])
}

func TestJoinTracts(t *testing.T) {
	cejst := []CEJSTTract{
		{Tract: "01001020100", Disadvantaged: true},
		{Tract: "01001020200"},
		{Tract: "01001020300"},
	}
	race := []RaceTract{
		NewRaceTract("01001020200", 200, 180),
		NewRaceTract("01001020100", 100, 20),
		NewRaceTract("1001020300", 50, 50), // unpadded id never matches
		NewRaceTract("02013000100", 10, 10),
	}

	joined := JoinTracts(cejst, race)
	require.Len(t, joined, 2)
	assert.LessOrEqual(t, len(joined), min(len(cejst), len(race)))

	assert.Equal(t, "01001020100", joined[0].Tract)
	assert.True(t, joined[0].Disadvantaged)
	assert.Equal(t, 100.0, joined[0].CensusPopulation)
	assert.InDelta(t, 0.8, joined[0].PercentNonWhite, 1e-12)

	assert.Equal(t, "01001020200", joined[1].Tract)
	assert.InDelta(t, 0.1, joined[1].PercentNonWhite, 1e-12)
}

func TestComputeStatistics_TwoTracts(t *testing.T) {
	cejst := []CEJSTTract{
		{Tract: "01001020100", Disadvantaged: true},
		{Tract: "01001020200", Disadvantaged: false},
	}
	race := []RaceTract{
		NewRaceTract("01001020100", 100, 20),
		NewRaceTract("01001020200", 200, 180),
	}

	stats := ComputeStatistics(JoinTracts(cejst, race), defaultBins(t))
	require.NoError(t, stats.Validate())
	require.Len(t, stats.Bins, 21)
	assert.Equal(t, 2, stats.Joined)
	assert.Zero(t, stats.Unbinned)

	for i, b := range stats.Bins {
		switch i {
		case 2:
			assert.InDelta(t, 0.10, b.Axis, 1e-12)
			assert.Equal(t, 1, b.Count)
			assert.Equal(t, 0.0, b.Fraction)
		case 16:
			assert.InDelta(t, 0.80, b.Axis, 1e-12)
			assert.Equal(t, 1, b.Count)
			assert.Equal(t, 1.0, b.Fraction)
		default:
			assert.Zero(t, b.Count, "bin %d", i)
			assert.True(t, math.IsNaN(b.Fraction), "bin %d", i)
		}
	}

	fractions := stats.Fractions()
	assert.Equal(t, 1.0, fractions[16])
	for i, f := range fractions {
		assert.False(t, math.IsNaN(f), "bin %d", i)
	}
}

func TestComputeStatistics_Partition(t *testing.T) {
	var joined []JoinedTract
	for i := 0; i <= 200; i++ {
		joined = append(joined, JoinedTract{
			CEJSTTract:      CEJSTTract{Disadvantaged: i%3 == 0},
			PercentNonWhite: float64(i) / 200,
		})
	}
	joined = append(joined,
		JoinedTract{PercentNonWhite: math.NaN()},
		JoinedTract{PercentNonWhite: 1.5},
		JoinedTract{PercentNonWhite: -0.2},
	)

	stats := ComputeStatistics(joined, defaultBins(t))
	require.NoError(t, stats.Validate())
	assert.Equal(t, len(joined), stats.Joined)
	assert.Equal(t, 3, stats.Unbinned)

	total := 0
	for _, c := range stats.Counts() {
		total += c
	}
	assert.Equal(t, 201, total)

	for _, b := range stats.Bins {
		if b.Count == 0 {
			continue
		}
		assert.GreaterOrEqual(t, b.Fraction, 0.0)
		assert.LessOrEqual(t, b.Fraction, 1.0)
		assert.InDelta(t, float64(b.Disadvantaged)/float64(b.Count), b.Fraction, 1e-12)
	}
}

func TestStatisticsValidate(t *testing.T) {
	stats := Statistics{
		Joined: 3,
		Bins: []BinStat{
			{Count: 2, Disadvantaged: 1, Fraction: 0.5},
			{Count: 0, Fraction: math.NaN()},
		},
	}
	err := stats.Validate()
	var ce *ComputationError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, -1, ce.Bin)

	stats.Joined = 2
	require.NoError(t, stats.Validate())

	stats.Bins[0].Fraction = math.NaN()
	err = stats.Validate()
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, 0, ce.Bin)
}

func TestCountPopulationMismatches(t *testing.T) {
	joined := []JoinedTract{
		{CEJSTTract: CEJSTTract{Population: 100}, CensusPopulation: 100},
		{CEJSTTract: CEJSTTract{Population: 100}, CensusPopulation: 98},
		{CEJSTTract: CEJSTTract{Population: math.NaN()}, CensusPopulation: 98},
	}
	assert.Equal(t, 1, CountPopulationMismatches(joined))
}
