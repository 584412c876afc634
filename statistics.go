package main

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// JoinedTract is a tract present in both the screening dataset and the ACS
// download. Population (screening tool) and CensusPopulation (ACS) are kept
// side by side and never reconciled.
type JoinedTract struct {
	CEJSTTract
	CensusPopulation float64
	White            float64
	NonWhite         float64
	PercentNonWhite  float64
}

// JoinTracts inner-joins on the exact tract id, keeping the order of cejst.
func JoinTracts(cejst []CEJSTTract, race []RaceTract) []JoinedTract {
	byTract := make(map[string][]RaceTract, len(race))
	for _, r := range race {
		byTract[r.Tract] = append(byTract[r.Tract], r)
	}

	var joined []JoinedTract
	for _, t := range cejst {
		for _, r := range byTract[t.Tract] {
			joined = append(joined, JoinedTract{
				CEJSTTract:       t,
				CensusPopulation: r.CensusPopulation,
				White:            r.White,
				NonWhite:         r.NonWhite,
				PercentNonWhite:  r.PercentNonWhite,
			})
		}
	}
	return joined
}

// DefaultBinEdges returns 0, 0.025, 0.075, ..., 0.975, 1.
func DefaultBinEdges() []float64 {
	edges := []float64{0}
	for k := 1; k <= 20; k++ {
		edges = append(edges, float64(2*k-1)/40)
	}
	return append(edges, 1)
}

// Bins partitions ratios by ascending edges. The first bin is closed,
// every later bin is (lower, upper].
type Bins struct {
	edges []float64
}

func NewBins(edges []float64) (Bins, error) {
	if len(edges) < 2 {
		return Bins{}, fmt.Errorf("bins: need at least 2 edges, got %d", len(edges))
	}
	for i, e := range edges {
		if math.IsNaN(e) || math.IsInf(e, 0) {
			return Bins{}, fmt.Errorf("bins: edge %d is %v", i, e)
		}
		if i > 0 && e <= edges[i-1] {
			return Bins{}, fmt.Errorf("bins: edges not strictly ascending at %d (%v <= %v)", i, e, edges[i-1])
		}
	}
	return Bins{edges: append([]float64(nil), edges...)}, nil
}

func (b Bins) Len() int { return len(b.edges) - 1 }

func (b Bins) Lower(i int) float64 { return b.edges[i] }

func (b Bins) Upper(i int) float64 { return b.edges[i+1] }

// Index returns the bin holding ratio. NaN and values outside the edges
// belong to no bin.
func (b Bins) Index(ratio float64) (int, bool) {
	if b.Len() < 1 || math.IsNaN(ratio) {
		return 0, false
	}
	if ratio < b.edges[0] || ratio > b.edges[len(b.edges)-1] {
		return 0, false
	}
	if ratio == b.edges[0] {
		return 0, true
	}
	return sort.SearchFloat64s(b.edges, ratio) - 1, true
}

// Axis returns evenly spaced display positions over [0, 1], one per bin.
// With the default edges this is 0, 0.05, ..., 1 even though the first and
// last bins are half as wide as the others.
func (b Bins) Axis() []float64 {
	n := b.Len()
	axis := make([]float64, n)
	if n == 1 {
		return axis
	}
	for i := range axis {
		axis[i] = float64(i) / float64(n-1)
	}
	return axis
}

type BinStat struct {
	Axis          float64
	Lower         float64
	Upper         float64
	Count         int
	Disadvantaged int
	// Fraction is NaN for an empty bin.
	Fraction float64
}

type Statistics struct {
	Bins     []BinStat
	Joined   int
	Unbinned int
}

func ComputeStatistics(joined []JoinedTract, bins Bins) Statistics {
	st := Statistics{Joined: len(joined)}

	flags := make([][]float64, bins.Len())
	for _, t := range joined {
		i, ok := bins.Index(t.PercentNonWhite)
		if !ok {
			st.Unbinned++
			continue
		}
		flag := 0.0
		if t.Disadvantaged {
			flag = 1
		}
		flags[i] = append(flags[i], flag)
	}

	axis := bins.Axis()
	st.Bins = make([]BinStat, bins.Len())
	for i, members := range flags {
		bs := BinStat{
			Axis:     axis[i],
			Lower:    bins.Lower(i),
			Upper:    bins.Upper(i),
			Count:    len(members),
			Fraction: math.NaN(),
		}
		if len(members) > 0 {
			bs.Disadvantaged = int(floats.Sum(members))
			bs.Fraction = stat.Mean(members, nil)
		}
		st.Bins[i] = bs
	}
	return st
}

// Validate checks that the bins partition the join and every populated bin
// has a fraction in [0, 1].
func (st Statistics) Validate() error {
	total := st.Unbinned
	for i, b := range st.Bins {
		total += b.Count
		if b.Count == 0 {
			continue
		}
		if math.IsNaN(b.Fraction) || b.Fraction < 0 || b.Fraction > 1 {
			return &ComputationError{Bin: i, Err: fmt.Errorf("fraction %v outside [0, 1] for %d tracts", b.Fraction, b.Count)}
		}
	}
	if total != st.Joined {
		return &ComputationError{Bin: -1, Err: errors.New("bin counts do not add up to the joined tracts")}
	}
	return nil
}

// Fractions returns the per-bin disadvantaged fraction with empty bins as 0.
func (st Statistics) Fractions() []float64 {
	out := make([]float64, len(st.Bins))
	for i, b := range st.Bins {
		if !math.IsNaN(b.Fraction) {
			out[i] = b.Fraction
		}
	}
	return out
}

func (st Statistics) Counts() []int {
	out := make([]int, len(st.Bins))
	for i, b := range st.Bins {
		out[i] = b.Count
	}
	return out
}

func (st Statistics) Axis() []float64 {
	out := make([]float64, len(st.Bins))
	for i, b := range st.Bins {
		out[i] = b.Axis
	}
	return out
}

// CountPopulationMismatches counts joined tracts whose screening tool
// population differs from the ACS total.
func CountPopulationMismatches(joined []JoinedTract) int {
	n := 0
	for _, t := range joined {
		if math.IsNaN(t.Population) || math.IsNaN(t.CensusPopulation) {
			continue
		}
		if t.Population != t.CensusPopulation {
			n++
		}
	}
	return n
}
