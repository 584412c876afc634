package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
)

type Summary struct {
	CEJSTTracts          int
	CensusTracts         int
	PopulationMismatches int
	Stats                Statistics
}

func NewSummary(cejst []CEJSTTract, race []RaceTract, joined []JoinedTract, stats Statistics) Summary {
	return Summary{
		CEJSTTracts:          len(cejst),
		CensusTracts:         len(race),
		PopulationMismatches: CountPopulationMismatches(joined),
		Stats:                stats,
	}
}

func (s Summary) Markdown() string {
	var b strings.Builder

	b.WriteString("# Demographic distribution\n")
	b.WriteString("## CEJST disadvantaged tracts by non-white population share\n\n")

	b.WriteString("### Inputs\n\n")
	fmt.Fprintf(&b, "- **CEJST tracts**: %d\n", s.CEJSTTracts)
	fmt.Fprintf(&b, "- **Census tracts**: %d\n", s.CensusTracts)
	fmt.Fprintf(&b, "- **Joined tracts**: %d\n", s.Stats.Joined)
	fmt.Fprintf(&b, "- **Tracts outside every bin**: %d\n", s.Stats.Unbinned)

	disadvantaged := 0
	for _, bin := range s.Stats.Bins {
		disadvantaged += bin.Disadvantaged
	}
	fmt.Fprintf(&b, "- **Disadvantaged tracts (binned)**: %d\n", disadvantaged)

	b.WriteString("\n### Bins\n\n")
	b.WriteString("| Non-white | Range | Tracts | Disadvantaged | Share |\n")
	b.WriteString("|-----------|-------|--------|---------------|-------|\n")
	for _, bin := range s.Stats.Bins {
		share := "n/a"
		if !math.IsNaN(bin.Fraction) {
			share = fmt.Sprintf("%.1f%%", bin.Fraction*100)
		}
		fmt.Fprintf(&b, "| %s | %.3f-%.3f | %d | %d | %s |\n",
			percentLabel(bin.Axis), bin.Lower, bin.Upper, bin.Count, bin.Disadvantaged, share)
	}

	b.WriteString("\n### Data quality\n\n")
	fmt.Fprintf(&b, "- **CEJST vs census population mismatches**: %d of %d joined tracts\n",
		s.PopulationMismatches, s.Stats.Joined)
	b.WriteString("- Both sources nominally describe ACS 2015-2019; the figures are reported as published and not reconciled.\n")

	return b.String()
}

func WriteSummary(path string, s Summary) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(s.Markdown()), 0o644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}
