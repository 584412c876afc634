package main

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
	xfont "golang.org/x/image/font"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
)

// Theme carries every styling decision of the chart. It is passed to the
// renderer explicitly; nothing is set on package-level plot defaults.
type Theme struct {
	Disadvantaged    color.Color
	NotDisadvantaged color.Color
	Background       color.Color
	Grid             color.Color
	Text             color.Color
	Heading          color.Color

	Width   vg.Length
	Height  vg.Length
	DPI     int
	Padding vg.Length

	// BarWidth is the share of one axis step covered by a bar.
	BarWidth  float64
	GridWidth vg.Length

	TickFontSize    vg.Length
	LabelFontSize   vg.Length
	TitleFontSize   vg.Length
	CaptionFontSize vg.Length
}

// ThemeConfig is the file form of Theme. Colors are hex strings.
type ThemeConfig struct {
	Disadvantaged    string  `toml:"disadvantaged"`
	NotDisadvantaged string  `toml:"not_disadvantaged"`
	Background       string  `toml:"background"`
	Grid             string  `toml:"grid"`
	Text             string  `toml:"text"`
	Heading          string  `toml:"heading"`
	Width            float64 `toml:"width"`
	Height           float64 `toml:"height"`
	DPI              int     `toml:"dpi"`
}

func DefaultThemeConfig() ThemeConfig {
	return ThemeConfig{
		Disadvantaged:    "#b925ba",
		NotDisadvantaged: "#2ea577",
		Background:       "#eeeeee",
		Grid:             "#ffffff",
		Text:             "#666666",
		Heading:          "#000000",
		Width:            14,
		Height:           9,
		DPI:              300,
	}
}

func DefaultTheme() Theme {
	theme, err := DefaultThemeConfig().Theme()
	if err != nil {
		panic(err)
	}
	return theme
}

func (tc ThemeConfig) Theme() (Theme, error) {
	if tc.Width <= 0 || tc.Height <= 0 {
		return Theme{}, fmt.Errorf("theme: invalid size %vx%v in", tc.Width, tc.Height)
	}
	if tc.DPI <= 0 {
		return Theme{}, fmt.Errorf("theme: invalid dpi %d", tc.DPI)
	}

	theme := Theme{
		Width:           vg.Length(tc.Width) * vg.Inch,
		Height:          vg.Length(tc.Height) * vg.Inch,
		DPI:             tc.DPI,
		Padding:         0.3 * vg.Inch,
		BarWidth:        0.7,
		GridWidth:       vg.Points(2),
		TickFontSize:    vg.Points(20),
		LabelFontSize:   vg.Points(20),
		TitleFontSize:   vg.Points(30),
		CaptionFontSize: vg.Points(15),
	}

	colors := []struct {
		name string
		hex  string
		dst  *color.Color
	}{
		{"disadvantaged", tc.Disadvantaged, &theme.Disadvantaged},
		{"not_disadvantaged", tc.NotDisadvantaged, &theme.NotDisadvantaged},
		{"background", tc.Background, &theme.Background},
		{"grid", tc.Grid, &theme.Grid},
		{"text", tc.Text, &theme.Text},
		{"heading", tc.Heading, &theme.Heading},
	}
	for _, c := range colors {
		parsed, err := colorful.Hex(c.hex)
		if err != nil {
			return Theme{}, fmt.Errorf("theme: %s color: %w", c.name, err)
		}
		*c.dst = parsed
	}
	return theme, nil
}

func (t Theme) textStyle(clr color.Color, size vg.Length, weight xfont.Weight) text.Style {
	return text.Style{
		Color: clr,
		Font: font.Font{
			Typeface: "Liberation",
			Variant:  "Sans",
			Weight:   weight,
			Size:     size,
		},
		Handler: plot.DefaultTextHandler,
	}
}
