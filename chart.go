package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	xfont "golang.org/x/image/font"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const DefaultChartPath = "figures/demographic-distribution.jpg"

const (
	chartTitle   = "Demographic distribution"
	chartXLabel  = "Tract population percent that is non-white"
	chartCaption = "Data Source: CEJST / ACS"

	labelDisadvantaged    = "disadvantaged"
	labelNotDisadvantaged = "not disadvantaged"
)

type textRun struct {
	text  string
	style text.Style
}

// RenderChart draws one full-height bar per bin in the not-disadvantaged
// color, overlays the disadvantaged fraction, and writes the image to path.
func RenderChart(path string, stats Statistics, theme Theme) error {
	if len(stats.Bins) == 0 {
		return fmt.Errorf("render chart: no bins")
	}
	if !supportedImage(path) {
		return fmt.Errorf("render chart: unsupported image format %q", filepath.Ext(path))
	}

	canvas := vgimg.NewWith(
		vgimg.UseWH(theme.Width, theme.Height),
		vgimg.UseDPI(theme.DPI),
		vgimg.UseBackgroundColor(theme.Background),
	)
	dc := draw.New(canvas)

	header := headerLines(theme)
	headerHeight := vg.Length(0)
	for _, line := range header {
		headerHeight += lineHeight(line)
	}
	captionStyle := theme.textStyle(theme.Text, theme.CaptionFontSize, xfont.WeightNormal)
	captionHeight := 2 * captionStyle.Height(chartCaption)

	area := draw.Crop(dc, theme.Padding, -theme.Padding, theme.Padding+captionHeight, -(theme.Padding + headerHeight))

	p, bars, err := newDistributionPlot(stats, theme)
	if err != nil {
		return err
	}

	// Bar widths are in canvas units, so they are sized from the data area
	// once the axes are laid out.
	data := p.DataCanvas(area)
	step := (data.Max.X - data.Min.X) / vg.Length(p.X.Max-p.X.Min)
	for _, b := range bars {
		b.Width = step * vg.Length(theme.BarWidth)
	}
	p.Draw(area)

	pt := vg.Point{X: dc.Min.X + theme.Padding, Y: dc.Max.Y - theme.Padding}
	for _, line := range header {
		pt.Y -= lineHeight(line)
		drawRuns(dc, pt, line)
	}
	dc.FillText(captionStyle, vg.Point{X: dc.Min.X + theme.Padding, Y: dc.Min.Y + theme.Padding}, chartCaption)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("render chart: %w", err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	if err := writeImage(file, canvas, path); err != nil {
		file.Close()
		return fmt.Errorf("render chart %s: %w", path, err)
	}
	return file.Close()
}

func newDistributionPlot(stats Statistics, theme Theme) (*plot.Plot, []*plotter.BarChart, error) {
	p := plot.New()
	p.BackgroundColor = theme.Background

	tickStyle := theme.textStyle(theme.Text, theme.TickFontSize, xfont.WeightNormal)

	p.X.Label.Text = chartXLabel
	p.X.Label.TextStyle = theme.textStyle(theme.Text, theme.LabelFontSize, xfont.WeightNormal)
	p.X.Tick.Label = tickStyle
	p.X.Tick.Label.Rotation = math.Pi / 2
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	p.X.Tick.Length = 0
	p.X.LineStyle.Color = theme.Text

	p.Y.Tick.Label = tickStyle
	p.Y.Tick.Length = 0
	p.Y.LineStyle.Width = 0

	grid := plotter.NewGrid()
	grid.Vertical.Color = nil
	grid.Horizontal.Color = theme.Grid
	grid.Horizontal.Width = theme.GridWidth
	grid.Horizontal.Dashes = nil
	p.Add(grid)

	full := make(plotter.Values, len(stats.Bins))
	for i := range full {
		full[i] = 1
	}
	background, err := plotter.NewBarChart(full, 1)
	if err != nil {
		return nil, nil, err
	}
	background.Color = theme.NotDisadvantaged
	background.LineStyle.Width = vg.Length(0)

	// Empty bins come back as 0 so no NaN reaches the bar geometry.
	share, err := plotter.NewBarChart(plotter.Values(stats.Fractions()), 1)
	if err != nil {
		return nil, nil, err
	}
	share.Color = theme.Disadvantaged
	share.LineStyle.Width = vg.Length(0)

	p.Add(background, share)

	ticks := make(plot.ConstantTicks, len(stats.Bins))
	for i, pos := range stats.Axis() {
		ticks[i] = plot.Tick{Value: float64(i), Label: percentLabel(pos)}
	}
	p.X.Tick.Marker = ticks
	p.Y.Tick.Marker = plot.ConstantTicks{
		{Value: 0, Label: "0%"},
		{Value: 0.2, Label: "20%"},
		{Value: 0.4, Label: "40%"},
		{Value: 0.6, Label: "60%"},
		{Value: 0.8, Label: "80%"},
		{Value: 1, Label: "100%"},
	}

	// Bars sit at 0..n-1; half a step of padding on each side.
	p.X.Min = -0.5
	p.X.Max = float64(len(stats.Bins)) - 0.5
	p.Y.Min = 0
	p.Y.Max = 1

	return p, []*plotter.BarChart{background, share}, nil
}

func headerLines(theme Theme) [][]textRun {
	title := theme.textStyle(theme.Heading, theme.TitleFontSize, xfont.WeightBold)
	light := theme.textStyle(theme.Heading, theme.TitleFontSize, xfont.WeightNormal)
	purple := theme.textStyle(theme.Disadvantaged, theme.TitleFontSize, xfont.WeightBold)
	green := theme.textStyle(theme.NotDisadvantaged, theme.TitleFontSize, xfont.WeightBold)

	return [][]textRun{
		{{chartTitle, title}},
		{{"Percent of census tracts identified as ", light}, {labelDisadvantaged, purple}, {" and", light}},
		{{labelNotDisadvantaged, green}, {" by the White House screening tool", light}},
	}
}

func lineHeight(line []textRun) vg.Length {
	var h vg.Length
	for _, r := range line {
		if rh := r.style.Height(r.text); rh > h {
			h = rh
		}
	}
	return h * 1.2
}

// drawRuns writes the runs left to right from pt, each in its own style.
func drawRuns(c draw.Canvas, pt vg.Point, runs []textRun) {
	for _, r := range runs {
		c.FillText(r.style, pt, r.text)
		pt.X += r.style.Width(r.text)
	}
}

func percentLabel(v float64) string {
	return fmt.Sprintf("%.0f%%", v*100)
}

func supportedImage(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}

func writeImage(w io.Writer, canvas *vgimg.Canvas, path string) error {
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		_, err = vgimg.JpegCanvas{Canvas: canvas}.WriteTo(w)
	case ".png":
		_, err = vgimg.PngCanvas{Canvas: canvas}.WriteTo(w)
	default:
		err = fmt.Errorf("unsupported image format %q", filepath.Ext(path))
	}
	return err
}
