package report

import (
	"fmt"
	"math"
	"strconv"
	"unicode/utf8"

	"github.com/fogleman/gg"

	"driverstats/internal/model"
)

// ChartText holds the fixed strings drawn on the chart.
type ChartText struct {
	Title  string
	XLabel string
	YLabel string
}

// DefaultChartText is the text of the top-n drivers chart.
func DefaultChartText(n int) ChartText {
	return ChartText{
		Title:  fmt.Sprintf("Top %d Drivers by Total Hours Worked", n),
		XLabel: "Drivers",
		YLabel: "Total Hours",
	}
}

// bar colour (steelblue) and opacity.
const (
	barR, barG, barB = 70.0 / 255, 130.0 / 255, 180.0 / 255
	barAlpha         = 0.7
	maxLabelRunes    = 24
)

// RenderTopChart draws a vertical bar chart of rows onto fig: one bar per
// row, height TotalHours, the driver name under each bar rotated 45 degrees,
// and the whole-hour value above it ("42h"). An empty rows slice renders the
// titled, empty axes.
func RenderTopChart(fig *Figure, rows []model.DriverSummary, text ChartText) error {
	if fig == nil || fig.dc == nil {
		return ErrFigureClosed
	}
	dc := fig.dc
	w, h := float64(dc.Width()), float64(dc.Height())

	dc.SetRGB(1, 1, 1)
	dc.Clear()

	labels := make([]string, len(rows))
	for i, r := range rows {
		labels[i] = truncateLabel(r.Name)
	}

	// Bottom margin grows with the longest rotated name, capped at 40% of the
	// figure so the plot never vanishes.
	dc.SetFontFace(fig.faces["tick"])
	var longest, tickH float64
	for _, l := range labels {
		lw, lh := dc.MeasureString(l)
		longest = math.Max(longest, lw)
		tickH = math.Max(tickH, lh)
	}
	dc.SetFontFace(fig.faces["label"])
	_, labelH := dc.MeasureString(text.XLabel)

	pad := fig.px(0.1)
	bottom := pad + longest*math.Sin(math.Pi/4) + tickH + labelH + 3*pad
	bottom = math.Min(bottom, 0.4*h)

	left, right, top := fig.px(1.0), fig.px(0.3), fig.px(0.9)
	x0, x1 := left, w-right
	y0, y1 := top, h-bottom
	plotW, plotH := x1-x0, y1-y0

	maxHours := 0.0
	for _, r := range rows {
		maxHours = math.Max(maxHours, r.TotalHours)
	}
	step, yMax := yScale(maxHours)
	yPos := func(v float64) float64 { return y1 - v/yMax*plotH }

	// Grid and y ticks.
	dc.SetFontFace(fig.faces["tick"])
	dc.SetLineWidth(math.Max(1, fig.px(0.01)))
	for v := 0.0; v <= yMax+step/2; v += step {
		y := yPos(v)
		dc.SetRGBA(0.5, 0.5, 0.5, 0.3)
		dc.DrawLine(x0, y, x1, y)
		dc.Stroke()
		dc.SetRGB(0, 0, 0)
		dc.DrawStringAnchored(tickLabel(v), x0-pad, y, 1, 0.35)
	}

	// Bars, value labels and rotated names.
	if n := len(rows); n > 0 {
		slot := plotW / float64(n)
		barW := 0.8 * slot
		for i, r := range rows {
			cx := x0 + slot*(float64(i)+0.5)
			yTop := yPos(r.TotalHours)

			dc.SetRGBA(barR, barG, barB, barAlpha)
			dc.DrawRectangle(cx-barW/2, yTop, barW, y1-yTop)
			dc.Fill()

			dc.SetRGB(0, 0, 0)
			dc.SetFontFace(fig.faces["value"])
			dc.DrawStringAnchored(hoursLabel(r.TotalHours), cx, yTop-pad/2, 0.5, 0)

			dc.SetFontFace(fig.faces["tick"])
			dc.Push()
			dc.RotateAbout(gg.Radians(-45), cx, y1+pad)
			dc.DrawStringAnchored(labels[i], cx, y1+pad, 1, 0.7)
			dc.Pop()
		}
	}

	// Axes.
	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(math.Max(1, fig.px(0.012)))
	dc.DrawLine(x0, y0, x0, y1)
	dc.DrawLine(x0, y1, x1, y1)
	dc.Stroke()

	// Title and axis labels.
	dc.SetFontFace(fig.faces["title"])
	dc.DrawStringAnchored(text.Title, w/2, top/2, 0.5, 0.5)

	dc.SetFontFace(fig.faces["label"])
	dc.DrawStringAnchored(text.XLabel, x0+plotW/2, h-pad, 0.5, 0)

	dc.Push()
	dc.RotateAbout(gg.Radians(-90), left/3, y0+plotH/2)
	dc.DrawStringAnchored(text.YLabel, left/3, y0+plotH/2, 0.5, 0.5)
	dc.Pop()

	return nil
}

// hoursLabel is the bar annotation: whole hours with an "h" suffix.
func hoursLabel(hours float64) string {
	return fmt.Sprintf("%dh", int64(math.Round(hours)))
}

// tickLabel prints v without the float noise accumulated by stepping.
func tickLabel(v float64) string {
	return strconv.FormatFloat(math.Round(v*1000)/1000, 'f', -1, 64)
}

// yScale picks a round tick step and an axis maximum that leaves headroom
// above the tallest bar for its value label.
func yScale(peak float64) (step, top float64) {
	if peak <= 0 {
		return 0.2, 1
	}
	step = niceStep(peak * 1.1 / 5)
	top = math.Ceil(peak*1.1/step) * step
	return step, top
}

// niceStep rounds raw up to 1, 2, 2.5 or 5 times a power of ten.
func niceStep(raw float64) float64 {
	exp := math.Floor(math.Log10(raw))
	base := math.Pow(10, exp)
	f := raw / base
	switch {
	case f <= 1:
		f = 1
	case f <= 2:
		f = 2
	case f <= 2.5:
		f = 2.5
	case f <= 5:
		f = 5
	default:
		f = 10
	}
	return f * base
}

func truncateLabel(s string) string {
	if utf8.RuneCountInString(s) <= maxLabelRunes {
		return s
	}
	r := []rune(s)
	return string(r[:maxLabelRunes-1]) + "…"
}
