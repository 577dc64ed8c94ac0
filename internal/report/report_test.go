package report

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"driverstats/internal/model"
)

func summary(id, name string, hours float64) model.DriverSummary {
	return model.DriverSummary{
		DriverRecord: model.DriverRecord{ID: id, Name: name, Fields: []string{id, name}},
		TotalHours:   hours,
	}
}

func exampleRows() []model.DriverSummary {
	return []model.DriverSummary{
		{
			DriverRecord:    model.DriverRecord{ID: "1", Name: "A", Fields: []string{"1", "A"}},
			TotalHours:      30,
			AvgHoursPerWeek: 15,
			MaxHoursWeek:    20,
			TotalMiles:      400,
			AvgMilesPerWeek: 200,
			MaxMilesWeek:    300,
			WeeksWorked:     2,
			MilesPerHour:    13.33,
		},
		{DriverRecord: model.DriverRecord{ID: "2", Name: "B", Fields: []string{"2", "B"}}},
	}
}

func TestTopN(t *testing.T) {
	t.Parallel()

	in := []model.DriverSummary{
		summary("1", "a", 5),
		summary("2", "b", 40),
		summary("3", "c", 12),
		summary("4", "d", 40),
		summary("5", "e", 0),
	}
	orig := append([]model.DriverSummary(nil), in...)

	top := TopN(in, 3)
	require.Len(t, top, 3)
	assert.Equal(t, []string{"2", "4", "3"}, ids(top), "ties keep roster order")
	assert.Equal(t, orig, in, "input is not reordered")

	all := TopN(in, 10)
	assert.Len(t, all, len(in), "fewer than n drivers returns all of them")
	for i := 1; i < len(all); i++ {
		assert.GreaterOrEqual(t, all[i-1].TotalHours, all[i].TotalHours)
	}

	assert.Empty(t, TopN(nil, 10))
	assert.Empty(t, TopN(in, 0))
}

func TestTopN_AppendDoesNotClobberRanking(t *testing.T) {
	t.Parallel()

	in := []model.DriverSummary{summary("1", "a", 1), summary("2", "b", 2), summary("3", "c", 3)}
	top := TopN(in, 2)
	_ = append(top, summary("x", "x", 99))
	assert.Equal(t, []string{"3", "2"}, ids(TopN(in, 2)))
	assert.Equal(t, 2, cap(top))
}

func ids(rows []model.DriverSummary) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func TestWriteSummaryCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteSummaryCSV(&buf, []string{"driverId", "name"}, exampleRows()))

	want := strings.Join([]string{
		"driverId,name,total_hours,avg_hours_per_week,max_hours_week,total_miles,avg_miles_per_week,max_miles_week,weeks_worked,miles_per_hour",
		"1,A,30,15,20,400,200,300,2,13.33",
		"2,B,0,0,0,0,0,0,0,0",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestWriteSummaryCSV_QuotesAndPassThrough(t *testing.T) {
	t.Parallel()

	rows := []model.DriverSummary{{
		DriverRecord: model.DriverRecord{ID: "7", Name: "Lee, Ann", Fields: []string{"7", "Lee, Ann", "x"}},
		TotalHours:   1.5,
	}}
	var buf bytes.Buffer
	require.NoError(t, WriteSummaryCSV(&buf, []string{"driverId", "name", "extra"}, rows))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], `7,"Lee, Ann",x,1.5,`), lines[1])
}

func TestWriteSummaryCSV_WidthMismatch(t *testing.T) {
	t.Parallel()

	err := WriteSummaryCSV(&bytes.Buffer{}, []string{"driverId", "name", "city"}, exampleRows())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "driver 1")
}

func TestWriteSummaryXLSX(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteSummaryXLSX(&buf, []string{"driverId", "name"}, exampleRows()))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, SummaryHeader([]string{"driverId", "name"}), rows[0])
	assert.Equal(t, "A", rows[1][1])

	mph, err := f.GetCellValue(SummarySheet, "J2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "13.33", mph)
	weeks, err := f.GetCellValue(SummarySheet, "I2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "2", weeks)
}

func smallFigure(t *testing.T) *Figure {
	t.Helper()
	fig, err := NewFigure(FigureOptions{WidthIn: 12, HeightIn: 8, DPI: 40})
	require.NoError(t, err)
	t.Cleanup(func() { _ = fig.Close() })
	return fig
}

func TestRenderTopChart(t *testing.T) {
	t.Parallel()

	fig := smallFigure(t)
	w, h := fig.Size()
	assert.Equal(t, 480, w)
	assert.Equal(t, 320, h)

	rows := []model.DriverSummary{summary("1", "Alice", 120), summary("2", "Bob", 60), summary("3", "Carol", 30)}
	require.NoError(t, RenderTopChart(fig, rows, DefaultChartText(10)))

	var buf bytes.Buffer
	require.NoError(t, fig.WritePNG(&buf))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 480, img.Bounds().Dx())
	assert.Equal(t, 320, img.Bounds().Dy())

	// Somewhere in the lower-left of the plot the tallest bar is drawn in
	// translucent steel blue.
	blue := 0
	b := img.Bounds()
	for y := b.Min.Y + b.Dy()/3; y < b.Min.Y+b.Dy()/2; y++ {
		for x := b.Min.X; x < b.Min.X+b.Dx()/3; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			if bl>>8 > 190 && r>>8 < 140 && g>>8 > 150 && g>>8 < 185 {
				blue++
			}
		}
	}
	assert.Positive(t, blue, "expected steel-blue bar pixels")
}

func TestRenderTopChart_Empty(t *testing.T) {
	t.Parallel()

	fig := smallFigure(t)
	require.NoError(t, RenderTopChart(fig, nil, DefaultChartText(10)))
	require.NoError(t, fig.WritePNG(&bytes.Buffer{}))
}

func TestFigureClose(t *testing.T) {
	t.Parallel()

	fig, err := NewFigure(FigureOptions{WidthIn: 2, HeightIn: 1, DPI: 50})
	require.NoError(t, err)
	require.NoError(t, fig.Close())
	require.NoError(t, fig.Close(), "close is idempotent")

	assert.ErrorIs(t, fig.WritePNG(&bytes.Buffer{}), ErrFigureClosed)
	assert.ErrorIs(t, RenderTopChart(fig, nil, DefaultChartText(10)), ErrFigureClosed)
	assert.Nil(t, fig.Image())
	w, h := fig.Size()
	assert.Zero(t, w+h)
}

func TestNewFigure_Invalid(t *testing.T) {
	t.Parallel()

	_, err := NewFigure(FigureOptions{WidthIn: 12, HeightIn: 8})
	assert.Error(t, err)
}

func TestChartHelpers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "30h", hoursLabel(30))
	assert.Equal(t, "43h", hoursLabel(42.5))
	assert.Equal(t, "0h", hoursLabel(0))

	assert.Equal(t, 1.0, niceStep(0.9))
	assert.Equal(t, 2.0, niceStep(1.3))
	assert.Equal(t, 25.0, niceStep(24))
	assert.Equal(t, 50.0, niceStep(31))
	assert.Equal(t, 100.0, niceStep(51))

	step, top := yScale(120)
	assert.Equal(t, 50.0, step)
	assert.Equal(t, 150.0, top)
	assert.GreaterOrEqual(t, top, 120.0)

	step, top = yScale(0)
	assert.Equal(t, 0.2, step)
	assert.Equal(t, 1.0, top)

	assert.Equal(t, "2.5", tickLabel(2.5000000001))
	assert.Equal(t, "0.6", tickLabel(0.2+0.2+0.2))

	long := strings.Repeat("é", 30)
	got := truncateLabel(long)
	assert.Equal(t, maxLabelRunes, len([]rune(got)))
	assert.True(t, strings.HasSuffix(got, "…"))
	assert.Equal(t, "Bob", truncateLabel("Bob"))
}

func TestSummaryHeader(t *testing.T) {
	t.Parallel()

	roster := []string{"driverId", "name"}
	h := SummaryHeader(roster)
	assert.Equal(t, append([]string{"driverId", "name"}, model.SummaryColumns...), h)
	assert.Len(t, roster, 2)
}
