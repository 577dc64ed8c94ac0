package main

import (
	"fmt"
	"io"
	"math"

	"github.com/dustin/go-humanize"

	"driverstats/internal/pipeline"
)

// printStats writes the closing overview of a run.
func printStats(w io.Writer, st *pipeline.Stats) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "General statistics:")
	fmt.Fprintf(w, "- Total hours worked: %s\n", humanize.Comma(int64(math.RoundToEven(st.TotalHours()))))
	fmt.Fprintf(w, "- Total miles driven: %s\n", humanize.Comma(int64(math.RoundToEven(st.TotalMiles()))))
	fmt.Fprintf(w, "- Average hours per driver: %.1f\n", st.MeanHours())
	if d, ok := st.Busiest(); ok {
		fmt.Fprintf(w, "- Driver with most hours: %s (%.0f hours)\n", d.Name, d.TotalHours)
	}
}
