// Command csvprobe samples the head of a driverstats input file and prints
// the detected delimiter, each column with its inferred type, and any
// required column the file lacks. It exits 1 when a required column is
// missing, so it can gate a data drop before the real run.
//
// Example:
//
//	csvprobe -file=files/input/timesheet.csv -kind=timesheet
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"driverstats/internal/datasource/file"
	"driverstats/internal/model"
	"driverstats/internal/probe"
)

// required lists the columns each input kind must carry.
var required = map[string][]string{
	"drivers":   {model.ColDriverID, model.ColName},
	"timesheet": {model.ColDriverID, model.ColWeek, model.ColHours, model.ColMiles},
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("csvprobe", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		path  = fs.String("file", "files/input/timesheet.csv", "input file to sample")
		bytes = fs.Int("bytes", probe.DefaultSampleBytes, "number of bytes to sample from the start of the file")
		delim = fs.String("delimiter", "", "field delimiter; detected when empty")
		kind  = fs.String("kind", "", "input kind to check required columns for: drivers|timesheet")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	want, ok := required[*kind]
	if *kind != "" && !ok {
		fmt.Fprintf(stderr, "unknown -kind %q\n", *kind)
		return 2
	}

	sample, err := probe.Sample(ctx, file.NewLocal(*path), *bytes)
	if err != nil {
		fmt.Fprintf(stderr, "csvprobe: %v\n", err)
		return 1
	}

	var comma rune
	if *delim != "" {
		comma = []rune(*delim)[0]
	}
	rep := probe.Inspect(sample, comma)

	fmt.Fprintf(stdout, "delimiter: %s\n", strconv.QuoteRune(rep.Delimiter))
	if !rep.UTF8 {
		fmt.Fprintln(stdout, "encoding: not UTF-8; set DRIVERSTATS_INPUT_ENCODING (e.g. windows-1250)")
	}
	fmt.Fprintf(stdout, "rows sampled: %d (skipped %d)\n", rep.Rows, rep.Skipped)
	for _, c := range rep.Columns {
		fmt.Fprintf(stdout, "%s,%s,%d\n", c.Header, c.Type, c.Empty)
	}

	missing := probe.Missing(rep.Headers(), want)
	if len(missing) == 0 {
		return 0
	}
	names := make([]string, 0, len(missing))
	for m := range missing {
		names = append(names, m)
	}
	sort.Strings(names)
	for _, m := range names {
		if got := missing[m]; got != "" {
			fmt.Fprintf(stderr, "missing column %q (found %q)\n", m, got)
			continue
		}
		fmt.Fprintf(stderr, "missing column %q\n", m)
	}
	return 1
}
