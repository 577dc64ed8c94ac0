// Package probe inspects the head of a delimited file: which delimiter it
// uses, whether it is valid UTF-8, what its columns look like and whether the
// columns a loader needs are present.
//
// Probing is best-effort. Malformed or misaligned sample rows are skipped
// rather than reported, so a probe never fails on data a strict parse would
// reject.
package probe

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"unicode"
	"unicode/utf8"

	"driverstats/internal/datasource"
)

// DefaultSampleBytes is how much of a file Sample reads when n <= 0.
const DefaultSampleBytes = 64 << 10

// maxSampleRows bounds the rows considered by Inspect and DetectDelimiter.
const maxSampleRows = 5000

// candidates are the delimiters DetectDelimiter tries, in preference order.
var candidates = []rune{',', ';', '\t', '|'}

// Column is one sampled column.
type Column struct {
	Header string
	// Type is one of boolean, integer, real, date, timestamp or text.
	Type string
	// Empty counts sampled rows where the cell is blank.
	Empty int
}

// Report describes a sample.
type Report struct {
	Delimiter rune
	// UTF8 is false when the sample is not valid UTF-8, which usually means a
	// legacy charset such as windows-1250.
	UTF8    bool
	Columns []Column
	// Rows is the number of well-formed data rows in the sample.
	Rows int
	// Skipped counts sample rows that were malformed or misaligned.
	Skipped int
}

// Headers returns the column headers in file order.
func (r Report) Headers() []string {
	h := make([]string, len(r.Columns))
	for i, c := range r.Columns {
		h[i] = c.Header
	}
	return h
}

// Sample reads up to n bytes from the start of src and cuts the result at the
// last newline so it never ends inside a record.
func Sample(ctx context.Context, src datasource.Source, n int) ([]byte, error) {
	if n <= 0 {
		n = DefaultSampleBytes
	}
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(rc, int64(n))); err != nil {
		return nil, fmt.Errorf("sample: %w", err)
	}
	data := buf.Bytes()
	if len(data) == n {
		if i := bytes.LastIndexByte(data, '\n'); i > 0 {
			data = data[:i+1]
		}
	}
	return data, nil
}

// DetectDelimiter returns the candidate delimiter that splits the sample into
// the most consistent multi-column rows. It falls back to ',' when no
// candidate yields more than one column.
func DetectDelimiter(sample []byte) rune {
	best, bestRows, bestWidth := ',', -1, 1
	for _, c := range candidates {
		header, rows, _ := readSample(sample, c)
		if len(header) < 2 {
			continue
		}
		if len(rows) > bestRows || (len(rows) == bestRows && len(header) > bestWidth) {
			best, bestRows, bestWidth = c, len(rows), len(header)
		}
	}
	return best
}

// Inspect parses the sample with delim, or a detected delimiter when delim
// is 0, and infers a type for every column.
func Inspect(sample []byte, delim rune) Report {
	if delim == 0 {
		delim = DetectDelimiter(sample)
	}
	header, rows, skipped := readSample(sample, delim)

	rep := Report{
		Delimiter: delim,
		UTF8:      utf8.Valid(sample),
		Rows:      len(rows),
		Skipped:   skipped,
		Columns:   make([]Column, len(header)),
	}
	for i, h := range header {
		col := make([]string, 0, len(rows))
		empty := 0
		for _, row := range rows {
			if isBlank(row[i]) {
				empty++
			}
			col = append(col, row[i])
		}
		rep.Columns[i] = Column{Header: h, Type: inferTypeForColumn(col), Empty: empty}
	}
	return rep
}

// readSample is a lenient CSV read: lazy quotes, variable field counts, and
// rows whose width differs from the header are skipped and counted.
func readSample(data []byte, delim rune) (header []string, rows [][]string, skipped int) {
	data = bytes.TrimPrefix(data, []byte("\uFEFF"))
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = delim
	r.LazyQuotes = true
	// Trimming would swallow empty fields between whitespace delimiters.
	r.TrimLeadingSpace = !unicode.IsSpace(delim)
	r.FieldsPerRecord = -1

	for {
		rec, err := r.Read()
		if err == io.EOF {
			return nil, nil, skipped
		}
		if err != nil || len(rec) == 0 {
			skipped++
			continue
		}
		header = rec
		break
	}

	for len(rows) < maxSampleRows {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil || len(rec) != len(header) {
			skipped++
			continue
		}
		rows = append(rows, rec)
	}
	return header, rows, skipped
}
