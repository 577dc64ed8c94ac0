// Package csv reads delimited files into model.Table values. Parsing is
// strict: a header row is required and every data row must have the same
// number of fields as the header. The first malformed row aborts the parse.
package csv

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/unicode/norm"

	"driverstats/internal/model"
)

// ErrNoHeader is returned when the input has no header row.
var ErrNoHeader = errors.New("csv: missing header row")

// Options configures the parser. The zero value reads UTF-8, comma-separated
// input without trimming.
type Options struct {
	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// LazyQuotes keeps a quote that appears inside an unquoted field as a
	// literal character instead of failing the row. Field counts are still
	// checked.
	LazyQuotes bool

	// TrimSpace trims leading/trailing white space from each data cell.
	// Header cells are always trimmed.
	TrimSpace bool

	// Encoding names the input charset, see Decoder. Empty means UTF-8.
	Encoding string
}

// RowError reports a malformed row. Line is the 1-based physical line.
type RowError struct {
	Source string
	Line   int
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s: line %d: %v", e.Source, e.Line, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// Parser parses delimited input according to Options. It holds no per-input
// state and may be reused.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// Parse reads all of r into a Table. name is recorded as Table.Source and used
// to prefix errors.
func (p *Parser) Parse(name string, r io.Reader) (*model.Table, error) {
	dec, err := Decoder(p.opt.Encoding, r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	br := bufio.NewReader(dec)
	if b, _ := br.Peek(len(utf8BOM)); bytes.Equal(b, []byte(utf8BOM)) {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.LazyQuotes = p.opt.LazyQuotes

	h, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s: %w", name, ErrNoHeader)
	}
	if err != nil {
		return nil, rowError(name, err)
	}

	t := &model.Table{Source: name, Header: normalizeHeaders(h)}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, rowError(name, err)
		}
		line, _ := cr.FieldPos(0)
		if p.opt.TrimSpace {
			for i := range row {
				row[i] = strings.TrimSpace(row[i])
			}
		}
		t.Rows = append(t.Rows, row)
		t.Lines = append(t.Lines, line)
	}
	return t, nil
}

// rowError lifts csv.ParseError into RowError so callers see one shape.
func rowError(name string, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &RowError{Source: name, Line: pe.Line, Err: pe.Err}
	}
	return fmt.Errorf("%s: %w", name, err)
}

// normalizeHeaders trims header cells, strips a UTF-8 BOM from the first one
// and puts every name in NFC so composed and decomposed spellings match.
func normalizeHeaders(h []string) []string {
	h = StripHeaderBOM(h)
	res := make([]string, len(h))
	for i, col := range h {
		res[i] = norm.NFC.String(strings.TrimSpace(col))
	}
	return res
}
