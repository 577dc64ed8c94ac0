package csv

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// charsets lists the single-byte encodings accepted besides UTF-8.
var charsets = map[string]encoding.Encoding{
	"windows-1250": charmap.Windows1250,
	"cp1250":       charmap.Windows1250,
	"windows-1252": charmap.Windows1252,
	"cp1252":       charmap.Windows1252,
	"iso-8859-1":   charmap.ISO8859_1,
	"latin1":       charmap.ISO8859_1,
	"iso-8859-2":   charmap.ISO8859_2,
}

// Supported reports whether name is an accepted encoding name.
func Supported(name string) bool {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" || n == "utf-8" || n == "utf8" {
		return true
	}
	_, ok := charsets[n]
	return ok
}

// Decoder wraps r so it yields UTF-8. name is matched case-insensitively;
// "", "utf-8" and "utf8" return r unchanged.
func Decoder(name string, r io.Reader) (io.Reader, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" || n == "utf-8" || n == "utf8" {
		return r, nil
	}
	enc, ok := charsets[n]
	if !ok {
		return nil, fmt.Errorf("csv: unsupported encoding %q", name)
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}
