package probe

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// dateLayouts are common date formats without a time component.
var dateLayouts = []string{
	"2006-01-02",
	"02.01.2006",
	"01.02.2006",
	"02/01/2006",
	"01/02/2006",
	"2 Jan 2006",
	"02-Jan-2006",
	"2006/01/02",
}

// timestampLayouts are common timestamp formats.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
	"02/01/2006 15:04:05",
	"01/02/2006 15:04:05",
}

// inferTypeForColumn picks the narrowest type every non-blank value fits:
// integer, boolean, real, timestamp, date, else text. An all-blank column is
// text.
func inferTypeForColumn(values []string) string {
	nonEmpty := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			nonEmpty = append(nonEmpty, v)
		}
	}
	switch {
	case len(nonEmpty) == 0:
		return "text"
	case allMatch(nonEmpty, isInt):
		return "integer"
	case allMatch(nonEmpty, isBool):
		return "boolean"
	case allMatch(nonEmpty, isFloat):
		return "real"
	}

	anyTime := false
	for _, v := range nonEmpty {
		ok, hasTime := parseDateOrTimestamp(v)
		if !ok {
			return "text"
		}
		anyTime = anyTime || hasTime
	}
	if anyTime {
		return "timestamp"
	}
	return "date"
}

func allMatch(vals []string, fn func(string) bool) bool {
	for _, v := range vals {
		if !fn(v) {
			return false
		}
	}
	return true
}

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }

// isBool accepts common textual booleans. 1 and 0 are caught by isInt first.
func isBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "false", "t", "f", "yes", "no", "y", "n":
		return true
	}
	return false
}

func isInt(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

// isFloat accepts integers, finite floats and NaN.
func isFloat(s string) bool {
	v, err := strconv.ParseFloat(s, 64)
	return err == nil && !math.IsInf(v, 0)
}

func parseDateOrTimestamp(s string) (ok, hasTime bool) {
	for _, layout := range timestampLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true, true
		}
	}
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true, false
		}
	}
	return false, false
}

// columnKey folds a header to lowercase ASCII letters and digits:
// accents are stripped and every separator dropped, so "Hours Logged",
// "hours_logged" and "hours-logged" share one key.
func columnKey(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, _ := transform.String(t, strings.ToLower(strings.TrimSpace(s)))

	var b strings.Builder
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Missing returns the required columns absent from headers, each paired
// with the header it was probably meant to be ("" when nothing is close).
func Missing(headers, required []string) map[string]string {
	present := make(map[string]struct{}, len(headers))
	byKey := make(map[string]string, len(headers))
	for _, h := range headers {
		present[h] = struct{}{}
		if k := columnKey(h); k != "" {
			if _, dup := byKey[k]; !dup {
				byKey[k] = h
			}
		}
	}

	out := make(map[string]string)
	for _, want := range required {
		if _, ok := present[want]; ok {
			continue
		}
		out[want] = byKey[columnKey(want)]
	}
	return out
}
