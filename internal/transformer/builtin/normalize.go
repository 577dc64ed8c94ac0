// Package builtin contains the row transforms the pipeline runs by default.
package builtin

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"driverstats/internal/model"
)

// NormalizeNames puts driver display names in NFC and trims surrounding
// white space, including the non-breaking spaces spreadsheet exports leave
// behind. Only Name changes; the pass-through Fields keep the original cell.
type NormalizeNames struct{}

func (NormalizeNames) Apply(in []model.DriverRecord) []model.DriverRecord {
	for i := range in {
		s := strings.ReplaceAll(in[i].Name, "\u00a0", " ")
		in[i].Name = norm.NFC.String(strings.TrimSpace(s))
	}
	return in
}
