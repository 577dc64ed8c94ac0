package builtin

import (
	"strconv"

	"github.com/zeebo/xxh3"

	"driverstats/internal/model"
)

// DuplicateScan reports timesheet rows that repeat an earlier row exactly
// (same driver, week, hours and miles). Rows are never dropped: every row still
// counts toward weeks worked.
type DuplicateScan struct {
	// OnDuplicate, when set, is called with the index of each repeated row and
	// the index of its first occurrence.
	OnDuplicate func(dup, first int)

	// Found is the number of repeated rows seen by the last Apply.
	Found int
}

func (d *DuplicateScan) Apply(in []model.TimesheetEntry) []model.TimesheetEntry {
	d.Found = 0
	seen := make(map[uint64]int, len(in))
	buf := make([]byte, 0, 64)
	for i, e := range in {
		buf = appendKey(buf[:0], e)
		h := xxh3.Hash(buf)
		if first, ok := seen[h]; ok {
			d.Found++
			if d.OnDuplicate != nil {
				d.OnDuplicate(i, first)
			}
			continue
		}
		seen[h] = i
	}
	return in
}

// appendKey writes the row identity using 0x1f between fields and 0x00 for a
// missing value.
func appendKey(b []byte, e model.TimesheetEntry) []byte {
	b = append(b, e.DriverID...)
	b = append(b, 0x1f)
	b = append(b, e.Week...)
	for _, v := range []model.NullFloat{e.Hours, e.Miles} {
		b = append(b, 0x1f)
		if !v.Valid {
			b = append(b, 0x00)
			continue
		}
		b = strconv.AppendFloat(b, v.Float64, 'g', -1, 64)
	}
	return b
}
