package report

import (
	"sort"

	"driverstats/internal/model"
)

// TopN returns the min(n, len(in)) summaries with the largest TotalHours in
// descending order. Ties keep their roster order. in is not modified.
func TopN(in []model.DriverSummary, n int) []model.DriverSummary {
	if n <= 0 || len(in) == 0 {
		return nil
	}
	ranked := make([]model.DriverSummary, len(in))
	copy(ranked, in)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalHours > ranked[j].TotalHours
	})
	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n:n]
}
