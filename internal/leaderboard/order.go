package leaderboard

import "sort"

// Less reports whether a ranks ahead of b: higher score first, then the
// earlier save.
func Less(a, b Record) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.CreatedAt.Before(b.CreatedAt)
}

// Sort orders records canonically in place.
func Sort(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return Less(records[i], records[j])
	})
}
