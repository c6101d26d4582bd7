package changes

import (
	"sort"
	"strings"
)

// fixedHeaders render first in a change diff table, in this order.
var fixedHeaders = []string{"action", "name", "new_name", "slug", "new", "old", "current"}

func fixedRank(h string) int {
	for i, v := range fixedHeaders {
		if v == h {
			return i
		}
	}
	return -1
}

// CompareHeaders defines a strict total order over diff field names so
// tables render the same regardless of backend iteration order. It
// returns -1 or 1, never 0: members of the fixed list precede
// non-members and order by list position among themselves; everything
// else falls through to lexical comparison.
func CompareHeaders(a, b string) int {
	ra, rb := fixedRank(a), fixedRank(b)
	switch {
	case ra >= 0 && rb >= 0:
		if ra < rb {
			return -1
		}
		return 1
	case ra >= 0:
		return -1
	case rb >= 0:
		return 1
	}
	if strings.Compare(a, b) < 0 {
		return -1
	}
	return 1
}

// SortHeaders returns a sorted copy of hs under CompareHeaders.
func SortHeaders(hs []string) []string {
	out := make([]string, len(hs))
	copy(out, hs)
	sort.SliceStable(out, func(i, j int) bool {
		return CompareHeaders(out[i], out[j]) < 0
	})
	return out
}
