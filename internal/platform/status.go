package platform

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// FormatStatus renders a one-line summary of s.
func FormatStatus(s Status) string {
	return fmt.Sprintf("generation %s   comparison %s   slot %d vs %d",
		humanize.Comma(int64(s.Generation)),
		humanize.Ordinal(s.Comparisons+1),
		s.Pair.Left,
		s.Pair.Right,
	)
}
