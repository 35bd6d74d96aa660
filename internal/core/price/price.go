// Package price maps venue price levels (0 through 4) to display text and
// normalizes requested level sets.
package price

import "sort"

// MaxLevel is the highest recognized price level
const MaxLevel = 4

var symbols = [MaxLevel + 1]string{"$", "$$", "$$$", "$$$$", "$$$$$"}

var descriptions = [MaxLevel + 1]string{
	"Inexpensive",
	"Moderate",
	"Pricey",
	"Expensive",
	"Very Expensive",
}

// Symbol returns the dollar-sign rendering for a level, or "" when the level
// is out of range
func Symbol(level int) string {
	if level < 0 || level > MaxLevel {
		return ""
	}
	return symbols[level]
}

// Description returns the human label for a level, or "" when out of range
func Description(level int) string {
	if level < 0 || level > MaxLevel {
		return ""
	}
	return descriptions[level]
}

// Normalize dedupes, drops out-of-range levels and sorts ascending.
// An empty result means no price constraint.
func Normalize(levels []int) []int {
	if len(levels) == 0 {
		return nil
	}
	seen := map[int]bool{}
	out := make([]int, 0, len(levels))
	for _, lv := range levels {
		if lv < 0 || lv > MaxLevel || seen[lv] {
			continue
		}
		seen[lv] = true
		out = append(out, lv)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Ints(out)
	return out
}
