// Package strings holds small helpers for list-valued settings.
package strings

import (
	"strings"
)

// SplitList splits raw on sep, trims each entry and drops blanks and repeats.
// Order of first appearance is kept. A blank input yields nil.
func SplitList(raw, sep string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return Compact(strings.Split(raw, sep))
}

// Compact trims every value and removes empties and duplicates in place order.
func Compact(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
