// Package strings holds small helpers for list-valued settings.
package strings

import "strings"

// SplitList flattens values that may themselves hold sep-separated items,
// as happens when a list setting comes from an environment variable. Items
// are trimmed, blanks dropped and duplicates removed keeping first position.
func SplitList(values []string, sep string) []string {
	seen := make(map[string]struct{}, len(values))
	var out []string
	for _, v := range values {
		for _, item := range strings.Split(v, sep) {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}
			if _, dup := seen[item]; dup {
				continue
			}
			seen[item] = struct{}{}
			out = append(out, item)
		}
	}
	return out
}
