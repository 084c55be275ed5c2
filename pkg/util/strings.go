package util

import "strings"

// SplitAndTrim splits s on sep, trimming whitespace and dropping empty entries.
func SplitAndTrim(s string, sep string) []string {
	var list []string

	for _, item := range strings.Split(s, sep) {
		item = strings.TrimSpace(item)
		if item != "" {
			list = append(list, item)
		}
	}

	return list
}
