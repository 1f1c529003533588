package domain

import "strings"

// CleanTags trims every tag and drops empty ones, preserving order.
func CleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// SplitTags parses a comma separated tag list.
func SplitTags(raw string) []string {
	return CleanTags(strings.Split(raw, ","))
}
