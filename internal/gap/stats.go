package gap

import (
	"strings"

	"basegraph.app/correlate/internal/model"
)

func newStats(total int) model.GapStats {
	return model.GapStats{Total: total}
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}

func assignee(a *string) string {
	if a == nil || strings.TrimSpace(*a) == "" {
		return "Unassigned"
	}
	return *a
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
