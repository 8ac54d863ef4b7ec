package common

import (
	"path"
	"regexp"
	"strings"
	"unicode/utf8"
)

// TicketKeyPattern matches issue-tracker keys such as AUTH-101.
var TicketKeyPattern = regexp.MustCompile(`\b([A-Z]{2,10}-\d+)\b`)

// ExtractTicketKeys returns the distinct ticket keys mentioned across texts, in
// order of first appearance.
func ExtractTicketKeys(texts ...string) []string {
	seen := make(map[string]struct{})
	keys := []string{}
	for _, text := range texts {
		for _, m := range TicketKeyPattern.FindAllStringSubmatch(text, -1) {
			if _, ok := seen[m[1]]; ok {
				continue
			}
			seen[m[1]] = struct{}{}
			keys = append(keys, m[1])
		}
	}
	return keys
}

// NormalizeTicketKey is the canonical form of a caller-supplied ticket key.
func NormalizeTicketKey(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}

// CleanPath turns a repository path into its stored form: forward slashes,
// no leading slash or "./", no redundant segments. Empty input stays empty.
func CleanPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = strings.TrimPrefix(path.Clean(strings.ReplaceAll(p, "\\", "/")), "/")
	if p == "." {
		return ""
	}
	return p
}

// CleanPaths applies CleanPath to each entry and drops empties and repeats.
func CleanPaths(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p = CleanPath(p); p != "" {
			out = append(out, p)
		}
	}
	return Dedupe(out)
}

// Excerpt trims s to at most max runes, cutting at the last space when one is
// close to the limit and marking the cut with an ellipsis.
func Excerpt(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	cut := string(runes[:max])
	if i := strings.LastIndexByte(cut, ' '); i > max*3/4 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " \n\t.,;:") + "..."
}

// Head returns at most n leading elements of items.
func Head[T any](items []T, n int) []T {
	if n < 0 || len(items) <= n {
		return items
	}
	return items[:n]
}

// Dedupe drops empty strings and repeats while keeping first-seen order.
func Dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}
