package retriever

import (
	"regexp"
	"strings"
)

var refToken = regexp.MustCompile(`\[([A-Z]+-\d+)\]`)

// InjectLinks rewrites every [KIND-n] token that has a known URL into a
// markdown link. Tokens without a URL, and tokens that are already links, are
// left as they are.
func InjectLinks(text string, links map[string]string) string {
	if len(links) == 0 {
		return text
	}
	matches := refToken.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		ref := text[m[2]:m[3]]
		url, ok := links[ref]
		if !ok || url == "" || strings.HasPrefix(text[end:], "(") {
			continue
		}
		b.WriteString(text[last:start])
		b.WriteString("[")
		b.WriteString(ref)
		b.WriteString("](")
		b.WriteString(url)
		b.WriteString(")")
		last = end
	}
	b.WriteString(text[last:])
	return b.String()
}

// References lists the distinct reference ids cited in text, in order of
// first appearance.
func References(text string) []string {
	var refs []string
	seen := map[string]struct{}{}
	for _, m := range refToken.FindAllStringSubmatch(text, -1) {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		refs = append(refs, m[1])
	}
	return refs
}
