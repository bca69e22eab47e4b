package dialect

import "strings"

// segment is a run of text lying entirely inside or entirely outside a quoted
// literal.
type segment struct {
	text   string
	quoted bool
}

// splitQuoted cuts s into alternating unquoted and quoted segments. Any rune
// in quotes opens a literal that the same rune closes; a backslash escapes the
// next rune inside a literal. An unterminated literal runs to the end of s.
func splitQuoted(s, quotes string) []segment {
	if quotes == "" {
		return []segment{{text: s}}
	}
	var segs []segment
	var open rune
	start, escaped := 0, false
	for i, r := range s {
		if open != 0 {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == open:
				segs = append(segs, segment{text: s[start : i+1], quoted: true})
				start, open = i+1, 0
			}
			continue
		}
		if strings.ContainsRune(quotes, r) {
			if i > start {
				segs = append(segs, segment{text: s[start:i]})
			}
			start, open = i, r
		}
	}
	if start < len(s) {
		segs = append(segs, segment{text: s[start:], quoted: open != 0})
	}
	return segs
}

// mapUnquoted rewrites only the parts of s outside quoted literals.
func mapUnquoted(s, quotes string, fn func(string) string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, seg := range splitQuoted(s, quotes) {
		if seg.quoted {
			b.WriteString(seg.text)
		} else {
			b.WriteString(fn(seg.text))
		}
	}
	return b.String()
}

// splitUnquoted splits s around every sep that is outside a quoted literal.
func splitUnquoted(s, quotes string, sep string) []string {
	parts := []string{""}
	for _, seg := range splitQuoted(s, quotes) {
		if seg.quoted {
			parts[len(parts)-1] += seg.text
			continue
		}
		pieces := strings.Split(seg.text, sep)
		parts[len(parts)-1] += pieces[0]
		parts = append(parts, pieces[1:]...)
	}
	return parts
}

// stages splits a piped query into trimmed, non-empty stages.
func stages(s, quotes string) []string {
	var out []string
	for _, p := range splitUnquoted(s, quotes, "|") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// leadingWord returns the first whitespace-delimited word of s, lowercased.
func leadingWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}
