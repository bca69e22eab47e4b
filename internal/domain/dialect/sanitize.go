package dialect

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/abdidvp/detectlint/internal/domain"
)

// SanitizeHints tune the sanitizer for one dialect.
type SanitizeHints struct {
	// PreserveLines keeps line structure and leading indentation, collapsing
	// whitespace only within each line.
	PreserveLines bool
	// Quotes lists the runes that open string literals; whitespace inside
	// literals is left alone.
	Quotes string
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// CheckSize rejects content larger than domain.MaxContentBytes.
func CheckSize(content string) error {
	if len(content) > domain.MaxContentBytes {
		return &domain.ContentTooLargeError{Size: len(content), Limit: domain.MaxContentBytes}
	}
	return nil
}

// Sanitize normalizes raw rule text before any structural check. It is
// deterministic and idempotent.
func Sanitize(raw string, hints SanitizeHints) (string, error) {
	if err := CheckSize(raw); err != nil {
		return "", err
	}

	s := strings.ToValidUTF8(raw, "")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '\n':
			return r
		case unicode.IsSpace(r):
			return ' '
		case r == '\uFEFF', unicode.IsControl(r):
			return -1
		}
		return r
	}, s)

	if hints.PreserveLines {
		s = collapseLines(s, hints.Quotes)
	} else {
		s = collapse(s, hints.Quotes)
	}
	return norm.NFC.String(s), nil
}

func collapse(s, quotes string) string {
	s = mapUnquoted(s, quotes, func(part string) string {
		return whitespaceRun.ReplaceAllString(part, " ")
	})
	return strings.TrimSpace(s)
}

func collapseLines(s, quotes string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		body := strings.TrimLeft(line, " ")
		indent := len(line) - len(body)
		body = collapse(body, quotes)
		if body == "" {
			if len(out) > 0 && out[len(out)-1] != "" {
				out = append(out, "")
			}
			continue
		}
		out = append(out, strings.Repeat(" ", indent)+body)
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(dedent(out), "\n")
}

// dedent strips the indentation shared by every non-blank line.
func dedent(lines []string) []string {
	shared := -1
	for _, l := range lines {
		if l == "" {
			continue
		}
		n := len(l) - len(strings.TrimLeft(l, " "))
		if shared < 0 || n < shared {
			shared = n
		}
	}
	if shared <= 0 {
		return lines
	}
	for i, l := range lines {
		if l != "" {
			lines[i] = l[shared:]
		}
	}
	return lines
}
