package dialect

import (
	"regexp"
	"strings"

	"github.com/abdidvp/detectlint/internal/domain"
)

var (
	qradarSignature = regexp.MustCompile(`(?i)^select\s+.+?\s+from\s+[\w"'.-]+`)
	qradarKeyword   = regexp.MustCompile(`(?i)\b(?:select|from|where|and|or|not|group\s+by|order\s+by|having|limit|last|start|stop|as|in|like|ilike|between|is|null|desc|asc|minutes|hours|days|distinct|into)\b`)
	qradarWhere     = regexp.MustCompile(`\bWHERE\b`)
	qradarWindow    = regexp.MustCompile(`\b(?:LAST|START)\b`)
	qradarSource    = regexp.MustCompile(`\bFROM\s+(\w+)`)
)

const qradarQuotes = "'\""

const (
	checkQRadarFilter = "EventFilter"
	checkQRadarWindow = "TimeWindow"
)

func qradarEntry() Entry {
	return Entry{
		Format:        domain.FormatQRadar,
		Name:          "QRadar AQL",
		Signature:     qradarSignature,
		SignatureHint: "write the query as SELECT <fields> FROM events|flows ...",
		Hints:         SanitizeHints{Quotes: qradarQuotes},
		Formatter:     formatQRadar,
		Inspect:       inspectQRadar,
		InspectChecks: []string{checkQRadarFilter, checkQRadarWindow},
		Extensions:    []string{".aql"},
	}
}

// formatQRadar upper-cases AQL keywords outside quoted literals and
// identifiers.
func formatQRadar(s string) string {
	return mapUnquoted(s, qradarQuotes, func(part string) string {
		return qradarKeyword.ReplaceAllStringFunc(part, func(kw string) string {
			return strings.ToUpper(strings.Join(strings.Fields(kw), " "))
		})
	})
}

func inspectQRadar(content string, _ domain.DialectProfile) Inspection {
	in := Inspection{Checks: []string{checkQRadarFilter, checkQRadarWindow}}
	var bare strings.Builder
	for _, seg := range splitQuoted(content, qradarQuotes) {
		if seg.quoted {
			bare.WriteString(" ")
		} else {
			bare.WriteString(seg.text)
		}
	}
	text := bare.String()

	if !qradarWhere.MatchString(text) {
		in.Issues = append(in.Issues, finding(domain.SeverityLow, domain.CodeUnknown,
			"query has no WHERE clause and matches every event", "",
			"filter on a category, QID or log source to narrow the query"))
	}
	if !qradarWindow.MatchString(text) {
		in.Issues = append(in.Issues, finding(domain.SeverityLow, domain.CodeUnknown,
			"query has no LAST or START time window", "",
			"bound the search, for example LAST 24 HOURS"))
	}

	var source string
	if m := qradarSource.FindStringSubmatch(text); m != nil {
		source = strings.ToLower(m[1])
	}
	in.Details = map[string]any{"source": source}
	return in
}
