package dialect

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/abdidvp/detectlint/internal/domain"
)

var (
	kqlSignature = regexp.MustCompile(`^(?:let\s+\w+\s*=[^;]*;\s*)*[A-Za-z_][\w.]*\s*(?:\||$)`)
	kqlLet       = regexp.MustCompile(`^(?:let\s+\w+\s*=[^;]*;\s*)*`)
	kqlTable     = regexp.MustCompile(`^[A-Za-z_][\w.]*`)
	kqlOperator  = regexp.MustCompile(`\s*(==|!=|<=|>=|=~|!~|=>|=|<|>|\+|%)\s*`)
	kqlPipe      = regexp.MustCompile(`\s*\|\s*`)
)

const kqlQuotes = "\"'"

var kqlTabularOperators = []string{
	"where", "filter", "project", "project-away", "project-keep", "project-rename", "project-reorder",
	"extend", "summarize", "join", "union", "take", "limit", "top", "top-nested", "top-hitters",
	"sort", "order", "count", "distinct", "parse", "parse-where", "parse-kv", "mv-expand", "mv-apply",
	"make-series", "render", "evaluate", "lookup", "sample", "sample-distinct", "serialize", "invoke",
	"as", "getschema", "search", "find", "facet", "partition", "range", "print", "reduce", "fork",
	"scan", "consume", "externaldata",
}

const checkKQLOperators = "KnownTabularOperators"

func kqlEntry() Entry {
	return Entry{
		Format:        domain.FormatKQL,
		Name:          "KQL",
		Signature:     kqlSignature,
		SignatureHint: "start with a table name, optionally after let statements, for example SecurityEvent | where EventID == 4625",
		Hints:         SanitizeHints{Quotes: kqlQuotes},
		Formatter:     formatKQL,
		Inspect:       inspectKQL,
		InspectChecks: []string{checkKQLOperators},
		Extensions:    []string{".kql", ".csl"},
	}
}

// formatKQL single-spaces comparison and arithmetic operators and starts each
// pipe stage on its own line.
func formatKQL(s string) string {
	s = mapUnquoted(s, kqlQuotes, func(part string) string {
		part = kqlOperator.ReplaceAllString(part, " $1 ")
		return kqlPipe.ReplaceAllString(part, "\n| ")
	})
	return strings.TrimSpace(s)
}

func inspectKQL(content string, _ domain.DialectProfile) Inspection {
	in := Inspection{Checks: []string{checkKQLOperators}}
	parts := stages(content, kqlQuotes)

	var table string
	if len(parts) > 0 {
		table = kqlTable.FindString(kqlLet.ReplaceAllString(parts[0], ""))
	}

	operators := make([]string, 0, len(parts))
	for i, stage := range parts {
		if i == 0 {
			continue
		}
		op := leadingWord(stage)
		operators = append(operators, op)
		if !slices.Contains(kqlTabularOperators, op) {
			in.Issues = append(in.Issues, finding(domain.SeverityLow, domain.CodeUnknown,
				fmt.Sprintf("unrecognized tabular operator %q", op), stageLocation(i),
				"check the operator name against the KQL reference"))
		}
	}

	in.Details = map[string]any{
		"table":       table,
		"stage_count": len(parts),
		"operators":   operators,
	}
	return in
}
