package dialect

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/abdidvp/detectlint/internal/domain"
)

var (
	xqlSignature = regexp.MustCompile(`(?i)^(?:config\s+[^|]*\|\s*)?(?:dataset|preset|datamodel)\s*=\s*[\w.]+`)
	xqlOperator  = regexp.MustCompile(`\s*(->|!=|<=|>=|~=|=|<|>)\s*`)
	xqlPipe      = regexp.MustCompile(`\s*\|\s*`)
	xqlSource    = regexp.MustCompile(`(?i)(dataset|preset|datamodel)\s*=\s*([\w.]+)`)
)

var xqlStages = []string{
	"alter", "arrayexpand", "bin", "call", "comp", "config", "dataset", "datamodel", "dedup",
	"fields", "filter", "getrole", "iploc", "join", "limit", "preset", "replacenull", "sort",
	"tag", "target", "top", "transaction", "union", "view", "window", "windowcomp",
}

const checkXQLStages = "KnownStages"

func paloaltoEntry() Entry {
	return Entry{
		Format:        domain.FormatPaloAlto,
		Name:          "Cortex XQL",
		Signature:     xqlSignature,
		SignatureHint: "start the query with dataset = <name>, for example dataset = xdr_data | filter ...",
		Hints:         SanitizeHints{Quotes: `"`},
		Formatter:     formatXQL,
		Inspect:       inspectXQL,
		InspectChecks: []string{checkXQLStages},
		Extensions:    []string{".xql"},
	}
}

// formatXQL single-spaces comparison operators, leaves JSON path arrows
// tight and starts each stage on its own line.
func formatXQL(s string) string {
	s = mapUnquoted(s, `"`, func(part string) string {
		part = xqlOperator.ReplaceAllStringFunc(part, func(op string) string {
			op = strings.TrimSpace(op)
			if op == "->" {
				return op
			}
			return " " + op + " "
		})
		return xqlPipe.ReplaceAllString(part, "\n| ")
	})
	return strings.TrimSpace(s)
}

func inspectXQL(content string, _ domain.DialectProfile) Inspection {
	in := Inspection{Checks: []string{checkXQLStages}}
	parts := stages(content, `"`)

	var names []string
	for i, stage := range parts {
		name := strings.TrimRight(leadingWord(stage), "=")
		names = append(names, name)
		if !slices.Contains(xqlStages, name) {
			in.Issues = append(in.Issues, finding(domain.SeverityLow, domain.CodeUnknown,
				fmt.Sprintf("unrecognized stage %q", name), stageLocation(i),
				"check the stage name against the XQL reference"))
		}
	}

	var source string
	if m := xqlSource.FindStringSubmatch(content); m != nil {
		source = m[2]
	}
	in.Details = map[string]any{
		"dataset":     source,
		"stage_count": len(parts),
		"stages":      names,
	}
	return in
}
