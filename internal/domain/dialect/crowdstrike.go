package dialect

import (
	"regexp"
	"strings"

	"github.com/abdidvp/detectlint/internal/domain"
)

var (
	falconSignature = regexp.MustCompile(`^#?[A-Za-z_][\w.]*\s*!?=\s*\S`)
	falconPipe      = regexp.MustCompile(`\s*\|\s*`)
	falconEventName = regexp.MustCompile(`(?i)#?event_simpleName\s*=\s*"?([\w*]+)`)
)

const checkFalconEventName = "EventNameFilter"

func crowdstrikeEntry() Entry {
	return Entry{
		Format:        domain.FormatCrowdStrike,
		Name:          "CrowdStrike Falcon",
		Signature:     falconSignature,
		SignatureHint: "start with a field filter such as #event_simpleName=ProcessRollup2",
		Hints:         SanitizeHints{Quotes: `"`},
		Formatter:     formatFalcon,
		Inspect:       inspectFalcon,
		InspectChecks: []string{checkFalconEventName},
		Extensions:    []string{".cql", ".falcon"},
	}
}

func formatFalcon(s string) string {
	s = mapUnquoted(s, `"`, func(part string) string {
		return falconPipe.ReplaceAllString(part, " | ")
	})
	return strings.TrimSpace(s)
}

func inspectFalcon(content string, _ domain.DialectProfile) Inspection {
	in := Inspection{Checks: []string{checkFalconEventName}}

	var event string
	if m := falconEventName.FindStringSubmatch(content); m != nil {
		event = m[1]
	} else {
		in.Issues = append(in.Issues, finding(domain.SeverityLow, domain.CodeUnknown,
			"query does not filter on event_simpleName", "",
			"narrow the query with #event_simpleName=<EventType>"))
	}

	in.Details = map[string]any{
		"event_simple_name": event,
		"stage_count":       len(stages(content, `"`)),
	}
	return in
}
