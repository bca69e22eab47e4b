package dialect

import (
	"fmt"
	"path"
	"regexp"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/abdidvp/detectlint/internal/domain"
)

var (
	sigmaSignature = regexp.MustCompile(`(?m)^[A-Za-z_][\w-]*\s*:`)
	sigmaTitle     = regexp.MustCompile(`(?m)^title\s*:\s*\S`)
	sigmaCondToken = regexp.MustCompile(`[\w*-]+`)
)

var sigmaLevels = []string{"informational", "low", "medium", "high", "critical"}

var sigmaConditionKeywords = []string{"and", "or", "not", "of", "all", "any", "them"}

const (
	checkSigmaTitle     = "TitleDeclared"
	checkSigmaYAML      = "WellFormedYAML"
	checkSigmaSections  = "RequiredSections"
	checkSigmaCondition = "DetectionCondition"
	checkSigmaSearchIDs = "SearchIdentifiers"
	checkSigmaLevel     = "KnownLevel"
)

func sigmaEntry() Entry {
	return Entry{
		Format:        domain.FormatSigma,
		Name:          "Sigma",
		Signature:     sigmaSignature,
		SignatureHint: "write the rule as YAML key: value pairs",
		Hints:         SanitizeHints{PreserveLines: true},
		Requirements: []Requirement{{
			ID:         checkSigmaTitle,
			Code:       domain.CodeMissingField,
			Test:       sigmaTitle,
			Message:    "Sigma rule has no title",
			Suggestion: "add a top-level title: field describing what the rule detects",
		}},
		Formatter:     formatSigma,
		Inspect:       inspectSigma,
		InspectChecks: []string{checkSigmaYAML, checkSigmaSections, checkSigmaCondition, checkSigmaSearchIDs, checkSigmaLevel},
		Extensions:    []string{".yml", ".yaml"},
	}
}

// formatSigma strips trailing whitespace from every line. Indentation is
// structural in YAML and is left as is.
func formatSigma(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	return strings.Join(lines, "\n")
}

func inspectSigma(content string, profile domain.DialectProfile) Inspection {
	in := Inspection{Checks: []string{checkSigmaYAML}}

	var doc map[string]any
	if err := yaml.Unmarshal([]byte(content), &doc); err != nil {
		in.Issues = append(in.Issues, finding(domain.SeverityHigh, domain.CodePatternMismatch,
			fmt.Sprintf("rule is not well-formed YAML: %v", err), "",
			"fix the YAML syntax; check indentation and quoting"))
		in.Details = map[string]any{}
		return in
	}

	fields := make([]string, 0, len(doc))
	for k := range doc {
		fields = append(fields, k)
	}
	slices.Sort(fields)

	in.Checks = append(in.Checks, checkSigmaSections, checkSigmaCondition, checkSigmaSearchIDs, checkSigmaLevel)
	if profile.SigmaSectionsRequired() {
		for _, section := range []string{"logsource", "detection"} {
			if _, ok := doc[section]; !ok {
				in.Issues = append(in.Issues, finding(domain.SeverityMedium, domain.CodeMissingField,
					fmt.Sprintf("Sigma rule has no %s section", section), "",
					fmt.Sprintf("add a %s: mapping", section)))
			}
		}
	}

	if det, ok := doc["detection"].(map[string]any); ok {
		if _, ok := det["condition"]; !ok {
			in.Issues = append(in.Issues, finding(domain.SeverityMedium, domain.CodeMissingField,
				"detection section has no condition", "detection",
				"add a condition: combining the selections, for example condition: selection"))
		}
		in.Issues = append(in.Issues, inspectSearchIdentifiers(det)...)
	}

	level, _ := doc["level"].(string)
	if level != "" && !slices.Contains(sigmaLevels, strings.ToLower(level)) {
		in.Issues = append(in.Issues, finding(domain.SeverityLow, domain.CodeUnknown,
			fmt.Sprintf("unknown level %q", level), "level",
			"use one of informational, low, medium, high, critical"))
	}
	status, _ := doc["status"].(string)

	in.Details = map[string]any{
		"fields": fields,
		"level":  level,
		"status": status,
	}
	return in
}

// inspectSearchIdentifiers checks the selections under detection: at least one
// must exist, each must hold criteria, and the condition may only name
// selections that are defined.
func inspectSearchIdentifiers(det map[string]any) []domain.ValidationIssue {
	ids := make([]string, 0, len(det))
	for k := range det {
		if k != "condition" && k != "timeframe" {
			ids = append(ids, k)
		}
	}
	if len(ids) == 0 {
		return []domain.ValidationIssue{finding(domain.SeverityHigh, domain.CodeMissingField,
			"detection section has no search identifiers", "detection",
			"add a selection such as selection: {EventID: 4688} and reference it from the condition")}
	}
	slices.Sort(ids)

	var issues []domain.ValidationIssue
	for _, id := range ids {
		loc := "detection." + id
		empty := false
		switch v := det[id].(type) {
		case map[string]any:
			empty = len(v) == 0
		case []any:
			empty = len(v) == 0
		default:
			issues = append(issues, finding(domain.SeverityMedium, domain.CodePatternMismatch,
				fmt.Sprintf("search identifier %q is not a map of fields or a list of values", id), loc,
				"write the identifier as field: value pairs or as a list of keywords"))
			continue
		}
		if empty {
			issues = append(issues, finding(domain.SeverityMedium, domain.CodeMissingField,
				fmt.Sprintf("search identifier %q has no criteria", id), loc,
				"add at least one field: value pair to the identifier"))
		}
	}

	for _, ref := range conditionRefs(det["condition"]) {
		if !slices.ContainsFunc(ids, func(id string) bool {
			ok, _ := path.Match(ref, id)
			return ok
		}) {
			issues = append(issues, finding(domain.SeverityMedium, domain.CodePatternMismatch,
				fmt.Sprintf("condition references undefined search identifier %q", ref), "detection.condition",
				"define the identifier under detection or fix the name in the condition"))
		}
	}
	return issues
}

// conditionRefs returns the identifier patterns a condition names, in order
// and without duplicates. Aggregations after a pipe are ignored.
func conditionRefs(cond any) []string {
	var exprs []string
	switch v := cond.(type) {
	case string:
		exprs = append(exprs, v)
	case []any:
		for _, e := range v {
			if s, ok := e.(string); ok {
				exprs = append(exprs, s)
			}
		}
	}

	var refs []string
	for _, expr := range exprs {
		expr, _, _ = strings.Cut(expr, "|")
		for _, tok := range sigmaCondToken.FindAllString(expr, -1) {
			if isDigits(tok) || slices.Contains(sigmaConditionKeywords, strings.ToLower(tok)) || slices.Contains(refs, tok) {
				continue
			}
			refs = append(refs, tok)
		}
	}
	return refs
}

func isDigits(s string) bool {
	return strings.Trim(s, "0123456789") == ""
}
