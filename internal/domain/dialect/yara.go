package dialect

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/abdidvp/detectlint/internal/domain"
)

var (
	yaraSignature = regexp.MustCompile(`(?i)^(?:(?:import|include)\s+"[^"]*"\s*)*(?:(?:private|global)\s+)*rule\s+[A-Za-z_]\w*`)
	yaraRuleBlock = regexp.MustCompile(`rule\s+\w+[^{]*\{`)
	yaraRuleName  = regexp.MustCompile(`(?i)(?:^|\s)rule\s+([A-Za-z_]\w*)`)
	yaraString    = regexp.MustCompile(`(?m)^\s*\$\w*\s*=`)
	yaraSection   = regexp.MustCompile(`^(meta|strings|condition|events|match|outcome|options)\s*:\s*(.*)$`)
	yaraLabel     = regexp.MustCompile(`^(?:meta|strings|condition|events|match|outcome|options)\s*:`)
)

var yaraReserved = []string{
	"all", "and", "any", "ascii", "at", "base64", "base64wide", "condition", "contains", "defined",
	"endswith", "entrypoint", "false", "filesize", "for", "fullword", "global", "icontains",
	"iendswith", "iequals", "import", "in", "include", "int16", "int16be", "int32", "int32be",
	"int8", "int8be", "istartswith", "matches", "meta", "nocase", "none", "not", "of", "or",
	"private", "rule", "startswith", "strings", "them", "true", "uint16", "uint16be", "uint32",
	"uint32be", "uint8", "uint8be", "wide", "xor",
}

const (
	checkYARARuleBlock = "RuleBlock"
	checkYARABraces    = "BalancedBraces"
	checkYARACondition = "ConditionSection"
	checkYARAEvents    = "EventsSection"
	checkYARAName      = "RuleIdentifier"
)

func yaraEntry() Entry {
	return Entry{
		Format:        domain.FormatYARA,
		Name:          "YARA",
		Signature:     yaraSignature,
		SignatureHint: "declare the rule as rule <name> { ... }",
		Hints:         SanitizeHints{PreserveLines: true, Quotes: `"`},
		Requirements:  []Requirement{yaraBlockRequirement()},
		Formatter:     formatYARA,
		Inspect:       func(s string, _ domain.DialectProfile) Inspection { return inspectYARA(s, false) },
		InspectChecks: []string{checkYARABraces, checkYARAName, checkYARACondition},
		Extensions:    []string{".yar", ".yara"},
	}
}

func yaralEntry() Entry {
	return Entry{
		Format:        domain.FormatYARAL,
		Name:          "YARA-L",
		Signature:     yaraSignature,
		SignatureHint: "declare the rule as rule <name> { meta: ... events: ... condition: ... }",
		Hints:         SanitizeHints{PreserveLines: true, Quotes: `"`},
		Requirements:  []Requirement{yaraBlockRequirement()},
		Formatter:     formatYARA,
		Inspect:       func(s string, _ domain.DialectProfile) Inspection { return inspectYARA(s, true) },
		InspectChecks: []string{checkYARABraces, checkYARAName, checkYARACondition, checkYARAEvents},
		Extensions:    []string{".yaral"},
	}
}

func yaraBlockRequirement() Requirement {
	return Requirement{
		ID:         checkYARARuleBlock,
		Code:       domain.CodeInvalidRuleShape,
		Test:       yaraRuleBlock,
		Message:    "rule declaration has no opening brace",
		Suggestion: "open the rule body with { after the rule name",
	}
}

// ruleLine is one logical line of a rule and the brace depth it starts at.
type ruleLine struct {
	text  string
	depth int
}

// scanRule splits a rule into logical lines, breaking after a rule-opening
// brace, before a section label and around a rule-closing brace. Braces in string literals, regular
// expressions and comments are ignored. It returns the lines, the final depth
// and the lowest depth reached.
func scanRule(s string) ([]ruleLine, int, int) {
	var (
		lines          []ruleLine
		cur            strings.Builder
		depth, lowest  int
		lineDepth      int
		inString       bool
		inRegex        bool
		inLineComment  bool
		inBlockComment bool
		escaped        bool
		prev           rune
	)
	flush := func() {
		lines = append(lines, ruleLine{text: strings.TrimSpace(cur.String()), depth: lineDepth})
		cur.Reset()
		lineDepth = depth
	}

	runes := []rune(s)
	for i, r := range runes {
		next := rune(0)
		if i+1 < len(runes) {
			next = runes[i+1]
		}
		switch {
		case r == '\n':
			inLineComment, inString, inRegex, escaped = false, false, false, false
			flush()
			prev = r
			continue
		case inLineComment:
		case inBlockComment:
			if prev == '*' && r == '/' {
				inBlockComment = false
			}
		case inString || inRegex:
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case inString && r == '"':
				inString = false
			case inRegex && r == '/':
				inRegex = false
			}
		case r == '/' && next == '/':
			inLineComment = true
		case r == '/' && next == '*':
			inBlockComment = true
		case r == '"':
			inString = true
		case r == '/' && lastNonSpace(cur.String()) == '=':
			inRegex = true
		case r == '{' && depth == 0:
			cur.WriteString(" {")
			depth = 1
			flush()
			prev = r
			continue
		case r == '{':
			depth++
		case r == '}' && depth == 1:
			flush()
			depth = 0
			lineDepth = 0
			cur.WriteRune(r)
			flush()
			prev = r
			continue
		case r == '}':
			depth--
			if depth < lowest {
				lowest = depth
			}
		case depth == 1 && startsSection(runes, i, cur.String()):
			flush()
		}
		cur.WriteRune(r)
		prev = r
	}
	flush()
	return lines, depth, lowest
}

// startsSection reports whether a section label begins at runes[i] after
// other content on the same line.
func startsSection(runes []rune, i int, cur string) bool {
	if strings.TrimSpace(cur) == "" || !strings.HasSuffix(cur, " ") {
		return false
	}
	return yaraLabel.MatchString(string(runes[i:min(i+16, len(runes))]))
}

func lastNonSpace(s string) rune {
	s = strings.TrimRight(s, " ")
	if s == "" {
		return 0
	}
	return rune(s[len(s)-1])
}

// formatYARA puts the rule-opening brace at the end of the header line, each
// section label on its own line indented four spaces, section content
// indented eight, and the rule-closing brace on its own line.
func formatYARA(s string) string {
	lines, _, _ := scanRule(s)

	var out []string
	for _, l := range lines {
		text := collapse(l.text, `"`)
		if text == "" {
			continue
		}
		if text == "{" && l.depth == 0 && len(out) > 0 {
			out[len(out)-1] += " {"
			continue
		}
		switch {
		case l.depth == 0:
			if yaraSignature.MatchString(text) && len(out) > 0 && out[len(out)-1] == "}" {
				out = append(out, "")
			}
			out = append(out, text)
		case yaraSection.MatchString(text):
			m := yaraSection.FindStringSubmatch(text)
			out = append(out, "    "+m[1]+":")
			if m[2] != "" {
				out = append(out, "        "+m[2])
			}
		default:
			out = append(out, "        "+text)
		}
	}
	return strings.Join(out, "\n")
}

func inspectYARA(content string, chronicle bool) Inspection {
	in := Inspection{Checks: []string{checkYARABraces, checkYARAName, checkYARACondition}}
	lines, depth, lowest := scanRule(content)
	if depth != 0 || lowest < 0 {
		in.Issues = append(in.Issues, finding(domain.SeverityHigh, domain.CodeInvalidRuleShape,
			"rule has unbalanced braces", "",
			"make sure every { has a matching }"))
	}

	var names []string
	sections := map[string]int{}
	for _, l := range lines {
		switch {
		case l.depth == 0 && !strings.HasPrefix(l.text, "//"):
			for _, m := range yaraRuleName.FindAllStringSubmatch(l.text, -1) {
				names = append(names, m[1])
			}
		case l.depth == 1:
			if m := yaraSection.FindStringSubmatch(l.text); m != nil {
				sections[m[1]]++
			}
		}
	}

	for _, name := range names {
		if slices.Contains(yaraReserved, strings.ToLower(name)) {
			in.Issues = append(in.Issues, finding(domain.SeverityHigh, domain.CodeInvalidRuleShape,
				fmt.Sprintf("rule name %q is a reserved keyword", name), "rule "+name,
				"rename the rule to an identifier that is not a keyword"))
		}
	}
	if sections["condition"] < len(names) {
		in.Issues = append(in.Issues, finding(domain.SeverityMedium, domain.CodeInvalidRuleShape,
			"rule has no condition section", "",
			"add a condition: section that references the rule's strings or events"))
	}
	if chronicle {
		in.Checks = append(in.Checks, checkYARAEvents)
		if sections["events"] < len(names) {
			in.Issues = append(in.Issues, finding(domain.SeverityMedium, domain.CodeInvalidRuleShape,
				"YARA-L rule has no events section", "",
				"add an events: section binding the UDM events the rule matches"))
		}
	}

	in.Details = map[string]any{
		"rule_names":   names,
		"string_count": len(yaraString.FindAllString(content, -1)),
	}
	return in
}
