package dialect

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/abdidvp/detectlint/internal/domain"
)

var (
	splunkSignature = regexp.MustCompile(`(?i)^(?:` +
		`search\s+[^|\s]` +
		`|(?:NOT\s+)?[\w.:"'*-]+\s*!?=` +
		`|\|\s*(?:tstats|inputlookup|makeresults|datamodel|rest|metasearch|from|pivot|mstats|dbinspect|eventcount)\b` +
		`)`)
	splunkSearchVerb  = regexp.MustCompile(`(?i)^search\b`)
	splunkPipe        = regexp.MustCompile(`\s*\|\s*`)
	splunkAggregation = regexp.MustCompile(`(?i)\b(?:count|dc|distinct_count|sum|sumsq|avg|mean|min|max|values|list|earliest|latest|first|last|median|mode|stdev|var|range|estdc|rate|perc\d+|p\d+)\b`)
	splunkAs          = regexp.MustCompile(`(?i)\sas\s`)
)

var splunkCommands = []string{
	"search", "where", "stats", "eventstats", "streamstats", "tstats", "chart", "timechart",
	"eval", "rename", "table", "fields", "dedup", "sort", "head", "tail", "top", "rare",
	"rex", "regex", "lookup", "inputlookup", "outputlookup", "join", "append", "appendcols",
	"transaction", "bin", "bucket", "spath", "fillnull", "makemv", "mvexpand", "convert",
	"iplocation", "geostats", "datamodel", "from", "makeresults", "rest", "metasearch",
	"pivot", "mstats", "dbinspect", "eventcount", "return", "format", "collect", "sendemail",
	"map", "multisearch", "union", "xyseries", "untable", "foreach", "addtotals", "accum",
	"delta", "autoregress", "localize", "reverse", "uniq", "nomv", "strcat", "cluster",
	"anomalydetection", "predict", "trendline", "kvform", "extract", "xmlkv", "tags",
	"typer", "fieldsummary", "rangemap", "filldown", "outputcsv", "inputcsv", "abstract",
}

var splunkStatsCommands = []string{"stats", "eventstats", "streamstats", "tstats", "chart", "timechart"}

const (
	checkSplunkPipelineDepth = "PipelineDepth"
	checkSplunkCommands      = "KnownCommands"
	checkSplunkClauses       = "CommandClauses"
)

func splunkEntry() Entry {
	return Entry{
		Format:        domain.FormatSplunk,
		Name:          "Splunk SPL",
		Signature:     splunkSignature,
		SignatureHint: "start with a search term such as index=main or a generating command such as | tstats",
		Hints:         SanitizeHints{Quotes: `"`},
		Formatter:     formatSplunk,
		Inspect:       inspectSplunk,
		InspectChecks: []string{checkSplunkPipelineDepth, checkSplunkCommands, checkSplunkClauses},
		Extensions:    []string{".spl"},
	}
}

// formatSplunk single-spaces pipes and adds the implicit search verb.
func formatSplunk(s string) string {
	s = mapUnquoted(s, `"`, func(part string) string {
		return splunkPipe.ReplaceAllString(part, " | ")
	})
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "|") && !splunkSearchVerb.MatchString(s) {
		s = "search " + s
	}
	return s
}

func inspectSplunk(content string, profile domain.DialectProfile) Inspection {
	in := Inspection{Checks: []string{checkSplunkPipelineDepth, checkSplunkCommands, checkSplunkClauses}}
	parts := stages(content, `"`)

	if limit := profile.PipelineDepthLimit(); len(parts) > limit {
		in.Issues = append(in.Issues, finding(domain.SeverityMedium, domain.CodePatternMismatch,
			fmt.Sprintf("search has %d pipeline stages, more than the limit of %d", len(parts), limit), "",
			"split the search or move enrichment into a saved search or data model"))
	}

	commands := make([]string, 0, len(parts))
	for i, stage := range parts {
		cmd := leadingWord(stage)
		commands = append(commands, cmd)

		if !slices.Contains(splunkCommands, cmd) {
			in.Issues = append(in.Issues, finding(domain.SeverityLow, domain.CodeUnknown,
				fmt.Sprintf("unrecognized search command %q", cmd), stageLocation(i),
				"check the command name or confirm the app that provides it is installed"))
			continue
		}
		if msg, hint := splunkClauseProblem(cmd, stage); msg != "" {
			in.Issues = append(in.Issues, finding(domain.SeverityMedium, domain.CodePatternMismatch, msg, stageLocation(i), hint))
		}
	}

	in.Details = map[string]any{
		"pipeline_depth": len(parts),
		"commands":       commands,
	}
	return in
}

func splunkClauseProblem(cmd, stage string) (string, string) {
	_, args, _ := strings.Cut(stage, " ")
	switch {
	case slices.Contains(splunkStatsCommands, cmd) && !splunkAggregation.MatchString(args):
		return fmt.Sprintf("%s has no aggregation function", cmd), "add a function such as count, dc(field) or values(field)"
	case cmd == "eval" && !strings.Contains(args, "="):
		return "eval has no field assignment", "write eval as eval field=expression"
	case cmd == "rename" && !splunkAs.MatchString(" "+args+" "):
		return "rename has no AS clause", "write rename as rename old AS new"
	}
	return "", ""
}
