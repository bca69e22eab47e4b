package domain

import (
	"slices"
	"strings"

	"github.com/fatih/camelcase"
)

// ValidationReport is a read-only view derived from a completed result.
type ValidationReport struct {
	ResultID        string           `json:"result_id"`
	DetectionID     string           `json:"detection_id"`
	Status          Status           `json:"status"`
	Summary         map[Severity]int `json:"summary"`
	SuccessMetrics  SuccessMetrics   `json:"success_metrics"`
	Recommendations []string         `json:"recommendations"`
	FormatAnalysis  FormatAnalysis   `json:"format_analysis"`
}

type SuccessMetrics struct {
	ConfidenceScore    float64 `json:"confidence_score"`
	ValidationCoverage float64 `json:"validation_coverage"`
	IssueDensity       float64 `json:"issue_density"`
}

type FormatAnalysis struct {
	SourceFormat Format          `json:"source_format"`
	Details      map[string]any  `json:"details,omitempty"`
	Checks       []CheckCoverage `json:"checks,omitempty"`
}

// CheckCoverage tells whether one named structural check was exercised.
type CheckCoverage struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Ran   bool   `json:"ran"`
}

const (
	RecommendReviewHigh   = "Review high severity issues to improve confidence score"
	RecommendManualReview = "Consider manual validation of critical detection components"
	recommendFallback     = "Review the rule against the dialect reference documentation"
)

var dialectRecommendations = map[Format]string{
	FormatSplunk:      "Verify SPL syntax and field mappings",
	FormatSigma:       "Ensure SIGMA rule structure follows best practices",
	FormatKQL:         "Check KQL table names and operator usage against the workspace schema",
	FormatYARA:        "Confirm YARA string definitions are referenced by the condition",
	FormatYARAL:       "Verify YARA-L event variables and UDM field paths",
	FormatQRadar:      "Verify AQL field names and time window against the QRadar event schema",
	FormatPaloAlto:    "Verify XQL dataset names and field mappings",
	FormatCrowdStrike: "Verify Falcon event_simpleName and field names",
}

// DialectRecommendation returns the report guidance for f.
func DialectRecommendation(f Format) string {
	if rec, ok := dialectRecommendations[f]; ok {
		return rec
	}
	return recommendFallback
}

// BuildReport summarizes r. It never modifies r.
func BuildReport(r *ValidationResult) ValidationReport {
	summary := make(map[Severity]int, len(Severities))
	for _, s := range Severities {
		summary[s] = 0
	}
	for _, is := range r.Issues {
		summary[is.Severity]++
	}

	var recs []string
	if r.ConfidenceScore < ConfidenceThreshold {
		recs = append(recs, RecommendReviewHigh, RecommendManualReview)
	}
	recs = append(recs, DialectRecommendation(r.SourceFormat))

	details := make(map[string]any, len(r.FormatSpecificDetails))
	for k, v := range r.FormatSpecificDetails {
		details[k] = v
	}

	return ValidationReport{
		ResultID:    r.ID,
		DetectionID: r.DetectionID,
		Status:      r.Status,
		Summary:     summary,
		SuccessMetrics: SuccessMetrics{
			ConfidenceScore:    r.ConfidenceScore,
			ValidationCoverage: Coverage(r.ChecksKnown, r.ChecksRun),
			IssueDensity:       float64(len(r.Issues)) / 100.0,
		},
		Recommendations: recs,
		FormatAnalysis: FormatAnalysis{
			SourceFormat: r.SourceFormat,
			Details:      details,
			Checks:       checkCoverage(r.ChecksKnown, r.ChecksRun),
		},
	}
}

// Coverage is the percentage of known checks that ran, 0 when none are known.
func Coverage(known, run []string) float64 {
	if len(known) == 0 {
		return 0
	}
	hit := 0
	for _, k := range known {
		if slices.Contains(run, k) {
			hit++
		}
	}
	return 100 * float64(hit) / float64(len(known))
}

func checkCoverage(known, run []string) []CheckCoverage {
	out := make([]CheckCoverage, 0, len(known))
	for _, k := range known {
		out = append(out, CheckCoverage{ID: k, Label: CheckLabel(k), Ran: slices.Contains(run, k)})
	}
	return out
}

// CheckLabel turns a check id such as "TitleDeclared" into "title declared".
func CheckLabel(id string) string {
	return strings.ToLower(strings.Join(camelcase.Split(id), " "))
}
