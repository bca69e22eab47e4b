package domain

import (
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
)

// ValidationIssue is one structural finding. Issues are facts: once added to a
// result they are never modified.
type ValidationIssue struct {
	Message     string    `json:"message"`
	Severity    Severity  `json:"severity"`
	Location    string    `json:"location,omitempty"`
	Code        IssueCode `json:"code"`
	Suggestions []string  `json:"suggestions,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// History actions recorded on a ValidationResult.
const (
	ActionStarted    = "validation_started"
	ActionIssueAdded = "issue_added"
	ActionCompleted  = "validation_completed"
)

// HistoryEntry is one lifecycle event of a validation.
type HistoryEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Action    string         `json:"action"`
	Details   map[string]any `json:"details,omitempty"`
}

// ValidationResult accumulates the findings for one detection. A result is
// owned by the goroutine validating its detection and must not be shared
// until that validation has completed.
type ValidationResult struct {
	ID                    string            `json:"id"`
	DetectionID           string            `json:"detection_id"`
	CreatedAt             time.Time         `json:"created_at"`
	Status                Status            `json:"status"`
	ConfidenceScore       float64           `json:"confidence_score"`
	Issues                []ValidationIssue `json:"issues"`
	SourceFormat          Format            `json:"source_format"`
	ValidationHistory     []HistoryEntry    `json:"validation_history"`
	FormatSpecificDetails map[string]any    `json:"format_specific_details,omitempty"`
	ChecksKnown           []string          `json:"checks_known,omitempty"`
	ChecksRun             []string          `json:"checks_run,omitempty"`
	NormalizedContent     string            `json:"normalized_content,omitempty"`
}

// NewResult starts a validation for d.
func NewResult(d Detection) *ValidationResult {
	now := time.Now().UTC()
	return &ValidationResult{
		ID:              uuid.NewString(),
		DetectionID:     d.ID,
		CreatedAt:       now,
		Status:          StatusSuccess,
		ConfidenceScore: MaxScore,
		Issues:          []ValidationIssue{},
		SourceFormat:    d.Format,
		ValidationHistory: []HistoryEntry{{
			Timestamp: now,
			Action:    ActionStarted,
			Details:   map[string]any{"source_format": string(d.Format)},
		}},
		FormatSpecificDetails: map[string]any{},
	}
}

// AddIssue appends issue and recomputes the score and status from the full
// issue set.
func (r *ValidationResult) AddIssue(issue ValidationIssue) {
	if issue.Timestamp.IsZero() {
		issue.Timestamp = time.Now().UTC()
	}
	issue.Suggestions = slices.Clone(issue.Suggestions)

	before := r.ConfidenceScore
	r.Issues = append(r.Issues, issue)
	r.ConfidenceScore = ScoreFor(r.Issues)
	r.Status = StatusFor(r.Issues)

	r.ValidationHistory = append(r.ValidationHistory, HistoryEntry{
		Timestamp: issue.Timestamp,
		Action:    ActionIssueAdded,
		Details: map[string]any{
			"issue_code":  int(issue.Code),
			"severity":    string(issue.Severity),
			"weight":      issue.Severity.Weight(),
			"score_delta": r.ConfidenceScore - before,
		},
	})
}

// RecordChecks notes which structural checks the dialect knows and which ran.
func (r *ValidationResult) RecordChecks(known, run []string) {
	r.ChecksKnown = slices.Clone(known)
	r.ChecksRun = slices.Clone(run)
}

// Complete closes the validation history.
func (r *ValidationResult) Complete() {
	r.ValidationHistory = append(r.ValidationHistory, HistoryEntry{
		Timestamp: time.Now().UTC(),
		Action:    ActionCompleted,
		Details: map[string]any{
			"status":           string(r.Status),
			"confidence_score": r.ConfidenceScore,
			"issue_count":      len(r.Issues),
		},
	})
}

// IssueCodes returns the codes of all issues in insertion order.
func (r *ValidationResult) IssueCodes() []IssueCode {
	codes := make([]IssueCode, len(r.Issues))
	for i, is := range r.Issues {
		codes[i] = is.Code
	}
	return codes
}

// Restamp moves the result to at, shifting every issue and history timestamp
// by the same amount so their order and spacing are kept.
func (r *ValidationResult) Restamp(at time.Time) {
	shift := at.Sub(r.CreatedAt)
	r.CreatedAt = at
	for i := range r.Issues {
		r.Issues[i].Timestamp = r.Issues[i].Timestamp.Add(shift)
	}
	for i := range r.ValidationHistory {
		r.ValidationHistory[i].Timestamp = r.ValidationHistory[i].Timestamp.Add(shift)
	}
}

// Clone returns a deep copy that shares no slices or maps with r.
func (r *ValidationResult) Clone() *ValidationResult {
	c := *r
	c.Issues = make([]ValidationIssue, len(r.Issues))
	for i, is := range r.Issues {
		is.Suggestions = slices.Clone(is.Suggestions)
		c.Issues[i] = is
	}
	c.ValidationHistory = make([]HistoryEntry, len(r.ValidationHistory))
	for i, h := range r.ValidationHistory {
		h.Details = maps.Clone(h.Details)
		c.ValidationHistory[i] = h
	}
	c.FormatSpecificDetails = maps.Clone(r.FormatSpecificDetails)
	c.ChecksKnown = slices.Clone(r.ChecksKnown)
	c.ChecksRun = slices.Clone(r.ChecksRun)
	return &c
}

// ScoreFor folds issues into a confidence score clamped to [0, 100].
func ScoreFor(issues []ValidationIssue) float64 {
	score := MaxScore
	for _, is := range issues {
		score -= is.Severity.Weight()
	}
	if score < 0 {
		return 0
	}
	return score
}

// StatusFor derives the status of an issue set: any high issue is an error,
// otherwise a score below ConfidenceThreshold is a warning.
func StatusFor(issues []ValidationIssue) Status {
	for _, is := range issues {
		if is.Severity == SeverityHigh {
			return StatusError
		}
	}
	if ScoreFor(issues) < ConfidenceThreshold {
		return StatusWarning
	}
	return StatusSuccess
}
