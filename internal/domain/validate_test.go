package domain_test

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/abdidvp/detectlint/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResult() *domain.ValidationResult {
	return domain.NewResult(domain.Detection{ID: "det-1", Content: "x", Format: domain.FormatSplunk})
}

func TestNewResult(t *testing.T) {
	r := newResult()

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, "det-1", r.DetectionID)
	assert.Equal(t, domain.StatusSuccess, r.Status)
	assert.InDelta(t, 100.0, r.ConfidenceScore, 0.0001)
	assert.Empty(t, r.Issues)
	assert.Equal(t, domain.FormatSplunk, r.SourceFormat)
	require.Len(t, r.ValidationHistory, 1)
	assert.Equal(t, domain.ActionStarted, r.ValidationHistory[0].Action)
	assert.Equal(t, "splunk", r.ValidationHistory[0].Details["source_format"])
}

func TestNewResult_UniqueIDs(t *testing.T) {
	assert.NotEqual(t, newResult().ID, newResult().ID)
}

func TestAddIssue_ThreeMediumIssuesWarn(t *testing.T) {
	r := newResult()
	for range 3 {
		r.AddIssue(domain.ValidationIssue{Message: "m", Severity: domain.SeverityMedium, Code: domain.CodePatternMismatch})
	}

	assert.InDelta(t, 85.0, r.ConfidenceScore, 0.0001)
	assert.Equal(t, domain.StatusWarning, r.Status)
	assert.Len(t, r.Issues, 3)
	assert.Len(t, r.ValidationHistory, 4)
}

func TestAddIssue_HighForcesError(t *testing.T) {
	r := newResult()
	r.AddIssue(domain.ValidationIssue{Severity: domain.SeverityHigh, Code: domain.CodeMissingField})

	assert.Equal(t, domain.StatusError, r.Status)
	assert.InDelta(t, 90.0, r.ConfidenceScore, 0.0001)
}

func TestAddIssue_SingleLowStaysSuccess(t *testing.T) {
	r := newResult()
	r.AddIssue(domain.ValidationIssue{Severity: domain.SeverityLow})

	assert.InDelta(t, 98.0, r.ConfidenceScore, 0.0001)
	assert.Equal(t, domain.StatusSuccess, r.Status)
}

func TestAddIssue_ScoreClampsAtZero(t *testing.T) {
	r := newResult()
	for range 15 {
		r.AddIssue(domain.ValidationIssue{Severity: domain.SeverityHigh})
	}
	assert.Zero(t, r.ConfidenceScore)
	assert.Equal(t, domain.StatusError, r.Status)
}

func TestAddIssue_StampsTimestamp(t *testing.T) {
	r := newResult()
	r.AddIssue(domain.ValidationIssue{Severity: domain.SeverityLow})
	assert.False(t, r.Issues[0].Timestamp.IsZero())

	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	r.AddIssue(domain.ValidationIssue{Severity: domain.SeverityLow, Timestamp: fixed})
	assert.Equal(t, fixed, r.Issues[1].Timestamp)
}

func TestAddIssue_HistoryRecordsDelta(t *testing.T) {
	r := newResult()
	r.AddIssue(domain.ValidationIssue{Severity: domain.SeverityMedium, Code: domain.CodePatternMismatch})

	entry := r.ValidationHistory[1]
	assert.Equal(t, domain.ActionIssueAdded, entry.Action)
	assert.Equal(t, 1002, entry.Details["issue_code"])
	assert.Equal(t, "medium", entry.Details["severity"])
	assert.InDelta(t, -5.0, entry.Details["score_delta"], 0.0001)
}

func TestAddIssue_RandomSequencesHoldInvariants(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for run := 0; run < 200; run++ {
		r := newResult()
		prev := r.ConfidenceScore
		sawHigh := false
		n := rng.IntN(30)
		for i := 0; i < n; i++ {
			sev := domain.Severities[rng.IntN(len(domain.Severities))]
			sawHigh = sawHigh || sev == domain.SeverityHigh
			r.AddIssue(domain.ValidationIssue{Severity: sev})

			require.GreaterOrEqual(t, r.ConfidenceScore, 0.0)
			require.LessOrEqual(t, r.ConfidenceScore, 100.0)
			require.LessOrEqual(t, r.ConfidenceScore, prev)
			prev = r.ConfidenceScore

			switch {
			case sawHigh:
				require.Equal(t, domain.StatusError, r.Status)
			case r.ConfidenceScore < domain.ConfidenceThreshold:
				require.Equal(t, domain.StatusWarning, r.Status)
			default:
				require.Equal(t, domain.StatusSuccess, r.Status)
			}
		}
	}
}

func TestComplete_AppendsCompletedEntry(t *testing.T) {
	r := newResult()
	r.AddIssue(domain.ValidationIssue{Severity: domain.SeverityLow})
	r.Complete()

	last := r.ValidationHistory[len(r.ValidationHistory)-1]
	assert.Equal(t, domain.ActionCompleted, last.Action)
	assert.Equal(t, 1, last.Details["issue_count"])
	assert.Equal(t, "success", last.Details["status"])
}

func TestClone_SharesNothing(t *testing.T) {
	r := newResult()
	r.AddIssue(domain.ValidationIssue{Severity: domain.SeverityLow, Suggestions: []string{"a"}})
	r.FormatSpecificDetails["k"] = "v"

	c := r.Clone()
	c.Issues[0].Suggestions[0] = "changed"
	c.FormatSpecificDetails["k"] = "changed"
	c.AddIssue(domain.ValidationIssue{Severity: domain.SeverityHigh})

	assert.Equal(t, "a", r.Issues[0].Suggestions[0])
	assert.Equal(t, "v", r.FormatSpecificDetails["k"])
	assert.Len(t, r.Issues, 1)
	assert.Equal(t, domain.StatusSuccess, r.Status)
}

func TestIssueCodes_InsertionOrder(t *testing.T) {
	r := newResult()
	r.AddIssue(domain.ValidationIssue{Severity: domain.SeverityLow, Code: domain.CodeUnknown})
	r.AddIssue(domain.ValidationIssue{Severity: domain.SeverityHigh, Code: domain.CodeInvalidRuleShape})

	assert.Equal(t, []domain.IssueCode{1000, 1004}, r.IssueCodes())
}

func TestStatusFor_Empty(t *testing.T) {
	assert.Equal(t, domain.StatusSuccess, domain.StatusFor(nil))
	assert.InDelta(t, 100.0, domain.ScoreFor(nil), 0.0001)
}

func TestValidationResult_Restamp(t *testing.T) {
	r := domain.NewResult(domain.Detection{ID: "a", Format: domain.FormatKQL})
	r.AddIssue(domain.ValidationIssue{Severity: domain.SeverityLow, Code: domain.CodeUnknown, Message: "x"})
	r.Complete()
	gaps := make([]time.Duration, len(r.ValidationHistory))
	for i, h := range r.ValidationHistory {
		gaps[i] = h.Timestamp.Sub(r.CreatedAt)
	}

	at := r.CreatedAt.Add(time.Hour)
	r.Restamp(at)

	assert.Equal(t, at, r.CreatedAt)
	for i, h := range r.ValidationHistory {
		assert.Equal(t, gaps[i], h.Timestamp.Sub(at))
	}
	assert.False(t, r.Issues[0].Timestamp.Before(at))
}
