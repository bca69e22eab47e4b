package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abdidvp/detectlint/internal/domain"
)

func resultWith(id string, issues ...domain.Severity) *domain.ValidationResult {
	r := domain.NewResult(domain.Detection{ID: id, Format: domain.FormatKQL})
	for _, s := range issues {
		r.AddIssue(domain.ValidationIssue{Severity: s, Code: domain.CodeUnknown, Message: "x"})
	}
	r.Complete()
	return r
}

func batchOf(rs ...*domain.ValidationResult) *domain.BatchResult {
	br := &domain.BatchResult{Results: map[string]*domain.ValidationResult{}}
	for _, r := range rs {
		br.Results[r.DetectionID] = r
		br.Order = append(br.Order, r.DetectionID)
	}
	return br
}

func TestBaseline_Regressions(t *testing.T) {
	before := domain.NewBaseline(batchOf(
		resultWith("stable"),
		resultWith("degraded"),
		resultWith("broken", domain.SeverityLow),
		resultWith("fixed", domain.SeverityHigh),
	), "cfg")

	after := batchOf(
		resultWith("stable"),
		resultWith("degraded", domain.SeverityMedium, domain.SeverityMedium),
		resultWith("broken", domain.SeverityHigh),
		resultWith("fixed"),
		resultWith("new", domain.SeverityHigh),
	)

	regs := before.Regressions(after)
	assert.Len(t, regs, 2)
	assert.Equal(t, "degraded", regs[0].DetectionID)
	assert.Equal(t, domain.StatusSuccess, regs[0].Before.Status)
	assert.Equal(t, domain.StatusWarning, regs[0].After.Status)
	assert.Equal(t, "broken", regs[1].DetectionID)
	assert.Equal(t, domain.StatusError, regs[1].After.Status)
}

func TestBaseline_ScoreDropWithinStatusIsARegression(t *testing.T) {
	before := domain.NewBaseline(batchOf(resultWith("a")), "cfg")
	regs := before.Regressions(batchOf(resultWith("a", domain.SeverityLow)))

	assert.Len(t, regs, 1)
	assert.Equal(t, 98.0, regs[0].After.ConfidenceScore)
}

func TestBaseline_StatusImprovementOutweighsScoreDrop(t *testing.T) {
	before := domain.NewBaseline(batchOf(resultWith("a", domain.SeverityHigh)), "cfg")
	m := domain.SeverityMedium
	after := batchOf(resultWith("a", m, m, m, m))

	assert.Equal(t, domain.StatusError, before.Entries["a"].Status)
	assert.Equal(t, domain.StatusWarning, after.Results["a"].Status)
	assert.Equal(t, 80.0, after.Results["a"].ConfidenceScore)
	assert.Empty(t, before.Regressions(after))
}

func TestBaseline_IsInvalidated(t *testing.T) {
	b := domain.NewBaseline(batchOf(), "abc")
	assert.False(t, b.IsInvalidated("abc"))
	assert.True(t, b.IsInvalidated("def"))
}
