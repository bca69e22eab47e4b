package domain_test

import (
	"testing"

	"github.com/abdidvp/detectlint/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestSeverity_Weight(t *testing.T) {
	tests := []struct {
		sev    domain.Severity
		weight float64
	}{
		{domain.SeverityHigh, 10}, {domain.SeverityMedium, 5}, {domain.SeverityLow, 2}, {"bogus", 2},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.weight, tt.sev.Weight(), 0.0001, "severity %q", tt.sev)
	}
}

func TestSeverity_Rank(t *testing.T) {
	assert.Greater(t, domain.SeverityHigh.Rank(), domain.SeverityMedium.Rank())
	assert.Greater(t, domain.SeverityMedium.Rank(), domain.SeverityLow.Rank())
	assert.Zero(t, domain.Severity("bogus").Rank())
}

func TestIsKnownFormat(t *testing.T) {
	for _, f := range domain.KnownFormats {
		assert.True(t, domain.IsKnownFormat(f), f)
	}
	assert.False(t, domain.IsKnownFormat("snort"))
	assert.False(t, domain.IsKnownFormat(""))
}

func TestIssueCode_String(t *testing.T) {
	assert.Equal(t, "missing_field", domain.CodeMissingField.String())
	assert.Equal(t, "unknown", domain.IssueCode(42).String())
}
