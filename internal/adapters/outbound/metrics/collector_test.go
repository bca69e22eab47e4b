package metrics_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdidvp/detectlint/internal/adapters/outbound/metrics"
	"github.com/abdidvp/detectlint/internal/domain"
)

func warningResult() *domain.ValidationResult {
	r := domain.NewResult(domain.Detection{ID: "d1", Format: domain.FormatSplunk})
	r.AddIssue(domain.ValidationIssue{Severity: domain.SeverityMedium, Code: domain.CodePatternMismatch, Message: "deep"})
	r.AddIssue(domain.ValidationIssue{Severity: domain.SeverityLow, Code: domain.CodeUnknown, Message: "odd"})
	r.Complete()
	return r
}

func TestObserveValidation(t *testing.T) {
	registry := prometheus.NewRegistry()
	c, err := metrics.NewWithRegistry(registry)
	require.NoError(t, err)

	c.ObserveValidation(warningResult(), 2*time.Millisecond)
	c.ObserveValidation(nil, time.Millisecond)

	expected := `
# HELP detectlint_validations_total Total number of detections validated
# TYPE detectlint_validations_total counter
detectlint_validations_total{format="splunk",status="warning"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected), "detectlint_validations_total"))

	expectedIssues := `
# HELP detectlint_issues_total Total number of validation issues by code and severity
# TYPE detectlint_issues_total counter
detectlint_issues_total{code="1000",format="splunk",severity="low"} 1
detectlint_issues_total{code="1002",format="splunk",severity="medium"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expectedIssues), "detectlint_issues_total"))

	count, err := testutil.GatherAndCount(registry, "detectlint_confidence_score")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestObserveBatch(t *testing.T) {
	registry := prometheus.NewRegistry()
	c, err := metrics.NewWithRegistry(registry)
	require.NoError(t, err)

	c.ObserveBatch(domain.BatchSummary{Total: 3, Valid: 2, Invalid: 1}, 10*time.Millisecond)
	c.ObserveBatch(domain.BatchSummary{Total: 1, Valid: 1}, time.Millisecond)

	expected := `
# HELP detectlint_batch_detections_total Detections processed in batches by outcome
# TYPE detectlint_batch_detections_total counter
detectlint_batch_detections_total{outcome="invalid"} 1
detectlint_batch_detections_total{outcome="valid"} 3
# HELP detectlint_batches_total Total number of batches run
# TYPE detectlint_batches_total counter
detectlint_batches_total 2
`
	assert.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected),
		"detectlint_batch_detections_total", "detectlint_batches_total"))
}

func TestNewWithRegistry_DuplicateRegistrationFails(t *testing.T) {
	registry := prometheus.NewRegistry()
	_, err := metrics.NewWithRegistry(registry)
	require.NoError(t, err)

	_, err = metrics.NewWithRegistry(registry)
	assert.Error(t, err)
}

func TestWriteTextfile(t *testing.T) {
	c, err := metrics.New()
	require.NoError(t, err)
	c.ObserveValidation(warningResult(), time.Millisecond)

	path := filepath.Join(t.TempDir(), "detectlint.prom")
	require.NoError(t, c.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `detectlint_validations_total{format="splunk",status="warning"} 1`)
}
