package application

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdidvp/detectlint/internal/domain"
	"github.com/abdidvp/detectlint/internal/domain/dialect"
)

type recordingObserver struct {
	mu          sync.Mutex
	validations []*domain.ValidationResult
	batches     []domain.BatchSummary
}

func (o *recordingObserver) ObserveValidation(r *domain.ValidationResult, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.validations = append(o.validations, r)
}

func (o *recordingObserver) ObserveBatch(s domain.BatchSummary, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.batches = append(o.batches, s)
}

func TestValidateOne_CleanSearchSucceeds(t *testing.T) {
	svc := NewValidationService()
	r, err := svc.ValidateOne(domain.Detection{
		ID:      "spl-1",
		Content: "search index=main sourcetype=windows EventCode=4625 | stats count by src_ip",
		Format:  domain.FormatSplunk,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusSuccess, r.Status)
	assert.Greater(t, r.ConfidenceScore, 95.0)
	assert.Empty(t, r.Issues)
	assert.Equal(t, "spl-1", r.DetectionID)
	assert.NotEmpty(t, r.NormalizedContent)
	assert.Equal(t, 2, r.FormatSpecificDetails["pipeline_depth"])

	report := domain.BuildReport(r)
	assert.InDelta(t, 100.0, report.SuccessMetrics.ValidationCoverage, 0.0001)
}

func TestValidateOne_BrokenSearchIsFolded(t *testing.T) {
	svc := NewValidationService()
	r, err := svc.ValidateOne(domain.Detection{ID: "spl-2", Content: "invalid syntax | broken pipe stats", Format: domain.FormatSplunk})
	require.NoError(t, err)

	assert.Contains(t, r.IssueCodes(), domain.CodePatternMismatch)
	assert.NotEqual(t, domain.StatusSuccess, r.Status)
	assert.Empty(t, r.NormalizedContent)
	assert.Less(t, domain.BuildReport(r).SuccessMetrics.ValidationCoverage, 100.0)
}

func TestValidateOne_SigmaWithoutTitleErrors(t *testing.T) {
	svc := NewValidationService()
	r, err := svc.ValidateOne(domain.Detection{ID: "sig-1", Content: "status: test\nlogsource:\n  product: windows", Format: domain.FormatSigma})
	require.NoError(t, err)

	assert.Equal(t, []domain.IssueCode{domain.CodeMissingField}, r.IssueCodes())
	assert.Equal(t, domain.StatusError, r.Status)
}

func TestValidateOne_PreconditionErrors(t *testing.T) {
	svc := NewValidationService()

	_, err := svc.ValidateOne(domain.Detection{ID: "x", Content: "a", Format: "snort"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)

	_, err = svc.ValidateOne(domain.Detection{ID: "y", Content: strings.Repeat("a", domain.MaxContentBytes+1), Format: domain.FormatSplunk})
	assert.ErrorIs(t, err, domain.ErrContentTooLarge)
}

func TestValidateOne_Deterministic(t *testing.T) {
	svc := NewValidationService()
	d := domain.Detection{ID: "k", Content: "SecurityEvent | frob | where x == 1", Format: domain.FormatKQL}

	a, err := svc.ValidateOne(d)
	require.NoError(t, err)
	b, err := svc.ValidateOne(d)
	require.NoError(t, err)

	assert.Equal(t, a.ConfidenceScore, b.ConfidenceScore)
	assert.Equal(t, a.Status, b.Status)
	assert.Equal(t, a.IssueCodes(), b.IssueCodes())
	assert.NotEqual(t, a.ID, b.ID)
}

func TestValidateOne_HistoryLifecycle(t *testing.T) {
	svc := NewValidationService()
	r, err := svc.ValidateOne(domain.Detection{ID: "q", Content: "SELECT * FROM events", Format: domain.FormatQRadar})
	require.NoError(t, err)

	var actions []string
	for _, h := range r.ValidationHistory {
		actions = append(actions, h.Action)
	}
	assert.Equal(t, []string{
		domain.ActionStarted, domain.ActionIssueAdded, domain.ActionIssueAdded, domain.ActionCompleted,
	}, actions)
}

func TestValidateOne_NotifiesObserverAndLogs(t *testing.T) {
	obs := &recordingObserver{}
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	svc := NewValidationService(WithObserver(obs), WithLogger(logger))

	_, err := svc.ValidateOne(domain.Detection{ID: "obs", Content: "index=main", Format: domain.FormatSplunk})
	require.NoError(t, err)

	require.Len(t, obs.validations, 1)
	assert.Equal(t, "obs", obs.validations[0].DetectionID)
	assert.Contains(t, buf.String(), "validation completed")
	assert.Contains(t, buf.String(), "detection_id=obs")
}

func TestValidateOne_RestrictedRegistry(t *testing.T) {
	reg, err := dialect.Default().Restrict(domain.FormatSigma)
	require.NoError(t, err)
	svc := NewValidationService(WithRegistry(reg))

	_, err = svc.ValidateOne(domain.Detection{ID: "s", Content: "index=main", Format: domain.FormatSplunk})
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}

func TestValidateOne_ProfileIsApplied(t *testing.T) {
	svc := NewValidationService(WithProfile(domain.DialectProfile{MaxPipelineDepth: 1}))
	r, err := svc.ValidateOne(domain.Detection{ID: "p", Content: "index=main | head 5", Format: domain.FormatSplunk})
	require.NoError(t, err)

	assert.Equal(t, []domain.IssueCode{domain.CodePatternMismatch}, r.IssueCodes())
	assert.Equal(t, domain.StatusSuccess, r.Status)
	assert.InDelta(t, 95.0, r.ConfidenceScore, 0.0001)
}

func TestNormalize_FailFast(t *testing.T) {
	svc := NewValidationService()

	out, err := svc.Normalize(domain.Detection{ID: "n", Content: "index=main|stats count", Format: domain.FormatSplunk})
	require.NoError(t, err)
	assert.Equal(t, "search index=main | stats count", out)

	_, err = svc.Normalize(domain.Detection{ID: "bad", Content: "status: test", Format: domain.FormatSigma})
	var se *domain.StructuralError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, domain.CodeMissingField, se.Code)
	assert.Contains(t, err.Error(), `detection "bad"`)
}

func TestFormats_FollowsRegistry(t *testing.T) {
	all := NewValidationService().Formats()
	require.Len(t, all, len(domain.KnownFormats))
	for i, f := range domain.KnownFormats {
		assert.Equal(t, f, all[i].Format)
		assert.NotEmpty(t, all[i].Extensions)
		assert.Equal(t, []string{dialect.CheckContentSize, dialect.CheckSignature}, all[i].Checks[:2])
	}

	reg, err := dialect.Default().Restrict(domain.FormatYARA, domain.FormatKQL)
	require.NoError(t, err)
	restricted := NewValidationService(WithRegistry(reg)).Formats()
	require.Len(t, restricted, 2)
	assert.Equal(t, domain.FormatYARA, restricted[0].Format)
	assert.Equal(t, "KQL", restricted[1].Name)
}

func TestValidateOne_SigmaWithoutSelections(t *testing.T) {
	svc := NewValidationService()

	bare, err := svc.ValidateOne(domain.Detection{ID: "bare", Format: domain.FormatSigma,
		Content: "title: t\ndescription: d\nlogsource:\n  product: windows\ndetection:\n  condition: selection"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusError, bare.Status)
	assert.Equal(t, 90.0, bare.ConfidenceScore)

	empty, err := svc.ValidateOne(domain.Detection{ID: "empty", Format: domain.FormatSigma,
		Content: "title: t\nlogsource:\n  product: windows\ndetection:\n  selection: {}\n  condition: selection"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, empty.Status)
	assert.Equal(t, 95.0, empty.ConfidenceScore)
	assert.Equal(t, []domain.IssueCode{domain.CodeMissingField}, empty.IssueCodes())
}
