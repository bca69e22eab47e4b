package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdidvp/detectlint/internal/domain"
)

func TestBatchCommand_Manifest(t *testing.T) {
	out, err := run(t, t.TempDir(), nil, "batch", "--json", "-m", filepath.Join(manifestsDir, "batch.yaml"))
	require.NoError(t, err)

	var br domain.BatchResult
	require.NoError(t, json.Unmarshal([]byte(out), &br))
	assert.Equal(t, []string{"brute-force", "lsass", "upx", "inline-aql", "broken-spl"}, br.Order)
	assert.Equal(t, domain.BatchSummary{Total: 5, Valid: 4, Invalid: 1}, br.Summary)
	assert.Equal(t, domain.StatusError, br.Results["broken-spl"].Status)
}

func TestBatchCommand_CIFails(t *testing.T) {
	_, err := run(t, t.TempDir(), nil, "batch", "--ci", "-m", filepath.Join(manifestsDir, "batch.yaml"))
	assert.ErrorContains(t, err, "1 of 5 detection(s) invalid")
}

func TestBatchCommand_Directory(t *testing.T) {
	out, err := run(t, t.TempDir(), nil, "batch", "-c", "2", filepath.Join(rulesDir, "sigma"), filepath.Join(rulesDir, "yara"))
	require.NoError(t, err)
	assert.Contains(t, out, "Batch Validation")
	assert.Contains(t, out, "2 valid")
	assert.Contains(t, out, "lsass_access.yml")
}

func TestBatchCommand_NothingToDo(t *testing.T) {
	_, err := run(t, t.TempDir(), nil, "batch")
	assert.ErrorContains(t, err, "nothing to validate")
}

func TestBatchCommand_RecordAndHistory(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, dir, nil, "batch", "--record", filepath.Join(rulesDir, "splunk"))
	require.NoError(t, err)
	_, err = run(t, dir, nil, "batch", "--record", "-m", filepath.Join(manifestsDir, "batch.yaml"))
	require.NoError(t, err)

	out, err := run(t, dir, nil, "history", "--json")
	require.NoError(t, err)
	var entries []domain.RunEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Total)
	assert.Equal(t, 5, entries[1].Total)
	assert.Equal(t, 1, entries[1].Invalid)

	out, err = run(t, dir, nil, "history", "-n", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Run History")
	assert.Contains(t, out, "1 invalid")
}

func TestBatchCommand_MetricsFile(t *testing.T) {
	prom := filepath.Join(t.TempDir(), "detectlint.prom")

	_, err := run(t, t.TempDir(), nil, "batch", "--metrics-file", prom, "-m", filepath.Join(manifestsDir, "batch.yaml"))
	require.NoError(t, err)

	data, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(data), "detectlint_batches_total 1")
	assert.Contains(t, string(data), `detectlint_validations_total{format="splunk",status="error"} 1`)
}

func TestBatchCommand_BaselineRegression(t *testing.T) {
	dir := t.TempDir()
	rule := filepath.Join(dir, "rules", "r.spl")
	require.NoError(t, os.MkdirAll(filepath.Dir(rule), 0o755))
	require.NoError(t, os.WriteFile(rule, []byte("index=main | stats count"), 0o644))

	out, err := run(t, dir, nil, "batch", "--baseline", "--ci", filepath.Join(dir, "rules"))
	require.NoError(t, err)
	assert.Contains(t, out, "No regressions")

	require.NoError(t, os.WriteFile(rule, []byte("index=main | frobnicate"), 0o644))
	out, err = run(t, dir, nil, "batch", "--baseline", "--ci", filepath.Join(dir, "rules"))
	assert.ErrorContains(t, err, "1 detection(s) regressed")
	assert.Contains(t, out, "Regressions")
	assert.Contains(t, out, "r.spl")

	_, err = run(t, dir, nil, "batch", "--baseline", "--ci", filepath.Join(dir, "rules"))
	assert.NoError(t, err, "the regressed run became the new baseline")
}

func historyOf(t *testing.T, dir string) []domain.RunEntry {
	t.Helper()
	out, err := run(t, dir, nil, "history", "--json")
	require.NoError(t, err)
	var entries []domain.RunEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	return entries
}

func TestBatchCommand_RecordStampsCommit(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rule.spl"), []byte("index=main | stats count"), 0o644))
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("rule.spl")
	require.NoError(t, err)
	hash, err := wt.Commit("add rule", &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@test.com", When: time.Now()},
	})
	require.NoError(t, err)

	_, err = run(t, dir, nil, "batch", "--record", filepath.Join(dir, "rule.spl"))
	require.NoError(t, err)

	entries := historyOf(t, dir)
	require.Len(t, entries, 1)
	assert.Equal(t, hash.String(), entries[0].CommitHash)
}

func TestBatchCommand_RecordInRepoWithoutCommits(t *testing.T) {
	dir := t.TempDir()
	_, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	logs := new(bytes.Buffer)
	_, err = runTo(t, logs, dir, nil, "batch", "--record", filepath.Join(rulesDir, "splunk"))
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "recording run without commit hash")

	entries := historyOf(t, dir)
	require.Len(t, entries, 1)
	assert.Empty(t, entries[0].CommitHash)
}

func TestBatchCommand_UnreadableBaselineIsReplaced(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".detectlint", "cache", "baseline.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	logs := new(bytes.Buffer)
	out, err := runTo(t, logs, dir, nil, "batch", "--baseline", filepath.Join(rulesDir, "splunk"))
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "discarding unreadable baseline")
	assert.Contains(t, out, "No regressions")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var b domain.Baseline
	require.NoError(t, json.Unmarshal(data, &b))
	assert.Contains(t, b.Entries, "brute_force.spl")
}

func TestBatchCommand_BaselineResetOnConfigChange(t *testing.T) {
	dir := t.TempDir()
	rules := filepath.Join(t.TempDir(), "rules")
	require.NoError(t, os.MkdirAll(rules, 0o755))
	rule := filepath.Join(rules, "r.spl")
	require.NoError(t, os.WriteFile(rule, []byte("index=main | stats count"), 0o644))

	_, err := run(t, dir, nil, "batch", "--baseline", rules)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(rule, []byte("index=main | frobnicate"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".detectlint.yaml"), []byte("profile:\n  max_pipeline_depth: 4\n"), 0o644))

	logs := new(bytes.Buffer)
	out, err := runTo(t, logs, dir, nil, "batch", "--baseline", "--ci", rules)
	require.NoError(t, err, "a score drop under a new config is not compared")
	assert.Contains(t, logs.String(), "config changed since baseline")
	assert.Contains(t, out, "No regressions")
}
