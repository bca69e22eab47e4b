package cli_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/abdidvp/detectlint/internal/adapters/inbound/cli"
)

const (
	rulesDir     = "../../../../testdata/rules"
	manifestsDir = "../../../../testdata/manifests"
)

// run executes the CLI with a private config directory and returns stdout.
func run(t *testing.T, configDir string, stdin io.Reader, args ...string) (string, error) {
	t.Helper()
	return runTo(t, io.Discard, configDir, stdin, args...)
}

// runTo is run with stderr, where logs go, written to errOut.
func runTo(t *testing.T, errOut io.Writer, configDir string, stdin io.Reader, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCmdForTest()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	if stdin == nil {
		stdin = strings.NewReader("")
	}
	cmd.SetIn(stdin)
	cmd.SetArgs(append([]string{"--config", configDir}, args...))
	err := cmd.Execute()
	return out.String(), err
}
