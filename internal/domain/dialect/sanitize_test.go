package dialect_test

import (
	"strings"
	"testing"

	"github.com/abdidvp/detectlint/internal/domain"
	"github.com/abdidvp/detectlint/internal/domain/dialect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize_CollapsesWhitespaceAndControls(t *testing.T) {
	out, err := dialect.Sanitize("  a\r\n\tb  \x00c  ", dialect.SanitizeHints{})
	require.NoError(t, err)
	assert.Equal(t, "a b c", out)
}

func TestSanitize_RepairsInvalidUTF8(t *testing.T) {
	out, err := dialect.Sanitize("ab\xffcd", dialect.SanitizeHints{})
	require.NoError(t, err)
	assert.Equal(t, "abcd", out)
}

func TestSanitize_DropsByteOrderMark(t *testing.T) {
	out, err := dialect.Sanitize("\uFEFFindex=main", dialect.SanitizeHints{})
	require.NoError(t, err)
	assert.Equal(t, "index=main", out)
}

func TestSanitize_NormalizesToNFC(t *testing.T) {
	out, err := dialect.Sanitize("cafe\u0301", dialect.SanitizeHints{})
	require.NoError(t, err)
	assert.Equal(t, "caf\u00e9", out)
}

func TestSanitize_LeavesQuotedWhitespace(t *testing.T) {
	out, err := dialect.Sanitize(`x="a   b"    y`, dialect.SanitizeHints{Quotes: `"`})
	require.NoError(t, err)
	assert.Equal(t, `x="a   b" y`, out)
}

func TestSanitize_PreserveLines(t *testing.T) {
	out, err := dialect.Sanitize("title: x   \r\n\r\n\r\n  level:   high\n\n", dialect.SanitizeHints{PreserveLines: true})
	require.NoError(t, err)
	assert.Equal(t, "title: x\n\n  level: high", out)
}

func TestSanitize_PreserveLinesDedents(t *testing.T) {
	out, err := dialect.Sanitize("\n   a: 1\n     b: 2\n", dialect.SanitizeHints{PreserveLines: true})
	require.NoError(t, err)
	assert.Equal(t, "a: 1\n  b: 2", out)
}

func TestSanitize_Idempotent(t *testing.T) {
	inputs := []string{
		"  search   index=main\r\n| stats  count ",
		"title: x  \n\n\n detection:\n    sel: 1\t\n",
		"rule a {\r\n  strings: $a = \"x  y\"\n condition: $a }",
		"",
	}
	for _, hints := range []dialect.SanitizeHints{{}, {PreserveLines: true}, {Quotes: `"`}, {PreserveLines: true, Quotes: `"`}} {
		for _, in := range inputs {
			once, err := dialect.Sanitize(in, hints)
			require.NoError(t, err)
			twice, err := dialect.Sanitize(once, hints)
			require.NoError(t, err)
			assert.Equal(t, once, twice, "input %q hints %+v", in, hints)
		}
	}
}

func TestSanitize_RejectsOversizedContent(t *testing.T) {
	_, err := dialect.Sanitize(strings.Repeat("a", domain.MaxContentBytes+1), dialect.SanitizeHints{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrContentTooLarge)
	assert.Equal(t, domain.CodeContentTooLarge, domain.FailureCode(err))
}

func TestCheckSize_AtLimit(t *testing.T) {
	assert.NoError(t, dialect.CheckSize(strings.Repeat("a", domain.MaxContentBytes)))
}
