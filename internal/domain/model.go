package domain

// Format identifies a detection-rule dialect.
type Format string

const (
	FormatSplunk      Format = "splunk"
	FormatSigma       Format = "sigma"
	FormatKQL         Format = "kql"
	FormatYARA        Format = "yara"
	FormatYARAL       Format = "yaral"
	FormatQRadar      Format = "qradar"
	FormatPaloAlto    Format = "paloalto"
	FormatCrowdStrike Format = "crowdstrike"
)

// KnownFormats enumerates every dialect the engine ships with, in display order.
var KnownFormats = []Format{
	FormatSplunk,
	FormatSigma,
	FormatKQL,
	FormatYARA,
	FormatYARAL,
	FormatQRadar,
	FormatPaloAlto,
	FormatCrowdStrike,
}

// IsKnownFormat reports whether f is one of KnownFormats.
func IsKnownFormat(f Format) bool {
	for _, k := range KnownFormats {
		if k == f {
			return true
		}
	}
	return false
}

const (
	// MaxContentBytes is the hard upper bound on a single detection's content.
	MaxContentBytes = 5 * 1024 * 1024
	// MaxBatchSize is the largest batch ValidateBatch accepts.
	MaxBatchSize = 100
	// ConfidenceThreshold is the score below which a result degrades to warning.
	ConfidenceThreshold = 95.0
	// DefaultConcurrency is the batch worker pool size when none is configured.
	DefaultConcurrency = 5
	// MaxScore is the score of a result with no issues.
	MaxScore = 100.0
)

// Severity grades a single validation issue.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Severities lists severities from most to least severe.
var Severities = []Severity{SeverityHigh, SeverityMedium, SeverityLow}

// Weight returns the score penalty of one issue with this severity.
// Unrecognized severities weigh as low.
func (s Severity) Weight() float64 {
	switch s {
	case SeverityHigh:
		return 10.0
	case SeverityMedium:
		return 5.0
	default:
		return 2.0
	}
}

// Rank orders severities for sorting; higher is more severe.
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// Status is the terminal verdict of a validation result.
type Status string

const (
	StatusSuccess Status = "success"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// Detection is a rule submission. It is owned by the caller and never mutated
// by the engine.
type Detection struct {
	ID       string            `json:"id"                 yaml:"id"`
	Content  string            `json:"content"            yaml:"content"`
	Format   Format            `json:"format"             yaml:"format"`
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// IssueCode is a stable numeric identifier for the rule that produced an issue.
type IssueCode int

const (
	CodeUnknown          IssueCode = 1000
	CodeContentTooLarge  IssueCode = 1001
	CodePatternMismatch  IssueCode = 1002
	CodeMissingField     IssueCode = 1003
	CodeInvalidRuleShape IssueCode = 1004
)

func (c IssueCode) String() string {
	switch c {
	case CodeContentTooLarge:
		return "content_too_large"
	case CodePatternMismatch:
		return "pattern_mismatch"
	case CodeMissingField:
		return "missing_field"
	case CodeInvalidRuleShape:
		return "invalid_rule_shape"
	default:
		return "unknown"
	}
}
