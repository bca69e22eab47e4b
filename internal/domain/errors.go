package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrContentTooLarge   = errors.New("content too large")
	ErrBatchTooLarge     = errors.New("batch too large")
	ErrStructural        = errors.New("structural validation failed")
)

// UnsupportedFormatError reports a format missing from the registry.
type UnsupportedFormatError struct {
	Format Format
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format %q", e.Format)
}

func (e *UnsupportedFormatError) Is(target error) bool { return target == ErrUnsupportedFormat }

func (e *UnsupportedFormatError) Code() IssueCode { return CodeUnknown }

// ContentTooLargeError reports content above MaxContentBytes.
type ContentTooLargeError struct {
	Size  int
	Limit int
}

func (e *ContentTooLargeError) Error() string {
	return fmt.Sprintf("content is %d bytes, exceeds limit of %d bytes", e.Size, e.Limit)
}

func (e *ContentTooLargeError) Is(target error) bool { return target == ErrContentTooLarge }

func (e *ContentTooLargeError) Code() IssueCode { return CodeContentTooLarge }

// BatchTooLargeError reports a batch above MaxBatchSize.
type BatchTooLargeError struct {
	Size  int
	Limit int
}

func (e *BatchTooLargeError) Error() string {
	return fmt.Sprintf("batch has %d detections, exceeds limit of %d", e.Size, e.Limit)
}

func (e *BatchTooLargeError) Is(target error) bool { return target == ErrBatchTooLarge }

// StructuralError is a recoverable validation failure: the content does not
// have the shape its dialect requires.
type StructuralError struct {
	Code        IssueCode
	Format      Format
	Message     string
	Location    string
	Suggestions []string
}

func (e *StructuralError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%d]: %s", e.Format, e.Code, e.Message)
	if e.Location != "" {
		fmt.Fprintf(&b, " at %s", e.Location)
	}
	return b.String()
}

func (e *StructuralError) Is(target error) bool { return target == ErrStructural }

// coder is satisfied by errors that carry a stable issue code.
type coder interface {
	Code() IssueCode
}

// FailureCode maps err to its stable issue code, CodeUnknown when it has none.
func FailureCode(err error) IssueCode {
	var se *StructuralError
	if errors.As(err, &se) {
		return se.Code
	}
	var c coder
	if errors.As(err, &c) {
		return c.Code()
	}
	return CodeUnknown
}

// FailureIssue converts a validation failure into a high severity issue so it
// can be folded into a result.
func FailureIssue(err error) ValidationIssue {
	issue := ValidationIssue{
		Message:  err.Error(),
		Severity: SeverityHigh,
		Code:     FailureCode(err),
	}
	var se *StructuralError
	if errors.As(err, &se) {
		issue.Message = se.Message
		issue.Location = se.Location
		issue.Suggestions = se.Suggestions
	}
	return issue
}
