package dialect

import (
	"fmt"
	"maps"

	"github.com/abdidvp/detectlint/internal/domain"
)

// Normalized is sanitized, formatted content ready for translation, plus the
// checks that ran to produce it.
type Normalized struct {
	Format  domain.Format
	Content string
	Checks  []string
}

// Inspection holds the non-fatal findings of a dialect inspection.
type Inspection struct {
	Issues  []domain.ValidationIssue
	Details map[string]any
	Checks  []string
}

// Validate sanitizes content, confirms it has the structural shape of format
// and returns it in canonical layout. Failures are typed: an unsupported
// format, oversized content, or a *domain.StructuralError. Checks is filled
// even when an error is returned.
func (r *Registry) Validate(content string, format domain.Format) (Normalized, error) {
	n := Normalized{Format: format}
	e, err := r.Lookup(format)
	if err != nil {
		return n, err
	}

	n.Checks = append(n.Checks, CheckContentSize)
	clean, err := Sanitize(content, e.Hints)
	if err != nil {
		return n, err
	}

	n.Checks = append(n.Checks, CheckSignature)
	if !e.Signature.MatchString(clean) {
		return n, &domain.StructuralError{
			Code:        domain.CodePatternMismatch,
			Format:      format,
			Message:     fmt.Sprintf("content does not match the %s structural pattern", e.Name),
			Location:    "line 1",
			Suggestions: []string{e.SignatureHint},
		}
	}

	for _, req := range e.Requirements {
		n.Checks = append(n.Checks, req.ID)
		if !req.Test.MatchString(clean) {
			return n, &domain.StructuralError{
				Code:        req.Code,
				Format:      format,
				Message:     req.Message,
				Suggestions: []string{req.Suggestion},
			}
		}
	}

	n.Content = clean
	if e.Formatter != nil {
		n.Content = e.Formatter(clean)
	}
	return n, nil
}

// Inspect runs the dialect's non-fatal inspection over normalized content.
func (r *Registry) Inspect(n Normalized, profile domain.DialectProfile) Inspection {
	e, err := r.Lookup(n.Format)
	if err != nil || e.Inspect == nil {
		return Inspection{Details: map[string]any{}}
	}
	in := e.Inspect(n.Content, profile)
	if in.Details == nil {
		in.Details = map[string]any{}
	}
	return in
}

// Apply copies an inspection into a result.
func (in Inspection) Apply(r *domain.ValidationResult) {
	for _, is := range in.Issues {
		r.AddIssue(is)
	}
	if r.FormatSpecificDetails == nil {
		r.FormatSpecificDetails = make(map[string]any, len(in.Details))
	}
	maps.Copy(r.FormatSpecificDetails, in.Details)
}

func finding(sev domain.Severity, code domain.IssueCode, msg, location string, suggestions ...string) domain.ValidationIssue {
	return domain.ValidationIssue{
		Message:     msg,
		Severity:    sev,
		Location:    location,
		Code:        code,
		Suggestions: suggestions,
	}
}

func stageLocation(i int) string {
	return fmt.Sprintf("stage %d", i+1)
}
