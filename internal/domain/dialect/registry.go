// Package dialect holds the table of supported detection-rule dialects and
// the sanitize, signature, and formatting pipeline that runs over them.
package dialect

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/abdidvp/detectlint/internal/domain"
)

// Check identifiers shared by every dialect.
const (
	CheckContentSize = "ContentSize"
	CheckSignature   = "Signature"
)

// Requirement is a structural check beyond the signature that content must
// pass before it is formatted.
type Requirement struct {
	ID         string
	Code       domain.IssueCode
	Test       *regexp.Regexp
	Message    string
	Suggestion string
}

// Entry registers one dialect.
type Entry struct {
	Format        domain.Format
	Name          string
	Signature     *regexp.Regexp
	SignatureHint string
	Hints         SanitizeHints
	Requirements  []Requirement
	// Formatter rewrites sanitized content into its canonical layout. It must
	// be idempotent and must not add or drop semantic tokens.
	Formatter func(string) string
	// Inspect runs after formatting and reports non-fatal findings.
	Inspect       func(content string, profile domain.DialectProfile) Inspection
	InspectChecks []string
	Extensions    []string
}

// KnownChecks lists every named check the dialect can run, in pipeline order.
func (e Entry) KnownChecks() []string {
	checks := []string{CheckContentSize, CheckSignature}
	for _, r := range e.Requirements {
		checks = append(checks, r.ID)
	}
	return append(checks, e.InspectChecks...)
}

// Registry maps formats to their dialect entries. It is immutable once built.
type Registry struct {
	entries map[domain.Format]Entry
	order   []domain.Format
}

// NewRegistry builds a registry from entries in the given order.
func NewRegistry(entries ...Entry) (*Registry, error) {
	r := &Registry{entries: make(map[domain.Format]Entry, len(entries))}
	for _, e := range entries {
		if e.Format == "" {
			return nil, fmt.Errorf("dialect entry %q has no format", e.Name)
		}
		if e.Signature == nil {
			return nil, fmt.Errorf("dialect %s has no signature", e.Format)
		}
		if _, dup := r.entries[e.Format]; dup {
			return nil, fmt.Errorf("dialect %s registered twice", e.Format)
		}
		r.entries[e.Format] = e
		r.order = append(r.order, e.Format)
	}
	return r, nil
}

// Default returns the registry of built-in dialects.
var Default = sync.OnceValue(func() *Registry {
	r, err := NewRegistry(
		splunkEntry(),
		sigmaEntry(),
		kqlEntry(),
		yaraEntry(),
		yaralEntry(),
		qradarEntry(),
		paloaltoEntry(),
		crowdstrikeEntry(),
	)
	if err != nil {
		panic(err)
	}
	return r
})

// Lookup returns the entry for format.
func (r *Registry) Lookup(format domain.Format) (Entry, error) {
	e, ok := r.entries[format]
	if !ok {
		return Entry{}, &domain.UnsupportedFormatError{Format: format}
	}
	return e, nil
}

// Formats lists the registered formats in registration order.
func (r *Registry) Formats() []domain.Format {
	return slices.Clone(r.order)
}

// Entries lists the registered entries in registration order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, 0, len(r.order))
	for _, f := range r.order {
		out = append(out, r.entries[f])
	}
	return out
}

// Restrict returns a registry holding only formats. An empty list returns r.
func (r *Registry) Restrict(formats ...domain.Format) (*Registry, error) {
	if len(formats) == 0 {
		return r, nil
	}
	entries := make([]Entry, 0, len(formats))
	for _, f := range formats {
		e, err := r.Lookup(f)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return NewRegistry(entries...)
}

// ForExtension maps a file extension such as ".yar" to its format.
func (r *Registry) ForExtension(ext string) (domain.Format, bool) {
	ext = strings.ToLower(ext)
	for _, f := range r.order {
		if slices.Contains(r.entries[f].Extensions, ext) {
			return f, true
		}
	}
	return "", false
}
