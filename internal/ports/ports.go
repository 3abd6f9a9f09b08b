// Package ports defines the seams between the PDF object model /
// structure walk and the validators, the remediation engine, and the
// optional LLM hook. Grounded on the teacher's internal/ports package
// shape (small, single-purpose interface files per concern) but
// re-specified for this module's domain instead of EPUB/PDF
// structural validation.
package ports

import (
	"context"

	"github.com/docaccess/pdfguard/internal/domain"
	"github.com/docaccess/pdfguard/internal/pdfmodel"
)

// Validator is implemented by each conformance checker (C4 WCAG, C5
// PDF/UA, C6 PDF/A). Spec §9's "Extension over inheritance" note: no
// validator base class, just this one-method interface, composed by
// call from the unified checker rather than by subclass dispatch.
type Validator interface {
	Validate(doc *pdfmodel.Document) ([]domain.Issue, error)
}

// SuggestionProvider is the optional LLM remediation hook (spec §9).
// A single method; failures fall back silently and never block a fix.
type SuggestionProvider interface {
	Suggest(ctx context.Context, kind, context string) (string, error)
}

// NoopSuggestionProvider is the default provider: it never suggests
// anything, matching spec's "the core exposes a hook but does not own
// it" scoping.
type NoopSuggestionProvider struct{}

func (NoopSuggestionProvider) Suggest(context.Context, string, string) (string, error) {
	return "", nil
}
