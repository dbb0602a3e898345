// Package enrich turns free-form citizen text into a formal description and
// field suggestions using an external language model.
package enrich

import "context"

// Result carries the suggestions produced for one report.  Empty strings
// mean "no suggestion"; Category and Institution are canonical members of
// the closed sets when set.
type Result struct {
	StructuredDescription string
	Title                 string
	Category              string
	Institution           string
}

// Enricher produces suggestions for raw report text.  The boolean is false
// when no result is available for any reason; callers carry on without it.
type Enricher interface {
	Enrich(ctx context.Context, raw string) (Result, bool)
}

// Disabled is used when no AI credential is configured.
type Disabled struct{}

// Enrich always reports that nothing is available.
func (Disabled) Enrich(context.Context, string) (Result, bool) { return Result{}, false }
