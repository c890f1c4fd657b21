package scraper

import (
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

// StructureError means a page no longer has the layout the parser expects.
// It is fatal to the run so a changed page never publishes corrupt data.
type StructureError struct {
	Page   string
	Row    int // 1-based, zero when the error is not tied to a row
	Field  string
	Reason string
	Err    error
}

func (e *StructureError) Error() string {
	msg := fmt.Sprintf("unexpected page structure on %s", e.Page)
	if e.Row > 0 {
		msg += fmt.Sprintf(" row %d", e.Row)
	}
	if e.Field != "" {
		msg += fmt.Sprintf(" field %s", e.Field)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StructureError) Unwrap() error {
	return e.Err
}

// ParseError is a value that could not be read as the expected type
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %s from %q: %v", e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// DocumentFetcher fetches and parses an HTML page. page labels the request in metrics.
type DocumentFetcher interface {
	Document(ctx context.Context, page, url string) (*goquery.Document, error)
}
