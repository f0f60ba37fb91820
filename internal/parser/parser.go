// Package parser extracts plain text from importable document formats. The
// registry is a static table built at startup; parsers do not register
// themselves.
package parser

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/clearhaven/lore/internal/domain"
)

// Document is the parse result handed to the knowledge service.
type Document struct {
	Content string
	Title   string
	DocType string
	Pages   int
}

// Parser extracts text from one document format.
type Parser interface {
	CanHandle(source string) bool
	Parse(ctx context.Context, source string) (*Document, error)
}

// Registry dispatches a source path or URL to the first parser that claims
// it.
type Registry struct {
	parsers []Parser
}

// NewRegistry builds a registry from an explicit parser list, tried in order.
func NewRegistry(parsers ...Parser) *Registry {
	return &Registry{parsers: parsers}
}

// DefaultRegistry wires the full parser set: webpage, PDF, DOCX, PPTX.
func DefaultRegistry(fetcher PageFetcher) *Registry {
	return NewRegistry(
		NewWebPageParser(fetcher),
		&PDFParser{},
		&DocxParser{},
		&PptxParser{},
	)
}

// Parse finds a parser for the source and runs it.
func (r *Registry) Parse(ctx context.Context, source string) (*Document, error) {
	source = strings.TrimSpace(source)
	for _, p := range r.parsers {
		if p.CanHandle(source) {
			return p.Parse(ctx, source)
		}
	}
	return nil, domain.ErrUnsupportedDocument
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func hasExt(source, ext string) bool {
	return strings.EqualFold(filepath.Ext(source), ext) && !isURL(source)
}

// titleFromPath derives a readable title from a file name stem.
func titleFromPath(source string) string {
	stem := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	stem = strings.ReplaceAll(stem, "_", " ")
	stem = strings.ReplaceAll(stem, "-", " ")
	return strings.TrimSpace(stem)
}
