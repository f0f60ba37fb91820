package parser

import (
	"context"
	"fmt"

	"github.com/clearhaven/lore/internal/websearch"
)

// PageFetcher downloads a URL and extracts its readable content. The web
// search client satisfies this.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*websearch.Page, error)
}

// WebPageParser converts a webpage into an importable document.
type WebPageParser struct {
	fetcher PageFetcher
}

func NewWebPageParser(fetcher PageFetcher) *WebPageParser {
	return &WebPageParser{fetcher: fetcher}
}

func (p *WebPageParser) CanHandle(source string) bool {
	return isURL(source)
}

func (p *WebPageParser) Parse(ctx context.Context, source string) (*Document, error) {
	page, err := p.fetcher.Fetch(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}

	title := page.Title
	if title == "" {
		title = source
	}

	return &Document{
		Content: page.Content,
		Title:   title,
		DocType: "html",
	}, nil
}
