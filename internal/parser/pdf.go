package parser

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFParser extracts text from PDF files page by page.
type PDFParser struct{}

func (p *PDFParser) CanHandle(source string) bool {
	return hasExt(source, ".pdf")
}

func (p *PDFParser) Parse(ctx context.Context, source string) (*Document, error) {
	f, reader, err := pdf.Open(source)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer f.Close()

	total := reader.NumPage()
	var pages []string
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip pages that cannot be decoded rather than failing the
			// whole document.
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			pages = append(pages, fmt.Sprintf("## Page %d\n\n%s", i, text))
		}
	}

	return &Document{
		Content: strings.Join(pages, "\n\n"),
		Title:   titleFromPath(source),
		DocType: "pdf",
		Pages:   total,
	}, nil
}
