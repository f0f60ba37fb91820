package parser

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// DocxParser extracts paragraph text from Word documents. DOCX is a zip
// archive; the body lives in word/document.xml as w:p paragraphs holding
// w:t text runs.
type DocxParser struct{}

func (p *DocxParser) CanHandle(source string) bool {
	return hasExt(source, ".docx")
}

func (p *DocxParser) Parse(ctx context.Context, source string) (*Document, error) {
	archive, err := zip.OpenReader(source)
	if err != nil {
		return nil, fmt.Errorf("failed to open docx: %w", err)
	}
	defer archive.Close()

	var body *zip.File
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			body = f
			break
		}
	}
	if body == nil {
		return nil, fmt.Errorf("docx has no word/document.xml")
	}

	rc, err := body.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to read docx body: %w", err)
	}
	defer rc.Close()

	paragraphs, err := extractRuns(rc, "p", "t")
	if err != nil {
		return nil, fmt.Errorf("failed to parse docx body: %w", err)
	}

	return &Document{
		Content: strings.Join(paragraphs, "\n\n"),
		Title:   titleFromPath(source),
		DocType: "docx",
	}, nil
}

// extractRuns walks OOXML, collecting the character data of every <textEl>
// element and flushing a block each time a </blockEl> closes. Namespace
// prefixes are ignored; only local names are matched.
func extractRuns(r io.Reader, blockEl, textEl string) ([]string, error) {
	dec := xml.NewDecoder(r)

	var blocks []string
	var current strings.Builder
	inText := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == textEl {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case textEl:
				inText = false
			case blockEl:
				if text := strings.TrimSpace(current.String()); text != "" {
					blocks = append(blocks, text)
				}
				current.Reset()
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}

	// Flush a trailing block that never closed, tolerating truncated files.
	if text := strings.TrimSpace(current.String()); text != "" {
		blocks = append(blocks, text)
	}
	return blocks, nil
}
