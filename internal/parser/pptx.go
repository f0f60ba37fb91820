package parser

import (
	"archive/zip"
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var slideNameRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// PptxParser extracts text from PowerPoint decks. Each slide is an XML part
// under ppt/slides/; text lives in a:t runs inside a:p paragraphs.
type PptxParser struct{}

func (p *PptxParser) CanHandle(source string) bool {
	return hasExt(source, ".pptx")
}

func (p *PptxParser) Parse(ctx context.Context, source string) (*Document, error) {
	archive, err := zip.OpenReader(source)
	if err != nil {
		return nil, fmt.Errorf("failed to open pptx: %w", err)
	}
	defer archive.Close()

	type slide struct {
		num  int
		file *zip.File
	}
	var slides []slide
	for _, f := range archive.File {
		m := slideNameRe.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		num, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		slides = append(slides, slide{num: num, file: f})
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].num < slides[j].num })

	var sections []string
	for _, s := range slides {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rc, err := s.file.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to read slide %d: %w", s.num, err)
		}
		paragraphs, err := extractRuns(rc, "p", "t")
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to parse slide %d: %w", s.num, err)
		}
		if len(paragraphs) == 0 {
			continue
		}
		sections = append(sections, fmt.Sprintf("## Slide %d\n\n%s", s.num, strings.Join(paragraphs, "\n")))
	}

	return &Document{
		Content: strings.Join(sections, "\n\n"),
		Title:   titleFromPath(source),
		DocType: "pptx",
		Pages:   len(slides),
	}, nil
}
