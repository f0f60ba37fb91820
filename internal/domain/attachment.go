package domain

import (
	"path/filepath"
	"strings"
)

// RecognizedAttachmentExts is the fixed set of original-format attachment
// extensions the content store knows how to find and delete.
var RecognizedAttachmentExts = []string{".pdf", ".html", ".docx", ".pptx"}

// Attachment describes an original-format artifact stored alongside an
// item's raw content (e.g. the imported PDF the text was extracted from).
type Attachment struct {
	FileName string `json:"file_name"`
	DocType  string `json:"doc_type"`
	Size     int64  `json:"size"`
	Path     string `json:"path"`
}

// IsRecognizedAttachmentExt reports whether ext (with leading dot) belongs
// to the recognized attachment set.
func IsRecognizedAttachmentExt(ext string) bool {
	ext = strings.ToLower(ext)
	for _, known := range RecognizedAttachmentExts {
		if ext == known {
			return true
		}
	}
	return false
}

// DocTypeForPath derives a document type label from a file path extension,
// falling back to "file" for unrecognized extensions.
func DocTypeForPath(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if IsRecognizedAttachmentExt(ext) {
		return strings.TrimPrefix(ext, ".")
	}
	return "file"
}
