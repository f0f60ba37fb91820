package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRecognizedAttachmentExt(t *testing.T) {
	assert.True(t, IsRecognizedAttachmentExt(".pdf"))
	assert.True(t, IsRecognizedAttachmentExt(".PDF"))
	assert.True(t, IsRecognizedAttachmentExt(".docx"))
	assert.False(t, IsRecognizedAttachmentExt(".exe"))
	assert.False(t, IsRecognizedAttachmentExt(""))
}

func TestDocTypeForPath(t *testing.T) {
	assert.Equal(t, "pdf", DocTypeForPath("/tmp/report.pdf"))
	assert.Equal(t, "pptx", DocTypeForPath("slides.PPTX"))
	assert.Equal(t, "file", DocTypeForPath("data.bin"))
	assert.Equal(t, "file", DocTypeForPath("noext"))
}
