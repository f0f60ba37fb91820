// Package storage persists raw item content and original-format attachments
// by item id. Two implementations exist: local filesystem and S3-compatible
// object storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/clearhaven/lore/internal/domain"
)

// FileStore keeps raw content under <root>/raw/<id>.md and attachments
// under <root>/attachments/<id>.<ext>.
type FileStore struct {
	root string
}

func NewFileStore(root string) *FileStore {
	return &FileStore{root: root}
}

func (s *FileStore) rawPath(id string) string {
	return filepath.Join(s.root, "raw", id+".md")
}

func (s *FileStore) attachmentPath(id, ext string) string {
	return filepath.Join(s.root, "attachments", id+ext)
}

// SaveRaw writes the raw markdown for an item and returns its path.
func (s *FileStore) SaveRaw(ctx context.Context, id string, data []byte) (string, error) {
	path := s.rawPath(id)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create raw dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write raw content: %w", err)
	}
	return path, nil
}

// GetRaw reads the raw markdown for an item.
func (s *FileStore) GetRaw(ctx context.Context, id string) ([]byte, error) {
	data, err := os.ReadFile(s.rawPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrRawContentNotFound
		}
		return nil, fmt.Errorf("failed to read raw content: %w", err)
	}
	return data, nil
}

// DeleteRaw removes the raw markdown. A missing file is not an error.
func (s *FileStore) DeleteRaw(ctx context.Context, id string) error {
	if err := os.Remove(s.rawPath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete raw content: %w", err)
	}
	return nil
}

// SaveAttachment copies an original-format file next to the item's raw
// content, keyed by item id, and returns its path.
func (s *FileStore) SaveAttachment(ctx context.Context, id, srcPath string) (string, error) {
	ext := strings.ToLower(filepath.Ext(srcPath))
	if !domain.IsRecognizedAttachmentExt(ext) {
		return "", domain.ErrUnsupportedDocument
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("failed to open attachment source: %w", err)
	}
	defer src.Close()

	dest := s.attachmentPath(id, ext)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("failed to create attachments dir: %w", err)
	}
	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("failed to create attachment: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return "", fmt.Errorf("failed to copy attachment: %w", err)
	}
	return dest, nil
}

// FindAttachment probes the recognized extensions and returns a descriptor
// for the first attachment found, or nil when the item has none.
func (s *FileStore) FindAttachment(ctx context.Context, id string) (*domain.Attachment, error) {
	for _, ext := range domain.RecognizedAttachmentExts {
		path := s.attachmentPath(id, ext)
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to stat attachment: %w", err)
		}
		return &domain.Attachment{
			FileName: filepath.Base(path),
			DocType:  domain.DocTypeForPath(path),
			Size:     info.Size(),
			Path:     path,
		}, nil
	}
	return nil, nil
}

// DeleteAttachments removes any attachment stored for the item.
func (s *FileStore) DeleteAttachments(ctx context.Context, id string) error {
	for _, ext := range domain.RecognizedAttachmentExts {
		if err := os.Remove(s.attachmentPath(id, ext)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete attachment: %w", err)
		}
	}
	return nil
}
