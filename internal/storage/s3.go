package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/clearhaven/lore/internal/domain"
)

// S3StoreConfig holds configuration for S3Store
type S3StoreConfig struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UsePathStyle    bool
}

// S3Store keeps raw content and attachments in S3-compatible object storage
// under raw/<id>.md and attachments/<id>.<ext> keys.
type S3Store struct {
	client *s3.Client
	bucket string
}

// NewS3Store creates an S3Store with the given configuration.
func NewS3Store(ctx context.Context, cfg S3StoreConfig) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &S3Store{client: client, bucket: cfg.Bucket}, nil
}

func rawKey(id string) string {
	return "raw/" + id + ".md"
}

func attachmentKey(id, ext string) string {
	return "attachments/" + id + ext
}

func (s *S3Store) objectPath(key string) string {
	return fmt.Sprintf("s3://%s/%s", s.bucket, key)
}

// SaveRaw uploads the raw markdown for an item and returns its object path.
func (s *S3Store) SaveRaw(ctx context.Context, id string, data []byte) (string, error) {
	key := rawKey(id)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("text/markdown"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload raw content: %w", err)
	}
	return s.objectPath(key), nil
}

// GetRaw downloads the raw markdown for an item.
func (s *S3Store) GetRaw(ctx context.Context, id string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(rawKey(id)),
	})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, domain.ErrRawContentNotFound
		}
		return nil, fmt.Errorf("failed to download raw content: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read raw content: %w", err)
	}
	return data, nil
}

// DeleteRaw removes the raw markdown object. Deleting a missing object is
// not an error in S3.
func (s *S3Store) DeleteRaw(ctx context.Context, id string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(rawKey(id)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete raw content: %w", err)
	}
	return nil
}

// SaveAttachment uploads an original-format file keyed by item id and
// returns its object path.
func (s *S3Store) SaveAttachment(ctx context.Context, id, srcPath string) (string, error) {
	ext := strings.ToLower(filepath.Ext(srcPath))
	if !domain.IsRecognizedAttachmentExt(ext) {
		return "", domain.ErrUnsupportedDocument
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("failed to open attachment source: %w", err)
	}
	defer src.Close()

	key := attachmentKey(id, ext)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   src,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload attachment: %w", err)
	}
	return s.objectPath(key), nil
}

// FindAttachment probes the recognized extensions and returns a descriptor
// for the first attachment object found, or nil when the item has none.
func (s *S3Store) FindAttachment(ctx context.Context, id string) (*domain.Attachment, error) {
	for _, ext := range domain.RecognizedAttachmentExts {
		key := attachmentKey(id, ext)
		head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("failed to head attachment: %w", err)
		}
		return &domain.Attachment{
			FileName: id + ext,
			DocType:  strings.TrimPrefix(ext, "."),
			Size:     aws.ToInt64(head.ContentLength),
			Path:     s.objectPath(key),
		}, nil
	}
	return nil, nil
}

// DeleteAttachments removes any attachment object stored for the item.
func (s *S3Store) DeleteAttachments(ctx context.Context, id string) error {
	for _, ext := range domain.RecognizedAttachmentExts {
		_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(attachmentKey(id, ext)),
		})
		if err != nil {
			return fmt.Errorf("failed to delete attachment: %w", err)
		}
	}
	return nil
}

// EnsureBucket creates the bucket if it doesn't exist.
func (s *S3Store) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}

	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

func isNoSuchKey(err error) bool {
	var noSuchKey *types.NoSuchKey
	return errors.As(err, &noSuchKey)
}

func isNotFound(err error) bool {
	var notFound *types.NotFound
	return errors.As(err, &notFound)
}
