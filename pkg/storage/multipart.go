package storage

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/rs/zerolog"
)

// DefaultPartSize matches the minimum part size accepted by S3-compatible
// stores for every part except the last.
const DefaultPartSize = 5 * 1024 * 1024

var (
	ErrSessionInit = errors.New("failed to initiate multipart upload")
	ErrUpload      = errors.New("multipart upload failed")
)

// multipartAPI is the slice of the object-store API the uploader needs.
// *minio.Core satisfies it.
type multipartAPI interface {
	NewMultipartUpload(ctx context.Context, bucket, object string, opts minio.PutObjectOptions) (string, error)
	PutObjectPart(ctx context.Context, bucket, object, uploadID string, partID int, data io.Reader, size int64, opts minio.PutObjectPartOptions) (minio.ObjectPart, error)
	CompleteMultipartUpload(ctx context.Context, bucket, object, uploadID string, parts []minio.CompletePart, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	AbortMultipartUpload(ctx context.Context, bucket, object, uploadID string) error
}

// ChunkedUploader streams a source of unknown length into an object as a
// multipart upload, holding at most one part in memory.
type ChunkedUploader struct {
	store    multipartAPI
	bucket   string
	partSize int64
}

func NewChunkedUploader(store multipartAPI, bucket string, partSize int64) *ChunkedUploader {
	if partSize <= 0 {
		partSize = DefaultPartSize
	}
	return &ChunkedUploader{
		store:    store,
		bucket:   bucket,
		partSize: partSize,
	}
}

// Upload reads r to EOF, uploading full parts in order as they fill and any
// short remainder as the final part, then commits the upload. Any failure
// aborts the multipart session before the error is returned; nothing is
// observable at the destination key after an abort.
func (u *ChunkedUploader) Upload(ctx context.Context, r io.Reader, key, contentType string) (string, error) {
	uploadID, err := u.store.NewMultipartUpload(ctx, u.bucket, key, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", errors.Join(ErrSessionInit, err)
	}

	var parts []minio.CompletePart
	buf := make([]byte, u.partSize)
	partNumber := 1
	for {
		n, readErr := io.ReadFull(r, buf)
		if readErr != nil && readErr != io.EOF && readErr != io.ErrUnexpectedEOF {
			// A failed source invalidates whatever is buffered; nothing of it
			// may become a part.
			u.abort(ctx, key, uploadID)
			return "", errors.Join(ErrUpload, readErr)
		}
		if n > 0 {
			part, err := u.store.PutObjectPart(ctx, u.bucket, key, uploadID, partNumber,
				bytes.NewReader(buf[:n]), int64(n), minio.PutObjectPartOptions{})
			if err != nil {
				u.abort(ctx, key, uploadID)
				return "", errors.Join(ErrUpload, err)
			}
			parts = append(parts, minio.CompletePart{PartNumber: partNumber, ETag: part.ETag})
			partNumber++
		}
		if readErr != nil {
			break
		}
	}

	if _, err := u.store.CompleteMultipartUpload(ctx, u.bucket, key, uploadID, parts, minio.PutObjectOptions{}); err != nil {
		u.abort(ctx, key, uploadID)
		return "", errors.Join(ErrUpload, err)
	}

	zerolog.Ctx(ctx).Info().Str("key", key).Int("parts", len(parts)).Msg("multipart upload committed")
	return key, nil
}

// abort is best-effort cleanup; its own failure must not mask the upload error.
func (u *ChunkedUploader) abort(ctx context.Context, key, uploadID string) {
	if err := u.store.AbortMultipartUpload(ctx, u.bucket, key, uploadID); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).
			Str("key", key).
			Str("upload_id", uploadID).
			Msg("failed to abort multipart upload")
	}
}
