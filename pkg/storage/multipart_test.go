package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	initErr     error
	partErrAt   int
	partErr     error
	completeErr error
	abortErr    error

	partSizes  []int64
	partNums   []int
	completed  bool
	complParts []minio.CompletePart
	aborts     int
}

func (f *fakeStore) NewMultipartUpload(ctx context.Context, bucket, object string, opts minio.PutObjectOptions) (string, error) {
	if f.initErr != nil {
		return "", f.initErr
	}
	return "upload-1", nil
}

func (f *fakeStore) PutObjectPart(ctx context.Context, bucket, object, uploadID string, partID int, data io.Reader, size int64, opts minio.PutObjectPartOptions) (minio.ObjectPart, error) {
	if f.partErr != nil && partID == f.partErrAt {
		return minio.ObjectPart{}, f.partErr
	}
	body, err := io.ReadAll(data)
	if err != nil {
		return minio.ObjectPart{}, err
	}
	if int64(len(body)) != size {
		return minio.ObjectPart{}, fmt.Errorf("declared size %d but read %d bytes", size, len(body))
	}
	f.partSizes = append(f.partSizes, size)
	f.partNums = append(f.partNums, partID)
	return minio.ObjectPart{PartNumber: partID, ETag: fmt.Sprintf("etag-%d", partID)}, nil
}

func (f *fakeStore) CompleteMultipartUpload(ctx context.Context, bucket, object, uploadID string, parts []minio.CompletePart, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.completeErr != nil {
		return minio.UploadInfo{}, f.completeErr
	}
	f.completed = true
	f.complParts = parts
	return minio.UploadInfo{Bucket: bucket, Key: object}, nil
}

func (f *fakeStore) AbortMultipartUpload(ctx context.Context, bucket, object, uploadID string) error {
	f.aborts++
	return f.abortErr
}

func TestUploadPartSlicing(t *testing.T) {
	const partSize = 5

	tests := []struct {
		name      string
		streamLen int
		wantParts []int64
	}{
		{"single short part", 3, []int64{3}},
		{"exactly one part", 5, []int64{5}},
		{"full plus residual", 7, []int64{5, 2}},
		{"two full parts", 10, []int64{5, 5}},
		{"two full plus residual", 12, []int64{5, 5, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{}
			u := NewChunkedUploader(store, "recordings", partSize)

			key, err := u.Upload(context.Background(), bytes.NewReader(make([]byte, tt.streamLen)), "lecture.mp3", "audio/mpeg")
			require.NoError(t, err)
			assert.Equal(t, "lecture.mp3", key)
			assert.Equal(t, tt.wantParts, store.partSizes)
			assert.True(t, store.completed)
			require.Len(t, store.complParts, len(tt.wantParts))
			for i, part := range store.complParts {
				assert.Equal(t, i+1, part.PartNumber)
				assert.Equal(t, fmt.Sprintf("etag-%d", i+1), part.ETag)
			}
			assert.Zero(t, store.aborts)
		})
	}
}

func TestUploadScenarioSizes(t *testing.T) {
	// 12 MiB at the default part size must land as 5, 5, 2 MiB.
	store := &fakeStore{}
	u := NewChunkedUploader(store, "recordings", DefaultPartSize)

	_, err := u.Upload(context.Background(), bytes.NewReader(make([]byte, 12<<20)), "lecture.mp3", "audio/mpeg")
	require.NoError(t, err)
	assert.Equal(t, []int64{5 << 20, 5 << 20, 2 << 20}, store.partSizes)
	assert.Equal(t, []int{1, 2, 3}, store.partNums)
}

func TestUploadSessionInitFailure(t *testing.T) {
	store := &fakeStore{initErr: errors.New("no upload id")}
	u := NewChunkedUploader(store, "recordings", 5)

	_, err := u.Upload(context.Background(), bytes.NewReader([]byte("data")), "k", "audio/mpeg")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSessionInit)
	assert.Zero(t, store.aborts)
	assert.False(t, store.completed)
}

func TestUploadPartFailureAborts(t *testing.T) {
	cause := errors.New("part rejected")
	store := &fakeStore{partErrAt: 2, partErr: cause}
	u := NewChunkedUploader(store, "recordings", 5)

	_, err := u.Upload(context.Background(), bytes.NewReader(make([]byte, 12)), "k", "audio/mpeg")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpload)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1, store.aborts)
	assert.False(t, store.completed)
}

func TestUploadStreamErrorAborts(t *testing.T) {
	cause := errors.New("transcoder died")
	r := io.MultiReader(bytes.NewReader(make([]byte, 3)), &errReader{err: cause})
	store := &fakeStore{}
	u := NewChunkedUploader(store, "recordings", 5)

	_, err := u.Upload(context.Background(), r, "k", "audio/mpeg")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpload)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1, store.aborts)
	// 3 buffered bytes never reached the part threshold.
	assert.Empty(t, store.partSizes)
	assert.False(t, store.completed)
}

func TestUploadCompleteFailureAborts(t *testing.T) {
	cause := errors.New("part order mismatch")
	store := &fakeStore{completeErr: cause}
	u := NewChunkedUploader(store, "recordings", 5)

	_, err := u.Upload(context.Background(), bytes.NewReader(make([]byte, 7)), "k", "audio/mpeg")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpload)
	assert.Equal(t, 1, store.aborts)
}

func TestUploadAbortFailureDoesNotMaskCause(t *testing.T) {
	cause := errors.New("part rejected")
	store := &fakeStore{partErrAt: 1, partErr: cause, abortErr: errors.New("abort failed too")}
	u := NewChunkedUploader(store, "recordings", 5)

	_, err := u.Upload(context.Background(), bytes.NewReader(make([]byte, 7)), "k", "audio/mpeg")
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1, store.aborts)
}

type errReader struct {
	err error
}

func (r *errReader) Read([]byte) (int, error) {
	return 0, r.err
}
