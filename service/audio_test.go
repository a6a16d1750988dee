package service

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTranscoder struct {
	output   []byte
	err      error
	chunkLen int
}

func (f *fakeTranscoder) Transcode(ctx context.Context, sourceURL string, w io.Writer) error {
	chunk := f.chunkLen
	if chunk <= 0 {
		chunk = 4
	}
	for off := 0; off < len(f.output); off += chunk {
		end := off + chunk
		if end > len(f.output) {
			end = len(f.output)
		}
		if _, err := w.Write(f.output[off:end]); err != nil {
			return err
		}
	}
	return f.err
}

type fakeUploader struct {
	gotKey         string
	gotContentType string
	gotBytes       []byte
	err            error
}

func (f *fakeUploader) Upload(ctx context.Context, r io.Reader, key, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.gotKey = key
	f.gotContentType = contentType
	f.gotBytes = body
	return key, nil
}

func TestDeriveAudioKey(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{"mp4 recording", "https://host/path/recording-42.mp4", "recording-42.mp3", false},
		{"cdn lecture", "https://cdn/x/lecture.mp4", "lecture.mp3", false},
		{"no extension", "https://host/a/talk", "talk.mp3", false},
		{"webm source", "https://host/rooms/room-1.webm", "room-1.mp3", false},
		{"no path", "https://host", "", true},
		{"root path only", "https://host/", "", true},
		{"extension only", "https://host/.mp4", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := deriveAudioKey(tt.url)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrKeyDerivation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractStreamsTranscoderOutput(t *testing.T) {
	payload := make([]byte, 1000)
	for i := range payload {
		payload[i] = byte(i)
	}
	transcoder := &fakeTranscoder{output: payload, chunkLen: 7}
	uploader := &fakeUploader{}
	svc := NewAudioService(transcoder, uploader, nil)

	key, err := svc.Extract(context.Background(), "https://cdn/x/lecture.mp4")
	require.NoError(t, err)
	assert.Equal(t, "lecture.mp3", key)
	assert.Equal(t, "lecture.mp3", uploader.gotKey)
	assert.Equal(t, "audio/mpeg", uploader.gotContentType)
	assert.Equal(t, payload, uploader.gotBytes)
}

func TestExtractTranscoderFailureReachesAbort(t *testing.T) {
	cause := errors.New("ffmpeg exited 1")
	transcoder := &fakeTranscoder{output: make([]byte, 64), err: cause}
	uploader := &fakeUploader{}
	svc := NewAudioService(transcoder, uploader, nil)

	_, err := svc.Extract(context.Background(), "https://cdn/x/lecture.mp4")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExtraction)
	assert.ErrorIs(t, err, cause)
}

func TestExtractUploadFailureTerminatesTranscoder(t *testing.T) {
	cause := errors.New("no upload id")
	transcoder := &fakeTranscoder{output: make([]byte, 64)}
	uploader := &fakeUploader{err: cause}
	svc := NewAudioService(transcoder, uploader, nil)

	_, err := svc.Extract(context.Background(), "https://cdn/x/lecture.mp4")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExtraction)
	assert.ErrorIs(t, err, cause)
}

func TestExtractRejectsBadURLBeforeTranscoding(t *testing.T) {
	transcoder := &fakeTranscoder{output: []byte("should never run")}
	uploader := &fakeUploader{}
	svc := NewAudioService(transcoder, uploader, nil)

	_, err := svc.Extract(context.Background(), "https://host")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrKeyDerivation)
	assert.Empty(t, uploader.gotKey)
}
