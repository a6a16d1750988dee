package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"classroom-egress/dto"
	"classroom-egress/pkg/rabbitmq"
)

var (
	ErrKeyDerivation = errors.New("cannot derive audio key from source url")
	ErrExtraction    = errors.New("audio extraction failed")
)

// Uploader persists a byte stream and returns the destination key.
type Uploader interface {
	Upload(ctx context.Context, r io.Reader, key, contentType string) (string, error)
}

// Transcoder reads the media at sourceURL and writes an encoded audio stream
// to w as it is produced.
type Transcoder interface {
	Transcode(ctx context.Context, sourceURL string, w io.Writer) error
}

type AudioService interface {
	Extract(ctx context.Context, sourceURL string) (string, error)
}

type audioService struct {
	transcoder Transcoder
	uploader   Uploader
	events     rabbitmq.Publisher
}

func NewAudioService(transcoder Transcoder, uploader Uploader, events rabbitmq.Publisher) AudioService {
	return &audioService{
		transcoder: transcoder,
		uploader:   uploader,
		events:     events,
	}
}

// Extract transcodes the source into mp3 and streams it into object storage.
// Transcoding and upload run concurrently through a pipe, so peak memory is
// bounded by the upload part size, never the file size. A transcoder failure
// poisons the pipe, which drives the uploader's abort path; an upload failure
// closes the read side, which terminates the transcoder.
func (s *audioService) Extract(ctx context.Context, sourceURL string) (string, error) {
	key, err := deriveAudioKey(sourceURL)
	if err != nil {
		return "", err
	}

	pr, pw := io.Pipe()
	transcodeDone := make(chan error, 1)
	go func() {
		err := s.transcoder.Transcode(ctx, sourceURL, pw)
		if err != nil {
			pw.CloseWithError(err)
		} else {
			pw.Close()
		}
		transcodeDone <- err
	}()

	uploadedKey, uploadErr := s.uploader.Upload(ctx, pr, key, "audio/mpeg")
	if uploadErr != nil {
		pr.CloseWithError(uploadErr)
	}
	transcodeErr := <-transcodeDone

	if transcodeErr != nil {
		zerolog.Ctx(ctx).Error().Err(transcodeErr).Str("source", sourceURL).Msg("transcoder failed")
		return "", errors.Join(ErrExtraction, transcodeErr)
	}
	if uploadErr != nil {
		zerolog.Ctx(ctx).Error().Err(uploadErr).Str("key", key).Msg("audio upload failed")
		return "", errors.Join(ErrExtraction, uploadErr)
	}

	if s.events != nil {
		s.events.Publish(ctx, rabbitmq.RoutingKeyAudioExtracted, dto.RecordingEvent{
			EventID:    uuid.New(),
			Key:        uploadedKey,
			OccurredAt: time.Now(),
		})
	}

	zerolog.Ctx(ctx).Info().Str("key", uploadedKey).Msg("audio extraction complete")
	return uploadedKey, nil
}

// deriveAudioKey maps .../recording-42.mp4 to recording-42.mp3.
func deriveAudioKey(sourceURL string) (string, error) {
	u, err := url.Parse(sourceURL)
	if err != nil {
		return "", errors.Join(ErrKeyDerivation, err)
	}
	base := path.Base(u.Path)
	if base == "." || base == "/" || base == "" {
		return "", errors.Join(ErrKeyDerivation, fmt.Errorf("no path segment in %q", sourceURL))
	}
	name := strings.TrimSuffix(base, path.Ext(base))
	if name == "" {
		return "", errors.Join(ErrKeyDerivation, fmt.Errorf("no file name in %q", sourceURL))
	}
	return name + ".mp3", nil
}
