package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
)

var ErrTranscription = errors.New("transcription failed")

// SpeechToText turns an audio resource into plain text.
type SpeechToText interface {
	Transcribe(ctx context.Context, audioURL string) (string, error)
}

type TranscriptionService interface {
	Transcribe(ctx context.Context, key string) (string, error)
}

type transcriptionService struct {
	stt        SpeechToText
	publicBase string
}

func NewTranscriptionService(stt SpeechToText, publicBase string) TranscriptionService {
	return &transcriptionService{
		stt:        stt,
		publicBase: publicBase,
	}
}

// Transcribe resolves the stored audio key against the public base URL and
// performs a single round trip to the speech-to-text service. No retries.
func (s *transcriptionService) Transcribe(ctx context.Context, key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", errors.Join(ErrInvalidRequest, errors.New("audio key is required"))
	}

	audioURL := strings.TrimRight(s.publicBase, "/") + "/" + strings.TrimLeft(key, "/")
	text, err := s.stt.Transcribe(ctx, audioURL)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("key", key).Msg("transcription failed")
		return "", errors.Join(ErrTranscription, err)
	}
	if text == "" {
		return "", errors.Join(ErrTranscription, errors.New("speech-to-text returned no text"))
	}
	return text, nil
}
