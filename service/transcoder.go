package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

type ffmpegTranscoder struct{}

func NewFFmpegTranscoder() Transcoder {
	return ffmpegTranscoder{}
}

// Transcode strips the video track and encodes the audio to mp3 on stdout.
// ffmpeg reads the source URL itself, so the video bytes never pass through
// this process.
func (ffmpegTranscoder) Transcode(ctx context.Context, sourceURL string, w io.Writer) error {
	ffmpegArgs := []string{
		"-i", sourceURL,
		"-vn",
		"-acodec", "libmp3lame",
		"-f", "mp3",
		"pipe:1",
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", ffmpegArgs...)
	cmd.Stdout = w
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	zerolog.Ctx(ctx).Info().Str("cmd", "ffmpeg "+strings.Join(ffmpegArgs, " ")).Msg("starting audio extraction")

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg execution failed: %w: %s", err, lastLines(stderr.String(), 5))
	}
	return nil
}

// lastLines keeps error output readable; ffmpeg writes its whole progress log
// to stderr and only the tail explains a failure.
func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
