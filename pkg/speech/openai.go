package speech

import (
	"context"
	"fmt"
	"net/http"
	"path"

	openai "github.com/sashabaranov/go-openai"

	"classroom-egress/config"
)

// Client transcribes audio with the OpenAI transcription endpoint. The API
// takes the audio body, not a URL, so the public object is fetched and
// streamed straight into the request.
type Client struct {
	api   *openai.Client
	httpc *http.Client
	model string
}

func NewClient(cfg config.OpenAI) *Client {
	model := cfg.Model
	if model == "" {
		model = openai.Whisper1
	}
	return &Client{
		api:   openai.NewClient(cfg.APIKey),
		httpc: http.DefaultClient,
		model: model,
	}
}

func (c *Client) Transcribe(ctx context.Context, audioURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch audio: unexpected status %s", resp.Status)
	}

	out, err := c.api.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.model,
		Reader:   resp.Body,
		FilePath: path.Base(audioURL),
	})
	if err != nil {
		return "", err
	}
	return out.Text, nil
}
