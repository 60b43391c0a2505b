package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"
)

// Transcriber is an HTTP client for a whisper-compatible
// speech-to-text service.
type Transcriber struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

func NewTranscriber(baseURL string, logger *slog.Logger) *Transcriber {
	return &Transcriber{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
		logger:  logger,
	}
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

// Transcribe posts captured audio and returns the recognized text.
// Silence comes back as an empty string, not an error.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte, contextHint string) (string, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", "answer.webm")
	if err != nil {
		return "", fmt.Errorf("build form: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("write audio: %w", err)
	}
	if contextHint != "" {
		if err := form.WriteField("prompt", contextHint); err != nil {
			return "", fmt.Errorf("write hint: %w", err)
		}
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/v1/audio/transcriptions", &body)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcription error %d: %s", resp.StatusCode, string(respBody))
	}

	var tr transcriptionResponse
	if err := json.Unmarshal(respBody, &tr); err != nil {
		return "", fmt.Errorf("unmarshal transcription: %w", err)
	}
	t.logger.Debug("transcription complete", "audio_bytes", len(audio), "text_len", len(tr.Text))
	return tr.Text, nil
}
