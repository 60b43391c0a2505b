package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Synthesizer is an HTTP client for a text-to-speech service that
// returns playable audio bytes.
type Synthesizer struct {
	baseURL string
	voice   string
	client  *http.Client
	logger  *slog.Logger
}

func NewSynthesizer(baseURL, voice string, logger *slog.Logger) *Synthesizer {
	return &Synthesizer{
		baseURL: baseURL,
		voice:   voice,
		client:  &http.Client{Timeout: 60 * time.Second},
		logger:  logger,
	}
}

type synthesisRequest struct {
	Input string `json:"input"`
	Voice string `json:"voice,omitempty"`
}

// Synthesize renders text as audio.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	body, err := json.Marshal(synthesisRequest{Input: text, Voice: s.voice})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/audio/speech", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("synthesis call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("synthesis error %d: %s", resp.StatusCode, string(respBody))
	}
	if len(respBody) == 0 {
		return nil, fmt.Errorf("empty audio response")
	}
	s.logger.Debug("synthesis complete", "text_len", len(text), "audio_bytes", len(respBody))
	return respBody, nil
}
