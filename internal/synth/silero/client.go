// Package silero provides an HTTP adapter for a Silero TTS model server.
package silero

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"voicebot/internal/domain"
	"voicebot/internal/infra"
	"voicebot/internal/synth"
)

// Options controls how the Silero client is configured.
type Options struct {
	BaseURL    string
	APIKey     string
	Model      string
	SampleRate int
	HTTPClient *http.Client
	Logger     infra.Logger
}

// Client is a thin facade over the model server's /tts endpoint. It keeps no
// per-request state, so one instance is safe to share across every execution
// slot.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	sampleRate int
	httpClient *http.Client
	logger     infra.Logger
}

// NewClient validates the options and builds a Client.
func NewClient(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("silero: base url is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("silero: invalid base url: %w", err)
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	sampleRate := opts.SampleRate
	if sampleRate <= 0 {
		sampleRate = 48000
	}
	return &Client{
		baseURL:    base,
		apiKey:     opts.APIKey,
		model:      opts.Model,
		sampleRate: sampleRate,
		httpClient: httpClient,
		logger:     opts.Logger,
	}, nil
}

// Model returns the configured model identifier.
func (c *Client) Model() string { return c.model }

type synthesizeRequest struct {
	Text       string `json:"text"`
	Speaker    string `json:"speaker"`
	Model      string `json:"model,omitempty"`
	SampleRate int    `json:"sample_rate"`
}

type synthesizeError struct {
	Error string `json:"error"`
}

// Synthesize posts text and voice to the model server and returns WAV bytes
// at the configured sample rate. Every failure wraps
// domain.ErrSynthesisFailure so callers can classify it.
func (c *Client) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	payload, err := json.Marshal(synthesizeRequest{
		Text:       text,
		Speaker:    voiceID,
		Model:      c.model,
		SampleRate: c.sampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", domain.ErrSynthesisFailure, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tts", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", domain.ErrSynthesisFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSynthesisFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		message := strings.TrimSpace(string(body))
		var apiErr synthesizeError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			message = apiErr.Error
		}
		return nil, fmt.Errorf("%w: server returned %d: %s", domain.ErrSynthesisFailure, resp.StatusCode, message)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read audio: %v", domain.ErrSynthesisFailure, err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("%w: server returned empty audio", domain.ErrSynthesisFailure)
	}

	c.logger.Debug().
		Str("voice", voiceID).
		Int("bytes", len(audio)).
		Dur("took", time.Since(started)).
		Msg("silero: synthesis done")
	return audio, nil
}

var _ synth.Synthesizer = (*Client)(nil)
