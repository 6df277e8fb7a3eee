// Package elevenlabs is a minimal client for the ElevenLabs text-to-speech
// API: one synchronous synthesis call with a fixed voice profile.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

const (
	defaultBaseURL = "https://api.elevenlabs.io"
	defaultVoiceID = "IHMMqNaUtMooU2Q3wLVK"
)

// ErrEmptyText is returned when there is nothing to synthesize.
var ErrEmptyText = eris.New("elevenlabs: cannot synthesize empty text")

// Client converts plain text into encoded audio.
type Client interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// VoiceSettings are the fixed synthesis parameters sent with every request.
type VoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type synthesisRequest struct {
	Text          string        `json:"text"`
	VoiceSettings VoiceSettings `json:"voice_settings"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithVoice overrides the default voice identifier.
func WithVoice(voiceID string) Option {
	return func(c *httpClient) {
		c.voiceID = voiceID
	}
}

// WithVoiceSettings overrides the default stability/similarity parameters.
func WithVoiceSettings(settings VoiceSettings) Option {
	return func(c *httpClient) {
		c.settings = settings
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey   string
	baseURL  string
	voiceID  string
	settings VoiceSettings
	http     *http.Client
}

// NewClient creates an ElevenLabs API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		voiceID: defaultVoiceID,
		http: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Synthesize issues a single synthesis request and returns the raw MP3 body.
// There is no retry; callers treat a failure as soft and move on.
func (c *httpClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	body, err := json.Marshal(synthesisRequest{Text: text, VoiceSettings: c.settings})
	if err != nil {
		return nil, eris.Wrap(err, "elevenlabs: marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/text-to-speech/"+c.voiceID, bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "elevenlabs: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("accept", "audio/mpeg")
	httpReq.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "elevenlabs: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "elevenlabs: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("elevenlabs: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}
