package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// OpenAIREST is the raw-HTTP transport against the same speech endpoint.
// It requests mp3, which is smaller on the wire; the chain recodes it.
// Kept separate from the SDK stage so an SDK-level failure still has a
// second shot at the provider.
type OpenAIREST struct {
	cfg        OpenAIConfig
	httpClient *http.Client
}

func NewOpenAIREST(cfg OpenAIConfig) *OpenAIREST {
	cfg.applyDefaults()
	return &OpenAIREST{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (o *OpenAIREST) Name() string { return "openai-rest" }

func (o *OpenAIREST) Synthesize(ctx context.Context, req Request) (*Result, error) {
	if o.cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key not configured")
	}

	body := map[string]any{
		"model": o.cfg.Model,
		"input": req.Text,
		"voice": o.cfg.voice(req.Language),
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", o.cfg.BaseURL+"/audio/speech", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.cfg.APIKey)

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("tts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("tts failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("openai tts returned empty audio")
	}

	return &Result{Audio: audio, Format: FormatMP3}, nil
}
