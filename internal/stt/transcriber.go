package stt

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/verdantlabs/voicerelay/internal/config"
)

// Transcriber routes transcription to a primary backend with one
// alternate tried on failure.
type Transcriber struct {
	primary   Provider
	alternate Provider
}

func NewTranscriber(cfg config.STTConfig) *Transcriber {
	remote := NewOpenAISTT(OpenAIConfig{
		APIKey:  cfg.OpenAIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIModel,
	})
	local := NewLocalSTT(LocalConfig{BaseURL: cfg.LocalBaseURL})

	t := &Transcriber{primary: remote, alternate: local}
	if cfg.Backend == "local" {
		t.primary, t.alternate = local, remote
	}
	return t
}

// NewTranscriberWith builds a transcriber over explicit backends.
func NewTranscriberWith(primary, alternate Provider) *Transcriber {
	return &Transcriber{primary: primary, alternate: alternate}
}

func (t *Transcriber) Transcribe(ctx context.Context, req TranscriptionRequest) (*TranscriptionResponse, error) {
	resp, err := t.primary.Transcribe(ctx, req)
	if err == nil {
		return resp, nil
	}
	if t.alternate == nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	slog.Warn("primary STT backend failed, trying alternate",
		"primary", t.primary.Name(),
		"alternate", t.alternate.Name(),
		"error", err,
	)
	resp, altErr := t.alternate.Transcribe(ctx, req)
	if altErr != nil {
		return nil, fmt.Errorf("all STT backends failed: %w (alternate: %v)", err, altErr)
	}
	return resp, nil
}
