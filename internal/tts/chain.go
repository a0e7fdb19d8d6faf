package tts

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/verdantlabs/voicerelay/internal/audio"
	"github.com/verdantlabs/voicerelay/internal/config"
)

// Synthesis is the chain's normalized output: always 16 kHz mono 16-bit
// WAV, tagged with the stage that produced it.
type Synthesis struct {
	Audio    []byte
	Provider string
}

// Chain tries synthesis stages in configured order. Each stage gets one
// attempt per request under its own timeout; the first stage whose
// output survives normalization wins.
type Chain struct {
	stages       []Provider
	recoder      *audio.Recoder
	stageTimeout time.Duration
}

func NewChain(cfg config.TTSConfig) (*Chain, error) {
	openaiCfg := OpenAIConfig{
		APIKey:  cfg.OpenAIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIModel,
		VoiceVI: cfg.VoiceVI,
		VoiceEN: cfg.VoiceEN,
	}

	available := map[string]Provider{
		"azure": NewAzureSpeech(AzureConfig{
			Key:     cfg.AzureSpeechKey,
			Region:  cfg.AzureRegion,
			VoiceVI: cfg.AzureVoiceVI,
			VoiceEN: cfg.AzureVoiceEN,
		}),
		"openai-sdk":  NewOpenAITTS(openaiCfg),
		"openai-rest": NewOpenAIREST(openaiCfg),
		"piper": NewPiper(PiperConfig{
			BinPath: cfg.PiperBinPath,
			ModelVI: cfg.PiperModelVI,
			ModelEN: cfg.PiperModelEN,
		}),
	}

	var stages []Provider
	for _, name := range cfg.Chain {
		p, ok := available[name]
		if !ok {
			return nil, fmt.Errorf("unknown tts stage %q", name)
		}
		stages = append(stages, p)
	}
	if len(stages) == 0 {
		return nil, fmt.Errorf("tts chain is empty")
	}

	timeout := time.Duration(cfg.StageTimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Chain{
		stages:       stages,
		recoder:      audio.NewRecoder(cfg.FFmpegPath),
		stageTimeout: timeout,
	}, nil
}

// NewChainWith builds a chain over explicit stages; used by tests.
func NewChainWith(stageTimeout time.Duration, ffmpegPath string, stages ...Provider) *Chain {
	return &Chain{
		stages:       stages,
		recoder:      audio.NewRecoder(ffmpegPath),
		stageTimeout: stageTimeout,
	}
}

func (c *Chain) Synthesize(ctx context.Context, req Request) (*Synthesis, error) {
	var lastErr error
	for _, stage := range c.stages {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		stageCtx, cancel := context.WithTimeout(ctx, c.stageTimeout)
		result, err := stage.Synthesize(stageCtx, req)
		if err == nil {
			var wav []byte
			wav, err = c.normalize(stageCtx, result)
			if err == nil {
				cancel()
				return &Synthesis{Audio: wav, Provider: stage.Name()}, nil
			}
		}
		cancel()

		lastErr = err
		slog.Warn("tts stage failed",
			"stage", stage.Name(),
			"language", req.Language,
			"error", err,
		)
	}
	return nil, fmt.Errorf("all tts stages failed: %w", lastErr)
}

func (c *Chain) normalize(ctx context.Context, r *Result) ([]byte, error) {
	switch r.Format {
	case FormatWAV16k:
		return r.Audio, nil
	case FormatWAV:
		return audio.NormalizeWAV(r.Audio)
	case FormatPCM16k:
		return audio.PCMToWAV(r.Audio, audio.TargetSampleRate), nil
	case FormatMP3:
		return c.recoder.ToWAV16k(ctx, r.Audio, "mp3")
	default:
		return nil, fmt.Errorf("unknown audio format %q", r.Format)
	}
}
