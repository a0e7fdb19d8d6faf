package tts

import (
	"context"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIConfig holds configuration shared by both OpenAI TTS transports.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string // default: "https://api.openai.com/v1"
	Model   string // default: "tts-1"
	VoiceVI string // default: "nova"
	VoiceEN string // default: "alloy"
}

func (c *OpenAIConfig) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.openai.com/v1"
	}
	if c.Model == "" {
		c.Model = "tts-1"
	}
	if c.VoiceVI == "" {
		c.VoiceVI = "nova"
	}
	if c.VoiceEN == "" {
		c.VoiceEN = "alloy"
	}
}

func (c *OpenAIConfig) voice(language string) string {
	if language == "en" {
		return c.VoiceEN
	}
	return c.VoiceVI
}

// OpenAITTS is the SDK transport: WAV response, no recode step needed
// beyond resampling.
type OpenAITTS struct {
	cfg    OpenAIConfig
	client *openai.Client
}

func NewOpenAITTS(cfg OpenAIConfig) *OpenAITTS {
	cfg.applyDefaults()
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL
	return &OpenAITTS{
		cfg:    cfg,
		client: openai.NewClientWithConfig(clientCfg),
	}
}

func (o *OpenAITTS) Name() string { return "openai-sdk" }

func (o *OpenAITTS) Synthesize(ctx context.Context, req Request) (*Result, error) {
	if o.cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key not configured")
	}

	resp, err := o.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(o.cfg.Model),
		Input:          req.Text,
		Voice:          openai.SpeechVoice(o.cfg.voice(req.Language)),
		ResponseFormat: openai.SpeechResponseFormatWav,
	})
	if err != nil {
		return nil, fmt.Errorf("openai tts: %w", err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("openai tts returned empty audio")
	}

	// The API emits 24 kHz WAV; the chain resamples it down.
	return &Result{Audio: audio, Format: FormatWAV}, nil
}
