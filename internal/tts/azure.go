package tts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// AzureConfig holds configuration for the Azure Speech REST backend.
type AzureConfig struct {
	Key     string
	Region  string // default: "eastus"
	VoiceVI string // default: "vi-VN-HoaiMyNeural"
	VoiceEN string // default: "en-US-AvaMultilingualNeural"
}

// AzureSpeech synthesizes speech via the Azure Speech REST endpoint,
// requesting riff-16khz-16bit-mono-pcm so output needs no recoding.
type AzureSpeech struct {
	cfg        AzureConfig
	httpClient *http.Client
}

func NewAzureSpeech(cfg AzureConfig) *AzureSpeech {
	if cfg.Region == "" {
		cfg.Region = "eastus"
	}
	if cfg.VoiceVI == "" {
		cfg.VoiceVI = "vi-VN-HoaiMyNeural"
	}
	if cfg.VoiceEN == "" {
		cfg.VoiceEN = "en-US-AvaMultilingualNeural"
	}
	return &AzureSpeech{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (a *AzureSpeech) Name() string { return "azure" }

func (a *AzureSpeech) voice(language string) (name, lang string) {
	if language == "en" {
		return a.cfg.VoiceEN, "en-US"
	}
	return a.cfg.VoiceVI, "vi-VN"
}

func (a *AzureSpeech) Synthesize(ctx context.Context, req Request) (*Result, error) {
	if a.cfg.Key == "" {
		return nil, fmt.Errorf("azure speech key not configured")
	}

	voiceName, voiceLang := a.voice(req.Language)
	ssml := fmt.Sprintf(
		`<speak version='1.0' xml:lang='%s'><voice name='%s'>%s</voice></speak>`,
		voiceLang, voiceName, escapeSSML(req.Text),
	)

	endpoint := fmt.Sprintf("https://%s.tts.speech.microsoft.com/cognitiveservices/v1", a.cfg.Region)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(ssml))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Ocp-Apim-Subscription-Key", a.cfg.Key)
	httpReq.Header.Set("Content-Type", "application/ssml+xml")
	httpReq.Header.Set("X-Microsoft-OutputFormat", "riff-16khz-16bit-mono-pcm")
	httpReq.Header.Set("User-Agent", "voicerelay")

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("azure tts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("azure tts failed (status %d): %s", resp.StatusCode, string(body))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("azure tts returned empty audio")
	}

	return &Result{Audio: audio, Format: FormatWAV16k}, nil
}

var ssmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"'", "&apos;",
	`"`, "&quot;",
)

func escapeSSML(s string) string {
	return ssmlEscaper.Replace(s)
}
