package tts

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// PiperConfig holds configuration for the local Piper subprocess backend.
type PiperConfig struct {
	BinPath string // default: "piper"
	ModelVI string // path to the Vietnamese .onnx voice model
	ModelEN string // path to the English .onnx voice model
}

// Piper is the last-resort offline stage. It pipes text into the piper
// binary and reads raw 16 kHz mono PCM from stdout.
type Piper struct {
	cfg PiperConfig
}

func NewPiper(cfg PiperConfig) *Piper {
	if cfg.BinPath == "" {
		cfg.BinPath = "piper"
	}
	return &Piper{cfg: cfg}
}

func (p *Piper) Name() string { return "piper" }

func (p *Piper) model(language string) string {
	if language == "en" && p.cfg.ModelEN != "" {
		return p.cfg.ModelEN
	}
	return p.cfg.ModelVI
}

func (p *Piper) Synthesize(ctx context.Context, req Request) (*Result, error) {
	model := p.model(req.Language)
	if model == "" {
		return nil, fmt.Errorf("piper model path not configured")
	}

	cmd := exec.CommandContext(ctx, p.cfg.BinPath, "--model", model, "--output-raw")
	cmd.Stdin = strings.NewReader(req.Text)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("piper failed: %w (stderr: %s)", err, stderr.String())
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("piper produced no audio")
	}

	return &Result{Audio: stdout.Bytes(), Format: FormatPCM16k}, nil
}
