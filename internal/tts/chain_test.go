package tts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/verdantlabs/voicerelay/internal/audio"
)

type fakeStage struct {
	name   string
	result *Result
	err    error
	calls  int
}

func (f *fakeStage) Synthesize(ctx context.Context, req Request) (*Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeStage) Name() string { return f.name }

func wav16k(samples int) []byte {
	return audio.PCMToWAV(audio.Int16ToBytes(make([]int16, samples)), audio.TargetSampleRate)
}

func TestChainFirstStageWins(t *testing.T) {
	first := &fakeStage{name: "azure", result: &Result{Audio: wav16k(160), Format: FormatWAV16k}}
	second := &fakeStage{name: "piper", result: &Result{Audio: make([]byte, 320), Format: FormatPCM16k}}
	c := NewChainWith(time.Second, "", first, second)

	syn, err := c.Synthesize(context.Background(), Request{Text: "xin chào", Language: "vi"})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if syn.Provider != "azure" {
		t.Errorf("provider %q, want azure", syn.Provider)
	}
	if second.calls != 0 {
		t.Error("second stage called despite first succeeding")
	}
}

func TestChainFallsBack(t *testing.T) {
	first := &fakeStage{name: "azure", err: errors.New("quota exceeded")}
	second := &fakeStage{name: "piper", result: &Result{Audio: audio.Int16ToBytes(make([]int16, 160)), Format: FormatPCM16k}}
	c := NewChainWith(time.Second, "", first, second)

	syn, err := c.Synthesize(context.Background(), Request{Text: "hello", Language: "en"})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if syn.Provider != "piper" {
		t.Errorf("provider %q, want piper", syn.Provider)
	}
	if first.calls != 1 {
		t.Errorf("first stage called %d times", first.calls)
	}

	info, _, err := audio.ParseWAV(syn.Audio)
	if err != nil {
		t.Fatalf("output is not WAV: %v", err)
	}
	if info.SampleRate != audio.TargetSampleRate {
		t.Errorf("sample rate %d", info.SampleRate)
	}
}

func TestChainNormalizesForeignRate(t *testing.T) {
	stage := &fakeStage{
		name:   "openai-sdk",
		result: &Result{Audio: audio.PCMToWAV(audio.Int16ToBytes(make([]int16, 2400)), 24000), Format: FormatWAV},
	}
	c := NewChainWith(time.Second, "", stage)

	syn, err := c.Synthesize(context.Background(), Request{Text: "hi", Language: "en"})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	info, data, err := audio.ParseWAV(syn.Audio)
	if err != nil {
		t.Fatalf("ParseWAV: %v", err)
	}
	if info.SampleRate != audio.TargetSampleRate {
		t.Errorf("sample rate %d, want %d", info.SampleRate, audio.TargetSampleRate)
	}
	if got := len(audio.BytesToInt16(data)); got != 1600 {
		t.Errorf("got %d samples after resample, want 1600", got)
	}
}

func TestChainAllStagesFail(t *testing.T) {
	c := NewChainWith(time.Second, "",
		&fakeStage{name: "azure", err: errors.New("boom")},
		&fakeStage{name: "piper", err: errors.New("no model")},
	)

	if _, err := c.Synthesize(context.Background(), Request{Text: "x"}); err == nil {
		t.Fatal("expected error when every stage fails")
	}
}

func TestChainHonorsCanceledContext(t *testing.T) {
	stage := &fakeStage{name: "azure", result: &Result{Audio: wav16k(16), Format: FormatWAV16k}}
	c := NewChainWith(time.Second, "", stage)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Synthesize(ctx, Request{Text: "x"}); err == nil {
		t.Fatal("expected context error")
	}
	if stage.calls != 0 {
		t.Error("stage called after cancellation")
	}
}
