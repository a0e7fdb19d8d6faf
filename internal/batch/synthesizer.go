package batch

import (
	"context"
	"fmt"

	"github.com/verdantlabs/voicerelay/internal/tts"
)

// Clip is one synthesized batch ready for the transport.
type Clip struct {
	Audio    []byte // 16 kHz mono 16-bit WAV
	Provider string
	Language string
	Seq      int
	Final    bool
}

// SpeechChain is the part of the tts chain the synthesizer needs.
type SpeechChain interface {
	Synthesize(ctx context.Context, req tts.Request) (*tts.Synthesis, error)
}

// Synthesizer turns batches into clips via the fallback chain. A batch
// whose synthesis fails entirely is reported as an error; the caller
// logs and skips it without ending the turn.
type Synthesizer struct {
	chain SpeechChain
}

func NewSynthesizer(chain SpeechChain) *Synthesizer {
	return &Synthesizer{chain: chain}
}

// Synthesize renders one batch. An empty terminal batch yields a clip
// with no audio so the caller can still observe Final.
func (s *Synthesizer) Synthesize(ctx context.Context, b *Batch) (*Clip, error) {
	language := b.Language
	if language == "" {
		language = "vi"
	}

	clip := &Clip{Language: language, Seq: b.Seq, Final: b.Final}
	if b.Text == "" {
		return clip, nil
	}

	syn, err := s.chain.Synthesize(ctx, tts.Request{Text: b.Text, Language: language})
	if err != nil {
		return nil, fmt.Errorf("synthesize batch %d: %w", b.Seq, err)
	}
	clip.Audio = syn.Audio
	clip.Provider = syn.Provider
	return clip, nil
}
