package tts

import "context"

// Format identifies the raw encoding a stage hands back before the
// chain normalizes it to 16 kHz mono WAV.
type Format string

const (
	FormatWAV16k Format = "wav16k" // already 16 kHz mono 16-bit WAV
	FormatWAV    Format = "wav"    // WAV at some other rate or channel layout
	FormatPCM16k Format = "pcm16k" // headerless 16 kHz mono 16-bit PCM
	FormatMP3    Format = "mp3"
)

// Request holds one batch of reply text to synthesize.
type Request struct {
	Text     string
	Language string // "vi" or "en", drives voice selection
}

// Result is a single stage's output before normalization.
type Result struct {
	Audio  []byte
	Format Format
}

// Provider is one synthesis stage in the fallback chain.
type Provider interface {
	Synthesize(ctx context.Context, req Request) (*Result, error)
	Name() string
}
