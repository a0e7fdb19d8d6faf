package audio

import (
	"log/slog"
	"math"
)

// SegmenterConfig tunes voice-activity detection and utterance finalization.
type SegmenterConfig struct {
	FrameSize       int     // samples per frame; other sizes are dropped
	EnergyThreshold float64 // RMS above this counts as speech
	SilenceFrames   int     // silent frames after speech before finalizing
	MaxBufferFrames int     // ring capacity; oldest frames evicted beyond this
}

func DefaultSegmenterConfig() SegmenterConfig {
	return SegmenterConfig{
		FrameSize:       512,
		EnergyThreshold: 500,
		SilenceFrames:   8,
		MaxBufferFrames: 100,
	}
}

// Segmenter turns a raw PCM frame stream into finalized utterances using
// energy-based voice-activity detection and a silence run threshold.
// Not safe for concurrent use; each connection owns one.
type Segmenter struct {
	cfg        SegmenterConfig
	frames     [][]int16
	speaking   bool
	silenceRun int
}

func NewSegmenter(cfg SegmenterConfig) *Segmenter {
	if cfg.FrameSize <= 0 {
		cfg.FrameSize = 512
	}
	if cfg.SilenceFrames <= 0 {
		cfg.SilenceFrames = 8
	}
	if cfg.MaxBufferFrames <= 0 {
		cfg.MaxBufferFrames = 100
	}
	return &Segmenter{cfg: cfg}
}

// Ingest consumes one frame and returns a finalized utterance once a silence
// run crosses the configured threshold. The returned slice is the concatenated
// active buffer; ok is false while the utterance is still open.
func (s *Segmenter) Ingest(frame []int16) ([]int16, bool) {
	if len(frame) != s.cfg.FrameSize {
		slog.Warn("dropping malformed audio frame", "got", len(frame), "want", s.cfg.FrameSize)
		return nil, false
	}

	if rms(frame) >= s.cfg.EnergyThreshold {
		s.speaking = true
		s.silenceRun = 0
		s.append(frame)
		return nil, false
	}

	if !s.speaking {
		return nil, false
	}

	s.silenceRun++
	if s.silenceRun > s.cfg.SilenceFrames {
		return s.finalize()
	}
	return nil, false
}

// Flush force-finalizes whatever is buffered, bypassing the silence
// threshold. Used when the conversation is stopped mid-utterance.
func (s *Segmenter) Flush() ([]int16, bool) {
	return s.finalize()
}

// Speaking reports whether an utterance is currently open.
func (s *Segmenter) Speaking() bool { return s.speaking }

func (s *Segmenter) append(frame []int16) {
	cp := make([]int16, len(frame))
	copy(cp, frame)
	s.frames = append(s.frames, cp)
	if len(s.frames) > s.cfg.MaxBufferFrames {
		s.frames = s.frames[len(s.frames)-s.cfg.MaxBufferFrames:]
	}
}

func (s *Segmenter) finalize() ([]int16, bool) {
	s.speaking = false
	s.silenceRun = 0
	if len(s.frames) == 0 {
		return nil, false
	}
	out := make([]int16, 0, len(s.frames)*s.cfg.FrameSize)
	for _, f := range s.frames {
		out = append(out, f...)
	}
	s.frames = nil
	return out, true
}

func rms(frame []int16) float64 {
	var sum float64
	for _, v := range frame {
		f := float64(v)
		sum += f * f
	}
	return math.Sqrt(sum / float64(len(frame)))
}
