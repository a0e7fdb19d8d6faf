// Package text turns an incremental reply stream into discrete, TTS-ready
// segments: sentence-bounded splitting, symbol/markdown cleanup, and a
// lightweight language heuristic.
package text

// Segment is one sentence-bounded piece of assistant reply text.
type Segment struct {
	Raw      string // original text as produced by the model
	Cleaned  string // TTS-safe text, may be empty after cleaning
	Language string // "vi" or "en", detected heuristically
	Final    bool   // marks the last segment of a turn
}
