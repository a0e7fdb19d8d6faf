package text

import (
	"strings"
	"unicode/utf8"
)

const sentenceTerminators = ".!?。！？"

const clauseSeparators = ",;，；"

// Split breaks text into TTS-sized pieces: sentence boundaries first, then
// clause separators for pieces still over maxChunk, then a forced cut as a
// last resort. Nothing is ever dropped; a piece with no boundary at all is
// emitted oversized rather than truncated.
func Split(s string, maxChunk int) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if maxChunk <= 0 || utf8.RuneCountInString(s) <= maxChunk {
		return []string{s}
	}

	var out []string
	for _, sentence := range splitAfter(s, sentenceTerminators) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		if utf8.RuneCountInString(sentence) <= maxChunk {
			out = append(out, sentence)
			continue
		}
		for _, clause := range splitAfter(sentence, clauseSeparators) {
			clause = strings.TrimSpace(clause)
			if clause == "" {
				continue
			}
			if utf8.RuneCountInString(clause) <= maxChunk {
				out = append(out, clause)
				continue
			}
			out = append(out, forceSplit(clause, maxChunk)...)
		}
	}
	return out
}

// splitAfter cuts s after every rune in cutset, keeping the terminator with
// the preceding piece.
func splitAfter(s, cutset string) []string {
	var pieces []string
	var b strings.Builder
	for _, r := range s {
		b.WriteRune(r)
		if strings.ContainsRune(cutset, r) {
			pieces = append(pieces, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		pieces = append(pieces, b.String())
	}
	return pieces
}

// forceSplit cuts at the last space before the limit, or hard at the limit
// when a single word exceeds it.
func forceSplit(s string, maxChunk int) []string {
	var out []string
	runes := []rune(s)
	for len(runes) > maxChunk {
		cut := maxChunk
		for i := maxChunk; i > 0; i-- {
			if runes[i] == ' ' {
				cut = i
				break
			}
		}
		piece := strings.TrimSpace(string(runes[:cut]))
		if piece != "" {
			out = append(out, piece)
		}
		runes = []rune(strings.TrimSpace(string(runes[cut:])))
	}
	if len(runes) > 0 {
		out = append(out, string(runes))
	}
	return out
}
