package text

import "strings"

// Chunker accumulates streamed tokens and emits sentence-bounded segments.
// One Chunker serves exactly one turn; create a fresh one per reply stream.
type Chunker struct {
	maxChunk int
	buf      strings.Builder
	finished bool
}

func NewChunker(maxChunk int) *Chunker {
	if maxChunk <= 0 {
		maxChunk = 150
	}
	return &Chunker{maxChunk: maxChunk}
}

// Feed appends one token and returns any segments completed by it. A segment
// completes when the buffer ends in a sentence terminator (optionally followed
// by whitespace).
func (c *Chunker) Feed(token string) []Segment {
	if c.finished || token == "" {
		return nil
	}
	c.buf.WriteString(token)

	if !endsSentence(c.buf.String()) {
		return nil
	}

	raw := strings.TrimSpace(c.buf.String())
	c.buf.Reset()
	if raw == "" {
		return nil
	}
	return c.segments(raw, false)
}

// Finish flushes the remaining buffer as the terminal segment. When cleaning
// leaves no speakable text, an explicit empty terminal segment is emitted so
// downstream still sees the end of the turn. Feed after Finish is a no-op.
func (c *Chunker) Finish() []Segment {
	c.finished = true
	raw := strings.TrimSpace(c.buf.String())
	c.buf.Reset()
	if raw == "" {
		return []Segment{{Final: true}}
	}
	segs := c.segments(raw, true)
	if len(segs) == 0 {
		return []Segment{{Final: true}}
	}
	return segs
}

// segments cleans and splits one flushed sentence run. Oversized runs are
// split further; the terminal flag lands on the last piece only.
func (c *Chunker) segments(raw string, final bool) []Segment {
	pieces := Split(raw, c.maxChunk)
	if len(pieces) == 0 {
		if final {
			return []Segment{{Final: true}}
		}
		return nil
	}

	var out []Segment
	for i, piece := range pieces {
		cleaned := Clean(piece)
		last := i == len(pieces)-1
		if cleaned == "" && !(final && last) {
			continue
		}
		out = append(out, Segment{
			Raw:      piece,
			Cleaned:  cleaned,
			Language: DetectLanguage(cleaned),
			Final:    final && last,
		})
	}
	return out
}

func endsSentence(s string) bool {
	trimmed := strings.TrimRight(s, " \t\r\n")
	if trimmed == "" {
		return false
	}
	r := []rune(trimmed)
	return strings.ContainsRune(sentenceTerminators, r[len(r)-1])
}
