package batch

import (
	"strings"
	"unicode/utf8"

	"github.com/verdantlabs/voicerelay/internal/text"
)

// Batch is a group of reply segments synthesized as one clip.
type Batch struct {
	Text     string
	Language string
	Seq      int
	Final    bool
}

// Batcher groups cleaned reply segments into synthesis batches. A batch
// is emitted when the segment count or accumulated character length
// crosses its threshold, or immediately when the terminal segment
// arrives. Sequence numbers increase strictly across one reply.
type Batcher struct {
	batchSize int
	minChars  int

	pending  []string
	language string
	seq      int
}

func NewBatcher(batchSize, minChars int) *Batcher {
	if batchSize <= 0 {
		batchSize = 2
	}
	if minChars <= 0 {
		minChars = 150
	}
	return &Batcher{batchSize: batchSize, minChars: minChars}
}

// Add feeds one segment and returns a batch when one is due, else nil.
// The terminal segment always produces a batch, flagged Final, even
// when the accumulator is below both thresholds or empty.
func (b *Batcher) Add(seg text.Segment) *Batch {
	if seg.Cleaned != "" {
		b.pending = append(b.pending, seg.Cleaned)
		if b.language == "" {
			b.language = seg.Language
		}
	}

	if seg.Final {
		return b.flush(true)
	}
	if len(b.pending) >= b.batchSize || b.chars() >= b.minChars {
		return b.flush(false)
	}
	return nil
}

func (b *Batcher) chars() int {
	n := 0
	for _, p := range b.pending {
		n += utf8.RuneCountInString(p)
	}
	return n
}

func (b *Batcher) flush(final bool) *Batch {
	out := &Batch{
		Text:     strings.Join(b.pending, " "),
		Language: b.language,
		Seq:      b.seq,
		Final:    final,
	}
	b.seq++
	b.pending = nil
	b.language = ""
	return out
}
