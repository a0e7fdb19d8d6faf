package batch

import (
	"strings"
	"testing"

	"github.com/verdantlabs/voicerelay/internal/text"
)

func seg(cleaned string) text.Segment {
	return text.Segment{Cleaned: cleaned, Language: "vi"}
}

func TestBatcherEmitsAtCount(t *testing.T) {
	b := NewBatcher(2, 150)

	if got := b.Add(seg("xin chào")); got != nil {
		t.Fatalf("emitted early: %+v", got)
	}
	got := b.Add(seg("bạn khỏe không"))
	if got == nil {
		t.Fatal("no batch at segment count threshold")
	}
	if got.Text != "xin chào bạn khỏe không" {
		t.Errorf("joined text %q", got.Text)
	}
	if got.Language != "vi" || got.Seq != 0 || got.Final {
		t.Errorf("bad batch: %+v", got)
	}
}

func TestBatcherEmitsAtChars(t *testing.T) {
	b := NewBatcher(5, 20)

	long := strings.Repeat("a", 25)
	got := b.Add(seg(long))
	if got == nil {
		t.Fatal("no batch at char threshold")
	}
	if got.Text != long {
		t.Errorf("text %q", got.Text)
	}
}

func TestBatcherTerminalAlwaysFlushes(t *testing.T) {
	b := NewBatcher(2, 150)

	b.Add(seg("một"))
	got := b.Add(text.Segment{Cleaned: "hai", Language: "vi", Final: true})
	if got == nil || !got.Final {
		t.Fatalf("terminal segment did not flush: %+v", got)
	}
	if got.Text != "một hai" {
		t.Errorf("text %q", got.Text)
	}
}

func TestBatcherEmptyTerminal(t *testing.T) {
	b := NewBatcher(2, 150)

	got := b.Add(text.Segment{Final: true})
	if got == nil {
		t.Fatal("empty terminal produced no batch")
	}
	if !got.Final || got.Text != "" {
		t.Errorf("bad batch: %+v", got)
	}
}

func TestBatcherSequenceIncreases(t *testing.T) {
	b := NewBatcher(1, 150)

	var seqs []int
	for _, s := range []string{"a", "b", "c"} {
		if got := b.Add(seg(s)); got != nil {
			seqs = append(seqs, got.Seq)
		}
	}
	if got := b.Add(text.Segment{Final: true}); got != nil {
		seqs = append(seqs, got.Seq)
	}
	for i, s := range seqs {
		if s != i {
			t.Fatalf("seqs %v not strictly increasing from 0", seqs)
		}
	}
	if len(seqs) != 4 {
		t.Fatalf("got %d batches, want 4", len(seqs))
	}
}
