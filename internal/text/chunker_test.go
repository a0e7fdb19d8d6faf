package text

import (
	"strings"
	"testing"
)

func feedAll(c *Chunker, tokens []string) []Segment {
	var segs []Segment
	for _, tok := range tokens {
		segs = append(segs, c.Feed(tok)...)
	}
	return append(segs, c.Finish()...)
}

func TestChunkerSingleSentence(t *testing.T) {
	c := NewChunker(150)
	segs := feedAll(c, []string{"Chào ", "em! ", "Em ", "cần ", "gì"})

	if len(segs) != 2 {
		t.Fatalf("got %d segments, want 2: %+v", len(segs), segs)
	}
	if segs[0].Raw != "Chào em!" || segs[0].Final {
		t.Errorf("first segment wrong: %+v", segs[0])
	}
	if segs[1].Raw != "Em cần gì" || !segs[1].Final {
		t.Errorf("terminal segment wrong: %+v", segs[1])
	}
	if segs[0].Language != "vi" {
		t.Errorf("language = %q, want vi", segs[0].Language)
	}
}

func TestChunkerReconstructsStream(t *testing.T) {
	tokens := []string{
		"Hôm nay ", "trời đẹp. ", "Chúng ta ", "đi chơi nhé! ",
		"Nhớ mang ", "theo nước",
	}
	segs := feedAll(NewChunker(150), tokens)

	var raws []string
	for _, s := range segs {
		raws = append(raws, s.Raw)
	}
	got := strings.Join(strings.Fields(strings.Join(raws, " ")), " ")
	want := strings.Join(strings.Fields(strings.Join(tokens, "")), " ")
	if got != want {
		t.Fatalf("reconstruction mismatch:\n got %q\nwant %q", got, want)
	}
	if !segs[len(segs)-1].Final {
		t.Error("last segment not terminal")
	}
}

func TestChunkerExactlyOneTerminal(t *testing.T) {
	segs := feedAll(NewChunker(150), []string{"Một. ", "Hai. ", "Ba. ", "Bốn"})
	finals := 0
	for i, s := range segs {
		if s.Final {
			finals++
			if i != len(segs)-1 {
				t.Errorf("terminal flag on non-last segment %d", i)
			}
		}
	}
	if finals != 1 {
		t.Fatalf("got %d terminal segments, want 1", finals)
	}
}

func TestChunkerEmptyStreamEmitsEmptyTerminal(t *testing.T) {
	segs := NewChunker(150).Finish()
	if len(segs) != 1 || !segs[0].Final || segs[0].Cleaned != "" {
		t.Fatalf("got %+v, want single empty terminal segment", segs)
	}
}

func TestChunkerEmojiOnlyTailStillTerminates(t *testing.T) {
	c := NewChunker(150)
	c.Feed("Được rồi. ")
	segs := c.Finish()
	// only an emoji remains in the buffer
	c2 := NewChunker(150)
	c2.Feed("Xong. ")
	tail := append(c2.Feed("😀"), c2.Finish()...)

	if !segs[len(segs)-1].Final {
		t.Error("missing terminal on drained chunker")
	}
	last := tail[len(tail)-1]
	if !last.Final {
		t.Fatalf("emoji tail lost terminal flag: %+v", tail)
	}
}

func TestChunkerFeedAfterFinishIgnored(t *testing.T) {
	c := NewChunker(150)
	c.Finish()
	if segs := c.Feed("muộn rồi."); segs != nil {
		t.Fatalf("Feed after Finish produced %+v", segs)
	}
}

func TestChunkerOversizedSentenceSplit(t *testing.T) {
	long := strings.Repeat("lặp đi lặp lại ", 30) + "."
	segs := feedAll(NewChunker(50), []string{long})
	if len(segs) < 3 {
		t.Fatalf("expected oversized sentence to split, got %d segments", len(segs))
	}
}
