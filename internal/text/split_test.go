package text

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitShortTextUntouched(t *testing.T) {
	got := Split("Xin chào.", 150)
	if len(got) != 1 || got[0] != "Xin chào." {
		t.Fatalf("got %v", got)
	}
}

func TestSplitOnSentences(t *testing.T) {
	got := Split("Câu một. Câu hai! Câu ba?", 10)
	want := []string{"Câu một.", "Câu hai!", "Câu ba?"}
	if len(got) != len(want) {
		t.Fatalf("got %d pieces %v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("piece %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSplitFallsBackToClauses(t *testing.T) {
	long := strings.Repeat("abcde ", 20) + ", " + strings.Repeat("fghij ", 20)
	got := Split(long, 150)
	if len(got) < 2 {
		t.Fatalf("expected clause split, got %d pieces", len(got))
	}
	for _, p := range got {
		if utf8.RuneCountInString(p) > 150 {
			t.Errorf("piece exceeds limit: %d runes", utf8.RuneCountInString(p))
		}
	}
}

// A 600-char run without sentence punctuation must still come back in
// bounded pieces with nothing dropped.
func TestSplitLongUnpunctuatedRun(t *testing.T) {
	long := strings.TrimSpace(strings.Repeat("từng lời nói êm đềm trôi qua ", 22))
	if utf8.RuneCountInString(long) < 600 {
		t.Fatalf("fixture too short: %d", utf8.RuneCountInString(long))
	}

	got := Split(long, 150)
	if len(got) < 4 {
		t.Fatalf("expected at least 4 pieces, got %d", len(got))
	}
	for i, p := range got {
		if utf8.RuneCountInString(p) > 150 {
			t.Errorf("piece %d exceeds 150 runes: %d", i, utf8.RuneCountInString(p))
		}
	}

	joined := strings.Join(got, " ")
	if strings.Join(strings.Fields(joined), " ") != strings.Join(strings.Fields(long), " ") {
		t.Error("split dropped or reordered content")
	}
}

func TestSplitNeverTruncatesUnbreakable(t *testing.T) {
	word := strings.Repeat("x", 200)
	got := Split(word, 150)
	total := 0
	for _, p := range got {
		total += utf8.RuneCountInString(p)
	}
	if total != 200 {
		t.Fatalf("content lost: %d of 200 runes survive", total)
	}
}

func TestSplitEmpty(t *testing.T) {
	if got := Split("   ", 100); got != nil {
		t.Fatalf("got %v, want nil", got)
	}
}
