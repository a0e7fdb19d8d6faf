package text

import "testing"

func TestCleanRemovesEmoji(t *testing.T) {
	got := Clean("🎵 Đang phát: Lofi Chill 🎧 của ChillStation")
	want := "Đang phát: Lofi Chill của ChillStation"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestCleanStripsMarkdown(t *testing.T) {
	cases := map[string]string{
		"**bold** and *italic*":      "bold and italic",
		"__under__ and ~~strike~~":   "under and strike",
		"`code` inline":              "code inline",
		"see [the docs](http://x/y)": "see the docs",
		"***nested***":               "nested",
	}
	for in, want := range cases {
		if got := Clean(in); got != want {
			t.Errorf("Clean(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCleanWhitespaceAndPunct(t *testing.T) {
	got := Clean("Xin   chào ,  bạn khỏe không ?")
	want := "Xin chào, bạn khỏe không?"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestCleanIdempotent(t *testing.T) {
	inputs := []string{
		"🎵 Đang phát: **Sonata** của *Beethoven*! 🎹",
		"Hello, world! How are you?",
		"[link](http://example.com) and `code` ***deep***",
		"",
		"😀😀😀",
		"Trời hôm nay đẹp quá nhỉ...",
	}
	for _, in := range inputs {
		once := Clean(in)
		twice := Clean(once)
		if once != twice {
			t.Errorf("Clean not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestCleanKeepsVietnameseDiacritics(t *testing.T) {
	in := "Chào em! Em cần gì?"
	if got := Clean(in); got != in {
		t.Fatalf("got %q, want %q", got, in)
	}
}
