package text

import "testing"

func TestDetectLanguage(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Xin chào, bạn khỏe không?", "vi"},
		{"Hello there, how are you today?", "en"},
		{"ok", "en"},
		{"", "vi"},
		{"12345 !!!", "vi"},
		{"Đang phát nhạc lofi", "vi"},
	}
	for _, c := range cases {
		if got := DetectLanguage(c.in); got != c.want {
			t.Errorf("DetectLanguage(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
