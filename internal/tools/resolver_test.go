package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/verdantlabs/voicerelay/internal/config"
	"github.com/verdantlabs/voicerelay/internal/llm"
	"github.com/verdantlabs/voicerelay/internal/media"
)

func TestResolveStructured(t *testing.T) {
	r := NewResolver(nil)

	inv := r.ResolveStructured(&llm.ToolCall{
		Name:      "play_media",
		Arguments: `{"query":"sơn tùng","max_results":2}`,
	})
	if inv == nil {
		t.Fatal("no invocation for valid tool call")
	}
	if inv.Method != "structured" || inv.Args["query"] != "sơn tùng" {
		t.Errorf("bad invocation: %+v", inv)
	}

	if inv := r.ResolveStructured(&llm.ToolCall{Name: "play_media", Arguments: `{broken`}); inv != nil {
		t.Error("malformed arguments resolved to an invocation")
	}
	if inv := r.ResolveStructured(&llm.ToolCall{Name: "delete_files", Arguments: `{}`}); inv != nil {
		t.Error("unknown tool resolved to an invocation")
	}
	if inv := r.ResolveStructured(nil); inv != nil {
		t.Error("nil call resolved to an invocation")
	}
}

func TestResolveText(t *testing.T) {
	r := NewResolver(nil)

	inv := r.ResolveText(`Được rồi. <tool play_media> {"query": "nhạc trịnh"}`)
	if inv == nil {
		t.Fatal("no invocation for tool tag")
	}
	if inv.Method != "text" || inv.Args["query"] != "nhạc trịnh" {
		t.Errorf("bad invocation: %+v", inv)
	}

	if inv := r.ResolveText("Hôm nay trời đẹp quá."); inv != nil {
		t.Error("plain reply resolved to an invocation")
	}
	if inv := r.ResolveText(`<tool play_media> {oops`); inv != nil {
		t.Error("malformed tag arguments resolved to an invocation")
	}
}

func TestResolveKeyword(t *testing.T) {
	r := NewResolver(nil)

	tests := []struct {
		utterance string
		query     string
	}{
		{"phát nhạc sơn tùng đi", "sơn tùng"},
		{"Play music for studying", "for studying"},
		{"tìm bài hát hoa nở không màu", "hoa nở không màu"},
		{"bật nhạc đi", defaultQuery},
		{"nghe nhạc thôi", defaultQuery},
	}
	for _, tt := range tests {
		inv := r.ResolveKeyword(tt.utterance)
		if inv == nil {
			t.Errorf("ResolveKeyword(%q) = nil", tt.utterance)
			continue
		}
		if inv.Method != "keyword" {
			t.Errorf("ResolveKeyword(%q) method %q", tt.utterance, inv.Method)
		}
		if got := inv.Args["query"]; got != tt.query {
			t.Errorf("ResolveKeyword(%q) query %q, want %q", tt.utterance, got, tt.query)
		}
	}

	if inv := r.ResolveKeyword("hôm nay thứ mấy"); inv != nil {
		t.Errorf("non-music utterance resolved: %+v", inv)
	}
}

func TestExecutePlayMedia(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if got := req.URL.Query().Get("q"); got != "lofi music" {
			t.Errorf("query %q, want default", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"results": []media.Track{{ID: "abc", Title: "Lofi Beats", Channel: "ChillHub", AudioURL: srvTrackURL}},
		})
	}))
	defer srv.Close()

	r := NewResolver(media.NewClient(config.MediaConfig{ServerURL: srv.URL}, nil))
	out, err := r.Execute(context.Background(), &Invocation{
		Tool: "play_media",
		Args: map[string]any{"query": "random"},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out.Track == nil || out.Track.ID != "abc" {
		t.Fatalf("bad track: %+v", out.Track)
	}
	if out.Confirmation != "🎵 Đang phát: Lofi Beats của ChillHub" {
		t.Errorf("confirmation %q", out.Confirmation)
	}
}

const srvTrackURL = "http://media.local/stream/abc"

func TestExecuteNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"results": []media.Track{}})
	}))
	defer srv.Close()

	r := NewResolver(media.NewClient(config.MediaConfig{ServerURL: srv.URL}, nil))
	if _, err := r.Execute(context.Background(), &Invocation{Tool: "play_media", Args: map[string]any{"query": "x"}}); err == nil {
		t.Fatal("expected error for empty result set")
	}
}

func TestExecuteUnknownTool(t *testing.T) {
	r := NewResolver(nil)
	if _, err := r.Execute(context.Background(), &Invocation{Tool: "set_volume"}); err == nil {
		t.Fatal("expected error for unknown tool")
	}
}
