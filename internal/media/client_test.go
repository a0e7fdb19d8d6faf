package media

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/verdantlabs/voicerelay/internal/config"
)

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/search" {
			t.Errorf("path %q", req.URL.Path)
		}
		if q := req.URL.Query().Get("q"); q != "nhạc trịnh" {
			t.Errorf("q = %q", q)
		}
		if limit := req.URL.Query().Get("limit"); limit != "3" {
			t.Errorf("limit = %q", limit)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"results": []Track{
				{ID: "t1", Title: "Diễm Xưa", Channel: "Nhạc Trịnh", AudioURL: "http://m/t1", Duration: 312},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(config.MediaConfig{ServerURL: srv.URL}, nil)
	tracks, err := c.Search(context.Background(), "nhạc trịnh", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(tracks) != 1 || tracks[0].Title != "Diễm Xưa" {
		t.Errorf("tracks %+v", tracks)
	}
}

func TestSearchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(config.MediaConfig{ServerURL: srv.URL}, nil)
	if _, err := c.Search(context.Background(), "x", 1); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}

func TestSearchUnconfigured(t *testing.T) {
	c := NewClient(config.MediaConfig{}, nil)
	if _, err := c.Search(context.Background(), "x", 1); err == nil {
		t.Fatal("expected error when no server url is set")
	}
}
