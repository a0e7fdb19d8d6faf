package llm

import (
	"context"
	"errors"
	"testing"
)

type fakeProvider struct {
	name  string
	fail  bool
	calls int
}

func (f *fakeProvider) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	f.calls++
	if f.fail {
		return nil, errors.New("provider unavailable")
	}
	return &ChatResponse{Provider: f.name, Content: "ok from " + f.name}, nil
}

func (f *fakeProvider) ChatCompletionStream(ctx context.Context, req ChatRequest) (<-chan StreamChunk, error) {
	f.calls++
	if f.fail {
		return nil, errors.New("provider unavailable")
	}
	ch := make(chan StreamChunk, 2)
	ch <- StreamChunk{Content: "hello from " + f.name}
	ch <- StreamChunk{Done: true}
	close(ch)
	return ch, nil
}

func (f *fakeProvider) SupportsTools() bool { return false }
func (f *fakeProvider) Name() string        { return f.name }
func (f *fakeProvider) Models() []string    { return nil }

func TestGatewayUsesDefault(t *testing.T) {
	primary := &fakeProvider{name: "openai"}
	fallback := &fakeProvider{name: "anthropic"}
	g := NewGatewayWith("openai", "anthropic", 0, primary, fallback)

	resp, err := g.Chat(context.Background(), ChatRequest{})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if resp.Provider != "openai" {
		t.Errorf("provider %q", resp.Provider)
	}
	if fallback.calls != 0 {
		t.Error("fallback called while primary healthy")
	}
}

func TestGatewayFallsBack(t *testing.T) {
	primary := &fakeProvider{name: "openai", fail: true}
	fallback := &fakeProvider{name: "anthropic"}
	g := NewGatewayWith("openai", "anthropic", 0, primary, fallback)

	resp, err := g.Chat(context.Background(), ChatRequest{})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if resp.Provider != "anthropic" {
		t.Errorf("provider %q, want fallback", resp.Provider)
	}
	if primary.calls != 1 {
		t.Errorf("primary called %d times with 0 retries", primary.calls)
	}
}

func TestGatewayRetriesBeforeFallback(t *testing.T) {
	primary := &fakeProvider{name: "openai", fail: true}
	fallback := &fakeProvider{name: "anthropic", fail: true}
	g := NewGatewayWith("openai", "anthropic", 1, primary, fallback)

	if _, err := g.Chat(context.Background(), ChatRequest{}); err == nil {
		t.Fatal("expected error when both providers fail")
	}
	if primary.calls != 2 {
		t.Errorf("primary called %d times, want 2 (initial + retry)", primary.calls)
	}
	if fallback.calls != 2 {
		t.Errorf("fallback called %d times, want 2", fallback.calls)
	}
}

func TestGatewayExplicitProvider(t *testing.T) {
	primary := &fakeProvider{name: "openai"}
	other := &fakeProvider{name: "ollama"}
	g := NewGatewayWith("openai", "", 0, primary, other)

	resp, err := g.Chat(context.Background(), ChatRequest{Provider: "ollama"})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if resp.Provider != "ollama" {
		t.Errorf("provider %q", resp.Provider)
	}
	if primary.calls != 0 {
		t.Error("default provider called despite explicit selection")
	}
}

func TestGatewayUnknownProvider(t *testing.T) {
	g := NewGatewayWith("openai", "", 0)
	if _, err := g.Chat(context.Background(), ChatRequest{}); err == nil {
		t.Fatal("expected error for unconfigured provider")
	}
}

func TestGatewayStreamFallsBack(t *testing.T) {
	primary := &fakeProvider{name: "openai", fail: true}
	fallback := &fakeProvider{name: "anthropic"}
	g := NewGatewayWith("openai", "anthropic", 0, primary, fallback)

	ch, err := g.ChatStream(context.Background(), ChatRequest{})
	if err != nil {
		t.Fatalf("ChatStream: %v", err)
	}
	var content string
	for chunk := range ch {
		content += chunk.Content
	}
	if content != "hello from anthropic" {
		t.Errorf("streamed %q", content)
	}
}
