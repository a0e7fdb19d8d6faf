package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/verdantlabs/voicerelay/internal/llm"
	"github.com/verdantlabs/voicerelay/internal/media"
)

const defaultQuery = "lofi music"

// Invocation is a resolved tool intent, before execution.
type Invocation struct {
	Tool   string
	Args   map[string]any
	Method string // "structured", "text" or "keyword"
}

// Outcome is the side effect of an executed invocation: a speakable
// confirmation plus the media payload for the transport.
type Outcome struct {
	Confirmation string
	Track        *media.Track
}

// Resolver detects embedded tool intents across three tiers. Structured
// output from a function-calling provider is tier one; a tool tag in
// free text is tier two; keyword patterns over the raw utterance are
// the last resort for providers without function calling.
type Resolver struct {
	media *media.Client
}

func NewResolver(m *media.Client) *Resolver {
	return &Resolver{media: m}
}

// Schemas lists the tool definitions offered to function-calling providers.
func (r *Resolver) Schemas() []llm.ToolSchema {
	return []llm.ToolSchema{
		{
			Name:        "play_media",
			Description: "Tìm và phát nhạc theo yêu cầu. Dùng khi người dùng nói 'phát nhạc ...', 'play ...', 'tìm bài hát ...'.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "Tên bài hát, ca sĩ hoặc từ khóa tìm kiếm",
					},
					"max_results": map[string]any{
						"type":    "integer",
						"default": 1,
					},
				},
				"required": []string{"query"},
			},
		},
	}
}

// ResolveStructured maps a provider-native function call to an
// invocation. Malformed argument JSON means no match.
func (r *Resolver) ResolveStructured(call *llm.ToolCall) *Invocation {
	if call == nil || call.Name != "play_media" {
		return nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
		slog.Warn("tool call has malformed arguments", "tool", call.Name, "error", err)
		return nil
	}
	return &Invocation{Tool: call.Name, Args: args, Method: "structured"}
}

var reTextTool = regexp.MustCompile(`<tool\s+(\w+)>\s*(\{.*\})`)

// ResolveText scans model output for a `<tool name> {json}` tag.
func (r *Resolver) ResolveText(output string) *Invocation {
	m := reTextTool.FindStringSubmatch(output)
	if m == nil || m[1] != "play_media" {
		return nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(m[2]), &args); err != nil {
		slog.Warn("text tool tag has malformed arguments", "tool", m[1], "error", err)
		return nil
	}
	return &Invocation{Tool: m[1], Args: args, Method: "text"}
}

var (
	musicKeywords = []string{"phát nhạc", "play music", "bài hát", "song", "nhạc"}

	reMusicQuery = []*regexp.Regexp{
		regexp.MustCompile(`(?:phát|play|mở|bật)\s+(?:nhạc|bài|music|song)?\s*(.+)`),
		regexp.MustCompile(`(?:tìm|search)\s+(?:bài\s+)?(?:hát|nhạc)\s+(.+)`),
	}
	reQueryTail = regexp.MustCompile(`\s*(đi|nào|nhé|đê|cho tôi|cho em)$`)
)

// ResolveKeyword matches music intent directly on the user utterance.
// When no usable query can be extracted the default one is used.
func (r *Resolver) ResolveKeyword(utterance string) *Invocation {
	lower := strings.ToLower(utterance)

	matched := false
	for _, kw := range musicKeywords {
		if strings.Contains(lower, kw) {
			matched = true
			break
		}
	}
	if !matched {
		return nil
	}

	query := defaultQuery
	for _, re := range reMusicQuery {
		if m := re.FindStringSubmatch(lower); m != nil {
			q := strings.TrimSpace(reQueryTail.ReplaceAllString(strings.TrimSpace(m[1]), ""))
			if len([]rune(q)) > 2 {
				query = q
				break
			}
		}
	}

	return &Invocation{
		Tool:   "play_media",
		Args:   map[string]any{"query": query},
		Method: "keyword",
	}
}

// Execute performs the resolved side effect. A failure here falls
// through to the normal reply path at the caller.
func (r *Resolver) Execute(ctx context.Context, inv *Invocation) (*Outcome, error) {
	if inv.Tool != "play_media" {
		return nil, fmt.Errorf("unknown tool %q", inv.Tool)
	}
	if r.media == nil {
		return nil, fmt.Errorf("media client not configured")
	}

	query, _ := inv.Args["query"].(string)
	if query == "" || query == "random" {
		query = defaultQuery
	}
	maxResults := 1
	if n, ok := inv.Args["max_results"].(float64); ok && n > 0 {
		maxResults = int(n)
	}

	tracks, err := r.media.Search(ctx, query, maxResults)
	if err != nil {
		return nil, fmt.Errorf("media search: %w", err)
	}
	if len(tracks) == 0 {
		return nil, fmt.Errorf("no results for %q", query)
	}

	track := tracks[0]
	return &Outcome{
		Confirmation: fmt.Sprintf("🎵 Đang phát: %s của %s", track.Title, track.Channel),
		Track:        &track,
	}, nil
}
