package session

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verdantlabs/voicerelay/internal/audio"
	"github.com/verdantlabs/voicerelay/internal/batch"
	"github.com/verdantlabs/voicerelay/internal/config"
	"github.com/verdantlabs/voicerelay/internal/llm"
	"github.com/verdantlabs/voicerelay/internal/queue"
	"github.com/verdantlabs/voicerelay/internal/stt"
	"github.com/verdantlabs/voicerelay/internal/text"
	"github.com/verdantlabs/voicerelay/internal/tools"
)

// State is a connection's position in its lifecycle.
type State string

const (
	StateConnecting State = "connecting"
	StateIdle       State = "idle"
	StateActiveTurn State = "active_turn"
	StateClosed     State = "closed"
)

// Transcriber converts one finished utterance clip to text.
type Transcriber interface {
	Transcribe(ctx context.Context, req stt.TranscriptionRequest) (*stt.TranscriptionResponse, error)
}

// IntentResolver is the tool side-channel: three resolution tiers plus
// execution of the resolved invocation.
type IntentResolver interface {
	Schemas() []llm.ToolSchema
	ResolveStructured(call *llm.ToolCall) *tools.Invocation
	ResolveText(output string) *tools.Invocation
	ResolveKeyword(utterance string) *tools.Invocation
	Execute(ctx context.Context, inv *tools.Invocation) (*tools.Outcome, error)
}

// Synthesizer renders one batch into a transport-ready clip.
type Synthesizer interface {
	Synthesize(ctx context.Context, b *batch.Batch) (*batch.Clip, error)
}

// History is the per-device rolling conversation store.
type History interface {
	Append(deviceID, role, content string)
	Messages(deviceID string) []llm.Message
	ClearDevice(deviceID string)
}

// TurnLogger persists finished exchanges off the turn path.
type TurnLogger interface {
	EnqueueConversationLog(payload queue.ConversationLogPayload) error
}

// Router drives one connection's protocol state machine. One Router is
// shared across connections; all per-connection state lives in connState.
type Router struct {
	registry    *Registry
	history     History
	gateway     llm.Gateway
	transcriber Transcriber
	resolver    IntentResolver
	synth       Synthesizer
	logs        TurnLogger // optional

	sessionCfg config.SessionConfig
	llmCfg     config.LLMConfig
	audioCfg   config.AudioConfig

	handlers map[string]func(*connState, Inbound)
}

func NewRouter(
	registry *Registry,
	history History,
	gateway llm.Gateway,
	transcriber Transcriber,
	resolver IntentResolver,
	synth Synthesizer,
	logs TurnLogger,
	sessionCfg config.SessionConfig,
	llmCfg config.LLMConfig,
	audioCfg config.AudioConfig,
) *Router {
	r := &Router{
		registry:    registry,
		history:     history,
		gateway:     gateway,
		transcriber: transcriber,
		resolver:    resolver,
		synth:       synth,
		logs:        logs,
		sessionCfg:  sessionCfg,
		llmCfg:      llmCfg,
		audioCfg:    audioCfg,
	}
	r.handlers = map[string]func(*connState, Inbound){
		"register":      r.handleRegister,
		"text":          r.handleText,
		"chat":          r.handleText,
		"voice":         r.handleVoice,
		"command":       r.handleCommand,
		"ping":          r.handlePing,
		"get_devices":   r.handleGetDevices,
		"clear_history": r.handleClearHistory,
	}
	return r
}

// connState is everything one connection owns. Mutated only by the
// single goroutine running HandleConn, so no locking.
type connState struct {
	connID    string
	conn      Conn
	sess      *Session
	state     State
	segmenter *audio.Segmenter
	carry     []int16 // partial VAD frame between voice messages
	langHint  string
	dead      bool // set on first failed send; suppresses the rest
}

// HandleConn runs the connection until the peer goes away or ctx ends.
// It is the single reader and writer for the connection.
func (r *Router) HandleConn(ctx context.Context, conn Conn) {
	cs := &connState{
		connID: uuid.NewString(),
		conn:   conn,
		state:  StateConnecting,
		segmenter: audio.NewSegmenter(audio.SegmenterConfig{
			FrameSize:       r.audioCfg.FrameSize,
			EnergyThreshold: r.audioCfg.EnergyThreshold,
			SilenceFrames:   r.audioCfg.SilenceFrames,
			MaxBufferFrames: r.audioCfg.MaxBufferFrames,
		}),
	}
	defer r.teardown(cs)

	msgs := make(chan Inbound)
	readErr := make(chan error, 1)
	go func() {
		for {
			var in Inbound
			if err := conn.ReadJSON(&in); err != nil {
				readErr <- err
				return
			}
			select {
			case msgs <- in:
			case <-ctx.Done():
				return
			}
		}
	}()

	keepalive := time.Duration(r.sessionCfg.ReadTimeoutSecs) * time.Second
	if keepalive <= 0 {
		keepalive = 300 * time.Second
	}
	timer := time.NewTimer(keepalive)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case err := <-readErr:
			slog.Debug("connection closed", "conn_id", cs.connID, "device_id", cs.deviceID(), "error", err)
			return
		case in := <-msgs:
			r.dispatch(cs, in)
			if cs.dead {
				return
			}
		case <-timer.C:
			// Quiet peer: keep the connection alive rather than closing.
			if cs.state != StateConnecting {
				r.send(cs, NewPing())
			}
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(keepalive)
	}
}

func (r *Router) dispatch(cs *connState, in Inbound) {
	handler, ok := r.handlers[in.Type]
	if !ok {
		r.send(cs, NewError(fmt.Sprintf("unknown message type %q", in.Type)))
		return
	}
	if cs.sess != nil {
		cs.sess.Touch()
	}
	handler(cs, in)
}

func (cs *connState) deviceID() string {
	if cs.sess == nil {
		return ""
	}
	return cs.sess.DeviceID
}

func (r *Router) teardown(cs *connState) {
	cs.state = StateClosed
	if cs.sess != nil {
		r.registry.Remove(cs.sess.DeviceID, cs.conn)
	}
	_ = cs.conn.Close()
}

// send writes one outbound message. The first failure marks the
// connection dead and later sends become no-ops, so a disconnect
// mid-turn stops the remaining work without cascading.
func (r *Router) send(cs *connState, v any) {
	if cs.dead {
		return
	}
	if err := cs.conn.WriteJSON(v); err != nil {
		slog.Warn("send failed, dropping connection", "device_id", cs.deviceID(), "error", err)
		cs.dead = true
	}
}

func (r *Router) handleRegister(cs *connState, in Inbound) {
	if in.DeviceID == "" {
		r.send(cs, NewError("register requires deviceId"))
		return
	}
	cs.sess = r.registry.Register(in.DeviceID, in.DeviceType, in.FirmwareVersion, cs.conn)
	cs.state = StateIdle
	slog.Info("device registered",
		"conn_id", cs.connID,
		"device_id", in.DeviceID,
		"device_type", in.DeviceType,
		"firmware", in.FirmwareVersion,
	)
	r.send(cs, NewRegistered(in.DeviceID))
}

func (r *Router) requireRegistered(cs *connState) bool {
	if cs.state == StateConnecting || cs.sess == nil {
		r.send(cs, NewError("not registered"))
		return false
	}
	return true
}

func (r *Router) handleText(cs *connState, in Inbound) {
	if !r.requireRegistered(cs) {
		return
	}
	utterance := strings.TrimSpace(in.Text)
	if utterance == "" {
		r.send(cs, NewError("empty text"))
		return
	}
	if r.shortCircuitCommand(cs, utterance) {
		return
	}
	r.runTurn(cs, utterance, "text")
}

func (r *Router) handleCommand(cs *connState, in Inbound) {
	if !r.requireRegistered(cs) {
		return
	}
	if !r.shortCircuitCommand(cs, in.Text) {
		r.send(cs, NewError("no command recognized"))
	}
}

// shortCircuitCommand handles device-control utterances without a turn.
func (r *Router) shortCircuitCommand(cs *connState, utterance string) bool {
	cmd := tools.DetectCommand(utterance)
	if cmd == nil {
		return false
	}
	slog.Info("command detected",
		"device_id", cs.deviceID(),
		"command", cmd.Name,
		"action", cmd.Action,
	)
	r.send(cs, NewCommandEvent(cmd))
	r.send(cs, NewCommandResponse(commandConfirmation(cmd)))

	// A stop is also the conversation-level signal to force-finalize
	// any audio still buffered in the segmenter.
	if cmd.Action == "stop_speaking" {
		if samples, ok := cs.segmenter.Flush(); ok {
			r.processUtteranceAudio(cs, samples)
		}
	}
	return true
}

func commandConfirmation(cmd *tools.Command) string {
	switch cmd.Name {
	case "volume_up":
		return "Đã tăng âm lượng"
	case "volume_down":
		return "Đã giảm âm lượng"
	case "light_on":
		return "Đã bật đèn"
	case "light_off":
		return "Đã tắt đèn"
	case "fan_on":
		return "Đã bật quạt"
	case "fan_off":
		return "Đã tắt quạt"
	case "stop":
		return "Đã dừng"
	case "continue":
		return "Tiếp tục"
	default:
		return "Đã thực hiện"
	}
}

func (r *Router) handlePing(cs *connState, _ Inbound) {
	r.send(cs, NewPong())
}

func (r *Router) handleGetDevices(cs *connState, _ Inbound) {
	if !r.requireRegistered(cs) {
		return
	}
	r.send(cs, NewDevices(r.registry.Snapshot()))
}

func (r *Router) handleClearHistory(cs *connState, _ Inbound) {
	if !r.requireRegistered(cs) {
		return
	}
	r.history.ClearDevice(cs.sess.DeviceID)
	r.send(cs, NewHistoryCleared())
}

func (r *Router) handleVoice(cs *connState, in Inbound) {
	if !r.requireRegistered(cs) {
		return
	}
	data, err := base64.StdEncoding.DecodeString(in.AudioBase64)
	if err != nil {
		r.send(cs, NewError("invalid audio payload"))
		return
	}
	if in.Language != "" {
		cs.langHint = in.Language
	}

	switch in.Format {
	case "wav":
		// A complete clip: no segmentation needed.
		wav, err := audio.NormalizeWAV(data)
		if err != nil {
			r.send(cs, NewError("malformed wav payload"))
			return
		}
		r.transcribeAndRun(cs, wav)
	case "opus":
		samples, err := audio.DecodeOpus(data)
		if err != nil {
			slog.Warn("dropping undecodable opus packet", "device_id", cs.deviceID(), "error", err)
			return
		}
		r.ingestSamples(cs, samples)
	case "pcm", "":
		r.ingestSamples(cs, audio.BytesToInt16(data))
	default:
		r.send(cs, NewError(fmt.Sprintf("unsupported audio format %q", in.Format)))
	}
}

// ingestSamples feeds streamed samples through the VAD in exact frames,
// carrying any partial frame over to the next message.
func (r *Router) ingestSamples(cs *connState, samples []int16) {
	frameSize := r.audioCfg.FrameSize
	if frameSize <= 0 {
		frameSize = 512
	}

	buf := append(cs.carry, samples...)
	for len(buf) >= frameSize {
		if utterance, ok := cs.segmenter.Ingest(buf[:frameSize]); ok {
			r.processUtteranceAudio(cs, utterance)
			if cs.dead {
				return
			}
		}
		buf = buf[frameSize:]
	}
	cs.carry = append(cs.carry[:0], buf...)
}

func (r *Router) processUtteranceAudio(cs *connState, samples []int16) {
	wav := audio.PCMToWAV(audio.Int16ToBytes(samples), audio.TargetSampleRate)
	r.transcribeAndRun(cs, wav)
}

func (r *Router) transcribeAndRun(cs *connState, wav []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	resp, err := r.transcriber.Transcribe(ctx, stt.TranscriptionRequest{
		Audio:    wav,
		Filename: "utterance.wav",
		Language: cs.langHint,
	})
	if err != nil {
		// No utterance; not fatal to the session.
		slog.Warn("transcription failed", "device_id", cs.deviceID(), "error", err)
		return
	}
	utterance := strings.TrimSpace(resp.Text)
	if utterance == "" {
		return
	}

	r.send(cs, NewTranscription(utterance))
	if cs.dead {
		return
	}
	if r.shortCircuitCommand(cs, utterance) {
		return
	}
	r.runTurn(cs, utterance, "voice")
}

// turnState tracks per-turn emission bookkeeping.
type turnState struct {
	previewSent bool
	totalChunks int
	language    string
	toolName    string
}

// runTurn drives one utterance to exactly one completion-or-error
// message. Whatever happens inside, the session returns to idle.
func (r *Router) runTurn(cs *connState, utterance, inputMethod string) {
	cs.state = StateActiveTurn
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			slog.Error("panic during turn", "device_id", cs.deviceID(), "panic", p)
			r.send(cs, NewError("internal error"))
		}
		cs.state = StateIdle
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	turn := &turnState{}
	fullText, err := r.driveTurn(ctx, cs, turn, utterance)
	if err != nil {
		slog.Error("turn failed", "device_id", cs.deviceID(), "error", err)
		r.send(cs, NewError(err.Error()))
		return
	}

	r.send(cs, NewComplete(fullText, turn.totalChunks))

	r.history.Append(cs.sess.DeviceID, "user", utterance)
	if fullText != "" {
		r.history.Append(cs.sess.DeviceID, "assistant", fullText)
	}

	if r.logs != nil {
		payload := queue.ConversationLogPayload{
			DeviceID:     cs.sess.DeviceID,
			UserText:     utterance,
			ReplyText:    fullText,
			Language:     turn.language,
			Provider:     r.llmCfg.DefaultProvider,
			InputMethod:  inputMethod,
			ToolName:     turn.toolName,
			DurationMs:   time.Since(start).Milliseconds(),
			TotalBatches: turn.totalChunks,
			OccurredAt:   time.Now().Unix(),
		}
		if err := r.logs.EnqueueConversationLog(payload); err != nil {
			slog.Warn("conversation log enqueue failed", "device_id", cs.deviceID(), "error", err)
		}
	}

	slog.Info("turn complete",
		"device_id", cs.deviceID(),
		"input_method", inputMethod,
		"chunks", turn.totalChunks,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// driveTurn resolves the tool side-channel, then streams or replays the
// reply through the chunker/batcher pipeline. Returns the full reply text.
func (r *Router) driveTurn(ctx context.Context, cs *connState, turn *turnState, utterance string) (string, error) {
	messages := append([]llm.Message{
		{Role: "system", Content: r.llmCfg.SystemPrompt},
	}, r.history.Messages(cs.sess.DeviceID)...)
	messages = append(messages, llm.Message{Role: "user", Content: utterance})

	req := llm.ChatRequest{
		Model:       r.llmCfg.DefaultModel,
		Messages:    messages,
		Temperature: r.llmCfg.Temperature,
		MaxTokens:   r.llmCfg.MaxTokens,
	}

	chunker := text.NewChunker(r.sessionCfg.MaxChunkChars)
	batcher := batch.NewBatcher(r.sessionCfg.BatchSize, r.sessionCfg.MinBatchChars)

	provider := r.gateway.Default()
	supportsTools := provider != nil && provider.SupportsTools()

	if supportsTools {
		toolReq := req
		toolReq.Tools = r.resolver.Schemas()
		resp, err := r.gateway.Chat(ctx, toolReq)
		if err != nil {
			return "", fmt.Errorf("reasoning provider: %w", err)
		}

		inv := r.resolver.ResolveStructured(resp.ToolCall)
		if inv == nil {
			inv = r.resolver.ResolveText(resp.Content)
		}
		if inv != nil {
			if reply, ok := r.executeTool(ctx, cs, turn, inv); ok {
				r.emitReply(ctx, cs, turn, chunker, batcher, reply)
				return reply, nil
			}
			// Tool failed: fall through to the normal reply path.
		}
		if resp.Content != "" {
			r.emitReply(ctx, cs, turn, chunker, batcher, resp.Content)
			return resp.Content, nil
		}
		// Tool-only response with nothing usable: fall back to streaming.
	} else {
		if inv := r.resolver.ResolveKeyword(utterance); inv != nil {
			if reply, ok := r.executeTool(ctx, cs, turn, inv); ok {
				r.emitReply(ctx, cs, turn, chunker, batcher, reply)
				return reply, nil
			}
		}
	}

	stream, err := r.gateway.ChatStream(ctx, req)
	if err != nil {
		return "", fmt.Errorf("reasoning provider: %w", err)
	}

	var full strings.Builder
	for chunk := range stream {
		if chunk.Error != nil {
			// Partial reply still terminates the turn correctly.
			slog.Warn("stream interrupted", "device_id", cs.deviceID(), "error", chunk.Error)
			break
		}
		if chunk.Content != "" {
			full.WriteString(chunk.Content)
			r.emitSegments(ctx, cs, turn, batcher, chunker.Feed(chunk.Content))
		}
		if chunk.Done {
			break
		}
		if cs.dead {
			go func() {
				for range stream {
				}
			}()
			return full.String(), nil
		}
	}
	r.emitSegments(ctx, cs, turn, batcher, chunker.Finish())

	if full.Len() == 0 && turn.toolName == "" {
		return "", fmt.Errorf("empty reply from reasoning provider")
	}
	return full.String(), nil
}

// executeTool runs a resolved invocation; on success it emits the
// play_media event and returns the confirmation reply.
func (r *Router) executeTool(ctx context.Context, cs *connState, turn *turnState, inv *tools.Invocation) (string, bool) {
	outcome, err := r.resolver.Execute(ctx, inv)
	if err != nil {
		slog.Warn("tool invocation failed",
			"device_id", cs.deviceID(),
			"tool", inv.Tool,
			"method", inv.Method,
			"error", err,
		)
		return "", false
	}
	turn.toolName = inv.Tool
	r.send(cs, NewPlayMedia(outcome.Track))
	return outcome.Confirmation, true
}

// emitReply pushes a complete (non-streamed) reply through the pipeline.
func (r *Router) emitReply(ctx context.Context, cs *connState, turn *turnState, chunker *text.Chunker, batcher *batch.Batcher, reply string) {
	r.emitSegments(ctx, cs, turn, batcher, chunker.Feed(reply))
	r.emitSegments(ctx, cs, turn, batcher, chunker.Finish())
}

// emitSegments sends the preview on the first non-empty segment and
// converts due batches into ordered audio chunks.
func (r *Router) emitSegments(ctx context.Context, cs *connState, turn *turnState, batcher *batch.Batcher, segs []text.Segment) {
	for _, seg := range segs {
		if cs.dead {
			return
		}
		if !turn.previewSent && seg.Cleaned != "" {
			turn.previewSent = true
			turn.language = seg.Language
			r.send(cs, NewTextPreview(seg.Cleaned, seg.Language))
		}

		b := batcher.Add(seg)
		if b == nil {
			continue
		}
		clip, err := r.synth.Synthesize(ctx, b)
		if err != nil {
			// Batch-level failure: skip the audio, keep the turn going.
			slog.Warn("batch synthesis failed",
				"device_id", cs.deviceID(),
				"seq", b.Seq,
				"error", err,
			)
			continue
		}
		if len(clip.Audio) == 0 {
			continue
		}
		turn.totalChunks++
		if turn.language == "" {
			turn.language = clip.Language
		}
		r.send(cs, NewAudioChunk(
			base64.StdEncoding.EncodeToString(clip.Audio),
			clip.Seq,
			clip.Final,
			clip.Language,
			clip.Provider,
		))
	}
}
