package session

import (
	"time"

	"github.com/verdantlabs/voicerelay/internal/media"
	"github.com/verdantlabs/voicerelay/internal/tools"
)

// Inbound is the envelope for every client message; Type selects the
// handler and the other fields are populated per type.
type Inbound struct {
	Type            string `json:"type"`
	DeviceID        string `json:"deviceId,omitempty"`
	DeviceType      string `json:"deviceType,omitempty"`
	FirmwareVersion string `json:"firmwareVersion,omitempty"`
	Text            string `json:"text,omitempty"`
	AudioBase64     string `json:"audioBase64,omitempty"`
	Format          string `json:"format,omitempty"`
	Language        string `json:"language,omitempty"`
}

type Registered struct {
	Type     string `json:"type"`
	DeviceID string `json:"deviceId"`
}

func NewRegistered(deviceID string) Registered {
	return Registered{Type: "registered", DeviceID: deviceID}
}

type Transcription struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func NewTranscription(text string) Transcription {
	return Transcription{Type: "transcription", Text: text}
}

// TextPreview is the first non-empty reply segment, sent once per turn
// so the device can display text before any audio arrives.
type TextPreview struct {
	Type     string `json:"type"`
	Text     string `json:"text"`
	Language string `json:"language"`
}

func NewTextPreview(text, language string) TextPreview {
	return TextPreview{Type: "text", Text: text, Language: language}
}

type PlayMedia struct {
	Type     string  `json:"type"`
	Title    string  `json:"title"`
	Artist   string  `json:"artist"`
	AudioURL string  `json:"audioUrl"`
	Duration float64 `json:"duration"`
	MediaID  string  `json:"mediaId"`
}

func NewPlayMedia(t *media.Track) PlayMedia {
	return PlayMedia{
		Type:     "play_media",
		Title:    t.Title,
		Artist:   t.Channel,
		AudioURL: t.AudioURL,
		Duration: t.Duration,
		MediaID:  t.ID,
	}
}

type AudioChunk struct {
	Type        string `json:"type"`
	AudioBase64 string `json:"audioBase64"`
	Format      string `json:"format"`
	ChunkIndex  int    `json:"chunkIndex"`
	IsFinal     bool   `json:"isFinal"`
	Language    string `json:"language"`
	TTSProvider string `json:"ttsProvider"`
}

func NewAudioChunk(audioBase64 string, chunkIndex int, isFinal bool, language, provider string) AudioChunk {
	return AudioChunk{
		Type:        "audio_chunk",
		AudioBase64: audioBase64,
		Format:      "wav",
		ChunkIndex:  chunkIndex,
		IsFinal:     isFinal,
		Language:    language,
		TTSProvider: provider,
	}
}

type Complete struct {
	Type        string `json:"type"`
	FullText    string `json:"fullText"`
	TotalChunks int    `json:"totalChunks"`
}

func NewComplete(fullText string, totalChunks int) Complete {
	return Complete{Type: "chat_response_complete", FullText: fullText, TotalChunks: totalChunks}
}

type CommandEvent struct {
	Type    string `json:"type"`
	Command string `json:"command"`
	Action  string `json:"action"`
	Value   any    `json:"value"`
}

func NewCommandEvent(cmd *tools.Command) CommandEvent {
	return CommandEvent{Type: "command", Command: cmd.Name, Action: cmd.Action, Value: cmd.Value}
}

type CommandResponse struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func NewCommandResponse(text string) CommandResponse {
	return CommandResponse{Type: "command_response", Text: text}
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewError(message string) ErrorMessage {
	return ErrorMessage{Type: "error", Message: message}
}

type Pong struct {
	Type string `json:"type"`
}

func NewPong() Pong { return Pong{Type: "pong"} }

// Ping is the server-side keep-alive sent when a device has been quiet
// longer than the read timeout.
type Ping struct {
	Type string `json:"type"`
}

func NewPing() Ping { return Ping{Type: "ping"} }

type HistoryCleared struct {
	Type string `json:"type"`
}

func NewHistoryCleared() HistoryCleared { return HistoryCleared{Type: "history_cleared"} }

type DeviceInfo struct {
	DeviceID        string    `json:"deviceId"`
	DeviceType      string    `json:"deviceType"`
	FirmwareVersion string    `json:"firmwareVersion"`
	LastActivity    time.Time `json:"lastActivity"`
}

type Devices struct {
	Type    string       `json:"type"`
	Devices []DeviceInfo `json:"devices"`
}

func NewDevices(devices []DeviceInfo) Devices {
	return Devices{Type: "devices", Devices: devices}
}
