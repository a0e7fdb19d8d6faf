package stt

import "context"

// TranscriptionRequest holds one utterance to transcribe. Audio is a
// complete WAV clip held in memory; segments never touch disk.
type TranscriptionRequest struct {
	Audio    []byte
	Filename string // form filename hint, e.g. "utterance.wav"
	Language string // optional BCP-47 hint
	Prompt   string
}

// TranscriptionResponse holds the transcription result.
type TranscriptionResponse struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
}

// Provider is the interface for speech-to-text backends.
type Provider interface {
	Transcribe(ctx context.Context, req TranscriptionRequest) (*TranscriptionResponse, error)
	Name() string
}
