// Package core holds the shared domain types for VoxGate.
package core

import "time"

// TranscriptionResult is the caller-facing outcome of a transcription.
type TranscriptionResult struct {
	Text         string  `json:"transcribed_text"`
	Language     string  `json:"detected_language"`
	LanguageName string  `json:"language_name"`
	Confidence   float64 `json:"confidence"`
}

// TranscriptionStatus classifies a recorded transcription attempt.
type TranscriptionStatus string

const (
	TranscriptionSucceeded TranscriptionStatus = "success"
	TranscriptionFailed    TranscriptionStatus = "failed"
)

// TranscriptionRecord is a history entry for a completed transcription attempt.
// Only metadata is stored; the audio itself is never persisted.
type TranscriptionRecord struct {
	ID        int64
	RequestID string
	Language  string
	TextChars int
	Duration  time.Duration
	Status    TranscriptionStatus
	CreatedAt time.Time
}
