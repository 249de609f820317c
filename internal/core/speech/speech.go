// Package speech abstracts the speech-to-text engine behind a small interface
// so the rest of the application never touches whisper.cpp directly.
package speech

import "context"

// Result is a completed transcription.
type Result struct {
	Text     string
	Language string
}

// Recognizer transcribes an audio file on disk.
//
// Implementations must be safe for concurrent use; a single instance is shared
// across requests for the lifetime of the loaded model.
type Recognizer interface {
	// Transcribe runs a single-pass transcription of the audio file at path.
	// The detected language is returned as an ISO-639-1 style code.
	Transcribe(ctx context.Context, path string) (*Result, error)

	// Close releases the model and any native resources.
	Close() error
}

// Factory constructs a Recognizer. Construction is expected to be expensive
// (model load); callers own the returned instance.
type Factory func() (Recognizer, error)
