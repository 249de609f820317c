package engine

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/voxgate/voxgate/internal/core"
)

// Pipeline validation errors, distinguished so the HTTP layer can map each to
// its own status code.
var (
	ErrMissingAudio    = errors.New("audio data is required")
	ErrPayloadTooLarge = errors.New("encoded audio exceeds the size ceiling")
	ErrInvalidEncoding = errors.New("audio data is not valid base64")
)

// MaxEncodedBytes is the ceiling on the base64-encoded payload, checked
// before any decode attempt.
const MaxEncodedBytes = 5 * 1024 * 1024

// tinyModelConfidence is the fixed placeholder confidence reported for every
// successful transcription; the backend does not produce a measured score.
const tinyModelConfidence = 0.85

// Transcriber runs the transcription pipeline against the managed recognizer.
type Transcriber struct {
	manager *Manager
	tempDir string
}

// NewTranscriber wires the pipeline to a resource manager. tempDir is where
// scoped audio files are written; empty means the OS default.
func NewTranscriber(manager *Manager, tempDir string) *Transcriber {
	return &Transcriber{manager: manager, tempDir: tempDir}
}

// Transcribe executes the full pipeline for one request: acquire the shared
// recognizer, validate and decode the payload, stage the audio in a scoped
// temporary file, run inference, and shape the result.
//
// The second return value is the raw detected language code before any
// remapping, so callers can log the substitution when it differs from the
// result. The temporary file is removed on every exit path, including panics
// further up the stack, via defer.
func (t *Transcriber) Transcribe(ctx context.Context, encodedAudio string) (*core.TranscriptionResult, string, error) {
	rec, err := t.manager.Acquire(ctx)
	if err != nil {
		return nil, "", err
	}

	if encodedAudio == "" {
		return nil, "", ErrMissingAudio
	}
	if len(encodedAudio) > MaxEncodedBytes {
		return nil, "", fmt.Errorf("%w: %d bytes (max %d)", ErrPayloadTooLarge, len(encodedAudio), MaxEncodedBytes)
	}

	audio, err := base64.StdEncoding.DecodeString(encodedAudio)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}

	tmp, err := os.CreateTemp(t.tempDir, "voxgate-audio-*.wav")
	if err != nil {
		return nil, "", fmt.Errorf("stage audio: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // nolint:errcheck // scoped cleanup on every path

	if _, err := tmp.Write(audio); err != nil {
		_ = tmp.Close()
		return nil, "", fmt.Errorf("stage audio: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, "", fmt.Errorf("stage audio: %w", err)
	}

	result, err := rec.Transcribe(ctx, tmpPath)
	if err != nil {
		return nil, "", fmt.Errorf("transcribe audio: %w", err)
	}

	language := result.Language
	if !core.IsSupportedLanguage(language) {
		language = core.DefaultLanguage
	}

	return &core.TranscriptionResult{
		Text:         strings.TrimSpace(result.Text),
		Language:     language,
		LanguageName: core.LanguageName(language),
		Confidence:   tinyModelConfidence,
	}, result.Language, nil
}
