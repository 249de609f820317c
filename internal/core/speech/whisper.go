package speech

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	whisper "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
)

// WhisperRecognizer implements Recognizer on top of whisper.cpp.
type WhisperRecognizer struct {
	mu    sync.Mutex
	model whisper.Model
}

// NewWhisper loads a whisper.cpp model from the given file.
func NewWhisper(modelPath string) (*WhisperRecognizer, error) {
	model, err := whisper.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("load whisper model: %w", err)
	}

	return &WhisperRecognizer{model: model}, nil
}

// Transcribe runs a deterministic single-pass transcription: language
// auto-detection, temperature 0, beam size 1, no translation.
func (w *WhisperRecognizer) Transcribe(ctx context.Context, path string) (*Result, error) {
	samples, err := ReadWAV(path)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// whisper.cpp contexts are not safe for concurrent use against the
	// same model, so processing serializes here.
	w.mu.Lock()
	defer w.mu.Unlock()

	wctx, err := w.model.NewContext()
	if err != nil {
		return nil, err
	}

	wctx.SetTranslate(false)
	wctx.SetTemperature(0)
	wctx.SetBeamSize(1)
	if err := wctx.SetLanguage("auto"); err != nil {
		return nil, err
	}

	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return nil, err
	}

	var text strings.Builder
	for {
		segment, err := wctx.NextSegment()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		text.WriteString(segment.Text)
	}

	return &Result{
		Text:     strings.TrimSpace(text.String()),
		Language: wctx.DetectedLanguage(),
	}, nil
}

// Close releases the underlying model.
func (w *WhisperRecognizer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.model == nil {
		return nil
	}
	err := w.model.Close()
	w.model = nil
	return err
}
