package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/voxgate/voxgate/internal/core"
	"github.com/voxgate/voxgate/internal/core/engine"
	"github.com/voxgate/voxgate/internal/core/store"
	apperrors "github.com/voxgate/voxgate/internal/errors"
	"github.com/voxgate/voxgate/internal/metrics"
	"github.com/voxgate/voxgate/internal/observability"
	"github.com/voxgate/voxgate/internal/server/middleware"
)

// AIHandlers serves the voice transcription API surface.
type AIHandlers struct {
	transcriber *engine.Transcriber
	manager     *engine.Manager
	store       *store.Store // nil when history is disabled
}

// NewAIHandlers creates the AI handler set. The store may be nil.
func NewAIHandlers(transcriber *engine.Transcriber, manager *engine.Manager, st *store.Store) *AIHandlers {
	return &AIHandlers{
		transcriber: transcriber,
		manager:     manager,
		store:       st,
	}
}

// TranscribeRequest is the transcription request payload.
type TranscribeRequest struct {
	AudioData string `json:"audio_data"`
}

// SuccessResponse is the envelope for successful API responses.
type SuccessResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data"`
}

// Transcribe handles POST /api/v1/ai/transcribe.
func (h *AIHandlers) Transcribe(w http.ResponseWriter, r *http.Request) {
	var req TranscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, r, apperrors.NewInvalidInputError("Request body must be valid JSON"))
		return
	}

	start := time.Now()
	result, detectedLang, err := h.transcriber.Transcribe(r.Context(), req.AudioData)
	duration := time.Since(start)

	if err != nil {
		h.recordHistory(r, "", duration, core.TranscriptionFailed, 0)
		metrics.RecordTranscription(string(core.TranscriptionFailed), "", duration)
		respondWithError(w, r, transcribeError(err))
		return
	}

	if detectedLang != result.Language {
		logWarn("Unsupported language detected, defaulting to English",
			zap.String("detected_language", detectedLang),
			zap.String("request_id", middleware.GetRequestID(r.Context())))
	}

	logInfo("Transcription successful",
		zap.String("language", result.Language),
		zap.Duration("duration", duration),
		zap.Int("text_chars", len(result.Text)))

	h.recordHistory(r, result.Language, duration, core.TranscriptionSucceeded, len(result.Text))
	metrics.RecordTranscription(string(core.TranscriptionSucceeded), result.Language, duration)

	writeJSON(w, http.StatusOK, SuccessResponse{
		Status: "success",
		Data:   result,
	})
}

// transcribeError maps pipeline failures onto the API error taxonomy.
func transcribeError(err error) error {
	switch {
	case errors.Is(err, engine.ErrMissingAudio):
		return apperrors.NewInvalidInputError("Missing audio_data field")
	case errors.Is(err, engine.ErrPayloadTooLarge):
		return apperrors.NewPayloadTooLargeError("Audio file too large. Maximum size is 5MB.")
	case errors.Is(err, engine.ErrInvalidEncoding):
		return apperrors.NewInvalidInputError("Invalid base64 audio data")
	case errors.Is(err, engine.ErrConstructionFailed):
		return apperrors.NewServiceUnavailableError("Whisper model not available. Please try again.")
	default:
		return apperrors.NewInternalError("Could not transcribe audio. Please try again.")
	}
}

// recordHistory persists the outcome when a store is configured. Failures are
// logged, never surfaced: history is best-effort.
func (h *AIHandlers) recordHistory(r *http.Request, language string, duration time.Duration, status core.TranscriptionStatus, textChars int) {
	if h.store == nil {
		return
	}

	requestID := middleware.GetRequestID(r.Context())
	if requestID == "" {
		requestID = uuid.New().String()
	}

	record := core.TranscriptionRecord{
		RequestID: requestID,
		Language:  language,
		TextChars: textChars,
		Duration:  duration,
		Status:    status,
	}

	if err := h.store.RecordTranscription(r.Context(), record); err != nil {
		logWarn("Failed to record transcription history",
			zap.Error(err),
			zap.String("request_id", requestID))
	}
}

// Health handles GET /api/v1/ai/health. The model status is advisory: it
// reports whether the model currently resides in memory without constructing
// it, so the probe never triggers a load or reports a construction failure.
func (h *AIHandlers) Health(w http.ResponseWriter, r *http.Request) {
	modelStatus := "not_loaded"
	if h.manager.Status() == engine.StatusReady {
		modelStatus = "loaded"
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":              "success",
		"service":             "Voice Transcription Service",
		"model_status":        modelStatus,
		"supported_languages": len(core.SupportedLanguages()),
	})
}

// Transcriptions handles GET /api/v1/ai/transcriptions.
func (h *AIHandlers) Transcriptions(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		respondWithError(w, r, apperrors.NewNotFoundError("Transcription history is not enabled"))
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			respondWithError(w, r, apperrors.NewInvalidInputError("limit must be an integer between 1 and 500"))
			return
		}
		limit = parsed
	}

	records, err := h.store.RecentTranscriptions(r.Context(), limit)
	if err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "Failed to load transcription history"))
		return
	}

	views := make([]transcriptionView, 0, len(records))
	for _, rec := range records {
		views = append(views, transcriptionView{
			ID:         rec.ID,
			RequestID:  rec.RequestID,
			Language:   rec.Language,
			TextChars:  rec.TextChars,
			DurationMS: rec.Duration.Milliseconds(),
			Status:     string(rec.Status),
			CreatedAt:  rec.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	writeJSON(w, http.StatusOK, SuccessResponse{
		Status: "success",
		Data: map[string]interface{}{
			"transcriptions": views,
			"count":          len(views),
		},
	})
}

// transcriptionView is the wire representation of a history record.
type transcriptionView struct {
	ID         int64  `json:"id"`
	RequestID  string `json:"request_id"`
	Language   string `json:"language"`
	TextChars  int    `json:"text_chars"`
	DurationMS int64  `json:"duration_ms"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func logInfo(msg string, fields ...zap.Field) {
	if observability.ServerLogger != nil {
		observability.ServerLogger.Info(msg, fields...)
	}
}

func logWarn(msg string, fields ...zap.Field) {
	if observability.ServerLogger != nil {
		observability.ServerLogger.Warn(msg, fields...)
	}
}
