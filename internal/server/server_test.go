package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/voxgate/voxgate/internal/config"
	"github.com/voxgate/voxgate/internal/core/engine"
	"github.com/voxgate/voxgate/internal/core/speech"
	apperrors "github.com/voxgate/voxgate/internal/errors"
)

type fixedRecognizer struct {
	text     string
	language string
}

func (r *fixedRecognizer) Transcribe(ctx context.Context, path string) (*speech.Result, error) {
	return &speech.Result{Text: r.text, Language: r.language}, nil
}

func (r *fixedRecognizer) Close() error { return nil }

func newTestServer(t *testing.T, transcribeMax int) *Server {
	t.Helper()

	factory := func() (speech.Recognizer, error) {
		return &fixedRecognizer{text: "hello world", language: "hi"}, nil
	}

	manager := engine.NewManager(factory, engine.ManagerConfig{})
	t.Cleanup(manager.Stop)

	deps := Dependencies{
		Manager:     manager,
		Transcriber: engine.NewTranscriber(manager, t.TempDir()),
		TranscribeLimiter: engine.NewLimiter(engine.LimiterConfig{
			MaxRequests: transcribeMax,
			Window:      time.Hour,
		}),
		EchoLimiter: engine.NewLimiter(engine.LimiterConfig{
			MaxRequests: 50,
			Window:      time.Hour,
		}),
		ProcessLimiter: engine.NewLimiter(engine.LimiterConfig{
			MaxRequests: 30,
			Window:      time.Hour,
		}),
	}

	return New(config.ServerConfig{Host: "127.0.0.1"}, deps)
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.RemoteAddr = "10.1.2.3:40000"
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServerUsesStandardErrorHandlers(t *testing.T) {
	srv := newTestServer(t, 20)

	rec := doJSON(t, srv, http.MethodGet, "/does-not-exist", "")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}

	var body apperrors.HTTPErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}

	if body.Error.Code != "NOT_FOUND" {
		t.Fatalf("expected error code NOT_FOUND, got %s", body.Error.Code)
	}
}

func TestTranscribeEndToEnd(t *testing.T) {
	srv := newTestServer(t, 20)

	audio := base64.StdEncoding.EncodeToString([]byte("fake-wav-bytes"))
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/ai/transcribe",
		`{"audio_data":"`+audio+`"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Status string `json:"status"`
		Data   struct {
			Text       string  `json:"transcribed_text"`
			Language   string  `json:"detected_language"`
			Name       string  `json:"language_name"`
			Confidence float64 `json:"confidence"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "success", body.Status)
	require.Equal(t, "hello world", body.Data.Text)
	require.Equal(t, "hi", body.Data.Language)
	require.Equal(t, "Hindi", body.Data.Name)
	require.InDelta(t, 0.85, body.Data.Confidence, 1e-9)
}

func TestTranscribeRateLimitReturns429(t *testing.T) {
	srv := newTestServer(t, 1)

	audio := base64.StdEncoding.EncodeToString([]byte("fake-wav-bytes"))
	payload := `{"audio_data":"` + audio + `"}`

	first := doJSON(t, srv, http.MethodPost, "/api/v1/ai/transcribe", payload)
	require.Equal(t, http.StatusOK, first.Code)

	second := doJSON(t, srv, http.MethodPost, "/api/v1/ai/transcribe", payload)
	require.Equal(t, http.StatusTooManyRequests, second.Code)

	var body apperrors.HTTPErrorResponse
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &body))
	require.Equal(t, "RATE_LIMITED", body.Error.Code)
}

func TestTranscribeMissingAudioReturns400(t *testing.T) {
	srv := newTestServer(t, 20)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/ai/transcribe", `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body apperrors.HTTPErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "INVALID_INPUT", body.Error.Code)
}

func TestSupportedLanguagesEndpoint(t *testing.T) {
	srv := newTestServer(t, 20)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/ai/supported-languages", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status string `json:"status"`
		Data   struct {
			Languages  map[string]string `json:"languages"`
			TotalCount int               `json:"total_count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "success", body.Status)
	require.Equal(t, 13, body.Data.TotalCount)
	require.Equal(t, "English", body.Data.Languages["en"])
	require.Equal(t, "Hindi", body.Data.Languages["hi"])
}

func TestAIHealthReportsModelStatusWithoutLoading(t *testing.T) {
	srv := newTestServer(t, 20)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/ai/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "not_loaded", body["model_status"])

	// The probe must not have constructed the model.
	require.Equal(t, engine.StatusAbsent, srv.deps.Manager.Status())
}

func TestEchoEndpoint(t *testing.T) {
	srv := newTestServer(t, 20)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/echo", `{"message":"hello there"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "success", body["status"])
	require.Equal(t, "hello there", body["echo"])
	require.Equal(t, float64(11), body["character_count"])
	require.Equal(t, float64(2), body["word_count"])
}

func TestEchoMissingMessageReturns400(t *testing.T) {
	srv := newTestServer(t, 20)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/echo", `{"other":"x"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body apperrors.HTTPErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "VALIDATION_FAILED", body.Error.Code)
}

func TestServerHonorsConfiguredTimeouts(t *testing.T) {
	srv := New(config.ServerConfig{
		Host:         "127.0.0.1",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  time.Minute,
	}, Dependencies{})

	read, write, idle := srv.timeouts()
	require.Equal(t, 5*time.Second, read)
	require.Equal(t, 10*time.Second, write)
	require.Equal(t, time.Minute, idle)

	// Unset values fall back to the package defaults.
	srv = New(config.ServerConfig{Host: "127.0.0.1"}, Dependencies{})
	read, write, idle = srv.timeouts()
	require.Equal(t, 30*time.Second, read)
	require.Equal(t, 30*time.Second, write)
	require.Equal(t, 120*time.Second, idle)
}

func TestProcessEndpoint(t *testing.T) {
	srv := newTestServer(t, 20)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/process",
		`{"data":[1,2,3],"operation":"sum"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "success", body["status"])
	require.Equal(t, "sum", body["operation"])
	require.Equal(t, float64(6), body["result"])
}

func TestTranscriptionsDisabledReturns404(t *testing.T) {
	srv := newTestServer(t, 20)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/ai/transcriptions", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}
