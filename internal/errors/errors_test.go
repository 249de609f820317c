package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	gferrors "github.com/fulmenhq/gofulmen/errors"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatusFromCode(t *testing.T) {
	cases := []struct {
		code string
		want int
	}{
		{"INVALID_INPUT", http.StatusBadRequest},
		{"VALIDATION_FAILED", http.StatusBadRequest},
		{"NOT_FOUND", http.StatusNotFound},
		{"METHOD_NOT_ALLOWED", http.StatusMethodNotAllowed},
		{"PAYLOAD_TOO_LARGE", http.StatusRequestEntityTooLarge},
		{"RATE_LIMITED", http.StatusTooManyRequests},
		{"SERVICE_UNAVAILABLE", http.StatusServiceUnavailable},
		{"INTERNAL_ERROR", http.StatusInternalServerError},
		{"SOMETHING_UNKNOWN", http.StatusInternalServerError},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, HTTPStatusFromCode(tc.code), "code %s", tc.code)
	}
}

func TestEnsureEnvelopeWrapsPlainError(t *testing.T) {
	env := EnsureEnvelope(fmt.Errorf("disk on fire"))
	require.Equal(t, "INTERNAL_ERROR", env.Code)
	require.Equal(t, "disk on fire", env.Context["wrapped_error"])
}

func TestEnsureEnvelopePassesEnvelopeThrough(t *testing.T) {
	original := NewRateLimitedError("slow down")
	env := EnsureEnvelope(original)
	require.Same(t, original, env)
}

func TestRespondWithErrorWritesEnvelopeJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ai/transcribe", nil)

	RespondWithError(rec, req, NewPayloadTooLargeError("Audio file too large. Maximum size is 5MB."))

	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body HTTPErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "PAYLOAD_TOO_LARGE", body.Error.Code)
	require.NotEmpty(t, body.Error.RequestID)
}

func TestEnsureCorrelationIDPreservesExisting(t *testing.T) {
	env := gferrors.NewErrorEnvelope("INVALID_INPUT", "bad").WithCorrelationID("abc-123")
	got := EnsureCorrelationID(env, nil)
	require.Equal(t, "abc-123", got.CorrelationID)
}
