package metrics

import (
	"time"

	"github.com/voxgate/voxgate/internal/observability"
)

// Application metric names following Prometheus conventions.
var (
	// Transcription pipeline
	TranscriptionsTotal     = "app_transcriptions_total"
	TranscriptionDuration   = "app_transcription_duration_ms"
	TranscriptionAudioBytes = "app_transcription_audio_bytes"
	AdmissionDecisionsTotal = "app_admission_decisions_total"

	// Shared model lifecycle
	ModelConstructionsTotal = "app_model_constructions_total"
	ModelEvictionsTotal     = "app_model_evictions_total"
	ModelLoaded             = "app_model_loaded"

	// Health check metrics
	HealthCheckTotal    = "app_health_check_total"
	HealthCheckDuration = "app_health_check_duration_ms"

	// Server lifecycle metrics
	ServerStartTime = "app_server_start_time_seconds"
	ServerUptime    = "app_server_uptime_seconds"
)

// RecordTranscription records a completed pipeline run with its outcome.
func RecordTranscription(status string, language string, duration time.Duration) {
	if observability.TelemetrySystem == nil {
		return
	}

	_ = observability.TelemetrySystem.Counter(
		TranscriptionsTotal,
		1,
		map[string]string{
			"status":   status,
			"language": language,
		},
	)

	_ = observability.TelemetrySystem.Histogram(
		TranscriptionDuration,
		duration,
		map[string]string{
			"status": status,
		},
	)
}

// RecordAudioSize records the decoded audio payload size.
func RecordAudioSize(bytes int64) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(
			TranscriptionAudioBytes,
			float64(bytes),
			nil,
		)
	}
}

// RecordAdmission records an admission decision for a rate-limited route.
func RecordAdmission(route string, allowed bool) {
	decision := "allowed"
	if !allowed {
		decision = "rejected"
	}

	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			AdmissionDecisionsTotal,
			1,
			map[string]string{
				"route":    route,
				"decision": decision,
			},
		)
	}
}

// RecordModelConstruction records a model construction attempt.
func RecordModelConstruction(success bool) {
	status := "success"
	if !success {
		status = "failure"
	}

	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			ModelConstructionsTotal,
			1,
			map[string]string{"status": status},
		)
	}
}

// RecordModelEviction records an idle eviction of the shared model.
func RecordModelEviction() {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(ModelEvictionsTotal, 1, nil)
	}
}

// SetModelLoaded reflects whether the shared model currently resides in memory.
func SetModelLoaded(loaded bool) {
	value := 0.0
	if loaded {
		value = 1.0
	}

	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(ModelLoaded, value, nil)
	}
}

// RecordHealthCheck records a health check execution.
func RecordHealthCheck(checkName string, healthy bool, duration time.Duration) {
	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}

	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			HealthCheckTotal,
			1,
			map[string]string{
				"check":  checkName,
				"status": status,
			},
		)

		_ = observability.TelemetrySystem.Histogram(
			HealthCheckDuration,
			duration,
			map[string]string{
				"check": checkName,
			},
		)
	}
}

// SetServerStartTime records the server start time (Unix timestamp).
func SetServerStartTime(timestamp int64) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(
			ServerStartTime,
			float64(timestamp),
			nil,
		)
	}
}

// SetServerUptime records the server uptime in seconds.
func SetServerUptime(seconds int64) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(
			ServerUptime,
			float64(seconds),
			nil,
		)
	}
}
