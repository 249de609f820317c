package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/voxgate/voxgate/internal/errors"
	"github.com/voxgate/voxgate/internal/server/middleware"
)

// Demo API handlers for the general-purpose /api/v1 surface.

// APIInfo handles GET /api/v1/.
func APIInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"api":         "VoxGate API",
		"version":     AppVersion,
		"description": "Voice transcription API with resource lifecycle management",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"endpoints": map[string]string{
			"health":              "/health",
			"api_info":            "/api/v1/",
			"echo":                "/api/v1/echo",
			"process":             "/api/v1/process",
			"users":               "/api/v1/users",
			"status":              "/api/v1/status",
			"transcribe":          "/api/v1/ai/transcribe",
			"supported_languages": "/api/v1/ai/supported-languages",
		},
	})
}

// EchoRequest is the echo request payload.
type EchoRequest struct {
	Message *string `json:"message"`
}

// Echo handles POST /api/v1/echo: returns the input message with metadata.
func Echo(w http.ResponseWriter, r *http.Request) {
	var req EchoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, r, apperrors.NewInvalidInputError("Request body must be valid JSON"))
		return
	}
	if req.Message == nil {
		respondWithError(w, r, apperrors.NewValidationError("Missing required field: message"))
		return
	}

	message := *req.Message
	logInfo("Echo request received", zap.Int("message_chars", len(message)))

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":           "success",
		"original_message": message,
		"echo":             message,
		"timestamp":        time.Now().UTC().Format(time.RFC3339),
		"character_count":  len(message),
		"word_count":       len(strings.Fields(message)),
		"request_id":       middleware.GetRequestID(r.Context()),
	})
}

// ProcessRequest is the data-processing payload. Data stays raw until the
// operation decides how to interpret it.
type ProcessRequest struct {
	Data      json.RawMessage        `json:"data"`
	Operation *string                `json:"operation"`
	Options   map[string]interface{} `json:"options"`
}

var processOperations = []string{"count", "reverse", "uppercase", "sum"}

// ProcessData handles POST /api/v1/process: applies a named operation
// (count, reverse, uppercase, sum) to the supplied data.
func ProcessData(w http.ResponseWriter, r *http.Request) {
	var req ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, r, apperrors.NewInvalidInputError("Request body must be valid JSON"))
		return
	}
	if req.Data == nil || req.Operation == nil {
		respondWithError(w, r, apperrors.NewValidationError("Missing required fields: data, operation"))
		return
	}

	var data interface{}
	if err := json.Unmarshal(req.Data, &data); err != nil {
		respondWithError(w, r, apperrors.NewInvalidInputError("Field data must be valid JSON"))
		return
	}

	operation := *req.Operation
	logInfo("Processing data", zap.String("operation", operation))

	var result interface{}
	switch operation {
	case "count":
		switch v := data.(type) {
		case []interface{}:
			result = len(v)
		case string:
			result = len(v)
		default:
			result = 1
		}
	case "reverse":
		switch v := data.(type) {
		case []interface{}:
			reversed := make([]interface{}, len(v))
			for i, item := range v {
				reversed[len(v)-1-i] = item
			}
			result = reversed
		case string:
			runes := []rune(v)
			for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
				runes[i], runes[j] = runes[j], runes[i]
			}
			result = string(runes)
		default:
			result = v
		}
	case "uppercase":
		switch v := data.(type) {
		case string:
			result = strings.ToUpper(v)
		case []interface{}:
			upper := make([]interface{}, len(v))
			for i, item := range v {
				if s, ok := item.(string); ok {
					upper[i] = strings.ToUpper(s)
				} else {
					upper[i] = item
				}
			}
			result = upper
		default:
			result = strings.ToUpper(fmt.Sprint(v))
		}
	case "sum":
		list, ok := data.([]interface{})
		if ok {
			var sum float64
			for _, item := range list {
				n, isNum := item.(float64)
				if !isNum {
					ok = false
					break
				}
				sum += n
			}
			if ok {
				result = sum
			}
		}
		if !ok {
			respondWithError(w, r, apperrors.NewValidationError("Sum operation requires a list of numbers"))
			return
		}
	default:
		respondWithError(w, r, apperrors.NewValidationError(
			fmt.Sprintf("Unknown operation: %s (supported: %s)", operation, strings.Join(processOperations, ", "))))
		return
	}

	options := req.Options
	if options == nil {
		options = map[string]interface{}{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":        "success",
		"operation":     operation,
		"original_data": data,
		"result":        result,
		"options_used":  options,
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
	})
}

// APIStatus handles GET /api/v1/status.
func APIStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "operational",
		"version":   AppVersion,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"features": map[string]bool{
			"rate_limiting":   true,
			"request_logging": true,
			"error_handling":  true,
			"json_validation": true,
		},
	})
}

// demoUser is the sample user shape served by the users endpoints. The data
// is inline; there is no user persistence.
type demoUser struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
	CreatedAt string `json:"created_at"`
	Active    bool   `json:"active"`
}

// ListUsers handles GET /api/v1/users.
func ListUsers(w http.ResponseWriter, r *http.Request) {
	users := []demoUser{
		{
			ID:        1,
			Name:      "John Doe",
			Email:     "john@example.com",
			CreatedAt: "2024-01-01T00:00:00Z",
			Active:    true,
		},
		{
			ID:        2,
			Name:      "Jane Smith",
			Email:     "jane@example.com",
			CreatedAt: "2024-01-02T00:00:00Z",
			Active:    true,
		},
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "success",
		"data":      users,
		"count":     len(users),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// CreateUserRequest is the create-user payload.
type CreateUserRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// CreateUser handles POST /api/v1/users.
func CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, r, apperrors.NewInvalidInputError("Request body must be valid JSON"))
		return
	}
	if req.Name == "" || req.Email == "" {
		respondWithError(w, r, apperrors.NewValidationError("Missing required fields: name, email"))
		return
	}
	if !strings.Contains(req.Email, "@") {
		respondWithError(w, r, apperrors.NewValidationError("Invalid email format"))
		return
	}

	user := demoUser{
		ID:        time.Now().Unix(),
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Active:    true,
	}

	logInfo("Created new user", zap.String("email", user.Email))

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"status":    "success",
		"message":   "User created successfully",
		"data":      user,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
