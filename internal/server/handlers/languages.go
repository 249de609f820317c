package handlers

import (
	"net/http"

	"github.com/voxgate/voxgate/internal/core"
)

// SupportedLanguages handles GET /api/v1/ai/supported-languages. The catalog
// is static, loaded from the embedded asset at startup.
func SupportedLanguages(w http.ResponseWriter, r *http.Request) {
	languages := core.SupportedLanguages()

	writeJSON(w, http.StatusOK, SuccessResponse{
		Status: "success",
		Data: map[string]interface{}{
			"languages":   languages,
			"total_count": len(languages),
		},
	})
}
