package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 64 << 10

// validate is shared by every handler; validator caches struct metadata.
var validate = validator.New(validator.WithRequiredStructEnabled())

// chatRequest is the POST /api/chat body.
type chatRequest struct {
	Messages []chatMessage `json:"messages" validate:"required,min=1,max=100,dive"`
}

type chatMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required,max=4000"`
}

// translateRequest is the POST /api/translate body.
type translateRequest struct {
	Text   string `json:"text" validate:"required,max=5000"`
	Target string `json:"target" validate:"required,bcp47_language_tag"`
}

// decodeJSON reads a size-limited JSON body into dst and validates it.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("validate request: %w", err)
	}
	return nil
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
