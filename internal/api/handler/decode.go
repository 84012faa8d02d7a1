package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/roomy/roomy/internal/api/models"
	"github.com/roomy/roomy/internal/api/response"
)

// maxBodyBytes caps request bodies; the largest legitimate body is a notes field.
const maxBodyBytes = 16 << 10

// decodeJSON reads the request body into dst and validates it. On failure it
// writes a 400 problem and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.BadRequest(w, r, "request body too large", nil)
			return false
		}
		response.BadRequest(w, r, "invalid JSON body", nil)
		return false
	}

	if fieldErrors := models.Validate(dst); len(fieldErrors) > 0 {
		response.BadRequest(w, r, "validation error", fieldErrors)
		return false
	}
	return true
}
