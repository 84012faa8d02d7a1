package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/roomy/roomy/internal/api/middleware"
)

// owner is the authenticated user that map sessions and booking sheets belong to.
func owner(r *http.Request) string {
	return middleware.GetUserID(r.Context())
}

// pathID reads a chi URL parameter such as sessionId or sheetId.
func pathID(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}
