package handler

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/roomy/roomy/internal/api/models"
	"github.com/roomy/roomy/internal/api/response"
	"github.com/roomy/roomy/internal/auth"
)

// AuthHandler handles token endpoints.
type AuthHandler struct {
	jwt    *auth.JWTService
	logger zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(jwt *auth.JWTService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		jwt:    jwt,
		logger: logger,
	}
}

// IssueGuestToken handles POST /v1/auth/guest - issue a token for a new guest.
// Map sessions and booking sheets are owned by the token's user ID.
func (h *AuthHandler) IssueGuestToken(w http.ResponseWriter, r *http.Request) {
	h.issue(w, r, auth.NewGuestID(), http.StatusCreated)
}

// RefreshToken handles POST /v1/auth/refresh - reissue a token for the caller.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	h.issue(w, r, owner(r), http.StatusOK)
}

func (h *AuthHandler) issue(w http.ResponseWriter, r *http.Request, userID string, status int) {
	token, expiresAt, err := h.jwt.GenerateAccessToken(userID, strings.HasPrefix(userID, "gst_"))
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("issuing access token")
		response.InternalError(w, r, "could not issue access token")
		return
	}

	response.JSON(w, r, status, models.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   models.Timestamp(expiresAt),
		UserID:      userID,
	})
}
