// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/auth"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/validation"
)

// maxTokenRequestBytes caps the token request body.
const maxTokenRequestBytes = 4 << 10

// TokenRequest is the body of POST /auth/token.
type TokenRequest struct {
	Username string `json:"username" validate:"required,max=150"`
	Password string `json:"password" validate:"required,max=128"`
}

// TokenResponse carries an issued bearer token.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Role      string    `json:"role"`
}

// IssueToken exchanges a username and password for a JWT.
//
// @Summary Obtain a bearer token
// @Description Throttled per client IP. The token goes in "Authorization: Bearer <token>".
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body TokenRequest true "Credentials"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 429 {object} models.ErrorResponse
// @Router /auth/token [post]
func (h *Handler) IssueToken(w http.ResponseWriter, r *http.Request) {
	if h.jwtManager == nil {
		respondError(w, r, http.StatusNotFound, models.CodeNotFound, "Token authentication is disabled", nil)
		return
	}

	body, err := readBody(w, r, maxTokenRequestBytes)
	if err != nil {
		respondError(w, r, http.StatusRequestEntityTooLarge, models.CodeRequestTooLarge, "Request body too large", nil)
		return
	}

	var req TokenRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondValidationError(w, r, validation.NewRequestValidationError("body", "json", "request body is not valid JSON"))
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	user, err := auth.VerifyCredentials(r.Context(), h.users, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			metrics.RecordAuthAttempt("token", false)
			logging.Ctx(r.Context()).Warn().Str("username", sanitizeLogValue(req.Username)).Msg("Token request rejected")
			h.audit.LogAuthFailure(r, req.Username, "invalid credentials")
			respondError(w, r, http.StatusUnauthorized, models.CodeUnauthorized, "Invalid username or password", nil)
			return
		}
		respondRepositoryError(w, r, "User", err)
		return
	}

	token, expiresAt, err := h.jwtManager.GenerateToken(user)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, models.CodeInternal, "Could not issue token", err)
		return
	}

	metrics.RecordAuthAttempt("token", true)
	logging.Ctx(r.Context()).Info().Str("username", user.Username).Str("role", user.Role()).Msg("Token issued")
	h.audit.LogTokenIssued(r, user, expiresAt)
	respondJSON(w, r, http.StatusOK, TokenResponse{
		Token:     token,
		ExpiresAt: expiresAt.UTC(),
		Role:      user.Role(),
	})
}
