package gateway

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/ndonskov/trivia_bot/pkg/errors"
	"github.com/ndonskov/trivia_bot/pkg/logger"
)

// TokenExchanger trades a one-time login code for a signed session
// token. The auth service satisfies it.
type TokenExchanger interface {
	ExchangeLoginCode(code string) (string, error)
}

// AuthHandler serves the web-panel login endpoint. The bot hands out
// one-time codes via /login; this endpoint turns them into JWTs.
type AuthHandler struct {
	auth TokenExchanger
}

func NewAuthHandler(auth TokenExchanger) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type exchangeRequest struct {
	Code string `json:"code"`
}

type exchangeResponse struct {
	Token string `json:"token"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ExchangeCode handles POST /auth/exchange.
func (h *AuthHandler) ExchangeCode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	var req exchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "a login code is required"})
		return
	}

	token, err := h.auth.ExchangeLoginCode(req.Code)
	if err != nil {
		status := http.StatusInternalServerError
		switch apperrors.Code(err) {
		case apperrors.ErrCodeNotFound, apperrors.ErrCodeUnauthorized:
			status = http.StatusUnauthorized
		case apperrors.ErrCodeValidation:
			status = http.StatusBadRequest
		}
		if status == http.StatusInternalServerError {
			logger.Error("Login code exchange failed", "error", err)
			writeJSON(w, status, errorResponse{Error: "internal error"})
			return
		}
		writeJSON(w, status, errorResponse{Error: "login code is invalid or expired"})
		return
	}

	writeJSON(w, http.StatusOK, exchangeResponse{Token: token})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to write response", "error", err)
	}
}
