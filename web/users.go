package web

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/nasermirzaei89/murmur/authentication"
	authcontext "github.com/nasermirzaei89/murmur/authentication/context"
)

type UserResponse struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Avatar       string    `json:"avatar"`
	RegisteredAt time.Time `json:"registeredAt"`
}

func newUserResponse(user *authentication.User) *UserResponse {
	return &UserResponse{
		ID:           user.ID,
		Username:     user.Username,
		Avatar:       user.AvatarURL,
		RegisteredAt: user.RegisteredAt,
	}
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Avatar   string `json:"avatar"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken      string    `json:"accessToken"`
	TokenType        string    `json:"tokenType"`
	SessionExpiresAt time.Time `json:"sessionExpiresAt"`
}

func (h *Handler) HandleRegister() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest

		err := decodeJSON(w, r, &req)
		if err != nil {
			writeError(w, r, err)

			return
		}

		user, err := h.authSvc.Register(r.Context(), authentication.RegisterRequest{
			Username:  req.Username,
			Password:  req.Password,
			AvatarURL: req.Avatar,
		})
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeJSON(w, r, http.StatusCreated, "User registered successfully", newUserResponse(user))
	})
}

func (h *Handler) HandleLogin() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest

		err := decodeJSON(w, r, &req)
		if err != nil {
			writeError(w, r, err)

			return
		}

		session, err := h.authSvc.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			writeError(w, r, err)

			return
		}

		token, err := h.authSvc.IssueAccessToken(session)
		if err != nil {
			writeError(w, r, err)

			return
		}

		if h.cookieStore != nil {
			err = h.setSessionID(w, r, session.ID)
			if err != nil {
				slog.ErrorContext(r.Context(), "failed to set session ID", "error", err)
			}
		}

		writeOK(w, r, "Logged in successfully", &LoginResponse{
			AccessToken:      token,
			TokenType:        "Bearer",
			SessionExpiresAt: session.ExpiresAt,
		})
	})
}

func (h *Handler) HandleLogout() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := authcontext.SessionIDFromContext(r.Context())
		if !ok {
			writeError(w, r, authentication.ErrNotAuthenticated)

			return
		}

		err := h.authSvc.Logout(r.Context(), sessionID)
		if err != nil {
			var sessionNotFoundErr *authentication.SessionNotFoundError
			if !errors.As(err, &sessionNotFoundErr) {
				writeError(w, r, err)

				return
			}
		}

		if h.cookieStore != nil {
			h.forgetCookieSession(w, r)
		}

		writeOK(w, r, "Logged out successfully", struct{}{})
	})
}

func (h *Handler) HandleCurrentUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := h.authSvc.GetCurrentUser(r.Context())
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeOK(w, r, "Fetched current user successfully", newUserResponse(user))
	})
}
