package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/nasermirzaei89/murmur/authentication"
	authcontext "github.com/nasermirzaei89/murmur/authentication/context"
)

const bearerPrefix = "Bearer "

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}

	token := strings.TrimSpace(header[len(bearerPrefix):])

	return token, token != ""
}

// authMiddleware binds the session and subject of the request to its context. Requests without a usable
// access token or session cookie continue as anonymous.
func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, fromCookie, err := h.resolveSession(r)
		if err != nil {
			slog.DebugContext(r.Context(), "request continues unauthenticated", "error", err)

			if fromCookie {
				h.forgetCookieSession(w, r)
			}

			next.ServeHTTP(w, r)

			return
		}

		if session == nil {
			next.ServeHTTP(w, r)

			return
		}

		user, err := h.authSvc.GetUser(r.Context(), session.UserID)
		if err != nil {
			var userNotFoundErr *authentication.UserNotFoundError
			if !errors.As(err, &userNotFoundErr) {
				slog.ErrorContext(r.Context(), "error retrieving user", "userId", session.UserID, "error", err)
				writeError(w, r, err)

				return
			}

			err = h.authSvc.Logout(r.Context(), session.ID)
			if err != nil {
				slog.ErrorContext(r.Context(), "error on logging out session", "sessionId", session.ID, "error", err)
			}

			if fromCookie {
				h.forgetCookieSession(w, r)
			}

			next.ServeHTTP(w, r)

			return
		}

		ctx := authcontext.WithSessionID(r.Context(), session.ID)
		ctx = authcontext.WithSubject(ctx, user.ID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// resolveSession prefers the bearer token and falls back to the session cookie set at login.
func (h *Handler) resolveSession(r *http.Request) (*authentication.Session, bool, error) {
	if token, ok := bearerToken(r); ok {
		session, err := h.authSvc.Authenticate(r.Context(), token)
		if err != nil {
			return nil, false, err
		}

		return session, false, nil
	}

	if h.cookieStore == nil {
		return nil, false, nil
	}

	sessionID, err := h.getSessionID(r)
	if err != nil {
		var valueNotFoundErr *SessionValueNotFoundError
		if errors.As(err, &valueNotFoundErr) {
			return nil, false, nil
		}

		return nil, true, err
	}

	session, err := h.authSvc.GetSession(r.Context(), sessionID)
	if err != nil {
		return nil, true, err
	}

	return session, true, nil
}

func (h *Handler) forgetCookieSession(w http.ResponseWriter, r *http.Request) {
	err := h.deleteSessionID(w, r)
	if err != nil {
		slog.WarnContext(r.Context(), "error on deleting session value", "key", sessionIDKey, "error", err)
	}
}

func isAuthenticated(ctx context.Context) bool {
	return !authcontext.IsAnonymous(ctx)
}

func AuthenticatedOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isAuthenticated(r.Context()) {
			writeError(w, r, authentication.ErrNotAuthenticated)

			return
		}

		next.ServeHTTP(w, r)
	})
}

func GuestOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isAuthenticated(r.Context()) {
			writeJSON(w, r, http.StatusBadRequest, "already logged in", nil)

			return
		}

		next.ServeHTTP(w, r)
	})
}
