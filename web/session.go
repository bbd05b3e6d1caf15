package web

import (
	"fmt"
	"net/http"
)

const sessionIDKey = "sessionId"

type SessionValueNotFoundError struct {
	Key string
}

func (err SessionValueNotFoundError) Error() string {
	return fmt.Sprintf("session value for key '%s' not found", err.Key)
}

func (h *Handler) getSessionID(r *http.Request) (string, error) {
	session, err := h.cookieStore.Get(r, h.sessionName)
	if err != nil {
		return "", fmt.Errorf("error getting session: %w", err)
	}

	sessionID, ok := session.Values[sessionIDKey].(string)
	if !ok || sessionID == "" {
		return "", &SessionValueNotFoundError{Key: sessionIDKey}
	}

	return sessionID, nil
}

func (h *Handler) setSessionID(w http.ResponseWriter, r *http.Request, sessionID string) error {
	session, err := h.cookieStore.Get(r, h.sessionName)
	if err != nil {
		return fmt.Errorf("error getting session: %w", err)
	}

	session.Values[sessionIDKey] = sessionID

	err = session.Save(r, w)
	if err != nil {
		return fmt.Errorf("error saving session: %w", err)
	}

	return nil
}

func (h *Handler) deleteSessionID(w http.ResponseWriter, r *http.Request) error {
	session, err := h.cookieStore.Get(r, h.sessionName)
	if err != nil {
		return fmt.Errorf("error getting session: %w", err)
	}

	if _, ok := session.Values[sessionIDKey]; !ok {
		return nil
	}

	delete(session.Values, sessionIDKey)

	err = session.Save(r, w)
	if err != nil {
		return fmt.Errorf("error saving session: %w", err)
	}

	return nil
}
