package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/nasermirzaei89/murmur/authentication"
	authcontext "github.com/nasermirzaei89/murmur/authentication/context"
	"github.com/nasermirzaei89/murmur/authorization"
	"github.com/nasermirzaei89/murmur/contents"
	"github.com/nasermirzaei89/murmur/discuss"
	"github.com/nasermirzaei89/murmur/pagination"
	"github.com/nasermirzaei89/murmur/reactions"
)

const internalErrorMessage = "internal error occurred"

// Envelope wraps every JSON response body.
type Envelope struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       any    `json:"data"`
	Success    bool   `json:"success"`
}

type BadRequestError struct {
	Reason string
}

func (err BadRequestError) Error() string {
	return err.Reason
}

func writeJSON(w http.ResponseWriter, r *http.Request, statusCode int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	err := json.NewEncoder(w).Encode(Envelope{
		StatusCode: statusCode,
		Message:    message,
		Data:       data,
		Success:    statusCode < http.StatusBadRequest,
	})
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to encode response", "error", err)
	}
}

func writeOK(w http.ResponseWriter, r *http.Request, message string, data any) {
	writeJSON(w, r, http.StatusOK, message, data)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	statusCode, message := errorStatus(err)
	if statusCode == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}

	writeJSON(w, r, statusCode, message, nil)
}

func errorStatus(err error) (int, string) {
	var (
		badRequestErr          *BadRequestError
		invalidCommentArgErr   *discuss.InvalidArgumentError
		invalidTweetArgErr     *contents.InvalidArgumentError
		invalidLikeArgErr      *reactions.InvalidArgumentError
		invalidPaginationErr   *pagination.InvalidParamsError
		invalidRegistrationErr *authentication.InvalidRegistrationError
		accessDeniedErr        *authorization.AccessDeniedError
		notCommentOwnerErr     *discuss.NotCommentOwnerError
		notTweetOwnerErr       *contents.NotTweetOwnerError
		commentNotFoundErr     *discuss.CommentNotFoundError
		tweetNotFoundErr       *contents.TweetNotFoundError
		targetNotFoundErr      *reactions.TargetNotFoundError
		userNotFoundErr        *authentication.UserNotFoundError
		userAlreadyExistsErr   *authentication.UserAlreadyExistsError
	)

	switch {
	case errors.As(err, &badRequestErr),
		errors.As(err, &invalidCommentArgErr),
		errors.As(err, &invalidTweetArgErr),
		errors.As(err, &invalidLikeArgErr),
		errors.As(err, &invalidPaginationErr),
		errors.As(err, &invalidRegistrationErr):
		return http.StatusBadRequest, rootMessage(err)
	case errors.As(err, &accessDeniedErr):
		if accessDeniedErr.Subject == authcontext.Anonymous {
			return http.StatusUnauthorized, "authentication required"
		}

		return http.StatusForbidden, "you are not allowed to perform this action"
	case errors.Is(err, authentication.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid username or password"
	case errors.Is(err, authentication.ErrNotAuthenticated),
		errors.Is(err, authentication.ErrCurrentUserNotFound):
		return http.StatusUnauthorized, "authentication required"
	case errors.As(err, &notCommentOwnerErr):
		return http.StatusForbidden, "you are not the owner of this comment"
	case errors.As(err, &notTweetOwnerErr):
		return http.StatusForbidden, "you are not the owner of this tweet"
	case errors.As(err, &commentNotFoundErr),
		errors.As(err, &tweetNotFoundErr),
		errors.As(err, &targetNotFoundErr),
		errors.As(err, &userNotFoundErr):
		return http.StatusNotFound, rootMessage(err)
	case errors.As(err, &userAlreadyExistsErr):
		return http.StatusConflict, rootMessage(err)
	default:
		return http.StatusInternalServerError, internalErrorMessage
	}
}

// rootMessage drops the wrapping context added on the way up and keeps the innermost message.
func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}

		err = next
	}
}
