package authentication

import "context"

const (
	// Anonymous is the subject of requests without a valid access token.
	Anonymous = "system:anonymous"

	Authenticated   = "system:authenticated"
	Unauthenticated = "system:unauthenticated"
)

type contextKeySessionID struct{}

func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, contextKeySessionID{}, sessionID)
}

func SessionIDFromContext(ctx context.Context) (string, bool) {
	sessionID, ok := ctx.Value(contextKeySessionID{}).(string)
	if !ok || sessionID == "" {
		return "", false
	}

	return sessionID, true
}

type contextKeySubject struct{}

// GetSubject returns the user id bound to ctx, or Anonymous.
func GetSubject(ctx context.Context) string {
	userID, ok := ctx.Value(contextKeySubject{}).(string)
	if !ok || userID == "" {
		return Anonymous
	}

	return userID
}

func WithSubject(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextKeySubject{}, userID)
}

func IsAnonymous(ctx context.Context) bool {
	return GetSubject(ctx) == Anonymous
}

// ImplicitGroup is the built-in group every subject belongs to.
func ImplicitGroup(subject string) string {
	if subject == "" || subject == Anonymous {
		return Unauthenticated
	}

	return Authenticated
}
