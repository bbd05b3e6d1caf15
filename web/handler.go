package web

import (
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/nasermirzaei89/murmur/authentication"
	"github.com/nasermirzaei89/murmur/contents"
	"github.com/nasermirzaei89/murmur/discuss"
	"github.com/nasermirzaei89/murmur/reactions"
)

const apiPrefix = "/api/v1"

type Handler struct {
	mux          *http.ServeMux
	handler      http.Handler
	authSvc      *authentication.Service
	contentsSvc  contents.Service
	discussSvc   discuss.Service
	reactionsSvc reactions.Service
	cookieStore  *sessions.CookieStore
	sessionName  string
	media        http.Handler
	metrics      *metrics
}

var _ http.Handler = (*Handler)(nil)

// NewHandler builds the API handler. cookieStore may be nil to accept bearer tokens only, and media may be nil
// when stored objects are served elsewhere.
func NewHandler(
	authSvc *authentication.Service,
	contentsSvc contents.Service,
	discussSvc discuss.Service,
	reactionsSvc reactions.Service,
	cookieStore *sessions.CookieStore,
	sessionName string,
	media http.Handler,
	trustedOrigins []string,
) (*Handler, error) {
	h := &Handler{
		mux:          http.NewServeMux(),
		authSvc:      authSvc,
		contentsSvc:  contentsSvc,
		discussSvc:   discussSvc,
		reactionsSvc: reactionsSvc,
		cookieStore:  cookieStore,
		sessionName:  sessionName,
		media:        media,
		metrics:      newMetrics(),
	}

	h.registerRoutes()

	h.handler = h.authMiddleware(h.mux)

	{
		crossOrigin := http.NewCrossOriginProtection()

		for _, origin := range trustedOrigins {
			err := crossOrigin.AddTrustedOrigin(origin)
			if err != nil {
				return nil, fmt.Errorf("failed to add trusted origin %q: %w", origin, err)
			}
		}

		crossOrigin.SetDenyHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, r, http.StatusForbidden, "cross-origin request rejected", nil)
		}))

		h.handler = crossOrigin.Handler(h.handler)
	}

	h.handler = loggingMiddleware(h.handler)
	h.handler = recoverMiddleware(h.handler)

	return h, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.handler.ServeHTTP(w, r)
}

func (h *Handler) handle(pattern string, handler http.Handler) {
	h.mux.Handle(pattern, h.metrics.instrument(pattern, handler))
}

func (h *Handler) registerRoutes() {
	h.mux.Handle("/", http.HandlerFunc(h.HandleNotFound))
	h.mux.Handle("GET /metrics", h.metrics.handler())

	if h.media != nil {
		h.handle("GET /media/", http.StripPrefix("/media/", h.media))
	}

	h.handle("GET "+apiPrefix+"/healthz", h.HandleHealthz())

	h.handle("POST "+apiPrefix+"/users/register", GuestOnly(h.HandleRegister()))
	h.handle("POST "+apiPrefix+"/users/login", GuestOnly(h.HandleLogin()))
	h.handle("POST "+apiPrefix+"/users/logout", AuthenticatedOnly(h.HandleLogout()))
	h.handle("GET "+apiPrefix+"/users/me", AuthenticatedOnly(h.HandleCurrentUser()))

	h.handle("GET "+apiPrefix+"/comments/v/{videoId}", h.HandleListComments(discuss.ParentKindVideo))
	h.handle("GET "+apiPrefix+"/comments/t/{tweetId}", h.HandleListComments(discuss.ParentKindTweet))
	h.handle("POST "+apiPrefix+"/comments/v/{videoId}", AuthenticatedOnly(h.HandleAddComment(discuss.ParentKindVideo)))
	h.handle("POST "+apiPrefix+"/comments/t/{tweetId}", AuthenticatedOnly(h.HandleAddComment(discuss.ParentKindTweet)))
	h.handle("PATCH "+apiPrefix+"/comments/{commentId}", AuthenticatedOnly(h.HandleUpdateComment()))
	h.handle("DELETE "+apiPrefix+"/comments/{commentId}", AuthenticatedOnly(h.HandleDeleteComment()))

	h.handle("GET "+apiPrefix+"/tweets", h.HandleListTweets())
	h.handle("POST "+apiPrefix+"/tweets", AuthenticatedOnly(h.HandleCreateTweet()))
	h.handle("GET "+apiPrefix+"/tweets/{userId}", AuthenticatedOnly(h.HandleListUserTweets()))
	h.handle("PATCH "+apiPrefix+"/tweets/{tweetId}", AuthenticatedOnly(h.HandleUpdateTweet()))
	h.handle("DELETE "+apiPrefix+"/tweets/{tweetId}", AuthenticatedOnly(h.HandleDeleteTweet()))

	h.handle("POST "+apiPrefix+"/likes/toggle/c/{commentId}", AuthenticatedOnly(h.HandleToggleLike(reactions.TargetTypeComment)))
	h.handle("POST "+apiPrefix+"/likes/toggle/t/{tweetId}", AuthenticatedOnly(h.HandleToggleLike(reactions.TargetTypeTweet)))
}

func (h *Handler) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusNotFound, "route not found", nil)
}

func (h *Handler) HandleHealthz() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeOK(w, r, "ok", nil)
	})
}
