package murmur

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	stringadapter "github.com/casbin/casbin/v2/persist/string-adapter"
	"github.com/gorilla/sessions"
	"github.com/nasermirzaei89/env"
	"github.com/nasermirzaei89/murmur/authentication"
	"github.com/nasermirzaei89/murmur/authorization"
	"github.com/nasermirzaei89/murmur/authorization/casbin"
	"github.com/nasermirzaei89/murmur/cache/rediscache"
	"github.com/nasermirzaei89/murmur/contents"
	"github.com/nasermirzaei89/murmur/db/sqlite3"
	"github.com/nasermirzaei89/murmur/discuss"
	"github.com/nasermirzaei89/murmur/random"
	"github.com/nasermirzaei89/murmur/reactions"
	"github.com/nasermirzaei89/murmur/server"
	"github.com/nasermirzaei89/murmur/storage/localstore"
	"github.com/nasermirzaei89/murmur/storage/miniostore"
	"github.com/nasermirzaei89/murmur/web"
	"golang.org/x/sync/errgroup"
)

const (
	StorageDriverLocal = "local"
	StorageDriverMinIO = "minio"

	sessionPurgeInterval = time.Hour
	sessionCookieMaxAge  = 30 * 24 * 60 * 60
)

//go:embed policy.csv
var DefaultAuthorizationPolicy string

type App struct {
	server  *server.Server
	handler *web.Handler
	authSvc *authentication.Service
	closers []io.Closer
}

func NewApp(ctx context.Context) (_ *App, err error) {
	app := &App{}

	defer func() {
		if err != nil {
			app.close(ctx)
		}
	}()

	db, err := sqlite3.NewDB(ctx, env.GetString("DB_DSN", "file:murmur.db?_pragma=foreign_keys(1)"))
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection: %w", err)
	}

	app.closers = append(app.closers, db)

	err = sqlite3.MigrateUp(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	authzClient, err := newAuthorizationClient(ctx)
	if err != nil {
		return nil, err
	}

	authSvc, err := app.newAuthenticationService(ctx, db)
	if err != nil {
		return nil, err
	}

	app.authSvc = authSvc

	imageStore, media, err := newImageStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create image store: %w", err)
	}

	contentsSvc, err := contents.NewService(sqlite3.NewTweetRepository(db), imageStore)
	if err != nil {
		return nil, fmt.Errorf("failed to create contents service: %w", err)
	}

	discussSvc := discuss.NewService(sqlite3.NewCommentRepository(db))
	reactionsSvc := reactions.NewService(sqlite3.NewLikeRepository(db))

	sessionKey := env.GetString("SESSION_KEY", "")
	if sessionKey == "" {
		slog.WarnContext(ctx, "SESSION_KEY is not set, session cookies will not survive a restart")

		sessionKey = random.Hex(32)
	}

	cookieStore := sessions.NewCookieStore([]byte(sessionKey))
	cookieStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   sessionCookieMaxAge,
		HttpOnly: true,
		Secure:   env.GetBool("TLS_ENABLED", false),
		SameSite: http.SameSiteLaxMode,
	}

	httpHandler, err := web.NewHandler(
		authSvc,
		contents.NewAuthorizationMiddleware(authzClient, contentsSvc),
		discuss.NewAuthorizationMiddleware(authzClient, discussSvc),
		reactions.NewAuthorizationMiddleware(authzClient, reactionsSvc),
		cookieStore,
		env.GetString("SESSION_NAME", "murmur"),
		media,
		env.GetStringSlice("CSRF_TRUSTED_ORIGINS", []string{}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP handler: %w", err)
	}

	app.server = newServer()
	app.handler = httpHandler

	return app, nil
}

func (app *App) newAuthenticationService(ctx context.Context, db *sql.DB) (*authentication.Service, error) {
	secret := env.GetString("JWT_SECRET", "")
	if secret == "" {
		slog.WarnContext(ctx, "JWT_SECRET is not set, issued access tokens will not survive a restart")

		secret = random.Hex(32)
	}

	tokenTTL, err := getDurationFromEnv("ACCESS_TOKEN_TTL", authentication.DefaultAccessTokenTTL)
	if err != nil {
		return nil, err
	}

	tokenManager, err := authentication.NewTokenManager([]byte(secret), tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create token manager: %w", err)
	}

	authSvc := authentication.NewService(
		sqlite3.NewUserRepository(db),
		sqlite3.NewSessionRepository(db),
		tokenManager,
	)

	if redisAddr := env.GetString("REDIS_ADDR", ""); redisAddr != "" {
		rdb, err := rediscache.NewClient(ctx, rediscache.Config{
			Addr:     redisAddr,
			Password: env.GetString("REDIS_PASSWORD", ""),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}

		app.closers = append(app.closers, rdb)

		userCacheTTL, err := getDurationFromEnv("USER_CACHE_TTL", rediscache.DefaultUserTTL)
		if err != nil {
			return nil, err
		}

		authSvc.SetUserCache(rediscache.NewUserCache(rdb, userCacheTTL))
	}

	err = authSvc.LoadUsernameFilter(ctx, 10_000, 0.01)
	if err != nil {
		return nil, fmt.Errorf("failed to load username filter: %w", err)
	}

	return authSvc, nil
}

// Run serves until SIGINT or SIGTERM and purges expired sessions in the background.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	defer app.close(ctx)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := app.server.Run(gCtx, app.handler)
		if err != nil {
			return fmt.Errorf("failed to run server: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		app.purgeSessions(gCtx)

		return nil
	})

	return g.Wait()
}

func (app *App) purgeSessions(ctx context.Context) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := app.authSvc.PurgeExpiredSessions(ctx)
			if err != nil {
				slog.ErrorContext(ctx, "failed to purge expired sessions", "error", err)

				continue
			}

			slog.DebugContext(ctx, "purged expired sessions", "count", count)
		}
	}
}

func (app *App) close(ctx context.Context) {
	for i := len(app.closers) - 1; i >= 0; i-- {
		err := app.closers[i].Close()
		if err != nil {
			slog.ErrorContext(ctx, "failed to close resource", "error", err)
		}
	}

	app.closers = nil
}

func newServer() *server.Server {
	server := &server.Server{
		Port: env.GetString("PORT", server.DefaultPort),
		Host: env.GetString("HOST", ""),
		TLS: server.ServerTLS{
			Enabled: env.GetBool("TLS_ENABLED", false),
			Mode:    env.GetString("TLS_MODE", server.DefaultTLSMode),
			AutoCert: &server.ServerTLSAutoCert{
				CacheDir: env.GetString("TLS_AUTOCERT_CACHE_DIR", "./cert-cache"),
				Domains:  env.GetStringSlice("TLS_AUTOCERT_DOMAINS", []string{}),
				Email:    env.GetString("TLS_AUTOCERT_EMAIL", ""),
			},
			CertFile: env.GetString("TLS_CERT_FILE", ""),
			KeyFile:  env.GetString("TLS_KEY_FILE", ""),
		},
	}

	return server
}

type UnknownStorageDriverError struct {
	Driver string
}

func (err UnknownStorageDriverError) Error() string {
	return fmt.Sprintf("unknown storage driver %q", err.Driver)
}

// newImageStore returns the configured store and, for the local driver, the handler that serves its files.
func newImageStore(ctx context.Context) (contents.ImageStore, http.Handler, error) {
	driver := env.GetString("STORAGE_DRIVER", StorageDriverLocal)

	switch driver {
	case StorageDriverLocal:
		store, err := localstore.New(
			env.GetString("STORAGE_LOCAL_DIR", "./media"),
			env.GetString("STORAGE_PUBLIC_URL", "http://localhost:"+env.GetString("PORT", server.DefaultPort)+"/media"),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create local store: %w", err)
		}

		return store, store.Handler(), nil
	case StorageDriverMinIO:
		region := env.GetString("MINIO_REGION", "")

		store, err := miniostore.New(miniostore.Config{
			Endpoint:  env.GetString("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: env.GetString("MINIO_ACCESS_KEY", ""),
			SecretKey: env.GetString("MINIO_SECRET_KEY", ""),
			UseSSL:    env.GetBool("MINIO_USE_SSL", false),
			Bucket:    env.GetString("MINIO_BUCKET", "murmur"),
			Region:    region,
			PublicURL: env.GetString("STORAGE_PUBLIC_URL", ""),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create minio store: %w", err)
		}

		err = store.EnsureBucket(ctx, region)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to ensure minio bucket: %w", err)
		}

		return store, nil, nil
	default:
		return nil, nil, &UnknownStorageDriverError{Driver: driver}
	}
}

func GetLogLevelFromEnv() slog.Level {
	levelStr := env.GetString("LOG_LEVEL", "info")
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		slog.Warn("unknown log level, defaulting to info", "level", levelStr)

		return slog.LevelInfo
	}
}

func getDurationFromEnv(key string, def time.Duration) (time.Duration, error) {
	value := env.GetString(key, "")
	if value == "" {
		return def, nil
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration in %s: %w", key, err)
	}

	if d <= 0 {
		return 0, fmt.Errorf("invalid duration in %s: %w", key, errors.New("must be positive"))
	}

	return d, nil
}

func newAuthorizationClient(ctx context.Context) (*authorization.Client, error) {
	provider, err := casbin.NewAuthorizationProvider(stringadapter.NewAdapter(DefaultAuthorizationPolicy))
	if err != nil {
		return nil, fmt.Errorf("failed to create authorization provider: %w", err)
	}

	authzSvc, err := authorization.NewService(provider)
	if err != nil {
		return nil, fmt.Errorf("failed to create authorization service: %w", err)
	}

	authzClient := authorization.NewClient(authzSvc)

	extraPolicy, err := loadExtraPolicyContent()
	if err != nil {
		return nil, fmt.Errorf("failed to load authorization policy content: %w", err)
	}

	if extraPolicy == "" {
		return authzClient, nil
	}

	err = authzClient.LoadPolicy(ctx, extraPolicy)
	if err != nil {
		return nil, fmt.Errorf("failed to load extra authorization policy: %w", err)
	}

	return authzClient, nil
}

// loadExtraPolicyContent reads the policy file that extends the embedded default policy, if one is configured.
func loadExtraPolicyContent() (string, error) {
	policyFilePath := env.GetString("AUTHORIZATION_POLICY_FILE", "")

	if policyFilePath == "" {
		return "", nil
	}

	content, err := os.ReadFile(policyFilePath) // nolint:gosec
	if err != nil {
		return "", fmt.Errorf("failed to read policy file %q: %w", policyFilePath, err)
	}

	return string(content), nil
}
