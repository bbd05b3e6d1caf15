package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/acme/autocert"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultPort    = "8080"
	DefaultTLSMode = TLSModeAutoCert

	TLSModeAutoCert = "autocert"
	TLSModeFile     = "file"

	readHeaderTimeout = 5 * time.Second
	readTimeout       = 30 * time.Second
	writeTimeout      = 60 * time.Second
	idleTimeout       = 120 * time.Second
	shutdownTimeout   = 15 * time.Second
)

type Server struct {
	Port string
	Host string
	TLS  ServerTLS
}

type ServerTLS struct {
	Enabled  bool
	Mode     string
	AutoCert *ServerTLSAutoCert
	CertFile string
	KeyFile  string
}

type ServerTLSAutoCert struct {
	CacheDir string
	Domains  []string
	Email    string
}

type UnknownTLSModeError struct {
	Mode string
}

func (err UnknownTLSModeError) Error() string {
	return fmt.Sprintf("unknown tls mode %q", err.Mode)
}

var ErrNoAutoCertDomains = errors.New("autocert requires at least one domain")

func (s *Server) address() string {
	port := s.Port
	if port == "" {
		port = DefaultPort
	}

	return net.JoinHostPort(s.Host, port)
}

func newHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}

// Run serves handler until ctx is done, then shuts the listeners down gracefully.
func (s *Server) Run(ctx context.Context, handler http.Handler) error {
	servers, serve, err := s.prepare(handler)
	if err != nil {
		return err
	}

	g, gCtx := errgroup.WithContext(ctx)

	for i, srv := range servers {
		g.Go(func() error {
			err := serve[i]()
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("failed to serve on %s: %w", srv.Addr, err)
			}

			return nil
		})
	}

	g.Go(func() error {
		<-gCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		var errs []error

		for _, srv := range servers {
			err := srv.Shutdown(shutdownCtx)
			if err != nil {
				errs = append(errs, fmt.Errorf("failed to shutdown server on %s: %w", srv.Addr, err))
			}
		}

		slog.InfoContext(ctx, "server stopped")

		return errors.Join(errs...)
	})

	return g.Wait()
}

func (s *Server) prepare(handler http.Handler) ([]*http.Server, []func() error, error) {
	if !s.TLS.Enabled {
		srv := newHTTPServer(s.address(), handler)

		slog.Info("starting server", "address", "http://"+srv.Addr)

		return []*http.Server{srv}, []func() error{srv.ListenAndServe}, nil
	}

	switch s.TLS.Mode {
	case TLSModeFile:
		srv := newHTTPServer(s.address(), handler)

		slog.Info("starting server", "address", "https://"+srv.Addr)

		return []*http.Server{srv}, []func() error{
			func() error { return srv.ListenAndServeTLS(s.TLS.CertFile, s.TLS.KeyFile) },
		}, nil
	case TLSModeAutoCert:
		if s.TLS.AutoCert == nil || len(s.TLS.AutoCert.Domains) == 0 {
			return nil, nil, ErrNoAutoCertDomains
		}

		certManager := &autocert.Manager{
			Prompt:     autocert.AcceptTOS,
			Cache:      autocert.DirCache(s.TLS.AutoCert.CacheDir),
			HostPolicy: autocert.HostWhitelist(s.TLS.AutoCert.Domains...),
			Email:      s.TLS.AutoCert.Email,
		}

		httpsSrv := newHTTPServer(net.JoinHostPort(s.Host, "443"), handler)
		httpsSrv.TLSConfig = &tls.Config{
			GetCertificate: certManager.GetCertificate,
			MinVersion:     tls.VersionTLS12,
			NextProtos:     []string{"h2", "http/1.1", "acme-tls/1"},
		}

		// Port 80 answers ACME challenges and redirects everything else to https.
		httpSrv := newHTTPServer(net.JoinHostPort(s.Host, "80"), certManager.HTTPHandler(nil))

		slog.Info("starting server", "address", domainsToHTTPSAddress(s.TLS.AutoCert.Domains))

		return []*http.Server{httpsSrv, httpSrv}, []func() error{
			func() error { return httpsSrv.ListenAndServeTLS("", "") },
			httpSrv.ListenAndServe,
		}, nil
	default:
		return nil, nil, &UnknownTLSModeError{Mode: s.TLS.Mode}
	}
}

func domainsToHTTPSAddress(domains []string) string {
	addresses := make([]string, 0, len(domains))

	for _, domain := range domains {
		addresses = append(addresses, "https://"+domain)
	}

	return strings.Join(addresses, ", ")
}
