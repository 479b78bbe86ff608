// Package server implements the remote API: batch upload, paginated
// listing, presigned blob reads, and the assistant protocol endpoint.
package server

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"ctxkeep/internal/blobrepo"
	"ctxkeep/internal/mcp"
	"ctxkeep/internal/remotestore"
)

const (
	allowRemoteEnvKey = "CTXKEEP_ALLOW_REMOTE"
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 30 * time.Second
	writeTimeout      = 60 * time.Second
	idleTimeout       = 60 * time.Second
)

// Options tunes server behavior.
type Options struct {
	Version        string
	MaxUploadBytes int64
	PresignTTL     time.Duration
}

// Server wraps HTTP handlers for the ctxkeep API.
type Server struct {
	addr   string
	store  *remotestore.Store
	blobs  *blobrepo.LocalFS
	assist *mcp.Server
	list   *ListService
	logger *slog.Logger
	opts   Options
}

// New creates a new server instance.
func New(addr string, store *remotestore.Store, blobs *blobrepo.LocalFS, logger *slog.Logger, opts Options) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.PresignTTL <= 0 {
		opts.PresignTTL = blobrepo.DefaultPresignTTL
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 50 * 1024 * 1024
	}
	return &Server{
		addr:   addr,
		store:  store,
		blobs:  blobs,
		assist: mcp.NewServer(store, blobs, opts.Version, logger.With("component", "mcp")),
		list:   NewListService(store, blobs, opts.PresignTTL, logger),
		logger: logger,
		opts:   opts,
	}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	s.log().Info("starting server", "addr", s.addr)
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.withRequestLogging(s.routes()),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
	return server.ListenAndServe()
}

// ListenAddr converts a base API URL into a listen address.
func ListenAddr(apiURL string) (string, error) {
	if apiURL == "" {
		return "", fmt.Errorf("api url is required")
	}
	if u, err := url.Parse(apiURL); err == nil && u.Host != "" {
		host := u.Hostname()
		if !isAllowedListenHost(host) {
			return "", fmt.Errorf("remote listen host %q requires %s=true", host, allowRemoteEnvKey)
		}
		return u.Host, nil
	}

	host, _, err := net.SplitHostPort(apiURL)
	if err == nil && !isAllowedListenHost(host) {
		return "", fmt.Errorf("remote listen host %q requires %s=true", host, allowRemoteEnvKey)
	}
	return apiURL, nil
}

func isAllowedListenHost(host string) bool {
	if host == "" {
		return true
	}
	if strings.EqualFold(strings.TrimSpace(os.Getenv(allowRemoteEnvKey)), "true") {
		return true
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func (s *Server) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}
