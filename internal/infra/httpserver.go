package infra

import (
	"context"
	"net/http"
	"time"
)

// HTTPServer wraps http.Server so main can start and drain the API with the
// timeouts from Config applied in one place.
type HTTPServer struct {
	server *http.Server
}

// NewHTTPServer returns a server bound to cfg.Port serving handler. The
// write timeout has to accommodate generation requests, which block on the
// model round trip, so it comes from config rather than a constant.
func NewHTTPServer(cfg *Config, handler http.Handler) *HTTPServer {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
	}

	return &HTTPServer{server: srv}
}

// Start blocks on ListenAndServe until the server stops.
func (s *HTTPServer) Start() error {
	if s.server == nil {
		return nil
	}
	return s.server.ListenAndServe()
}

// Shutdown drains in-flight requests until ctx expires.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
