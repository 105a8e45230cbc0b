package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/coreos/go-systemd/v22/activation"
	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/rs/zerolog"

	"github.com/awsssrD/road/config"
	"github.com/awsssrD/road/site"
)

// Server serves the built preview over HTTP.
type Server struct {
	cfg          *config.Config
	svc          *site.Service
	log          zerolog.Logger
	mux          *http.ServeMux
	serverHeader string
}

// New constructs a server instance.
func New(cfg *config.Config, svc *site.Service, log zerolog.Logger, serverHeader string) *Server {
	srv := &Server{cfg: cfg, svc: svc, log: log, mux: http.NewServeMux(), serverHeader: strings.TrimSpace(serverHeader)}
	srv.routes()
	return srv
}

// Handler returns the HTTP handler including middleware.
func (s *Server) Handler() http.Handler {
	return s.withServerHeader(s.logRequests(s.mux))
}

// Start builds the preview, then serves it until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	siteCfg, err := s.svc.Site()
	if err != nil {
		return err
	}
	if report, err := s.svc.BuildPreview(ctx, siteCfg); err != nil {
		return fmt.Errorf("build preview: %w", err)
	} else if n := report.Failures(); n > 0 {
		s.log.Warn().Int("failures", n).Msg("preview has unresolved links")
	}

	listener, err := s.listen(s.cfg.Listen)
	if err != nil {
		return err
	}

	server := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(ctxShutdown)
		close(shutdownDone)
	}()

	if sent, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		s.log.Warn().Err(err).Msg("sd_notify")
	} else if sent {
		s.log.Debug().Msg("notified systemd")
	}
	s.log.Info().Str("addr", listener.Addr().String()).Msg("serving preview")

	serveErr := server.Serve(listener)
	if errors.Is(serveErr, http.ErrServerClosed) {
		<-shutdownDone
		return nil
	}
	return serveErr
}

// routes mounts the preview under the base URL it was built for, so the links
// and <base href> written by the build resolve.
func (s *Server) routes() {
	s.mux.HandleFunc("/config.json", s.handleConfig)
	s.mux.HandleFunc("/healthz", s.handleHealth)

	base := s.basePath()
	if base == "/" {
		s.mux.HandleFunc("/", s.handleStatic)
		return
	}
	s.mux.Handle(base, http.StripPrefix(strings.TrimSuffix(base, "/"), http.HandlerFunc(s.handleStatic)))
	s.mux.HandleFunc("/", s.handleRoot)
}

func (s *Server) basePath() string {
	base := strings.Trim(strings.TrimSpace(s.cfg.BaseURL), "/")
	if base == "" {
		return "/"
	}
	return "/" + base + "/"
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/" && allowRead(r.Method) {
		http.Redirect(w, r, s.basePath(), http.StatusFound)
		return
	}
	s.notFound(w, r)
}

func (s *Server) listen(address string) (net.Listener, error) {
	listeners, err := activation.Listeners()
	if err != nil {
		return nil, fmt.Errorf("systemd listener: %w", err)
	}
	for _, l := range listeners {
		if l != nil {
			return l, nil
		}
	}
	if after, ok := strings.CutPrefix(address, "unix:"); ok {
		_ = os.Remove(after)
		return net.Listen("unix", after)
	}
	return net.Listen("tcp", address)
}

func (s *Server) withServerHeader(next http.Handler) http.Handler {
	if s.serverHeader == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", s.serverHeader)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rw.status).
			Dur("duration", time.Since(start)).
			Msg("http")
	})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if !allowRead(r.Method) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	siteCfg, err := s.svc.Site()
	if err != nil {
		s.log.Error().Err(err).Msg("load site config")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, siteCfg)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !allowRead(r.Method) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	if !allowRead(r.Method) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	root := s.svc.OutputDir()
	clean := sanitizeRequestPath(r.URL.Path)
	target := filepath.Join(root, filepath.FromSlash(strings.TrimPrefix(clean, "/")))
	if !isWithin(root, target) {
		s.notFound(w, r)
		return
	}

	info, err := os.Stat(target)
	if err == nil && info.IsDir() {
		target = filepath.Join(target, "index.html")
		info, err = os.Stat(target)
	}
	if err != nil || info.IsDir() {
		s.notFound(w, r)
		return
	}
	http.ServeFile(w, r, target)
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	page, err := os.ReadFile(filepath.Join(s.svc.OutputDir(), "404.html"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	if r.Method != http.MethodHead {
		_, _ = w.Write(page)
	}
}

func allowRead(method string) bool {
	return method == http.MethodGet || method == http.MethodHead
}

func isWithin(base, target string) bool {
	baseAbs, err := filepath.Abs(base)
	if err != nil {
		return false
	}
	targetAbs, err := filepath.Abs(target)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(baseAbs, targetAbs)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	return rel != ".." && !strings.HasPrefix(rel, "../")
}

func sanitizeRequestPath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	clean := path.Clean(p)
	if clean == "." {
		return "/"
	}
	return clean
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(status int) {
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}
