// Package server implements the HTTP/WebSocket Server: serving the
// output directory with clean-URL and SPA-style fallback resolution, and
// upgrading /live-reload connections to push a reload signal from the dev
// supervisor's broadcaster.
package server

import (
	"context"
	"errors"
	"mime"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/coder/websocket"

	"github.com/tmoreland/bookweave/internal/core/entities"
	"github.com/tmoreland/bookweave/internal/core/usecases"
)

// Server serves a built book's output directory and multiplexes reload
// signals from a usecases.Broadcaster to every connected browser.
type Server struct {
	OutputRoot  string
	Broadcaster usecases.Broadcaster
	Logger      usecases.Logger

	httpServer *http.Server
}

// NewServer creates a Server for outputRoot, pushing reload signals
// published on broadcaster to every /live-reload subscriber.
func NewServer(outputRoot string, broadcaster usecases.Broadcaster, logger usecases.Logger) *Server {
	return &Server{OutputRoot: outputRoot, Broadcaster: broadcaster, Logger: logger}
}

// ListenAndServe binds addr and blocks serving until ctx is cancelled, at
// which point it shuts down gracefully. A bind failure is a fatal ServeError.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/live-reload", s.handleLiveReload)
	mux.HandleFunc("/", s.handleRequest)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return &entities.ServeError{Op: "listen", Addr: addr, Err: err}
	}

	s.httpServer = &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- &entities.ServeError{Op: "serve", Addr: addr, Err: err}
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpServer.Shutdown(shutdownCtx)
		<-errCh
		return nil
	case err := <-errCh:
		return err
	}
}

// handleLiveReload upgrades the connection and relays every Publish() as a
// single "reload" text frame until the client disconnects.
func (s *Server) handleLiveReload(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.Logger.Warn("live-reload upgrade failed", "error", err)
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	ch, unsubscribe := s.Broadcaster.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "")
			return
		case <-ch:
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := conn.Write(writeCtx, websocket.MessageText, []byte("reload"))
			cancel()
			if err != nil {
				return
			}
		}
	}
}

// handleRequest serves outputRoot with clean-URL resolution: an exact file,
// else directory+index.html, else a .html suffix, else an SPA fallback to
// index.html (200) unless 404.html exists in outputRoot.
func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	path := s.resolveFilePath(r.URL.Path)
	if path == "" {
		s.handleNotFound(w)
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		s.handleNotFound(w)
		return
	}

	w.Header().Set("Content-Type", contentType(path))
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	_, _ = w.Write(data)
}

func (s *Server) resolveFilePath(urlPath string) string {
	cleaned := filepath.Clean(urlPath)
	if strings.Contains(cleaned, "..") {
		return ""
	}
	full := filepath.Join(s.OutputRoot, filepath.FromSlash(cleaned))

	if info, err := os.Stat(full); err == nil {
		if !info.IsDir() {
			return full
		}
		index := filepath.Join(full, "index.html")
		if _, err := os.Stat(index); err == nil {
			return index
		}
		return ""
	}

	if htmlPath := full + ".html"; fileExists(htmlPath) {
		return htmlPath
	}

	index := filepath.Join(full, "index.html")
	if fileExists(index) {
		return index
	}

	return ""
}

// handleNotFound serves outputRoot/404.html when present; otherwise it
// falls back to outputRoot/index.html with a 200, per the SPA-style default
// documented for single-page deep links.
func (s *Server) handleNotFound(w http.ResponseWriter) {
	notFound := filepath.Join(s.OutputRoot, "404.html")
	if data, err := os.ReadFile(notFound); err == nil {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write(data)
		return
	}

	index := filepath.Join(s.OutputRoot, "index.html")
	if data, err := os.ReadFile(index); err == nil {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(data)
		return
	}

	http.Error(w, "404 page not found", http.StatusNotFound)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func contentType(path string) string {
	ext := filepath.Ext(path)
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
