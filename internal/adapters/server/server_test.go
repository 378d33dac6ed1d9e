package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/require"

	"github.com/tmoreland/bookweave/internal/adapters/logging"
)

type fakeBroadcaster struct {
	ch chan struct{}
}

func newFakeBroadcaster() *fakeBroadcaster {
	return &fakeBroadcaster{ch: make(chan struct{}, 1)}
}

func (b *fakeBroadcaster) Publish() {
	select {
	case b.ch <- struct{}{}:
	default:
	}
}

func (b *fakeBroadcaster) Subscribe() (<-chan struct{}, func()) {
	return b.ch, func() {}
}

func testLogger() *logging.Logger {
	return logging.New(logging.LevelError)
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestHandleRequest_ServesDirectFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "style.css", "body{}")

	s := NewServer(root, newFakeBroadcaster(), testLogger())
	req := httptest.NewRequest(http.MethodGet, "/style.css", nil)
	rr := httptest.NewRecorder()
	s.handleRequest(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "body{}", rr.Body.String())
}

func TestHandleRequest_CleanURLResolvesDirectoryIndex(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "guide/index.html", "<p>guide</p>")

	s := NewServer(root, newFakeBroadcaster(), testLogger())
	req := httptest.NewRequest(http.MethodGet, "/guide/", nil)
	rr := httptest.NewRecorder()
	s.handleRequest(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "<p>guide</p>", rr.Body.String())
}

func TestHandleRequest_CleanURLAppendsHTMLSuffix(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "about.html", "<p>about</p>")

	s := NewServer(root, newFakeBroadcaster(), testLogger())
	req := httptest.NewRequest(http.MethodGet, "/about", nil)
	rr := httptest.NewRecorder()
	s.handleRequest(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "<p>about</p>", rr.Body.String())
}

func TestHandleRequest_RejectsPathTraversal(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "index.html", "<p>home</p>")

	s := NewServer(root, newFakeBroadcaster(), testLogger())
	req := httptest.NewRequest(http.MethodGet, "/../../../../etc/passwd", nil)
	rr := httptest.NewRecorder()
	s.handleRequest(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "<p>home</p>", rr.Body.String())
}

func TestHandleRequest_Custom404Served(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "404.html", "<p>not here</p>")

	s := NewServer(root, newFakeBroadcaster(), testLogger())
	req := httptest.NewRequest(http.MethodGet, "/nonexistent", nil)
	rr := httptest.NewRecorder()
	s.handleRequest(rr, req)

	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, "<p>not here</p>", rr.Body.String())
}

func TestHandleRequest_SPAFallbackWithoutCustom404(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "index.html", "<p>home</p>")

	s := NewServer(root, newFakeBroadcaster(), testLogger())
	req := httptest.NewRequest(http.MethodGet, "/nonexistent", nil)
	rr := httptest.NewRecorder()
	s.handleRequest(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "<p>home</p>", rr.Body.String())
}

func TestLiveReload_PushesReloadOnPublish(t *testing.T) {
	root := t.TempDir()
	broadcaster := newFakeBroadcaster()
	s := NewServer(root, broadcaster, testLogger())

	mux := http.NewServeMux()
	mux.HandleFunc("/live-reload", s.handleLiveReload)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	wsURL := "ws" + srv.URL[len("http"):] + "/live-reload"
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	broadcaster.Publish()

	readCtx, readCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer readCancel()
	msgType, data, err := conn.Read(readCtx)
	require.NoError(t, err)
	require.Equal(t, websocket.MessageText, msgType)
	require.Equal(t, "reload", string(data))
}
