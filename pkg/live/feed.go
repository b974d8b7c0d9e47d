package live

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/reflow-ui/reflow/pkg/tree"
)

// Feed broadcasts patch frames to every connected WebSocket client.
// Broadcast runs on the root's goroutine; connections come and go on
// HTTP handler goroutines, so the subscriber set is locked.
type Feed struct {
	upgrader websocket.Upgrader
	logger   *slog.Logger

	writeTimeout time.Duration

	mu   sync.Mutex
	subs map[*websocket.Conn]struct{}
	seq  uint64
}

// Option configures a Feed.
type Option func(*Feed)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(f *Feed) {
		f.logger = logger
	}
}

// WithWriteTimeout bounds each frame write. Defaults to 10s.
func WithWriteTimeout(d time.Duration) Option {
	return func(f *Feed) {
		f.writeTimeout = d
	}
}

// WithCheckOrigin sets the upgrade origin check.
func WithCheckOrigin(fn func(*http.Request) bool) Option {
	return func(f *Feed) {
		f.upgrader.CheckOrigin = fn
	}
}

// NewFeed creates an empty feed.
func NewFeed(opts ...Option) *Feed {
	f := &Feed{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		logger:       slog.Default(),
		writeTimeout: 10 * time.Second,
		subs:         make(map[*websocket.Conn]struct{}),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Subscribers returns the current connection count.
func (f *Feed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// Broadcast sends one settled flush's patches to every subscriber as a
// single frame. A subscriber whose write fails is dropped; the broadcast
// continues with the rest. Signature-compatible with runtime.RendererFunc.
func (f *Feed) Broadcast(patches []tree.Patch) {
	if len(patches) == 0 {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.seq++
	frame := EncodeFrame(f.seq, patches)

	for conn := range f.subs {
		conn.SetWriteDeadline(time.Now().Add(f.writeTimeout))
		if err := conn.WriteJSON(frame); err != nil {
			f.logger.Warn("subscriber dropped",
				"remote", conn.RemoteAddr(),
				"error", err)
			delete(f.subs, conn)
			conn.Close()
		}
	}
}

// ServeHTTP upgrades the request and subscribes the connection. The read
// loop discards client messages and exists to notice the close.
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Error("upgrade failed", "error", err)
		return
	}

	f.mu.Lock()
	f.subs[conn] = struct{}{}
	f.mu.Unlock()

	f.logger.Info("subscriber connected", "remote", conn.RemoteAddr())

	go f.readLoop(conn)
}

func (f *Feed) readLoop(conn *websocket.Conn) {
	defer func() {
		f.mu.Lock()
		delete(f.subs, conn)
		f.mu.Unlock()
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure) {
				f.logger.Warn("read error", "error", err)
			}
			return
		}
	}
}

// Close drops every subscriber.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for conn := range f.subs {
		conn.Close()
		delete(f.subs, conn)
	}
}

// Mount registers the feed's upgrade endpoint on a chi router.
func (f *Feed) Mount(r chi.Router, pattern string) {
	r.Get(pattern, f.ServeHTTP)
}
