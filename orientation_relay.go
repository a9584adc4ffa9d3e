package arcard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

// relayPage is served to the phone. It asks for motion permission on the
// first tap (required on iOS) and streams deviceorientation readings.
const relayPage = `<!doctype html>
<html><head><meta name="viewport" content="width=device-width,initial-scale=1">
<title>arcard tilt relay</title></head>
<body style="font-family:sans-serif;text-align:center;padding-top:40vh">
<button id="go" style="font-size:1.4em;padding:.6em 1.2em">Share tilt</button>
<p id="status"></p>
<script>
const status = document.getElementById("status");
function stream() {
  const ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
  ws.onopen = () => { status.textContent = "streaming"; };
  ws.onclose = () => { status.textContent = "disconnected"; };
  window.addEventListener("deviceorientation", (e) => {
    if (ws.readyState === 1) ws.send(JSON.stringify({beta: e.beta || 0, gamma: e.gamma || 0}));
  });
}
document.getElementById("go").onclick = () => {
  const D = window.DeviceOrientationEvent;
  if (D && typeof D.requestPermission === "function") {
    D.requestPermission().then((r) => { r === "granted" ? stream() : (status.textContent = "denied"); })
      .catch(() => { status.textContent = "unsupported"; });
  } else if (D) { stream(); } else { status.textContent = "unsupported"; }
};
</script></body></html>`

var relayUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// RelayMotionSource serves a small web page that a phone opens to stream its
// device orientation over a websocket. The phone handles its own permission
// prompt; if it never connects, no samples arrive.
type RelayMotionSource struct {
	addr string
	log  *slog.Logger

	mu       sync.Mutex
	listener net.Listener
}

// NewRelayMotionSource creates a relay listening on addr (host:port).
func NewRelayMotionSource(addr string, log *slog.Logger) *RelayMotionSource {
	if log == nil {
		log = slog.Default()
	}
	return &RelayMotionSource{addr: addr, log: log}
}

// RequestPermission binds the listen address.
func (r *RelayMotionSource) RequestPermission(ctx context.Context) (bool, error) {
	if _, err := r.listen(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (r *RelayMotionSource) listen(ctx context.Context) (net.Listener, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listener != nil {
		return r.listener, nil
	}
	var lc net.ListenConfig
	l, err := lc.Listen(ctx, "tcp", r.addr)
	if err != nil {
		return nil, fmt.Errorf("relay listen %s: %w", r.addr, err)
	}
	r.listener = l
	r.log.Info("orientation: relay listening", "addr", l.Addr().String())
	return l, nil
}

// Addr returns the bound address, or nil before RequestPermission/Samples.
func (r *RelayMotionSource) Addr() net.Addr {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listener == nil {
		return nil
	}
	return r.listener.Addr()
}

// Samples serves the relay until ctx is done.
func (r *RelayMotionSource) Samples(ctx context.Context) (<-chan MotionSample, error) {
	l, err := r.listen(ctx)
	if err != nil {
		return nil, err
	}

	hub := newRelayHub(r.log)
	srv := &http.Server{Handler: hub.router(), ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.log.Warn("orientation: relay server", "err", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		hub.close()
		r.mu.Lock()
		r.listener = nil
		r.mu.Unlock()
	}()
	return hub.out, nil
}

// relayHub fans websocket readings into a single sample channel and tracks
// the hijacked connections so they can be closed on shutdown.
type relayHub struct {
	log *slog.Logger
	out chan MotionSample

	mu     sync.Mutex
	conns  map[*websocket.Conn]struct{}
	closed bool
}

func newRelayHub(log *slog.Logger) *relayHub {
	if log == nil {
		log = slog.Default()
	}
	return &relayHub{
		log:   log,
		out:   make(chan MotionSample, 16),
		conns: make(map[*websocket.Conn]struct{}),
	}
}

func (h *relayHub) router() *mux.Router {
	rt := mux.NewRouter()
	rt.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(relayPage))
	}).Methods(http.MethodGet)
	rt.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprintln(w, "OK")
	}).Methods(http.MethodGet)
	rt.HandleFunc("/ws", h.serveWS).Methods(http.MethodGet)
	return rt
}

func (h *relayHub) serveWS(w http.ResponseWriter, req *http.Request) {
	conn, err := relayUpgrader.Upgrade(w, req, nil)
	if err != nil {
		h.log.Debug("orientation: relay upgrade", "err", err)
		return
	}
	if !h.track(conn) {
		conn.Close()
		return
	}
	defer h.untrack(conn)
	h.log.Info("orientation: relay client connected", "remote", req.RemoteAddr)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("orientation: relay read", "err", err)
			}
			return
		}
		sample, err := parseMotionPayload(data, time.Now())
		if err != nil {
			h.log.Debug("orientation: relay payload", "err", err)
			continue
		}
		h.send(sample)
	}
}

func (h *relayHub) track(c *websocket.Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.conns[c] = struct{}{}
	return true
}

func (h *relayHub) untrack(c *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, c)
	h.mu.Unlock()
	c.Close()
}

func (h *relayHub) send(s MotionSample) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	select {
	case h.out <- s:
	default:
	}
}

func (h *relayHub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for c := range h.conns {
		c.Close()
	}
	close(h.out)
}
