// Package server serves land mask previews over a WebSocket. Each message
// names a size, seed and style; the reply carries the generated rows and
// their analysis.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lawnchairsociety/landforge/internal/catalog"
	"github.com/lawnchairsociety/landforge/internal/config"
	"github.com/lawnchairsociety/landforge/internal/landgen"
	"github.com/lawnchairsociety/landforge/internal/logger"
	"github.com/lawnchairsociety/landforge/internal/mapsize"
	"github.com/lawnchairsociety/landforge/internal/params"
)

// ErrRateLimited is reported to clients that exceed the request limit.
var ErrRateLimited = errors.New("too many requests")

// Recorder stores served runs. *catalog.Catalog implements it.
type Recorder interface {
	SaveRun(r *catalog.Run) error
}

// Server is the preview server.
type Server struct {
	cfg         *config.ServerConfig
	params      *params.Params
	connLimiter *ConnLimiter
	rateLimiter *RequestRateLimiter
	recorder    Recorder

	ctx    context.Context
	cancel context.CancelFunc

	mu           sync.Mutex
	sessions     map[*Session]struct{}
	httpServer   *http.Server
	wg           sync.WaitGroup
	shutdownOnce sync.Once
}

// NewServer creates a server generating with p.
func NewServer(cfg *config.ServerConfig, p *params.Params) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		cfg:         cfg,
		params:      p,
		connLimiter: NewConnLimiter(cfg.Connections, cfg.Generation),
		rateLimiter: NewRequestRateLimiter(cfg.RateLimit),
		ctx:         ctx,
		cancel:      cancel,
		sessions:    make(map[*Session]struct{}),
	}
}

// SetRecorder records every successful generation in r.
func (s *Server) SetRecorder(r Recorder) {
	s.recorder = r
}

// Handler returns the HTTP handler serving /ws and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocketUpgrade)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

// Start listens on address until Shutdown is called.
func (s *Server) Start(address string) error {
	s.mu.Lock()
	s.httpServer = &http.Server{Addr: address, Handler: s.Handler()}
	srv := s.httpServer
	s.mu.Unlock()

	logger.Info("Preview server listening", "address", address)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("preview server: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections, closes open sessions and waits for
// them to finish or for ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.cancel()
		s.rateLimiter.Stop()

		s.mu.Lock()
		srv := s.httpServer
		for sess := range s.sessions {
			sess.Close()
		}
		s.mu.Unlock()

		if srv != nil {
			err = srv.Shutdown(ctx)
		}

		done := make(chan struct{})
		go func() {
			s.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			if err == nil {
				err = ctx.Err()
			}
		}
		logger.Info("Preview server shut down")
	})
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	st := s.connLimiter.Stats()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "ok sessions=%d ips=%d generating=%d served=%d\n", st.Sessions, st.IPs, st.Generating, st.Served)
}

// handleWebSocketUpgrade upgrades an HTTP connection to WebSocket.
func (s *Server) handleWebSocketUpgrade(w http.ResponseWriter, r *http.Request) {
	// Get the real client IP (supports X-Forwarded-For from reverse proxies)
	clientIP := getRealIP(r)

	if s.ctx.Err() != nil {
		http.Error(w, "Server is shutting down.", http.StatusServiceUnavailable)
		return
	}

	// Check connection limits before upgrading
	if !s.connLimiter.TryAcquire(clientIP) {
		logger.Warning("WebSocket connection rejected - limit exceeded",
			"remote_addr", r.RemoteAddr,
			"client_ip", clientIP)
		http.Error(w, "Too many connections. Please try again later.", http.StatusTooManyRequests)
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			allowed := s.cfg.WebSocket.IsOriginAllowed(origin, r.Host)
			if !allowed {
				logger.Warning("WebSocket connection rejected - origin not allowed",
					"origin", origin,
					"host", r.Host,
					"remote_addr", r.RemoteAddr)
			}
			return allowed
		},
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", "error", err)
		// Release the connection slot since upgrade failed
		s.connLimiter.Release(clientIP)
		return
	}

	sess := NewSession(wsConn, clientIP, s.cfg.WebSocket.MaxMessageSize)
	s.mu.Lock()
	s.sessions[sess] = struct{}{}
	s.mu.Unlock()

	s.wg.Add(1)
	go s.serveSession(sess)
}

// serveSession answers requests until the client goes away.
func (s *Server) serveSession(sess *Session) {
	defer func() {
		s.mu.Lock()
		delete(s.sessions, sess)
		s.mu.Unlock()
		s.connLimiter.Release(sess.ip)
		sess.conn.Close()
		s.wg.Done()
	}()

	logger.Debug("Preview session opened", "client_ip", sess.ip)
	for {
		req, err := sess.ReadRequest()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("Preview session read failed", "client_ip", sess.ip, "error", err)
			}
			return
		}

		resp := s.handleRequest(sess.ip, req)
		if err := sess.WriteResponse(resp); err != nil {
			logger.Debug("Preview session write failed", "client_ip", sess.ip, "error", err)
			return
		}
	}
}

// handleRequest turns one request into its reply.
func (s *Server) handleRequest(ip string, req Request) Response {
	switch strings.ToLower(strings.TrimSpace(req.Type)) {
	case RequestInfo:
		return infoResponse(req)
	case "", RequestGenerate:
	default:
		return errorResponse(req, fmt.Errorf("unknown request type %q", req.Type))
	}

	if ok, wait := s.rateLimiter.Allow(ip); !ok {
		logger.Warning("Generation request rate limited", "client_ip", ip, "retry_in", wait)
		return errorResponse(req, fmt.Errorf("%w, retry in %s", ErrRateLimited, wait.Round(time.Second)))
	}

	size, err := mapsize.Parse(req.Size)
	if err != nil {
		return errorResponse(req, err)
	}
	style, err := landgen.ParseStyle(req.Style)
	if err != nil {
		return errorResponse(req, err)
	}

	if err := s.connLimiter.AcquireGeneration(s.ctx, ip); err != nil {
		return errorResponse(req, errors.New("server is shutting down"))
	}
	res, err := landgen.Generate(size, req.Seed, style, s.params)
	s.connLimiter.ReleaseGeneration(ip)
	if err != nil {
		logger.Error("Generation failed", "size", size, "seed", req.Seed, "style", style, "error", err)
		return errorResponse(req, err)
	}

	resp := generateResponse(req, size, res)
	if s.recorder != nil {
		run := catalog.NewRun(size, res)
		if err := s.recorder.SaveRun(run); err != nil {
			logger.Error("Failed to record run", "seed", req.Seed, "style", style, "error", err)
		} else {
			resp.RunID = run.ID
		}
	}
	logger.Info("Served preview",
		"client_ip", ip,
		"size", size,
		"seed", req.Seed,
		"style", style,
		"fingerprint", resp.Fingerprint)
	return resp
}

// getRealIP extracts the real client IP from an HTTP request.
// It checks X-Forwarded-For header first (for reverse proxy setups),
// then falls back to the direct remote address.
func getRealIP(r *http.Request) string {
	// X-Forwarded-For can contain multiple IPs: "client, proxy1, proxy2"
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
			return ip
		}
	}

	// Check X-Real-IP header (alternative header used by some proxies)
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	return extractIP(r.RemoteAddr)
}
