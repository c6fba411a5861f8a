// Package httpx exposes the terminal engines over HTTP for the gate, rail
// and road integrations, plus websocket and SSE event streams.
package httpx

import (
	"bufio"
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/icdstack/terminal/internal/eventbus"
	"github.com/icdstack/terminal/internal/facility"
	"github.com/icdstack/terminal/internal/service/container"
	"github.com/icdstack/terminal/internal/service/yard"
	"github.com/icdstack/terminal/internal/ws"
)

// Router wires HTTP endpoints to the engines.
type Router struct {
	mux        *http.ServeMux
	logger     *slog.Logger
	containers *container.Engine
	yard       *yard.Engine
	facilities *facility.Manager
	bus        *eventbus.Bus
	hub        *ws.Hub
	upgrader   websocket.Upgrader
	limiter    RateLimiter
	dbHealth   func(context.Context) error

	metricsOnce        sync.Once
	metricsInitialized bool
	requestTotal       *prometheus.CounterVec
	requestLatency     *prometheus.HistogramVec
	rateLimitHits      *prometheus.CounterVec
}

const (
	rateWindowDefault  = time.Minute
	rateWindowRealtime = 30 * time.Second
	rateLimitGate      = 120
	rateLimitWrite     = 240
	rateLimitRead      = 600
	rateLimitStream    = 30
	healthCheckTimeout = 2 * time.Second
	sseHeartbeat       = 15 * time.Second
)

// NewRouter assembles routes with dependencies.
func NewRouter(logger *slog.Logger, containers *container.Engine, yardEngine *yard.Engine, facilities *facility.Manager, bus *eventbus.Bus, hub *ws.Hub, limiter RateLimiter, dbHealth func(context.Context) error) *Router {
	r := &Router{
		mux:        http.NewServeMux(),
		logger:     logger,
		containers: containers,
		yard:       yardEngine,
		facilities: facilities,
		bus:        bus,
		hub:        hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		limiter:  limiter,
		dbHealth: dbHealth,
	}
	if r.limiter == nil {
		r.limiter = NewMemoryRateLimiter()
	}
	r.initMetrics()
	r.register()
	return r
}

// ServeHTTP delegates to underlying mux.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Close releases background resources.
func (r *Router) Close() {
	if r.limiter != nil {
		r.limiter.Close()
	}
}

func (r *Router) register() {
	r.mux.HandleFunc("/healthz", r.audit(r.handleHealthz))
	r.mux.Handle("/metrics", promhttp.Handler())
	r.mux.HandleFunc("/containers", r.audit(r.withRateLimit("containers", rateLimitWrite, rateWindowDefault, r.handleContainers)))
	r.mux.HandleFunc("/containers/", r.audit(r.withRateLimit("containers", rateLimitGate, rateWindowDefault, r.handleContainerSubroutes)))
	r.mux.HandleFunc("/work-orders", r.audit(r.withRateLimit("work-orders", rateLimitWrite, rateWindowDefault, r.handleWorkOrders)))
	r.mux.HandleFunc("/work-orders/", r.audit(r.withRateLimit("work-orders", rateLimitWrite, rateWindowDefault, r.handleWorkOrderSubroutes)))
	r.mux.HandleFunc("/facilities", r.audit(r.withRateLimit("facilities", rateLimitWrite, rateWindowDefault, r.handleFacilities)))
	r.mux.HandleFunc("/facilities/", r.audit(r.withRateLimit("facilities", rateLimitRead, rateWindowDefault, r.handleFacilitySubroutes)))
	r.mux.HandleFunc("/zones/", r.audit(r.withRateLimit("zones", rateLimitWrite, rateWindowDefault, r.handleZoneSubroutes)))
	r.mux.HandleFunc("/events", r.audit(r.withRateLimit("events", rateLimitRead, rateWindowDefault, r.handleEventHistory)))
	r.mux.HandleFunc("/events/stream", r.audit(r.withRateLimit("events-stream", rateLimitStream, rateWindowRealtime, r.handleEventsSSE)))
	r.mux.HandleFunc("/ws/events", r.audit(r.withRateLimit("events-ws", rateLimitStream, rateWindowRealtime, r.handleEventsWS)))
}

func (r *Router) handleHealthz(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	components := make(map[string]any)
	status := "ok"
	if r.dbHealth != nil {
		ctx, cancel := context.WithTimeout(req.Context(), healthCheckTimeout)
		defer cancel()
		if err := r.dbHealth(ctx); err != nil {
			status = "degraded"
			components["database"] = map[string]any{
				"status": "down",
				"error":  err.Error(),
			}
		} else {
			components["database"] = map[string]any{"status": "up"}
		}
	}
	payload := map[string]any{
		"status":     status,
		"components": components,
		"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
	}
	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, payload)
}

func (r *Router) handleEventsWS(w http.ResponseWriter, req *http.Request) {
	facilityID := req.URL.Query().Get("facility_id")
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	client := ws.NewClient(conn, r.logger)
	r.hub.Register(facilityID, client)
	go func() {
		defer func() {
			r.hub.Unregister(facilityID, client)
			client.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

func (r *Router) handleEventsSSE(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	headers := w.Header()
	headers.Set("Content-Type", "text/event-stream")
	headers.Set("Cache-Control", "no-cache")
	headers.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	facilityID := req.URL.Query().Get("facility_id")
	client := ws.NewSSEClient(w, flusher, r.logger)
	r.hub.Register(facilityID, client)
	defer func() {
		r.hub.Unregister(facilityID, client)
		client.Close()
	}()

	ticker := time.NewTicker(sseHeartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-req.Context().Done():
			return
		case <-ticker.C:
			if err := client.Heartbeat(); err != nil {
				return
			}
		}
	}
}

func (r *Router) audit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w}
		start := time.Now()
		next(recorder, req)

		status := recorder.status
		if status == 0 {
			status = http.StatusOK
		}
		duration := time.Since(start)
		fields := []any{
			"method", req.Method,
			"path", req.URL.Path,
			"status", status,
			"bytes", recorder.bytes,
			"duration_ms", duration.Milliseconds(),
		}
		if ip := clientIP(req); ip != "" {
			fields = append(fields, "ip", ip)
		}
		if reqID := strings.TrimSpace(req.Header.Get("X-Request-ID")); reqID != "" {
			fields = append(fields, "request_id", reqID)
		}
		if operator := strings.TrimSpace(req.Header.Get("X-Operator-ID")); operator != "" {
			fields = append(fields, "operator_id", operator)
		}
		r.recordRequestMetrics(req.Method, routeLabel(req.URL.Path), status, duration)

		switch {
		case status >= http.StatusInternalServerError:
			r.logger.Error("http_request", fields...)
		case status >= http.StatusBadRequest:
			r.logger.Warn("http_request", fields...)
		default:
			r.logger.Info("http_request", fields...)
		}
	}
}

// routeLabel collapses paths with embedded ids to their first segment so the
// metrics cardinality stays bounded.
func routeLabel(path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	if idx := strings.IndexRune(trimmed, '/'); idx > 0 {
		return "/" + trimmed[:idx]
	}
	return "/" + trimmed
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if sr.status == 0 {
		sr.status = http.StatusOK
	}
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}

func (sr *statusRecorder) Flush() {
	if f, ok := sr.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (sr *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := sr.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, errors.New("hijacker not supported")
}

func clientIP(req *http.Request) string {
	if forwarded := strings.TrimSpace(req.Header.Get("X-Forwarded-For")); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if len(parts) > 0 {
			ip := strings.TrimSpace(parts[0])
			if ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(req.RemoteAddr))
	if err != nil {
		return strings.TrimSpace(req.RemoteAddr)
	}
	return host
}

func (r *Router) methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func (r *Router) notFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, "not found")
}
