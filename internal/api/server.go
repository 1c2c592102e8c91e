// Package api is the presentation boundary: an HTTP and websocket surface
// over one session.Controller.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/AaronLay10/TowerEngine/internal/events"
	"github.com/AaronLay10/TowerEngine/internal/hanoi"
	"github.com/AaronLay10/TowerEngine/internal/logger"
	"github.com/AaronLay10/TowerEngine/internal/metrics"
	"github.com/AaronLay10/TowerEngine/internal/notice"
	"github.com/AaronLay10/TowerEngine/internal/session"
	"github.com/AaronLay10/TowerEngine/internal/storage/postgres"
	"github.com/AaronLay10/TowerEngine/internal/version"
)

// HistorySource answers journal queries.
type HistorySource interface {
	Query(sessionID string, limit int) ([]postgres.EventRow, error)
}

var (
	depsMu     sync.RWMutex
	controller *session.Controller
	history    HistorySource
	notices    = notice.DefaultBuilder
)

// SetController sets the session the command routes drive.
func SetController(c *session.Controller) {
	depsMu.Lock()
	controller = c
	depsMu.Unlock()
	SetSessionReady(c != nil)
}

// SetHistory sets the journal behind /history. nil disables the route.
func SetHistory(h HistorySource) {
	depsMu.Lock()
	defer depsMu.Unlock()
	history = h
}

// SetNoticeBuilder sets the notice timing used by /ws.
func SetNoticeBuilder(b notice.Builder) {
	depsMu.Lock()
	defer depsMu.Unlock()
	notices = b
}

func getController() *session.Controller {
	depsMu.RLock()
	defer depsMu.RUnlock()
	return controller
}

func getHistory() HistorySource {
	depsMu.RLock()
	defer depsMu.RUnlock()
	return history
}

func getNotices() notice.Builder {
	depsMu.RLock()
	defer depsMu.RUnlock()
	return notices
}

type readinessState struct {
	mu                sync.RWMutex
	sessionReady      bool
	mqttConnected     bool
	mqttOptional      bool
	postgresConnected bool
	postgresOptional  bool
}

var readiness = &readinessState{mqttOptional: true, postgresOptional: true}

// SetSessionReady marks whether a controller is attached.
func SetSessionReady(ready bool) {
	readiness.mu.Lock()
	defer readiness.mu.Unlock()
	readiness.sessionReady = ready
}

// SetMQTTState records the broker link. Optional dependencies never fail /ready.
func SetMQTTState(connected, optional bool) {
	readiness.mu.Lock()
	defer readiness.mu.Unlock()
	readiness.mqttConnected = connected
	readiness.mqttOptional = optional
}

// SetPostgresState records the journal link.
func SetPostgresState(connected, optional bool) {
	readiness.mu.Lock()
	defer readiness.mu.Unlock()
	readiness.postgresConnected = connected
	readiness.postgresOptional = optional
}

type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Version   string `json:"version"`
	Hostname  string `json:"hostname"`
	Timestamp string `json:"ts"`
}

type CheckStatus struct {
	Status   string `json:"status"`
	Optional bool   `json:"optional,omitempty"`
}

type ReadinessResponse struct {
	Ready       bool                   `json:"ready"`
	Checks      map[string]CheckStatus `json:"checks"`
	NotReadyMsg string                 `json:"message,omitempty"`
}

// ErrorResponse is the body of every failed command.
type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

type ResetRequest struct {
	DiskCount int `json:"disk_count"`
}

type MoveRequest struct {
	From *int `json:"from"`
	To   *int `json:"to"`
}

type HistoryResponse struct {
	Session string              `json:"session"`
	Events  []postgres.EventRow `json:"events"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{OK: false, Error: msg})
}

// requireMethod writes 405 and returns false when r is not method.
func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.Header().Set("Allow", method)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	return true
}

// requireController writes 503 when no session is attached.
func requireController(w http.ResponseWriter) *session.Controller {
	c := getController()
	if c == nil {
		writeError(w, http.StatusServiceUnavailable, "session not ready")
	}
	return c
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	host, _ := os.Hostname()
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Service:   "hanoi",
		Version:   version.Version,
		Hostname:  host,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func readyHandler(w http.ResponseWriter, r *http.Request) {
	readiness.mu.RLock()
	defer readiness.mu.RUnlock()

	resp := ReadinessResponse{Ready: true, Checks: map[string]CheckStatus{}}
	var reasons []string

	if readiness.sessionReady {
		resp.Checks["session"] = CheckStatus{Status: "ok"}
	} else {
		resp.Ready = false
		resp.Checks["session"] = CheckStatus{Status: "not_ready"}
		reasons = append(reasons, "session not attached")
	}

	check := func(name string, connected, optional bool) {
		switch {
		case connected:
			resp.Checks[name] = CheckStatus{Status: "ok", Optional: optional}
		case optional:
			resp.Checks[name] = CheckStatus{Status: "unavailable", Optional: true}
		default:
			resp.Ready = false
			resp.Checks[name] = CheckStatus{Status: "not_ready"}
			reasons = append(reasons, name+" not connected")
		}
	}
	check("mqtt", readiness.mqttConnected, readiness.mqttOptional)
	check("postgres", readiness.postgresConnected, readiness.postgresOptional)

	status := http.StatusOK
	if !resp.Ready {
		status = http.StatusServiceUnavailable
		resp.NotReadyMsg = strings.Join(reasons, "; ")
	}
	writeJSON(w, status, resp)
}

func stateHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	c := requireController(w)
	if c == nil {
		return
	}
	writeJSON(w, http.StatusOK, c.Status())
}

func resetHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	c := requireController(w)
	if c == nil {
		return
	}

	var req ResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := c.Reset(req.DiskCount); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, c.Status())
}

func moveHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	c := requireController(w)
	if c == nil {
		return
	}

	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.From == nil || req.To == nil {
		writeError(w, http.StatusBadRequest, "from and to required")
		return
	}

	res := c.TryManualMove(*req.From, *req.To)
	status := http.StatusOK
	if !res.Applied {
		status = http.StatusConflict
	}
	writeJSON(w, status, res)
}

func autoSolveHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	c := requireController(w)
	if c == nil {
		return
	}

	if err := c.StartAutoSolve(); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, c.Status())
}

func cancelHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	c := requireController(w)
	if c == nil {
		return
	}

	c.CancelAutoSolve()
	writeJSON(w, http.StatusOK, c.Status())
}

func eventsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, events.Snapshot())
}

func historyHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	h := getHistory()
	if h == nil {
		writeError(w, http.StatusServiceUnavailable, "history unavailable")
		return
	}

	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}

	sessionID := r.URL.Query().Get("session")
	rows, err := h.Query(sessionID, postgres.ClampLimit(limit))
	if err != nil {
		logger.For("api").Warnw("history query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "history query failed")
		return
	}
	if rows == nil {
		rows = []postgres.EventRow{}
	}
	writeJSON(w, http.StatusOK, HistoryResponse{Session: sessionID, Events: rows})
}

// statusFor maps controller errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrAutoSolveRunning), errors.Is(err, hanoi.ErrInvalidMove):
		return http.StatusConflict
	case errors.Is(err, hanoi.ErrPrecondition):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// NewMux returns the routes. Command routes require credentials when auth is on.
func NewMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", uiHandler)
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/ready", readyHandler)
	mux.HandleFunc("/state", stateHandler)
	mux.HandleFunc("/events", eventsHandler)
	mux.HandleFunc("/ws", wsEventsHandler)
	mux.Handle("/metrics", metrics.Handler())

	mux.HandleFunc("/reset", RequireAnyRole(resetHandler))
	mux.HandleFunc("/move", RequireAnyRole(moveHandler))
	mux.HandleFunc("/autosolve", RequireAnyRole(autoSolveHandler))
	mux.HandleFunc("/autosolve/cancel", RequireAnyRole(cancelHandler))
	mux.HandleFunc("/history", RequireAdmin(historyHandler))
	return mux
}

// NewServer builds the HTTP server, with TLS when configured.
func NewServer(port int) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           NewMux(),
		TLSConfig:         LoadTLSConfig(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Serve runs srv until it is shut down. http.ErrServerClosed is not an error.
func Serve(srv *http.Server) error {
	log := logger.For("api")

	var err error
	if srv.TLSConfig != nil {
		log.Infow("listening", "addr", srv.Addr, "tls", true)
		err = srv.ListenAndServeTLS("", "")
	} else {
		log.Infow("listening", "addr", srv.Addr, "tls", false)
		err = srv.ListenAndServe()
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
