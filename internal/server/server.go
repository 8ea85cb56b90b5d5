// Package server exposes the pipeline over HTTP. The routing here is a
// thin consumer: session auth and ownership checks live with external
// collaborators, and every error leaving a handler is reduced to a
// catalogue message.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/hostling/guestgate/internal/config"
	"github.com/hostling/guestgate/internal/docstore"
	"github.com/hostling/guestgate/internal/pipeline"
	"github.com/hostling/guestgate/internal/property"
	"github.com/hostling/guestgate/internal/secerr"
	"github.com/hostling/guestgate/internal/topic"
)

// notFoundMessage is the single response body for a failed or locked
// verification. Byte-identical across no-match, caller lockout, and
// resource lockout so neither dimension can be probed.
const notFoundMessage = "Reservation not found. Please check your details and try again."

// Server is the HTTP front for the pipeline.
type Server struct {
	mu      sync.RWMutex
	cfg     *config.Config
	pipe    *pipeline.Pipeline
	store   docstore.Store
	httpSrv *http.Server
	cfgPath string
}

// New creates a server around an assembled pipeline.
func New(cfg *config.Config, cfgPath string, pipe *pipeline.Pipeline, store docstore.Store) *Server {
	s := &Server{cfg: cfg, cfgPath: cfgPath, pipe: pipe, store: store}

	r := mux.NewRouter()
	r.Use(s.requestID)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/v1/chat", s.handleChat).Methods(http.MethodPost)
	r.HandleFunc("/v1/verify", s.handleVerify).Methods(http.MethodPost)
	r.HandleFunc("/v1/calendar/sync", s.handleCalendarSync).Methods(http.MethodPost)

	s.httpSrv = &http.Server{
		Addr:              cfg.Listen,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Serve blocks until the listener fails or Shutdown is called.
func (s *Server) Serve() error {
	fmt.Fprintf(os.Stderr, "guestgate: listening on %s\n", s.cfg.Listen)
	err := s.httpSrv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// ReloadConfig re-reads the security configuration from disk and pushes
// the enforced policies into the running pipeline: the endpoint budget
// table, the brute-force lockout policy, and the fetch bounds all take
// effect on the next request. Listen address, store, and LLM settings
// still need a restart.
func (s *Server) ReloadConfig() error {
	cfg, err := config.Load(s.cfgPath)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()

	s.pipe.Limiter.Reload(cfg.Endpoints)
	s.pipe.Guard.Reload(cfg.BruteForce)
	s.pipe.Fetcher.Reload(cfg.Fetch)
	return nil
}

// requestID tags each request for correlation in logs.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r)
	})
}

// clientIP is the rate-limit identity when no session is supplied.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i > 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps a pipeline error to its catalogue message. The
// internal reason goes to stderr, never to the client.
func writeError(w http.ResponseWriter, err error) {
	fmt.Fprintf(os.Stderr, "guestgate: request failed: %v\n", err)

	status := http.StatusInternalServerError
	switch secerr.KindOf(err) {
	case secerr.PolicyDenied:
		status = http.StatusTooManyRequests
	case secerr.ValidationRejected:
		status = http.StatusBadRequest
	case secerr.SecurityBlocked:
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, map[string]string{"error": secerr.ClientMessage(err)})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type chatRequest struct {
	PropertyID string `json:"property_id"`
	SessionID  string `json:"session_id"`
	Question   string `json:"question"`
	Context    string `json:"context"`
}

type chatResponse struct {
	Answer  string  `json:"answer"`
	Context string  `json:"context"`
	Source  string  `json:"context_source"`
	Conf    float64 `json:"context_confidence"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PropertyID == "" {
		writeError(w, secerr.New(secerr.ValidationRejected, "invalid_request"))
		return
	}

	rec, err := property.Load(r.Context(), s.store, req.PropertyID)
	if err != nil {
		writeError(w, secerr.Wrap(secerr.InfrastructureFailure, "store_failed", err))
		return
	}
	if rec == nil {
		writeError(w, secerr.New(secerr.ValidationRejected, "unknown_property"))
		return
	}

	identifier := req.SessionID
	if identifier == "" {
		identifier = clientIP(r)
	}

	resp, err := s.pipe.Chat(r.Context(), rec, pipeline.ChatRequest{
		Question:       req.Question,
		Identifier:     identifier,
		DefaultContext: topic.Context(req.Context),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Answer:  resp.Answer,
		Context: string(resp.Context.Context),
		Source:  string(resp.Context.Source),
		Conf:    resp.Context.Confidence,
	})
}

type verifyRequest struct {
	PropertyID string `json:"property_id"`
	GuestName  string `json:"guest_name"`
	Code       string `json:"code"`
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PropertyID == "" {
		writeError(w, secerr.New(secerr.ValidationRejected, "invalid_request"))
		return
	}

	caller := clientIP(r)
	ok := s.pipe.Verify(r.Context(), caller, req.PropertyID, func() bool {
		return s.matchReservation(r.Context(), req)
	})
	if !ok {
		// Same body for lockout and miss.
		writeJSON(w, http.StatusNotFound, map[string]string{"error": notFoundMessage})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"verified": true})
}

// matchReservation is the external identity check, kept behind the
// guard. Reservations live in the document store keyed by property and
// verification code.
func (s *Server) matchReservation(ctx context.Context, req verifyRequest) bool {
	doc, ok, err := s.store.Get(ctx, "reservation:"+req.PropertyID+":"+req.Code)
	if err != nil || !ok {
		return false
	}
	name, _ := doc["guest_name"].(string)
	return strings.EqualFold(strings.TrimSpace(name), strings.TrimSpace(req.GuestName))
}

type syncRequest struct {
	PropertyID string `json:"property_id"`
	URL        string `json:"url"`
}

func (s *Server) handleCalendarSync(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeError(w, secerr.New(secerr.ValidationRejected, "invalid_request"))
		return
	}

	body, err := s.pipe.SyncCalendar(r.Context(), clientIP(r), req.URL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bytes": len(body)})
}
