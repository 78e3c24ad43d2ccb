package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"rejourney/internal/config"
	"rejourney/internal/density"
	"rejourney/internal/logging"
	"rejourney/internal/overlay"
	"rejourney/internal/playback"
	"rejourney/internal/session"
	"rejourney/internal/sessionstore"
)

const maxIngestBytes = 64 << 20

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

type statusPayload struct {
	Running       bool            `json:"running"`
	PID           int             `json:"pid"`
	StorePath     string          `json:"storePath"`
	LockFilePath  string          `json:"lockFilePath"`
	SessionCount  int             `json:"sessionCount"`
	ActiveSession string          `json:"activeSession,omitempty"`
	Playback      *playback.State `json:"playback,omitempty"`
}

type sessionListPayload struct {
	Sessions []sessionstore.Summary `json:"sessions"`
}

type timelinePayload struct {
	SessionID string          `json:"sessionId"`
	Events    []session.Event `json:"events"`
}

type playbackPayload struct {
	SessionID string          `json:"sessionId"`
	State     playback.State  `json:"state"`
	Overlay   []overlay.Touch `json:"overlay"`
}

type densityPayload struct {
	SessionID string        `json:"sessionId"`
	Strip     density.Strip `json:"strip"`
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	if cfg == nil || d == nil {
		return nil, nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	mux := http.NewServeMux()
	srv := &apiServer{
		bind:   bind,
		logger: logger,
		daemon: d,
	}

	mux.HandleFunc("/api/status", srv.handleStatus)
	mux.HandleFunc("/api/sessions", srv.handleSessions)
	mux.HandleFunc("/api/sessions/", srv.handleSession)
	mux.HandleFunc("/api/playback", srv.handlePlayback)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// Addr returns the bound listener address, or empty before start.
func (s *apiServer) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status(r.Context())
	s.writeJSON(w, http.StatusOK, statusPayload{
		Running:       status.Running,
		PID:           status.PID,
		StorePath:     status.StorePath,
		LockFilePath:  status.LockFilePath,
		SessionCount:  status.SessionCount,
		ActiveSession: status.ActiveSession,
		Playback:      status.Playback,
	})
}

func (s *apiServer) handleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		summaries, err := s.daemon.ListSessions(r.Context())
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.writeJSON(w, http.StatusOK, sessionListPayload{Sessions: summaries})
	case http.MethodPost:
		payload, err := io.ReadAll(io.LimitReader(r.Body, maxIngestBytes))
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "read payload: "+err.Error())
			return
		}
		stored, err := s.daemon.IngestPayload(r.Context(), payload)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		summary, err := s.daemon.DescribeSession(r.Context(), stored.ID)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.writeJSON(w, http.StatusCreated, summary)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleSession serves /api/sessions/{id} and the timeline and density
// subresources beneath it.
func (s *apiServer) handleSession(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" {
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	}

	switch sub {
	case "":
		s.handleSessionRoot(w, r, id)
	case "timeline":
		s.handleSessionTimeline(w, r, id)
	case "density":
		s.handleSessionDensity(w, r, id)
	default:
		s.writeError(w, http.StatusNotFound, "unknown session resource")
	}
}

func (s *apiServer) handleSessionRoot(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		if r.URL.Query().Get("full") == "1" {
			sess, err := s.daemon.GetSession(r.Context(), id)
			if err != nil {
				s.writeStoreError(w, err)
				return
			}
			s.writeJSON(w, http.StatusOK, sess)
			return
		}
		summary, err := s.daemon.DescribeSession(r.Context(), id)
		if err != nil {
			s.writeStoreError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, summary)
	case http.MethodDelete:
		if err := s.daemon.DeleteSession(r.Context(), id); err != nil {
			s.writeStoreError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *apiServer) handleSessionTimeline(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	events, err := s.daemon.SessionTimeline(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, timelinePayload{SessionID: id, Events: events})
}

func (s *apiServer) handleSessionDensity(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	strip, err := s.daemon.SessionDensity(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, densityPayload{SessionID: id, Strip: strip})
}

func (s *apiServer) handlePlayback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	touches, state, err := s.daemon.Overlay()
	if err != nil {
		if errors.Is(err, ErrNoActiveSession) {
			s.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, playbackPayload{
		SessionID: s.daemon.ActiveSession(),
		State:     state,
		Overlay:   touches,
	})
}

func (s *apiServer) writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, sessionstore.ErrSessionNotFound) {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.writeError(w, http.StatusInternalServerError, err.Error())
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String(logging.FieldComponent, "api-server"))
	}
	return logging.NewNop()
}
