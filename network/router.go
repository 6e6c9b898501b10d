package network

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"swarm/game"
	"swarm/records"
	"swarm/room"
)

const maxBonusCount = 20

// Server serves the websocket endpoint and the room/records API.
type Server struct {
	rooms *room.Manager
	runs  records.Storage
	log   *zap.Logger
}

// NewServer wires a room manager and an optional run store. runs may be nil.
func NewServer(rooms *room.Manager, runs records.Storage, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{rooms: rooms, runs: runs, log: log}
}

// Routes returns the router for the whole server.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/ws", s.ServeWS)

	r.Route("/api", func(r chi.Router) {
		r.Use(requestLogger(s.log))

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
		r.Get("/rooms", s.listRooms)
		r.Post("/rooms", s.createRoom)
		r.Get("/rooms/{code}", s.getRoom)
		r.Post("/rooms/{code}/bonus", s.spawnBonus)
		r.Get("/runs", s.topRuns)
		r.Get("/runs/{id}", s.getRun)
	})
	return r
}

// listRooms handles GET /api/rooms
func (s *Server) listRooms(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.rooms.ListRooms())
}

// createRoom handles POST /api/rooms
func (s *Server) createRoom(w http.ResponseWriter, r *http.Request) {
	code, err := s.rooms.CreateRoom()
	if err != nil {
		s.log.Error("create room failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "could not create room")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"code": code})
}

// getRoom handles GET /api/rooms/{code}
func (s *Server) getRoom(w http.ResponseWriter, r *http.Request) {
	rm, ok := s.rooms.Get(strings.ToUpper(chi.URLParam(r, "code")))
	if !ok {
		respondError(w, http.StatusNotFound, "room not found")
		return
	}
	respondJSON(w, http.StatusOK, rm.Info())
}

// spawnBonus handles POST /api/rooms/{code}/bonus
func (s *Server) spawnBonus(w http.ResponseWriter, r *http.Request) {
	rm, ok := s.rooms.Get(strings.ToUpper(chi.URLParam(r, "code")))
	if !ok {
		respondError(w, http.StatusNotFound, "room not found")
		return
	}
	var req struct {
		Type  game.EnemyType `json:"enemyType"`
		Count int            `json:"count"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	switch req.Type {
	case game.Grunt, game.Runner, game.Tank:
	default:
		respondError(w, http.StatusBadRequest, "unknown enemy type")
		return
	}
	if req.Count < 1 || req.Count > maxBonusCount {
		respondError(w, http.StatusBadRequest, "count must be between 1 and "+strconv.Itoa(maxBonusCount))
		return
	}
	if !rm.Submit(room.Bonus{Type: req.Type, Count: req.Count}) {
		respondError(w, http.StatusNotFound, "room stopped")
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]int{"queued": req.Count})
}

// topRuns handles GET /api/runs?limit=n
func (s *Server) topRuns(w http.ResponseWriter, r *http.Request) {
	limit := records.DefaultTopRuns
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	if s.runs == nil {
		respondJSON(w, http.StatusOK, []records.Run{})
		return
	}
	runs, err := s.runs.TopRuns(limit)
	if err != nil {
		s.log.Error("list runs failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "could not list runs")
		return
	}
	if runs == nil {
		runs = []records.Run{}
	}
	respondJSON(w, http.StatusOK, runs)
}

// getRun handles GET /api/runs/{id}
func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		respondError(w, http.StatusNotFound, "run not found")
		return
	}
	run, err := s.runs.GetRun(chi.URLParam(r, "id"))
	if errors.Is(err, records.ErrNotFound) {
		respondError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		s.log.Error("get run failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "could not load run")
		return
	}
	respondJSON(w, http.StatusOK, run)
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("took", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
