package uiapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/julienfritschheydon/doodates-scheduler/internal/engine"
	"github.com/julienfritschheydon/doodates-scheduler/internal/store"
)

// Server exposes the poll store and the slot-optimization engine over HTTP.
type Server struct {
	store    *store.Store
	calendar engine.CalendarSource
	log      zerolog.Logger
}

// NewServer creates the API server. calendar may be nil when no calendar
// bridge is configured; suggestions then run without busy data.
func NewServer(st *store.Store, calendar engine.CalendarSource, log zerolog.Logger) *Server {
	return &Server{
		store:    st,
		calendar: calendar,
		log:      log,
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// CORS for local development
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Post("/polls", s.handleCreatePoll)
		r.Get("/polls", s.handleListPolls)
		r.Get("/polls/{id}", s.handleGetPoll)
		r.Get("/polls/{id}/availability", s.handleListAvailability)
		r.Post("/polls/{id}/availability", s.handleAddAvailability)
		r.Delete("/availability/{id}", s.handleDeleteAvailability)
		r.Get("/polls/{id}/rules", s.handleGetRules)
		r.Put("/polls/{id}/rules", s.handleUpdateRules)
		r.Post("/polls/{id}/suggestions", s.handleSuggestions)
	})

	return r
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": "1.0.0",
	})
}

type createPollRequest struct {
	Title string `json:"title"`
}

func (s *Server) handleCreatePoll(w http.ResponseWriter, r *http.Request) {
	var req createPollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	poll := &store.Poll{Title: req.Title}
	if err := s.store.CreatePoll(poll); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, poll)
}

func (s *Server) handleListPolls(w http.ResponseWriter, r *http.Request) {
	polls, err := s.store.ListPolls()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, polls)
}

func (s *Server) handleGetPoll(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	poll, err := s.store.GetPoll(id)
	if err != nil {
		respondError(w, http.StatusNotFound, "poll not found")
		return
	}
	respondJSON(w, http.StatusOK, poll)
}

// availabilityRequest accepts either a recurring weekday entry or a
// concrete dated entry, mirroring the two shapes the engine accepts. The
// weekday may arrive in English or French (the AI layer emits either).
type availabilityRequest struct {
	Weekday string             `json:"weekday,omitempty"`
	Date    string             `json:"date,omitempty"`
	Ranges  []engine.TimeRange `json:"ranges"`
}

func (s *Server) handleAddAvailability(w http.ResponseWriter, r *http.Request) {
	pollID := chi.URLParam(r, "id")

	if _, err := s.store.GetPoll(pollID); err != nil {
		respondError(w, http.StatusNotFound, "poll not found")
		return
	}

	var req availabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Ranges) == 0 {
		respondError(w, http.StatusBadRequest, "at least one time range is required")
		return
	}

	entry := &store.AvailabilityEntry{PollID: pollID}

	switch {
	case req.Weekday != "":
		day, err := engine.ParseWeekday(req.Weekday)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		entry.Weekday = day
	case req.Date != "":
		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid date format (use YYYY-MM-DD)")
			return
		}
		entry.Date = date
	default:
		respondError(w, http.StatusBadRequest, "either weekday or date is required")
		return
	}
	entry.Ranges = req.Ranges

	if err := s.store.SaveAvailability(entry); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleListAvailability(w http.ResponseWriter, r *http.Request) {
	pollID := chi.URLParam(r, "id")
	entries, err := s.store.ListAvailability(pollID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

func (s *Server) handleDeleteAvailability(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.DeleteAvailability(id); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "deleted", "id": id})
}

func (s *Server) handleGetRules(w http.ResponseWriter, r *http.Request) {
	pollID := chi.URLParam(r, "id")
	rules, err := s.store.GetRules(pollID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, rules)
}

func (s *Server) handleUpdateRules(w http.ResponseWriter, r *http.Request) {
	pollID := chi.URLParam(r, "id")

	if _, err := s.store.GetPoll(pollID); err != nil {
		respondError(w, http.StatusNotFound, "poll not found")
		return
	}

	var rules engine.Rules
	if err := json.NewDecoder(r.Body).Decode(&rules); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.store.SaveRules(pollID, rules); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, rules)
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pollID := chi.URLParam(r, "id")

	if _, err := s.store.GetPoll(pollID); err != nil {
		respondError(w, http.StatusNotFound, "poll not found")
		return
	}

	entries, err := s.store.ListAvailability(pollID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	rules, err := s.store.GetRules(pollID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	availability := make([]engine.Availability, 0, len(entries))
	for _, e := range entries {
		availability = append(availability, e.Availability)
	}

	proposals := engine.OptimizeSchedule(ctx, availability, rules, s.calendar, time.Now())

	s.log.Info().Str("poll", pollID).Int("proposals", len(proposals)).Msg("computed suggestions")
	respondJSON(w, http.StatusOK, proposals)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
