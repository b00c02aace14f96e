// internal/handlers/api_server.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jason-s-yu/dsaduel/internal/historian"
	"github.com/jason-s-yu/dsaduel/internal/matchmaking"
	"github.com/jason-s-yu/dsaduel/internal/middleware"
	"github.com/jason-s-yu/dsaduel/internal/question"
	"github.com/jason-s-yu/dsaduel/internal/room"
	"github.com/sirupsen/logrus"
)

// APIServer is the polling API. It holds the matchmaker, the room store and the
// question bank, and reports room activity to the historian.
type APIServer struct {
	Matchmaker *matchmaking.Matchmaker
	Rooms      room.Store
	Questions  question.Bank
	Events     historian.Publisher
	Log        logrus.FieldLogger
}

func NewAPIServer(mm *matchmaking.Matchmaker, rooms room.Store, bank question.Bank, events historian.Publisher, logger logrus.FieldLogger) *APIServer {
	if events == nil {
		events = historian.NopPublisher{}
	}
	return &APIServer{
		Matchmaker: mm,
		Rooms:      rooms,
		Questions:  bank,
		Events:     events,
		Log:        logger,
	}
}

// Routes builds the router. corsOrigins lists the browser origins allowed to poll.
func (s *APIServer) Routes(corsOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.LogMiddleware(s.Log))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/", s.handleHealth)

	r.Route("/api", func(api chi.Router) {
		api.Post("/seed-questions", s.handleSeedQuestions)

		api.Post("/matchmaking/join", s.handleJoin)
		api.Get("/matchmaking/status/{ticket}", s.handleTicketStatus)

		api.Get("/rooms", s.handleFindRoom)
		api.Route("/room/{room_id}", func(rr chi.Router) {
			rr.Get("/", s.handleGetRoom)
			rr.Get("/messages", s.handleListMessages)
			rr.Post("/messages", s.handleSendMessage)
			rr.Put("/editor", s.handleSetEditor)
		})
	})
	return r
}

// handleHealth is the liveness probe the client hits on load.
func (s *APIServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	waiting, err := s.Matchmaker.Waiting(r.Context())
	if err != nil {
		s.Log.WithError(err).Error("health: failed to read queue length")
		writeError(w, http.StatusServiceUnavailable, "queue unavailable")
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Message: "DSA Duel backend running",
		Waiting: waiting,
	})
}

// publish reports room activity. Losing an event never fails the request.
func (s *APIServer) publish(ctx context.Context, ev historian.RoomEvent) {
	if err := s.Events.Publish(ctx, ev); err != nil {
		s.Log.WithError(err).WithFields(logrus.Fields{
			"room":  ev.RoomID,
			"event": ev.Type,
		}).Warn("failed to publish room event")
	}
}
