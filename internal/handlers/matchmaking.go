// internal/handlers/matchmaking.go
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jason-s-yu/dsaduel/internal/historian"
	"github.com/jason-s-yu/dsaduel/internal/models"
	"github.com/sirupsen/logrus"
)

// handleJoin queues the caller or pairs it with the oldest waiter.
// Only the second joiner learns about the room here; the first polls its ticket.
func (s *APIServer) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.Matchmaker.Join(r.Context(), req.Name)
	if err != nil {
		status := errorStatus(err)
		s.Log.WithError(err).WithField("name", req.Name).Error("join failed")
		if status == http.StatusServiceUnavailable {
			writeError(w, status, "no questions available, seed questions and try again")
			return
		}
		writeError(w, status, "could not join matchmaking")
		return
	}

	if res.Status == models.TicketWaiting {
		writeJSON(w, http.StatusOK, joinResponse{
			Status: string(models.TicketWaiting),
			Ticket: res.Ticket.String(),
		})
		return
	}

	s.publish(r.Context(), historian.NewRoomEvent(res.Room.ID, historian.EventRoomCreated, req.Name, map[string]any{
		"participants": res.Room.Participants,
		"question":     res.Room.Question.Title,
	}))
	writeJSON(w, http.StatusOK, joinResponse{
		Status: string(models.TicketPaired),
		RoomID: res.Room.ID.String(),
	})
}

// handleTicketStatus lets a waiting participant discover its pairing.
func (s *APIServer) handleTicketStatus(w http.ResponseWriter, r *http.Request) {
	ticket, err := parseID(chi.URLParam(r, "ticket"), models.ErrTicketNotFound)
	if err != nil {
		writeError(w, http.StatusNotFound, "ticket not found")
		return
	}

	t, err := s.Matchmaker.Lookup(r.Context(), ticket)
	if err != nil {
		status := errorStatus(err)
		if status == http.StatusNotFound {
			writeError(w, status, "ticket not found")
			return
		}
		s.Log.WithError(err).WithField("ticket", ticket).Error("ticket lookup failed")
		writeError(w, status, "could not read ticket")
		return
	}

	resp := ticketResponse{
		Ticket:   t.Ticket.String(),
		Status:   string(t.Status),
		Position: t.Position,
	}
	if t.Status == models.TicketPaired {
		resp.RoomID = t.RoomID.String()
		s.Log.WithFields(logrus.Fields{"ticket": ticket, "room": t.RoomID}).Debug("waiter discovered pairing")
	}
	writeJSON(w, http.StatusOK, resp)
}
