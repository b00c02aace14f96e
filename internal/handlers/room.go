// internal/handlers/room.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jason-s-yu/dsaduel/internal/historian"
	"github.com/jason-s-yu/dsaduel/internal/models"
)

// writeStoreError reports a room store failure. NotFound is terminal for the
// client: the room no longer exists.
func (s *APIServer) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	if status == http.StatusNotFound {
		writeError(w, status, "room not found")
		return
	}
	s.Log.WithError(err).WithField("path", r.URL.Path).Error("room store failure")
	writeError(w, status, "internal error")
}

func (s *APIServer) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "room_id"), models.ErrRoomNotFound)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	rm, err := s.Rooms.Get(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rm)
}

// handleFindRoom serves GET /api/rooms?participant=name: the newest room that
// lists the name.
func (s *APIServer) handleFindRoom(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("participant"))
	if name == "" {
		writeError(w, http.StatusBadRequest, "participant is required")
		return
	}
	rm, err := s.Rooms.FindByParticipant(r.Context(), name)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rm)
}

func (s *APIServer) handleListMessages(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "room_id"), models.ErrRoomNotFound)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	msgs, err := s.Rooms.ListMessages(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (s *APIServer) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "room_id"), models.ErrRoomNotFound)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	var req sendMessageRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	msg, err := s.Rooms.AppendMessage(r.Context(), id, req.Sender, req.Content)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.publish(r.Context(), historian.NewRoomEvent(id, historian.EventMessageSent, req.Sender, map[string]any{
		"content": msg.Content,
	}))
	writeJSON(w, http.StatusCreated, msg)
}

// handleSetEditor replaces the shared buffer wholesale. Last write wins.
func (s *APIServer) handleSetEditor(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "room_id"), models.ErrRoomNotFound)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	var req setEditorRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	version, err := s.Rooms.SetEditorContent(r.Context(), id, req.Content)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.publish(r.Context(), historian.NewRoomEvent(id, historian.EventEditorSaved, "", map[string]any{
		"editor_version": version,
		"length":         len(req.Content),
	}))
	writeJSON(w, http.StatusOK, setEditorResponse{OK: true, EditorVersion: version})
}
