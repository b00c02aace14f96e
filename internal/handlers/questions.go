// internal/handlers/questions.go
package handlers

import "net/http"

// handleSeedQuestions loads the sample catalogue once; later calls are no-ops.
func (s *APIServer) handleSeedQuestions(w http.ResponseWriter, r *http.Request) {
	seeded, err := s.Questions.Seed(r.Context())
	if err != nil {
		s.Log.WithError(err).Error("failed to seed questions")
		writeError(w, http.StatusInternalServerError, "failed to seed questions")
		return
	}
	msg := "Questions already exist"
	if seeded {
		msg = "Seeded sample questions"
		s.Log.Info("seeded sample questions")
	}
	writeJSON(w, http.StatusOK, seedResponse{Seeded: seeded, Message: msg})
}
