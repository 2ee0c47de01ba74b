package httpapi

import (
	"net/http"

	"github.com/ISTE-SCTCE/Admin/internal/server/models"
)

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.Events.List(r.Context())
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var in models.Event
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	e, err := s.Events.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}
