package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ISTE-SCTCE/Admin/internal/common"
	"github.com/ISTE-SCTCE/Admin/internal/server/models"
)

// handleFetchThread answers with an empty list, not an error, when the
// caller or the target cannot be resolved.
func (s *Server) handleFetchThread(w http.ResponseWriter, r *http.Request) {
	empty := []models.ThreadMessage{}

	id := caller(r)
	if id == nil {
		writeJSON(w, http.StatusOK, empty)
		return
	}

	target, err := models.ParseParty(r.URL.Query().Get("targetId"))
	if err != nil {
		writeJSON(w, http.StatusOK, empty)
		return
	}

	thread, err := s.Messages.FetchThread(r.Context(), id, target)
	if err != nil {
		if errors.Is(err, common.ErrNotAuthenticated) {
			writeJSON(w, http.StatusOK, empty)
			return
		}
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, thread)
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var in struct {
		To      models.Party `json:"to"`
		Content string       `json:"content"`
	}
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	msg, err := s.Messages.Send(r.Context(), caller(r), in.To, in.Content)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

// handleMessageStream pushes messages addressed to the caller as
// server-sent events until the client goes away.
func (s *Server) handleMessageStream(w http.ResponseWriter, r *http.Request) {
	id := caller(r)
	rc := http.NewResponseController(w)

	ch, cancel := s.Hub.Subscribe(id.UserID)
	defer cancel()

	s.metrics.StreamOpened()
	defer s.metrics.StreamClosed()

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		s.logger.Warn(r.Context(), "streaming unsupported", "error", err)
		return
	}

	ticker := time.NewTicker(s.opts.KeepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
		case msg, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(models.ThreadMessage{Message: msg})
			if err != nil {
				s.logger.Error(r.Context(), "encode stream message", "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "id: %d\nevent: message\ndata: %s\n\n", msg.ID, data); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
