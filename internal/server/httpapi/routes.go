package httpapi

import (
	"net/http"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())

	mux.HandleFunc("POST /auth/signup", s.handleSignup)
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.HandleFunc("POST /auth/logout", s.handleLogout)
	mux.HandleFunc("GET /auth/me", s.requireSession(s.handleMe))

	mux.HandleFunc("POST /heartbeat", s.requireSession(s.handleHeartbeat))
	mux.HandleFunc("POST /auth/heartbeat", s.requireSession(s.handleHeartbeat))

	mux.HandleFunc("GET /members", s.requireSession(s.handleListMembers))
	mux.HandleFunc("POST /members", s.requireSession(s.handleCreateMember))
	mux.HandleFunc("PUT /members/{id}", s.requireSession(s.handleUpdateMember))
	mux.HandleFunc("POST /members/{id}/appoint", s.requireSession(s.handleAppointMember))

	mux.HandleFunc("GET /messages", s.handleFetchThread)
	mux.HandleFunc("POST /messages", s.requireSession(s.handleSendMessage))
	mux.HandleFunc("GET /messages/stream", s.requireSession(s.handleMessageStream))

	mux.HandleFunc("GET /files", s.requireSession(s.handleListFiles))
	mux.HandleFunc("POST /files", s.requireSession(s.handleUploadFile))
	mux.HandleFunc("POST /files/upload", s.requireSession(s.handleUploadFile))
	mux.HandleFunc("DELETE /files/{id}", s.requireSession(s.handleDeleteFile))
	mux.HandleFunc("GET /files/{id}/download", s.requireSession(s.handleDownloadFile))

	mux.HandleFunc("GET /events", s.requireSession(s.handleListEvents))
	mux.HandleFunc("POST /events", s.requireSession(s.handleCreateEvent))

	return s.withRecover(s.withIdentity(s.withLogging(mux)))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.opts.Ready != nil {
		if err := s.opts.Ready(r.Context()); err != nil {
			s.logger.Warn(r.Context(), "readiness check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
