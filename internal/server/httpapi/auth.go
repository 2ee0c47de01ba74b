package httpapi

import (
	"net/http"
	"time"

	"github.com/ISTE-SCTCE/Admin/internal/server/auth"
	"github.com/ISTE-SCTCE/Admin/internal/server/services"
)

const (
	sessionCookie  = "session"
	userNameCookie = "user_name"
	userRoleCookie = "user_role"
)

type credentials struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginUser struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

func (s *Server) setCookie(w http.ResponseWriter, name, value string, httpOnly bool, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: httpOnly,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) setSessionCookies(w http.ResponseWriter, sess *services.Session) {
	maxAge := int(time.Until(sess.ExpiresAt).Seconds())
	s.setCookie(w, sessionCookie, sess.Token, true, maxAge)
	s.setCookie(w, userNameCookie, sess.Identity.Name, false, maxAge)
	s.setCookie(w, userRoleCookie, sess.Identity.Role, false, maxAge)
}

func (s *Server) clearSessionCookies(w http.ResponseWriter) {
	s.setCookie(w, sessionCookie, "", true, -1)
	s.setCookie(w, userNameCookie, "", false, -1)
	s.setCookie(w, userRoleCookie, "", false, -1)
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	u, err := s.Users.Signup(r.Context(), in.Name, in.Email, in.Password)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Success bool          `json:"success"`
		User    auth.Identity `json:"user"`
	}{true, services.IdentityOf(u)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	sess, err := s.Users.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	s.setSessionCookies(w, sess)
	writeJSON(w, http.StatusOK, struct {
		Success bool      `json:"success"`
		Token   string    `json:"token"`
		User    loginUser `json:"user"`
	}{true, sess.Token, loginUser{Name: sess.Identity.Name, Role: sess.Identity.Role}})
}

func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	s.clearSessionCookies(w)
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, err := s.Users.Me(r.Context(), caller(r))
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, services.IdentityOf(u))
}

func (s *Server) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	if _, err := s.Presence.RecordHeartbeat(r.Context(), caller(r)); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
