package httpapi

import (
	"net/http"
	"time"

	"favtunes/internal/app/users"
	"favtunes/internal/models"
)

type registerResponse struct {
	Success bool   `json:"success"`
	UserID  string `json:"userId"`
}

type loginResponse struct {
	Success   bool        `json:"success"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      models.User `json:"user"`
}

type sessionResponse struct {
	Success bool        `json:"success"`
	User    models.User `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterInput
	if !decodeJSON(w, r, &req) {
		return
	}

	userID, err := s.users.Register(r.Context(), req)
	if err != nil {
		writeError(w, err, users.RegisterError)
		return
	}

	writeJSON(w, http.StatusCreated, registerResponse{Success: true, UserID: userID})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginInput
	if !decodeJSON(w, r, &req) {
		return
	}

	session, err := s.users.Login(r.Context(), req)
	if err != nil {
		writeError(w, err, users.LoginError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, loginResponse{
		Success:   true,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      session.User,
	})
}

// handleLogout clears the session cookie. Tokens are stateless, so a bearer
// token stays valid until it expires.
func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, okResponse{Success: true})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.Current(r.Context(), s.identity(r))
	if err != nil {
		writeError(w, err, users.SessionError)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Success: true, User: user})
}
