package http

import (
	"log/slog"
	"net/http"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleRegister creates the account. No session is established; the
// client logs in afterwards.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}

	user, err := s.auth.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "user registered", "user_id", user.ID)
	respondSuccess(w, r)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}

	token, _, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	s.setSessionCookie(w, token)
	respondSuccess(w, r)
}

type googleLoginRequest struct {
	Credential string `json:"credential"`
}

func (s *Server) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req googleLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}

	token, _, err := s.auth.LoginWithGoogle(r.Context(), req.Credential)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	s.setSessionCookie(w, token)
	respondSuccess(w, r)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, _ int64) {
	if err := s.auth.Logout(r.Context(), sessionToken(r)); err != nil {
		respondServiceError(w, r, err)
		return
	}
	s.clearSessionCookie(w)
	respondSuccess(w, r)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, _ int64) {
	user, err := s.auth.CurrentUser(r.Context(), sessionToken(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, user)
}

type profileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request, userID int64) {
	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}

	if err := s.auth.UpdateProfile(r.Context(), userID, req.Name, req.Email, req.Phone); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, r)
}
