package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dgallion1/casesheet/internal/auth"
	"github.com/dgallion1/casesheet/internal/store"
)

// Flash messages shown to the user.
const (
	msgUsernameTaken   = "Username already exists."
	msgRegistered      = "Registration successful! Please log in."
	msgBadLogin        = "Invalid username or password."
	msgLoggedOut       = "Logged out successfully."
	msgInvalidUsername = "Username must be 3 to 64 characters."
	msgInvalidPassword = "Password must be 1 to 72 characters."
	msgRegisterFailed  = "Registration failed, please try again."
)

type pageData struct {
	Title     string
	Flash     string
	Username  string
	Summaries []store.Summary
	// Accept lists the extensions for the upload form.
	Accept string
}

func (s *Server) render(w http.ResponseWriter, name string, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		s.log.Error("render template", "template", name, "error", err)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetClaims(r.Context())
	s.render(w, "index.html", pageData{
		Title:    "Upload case sheet",
		Flash:    popFlash(w, r),
		Username: claims.Username,
		Accept:   strings.Join(s.cfg.AllowedExtensions, ","),
	})
}

func (s *Server) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, "register.html", pageData{Title: "Register", Flash: popFlash(w, r)})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	username, err := auth.NormalizeUsername(r.FormValue("username"))
	if err != nil {
		s.redirectFlash(w, r, "/register", msgInvalidUsername)
		return
	}
	hash, err := auth.HashPassword(r.FormValue("password"))
	if err != nil {
		s.redirectFlash(w, r, "/register", msgInvalidPassword)
		return
	}

	if _, err := s.store.CreateUser(r.Context(), username, hash); err != nil {
		if errors.Is(err, store.ErrUsernameTaken) {
			s.redirectFlash(w, r, "/register", msgUsernameTaken)
			return
		}
		s.log.Error("create user", "username", username, "error", err)
		s.redirectFlash(w, r, "/register", msgRegisterFailed)
		return
	}
	s.log.Info("user registered", "username", username)
	s.redirectFlash(w, r, "/login", msgRegistered)
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, "login.html", pageData{Title: "Log in", Flash: popFlash(w, r)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	username, err := auth.NormalizeUsername(r.FormValue("username"))
	if err != nil {
		s.redirectFlash(w, r, "/login", msgBadLogin)
		return
	}
	user, err := s.store.UserByName(r.Context(), username)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.log.Error("lookup user", "username", username, "error", err)
		}
		s.redirectFlash(w, r, "/login", msgBadLogin)
		return
	}
	if err := auth.CheckPassword(user.PasswordHash, r.FormValue("password")); err != nil {
		s.redirectFlash(w, r, "/login", msgBadLogin)
		return
	}

	token, err := auth.GenerateToken([]byte(s.cfg.SessionSecret), user.ID, user.Username, auth.TokenTTL)
	if err != nil {
		s.log.Error("sign session", "error", err)
		s.redirectFlash(w, r, "/login", msgBadLogin)
		return
	}
	auth.SetTokenCookie(w, token, s.cfg.SecureCookies)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	auth.ClearTokenCookie(w)
	s.redirectFlash(w, r, "/login", msgLoggedOut)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetClaims(r.Context())
	summaries, err := s.store.ListSummaries(r.Context(), claims.UserID, 0)
	if err != nil {
		s.log.Error("list summaries", "user_id", claims.UserID, "error", err)
		http.Error(w, "could not load history", http.StatusInternalServerError)
		return
	}
	s.render(w, "history.html", pageData{
		Title:     "History",
		Flash:     popFlash(w, r),
		Username:  claims.Username,
		Summaries: summaries,
	})
}

func (s *Server) redirectFlash(w http.ResponseWriter, r *http.Request, to, msg string) {
	setFlash(w, msg)
	http.Redirect(w, r, to, http.StatusSeeOther)
}
