package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"trivia-admin-service/internal/domain"
)

const sessionCookie = "admin_session"

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request")
		return
	}

	token, err := h.auth.Login(r.Context(), body.Username, body.Password)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		log.Printf("login: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.auth.SessionTTL().Seconds()),
	})
	writeMessage(w, http.StatusOK, "Logged in")
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		if err := h.auth.Logout(r.Context(), cookie.Value); err != nil {
			log.Printf("logout: %v", err)
		}
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	writeMessage(w, http.StatusOK, "Logged out")
}

// requireSession guards admin routes behind a live session cookie.
func (h *Handler) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookie)
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		ok, err := h.auth.Validate(r.Context(), cookie.Value)
		if err != nil {
			log.Printf("validate session: %v", err)
			writeMessage(w, http.StatusInternalServerError, "Something went wrong")
			return
		}
		if !ok {
			writeMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
