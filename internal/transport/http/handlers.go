package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"trivia-admin-service/internal/app"
	"trivia-admin-service/internal/domain"
)

// Handler exposes the admin REST API and the observer websocket feed.
type Handler struct {
	participants *app.ParticipantService
	quizzes      *app.QuizService
	auth         *app.AuthService
	hub          *app.Hub
	ws           *WSHandler
}

func NewHandler(participants *app.ParticipantService, quizzes *app.QuizService, auth *app.AuthService, hub *app.Hub) *Handler {
	return &Handler{
		participants: participants,
		quizzes:      quizzes,
		auth:         auth,
		hub:          hub,
		ws:           NewWSHandler(hub),
	}
}

// Router wires all routes. Login stays outside the session middleware;
// everything else under /api and the websocket feed require a session.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.HandleFunc("/api/login", h.login).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(h.requireSession)
	api.HandleFunc("/logout", h.logout).Methods(http.MethodPost)
	api.HandleFunc("/users", h.listUsers).Methods(http.MethodGet)
	api.HandleFunc("/users/bulk-delete", h.bulkDeleteUsers).Methods(http.MethodPost)
	// Part labels may contain encoded slashes, so the id segment is greedy.
	api.HandleFunc("/users/{id:.*}", h.deleteUser).Methods(http.MethodDelete)
	api.HandleFunc("/quizzes", h.listQuizzes).Methods(http.MethodGet)
	api.HandleFunc("/quizzes/{id}", h.getQuiz).Methods(http.MethodGet)
	api.HandleFunc("/quizzes/{id}", h.putQuiz).Methods(http.MethodPut)
	api.HandleFunc("/quizzes/{id}", h.deleteQuiz).Methods(http.MethodDelete)
	api.HandleFunc("/events", h.relayEvent).Methods(http.MethodPost)

	r.Handle("/ws", h.requireSession(http.HandlerFunc(h.ws.ServeWS)))
	return r
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	rows, err := h.participants.List(r.Context())
	if err != nil {
		log.Printf("list users: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Something went wrong")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	// Tolerate an extra leading slash in the path-embedded identifier.
	id := strings.TrimPrefix(mux.Vars(r)["id"], "/")
	target := domain.ParseDeleteTarget(id)

	outcome, err := h.participants.Delete(r.Context(), target)
	if errors.Is(err, domain.ErrParticipantNotFound) {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		log.Printf("delete user %s: %v", id, err)
		writeMessage(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	switch outcome {
	case app.OutcomeParticipantEmptied:
		writeMessage(w, http.StatusOK, "User deleted (no data remaining)")
	case app.OutcomePartRemoved:
		writeMessage(w, http.StatusOK, `Data for part "`+target.Part+`" removed`)
	default:
		writeMessage(w, http.StatusOK, "User record deleted successfully")
	}
}

func (h *Handler) bulkDeleteUsers(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IDs *[]string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.IDs == nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request")
		return
	}

	if err := h.participants.BulkDelete(r.Context(), *body.IDs); err != nil {
		log.Printf("bulk delete: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Something went wrong")
		return
	}
	writeMessage(w, http.StatusOK, "Selected records deleted successfully")
}

func (h *Handler) listQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.quizzes.List(r.Context())
	if err != nil {
		log.Printf("list quizzes: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Something went wrong")
		return
	}
	writeJSON(w, http.StatusOK, quizzes)
}

func (h *Handler) getQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.quizzes.Get(r.Context(), mux.Vars(r)["id"])
	if errors.Is(err, domain.ErrQuizNotFound) {
		writeMessage(w, http.StatusNotFound, "Quiz not found")
		return
	}
	if err != nil {
		log.Printf("get quiz: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Something went wrong")
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *Handler) putQuiz(w http.ResponseWriter, r *http.Request) {
	var quiz domain.Quiz
	if err := json.NewDecoder(r.Body).Decode(&quiz); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request")
		return
	}
	quiz.ID = mux.Vars(r)["id"]

	if err := h.quizzes.Save(r.Context(), quiz); err != nil {
		log.Printf("save quiz %s: %v", quiz.ID, err)
		writeMessage(w, http.StatusInternalServerError, "Something went wrong")
		return
	}
	writeMessage(w, http.StatusOK, "Quiz saved successfully")
}

func (h *Handler) deleteQuiz(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	err := h.quizzes.Delete(r.Context(), id)
	if errors.Is(err, domain.ErrQuizNotFound) {
		writeMessage(w, http.StatusNotFound, "Quiz not found")
		return
	}
	if err != nil {
		log.Printf("delete quiz %s: %v", id, err)
		writeMessage(w, http.StatusInternalServerError, "Something went wrong")
		return
	}
	writeMessage(w, http.StatusOK, "Quiz deleted successfully")
}

// relayNames lists the externally-originated events the participant-facing
// service may push through to observers.
var relayNames = map[string]struct{}{
	domain.EventUserJoined:     {},
	domain.EventAttemptStarted: {},
	domain.EventScoreUpdated:   {},
}

func (h *Handler) relayEvent(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name    string          `json:"name"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if _, ok := relayNames[body.Name]; !ok {
		writeMessage(w, http.StatusBadRequest, "Unknown event name")
		return
	}

	h.hub.Publish(domain.Event{Name: body.Name, Payload: body.Payload})
	writeMessage(w, http.StatusOK, "Event relayed")
}
