// Package api exposes editing sessions over HTTP: REST endpoints for one-off commands and a
// websocket endpoint for live clients.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/gorilla/mux"

	"github.com/inamate/imagedit/internal/auth"
	"github.com/inamate/imagedit/internal/editor"
	"github.com/inamate/imagedit/internal/scene"
	"github.com/inamate/imagedit/internal/session"
	"github.com/inamate/imagedit/internal/typeid"
)

type Handler struct {
	hub     *session.Hub
	auth    *auth.Service
	origins []string
}

// NewHandler serves sessions from hub. origins are the allowed websocket origins as URLs.
func NewHandler(hub *session.Hub, authSvc *auth.Service, origins []string) *Handler {
	patterns := make([]string, 0, len(origins))
	for _, o := range origins {
		if _, host, ok := strings.Cut(o, "://"); ok {
			o = host
		}
		patterns = append(patterns, o)
	}
	return &Handler{hub: hub, auth: authSvc, origins: patterns}
}

// Routes registers the session endpoints. api should already carry the auth middleware.
func (h *Handler) Routes(r, api *mux.Router) {
	api.HandleFunc("/sessions", h.CreateSession).Methods("POST")
	api.HandleFunc("/sessions/{sessionId}/scene", h.Scene).Methods("GET")
	api.HandleFunc("/sessions/{sessionId}/scene", h.LoadScene).Methods("PUT")
	api.HandleFunc("/sessions/{sessionId}/history", h.History).Methods("GET")
	api.HandleFunc("/sessions/{sessionId}/commands", h.Commands).Methods("GET")
	api.HandleFunc("/sessions/{sessionId}/commands", h.Execute).Methods("POST")
	api.HandleFunc("/sessions/{sessionId}/undo", h.Undo).Methods("POST")
	api.HandleFunc("/sessions/{sessionId}/redo", h.Redo).Methods("POST")

	r.HandleFunc("/ws/sessions/{sessionId}", h.WebSocket)
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type commandResponse struct {
	Name    string         `json:"name"`
	Result  any            `json:"result,omitempty"`
	History editor.History `json:"history"`
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	id := typeid.NewSessionID()
	if _, err := h.hub.Room(r.Context(), id); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *Handler) room(w http.ResponseWriter, r *http.Request) (*session.Room, bool) {
	id := mux.Vars(r)["sessionId"]
	if err := typeid.Validate(id, typeid.PrefixSession); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "invalid_parameter"})
		return nil, false
	}
	room, err := h.hub.Room(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return nil, false
	}
	return room, true
}

func (h *Handler) Scene(w http.ResponseWriter, r *http.Request) {
	room, ok := h.room(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, session.SceneSyncPayload{
		Document: room.Editor().Snapshot(),
		History:  room.Editor().History(),
	})
}

// LoadScene replaces the session's scene with the document in the body, for example a
// snapshot exported earlier from GET .../scene. The session history is discarded.
func (h *Handler) LoadScene(w http.ResponseWriter, r *http.Request) {
	room, ok := h.room(w, r)
	if !ok {
		return
	}
	var doc scene.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "body must be a scene document", Code: "invalid_parameter"})
		return
	}
	if err := room.Load(userID(r), doc); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session.SceneSyncPayload{
		Document: room.Editor().Snapshot(),
		History:  room.Editor().History(),
	})
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	room, ok := h.room(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, room.Editor().History())
}

func (h *Handler) Commands(w http.ResponseWriter, r *http.Request) {
	room, ok := h.room(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, room.Editor().Commands())
}

func (h *Handler) Execute(w http.ResponseWriter, r *http.Request) {
	room, ok := h.room(w, r)
	if !ok {
		return
	}
	var req session.ExecutePayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "body must name a command", Code: "invalid_parameter"})
		return
	}
	res, err := room.Execute(r.Context(), userID(r), req.Name, req.Args)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, commandResponse{Name: req.Name, Result: res, History: room.Editor().History()})
}

func (h *Handler) Undo(w http.ResponseWriter, r *http.Request) {
	room, ok := h.room(w, r)
	if !ok {
		return
	}
	name, res, err := room.Undo(r.Context(), userID(r))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, commandResponse{Name: name, Result: res, History: room.Editor().History()})
}

func (h *Handler) Redo(w http.ResponseWriter, r *http.Request) {
	room, ok := h.room(w, r)
	if !ok {
		return
	}
	name, res, err := room.Redo(r.Context(), userID(r))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, commandResponse{Name: name, Result: res, History: room.Editor().History()})
}

// WebSocket handles /ws/sessions/{sessionId}?token=... .
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}
	user, err := h.auth.ValidateToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	room, ok := h.room(w, r)
	if !ok {
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.origins})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	client := session.NewClient(h.hub, room, conn, user.ID, user.DisplayName)
	if err := h.hub.Register(client); err != nil {
		slog.Error("join session", "error", err, "session", room.ID())
		conn.Close(websocket.StatusTryAgainLater, "session unavailable")
		return
	}

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	code := editor.ErrorCode(err)
	status := statusFor(code)
	if status == http.StatusInternalServerError {
		slog.Error("session request failed", "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Code: code})
}

func statusFor(code string) int {
	switch code {
	case "locked", "empty_history":
		return http.StatusConflict
	case "not_found":
		return http.StatusNotFound
	case "invalid_parameter", "unknown_command":
		return http.StatusBadRequest
	case "no_op", "unsupported":
		return http.StatusUnprocessableEntity
	case "destroyed":
		return http.StatusGone
	}
	return http.StatusInternalServerError
}

func userID(r *http.Request) string {
	user, _ := auth.UserFromContext(r.Context())
	return user.ID
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
