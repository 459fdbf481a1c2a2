package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"quizlive/internal/model"
	"quizlive/internal/service"
	"quizlive/internal/transport/rest/middleware"
)

// PlayerHandler handles player-side endpoints
type PlayerHandler struct {
	gameSvc *service.GameService
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(gameSvc *service.GameService) *PlayerHandler {
	return &PlayerHandler{gameSvc: gameSvc}
}

// JoinRequest is the request body for joining a room
type JoinRequest struct {
	Nickname string `json:"nickname"`
}

// Join handles POST /v1/rooms/{code}/join (public)
func (h *PlayerHandler) Join(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.gameSvc.Join(r.Context(), code, req.Nickname)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// SubmitAnswer handles POST /v1/rooms/{code}/answers
func (h *PlayerHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	playerID := middleware.GetPlayerID(r.Context())

	if middleware.GetRoomCode(r.Context()) != code {
		writeError(w, http.StatusForbidden, "token not valid for this room")
		return
	}

	var req model.SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.gameSvc.SubmitAnswer(r.Context(), code, playerID, req.OptionIndex)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// CurrentQuestion handles GET /v1/rooms/{code}/question/current
func (h *PlayerHandler) CurrentQuestion(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	question, err := h.gameSvc.CurrentQuestion(r.Context(), code)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if question == nil {
		writeError(w, http.StatusNotFound, "no active question")
		return
	}

	writeJSON(w, http.StatusOK, question)
}

// State handles GET /v1/rooms/{code}/state, the per-player view that drives
// the waiting/answered UI.
func (h *PlayerHandler) State(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	playerID := middleware.GetPlayerID(r.Context())

	rank, err := h.gameSvc.Rank(r.Context(), code, playerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"answered":   h.gameSvc.HasAnswered(code, playerID),
		"windowOpen": h.gameSvc.WindowOpen(code),
		"rank":       rank,
	})
}

// MyAnswers handles GET /v1/rooms/{code}/answers/mine
func (h *PlayerHandler) MyAnswers(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	playerID := middleware.GetPlayerID(r.Context())

	if middleware.GetRoomCode(r.Context()) != code {
		writeError(w, http.StatusForbidden, "token not valid for this room")
		return
	}

	answers, err := h.gameSvc.PlayerAnswers(r.Context(), code, playerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"answers": answers})
}
