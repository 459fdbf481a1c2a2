package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"quizlive/internal/model"
	"quizlive/internal/service"
	"quizlive/internal/transport/rest/middleware"
)

// RoomHandler handles host-side room endpoints
type RoomHandler struct {
	gameSvc *service.GameService
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(gameSvc *service.GameService) *RoomHandler {
	return &RoomHandler{gameSvc: gameSvc}
}

// Create handles POST /v1/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	hostID := middleware.GetHostID(r.Context())

	var cfg model.GameConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	room, err := h.gameSvc.CreateGame(r.Context(), hostID, cfg)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"roomCode": room.Code,
		"roomId":   room.ID,
	})
}

// Start handles POST /v1/rooms/{code}/start
func (h *RoomHandler) Start(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	hostID := middleware.GetHostID(r.Context())

	if err := h.gameSvc.Start(r.Context(), code, hostID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": string(model.RoomStatusPlaying)})
}

// Next handles POST /v1/rooms/{code}/next
func (h *RoomHandler) Next(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	hostID := middleware.GetHostID(r.Context())

	playing, err := h.gameSvc.NextQuestion(r.Context(), code, hostID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	status := model.RoomStatusPlaying
	if !playing {
		status = model.RoomStatusFinished
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(status)})
}

// End handles POST /v1/rooms/{code}/end
func (h *RoomHandler) End(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	hostID := middleware.GetHostID(r.Context())

	if err := h.gameSvc.EndGame(r.Context(), code, hostID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": string(model.RoomStatusFinished)})
}

// Ranking handles GET /v1/rooms/{code}/ranking
func (h *RoomHandler) Ranking(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	ranking, err := h.gameSvc.Ranking(r.Context(), code)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ranking)
}

// Leaderboard handles GET /v1/rooms/{code}/leaderboard
func (h *RoomHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	topStr := r.URL.Query().Get("top")
	top := 20
	if topStr != "" {
		if n, err := strconv.Atoi(topStr); err == nil && n > 0 {
			top = n
		}
	}

	entries, err := h.gameSvc.Leaderboard(r.Context(), code, top)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"leaderboard": entries})
}

// Delete handles DELETE /v1/rooms/{code}
func (h *RoomHandler) Delete(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	hostID := middleware.GetHostID(r.Context())

	if err := h.gameSvc.DeleteRoom(r.Context(), code, hostID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Scores handles GET /v1/rooms/{code}/scores
func (h *RoomHandler) Scores(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	scores := h.gameSvc.Scores(code)
	if scores == nil {
		writeError(w, http.StatusNotFound, "room not live")
		return
	}

	writeJSON(w, http.StatusOK, scores)
}
