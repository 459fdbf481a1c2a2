package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"quizlive/internal/model"
	"quizlive/internal/service"
	"quizlive/internal/transport/rest/middleware"
)

// BlockHandler handles question-block endpoints
type BlockHandler struct {
	blockSvc *service.BlockService
}

// NewBlockHandler creates a new block handler
func NewBlockHandler(blockSvc *service.BlockService) *BlockHandler {
	return &BlockHandler{blockSvc: blockSvc}
}

// Create handles POST /v1/blocks
func (h *BlockHandler) Create(w http.ResponseWriter, r *http.Request) {
	hostID := middleware.GetHostID(r.Context())

	var block model.Block
	if err := json.NewDecoder(r.Body).Decode(&block); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.blockSvc.CreateBlock(r.Context(), hostID, &block)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// List handles GET /v1/blocks
func (h *BlockHandler) List(w http.ResponseWriter, r *http.Request) {
	hostID := middleware.GetHostID(r.Context())

	blocks, err := h.blockSvc.ListBlocks(r.Context(), hostID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if blocks == nil {
		blocks = []*model.Block{}
	}

	writeJSON(w, http.StatusOK, blocks)
}

// Get handles GET /v1/blocks/{blockId}
func (h *BlockHandler) Get(w http.ResponseWriter, r *http.Request) {
	hostID := middleware.GetHostID(r.Context())
	blockID := mux.Vars(r)["blockId"]

	block, err := h.blockSvc.GetBlock(r.Context(), hostID, blockID)
	if err != nil {
		writeError(w, http.StatusForbidden, err.Error())
		return
	}
	if block == nil {
		writeError(w, http.StatusNotFound, "block not found")
		return
	}

	writeJSON(w, http.StatusOK, block)
}

// Update handles PUT /v1/blocks/{blockId}
func (h *BlockHandler) Update(w http.ResponseWriter, r *http.Request) {
	hostID := middleware.GetHostID(r.Context())
	blockID := mux.Vars(r)["blockId"]

	var block model.Block
	if err := json.NewDecoder(r.Body).Decode(&block); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	block.ID = blockID

	if err := h.blockSvc.UpdateBlock(r.Context(), hostID, &block); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, block)
}

// Delete handles DELETE /v1/blocks/{blockId}
func (h *BlockHandler) Delete(w http.ResponseWriter, r *http.Request) {
	hostID := middleware.GetHostID(r.Context())
	blockID := mux.Vars(r)["blockId"]

	if err := h.blockSvc.DeleteBlock(r.Context(), hostID, blockID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
