package handlers

import (
	"errors"
	"net/http"

	"github.com/lcalzada-xor/widsview/internal/core/domain"
	"github.com/lcalzada-xor/widsview/internal/core/ports"
)

// ViewHandler exposes the view state and accepts tab, selection and pointer intents
type ViewHandler struct {
	View ports.ViewService
}

// NewViewHandler creates a new ViewHandler
func NewViewHandler(view ports.ViewService) *ViewHandler {
	return &ViewHandler{View: view}
}

// HandleGetView returns tab, selection, hover and feed status
func (h *ViewHandler) HandleGetView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.View.State().Summary())
}

type tabRequest struct {
	Tab domain.Tab `json:"tab"`
}

// HandleSelectTab switches the list panel
func (h *ViewHandler) HandleSelectTab(w http.ResponseWriter, r *http.Request) {
	var req tabRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid body")
		return
	}

	if err := h.View.SelectTab(req.Tab); err != nil {
		if errors.Is(err, domain.ErrInvalidTab) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to switch tab")
		return
	}
	writeJSON(w, http.StatusOK, h.View.State().Summary())
}

type selectionRequest struct {
	BSSID string `json:"bssid"`
}

// HandleSelectNode records the selected network. The BSSID need not be in the current snapshot.
func (h *ViewHandler) HandleSelectNode(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid body")
		return
	}

	if !domain.IsValidMAC(req.BSSID) {
		writeError(w, http.StatusBadRequest, "Invalid BSSID")
		return
	}

	h.View.SelectNode(domain.NormalizeBSSID(req.BSSID))
	writeJSON(w, http.StatusOK, h.View.State().Summary())
}

// HandleClearSelection drops the selected network
func (h *ViewHandler) HandleClearSelection(w http.ResponseWriter, r *http.Request) {
	h.View.ClearSelection()
	writeJSON(w, http.StatusOK, h.View.State().Summary())
}

// HandlePointer accepts a hover or click for clients without a websocket
func (h *ViewHandler) HandlePointer(w http.ResponseWriter, r *http.Request) {
	var ev domain.PointerEvent
	if err := decodeBody(r, &ev); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid body")
		return
	}

	if err := h.View.HandlePointer(r.Context(), ev); err != nil {
		if errors.Is(err, domain.ErrUnknownPointerKind) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to handle pointer event")
		return
	}
	writeJSON(w, http.StatusOK, h.View.State().Scene)
}
