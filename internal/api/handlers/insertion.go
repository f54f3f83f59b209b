package handlers

import (
	"delivery-insertion-planner/internal/api/dto"
	"delivery-insertion-planner/internal/domain"
	"delivery-insertion-planner/internal/services"
	"net/http"
)

type InsertionHandler struct {
	Planner *services.Planner
}

// Directive reads (GET) or replaces (PUT) the insertion directive used by
// the next optimization.
func (h *InsertionHandler) Directive(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		d := h.Planner.Directive()
		mode := d.Mode
		if mode == "" {
			mode = domain.InsertionUnconstrained
		}
		writeJSON(w, r, http.StatusOK, dto.InsertionResponse{Mode: string(mode), AnchorStopID: d.AnchorStopID})
	case http.MethodPut:
		h.put(w, r)
	default:
		methodNotAllowed(w, r, "GET, PUT")
	}
}

func (h *InsertionHandler) put(w http.ResponseWriter, r *http.Request) {
	var req dto.InsertionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	mode, err := domain.ParseInsertionMode(req.Mode)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	d := domain.InsertionDirective{Mode: mode}
	if d.Anchored() {
		d.AnchorStopID = req.AnchorStopID
	}
	if err := h.Planner.SetDirective(d); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.InsertionResponse{Mode: string(d.Mode), AnchorStopID: d.AnchorStopID})
}

// Anchors lists the stops a directive may currently anchor to.
func (h *InsertionHandler) Anchors(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewListStopResponse(h.Planner.AnchorCandidates()))
}
