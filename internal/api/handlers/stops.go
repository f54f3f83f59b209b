package handlers

import (
	"delivery-insertion-planner/internal/api/dto"
	"delivery-insertion-planner/internal/domain"
	"delivery-insertion-planner/internal/services"
	"log"
	"net/http"
)

type StopHandler struct {
	Planner *services.Planner
}

// Stops lists the catalog (GET) or places a new stop (POST).
// GET ?order=display returns depots first, then stops grouped by vehicle.
func (h *StopHandler) Stops(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		methodNotAllowed(w, r, "GET, POST")
	}
}

func (h *StopHandler) list(w http.ResponseWriter, r *http.Request) {
	var stops []domain.Stop
	switch r.URL.Query().Get("order") {
	case "", "created":
		stops = h.Planner.Stops()
	case "display":
		stops = h.Planner.Sorted()
	default:
		writeError(w, r, http.StatusBadRequest, "order must be created or display")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewListStopResponse(stops))
}

func (h *StopHandler) create(w http.ResponseWriter, r *http.Request) {
	var req dto.AddStopRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	stop, err := h.Planner.AddStop(r.Context(), domain.Coordinates{Lat: *req.Latitude, Lon: *req.Longitude})
	if err != nil {
		if isInputError(err) {
			writeServiceError(w, r, err)
			return
		}
		// The stop is not added when its address cannot be resolved.
		log.Printf("add stop failed: %v", err)
		writeError(w, r, http.StatusBadGateway, "could not resolve address")
		return
	}

	writeJSON(w, r, http.StatusCreated, dto.NewStopResponse(stop))
}
