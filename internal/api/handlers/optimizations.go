package handlers

import (
	"context"
	"delivery-insertion-planner/internal/api/dto"
	"delivery-insertion-planner/internal/services"
	"net/http"
)

type OptimizationHandler struct {
	Planner *services.Planner
	// Context the background job runs under; it outlives the request.
	JobContext context.Context
}

// Start submits an optimization of the current catalog and returns at once.
// Progress is available from Current and the event stream.
func (h *OptimizationHandler) Start(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req dto.StartOptimizationRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	ctx := h.JobContext
	if ctx == nil {
		ctx = context.WithoutCancel(r.Context())
	}

	err := h.Planner.StartOptimization(ctx, services.RunOptions{StopWhenFullyScheduled: req.StopWhenFullyScheduled})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusAccepted, h.job())
}

// Current reports the state of the latest optimization job.
func (h *OptimizationHandler) Current(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	writeJSON(w, r, http.StatusOK, h.job())
}

func (h *OptimizationHandler) job() dto.JobResponse {
	snap := h.Planner.Job()
	res := dto.JobResponse{
		State:  string(snap.State),
		JobID:  snap.JobID,
		Status: snap.Status,
		Error:  snap.Error,
	}
	if err := h.Planner.LastError(); err != nil {
		res.LastError = err.Error()
	}
	return res
}

// Paths returns the traversal of the latest solution and the one before it.
func (h *OptimizationHandler) Paths(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	paths := h.Planner.Paths()
	writeJSON(w, r, http.StatusOK, dto.ListPathResponse{
		Current:  dto.NewPathResponses(paths.Current),
		Previous: dto.NewPathResponses(paths.Previous),
	})
}
