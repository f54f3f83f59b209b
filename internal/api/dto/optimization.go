package dto

import "delivery-insertion-planner/internal/domain"

type StartOptimizationRequest struct {
	StopWhenFullyScheduled bool `json:"stop_when_fully_scheduled"`
}

type JobResponse struct {
	State     string `json:"state"`
	JobID     string `json:"job_id,omitempty"`
	Status    string `json:"status,omitempty"`
	Error     string `json:"error,omitempty"`
	LastError string `json:"last_error,omitempty"`
}

type PathResponse struct {
	VehicleID string      `json:"vehicle_id"`
	Points    [][]float64 `json:"points"`
}

type ListPathResponse struct {
	Current  []PathResponse `json:"current"`
	Previous []PathResponse `json:"previous"`
}

func NewPathResponses(paths []domain.Path) []PathResponse {
	out := make([]PathResponse, 0, len(paths))
	for _, p := range paths {
		points := make([][]float64, 0, len(p.Points))
		for _, c := range p.Points {
			points = append(points, c.CoordsToList())
		}
		out = append(out, PathResponse{VehicleID: p.VehicleID, Points: points})
	}
	return out
}
