package dto

import "delivery-insertion-planner/internal/domain"

type AddStopRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
}

type StopResponse struct {
	ID         string             `json:"id"`
	Latitude   float64            `json:"latitude"`
	Longitude  float64            `json:"longitude"`
	Address    string             `json:"address"`
	Color      string             `json:"color"`
	IsDepot    bool               `json:"is_depot"`
	Used       bool               `json:"used"`
	Assignment *domain.Assignment `json:"assignment,omitempty"`
}

type ListStopResponse struct {
	Stops []StopResponse `json:"stops"`
}

func NewStopResponse(s domain.Stop) StopResponse {
	return StopResponse{
		ID:         s.ID,
		Latitude:   s.Coordinates.Lat,
		Longitude:  s.Coordinates.Lon,
		Address:    s.Address,
		Color:      s.Color,
		IsDepot:    s.IsDepot,
		Used:       s.Used,
		Assignment: s.Assignment,
	}
}

func NewListStopResponse(stops []domain.Stop) ListStopResponse {
	res := ListStopResponse{Stops: make([]StopResponse, 0, len(stops))}
	for _, s := range stops {
		res.Stops = append(res.Stops, NewStopResponse(s))
	}
	return res
}
