package dto

type InsertionRequest struct {
	Mode         string `json:"mode" validate:"omitempty,oneof=unconstrained soft-before soft-after hard-immediately-before hard-immediately-after"`
	AnchorStopID string `json:"anchor_stop_id"`
}

type InsertionResponse struct {
	Mode         string `json:"mode"`
	AnchorStopID string `json:"anchor_stop_id,omitempty"`
}
