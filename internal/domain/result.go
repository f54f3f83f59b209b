package domain

// Wire types of an optimization job as reported by the remote service.

const (
	JobStatusSucceeded = "SUCCEEDED"
	JobStatusFailed    = "FAILED"
)

type OptimizationResult struct {
	ID          string         `json:"id"`
	Status      string         `json:"status"`
	Metrics     *ResultMetrics `json:"metrics,omitempty"`
	Routes      []ResultRoute  `json:"routes,omitempty"`
	Description string         `json:"description,omitempty"`
}

// Terminal reports whether the job reached SUCCEEDED or FAILED.
func (r *OptimizationResult) Terminal() bool {
	return r.Status == JobStatusSucceeded || r.Status == JobStatusFailed
}

// FullyScheduled reports whether live metrics show no unscheduled orders.
func (r *OptimizationResult) FullyScheduled() bool {
	return r.Metrics != nil && r.Metrics.NumberOfUnscheduledOrders != nil && *r.Metrics.NumberOfUnscheduledOrders == 0
}

type ResultMetrics struct {
	NumberOfUnscheduledOrders *int `json:"numberOfUnscheduledOrders,omitempty"`
}

type ResultRoute struct {
	VehicleID string         `json:"vehicleId"`
	Start     ResultEndpoint `json:"start"`
	End       ResultEndpoint `json:"end"`
	Stops     []ResultStop   `json:"stops"`
}

type ResultEndpoint struct {
	LocationID string `json:"locationId"`
	Departure  string `json:"departure,omitempty"`
	Arrival    string `json:"arrival,omitempty"`
}

type ResultStop struct {
	LocationID   string              `json:"locationId,omitempty"`
	Arrival      string              `json:"arrival,omitempty"`
	Appointments []ResultAppointment `json:"appointments"`
}

type ResultAppointment struct {
	Tasks  []TaskIn  `json:"tasks"`
	Breaks []BreakIn `json:"breaks"`
}
