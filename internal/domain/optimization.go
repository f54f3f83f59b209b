package domain

// Wire types of an optimization request. Field names and nesting are the
// compatibility surface of the remote optimization service.

const (
	CategoryNew       = "new"
	CategoryOptimized = "optimized"

	CombinationOrderRequiresVehicle = "ORDER_REQUIRES_VEHICLE"
	SequenceNotBefore               = "NOT_BEFORE"
)

type OptimizationRequest struct {
	Locations   []Location  `json:"locations"`
	Orders      Orders      `json:"orders"`
	Vehicles    []Vehicle   `json:"vehicles"`
	Depots      []Depot     `json:"depots"`
	Settings    Settings    `json:"settings"`
	Constraints Constraints `json:"constraints"`
	Routes      []RouteIn   `json:"routes"`
}

type Location struct {
	ID        string  `json:"id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Orders struct {
	Deliveries []Delivery `json:"deliveries"`
}

type Delivery struct {
	ID         string             `json:"id"`
	Delivery   DeliveryTask       `json:"delivery"`
	Properties DeliveryProperties `json:"properties"`
}

type DeliveryTask struct {
	LocationID string   `json:"locationId"`
	Duration   int      `json:"duration"`
	Categories []string `json:"categories"`
}

type DeliveryProperties struct {
	Categories []string `json:"categories"`
}

type Vehicle struct {
	ID         string       `json:"id"`
	Costs      VehicleCosts `json:"costs"`
	Start      VehicleStart `json:"start"`
	End        VehicleEnd   `json:"end"`
	Routing    Routing      `json:"routing"`
	Categories []string     `json:"categories"`
}

type VehicleCosts struct {
	PerHour      float64 `json:"perHour"`
	PerKilometer float64 `json:"perKilometer"`
	Fixed        float64 `json:"fixed"`
}

type VehicleStart struct {
	LocationID        string `json:"locationId"`
	EarliestStartTime string `json:"earliestStartTime"`
}

type VehicleEnd struct {
	LocationID    string `json:"locationId"`
	LatestEndTime string `json:"latestEndTime"`
}

type Routing struct {
	Profile string `json:"profile"`
}

type Depot struct {
	ID         string `json:"id"`
	LocationID string `json:"locationId"`
}

type Settings struct {
	Duration int `json:"duration"`
}

type Constraints struct {
	Combinations Combinations    `json:"combinations"`
	Tasks        TaskConstraints `json:"tasks"`
}

type Combinations struct {
	OrderVehicle []OrderVehicleCombination `json:"orderVehicle"`
}

type OrderVehicleCombination struct {
	Type            string `json:"type"`
	OrderCategory   string `json:"orderCategory"`
	VehicleCategory string `json:"vehicleCategory"`
}

type TaskConstraints struct {
	RespectedSequences []RespectedSequence `json:"respectedSequences"`
	ForbiddenSequences []ForbiddenSequence `json:"forbiddenSequences"`
}

type RespectedSequence struct {
	TaskCategories []string `json:"taskCategories"`
}

type ForbiddenSequence struct {
	FirstTaskCategory  string `json:"firstTaskCategory"`
	Type               string `json:"type"`
	SecondTaskCategory string `json:"secondTaskCategory"`
}

// RouteIn is a previously computed route submitted for re-optimization.
type RouteIn struct {
	VehicleID string    `json:"vehicleId"`
	Start     string    `json:"start,omitempty"`
	Tasks     []TaskIn  `json:"tasks"`
	Breaks    []BreakIn `json:"breaks"`
}

type TaskIn struct {
	OrderID string `json:"orderId"`
	Type    string `json:"type"`
	DepotID string `json:"depotId,omitempty"`
}

type BreakIn struct {
	Start    string `json:"start"`
	Duration int    `json:"duration"`
}
