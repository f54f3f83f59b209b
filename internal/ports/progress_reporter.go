package ports

import "context"

// Progress is a snapshot of a running optimization job.
type Progress struct {
	JobID       string `json:"job_id"`
	State       string `json:"state"`
	Status      string `json:"status,omitempty"`
	Unscheduled *int   `json:"unscheduled,omitempty"`
	Message     string `json:"message,omitempty"`
}

// Receives live job progress for display.
type ProgressReporter interface {
	Report(ctx context.Context, p Progress)
}

// Fans job progress out to live subscribers such as websocket clients.
type ProgressFeed interface {
	ProgressReporter
	// Subscribe returns a channel of progress events and a function that
	// ends the subscription and closes the channel.
	Subscribe(ctx context.Context) (<-chan Progress, func())
}
