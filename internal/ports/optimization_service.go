package ports

import (
	"context"
	"delivery-insertion-planner/internal/domain"
)

// Contract for the remote optimization service running VRP jobs asynchronously.
type OptimizationService interface {
	// Submit a request and return the job identifier.
	Submit(ctx context.Context, req *domain.OptimizationRequest) (string, error)
	// Return the current status of a job, including routes once terminal.
	GetStatus(ctx context.Context, jobID string) (*domain.OptimizationResult, error)
	// Ask the service to end a running job early.
	Stop(ctx context.Context, jobID string) error
}
