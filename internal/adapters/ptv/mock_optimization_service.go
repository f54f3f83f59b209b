package ptv

import (
	"context"
	"delivery-insertion-planner/internal/domain"
	"errors"
	"sync"
)

// MockOptimizationService replays a scripted sequence of job statuses.
// Once the script is exhausted the last status is repeated.
type MockOptimizationService struct {
	JobID     string
	SubmitErr error
	StopErr   error
	Statuses  []*domain.OptimizationResult
	// When set, Stop blocks until it is closed or ctx is done.
	StopRelease chan struct{}

	mu        sync.Mutex
	submitted []*domain.OptimizationRequest
	polls     int
	stops     int
	stopped   chan struct{}
}

func NewMockOptimizationService(jobID string, statuses ...*domain.OptimizationResult) *MockOptimizationService {
	return &MockOptimizationService{
		JobID:    jobID,
		Statuses: statuses,
		stopped:  make(chan struct{}, 16),
	}
}

func (m *MockOptimizationService) Submit(ctx context.Context, req *domain.OptimizationRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.submitted = append(m.submitted, req)
	if m.SubmitErr != nil {
		return "", m.SubmitErr
	}
	return m.JobID, nil
}

func (m *MockOptimizationService) GetStatus(ctx context.Context, jobID string) (*domain.OptimizationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.Statuses) == 0 {
		return nil, errors.New("mock: no statuses scripted")
	}
	i := min(m.polls, len(m.Statuses)-1)
	m.polls++

	status := *m.Statuses[i]
	if status.ID == "" {
		status.ID = jobID
	}
	return &status, nil
}

func (m *MockOptimizationService) Stop(ctx context.Context, jobID string) error {
	m.mu.Lock()
	m.stops++
	err := m.StopErr
	release := m.StopRelease
	m.mu.Unlock()

	select {
	case m.stopped <- struct{}{}:
	default:
	}

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (m *MockOptimizationService) Submitted() []*domain.OptimizationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.OptimizationRequest(nil), m.submitted...)
}

func (m *MockOptimizationService) Polls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.polls
}

func (m *MockOptimizationService) Stops() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stops
}

// Stopped receives once per Stop call.
func (m *MockOptimizationService) Stopped() <-chan struct{} {
	return m.stopped
}
