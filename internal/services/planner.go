package services

import (
	"context"
	"delivery-insertion-planner/internal/domain"
	"delivery-insertion-planner/internal/platform/obs"
	"delivery-insertion-planner/internal/ports"
	"errors"
	"fmt"
	"log"
	"slices"
	"sync"
)

// PlannerPaths holds the traversal of the latest solution and the one before it.
type PlannerPaths struct {
	Current  []domain.Path `json:"current"`
	Previous []domain.Path `json:"previous"`
}

// Planner owns the stop catalog and the previous solution of an operator
// session and runs optimization cycles over them.
//
// The catalog and the previous solution are only mutated after a terminal
// success has been mapped; a failed cycle leaves both untouched.
type Planner struct {
	geocoder     ports.ReverseGeocoder
	orchestrator *Orchestrator

	mu        sync.Mutex
	catalog   *domain.StopCatalog
	fleet     domain.FleetConfig
	directive domain.InsertionDirective
	previous  *domain.Solution
	paths     PlannerPaths
	lastErr   error
}

func NewPlanner(
	fleet domain.FleetConfig,
	geocoder ports.ReverseGeocoder,
	orchestrator *Orchestrator,
) (*Planner, error) {
	if err := fleet.Validate(); err != nil {
		return nil, fmt.Errorf("new planner: %w", err)
	}
	if geocoder == nil || orchestrator == nil {
		return nil, errors.New("new planner: geocoder and orchestrator must be non-nil")
	}

	return &Planner{
		geocoder:     geocoder,
		orchestrator: orchestrator,
		catalog:      domain.NewStopCatalog(fleet.StopLimit),
		fleet:        fleet,
		paths:        PlannerPaths{Current: []domain.Path{}, Previous: []domain.Path{}},
	}, nil
}

// AddStop resolves the address of coords and appends a stop to the catalog.
// The first stop becomes the depot. A geocoding failure adds nothing.
func (p *Planner) AddStop(ctx context.Context, coords domain.Coordinates) (_ domain.Stop, err error) {
	defer obs.Time(ctx, "planner.add_stop")(&err)

	if !coords.Valid() {
		return domain.Stop{}, fmt.Errorf("add stop: %w", domain.ErrInvalidCoordinates)
	}

	p.mu.Lock()
	if err := p.checkIdle(); err != nil {
		p.mu.Unlock()
		return domain.Stop{}, fmt.Errorf("add stop: %w", err)
	}
	if err := p.catalog.CheckCapacity(); err != nil {
		p.mu.Unlock()
		return domain.Stop{}, fmt.Errorf("add stop: %w", err)
	}
	p.mu.Unlock()

	address, err := p.geocoder.ReverseGeocode(ctx, coords)
	if err != nil {
		return domain.Stop{}, fmt.Errorf("add stop: resolve address: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.checkIdle(); err != nil {
		return domain.Stop{}, fmt.Errorf("add stop: %w", err)
	}
	stop, err := p.catalog.AddStop(coords, address)
	if err != nil {
		return domain.Stop{}, fmt.Errorf("add stop: %w", err)
	}

	log.Printf("op=planner.add_stop stop_id=%s depot=%t", stop.ID, stop.IsDepot)
	return stop, nil
}

// SetDirective validates and stores the insertion directive for the next cycle.
func (p *Planner) SetDirective(d domain.InsertionDirective) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := d.Validate(p.catalog); err != nil {
		return fmt.Errorf("set directive: %w", err)
	}
	p.directive = d
	return nil
}

func (p *Planner) Directive() domain.InsertionDirective {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.directive
}

// Stops returns the catalog in creation order.
func (p *Planner) Stops() []domain.Stop {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.catalog.Stops()
}

// StopByID returns the stop with the given id.
func (p *Planner) StopByID(id string) (domain.Stop, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.catalog.Get(id)
}

// Sorted returns the catalog in display order.
func (p *Planner) Sorted() []domain.Stop {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.catalog.Sorted()
}

// AnchorCandidates returns the stops an insertion directive may anchor to.
func (p *Planner) AnchorCandidates() []domain.Stop {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.catalog.AnchorCandidates()
}

func (p *Planner) Paths() PlannerPaths {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PlannerPaths{
		Current:  slices.Clone(p.paths.Current),
		Previous: slices.Clone(p.paths.Previous),
	}
}

// Previous returns the solution the next request will preserve, or nil.
func (p *Planner) Previous() *domain.Solution {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.previous
}

func (p *Planner) Job() JobSnapshot {
	return p.orchestrator.Snapshot()
}

// LastError returns the error of the most recent background cycle, if any.
func (p *Planner) LastError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Optimize runs one full cycle and blocks until it is mapped.
func (p *Planner) Optimize(ctx context.Context, ro RunOptions) (_ *MappedSolution, err error) {
	defer obs.Time(ctx, "planner.optimize")(&err)

	type outcome struct {
		mapped *MappedSolution
		err    error
	}
	done := make(chan outcome, 1)

	err = p.start(ctx, ro, func(mapped *MappedSolution, err error) {
		done <- outcome{mapped: mapped, err: err}
	})
	if err != nil {
		return nil, fmt.Errorf("optimize: %w", err)
	}

	out := <-done
	if out.err != nil {
		return nil, fmt.Errorf("optimize: %w", out.err)
	}
	return out.mapped, nil
}

// StartOptimization validates and submits a cycle in the background.
// Input errors and ErrJobInFlight are returned synchronously; the outcome of
// the job is available through Job, LastError and the catalog.
func (p *Planner) StartOptimization(ctx context.Context, ro RunOptions) error {
	if err := p.start(ctx, ro, nil); err != nil {
		return fmt.Errorf("start optimization: %w", err)
	}
	return nil
}

// start builds the request and reserves the orchestrator under one lock, so
// no catalog edit can land between the two. The result is mapped before the
// job leaves the in-flight states; any OnSuccess in ro is replaced.
func (p *Planner) start(ctx context.Context, ro RunOptions, done func(*MappedSolution, error)) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.checkIdle(); err != nil {
		return err
	}

	req, err := BuildRequest(BuildRequestInput{
		Catalog:   p.catalog,
		Fleet:     p.fleet,
		Previous:  p.previous,
		Directive: p.directive,
	})
	if err != nil {
		return err
	}

	var mapped *MappedSolution
	ro.OnSuccess = func(result *domain.OptimizationResult) error {
		m, err := p.apply(result)
		mapped = m
		return err
	}

	return p.orchestrator.Start(ctx, req, ro, func(_ *domain.OptimizationResult, err error) {
		p.mu.Lock()
		p.lastErr = err
		p.mu.Unlock()

		if err != nil {
			log.Printf("op=planner.optimize err=%v", err)
		}
		if done != nil {
			done(mapped, err)
		}
	})
}

func (p *Planner) apply(result *domain.OptimizationResult) (*MappedSolution, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	mapped, err := MapSolution(p.catalog, result)
	if err != nil {
		return nil, err
	}

	// A result without routes keeps the last known-good solution.
	if mapped.Solution != nil {
		p.previous = mapped.Solution
		p.paths = PlannerPaths{Current: mapped.Paths, Previous: p.paths.Current}
	}
	log.Printf("op=planner.apply job_id=%s routes=%d", result.ID, len(mapped.Paths))
	return mapped, nil
}

func (p *Planner) checkIdle() error {
	if p.orchestrator.InFlight() {
		return ErrJobInFlight
	}
	return nil
}
