package ufed

import (
	"context"
	"fmt"
	"sync"

	"github.com/ufedsim/ufedsim/internal/integrators"
	"github.com/ufedsim/ufedsim/internal/sample"
)

// Seeder is implemented by steppers with an explicit noise seed.
type Seeder interface {
	SetSeed(seed uint64)
}

// Walker builds one independent simulation and its stepper. The
// ensemble calls it once per walker; returned instances must not share
// mutable state.
type Walker func(idx int) (*Simulation, integrators.Stepper, error)

// Ensemble runs independent walkers concurrently and concatenates
// their sample tables in walker order, so a fixed base seed reproduces
// the merged table exactly.
type Ensemble struct {
	walkers int
	build   Walker
}

func NewEnsemble(walkers int, build Walker) *Ensemble {
	return &Ensemble{walkers: walkers, build: build}
}

// Run starts every walker with seed cfg.Seed + idx for both its noise
// source and initial velocities.
func (e *Ensemble) Run(ctx context.Context, cfg Config) (*sample.Table, error) {
	if e.walkers < 1 {
		return nil, fmt.Errorf("ufed: ensemble needs at least one walker, got %d", e.walkers)
	}
	tables := make([]*sample.Table, e.walkers)
	errs := make([]error, e.walkers)

	var wg sync.WaitGroup
	for i := 0; i < e.walkers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			sim, stepper, err := e.build(idx)
			if err != nil {
				errs[idx] = err
				return
			}

			wcfg := cfg
			wcfg.Seed = cfg.Seed + uint64(idx)
			if s, ok := stepper.(Seeder); ok {
				s.SetSeed(wcfg.Seed)
			}
			sim.SetRandomVelocities(wcfg.Seed)

			tables[idx], errs[idx] = sim.Run(ctx, stepper, wcfg)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	merged := tables[0]
	for _, t := range tables[1:] {
		if err := merged.Merge(t); err != nil {
			return nil, err
		}
	}
	return merged, nil
}
