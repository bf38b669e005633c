package transport

import (
	"runtime"
	"sync"

	"github.com/pthm-cable/fluence/mesh"
	"github.com/pthm-cable/fluence/particle"
	"github.com/pthm-cable/fluence/tally"
	"github.com/pthm-cable/fluence/xs"
)

// Options tunes a transport solve. The zero value picks the defaults:
// 32-lane blocks, GOMAXPROCS workers, census-only tally flushes, and
// normalisation by the local particle count.
type Options struct {
	// BlockSize is the number of particles the kernel processes together.
	BlockSize int

	// Workers is the number of transport goroutines; 0 means GOMAXPROCS.
	Workers int

	// TallyAtExit flushes energy deposition at every facet crossing
	// instead of only at census and death. Total deposited energy is
	// identical in both modes.
	TallyAtExit bool

	// TotalParticles is the global particle count used to normalise tally
	// contributions; 0 means the local count.
	TotalParticles int
}

// StepStats aggregates the per-timestep event counters across workers.
type StepStats struct {
	Live       uint64
	Collisions uint64
	Facets     uint64
}

// add adds two counter sets.
func (s StepStats) add(o StepStats) StepStats {
	s.Live += o.Live
	s.Collisions += o.Collisions
	s.Facets += o.Facets
	return s
}

// Solve transports every particle in the table through one timestep,
// accumulating energy deposition into the tally grid in place.
//
// The master key is advanced once on entry so each timestep draws from a
// fresh set of random streams. Particles are split evenly across workers
// (remainder spread over the first N mod T slices); each worker owns its
// slice exclusively and processes it block by block, so particle
// trajectories are bit-identical for any worker count.
func Solve(m *mesh.Mesh, scatter, absorb *xs.Table, p *particle.Table,
	grid *tally.Grid, masterKey *uint64, opts Options) StepStats {

	if p.N == 0 {
		return StepStats{}
	}

	*masterKey++

	blockSize := opts.BlockSize
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > p.N {
		workers = p.N
	}
	total := opts.TotalParticles
	if total <= 0 {
		total = p.N
	}

	nPer := p.N / workers
	remainder := p.N % workers

	stats := make([]StepStats, workers)
	var wg sync.WaitGroup
	for tid := 0; tid < workers; tid++ {
		offset := tid*nPer + min(tid, remainder)
		count := nPer
		if tid < remainder {
			count++
		}

		wg.Add(1)
		go func(tid, offset, count int) {
			defer wg.Done()
			w := &worker{
				m:           m,
				scatter:     scatter,
				absorb:      absorb,
				p:           p,
				grid:        grid,
				scratch:     newBlockScratch(blockSize),
				masterKey:   *masterKey,
				invTotal:    1.0 / float64(total),
				tallyAtExit: opts.TallyAtExit,
			}
			w.run(offset, count)
			stats[tid] = w.stats
		}(tid, offset, count)
	}
	wg.Wait()

	var reduced StepStats
	for _, s := range stats {
		reduced = reduced.add(s)
	}
	return reduced
}
