package transport

import (
	"math"

	"github.com/pthm-cable/fluence/mesh"
	"github.com/pthm-cable/fluence/particle"
	"github.com/pthm-cable/fluence/rng"
	"github.com/pthm-cable/fluence/tally"
	"github.com/pthm-cable/fluence/xs"
)

// Per-lane event classification for the current sub-step.
const (
	eventCollision uint8 = iota
	eventFacet
	eventCensus
	eventDead
)

// blockScratch holds the per-lane working set for one block of particles.
// Every phase of the kernel reads and writes these flat arrays so the loops
// stay vectorisable with masked lanes.
type blockScratch struct {
	event  []uint8
	xFacet []bool

	scatterHint []int
	absorbHint  []int

	localDensity  []float64
	numberDensity []float64
	microScatter  []float64
	microAbsorb   []float64
	macroScatter  []float64
	macroAbsorb   []float64

	cellMFP   []float64
	speed     []float64
	distFacet []float64
	distCol   []float64

	// Per-lane RNG call counter; combined with the particle key it makes
	// the random stream a pure function of the particle's event history,
	// independent of thread count and block partition.
	rngCtr []uint64
}

func newBlockScratch(blockSize int) *blockScratch {
	return &blockScratch{
		event:         make([]uint8, blockSize),
		xFacet:        make([]bool, blockSize),
		scatterHint:   make([]int, blockSize),
		absorbHint:    make([]int, blockSize),
		localDensity:  make([]float64, blockSize),
		numberDensity: make([]float64, blockSize),
		microScatter:  make([]float64, blockSize),
		microAbsorb:   make([]float64, blockSize),
		macroScatter:  make([]float64, blockSize),
		macroAbsorb:   make([]float64, blockSize),
		cellMFP:       make([]float64, blockSize),
		speed:         make([]float64, blockSize),
		distFacet:     make([]float64, blockSize),
		distCol:       make([]float64, blockSize),
		rngCtr:        make([]uint64, blockSize),
	}
}

// worker transports a contiguous slice of the particle table for one
// timestep. Each worker owns its slice exclusively; the tally grid is the
// only shared sink.
type worker struct {
	m           *mesh.Mesh
	scatter     *xs.Table
	absorb      *xs.Table
	p           *particle.Table
	grid        *tally.Grid
	scratch     *blockScratch
	masterKey   uint64
	invTotal    float64
	tallyAtExit bool

	stats StepStats
}

// run processes count particles starting at offset, block by block.
func (w *worker) run(offset, count int) {
	blockSize := len(w.scratch.event)
	for pp := 0; pp < count; pp += blockSize {
		np := min(blockSize, count-pp)
		w.runBlock(offset+pp, np)
	}
}

// runBlock drives one block of particles to census or death. Sub-steps are
// phased: classify every lane's next event, apply collisions, apply facet
// crossings, repeat; census is applied once after the block settles.
func (w *worker) runBlock(pOff, np int) {
	p, s := w.p, w.scratch

	// Cache per-lane quantities that are stable between events.
	for ip := 0; ip < np; ip++ {
		pip := pOff + ip
		if p.Dead[pip] != 0 {
			continue
		}
		w.stats.Live++

		s.xFacet[ip] = false
		s.scatterHint[ip] = -1
		s.absorbHint[ip] = -1
		s.rngCtr[ip] = 0
		p.EnergyDeposition[pip] = 0.0

		// A fresh timestep grants the full census budget; the mean-free-path
		// budget carries over from the previous timestep.
		p.DtToCensus[pip] = w.m.Dt

		s.localDensity[ip] = w.m.DensityAt(int(p.CellX[pip]), int(p.CellY[pip]))
		s.microScatter[ip], s.scatterHint[ip] = w.scatter.Lookup(p.Energy[pip], s.scatterHint[ip])
		s.microAbsorb[ip], s.absorbHint[ip] = w.absorb.Lookup(p.Energy[pip], s.absorbHint[ip])
		s.numberDensity[ip] = s.localDensity[ip] * Avogadros / MolarMass
		s.macroScatter[ip] = s.numberDensity[ip] * s.microScatter[ip] * Barns
		s.macroAbsorb[ip] = s.numberDensity[ip] * s.microAbsorb[ip] * Barns
		s.speed[ip] = math.Sqrt(2.0 * p.Energy[pip] * EVToJ / ParticleMass)
	}

	for {
		// Classify the next event for every lane. Ties resolve
		// collision < facet < census.
		ncompleted := 0
		for ip := 0; ip < np; ip++ {
			pip := pOff + ip
			if p.Dead[pip] != 0 {
				s.event[ip] = eventDead
				ncompleted++
				continue
			}

			s.cellMFP[ip] = 1.0 / (s.macroScatter[ip] + s.macroAbsorb[ip])

			res := w.m.DistanceToFacet(
				p.X[pip], p.Y[pip], p.OmegaX[pip], p.OmegaY[pip],
				s.speed[ip], int(p.CellX[pip]), int(p.CellY[pip]))
			s.distFacet[ip] = res.Distance
			s.xFacet[ip] = res.XFacet

			// A zero mean-free-path budget is a collision on the spot;
			// guard the product so an infinite cell mfp (void cell)
			// cannot turn it into a NaN.
			if p.MfpToCollision[pip] == 0.0 {
				s.distCol[ip] = 0.0
			} else {
				s.distCol[ip] = p.MfpToCollision[pip] * s.cellMFP[ip]
			}
			distCensus := s.speed[ip] * p.DtToCensus[pip]

			switch {
			case s.distCol[ip] <= s.distFacet[ip] && s.distCol[ip] <= distCensus:
				s.event[ip] = eventCollision
				w.stats.Collisions++
			case s.distFacet[ip] <= distCensus:
				s.event[ip] = eventFacet
				w.stats.Facets++
			default:
				s.event[ip] = eventCensus
				ncompleted++
			}
		}

		if ncompleted == np {
			break
		}

		for ip := 0; ip < np; ip++ {
			if s.event[ip] != eventCollision {
				continue
			}
			w.collisionEvent(ip, pOff+ip)
		}

		// Deposit the segment streamed to the facet while the lane still
		// sees its current cell. Tally-at-exit mode also flushes it before
		// the lane leaves, so the deposit lands where it was earned.
		for ip := 0; ip < np; ip++ {
			pip := pOff + ip
			if s.event[ip] != eventFacet {
				continue
			}
			p.EnergyDeposition[pip] += depositionFor(
				p.Energy[pip], p.Weight[pip], s.distFacet[ip],
				s.numberDensity[ip], s.microAbsorb[ip],
				s.microScatter[ip]+s.microAbsorb[ip])
			if w.tallyAtExit {
				w.flushTally(pip)
			}
		}

		for ip := 0; ip < np; ip++ {
			if s.event[ip] != eventFacet {
				continue
			}
			w.facetEvent(ip, pOff+ip)
		}
	}

	for ip := 0; ip < np; ip++ {
		if s.event[ip] != eventCensus {
			continue
		}
		w.censusEvent(ip, pOff+ip)
	}
}

// collisionEvent moves the lane to the collision site and resolves the
// interaction. The first uniform pair covers the absorb/scatter roll and the
// centre-of-mass angle; the second resamples the mean free paths to the next
// collision. Both counters are consumed whether or not the branch draws.
func (w *worker) collisionEvent(ip, pip int) {
	p, s := w.p, w.scratch

	distToCollision := s.distCol[ip]
	p.EnergyDeposition[pip] += depositionFor(
		p.Energy[pip], p.Weight[pip], distToCollision,
		s.numberDensity[ip], s.microAbsorb[ip],
		s.microScatter[ip]+s.microAbsorb[ip])

	p.X[pip] += distToCollision * p.OmegaX[pip]
	p.Y[pip] += distToCollision * p.OmegaY[pip]

	pAbsorb := 0.0
	if sigTotal := s.macroScatter[ip] + s.macroAbsorb[ip]; sigTotal > 0.0 {
		pAbsorb = s.macroAbsorb[ip] / sigTotal
	}

	u0, u1 := rng.Pair(w.masterKey, p.Key[pip], s.rngCtr[ip])

	if u0 < pAbsorb {
		// Implicit capture: survive with reduced weight.
		p.Weight[pip] *= 1.0 - pAbsorb

		if p.Energy[pip] < MinEnergyOfInterest {
			p.Dead[pip] = 1
			w.flushTally(pip)
		}
	} else {
		// Elastic scatter, isotropic in the centre-of-mass frame.
		muCM := 1.0 - 2.0*u1

		eNew := p.Energy[pip] *
			(MassNo*MassNo + 2.0*MassNo*muCM + 1.0) /
			((MassNo + 1.0) * (MassNo + 1.0))

		cosTheta := 0.5 * ((MassNo+1.0)*math.Sqrt(eNew/p.Energy[pip]) -
			(MassNo-1.0)*math.Sqrt(p.Energy[pip]/eNew))
		sinTheta := math.Sqrt(1.0 - cosTheta*cosTheta)

		omegaX := p.OmegaX[pip]*cosTheta - p.OmegaY[pip]*sinTheta
		omegaY := p.OmegaX[pip]*sinTheta + p.OmegaY[pip]*cosTheta
		p.OmegaX[pip] = omegaX
		p.OmegaY[pip] = omegaY
		p.Energy[pip] = eNew
	}

	if p.Dead[pip] != 0 {
		s.rngCtr[ip] += 2
		return
	}

	// The energy changed, so refresh the cross sections.
	s.microScatter[ip], s.scatterHint[ip] = w.scatter.Lookup(p.Energy[pip], s.scatterHint[ip])
	s.microAbsorb[ip], s.absorbHint[ip] = w.absorb.Lookup(p.Energy[pip], s.absorbHint[ip])
	s.numberDensity[ip] = s.localDensity[ip] * Avogadros / MolarMass
	s.macroScatter[ip] = s.numberDensity[ip] * s.microScatter[ip] * Barns
	s.macroAbsorb[ip] = s.numberDensity[ip] * s.microAbsorb[ip] * Barns

	u2, _ := rng.Pair(w.masterKey, p.Key[pip], s.rngCtr[ip]+1)
	p.MfpToCollision[pip] = -math.Log(u2) / s.macroScatter[ip]
	p.DtToCensus[pip] -= distToCollision / s.speed[ip]

	s.speed[ip] = math.Sqrt(2.0 * p.Energy[pip] * EVToJ / ParticleMass)
	s.rngCtr[ip] += 2
}

// facetEvent streams the lane to the cell boundary and either reflects it at
// a global boundary or steps it into the neighbouring cell. Energy is
// unchanged, so only the density-derived quantities refresh.
func (w *worker) facetEvent(ip, pip int) {
	p, s := w.p, w.scratch

	distToFacet := s.distFacet[ip]
	p.MfpToCollision[pip] -= distToFacet / s.cellMFP[ip]
	p.DtToCensus[pip] -= distToFacet / s.speed[ip]

	p.X[pip] += distToFacet * p.OmegaX[pip]
	p.Y[pip] += distToFacet * p.OmegaY[pip]

	if s.xFacet[ip] {
		if p.OmegaX[pip] > 0.0 {
			if int(p.CellX[pip]) >= w.m.GlobalNX-1 {
				p.OmegaX[pip] = -p.OmegaX[pip]
			} else {
				p.CellX[pip]++
			}
		} else if p.OmegaX[pip] < 0.0 {
			if p.CellX[pip] <= 0 {
				p.OmegaX[pip] = -p.OmegaX[pip]
			} else {
				p.CellX[pip]--
			}
		}
	} else {
		if p.OmegaY[pip] > 0.0 {
			if int(p.CellY[pip]) >= w.m.GlobalNY-1 {
				p.OmegaY[pip] = -p.OmegaY[pip]
			} else {
				p.CellY[pip]++
			}
		} else if p.OmegaY[pip] < 0.0 {
			if p.CellY[pip] <= 0 {
				p.OmegaY[pip] = -p.OmegaY[pip]
			} else {
				p.CellY[pip]--
			}
		}
	}

	s.localDensity[ip] = w.m.DensityAt(int(p.CellX[pip]), int(p.CellY[pip]))
	s.numberDensity[ip] = s.localDensity[ip] * Avogadros / MolarMass
	s.macroScatter[ip] = s.numberDensity[ip] * s.microScatter[ip] * Barns
	s.macroAbsorb[ip] = s.numberDensity[ip] * s.microAbsorb[ip] * Barns
}

// censusEvent streams the lane to the end of the timestep and flushes its
// accumulated deposition. The lane is terminal for this timestep.
func (w *worker) censusEvent(ip, pip int) {
	p, s := w.p, w.scratch

	distToCensus := s.speed[ip] * p.DtToCensus[pip]
	p.X[pip] += distToCensus * p.OmegaX[pip]
	p.Y[pip] += distToCensus * p.OmegaY[pip]
	p.MfpToCollision[pip] -= distToCensus / s.cellMFP[ip]

	p.EnergyDeposition[pip] += depositionFor(
		p.Energy[pip], p.Weight[pip], distToCensus,
		s.numberDensity[ip], s.microAbsorb[ip],
		s.microScatter[ip]+s.microAbsorb[ip])
	w.flushTally(pip)

	p.DtToCensus[pip] = 0.0
}

// flushTally moves the lane's accumulated deposition into the shared grid,
// pre-normalised by the global particle count.
func (w *worker) flushTally(pip int) {
	p := w.p
	w.grid.Add(
		int(p.CellX[pip])-w.m.XOff,
		int(p.CellY[pip])-w.m.YOff,
		p.EnergyDeposition[pip]*w.invTotal)
	p.EnergyDeposition[pip] = 0.0
}
