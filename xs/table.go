// Package xs holds microscopic cross-section tables and their interpolated
// energy lookup.
package xs

import "sync/atomic"

// Table is a sorted (energy, sigma) table with strictly increasing energies.
// Lookups interpolate linearly between neighbouring entries.
type Table struct {
	keys   []float64
	values []float64

	// Count of lookups that fell outside the table range and were clamped
	// to an endpoint. Incremented atomically; lookups themselves stay pure.
	outOfRange atomic.Uint64
}

// New builds a table from parallel key/value slices. Keys must be strictly
// increasing and at least two entries long; New panics otherwise, since a
// malformed table is a configuration error caught at load time.
func New(keys, values []float64) *Table {
	if len(keys) < 2 || len(keys) != len(values) {
		panic("xs: table needs at least two matched (energy, sigma) entries")
	}
	for i := 1; i < len(keys); i++ {
		if keys[i] <= keys[i-1] {
			panic("xs: table energies must be strictly increasing")
		}
	}
	return &Table{keys: keys, values: values}
}

// Len returns the number of table entries.
func (t *Table) Len() int { return len(t.keys) }

// MinEnergy returns the lowest tabulated energy.
func (t *Table) MinEnergy() float64 { return t.keys[0] }

// MaxEnergy returns the highest tabulated energy.
func (t *Table) MaxEnergy() float64 { return t.keys[len(t.keys)-1] }

// OutOfRangeCount reports how many lookups were clamped to a table endpoint.
func (t *Table) OutOfRangeCount() uint64 { return t.outOfRange.Load() }

// Lookup returns the interpolated cross section for the given energy along
// with the bracketing index to pass back as the hint on the next call.
//
// With hint >= 0 the bracket is found by walking linearly from the hinted
// index towards the energy; particle energies only drift between events, so
// the walk is O(1) in practice. With a negative hint the bracket is found by
// a midpoint search with a halving step, clamped to a minimum step of one so
// odd table sizes converge.
//
// Energies outside the table range clamp to the nearest endpoint and bump
// the out-of-range counter; the kernel never produces such energies in
// normal operation.
func (t *Table) Lookup(energy float64, hint int) (float64, int) {
	keys, values := t.keys, t.values
	n := len(keys)

	if energy < keys[0] {
		t.outOfRange.Add(1)
		return values[0], 0
	}
	if energy >= keys[n-1] {
		if energy > keys[n-1] {
			t.outOfRange.Add(1)
			return values[n-1], n - 2
		}
		// Exactly on the final knot: interpolation over the last interval
		// returns the tabulated value.
		return values[n-1], n - 2
	}

	var ind int
	if hint >= 0 && hint < n-1 {
		// Walk from the hint in the direction of the target energy.
		dir := 1
		if energy < keys[hint] {
			dir = -1
		}
		for ind = hint; ind >= 0 && ind < n-1; ind += dir {
			if energy >= keys[ind] && energy < keys[ind+1] {
				break
			}
		}
	} else {
		// Midpoint search, halving the step each probe.
		ind = min(n/2, n-2)
		width := ind / 2
		for energy < keys[ind] || energy >= keys[ind+1] {
			if energy < keys[ind] {
				ind -= width
			} else {
				ind += width
			}
			ind = min(max(ind, 0), n-2)
			width = max(1, width/2)
		}
	}

	sigma := values[ind] +
		((energy-keys[ind])/(keys[ind+1]-keys[ind]))*(values[ind+1]-values[ind])
	return sigma, ind
}
