// Package rng provides the counter-based random number service used by the
// transport kernel. The generator is a Threefry-2x64 block cipher run in
// counter mode: it has no internal state, so a (masterKey, secondaryKey,
// counter) triple always maps to the same pair of uniforms, on any platform
// and under any thread schedule.
package rng

import "math/bits"

const (
	rounds = 20

	// Key-schedule parity constant for the Threefish/Threefry family.
	parity = 0x1BD11BDAA9FC1A22

	// Integer-to-(0,1) conversion. The half-step offset keeps both
	// endpoints strictly excluded.
	factor     = 0x1p-64
	halfFactor = 0x1p-65
)

// Rotation schedule for the 2x64 variant, repeated every eight rounds.
var rot = [8]int{16, 42, 12, 31, 16, 32, 24, 21}

// Block runs the Threefry-2x64-20 cipher over a single counter block.
func Block(ctr0, ctr1, key0, key1 uint64) (uint64, uint64) {
	ks := [3]uint64{key0, key1, parity ^ key0 ^ key1}

	x0 := ctr0 + key0
	x1 := ctr1 + key1

	for r := 0; r < rounds; r++ {
		x0 += x1
		x1 = bits.RotateLeft64(x1, rot[r%8])
		x1 ^= x0

		if r%4 == 3 {
			s := uint64(r/4) + 1
			x0 += ks[s%3]
			x1 += ks[(s+1)%3] + s
		}
	}

	return x0, x1
}

// Pair returns two uniform variates in the open interval (0, 1). The master
// key advances once per timestep, the secondary key is the particle's stable
// identifier, and the counter indexes the call within that particle's event
// sequence.
func Pair(masterKey, secondaryKey, counter uint64) (float64, float64) {
	r0, r1 := Block(counter, 0, masterKey, secondaryKey)
	return float64(r0)*factor + halfFactor, float64(r1)*factor + halfFactor
}
