package testutil

import "math/rand/v2"

// Deltas returns n pseudo-random 64-bit deltas. The same seed always yields
// the same slice.
func Deltas(seed uint64, n int) []uint64 {
	rng := rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
	out := make([]uint64, n)
	for i := range out {
		out[i] = rng.Uint64()
	}
	return out
}
