package sampling

import "math/rand/v2"

// DefaultSeed is the fixed "zero" seed used when callers pass seed==0.
const DefaultSeed uint64 = 1

// pcgIncrement is the second PCG word; any odd constant keeps streams independent.
const pcgIncrement uint64 = 0xda3e39cb94b95bdb

// NewSource returns a deterministic PCG source.
// Policy: seed==0 ⇒ DefaultSeed; otherwise the seed is used verbatim.
func NewSource(seed uint64) *rand.PCG {
	if seed == 0 {
		seed = DefaultSeed
	}
	return rand.NewPCG(seed, pcgIncrement)
}

// NewRand returns a deterministic *rand.Rand over NewSource(seed).
func NewRand(seed uint64) *rand.Rand {
	return rand.New(NewSource(seed))
}

// DeriveSeed mixes a parent seed and a stream identifier into a new 64-bit seed
// with a SplitMix64 finalizer, so neighbouring stream ids give unrelated seeds.
//
// Complexity: O(1).
func DeriveSeed(parent, stream uint64) uint64 {
	x := parent ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

// Derive creates the independent stream for (seed, stream). Use it once per
// worker or per state during setup, never share the result across goroutines.
func Derive(seed, stream uint64) *rand.Rand {
	if seed == 0 {
		seed = DefaultSeed
	}
	return rand.New(NewSource(DeriveSeed(seed, stream)))
}

// Shuffle performs an in-place Fisher–Yates shuffle of a.
// If rng==nil, the DefaultSeed stream is used.
func Shuffle(a []int, rng *rand.Rand) {
	if len(a) <= 1 {
		return
	}
	if rng == nil {
		rng = NewRand(0)
	}
	for i := len(a) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		a[i], a[j] = a[j], a[i]
	}
}
