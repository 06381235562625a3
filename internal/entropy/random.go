// Package entropy provides the injectable random source used for exploratory
// pricing, fair-split tie-breaks and population generation.
// A seeded source makes a whole run reproducible; seed 0 draws a seed from
// crypto/rand.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"log/slog"
	mrand "math/rand"
)

// Source is the subset of *math/rand.Rand the simulation draws from.
type Source interface {
	Float64() float64 // [0, 1)
	Intn(n int) int   // [0, n)
}

// New returns a seeded source. A zero seed is replaced with one from crypto/rand.
func New(seed int64) (Source, int64) {
	if seed == 0 {
		seed = CryptoSeed()
		slog.Debug("random seed drawn from crypto/rand", "seed", seed)
	}
	return mrand.New(mrand.NewSource(seed)), seed
}

// CryptoSeed returns a non-zero seed from crypto/rand.
func CryptoSeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// This should never happen but fall back to a fixed seed.
		return 1
	}
	seed := int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
	if seed == 0 {
		return 1
	}
	return seed
}

// Script is a Source that replays fixed values, cycling when exhausted.
// Used to force both branches of randomized decisions.
type Script struct {
	Floats []float64
	Ints   []int

	fi, ii int
}

// Float64 returns the next scripted float, or 0 if none are scripted.
func (s *Script) Float64() float64 {
	if len(s.Floats) == 0 {
		return 0
	}
	v := s.Floats[s.fi%len(s.Floats)]
	s.fi++
	return v
}

// Intn returns the next scripted int reduced modulo n, or 0 if none are scripted.
func (s *Script) Intn(n int) int {
	if len(s.Ints) == 0 || n <= 0 {
		return 0
	}
	v := s.Ints[s.ii%len(s.Ints)]
	s.ii++
	if v < 0 {
		v = -v
	}
	return v % n
}
