package parking

import (
	"crypto/rand"
	"math/big"
	mathrand "math/rand/v2"
)

// Source supplies the randomness behind slot draws and plate generation.
// Intn returns a value in [0, n) for n > 0.
type Source interface {
	Intn(n int) int
}

type cryptoSource struct{}

func NewCryptoSource() Source {
	return cryptoSource{}
}

func (cryptoSource) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

type seededSource struct {
	rng *mathrand.Rand
}

// NewSeededSource returns a reproducible Source. Two sources built from the
// same seed produce the same draws.
func NewSeededSource(seed uint64) Source {
	return &seededSource{rng: mathrand.New(mathrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *seededSource) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return s.rng.IntN(n)
}

// SequenceSource replays a fixed list of values, wrapping around when it runs
// out. Each value is reduced modulo n.
type SequenceSource struct {
	values []int
	pos    int
}

func NewSequenceSource(values ...int) *SequenceSource {
	return &SequenceSource{values: values}
}

func (s *SequenceSource) Intn(n int) int {
	if n <= 0 || len(s.values) == 0 {
		return 0
	}
	v := s.values[s.pos%len(s.values)]
	s.pos++
	return normalize(v, n)
}

func normalize(v, n int) int {
	return ((v % n) + n) % n
}
