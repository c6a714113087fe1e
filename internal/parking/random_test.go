package parking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequenceSourceWrapsAndNormalizes(t *testing.T) {
	src := NewSequenceSource(3, -1, 12)

	got := []int{src.Intn(5), src.Intn(5), src.Intn(5), src.Intn(5)}
	assert.Equal(t, []int{3, 4, 2, 3}, got)

	assert.Zero(t, NewSequenceSource().Intn(5), "empty sequence")
}

func TestSeededSourceIsReproducible(t *testing.T) {
	a, b := NewSeededSource(99), NewSeededSource(99)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Intn(1000), b.Intn(1000), "draw %d", i)
	}
}

func TestSourcesStayInRange(t *testing.T) {
	for name, src := range map[string]Source{
		"crypto": NewCryptoSource(),
		"seeded": NewSeededSource(3),
	} {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 200; i++ {
				v := src.Intn(7)
				assert.True(t, v >= 0 && v < 7, "value %d out of range", v)
			}
			assert.Zero(t, src.Intn(0))
		})
	}
}
