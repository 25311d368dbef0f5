package predictor

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdjustQuantity(t *testing.T) {
	tests := []struct {
		raw   float64
		noise int
		want  int
	}{
		{10.4, 8, 2},
		{2, 8, 0},
		{10.6, 1, 10},
		{2.5, 1, 1},  // half rounds to even
		{3.5, 1, 3},  // half rounds to even
		{-4.2, 1, 0}, // never negative
		{math.NaN(), 1, 0},
		{-1e19, 3, 0},  // below the int range
		{-1e300, 1, 0}, // far below the int range
		{math.Inf(-1), 1, 0},
		{math.Inf(1), 1, math.MaxInt32 - 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, AdjustQuantity(tt.raw, tt.noise), "raw=%v noise=%d", tt.raw, tt.noise)
	}
}

func TestPerturber_DrawStaysInRange(t *testing.T) {
	p, err := NewPerturber(rand.New(rand.NewSource(7)), DefaultNoiseMin, DefaultNoiseMax)
	require.NoError(t, err)

	seen := make(map[int]bool)
	for i := 0; i < 2000; i++ {
		n := p.Draw()
		require.GreaterOrEqual(t, n, 1)
		require.LessOrEqual(t, n, 8)
		seen[n] = true
	}
	assert.Len(t, seen, 8)
}

func TestPerturber_SeededIsReproducible(t *testing.T) {
	a, err := NewPerturberFromSeed(99, 1, 8)
	require.NoError(t, err)
	b, err := NewPerturberFromSeed(99, 1, 8)
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		raw := float64(i) * 1.7
		assert.Equal(t, a.Adjust(raw), b.Adjust(raw))
	}
}

func TestNewPerturber_Validates(t *testing.T) {
	_, err := NewPerturber(nil, 1, 8)
	assert.Error(t, err)

	_, err = NewPerturber(rand.New(rand.NewSource(1)), 5, 2)
	assert.Error(t, err)

	_, err = NewPerturber(rand.New(rand.NewSource(1)), -1, 2)
	assert.Error(t, err)

	p, err := NewPerturber(rand.New(rand.NewSource(1)), 3, 3)
	require.NoError(t, err)
	assert.Equal(t, 7, p.Adjust(10))
}
