package predictor

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"
)

const (
	DefaultNoiseMin = 1
	DefaultNoiseMax = 8
)

// Perturber lowers raw predictions by a random integer in [min, max] so the
// published quantity errs on the conservative side.
type Perturber struct {
	mu  sync.Mutex
	rnd *rand.Rand
	min int
	max int
}

// NewPerturber builds a perturber drawing from rnd. Passing a seeded source
// makes the output reproducible.
func NewPerturber(rnd *rand.Rand, min, max int) (*Perturber, error) {
	if rnd == nil {
		return nil, fmt.Errorf("perturber: nil random source")
	}
	if min < 0 || max < min {
		return nil, fmt.Errorf("perturber: invalid noise range [%d, %d]", min, max)
	}
	return &Perturber{rnd: rnd, min: min, max: max}, nil
}

// NewPerturberFromSeed seeds from the clock when seed is zero.
func NewPerturberFromSeed(seed int64, min, max int) (*Perturber, error) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return NewPerturber(rand.New(rand.NewSource(seed)), min, max)
}

// Draw returns the next perturbation.
func (p *Perturber) Draw() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.min + p.rnd.Intn(p.max-p.min+1)
}

// Adjust applies a freshly drawn perturbation to raw.
func (p *Perturber) Adjust(raw float64) int {
	return AdjustQuantity(raw, p.Draw())
}

// AdjustQuantity returns max(0, round(raw) - noise). Halves round to even.
func AdjustQuantity(raw float64, noise int) int {
	if math.IsNaN(raw) {
		return 0
	}
	rounded := math.RoundToEven(raw)
	if rounded <= 0 {
		return 0
	}
	if rounded > math.MaxInt32 {
		rounded = math.MaxInt32
	}
	adjusted := int(rounded) - noise
	if adjusted < 0 {
		return 0
	}
	return adjusted
}
