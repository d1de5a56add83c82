package reply

import (
	"math/rand/v2"
	"sync"
)

// Selector picks one variant from a template pool.
type Selector interface {
	Pick(options []string) string
}

// RandomSelector picks uniformly. Safe for concurrent use.
type RandomSelector struct {
	mu sync.Mutex
	r  *rand.Rand
}

func NewRandomSelector(seed uint64) *RandomSelector {
	return &RandomSelector{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *RandomSelector) Pick(options []string) string {
	if len(options) == 0 {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return options[s.r.IntN(len(options))]
}

// FirstSelector always picks the first variant.
type FirstSelector struct{}

func (FirstSelector) Pick(options []string) string {
	if len(options) == 0 {
		return ""
	}
	return options[0]
}
