package simulate

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"pingplatform/internal/models"
)

// OutcomeProvider decides the random parts of a simulated scan.
type OutcomeProvider interface {
	ScanResult() models.ScanResult
	// Between returns an integer in [lo, hi].
	Between(lo, hi int) int
}

// RandomOutcomes weights results 70/20/10 across authentic, counterfeit
// and unknown.
type RandomOutcomes struct{}

func (RandomOutcomes) ScanResult() models.ScanResult {
	switch n := rand.IntN(100); {
	case n < 70:
		return models.ScanAuthentic
	case n < 90:
		return models.ScanCounterfeit
	default:
		return models.ScanUnknown
	}
}

func (RandomOutcomes) Between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rand.IntN(hi-lo+1)
}

// SequenceOutcomes replays fixed results and point values in order,
// wrapping around when exhausted. With no points it returns lo.
type SequenceOutcomes struct {
	mu      sync.Mutex
	Results []models.ScanResult
	Points  []int
	ri, pi  int
}

func (s *SequenceOutcomes) ScanResult() models.ScanResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Results) == 0 {
		return models.ScanUnknown
	}
	r := s.Results[s.ri%len(s.Results)]
	s.ri++
	return r
}

func (s *SequenceOutcomes) Between(lo, hi int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Points) == 0 {
		return lo
	}
	v := s.Points[s.pi%len(s.Points)]
	s.pi++
	return min(max(v, lo), hi)
}

type PointRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// RewardProfile is the points awarded per scan result.
type RewardProfile map[models.ScanResult]PointRange

var (
	AuthenticationProfile = RewardProfile{
		models.ScanAuthentic:   {Min: 5, Max: 25},
		models.ScanCounterfeit: {Min: 10, Max: 25},
		models.ScanUnknown:     {Min: 2, Max: 2},
	}
	ConsumerProfile = RewardProfile{
		models.ScanAuthentic:   {Min: 15, Max: 15},
		models.ScanCounterfeit: {Min: 10, Max: 10},
		models.ScanUnknown:     {Min: 2, Max: 2},
	}
)

func ProfileByName(name string) (RewardProfile, error) {
	switch name {
	case "", "authentication":
		return AuthenticationProfile, nil
	case "consumer":
		return ConsumerProfile, nil
	default:
		return nil, fmt.Errorf("unknown reward profile %q", name)
	}
}

func (p RewardProfile) Points(r models.ScanResult, o OutcomeProvider) int {
	rg, ok := p[r]
	if !ok {
		return 0
	}
	if rg.Max <= rg.Min {
		return rg.Min
	}
	return o.Between(rg.Min, rg.Max)
}
