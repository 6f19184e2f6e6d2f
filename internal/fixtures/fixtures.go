// Package fixtures holds the mock data the platform is seeded with. The
// default document is embedded; FIXTURES_PATH can swap in another file of
// the same shape.
package fixtures

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"pingplatform/internal/models"
)

//go:embed fixtures.yaml
var defaultDocument []byte

var ErrInvalidFixtures = errors.New("invalid fixtures")

type Set struct {
	Accounts       []models.Account          `yaml:"accounts"`
	Credentials    []models.Credential       `yaml:"credentials"`
	Scans          []models.ScanLog          `yaml:"scans"`
	FraudCases     []models.FraudCase        `yaml:"fraud_cases"`
	Alerts         []models.CounterfeitAlert `yaml:"alerts"`
	Campaigns      []models.Campaign         `yaml:"campaigns"`
	DropPoints     []models.DropPoint        `yaml:"drop_points"`
	CollectionLogs []models.CollectionLog    `yaml:"collection_logs"`
	Rewards        []models.Reward           `yaml:"rewards"`
	ClaimedRewards []models.ClaimedReward    `yaml:"claimed_rewards"`
	Batches        []models.ProductBatch     `yaml:"batches"`
}

// Default returns the embedded fixture set.
func Default() (Set, error) {
	return Parse(defaultDocument)
}

// Load reads a fixture file, falling back to the embedded set when path is empty.
func Load(path string) (Set, error) {
	if path == "" {
		return Default()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Set{}, fmt.Errorf("read fixtures: %w", err)
	}
	return Parse(b)
}

func Parse(b []byte) (Set, error) {
	var s Set
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Set{}, fmt.Errorf("decode fixtures: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Set{}, err
	}
	return s, nil
}

func (s Set) Validate() error {
	accounts := map[string]bool{}
	for _, a := range s.Accounts {
		if a.ID == "" || accounts[a.ID] {
			return fmt.Errorf("%w: account id %q is empty or duplicated", ErrInvalidFixtures, a.ID)
		}
		accounts[a.ID] = true
	}
	users := map[string]bool{}
	for _, c := range s.Credentials {
		if c.Username == "" || users[c.Username] {
			return fmt.Errorf("%w: credential %q is empty or duplicated", ErrInvalidFixtures, c.Username)
		}
		users[c.Username] = true
		if !accounts[c.AccountID] {
			return fmt.Errorf("%w: credential %q references unknown account %q", ErrInvalidFixtures, c.Username, c.AccountID)
		}
		if c.Kind != models.KindUser && c.Kind != models.KindAdmin {
			return fmt.Errorf("%w: credential %q has kind %q", ErrInvalidFixtures, c.Username, c.Kind)
		}
	}
	for _, sc := range s.Scans {
		if !accounts[sc.AccountID] {
			return fmt.Errorf("%w: scan %q references unknown account %q", ErrInvalidFixtures, sc.ID, sc.AccountID)
		}
	}
	dropPoints := map[string]bool{}
	for _, dp := range s.DropPoints {
		if dp.ID == "" || dropPoints[dp.ID] {
			return fmt.Errorf("%w: drop point id %q is empty or duplicated", ErrInvalidFixtures, dp.ID)
		}
		dropPoints[dp.ID] = true
	}
	for _, l := range s.CollectionLogs {
		if !dropPoints[l.DropPointID] {
			return fmt.Errorf("%w: collection log %q references unknown drop point %q", ErrInvalidFixtures, l.ID, l.DropPointID)
		}
	}
	rewards := map[string]bool{}
	for _, r := range s.Rewards {
		if r.ID == "" || rewards[r.ID] {
			return fmt.Errorf("%w: reward id %q is empty or duplicated", ErrInvalidFixtures, r.ID)
		}
		rewards[r.ID] = true
	}
	for _, c := range s.ClaimedRewards {
		if !rewards[c.RewardID] {
			return fmt.Errorf("%w: claim %q references unknown reward %q", ErrInvalidFixtures, c.ID, c.RewardID)
		}
	}
	return nil
}
