// Package catalog owns the in-memory mock data for the lifetime of the
// process. Readers get copies; writers go through Update so concurrent
// requests never observe a half-applied action.
package catalog

import (
	"errors"
	"slices"
	"sync"

	"pingplatform/internal/fixtures"
	"pingplatform/internal/models"
)

var ErrNotFound = errors.New("not found")

type Data struct {
	fixtures.Set
	Feedback []models.Feedback
}

type Catalog struct {
	mu   sync.RWMutex
	data Data
}

func New(set fixtures.Set) *Catalog {
	return &Catalog{data: Data{Set: set}}
}

// Update runs fn with exclusive access. fn must validate before it
// mutates: an error return does not roll back earlier writes.
func (c *Catalog) Update(fn func(d *Data) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fn(&c.data)
}

// Snapshot returns a copy of every collection.
func (c *Catalog) Snapshot() Data {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d := c.data
	return Data{
		Set: fixtures.Set{
			Accounts:       slices.Clone(d.Accounts),
			Credentials:    slices.Clone(d.Credentials),
			Scans:          slices.Clone(d.Scans),
			FraudCases:     slices.Clone(d.FraudCases),
			Alerts:         slices.Clone(d.Alerts),
			Campaigns:      slices.Clone(d.Campaigns),
			DropPoints:     slices.Clone(d.DropPoints),
			CollectionLogs: slices.Clone(d.CollectionLogs),
			Rewards:        slices.Clone(d.Rewards),
			ClaimedRewards: slices.Clone(d.ClaimedRewards),
			Batches:        slices.Clone(d.Batches),
		},
		Feedback: slices.Clone(d.Feedback),
	}
}

func (c *Catalog) Account(id string) (models.Account, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i := c.data.AccountIndex(id)
	if i < 0 {
		return models.Account{}, ErrNotFound
	}
	return c.data.Accounts[i], nil
}

// UpdateAccount applies fn to the stored account and returns the result.
func (c *Catalog) UpdateAccount(id string, fn func(a *models.Account)) (models.Account, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.data.AccountIndex(id)
	if i < 0 {
		return models.Account{}, ErrNotFound
	}
	fn(&c.data.Accounts[i])
	return c.data.Accounts[i], nil
}

func (c *Catalog) Reward(id string) (models.Reward, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i := c.data.RewardIndex(id)
	if i < 0 {
		return models.Reward{}, ErrNotFound
	}
	return c.data.Rewards[i], nil
}

func (c *Catalog) DropPoint(id string) (models.DropPoint, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i := c.data.DropPointIndex(id)
	if i < 0 {
		return models.DropPoint{}, ErrNotFound
	}
	return c.data.DropPoints[i], nil
}

// ClaimsFor returns the claimed rewards of one account, newest first.
func (c *Catalog) ClaimsFor(accountID string) []models.ClaimedReward {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []models.ClaimedReward
	for i := len(c.data.ClaimedRewards) - 1; i >= 0; i-- {
		if c.data.ClaimedRewards[i].AccountID == accountID {
			out = append(out, c.data.ClaimedRewards[i])
		}
	}
	return out
}

// ScansFor returns the scan history of one account, newest first.
func (c *Catalog) ScansFor(accountID string) []models.ScanLog {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []models.ScanLog
	for i := len(c.data.Scans) - 1; i >= 0; i-- {
		if c.data.Scans[i].AccountID == accountID {
			out = append(out, c.data.Scans[i])
		}
	}
	return out
}

func (d *Data) AccountIndex(id string) int {
	return slices.IndexFunc(d.Accounts, func(a models.Account) bool { return a.ID == id })
}

func (d *Data) RewardIndex(id string) int {
	return slices.IndexFunc(d.Rewards, func(r models.Reward) bool { return r.ID == id })
}

func (d *Data) DropPointIndex(id string) int {
	return slices.IndexFunc(d.DropPoints, func(p models.DropPoint) bool { return p.ID == id })
}

func (d *Data) FraudCaseIndex(id string) int {
	return slices.IndexFunc(d.FraudCases, func(f models.FraudCase) bool { return f.ID == id })
}

func (d *Data) AlertIndex(id string) int {
	return slices.IndexFunc(d.Alerts, func(a models.CounterfeitAlert) bool { return a.ID == id })
}

func (d *Data) CampaignIndex(id string) int {
	return slices.IndexFunc(d.Campaigns, func(c models.Campaign) bool { return c.ID == id })
}
