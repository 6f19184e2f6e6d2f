// Package simulate runs the mock actions: product scans, reward claims,
// recycling submissions and feedback. Each action waits a fixed delay on
// the injected clock and then applies its outcome to the catalog.
package simulate

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"pingplatform/internal/catalog"
	"pingplatform/internal/models"
	"pingplatform/internal/notify"
)

var (
	ErrScanInProgress      = errors.New("a scan is already in progress")
	ErrInsufficientBalance = errors.New("insufficient token balance")
	ErrOutOfStock          = errors.New("reward is out of stock")
	ErrDropPointFull       = errors.New("drop point is at capacity")
	ErrInvalidBottles      = errors.New("bottle count must be positive")
	ErrEmptyFeedback       = errors.New("feedback message must not be empty")
	ErrInvalidRating       = errors.New("rating must be between 1 and 5")
)

type Delays struct {
	Scan    time.Duration
	Claim   time.Duration
	Recycle time.Duration
}

type Options struct {
	Delays          Delays
	Profile         RewardProfile
	TokensPerBottle int
}

type Engine struct {
	clock    clockwork.Clock
	catalog  *catalog.Catalog
	outcomes OutcomeProvider
	feed     *notify.Feed
	sender   notify.Sender
	opts     Options

	mu    sync.Mutex
	scans map[string]ScanStatus

	// wg tracks actions still completing after their caller left.
	wg sync.WaitGroup
}

func NewEngine(c clockwork.Clock, cat *catalog.Catalog, outcomes OutcomeProvider, feed *notify.Feed, sender notify.Sender, opts Options) *Engine {
	if opts.Profile == nil {
		opts.Profile = AuthenticationProfile
	}
	if opts.TokensPerBottle <= 0 {
		opts.TokensPerBottle = 2
	}
	if sender == nil {
		sender = notify.LogSender{}
	}
	return &Engine{
		clock:    c,
		catalog:  cat,
		outcomes: outcomes,
		feed:     feed,
		sender:   sender,
		opts:     opts,
		scans:    map[string]ScanStatus{},
	}
}

// Wait blocks until every started action and alert delivery has completed.
func (e *Engine) Wait() { e.wg.Wait() }

type outcome[T any] struct {
	value T
	err   error
}

// afterDelay runs fn once d has elapsed on the engine clock. The action
// always completes; a caller whose ctx ends only stops waiting for it.
func afterDelay[T any](ctx context.Context, e *Engine, d time.Duration, fn func() (T, error)) (T, error) {
	done := make(chan outcome[T], 1)
	var timer <-chan time.Time
	if d > 0 {
		timer = e.clock.After(d)
	}
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		if timer != nil {
			<-timer
		}
		v, err := fn()
		done <- outcome[T]{value: v, err: err}
	}()
	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// alertTimeout bounds one background alert delivery.
const alertTimeout = 30 * time.Second

// dispatchAlert hands the alert to the sender without holding up the
// scan. Delivery is tracked by Wait.
func (e *Engine) dispatchAlert(alert models.CounterfeitAlert) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), alertTimeout)
		defer cancel()
		if err := e.sender.SendCounterfeitAlert(ctx, alert); err != nil {
			log.Printf("counterfeit alert delivery failed alert=%s err=%v", alert.ID, err)
			return
		}
		log.Printf("counterfeit alert delivered alert=%s", alert.ID)
	}()
}
