package simulate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pingplatform/internal/catalog"
	"pingplatform/internal/models"
)

// bottleWeightKg is the nominal weight of one PET bottle.
var bottleWeightKg = decimal.RequireFromString("0.025")

// Claim redeems a reward after the claim delay. A failed claim leaves the
// balance, the stock and the claim list untouched.
func (e *Engine) Claim(ctx context.Context, accountID, deviceID, rewardID string) (models.ClaimedReward, error) {
	reward, err := e.catalog.Reward(rewardID)
	if err != nil {
		return models.ClaimedReward{}, fmt.Errorf("claim reward %s: %w", rewardID, err)
	}
	return afterDelay(ctx, e, e.opts.Delays.Claim, func() (models.ClaimedReward, error) {
		var claim models.ClaimedReward
		err := e.catalog.Update(func(d *catalog.Data) error {
			ai, ri := d.AccountIndex(accountID), d.RewardIndex(rewardID)
			if ai < 0 || ri < 0 {
				return catalog.ErrNotFound
			}
			r := d.Rewards[ri]
			if r.Stock <= 0 {
				return ErrOutOfStock
			}
			if d.Accounts[ai].Tokens < r.Cost {
				return ErrInsufficientBalance
			}
			d.Accounts[ai].Tokens -= r.Cost
			d.Rewards[ri].Stock--
			claim = models.ClaimedReward{
				ID:        uuid.NewString(),
				RewardID:  r.ID,
				AccountID: accountID,
				Name:      r.Name,
				Cost:      r.Cost,
				Status:    models.ClaimProcessing,
				ClaimedAt: e.clock.Now(),
			}
			d.ClaimedRewards = append(d.ClaimedRewards, claim)
			return nil
		})
		switch {
		case errors.Is(err, ErrInsufficientBalance):
			e.feed.Push(deviceID, models.LevelError, "Not enough tokens",
				fmt.Sprintf("You need %d tokens to claim %s.", reward.Cost, reward.Name))
		case errors.Is(err, ErrOutOfStock):
			e.feed.Push(deviceID, models.LevelError, "Out of stock", reward.Name+" is no longer available.")
		case err != nil:
			e.feed.Push(deviceID, models.LevelError, "Claim failed", "Please try again.")
		default:
			e.feed.Push(deviceID, models.LevelSuccess, "Reward claimed",
				fmt.Sprintf("%s is being processed.", reward.Name))
		}
		if err != nil {
			log.Printf("claim rejected account=%s reward=%s err=%v", accountID, rewardID, err)
			return models.ClaimedReward{}, err
		}
		log.Printf("claim completed account=%s reward=%s cost=%d claim=%s", accountID, rewardID, claim.Cost, claim.ID)
		return claim, nil
	})
}

type RecycleRequest struct {
	AccountID   string
	DeviceID    string
	DropPointID string
	Bottles     int
}

// Recycle credits bottles dropped at a drop point after the recycle delay.
func (e *Engine) Recycle(ctx context.Context, req RecycleRequest) (models.CollectionLog, error) {
	if req.Bottles <= 0 {
		e.feed.Push(req.DeviceID, models.LevelError, "Invalid submission", ErrInvalidBottles.Error())
		return models.CollectionLog{}, ErrInvalidBottles
	}
	dp, err := e.catalog.DropPoint(req.DropPointID)
	if err != nil {
		return models.CollectionLog{}, fmt.Errorf("recycle drop point %s: %w", req.DropPointID, err)
	}
	return afterDelay(ctx, e, e.opts.Delays.Recycle, func() (models.CollectionLog, error) {
		var entry models.CollectionLog
		err := e.catalog.Update(func(d *catalog.Data) error {
			ai, pi := d.AccountIndex(req.AccountID), d.DropPointIndex(req.DropPointID)
			if ai < 0 || pi < 0 {
				return catalog.ErrNotFound
			}
			p := d.DropPoints[pi]
			if p.Capacity > 0 && p.Collected+req.Bottles > p.Capacity {
				return ErrDropPointFull
			}
			tokens := req.Bottles * e.opts.TokensPerBottle
			entry = models.CollectionLog{
				ID:          uuid.NewString(),
				DropPointID: p.ID,
				AccountID:   req.AccountID,
				Bottles:     req.Bottles,
				WeightKg:    bottleWeightKg.Mul(decimal.NewFromInt(int64(req.Bottles))),
				Tokens:      tokens,
				CollectedAt: e.clock.Now(),
			}
			d.DropPoints[pi].Collected += req.Bottles
			d.Accounts[ai].Tokens += tokens
			d.CollectionLogs = append(d.CollectionLogs, entry)
			return nil
		})
		switch {
		case errors.Is(err, ErrDropPointFull):
			e.feed.Push(req.DeviceID, models.LevelError, "Drop point full",
				dp.Name+" cannot accept more bottles right now.")
		case err != nil:
			e.feed.Push(req.DeviceID, models.LevelError, "Submission failed", "Please try again.")
		default:
			e.feed.Push(req.DeviceID, models.LevelSuccess, "Thanks for recycling",
				fmt.Sprintf("%d bottles at %s earned you %d tokens.", req.Bottles, dp.Name, entry.Tokens))
		}
		if err != nil {
			log.Printf("recycle rejected account=%s drop_point=%s bottles=%d err=%v", req.AccountID, req.DropPointID, req.Bottles, err)
			return models.CollectionLog{}, err
		}
		log.Printf("recycle completed account=%s drop_point=%s bottles=%d tokens=%d", req.AccountID, req.DropPointID, req.Bottles, entry.Tokens)
		return entry, nil
	})
}

type FeedbackRequest struct {
	AccountID string
	DeviceID  string
	Rating    int
	Message   string
}

// SubmitFeedback validates and records feedback. Invalid input is
// reported as an error toast and nothing is stored.
func (e *Engine) SubmitFeedback(ctx context.Context, req FeedbackRequest) (models.Feedback, error) {
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		e.feed.Push(req.DeviceID, models.LevelError, "Feedback not sent", "Please enter a message.")
		return models.Feedback{}, ErrEmptyFeedback
	}
	if req.Rating < 1 || req.Rating > 5 {
		e.feed.Push(req.DeviceID, models.LevelError, "Feedback not sent", "Please choose a rating from 1 to 5.")
		return models.Feedback{}, ErrInvalidRating
	}
	if err := ctx.Err(); err != nil {
		return models.Feedback{}, err
	}
	fb := models.Feedback{
		ID:        uuid.NewString(),
		AccountID: req.AccountID,
		Rating:    req.Rating,
		Message:   msg,
		CreatedAt: e.clock.Now(),
	}
	if err := e.catalog.Update(func(d *catalog.Data) error {
		d.Feedback = append(d.Feedback, fb)
		return nil
	}); err != nil {
		return models.Feedback{}, err
	}
	e.feed.Push(req.DeviceID, models.LevelSuccess, "Thank you", "Your feedback has been received.")
	return fb, nil
}
