// Package geo is the geolocation collaborator: current position lookup
// with the timeout and maximum-age contract, and great-circle distance.
package geo

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
)

const earthRadiusKm = 6371.0

var (
	ErrPermissionDenied    = errors.New("location permission denied; allow location access to see nearby drop points")
	ErrPositionUnavailable = errors.New("location information is unavailable")
	ErrTimeout             = errors.New("location request timed out")
)

type Position struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  float64   `json:"accuracy"`
	Timestamp time.Time `json:"timestamp"`
}

type Options struct {
	HighAccuracy bool
	Timeout      time.Duration
	MaximumAge   time.Duration
}

func DefaultOptions() Options {
	return Options{HighAccuracy: true, Timeout: 10 * time.Second, MaximumAge: 5 * time.Minute}
}

type Locator interface {
	GetCurrentPosition(ctx context.Context, opts Options) (Position, error)
}

type LocatorFunc func(ctx context.Context, opts Options) (Position, error)

func (f LocatorFunc) GetCurrentPosition(ctx context.Context, opts Options) (Position, error) {
	return f(ctx, opts)
}

// StaticLocator always answers with the same position or error.
type StaticLocator struct {
	Position Position
	Err      error
}

func (s StaticLocator) GetCurrentPosition(ctx context.Context, opts Options) (Position, error) {
	if s.Err != nil {
		return Position{}, s.Err
	}
	return s.Position, nil
}

// CalculateDistance returns the haversine distance in kilometers.
func CalculateDistance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func toRad(deg float64) float64 { return deg * math.Pi / 180 }

// ParseCoordinates builds a position from client supplied query values.
// Missing coordinates mean the client has no fix.
func ParseCoordinates(lat, lng, accuracy string, at time.Time) (Position, error) {
	lat, lng = strings.TrimSpace(lat), strings.TrimSpace(lng)
	if lat == "" || lng == "" {
		return Position{}, ErrPositionUnavailable
	}
	la, err := strconv.ParseFloat(lat, 64)
	if err != nil || la < -90 || la > 90 {
		return Position{}, ErrPositionUnavailable
	}
	lo, err := strconv.ParseFloat(lng, 64)
	if err != nil || lo < -180 || lo > 180 {
		return Position{}, ErrPositionUnavailable
	}
	acc, _ := strconv.ParseFloat(strings.TrimSpace(accuracy), 64)
	return Position{Latitude: la, Longitude: lo, Accuracy: acc, Timestamp: at}, nil
}

// Service applies Options to a Locator. The timeout runs on the injected
// clock; a locator that does not answer in time yields ErrTimeout.
type Service struct {
	clock   clockwork.Clock
	locator Locator
	opts    Options
}

func NewService(c clockwork.Clock, l Locator, opts Options) *Service {
	return &Service{clock: c, locator: l, opts: opts}
}

func (s *Service) Options() Options { return s.opts }

func (s *Service) GetCurrentPosition(ctx context.Context) (Position, error) {
	type result struct {
		pos Position
		err error
	}
	done := make(chan result, 1)
	go func() {
		p, err := s.locator.GetCurrentPosition(ctx, s.opts)
		done <- result{pos: p, err: err}
	}()
	var timeout <-chan time.Time
	if s.opts.Timeout > 0 {
		t := s.clock.NewTimer(s.opts.Timeout)
		defer t.Stop()
		timeout = t.Chan()
	}
	select {
	case r := <-done:
		return r.pos, r.err
	case <-timeout:
		return Position{}, ErrTimeout
	case <-ctx.Done():
		return Position{}, ErrTimeout
	}
}

// IsNearLocation reports whether the current position lies within
// thresholdKm of the target. Any lookup failure reports false.
func (s *Service) IsNearLocation(ctx context.Context, lat, lon, thresholdKm float64) bool {
	p, err := s.GetCurrentPosition(ctx)
	if err != nil {
		return false
	}
	return CalculateDistance(p.Latitude, p.Longitude, lat, lon) <= thresholdKm
}
