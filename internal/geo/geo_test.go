package geo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

func TestCalculateDistance(t *testing.T) {
	require.InDelta(t, 0, CalculateDistance(13.7455, 100.534, 13.7455, 100.534), 1e-9)
	// Siam Square to Lumphini Park, roughly 1.8 km.
	d := CalculateDistance(13.7455, 100.5340, 13.7314, 100.5414)
	require.InDelta(t, 1.76, d, 0.1)
	// Bangkok to Chiang Mai, roughly 580 km.
	require.InDelta(t, 585, CalculateDistance(13.7563, 100.5018, 18.7883, 98.9853), 15)
}

func TestParseCoordinates(t *testing.T) {
	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	p, err := ParseCoordinates("13.7", "100.5", "25", at)
	require.NoError(t, err)
	require.Equal(t, 13.7, p.Latitude)
	require.Equal(t, 25.0, p.Accuracy)

	_, err = ParseCoordinates("", "100.5", "", at)
	require.ErrorIs(t, err, ErrPositionUnavailable)
	_, err = ParseCoordinates("95", "100.5", "", at)
	require.ErrorIs(t, err, ErrPositionUnavailable)
}

func TestServiceTimesOut(t *testing.T) {
	fc := clockwork.NewFakeClockAt(time.Unix(0, 0))
	block := make(chan struct{})
	defer close(block)
	slow := LocatorFunc(func(ctx context.Context, opts Options) (Position, error) {
		<-block
		return Position{}, nil
	})
	svc := NewService(fc, slow, DefaultOptions())

	errc := make(chan error, 1)
	go func() {
		_, err := svc.GetCurrentPosition(context.Background())
		errc <- err
	}()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, fc.BlockUntilContext(ctx, 1))
	fc.Advance(10 * time.Second)
	require.ErrorIs(t, <-errc, ErrTimeout)
}

func TestIsNearLocation(t *testing.T) {
	svc := NewService(clockwork.NewRealClock(), StaticLocator{Position: Position{Latitude: 13.7455, Longitude: 100.5340}}, DefaultOptions())
	require.True(t, svc.IsNearLocation(context.Background(), 13.7314, 100.5414, 2))
	require.False(t, svc.IsNearLocation(context.Background(), 13.7999, 100.55, 2))

	denied := NewService(clockwork.NewRealClock(), StaticLocator{Err: ErrPermissionDenied}, DefaultOptions())
	require.False(t, denied.IsNearLocation(context.Background(), 13.7314, 100.5414, 2))
}

func TestCacheHonorsMaximumAge(t *testing.T) {
	fc := clockwork.NewFakeClockAt(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	cache := NewCache(fc)
	opts := DefaultOptions()
	ctx := context.Background()

	fix := Position{Latitude: 1, Longitude: 2, Timestamp: fc.Now()}
	_, err := cache.Locator("dev-1", StaticLocator{Position: fix}).GetCurrentPosition(ctx, opts)
	require.NoError(t, err)

	none := StaticLocator{Err: ErrPositionUnavailable}
	p, err := cache.Locator("dev-1", none).GetCurrentPosition(ctx, opts)
	require.NoError(t, err)
	require.Equal(t, fix, p)

	_, err = cache.Locator("dev-2", none).GetCurrentPosition(ctx, opts)
	require.ErrorIs(t, err, ErrPositionUnavailable)

	fc.Advance(5*time.Minute + time.Second)
	_, err = cache.Locator("dev-1", none).GetCurrentPosition(ctx, opts)
	require.ErrorIs(t, err, ErrPositionUnavailable)

	_, err = cache.Locator("dev-1", StaticLocator{Err: ErrPermissionDenied}).GetCurrentPosition(ctx, opts)
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestCacheSweepsExpiredFixes(t *testing.T) {
	fc := clockwork.NewFakeClockAt(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	cache := NewCache(fc)
	opts := DefaultOptions()
	ctx := context.Background()

	for i := 0; i < 40; i++ {
		fix := StaticLocator{Position: Position{Latitude: 13, Longitude: 100, Timestamp: fc.Now()}}
		_, err := cache.Locator(fmt.Sprintf("dev-%d", i), fix).GetCurrentPosition(ctx, opts)
		require.NoError(t, err)
	}
	require.Len(t, cache.entries, 40)

	fc.Advance(opts.MaximumAge + time.Second)
	fresh := StaticLocator{Position: Position{Latitude: 14, Longitude: 101, Timestamp: fc.Now()}}
	_, err := cache.Locator("dev-new", fresh).GetCurrentPosition(ctx, opts)
	require.NoError(t, err)
	require.Len(t, cache.entries, 1)

	_, err = cache.Locator("dev-0", StaticLocator{Err: ErrPositionUnavailable}).GetCurrentPosition(ctx, opts)
	require.ErrorIs(t, err, ErrPositionUnavailable)
}
