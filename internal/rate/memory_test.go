package rate

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func TestLimiterWindow(t *testing.T) {
	clk := clockwork.NewFakeClockAt(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	l := NewLimiter(clk)
	for i := 0; i < 3; i++ {
		if !l.Allow("login:1.2.3.4", 3, time.Minute) {
			t.Fatalf("hit %d should be allowed", i+1)
		}
	}
	if l.Allow("login:1.2.3.4", 3, time.Minute) {
		t.Fatalf("fourth hit should be limited")
	}
	if !l.Allow("login:5.6.7.8", 3, time.Minute) {
		t.Fatalf("other client should not share the window")
	}
	clk.Advance(time.Minute)
	if !l.Allow("login:1.2.3.4", 3, time.Minute) {
		t.Fatalf("new window should allow again")
	}
}
