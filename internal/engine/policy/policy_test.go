package policy

import (
	"testing"
	"time"
)

func TestRatePolicy(t *testing.T) {
	p := RatePolicy{MinCount: 3, MinRate: 100}

	cases := []struct {
		name   string
		count  uint64
		window time.Duration
		want   bool
	}{
		{"below count floor", 3, 10 * time.Millisecond, false},
		{"above count, above rate", 4, 30 * time.Millisecond, true},
		{"above count, below rate", 4, time.Second, false},
		{"zero window counts as infinite rate", 4, 0, true},
		{"high count slow rate", 1000, time.Hour, false},
	}
	for _, tc := range cases {
		if got := p.IsAttack(tc.count, tc.window); got != tc.want {
			t.Errorf("%s: IsAttack(%d, %s) = %v, want %v", tc.name, tc.count, tc.window, got, tc.want)
		}
	}
}

func TestWindowCountPolicy(t *testing.T) {
	p := WindowCountPolicy{Threshold: 100}

	if p.IsAttack(100, time.Minute) {
		t.Error("Count equal to threshold must not trigger")
	}
	if !p.IsAttack(101, time.Minute) {
		t.Error("Count above threshold must trigger")
	}
	if p.IsAttack(0, 0) {
		t.Error("Zero count must not trigger")
	}
}
