// Package policy holds the threshold rules shared by the flow-tracking
// engines. Each engine pairs its store with one Policy instance so new rules
// can be added without touching the stores.
package policy

import "time"

// Policy decides whether a flow's observation count over a window
// constitutes an attack.
type Policy interface {
	IsAttack(count uint64, window time.Duration) bool
}

// RatePolicy triggers on a minimum absolute count combined with a packet
// rate floor. Used by the hierarchical engine.
type RatePolicy struct {
	MinCount uint64
	MinRate  float64 // packets per second
}

func (p RatePolicy) IsAttack(count uint64, window time.Duration) bool {
	if count <= p.MinCount {
		return false
	}
	// A zero-length window yields +Inf, which trivially clears the floor.
	rate := float64(count) / window.Seconds()
	return rate > p.MinRate
}

// WindowCountPolicy triggers on a pure windowed count threshold. Used by the
// hashed sliding-window engine.
type WindowCountPolicy struct {
	Threshold uint64
}

func (p WindowCountPolicy) IsAttack(count uint64, _ time.Duration) bool {
	return count > p.Threshold
}
