// Package attacklog persists emitted attack notifications. Flow state itself
// is deliberately in-memory only; the event log records notifications, not
// counters.
package attacklog

import (
	"time"

	"IntSentry/internal/model"
)

// Writer appends attack events to a durable store.
type Writer interface {
	Record(report *model.AttackReport, ts time.Time) error
	Close() error
}
