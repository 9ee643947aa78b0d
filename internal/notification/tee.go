package notification

import (
	"log"
	"time"

	"IntSentry/internal/attacklog"
	"IntSentry/internal/model"
)

// TeeNotifier records every report in the attack-event log before forwarding
// it to the wrapped notifier. Recording is best-effort: a failing log never
// blocks the controller push.
type TeeNotifier struct {
	next model.Notifier
	log  attacklog.Writer
}

// NewTeeNotifier wraps next with attack-event recording.
func NewTeeNotifier(next model.Notifier, w attacklog.Writer) *TeeNotifier {
	return &TeeNotifier{next: next, log: w}
}

func (t *TeeNotifier) PushAttack(report *model.AttackReport) error {
	if err := t.log.Record(report, time.Now()); err != nil {
		log.Printf("Failed to record attack event: %v", err)
	}
	return t.next.PushAttack(report)
}
