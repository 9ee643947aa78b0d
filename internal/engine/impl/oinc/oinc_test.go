package oinc

import (
	"errors"
	"net"
	"testing"
	"time"

	"IntSentry/internal/config"
	"IntSentry/internal/model"
)

var errTest = errors.New("push failed")

type fakeNotifier struct {
	reports []*model.AttackReport
	err     error
}

func (f *fakeNotifier) PushAttack(r *model.AttackReport) error {
	f.reports = append(f.reports, r)
	return f.err
}

func testConfig() *config.Config {
	return &config.Config{
		Engine: config.EngineConfig{
			Type:                 "oinc",
			IntHops:              2,
			IPProtocol:           0xFD,
			PacketCountThreshold: 100,
			SampleInterval:       "60s",
			RenotifyInterval:     "1s",
		},
	}
}

func testRecord() *model.FlowRecord {
	return &model.FlowRecord{
		DevMAC:    "02:00:00:00:aa:bb",
		DevAddr:   net.ParseIP("10.0.0.1"),
		SwitchID:  1,
		DstAddr:   net.ParseIP("10.0.0.2"),
		DstPort:   5000,
		Protocol:  17,
		PacketLen: 64,
	}
}

// newTestEngine pins the engine's clock to a mutable instant.
func newTestEngine(t *testing.T, notifier model.Notifier) (*Engine, *time.Time) {
	t.Helper()
	e, err := New(testConfig(), notifier)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return now }
	return e, &now
}

func TestFastFlowFlagsAttack(t *testing.T) {
	notifier := &fakeNotifier{}
	e, now := newTestEngine(t, notifier)
	rec := testRecord()

	// Four observations within a few milliseconds: count reaches 4 (> 3)
	// at well over 100 p/s.
	for i := 0; i < 4; i++ {
		fired := e.ProcessRecord(rec)
		want := i == 3
		if fired != want {
			t.Errorf("Observation %d: fired = %v, want %v", i+1, fired, want)
		}
		*now = now.Add(5 * time.Millisecond)
	}

	if len(notifier.reports) != 1 {
		t.Fatalf("Expected exactly one notification, got %d", len(notifier.reports))
	}
	r := notifier.reports[0]
	if r.SrcMAC != rec.DevMAC || r.SrcIP != "10.0.0.1" || r.DstIP != "10.0.0.2" ||
		r.DstPort != 5000 || r.PacketSize != 64 {
		t.Errorf("Report does not echo the flow tuple: %+v", r)
	}
	if r.AttackType != model.AttackTypeUDPFlood {
		t.Errorf("Expected attack type %q, got %q", model.AttackTypeUDPFlood, r.AttackType)
	}
}

func TestAttackFlagIsSticky(t *testing.T) {
	notifier := &fakeNotifier{}
	e, now := newTestEngine(t, notifier)
	rec := testRecord()

	for i := 0; i < 4; i++ {
		e.ProcessRecord(rec)
		*now = now.Add(5 * time.Millisecond)
	}
	if len(notifier.reports) != 1 {
		t.Fatalf("Expected one notification, got %d", len(notifier.reports))
	}

	// The flow slows to well under the rate floor, still inside the window.
	// The flag stays set and no further notification fires.
	for i := 0; i < 5; i++ {
		*now = now.Add(5 * time.Second)
		if fired := e.ProcessRecord(rec); fired {
			t.Errorf("Slow observation %d must not fire", i+1)
		}
	}

	c, existed := e.tree.Observe(rec, *now)
	if !existed {
		t.Fatal("Flow should already be tracked")
	}
	if !c.Attack {
		t.Error("Attack flag must remain set within the window")
	}
	if c.PPS > 100 {
		t.Errorf("Rate should have dropped below the floor, got %.2f", c.PPS)
	}
	if len(notifier.reports) != 1 {
		t.Errorf("Expected no additional notifications, got %d", len(notifier.reports))
	}
}

func TestWindowResetIsLagging(t *testing.T) {
	notifier := &fakeNotifier{}
	e, now := newTestEngine(t, notifier)
	rec := testRecord()

	e.ProcessRecord(rec) // opens the window with count 1

	// The next observation lands past the sample interval: it is evaluated
	// against the stale window (count 2 over 61 s, no attack), then the
	// window resets.
	*now = now.Add(61 * time.Second)
	if fired := e.ProcessRecord(rec); fired {
		t.Error("Observation crossing the interval must not fire")
	}

	c, _ := e.tree.Observe(rec, *now)
	if c.Count != 1 {
		t.Errorf("Expected count reset to 1, got %d", c.Count)
	}
	if !c.WindowStart.Equal(*now) {
		t.Errorf("Expected window start reset to now, got %s", c.WindowStart)
	}
}

func TestDistinctPacketSizesAreDistinctFlows(t *testing.T) {
	notifier := &fakeNotifier{}
	e, now := newTestEngine(t, notifier)

	rec := testRecord()
	other := testRecord()
	other.PacketLen = 128

	// Alternate sizes: each leaf counts independently, so neither crosses
	// the count floor.
	for i := 0; i < 6; i++ {
		r := rec
		if i%2 == 1 {
			r = other
		}
		if fired := e.ProcessRecord(r); fired {
			t.Errorf("Observation %d must not fire", i+1)
		}
		*now = now.Add(time.Millisecond)
	}

	if got := e.tree.Leaves(); got != 2 {
		t.Errorf("Expected 2 tracked flows, got %d", got)
	}
	if len(notifier.reports) != 0 {
		t.Errorf("Expected no notifications, got %d", len(notifier.reports))
	}
}

func TestNotifierFailureKeepsCounting(t *testing.T) {
	notifier := &fakeNotifier{err: errTest}
	e, now := newTestEngine(t, notifier)
	rec := testRecord()

	for i := 0; i < 4; i++ {
		e.ProcessRecord(rec)
		*now = now.Add(time.Millisecond)
	}

	c, existed := e.tree.Observe(rec, *now)
	if !existed {
		t.Fatal("Flow should be tracked despite the failed push")
	}
	if c.Count != 4 {
		t.Errorf("Expected count 4, got %d", c.Count)
	}
	if !c.Attack {
		t.Error("Attack flag must be set even when the push fails")
	}
	if got := e.Stats().AttacksNotified; got != 0 {
		t.Errorf("Failed pushes must not count as notified, got %d", got)
	}
}
