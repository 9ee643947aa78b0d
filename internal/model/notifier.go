package model

// Notifier delivers attack reports to the control plane.
type Notifier interface {
	PushAttack(report *AttackReport) error
}
