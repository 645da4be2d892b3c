// Package component holds the per-frame updatable kinds the simulation core
// operates on: spatial transforms and scripted behaviors, plus the small
// vector math they need. Instances of one kind are meant to be stored
// contiguously so batch dispatch can hand workers cache-friendly spans.
package component

// Component is the capability set shared by every updatable, poolable kind.
// Dispatch is resolved once at registration, not per access.
type Component interface {
	// Active reports whether the instance participates in frame updates.
	Active() bool
	SetActive(bool)

	// Update advances the instance by dt seconds.
	Update(dt float64)

	// Reset restores the canonical reusable state before the instance is
	// returned to its pool.
	Reset()
}
