package component

// Behavior is a scripted per-frame component. Instead of subclassing, a
// behavior is assembled from hook funcs; nil hooks are skipped. OnStart runs
// exactly once, on the first Update after the behavior becomes active.
type Behavior struct {
	// OnStart runs once before the first OnUpdate.
	OnStart func()
	// OnUpdate runs every frame.
	OnUpdate func(dt float64)
	// OnLateUpdate runs after every behavior's OnUpdate for the frame.
	OnLateUpdate func(dt float64)
	// OnFixedUpdate runs at the fixed physics rate.
	OnFixedUpdate func(fixedDt float64)

	transform *Transform
	active    bool
	started   bool
}

// NewBehavior returns an active behavior with no hooks set.
func NewBehavior() *Behavior {
	return &Behavior{active: true}
}

func (b *Behavior) Active() bool     { return b.active }
func (b *Behavior) SetActive(a bool) { b.active = a }

// Started reports whether OnStart has already fired.
func (b *Behavior) Started() bool { return b.started }

// Transform returns the transform this behavior drives, if any.
func (b *Behavior) Transform() *Transform { return b.transform }

// Attach binds the behavior to the transform it drives.
func (b *Behavior) Attach(t *Transform) { b.transform = t }

// Update fires OnStart on the first call, then OnUpdate.
func (b *Behavior) Update(dt float64) {
	if !b.active {
		return
	}
	if !b.started {
		b.started = true
		if b.OnStart != nil {
			b.OnStart()
		}
	}
	if b.OnUpdate != nil {
		b.OnUpdate(dt)
	}
}

// LateUpdate fires OnLateUpdate for active, started behaviors.
func (b *Behavior) LateUpdate(dt float64) {
	if !b.active || !b.started {
		return
	}
	if b.OnLateUpdate != nil {
		b.OnLateUpdate(dt)
	}
}

// FixedUpdate fires OnFixedUpdate for active, started behaviors.
func (b *Behavior) FixedUpdate(fixedDt float64) {
	if !b.active || !b.started {
		return
	}
	if b.OnFixedUpdate != nil {
		b.OnFixedUpdate(fixedDt)
	}
}

// Reset clears hooks, detaches the transform, and rearms OnStart, restoring
// the canonical reusable state for pooling.
func (b *Behavior) Reset() {
	b.OnStart = nil
	b.OnUpdate = nil
	b.OnLateUpdate = nil
	b.OnFixedUpdate = nil
	b.transform = nil
	b.active = true
	b.started = false
}
