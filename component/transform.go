package component

// Transform carries local position, rotation (Euler angles in degrees), and
// scale, with an optional parent forming a hierarchy. World-space values are
// cached and recomputed lazily: any local mutation marks the transform and
// its whole subtree dirty.
//
// Transforms are not safe for concurrent mutation; batch updates must give
// each transform to exactly one worker per dispatch.
type Transform struct {
	position Vec3
	rotation Vec3
	scale    Vec3

	parent   *Transform
	children []*Transform

	worldDirty    bool
	worldPosition Vec3
	worldRotation Vec3
	worldScale    Vec3

	active bool
}

// NewTransform returns an active transform at the origin with unit scale.
func NewTransform() *Transform {
	return &Transform{scale: One, worldDirty: true, active: true}
}

// NewTransformAt returns an active transform at the given position.
func NewTransformAt(position Vec3) *Transform {
	t := NewTransform()
	t.position = position
	return t
}

func (t *Transform) Active() bool     { return t.active }
func (t *Transform) SetActive(a bool) { t.active = a }

// Update refreshes the cached world transform if any local value changed
// since the last frame. Heavier integration (animation, physics) belongs to
// behaviors; the transform itself only keeps its caches coherent.
func (t *Transform) Update(dt float64) {
	_ = dt
	t.refreshWorld()
}

// Reset restores the canonical reusable state: origin, no rotation, unit
// scale, detached from any hierarchy, active.
func (t *Transform) Reset() {
	if t.parent != nil {
		t.parent.removeChild(t)
		t.parent = nil
	}
	for _, c := range t.children {
		c.parent = nil
		c.markDirty()
	}
	t.children = t.children[:0]

	t.position = Vec3{}
	t.rotation = Vec3{}
	t.scale = One
	t.active = true
	t.markDirty()
}

func (t *Transform) Position() Vec3 { return t.position }

func (t *Transform) SetPosition(p Vec3) {
	t.position = p
	t.markDirty()
}

// Translate offsets the local position.
func (t *Transform) Translate(delta Vec3) {
	t.position = t.position.Add(delta)
	t.markDirty()
}

func (t *Transform) Rotation() Vec3 { return t.rotation }

func (t *Transform) SetRotation(r Vec3) {
	t.rotation = r
	t.markDirty()
}

// Rotate offsets the local Euler rotation, in degrees.
func (t *Transform) Rotate(delta Vec3) {
	t.rotation = t.rotation.Add(delta)
	t.markDirty()
}

func (t *Transform) Scale() Vec3 { return t.scale }

func (t *Transform) SetScale(s Vec3) {
	t.scale = s
	t.markDirty()
}

// SetUniformScale sets the same scale on all three axes.
func (t *Transform) SetUniformScale(s float64) {
	t.SetScale(Vec3{X: s, Y: s, Z: s})
}

// WorldPosition returns the position composed through the parent chain.
func (t *Transform) WorldPosition() Vec3 {
	t.refreshWorld()
	return t.worldPosition
}

// WorldRotation returns the Euler rotation composed through the parent chain.
func (t *Transform) WorldRotation() Vec3 {
	t.refreshWorld()
	return t.worldRotation
}

// WorldScale returns the scale composed through the parent chain.
func (t *Transform) WorldScale() Vec3 {
	t.refreshWorld()
	return t.worldScale
}

// SetParent attaches t under newParent (nil detaches). Reparenting onto the
// current parent is a no-op.
func (t *Transform) SetParent(newParent *Transform) {
	if t.parent == newParent || newParent == t {
		return
	}

	if t.parent != nil {
		t.parent.removeChild(t)
	}
	t.parent = newParent
	if newParent != nil {
		newParent.children = append(newParent.children, t)
	}
	t.markDirty()
}

func (t *Transform) Parent() *Transform { return t.parent }

func (t *Transform) Children() []*Transform { return t.children }

// DistanceTo returns the world-space distance between two transforms.
func (t *Transform) DistanceTo(other *Transform) float64 {
	if other == nil {
		return 0
	}
	return t.WorldPosition().Sub(other.WorldPosition()).Magnitude()
}

// DirectionTo returns the unit vector from t toward other in world space.
func (t *Transform) DirectionTo(other *Transform) Vec3 {
	if other == nil {
		return Vec3{}
	}
	return other.WorldPosition().Sub(t.WorldPosition()).Normalized()
}

func (t *Transform) removeChild(c *Transform) {
	for i, ch := range t.children {
		if ch == c {
			t.children = append(t.children[:i], t.children[i+1:]...)
			return
		}
	}
}

func (t *Transform) markDirty() {
	t.worldDirty = true
	for _, c := range t.children {
		c.markDirty()
	}
}

func (t *Transform) refreshWorld() {
	if !t.worldDirty {
		return
	}

	if t.parent != nil {
		t.parent.refreshWorld()
		t.worldPosition = t.parent.worldPosition.Add(t.position)
		t.worldRotation = t.parent.worldRotation.Add(t.rotation)
		t.worldScale = t.parent.worldScale.Mul(t.scale)
	} else {
		t.worldPosition = t.position
		t.worldRotation = t.rotation
		t.worldScale = t.scale
	}
	t.worldDirty = false
}
