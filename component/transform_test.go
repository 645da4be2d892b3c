package component_test

import (
	"math"
	"testing"

	"github.com/utkarsh5026/framekit/component"
)

func vecEq(a, b component.Vec3) bool {
	const eps = 1e-9
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps && math.Abs(a.Z-b.Z) < eps
}

func TestVec3_Math(t *testing.T) {
	a := component.V(1, 2, 3)
	b := component.V(4, 5, 6)

	if got := a.Add(b); !vecEq(got, component.V(5, 7, 9)) {
		t.Errorf("Add = %+v", got)
	}
	if got := b.Sub(a); !vecEq(got, component.V(3, 3, 3)) {
		t.Errorf("Sub = %+v", got)
	}
	if got := a.Dot(b); got != 32 {
		t.Errorf("Dot = %f, want 32", got)
	}
	if got := a.Cross(b); !vecEq(got, component.V(-3, 6, -3)) {
		t.Errorf("Cross = %+v", got)
	}
	if got := component.V(3, 4, 0).Magnitude(); got != 5 {
		t.Errorf("Magnitude = %f, want 5", got)
	}
	if got := component.V(0, 0, 0).Normalized(); !vecEq(got, component.Vec3{}) {
		t.Errorf("Normalized zero vector = %+v, want zero", got)
	}
	if got := component.V(0, 10, 0).Normalized(); !vecEq(got, component.V(0, 1, 0)) {
		t.Errorf("Normalized = %+v", got)
	}
}

func TestTransform_WorldComposesThroughParents(t *testing.T) {
	root := component.NewTransformAt(component.V(10, 0, 0))
	root.SetUniformScale(2)

	child := component.NewTransformAt(component.V(1, 2, 3))
	child.SetParent(root)

	grandchild := component.NewTransformAt(component.V(0, 0, 1))
	grandchild.SetParent(child)

	if got := child.WorldPosition(); !vecEq(got, component.V(11, 2, 3)) {
		t.Errorf("child world position = %+v", got)
	}
	if got := grandchild.WorldPosition(); !vecEq(got, component.V(11, 2, 4)) {
		t.Errorf("grandchild world position = %+v", got)
	}
	if got := grandchild.WorldScale(); !vecEq(got, component.V(2, 2, 2)) {
		t.Errorf("grandchild world scale = %+v", got)
	}

	// Moving the root must invalidate the whole subtree's caches.
	root.Translate(component.V(0, 5, 0))
	if got := grandchild.WorldPosition(); !vecEq(got, component.V(11, 7, 4)) {
		t.Errorf("grandchild world position after root move = %+v", got)
	}
}

func TestTransform_SetParentMaintainsChildren(t *testing.T) {
	a := component.NewTransform()
	b := component.NewTransform()
	c := component.NewTransform()

	c.SetParent(a)
	if len(a.Children()) != 1 {
		t.Fatalf("a should have 1 child, has %d", len(a.Children()))
	}

	c.SetParent(b)
	if len(a.Children()) != 0 {
		t.Error("reparenting did not remove child from old parent")
	}
	if len(b.Children()) != 1 || c.Parent() != b {
		t.Error("reparenting did not attach child to new parent")
	}

	c.SetParent(c) // self-parenting is ignored
	if c.Parent() != b {
		t.Error("self-parenting should be a no-op")
	}

	c.SetParent(nil)
	if c.Parent() != nil || len(b.Children()) != 0 {
		t.Error("detaching did not clear the relationship")
	}
}

func TestTransform_DetachKeepsSiblings(t *testing.T) {
	parent := component.NewTransform()
	a := component.NewTransform()
	b := component.NewTransform()
	c := component.NewTransform()
	a.SetParent(parent)
	b.SetParent(parent)
	c.SetParent(parent)

	b.SetParent(nil)

	kids := parent.Children()
	if len(kids) != 2 || kids[0] != a || kids[1] != c {
		t.Fatalf("children after detach = %v, want [a c] in order", kids)
	}

	// Reset must also splice the transform out of its parent's list.
	c.Reset()
	kids = parent.Children()
	if len(kids) != 1 || kids[0] != a {
		t.Fatalf("children after reset = %v, want [a]", kids)
	}
	if c.Parent() != nil {
		t.Fatal("reset transform still has a parent")
	}
}

func TestTransform_DistanceAndDirection(t *testing.T) {
	a := component.NewTransformAt(component.V(0, 0, 0))
	b := component.NewTransformAt(component.V(3, 4, 0))

	if got := a.DistanceTo(b); got != 5 {
		t.Errorf("DistanceTo = %f, want 5", got)
	}
	if got := a.DirectionTo(b); !vecEq(got, component.V(0.6, 0.8, 0)) {
		t.Errorf("DirectionTo = %+v", got)
	}
	if got := a.DistanceTo(nil); got != 0 {
		t.Errorf("DistanceTo(nil) = %f, want 0", got)
	}
}

func TestTransform_ResetRestoresCanonicalState(t *testing.T) {
	parent := component.NewTransform()
	tr := component.NewTransformAt(component.V(1, 2, 3))
	tr.SetParent(parent)
	tr.Rotate(component.V(0, 90, 0))
	tr.SetUniformScale(4)
	tr.SetActive(false)

	child := component.NewTransform()
	child.SetParent(tr)

	tr.Reset()

	if tr.Parent() != nil || len(tr.Children()) != 0 {
		t.Error("reset did not detach the hierarchy")
	}
	if len(parent.Children()) != 0 {
		t.Error("reset left the transform in its parent's child list")
	}
	if child.Parent() != nil {
		t.Error("reset left a child attached")
	}
	if !vecEq(tr.Position(), component.Vec3{}) || !vecEq(tr.Scale(), component.One) {
		t.Error("reset did not restore origin and unit scale")
	}
	if !tr.Active() {
		t.Error("reset should reactivate the transform")
	}
}

func TestBehavior_StartFiresOnce(t *testing.T) {
	var starts, updates int
	b := component.NewBehavior()
	b.OnStart = func() { starts++ }
	b.OnUpdate = func(dt float64) { updates++ }

	for n := 0; n < 3; n++ {
		b.Update(0.016)
	}

	if starts != 1 {
		t.Errorf("OnStart fired %d times, want 1", starts)
	}
	if updates != 3 {
		t.Errorf("OnUpdate fired %d times, want 3", updates)
	}
}

func TestBehavior_InactiveSkipsHooks(t *testing.T) {
	var calls int
	b := component.NewBehavior()
	b.OnUpdate = func(dt float64) { calls++ }
	b.OnLateUpdate = func(dt float64) { calls++ }
	b.OnFixedUpdate = func(dt float64) { calls++ }

	b.SetActive(false)
	b.Update(0.016)
	b.LateUpdate(0.016)
	b.FixedUpdate(0.016)

	if calls != 0 {
		t.Errorf("inactive behavior ran %d hooks", calls)
	}
}

func TestBehavior_LateAndFixedRequireStart(t *testing.T) {
	var late, fixed int
	b := component.NewBehavior()
	b.OnLateUpdate = func(dt float64) { late++ }
	b.OnFixedUpdate = func(dt float64) { fixed++ }

	// Before the first Update the behavior has not started.
	b.LateUpdate(0.016)
	b.FixedUpdate(0.016)
	if late != 0 || fixed != 0 {
		t.Error("late/fixed hooks ran before start")
	}

	b.Update(0.016)
	b.LateUpdate(0.016)
	b.FixedUpdate(0.016)
	if late != 1 || fixed != 1 {
		t.Errorf("late = %d, fixed = %d, want 1 and 1", late, fixed)
	}
}

func TestBehavior_ResetRearmsStart(t *testing.T) {
	var starts int
	b := component.NewBehavior()
	b.OnStart = func() { starts++ }
	b.Attach(component.NewTransform())

	b.Update(0.016)
	b.Reset()

	if b.Transform() != nil {
		t.Error("reset did not detach transform")
	}
	if b.OnStart != nil {
		t.Error("reset did not clear hooks")
	}
	if b.Started() {
		t.Error("reset did not rearm start")
	}
}
