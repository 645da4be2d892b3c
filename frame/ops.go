package frame

import (
	"go.uber.org/zap"

	"github.com/utkarsh5026/framekit/component"
	"github.com/utkarsh5026/framekit/worker"
)

// Bulk transform operations. These mutate or read each transform
// independently, so they parallelize over disjoint index ranges. Run them
// between phases, not while one is in flight, and keep hierarchies out of
// a single dispatch unless parent caches are already fresh.

// TranslateAll moves every transform by delta.
func (o *Orchestrator) TranslateAll(transforms []*component.Transform, delta component.Vec3) {
	o.dispatchTransforms(transforms, func(t *component.Transform) {
		t.Translate(delta)
	})
}

// RotateAll rotates every transform by delta degrees per axis.
func (o *Orchestrator) RotateAll(transforms []*component.Transform, delta component.Vec3) {
	o.dispatchTransforms(transforms, func(t *component.Transform) {
		t.Rotate(delta)
	})
}

// ScaleAll multiplies every transform's local scale by factor.
func (o *Orchestrator) ScaleAll(transforms []*component.Transform, factor float64) {
	o.dispatchTransforms(transforms, func(t *component.Transform) {
		s := t.Scale()
		t.SetScale(s.Scale(factor))
	})
}

// DistancesTo computes each transform's world-space distance to target.
// The result is index-aligned with transforms; nil entries yield -1.
// Returns nil when target is nil.
func (o *Orchestrator) DistancesTo(transforms []*component.Transform, target *component.Transform) []float64 {
	if target == nil {
		return nil
	}
	out := make([]float64, len(transforms))
	targetPos := target.WorldPosition()

	fill := func(span []*component.Transform, start, end int) {
		for i := start; i < end; i++ {
			if span[i] == nil {
				out[i] = -1
				continue
			}
			out[i] = span[i].WorldPosition().Sub(targetPos).Magnitude()
		}
	}

	if o.threading {
		// Disjoint ranges write disjoint slices of out.
		if err := worker.ProcessBatchRange(o.pool, transforms, fill, 0); err != nil {
			o.log.Error("distance dispatch failed", zap.Error(err))
		}
		return out
	}
	fill(transforms, 0, len(transforms))
	return out
}

// FrustumCull marks each transform visible when it sits within maxDistance
// of camera in world space. The result is index-aligned with transforms;
// nil entries are not visible.
func (o *Orchestrator) FrustumCull(transforms []*component.Transform, camera component.Vec3, maxDistance float64) []bool {
	visible := make([]bool, len(transforms))
	maxSq := maxDistance * maxDistance

	fill := func(span []*component.Transform, start, end int) {
		for i := start; i < end; i++ {
			if span[i] == nil {
				continue
			}
			d := span[i].WorldPosition().Sub(camera)
			visible[i] = d.Dot(d) <= maxSq
		}
	}

	if o.threading {
		if err := worker.ProcessBatchRange(o.pool, transforms, fill, 0); err != nil {
			o.log.Error("cull dispatch failed", zap.Error(err))
		}
		return visible
	}
	fill(transforms, 0, len(transforms))
	return visible
}
