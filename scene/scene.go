// Package scene groups objects and serves the contiguous instance lists the
// frame orchestrator partitions. Lists are cached and rebuilt only when the
// object set changes; toggling activity alone never invalidates them, since
// phase hooks check activity per instance.
package scene

import (
	"sync"

	"go.uber.org/zap"

	"github.com/utkarsh5026/framekit/component"
)

// Object is a named entity: one transform plus any number of behaviors.
type Object struct {
	name string
	tag  string

	transform *component.Transform
	behaviors []*component.Behavior

	active bool
	scene  *Scene
}

func (o *Object) Name() string { return o.name }

func (o *Object) Tag() string       { return o.tag }
func (o *Object) SetTag(tag string) { o.tag = tag }

func (o *Object) Transform() *component.Transform { return o.transform }

// Behaviors returns the object's behaviors in attachment order.
func (o *Object) Behaviors() []*component.Behavior { return o.behaviors }

// AddBehavior attaches b to the object's transform and registers it for
// frame dispatch. Returns b for chained hook assignment.
func (o *Object) AddBehavior(b *component.Behavior) *component.Behavior {
	if b == nil {
		return nil
	}
	b.Attach(o.transform)
	o.behaviors = append(o.behaviors, b)
	if o.scene != nil {
		o.scene.invalidate()
	}
	return b
}

func (o *Object) Active() bool { return o.active }

// SetActive toggles the object and all its components. The scene's cached
// lists are untouched; inactive instances stay listed and skip their hooks.
func (o *Object) SetActive(active bool) {
	o.active = active
	o.transform.SetActive(active)
	for _, b := range o.behaviors {
		b.SetActive(active)
	}
}

// Scene owns a set of objects and implements the orchestrator's Source.
// Structural mutation (add, remove, attach) is mutex-guarded; do it between
// frames, not from inside a running phase.
type Scene struct {
	name string
	log  *zap.Logger

	mu      sync.Mutex
	objects []*Object

	transformCache []*component.Transform
	behaviorCache  []*component.Behavior
	dirty          bool
}

// Option configures a Scene.
type Option func(*Scene)

// WithLogger sets the scene's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Scene) {
		if logger != nil {
			s.log = logger
		}
	}
}

// New creates an empty named scene.
func New(name string, opts ...Option) *Scene {
	s := &Scene{name: name, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scene) Name() string { return s.name }

// NewObject creates an active object at the origin and adds it to the scene.
func (s *Scene) NewObject(name string) *Object {
	return s.NewObjectAt(name, component.Vec3{})
}

// NewObjectAt creates an active object at position and adds it to the scene.
func (s *Scene) NewObjectAt(name string, position component.Vec3) *Object {
	obj := &Object{
		name:      name,
		transform: component.NewTransformAt(position),
		active:    true,
		scene:     s,
	}

	s.mu.Lock()
	s.objects = append(s.objects, obj)
	s.dirty = true
	s.mu.Unlock()

	s.log.Debug("object added", zap.String("scene", s.name), zap.String("object", name))
	return obj
}

// Remove detaches obj from the scene. Returns false when obj is not here.
func (s *Scene) Remove(obj *Object) bool {
	if obj == nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, o := range s.objects {
		if o == obj {
			s.objects = append(s.objects[:i], s.objects[i+1:]...)
			obj.scene = nil
			s.dirty = true
			return true
		}
	}
	return false
}

// FindByName returns the first object with the given name, or nil.
func (s *Scene) FindByName(name string) *Object {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.objects {
		if o.name == name {
			return o
		}
	}
	return nil
}

// FindByTag returns every object carrying tag, in insertion order.
func (s *Scene) FindByTag(tag string) []*Object {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Object
	for _, o := range s.objects {
		if o.tag == tag {
			out = append(out, o)
		}
	}
	return out
}

// Len returns the number of objects in the scene.
func (s *Scene) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// Clear removes every object and drops the caches.
func (s *Scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.objects {
		o.scene = nil
	}
	s.objects = nil
	s.transformCache = nil
	s.behaviorCache = nil
	s.dirty = false
}

// Transforms returns the cached transform list, rebuilding it only after a
// structural change.
func (s *Scene) Transforms() []*component.Transform {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshLocked()
	return s.transformCache
}

// Behaviors returns the cached behavior list, rebuilding it only after a
// structural change.
func (s *Scene) Behaviors() []*component.Behavior {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshLocked()
	return s.behaviorCache
}

func (s *Scene) invalidate() {
	s.mu.Lock()
	s.dirty = true
	s.mu.Unlock()
}

func (s *Scene) refreshLocked() {
	if !s.dirty {
		return
	}
	s.transformCache = s.transformCache[:0]
	s.behaviorCache = s.behaviorCache[:0]
	for _, o := range s.objects {
		s.transformCache = append(s.transformCache, o.transform)
		s.behaviorCache = append(s.behaviorCache, o.behaviors...)
	}
	s.dirty = false
	s.log.Debug("scene caches rebuilt",
		zap.String("scene", s.name),
		zap.Int("transforms", len(s.transformCache)),
		zap.Int("behaviors", len(s.behaviorCache)))
}
