package agimussot

import (
	"fmt"
	"sync"

	"go.viam.com/rdk/spatialmath"
)

// InMemoryPlanner is a Planner fed by direct calls instead of a live
// planner bridge. Placements hold their last value, like the asynchronous
// topic feed they stand in for. Useful for tests and offline replay.
type InMemoryPlanner struct {
	mu         sync.RWMutex
	placements map[string]*heldPlacement
}

func NewInMemoryPlanner() *InMemoryPlanner {
	return &InMemoryPlanner{placements: make(map[string]*heldPlacement)}
}

// SetPlacement publishes a planned placement for a body link.
func (p *InMemoryPlanner) SetPlacement(fullLink string, pose spatialmath.Pose) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if h, ok := p.placements[fullLink]; ok {
		h.set(pose)
		return
	}
	h := &heldPlacement{}
	h.set(pose)
	p.placements[fullLink] = h
}

// Placement returns the held placement for a link. Links never published are
// unbound.
func (p *InMemoryPlanner) Placement(fullLink string) (Placement, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	h, ok := p.placements[fullLink]
	if !ok {
		return nil, fmt.Errorf("no planner topic for %q", fullLink)
	}
	return h, nil
}

type heldPlacement struct {
	mu   sync.RWMutex
	pose spatialmath.Pose
}

func (h *heldPlacement) set(pose spatialmath.Pose) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pose = pose
}

func (h *heldPlacement) Pose() spatialmath.Pose {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.pose == nil {
		return spatialmath.NewZeroPose()
	}
	return h.pose
}

// InMemoryTracker is a Measurements source fed by direct calls. Each
// (frame0, frame1) pair carries a pose and a freshness flag.
type InMemoryTracker struct {
	mu           sync.RWMutex
	observations map[string]*heldObservation
}

func NewInMemoryTracker() *InMemoryTracker {
	return &InMemoryTracker{observations: make(map[string]*heldObservation)}
}

// Publish stores a tracked relative pose and marks it fresh (or stale).
func (t *InMemoryTracker) Publish(frame0, frame1 string, pose spatialmath.Pose, fresh bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	key := frame0 + "\x00" + frame1
	if o, ok := t.observations[key]; ok {
		o.set(pose, fresh)
		return
	}
	o := &heldObservation{}
	o.set(pose, fresh)
	t.observations[key] = o
}

// Observe registers interest in a frame pair. Pairs never published start
// stale with an identity pose.
func (t *InMemoryTracker) Observe(frame0, frame1 string) (Observation, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	key := frame0 + "\x00" + frame1
	o, ok := t.observations[key]
	if !ok {
		o = &heldObservation{}
		t.observations[key] = o
	}
	return o, nil
}

type heldObservation struct {
	mu    sync.RWMutex
	pose  spatialmath.Pose
	fresh bool
}

func (o *heldObservation) set(pose spatialmath.Pose, fresh bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pose = pose
	o.fresh = fresh
}

func (o *heldObservation) Pose() spatialmath.Pose {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.pose == nil {
		return spatialmath.NewZeroPose()
	}
	return o.pose
}

func (o *heldObservation) Fresh() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.fresh
}
