package ecs

import (
	"sort"

	"github.com/jakecoffman/cp/v2"
)

// Collision categories used to keep unit shapes and occluders apart in
// queries: proximity scans only see units, sight checks only see obstacles.
const (
	categoryUnit     uint = 1 << 0
	categoryObstacle uint = 1 << 1
)

const defaultUnitRadius = 0.5

// SpatialWorld is the spatial query service, backed by a Chipmunk space.
// The space is never stepped: unit bodies are kinematic mirrors of the
// Transform component, static segments and boxes model occluders, and the
// space serves as a broadphase index for range and sight queries.
type SpatialWorld struct {
	space  *cp.Space
	bodies map[Entity]*cp.Body
	shapes map[Entity]*cp.Shape
}

// NewSpatialWorld creates an empty spatial index.
func NewSpatialWorld() *SpatialWorld {
	return &SpatialWorld{
		space:  cp.NewSpace(),
		bodies: make(map[Entity]*cp.Body),
		shapes: make(map[Entity]*cp.Shape),
	}
}

// Sync registers a unit's circle shape on first call and repositions it on
// every later one.
func (sw *SpatialWorld) Sync(e Entity, pos cp.Vector, radius float64) {
	if sw == nil || !e.Valid() {
		return
	}
	if body, ok := sw.bodies[e]; ok {
		body.SetPosition(pos)
		sw.space.ReindexShape(sw.shapes[e])
		return
	}
	if radius <= 0 {
		radius = defaultUnitRadius
	}
	body := cp.NewKinematicBody()
	body.SetPosition(pos)
	sw.space.AddBody(body)

	shape := cp.NewCircle(body, radius, cp.Vector{})
	shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, categoryUnit, cp.ALL_CATEGORIES))
	shape.UserData = e
	sw.space.AddShape(shape)

	sw.bodies[e] = body
	sw.shapes[e] = shape
}

// Remove drops an entity's shape from the index.
func (sw *SpatialWorld) Remove(e Entity) {
	if sw == nil {
		return
	}
	if shape, ok := sw.shapes[e]; ok {
		sw.space.RemoveShape(shape)
		delete(sw.shapes, e)
	}
	if body, ok := sw.bodies[e]; ok {
		sw.space.RemoveBody(body)
		delete(sw.bodies, e)
	}
}

// Position returns the indexed position of an entity.
func (sw *SpatialWorld) Position(e Entity) (cp.Vector, bool) {
	if sw == nil {
		return cp.Vector{}, false
	}
	body, ok := sw.bodies[e]
	if !ok {
		return cp.Vector{}, false
	}
	return body.Position(), true
}

// AddObstacleSegment attaches a static occluder segment.
func (sw *SpatialWorld) AddObstacleSegment(a, b cp.Vector, radius float64) {
	if sw == nil {
		return
	}
	shape := cp.NewSegment(sw.space.StaticBody, a, b, radius)
	shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, categoryObstacle, cp.ALL_CATEGORIES))
	sw.space.AddShape(shape)
	sw.space.ReindexShape(shape)
}

// AddObstacleBox attaches a static occluder box.
func (sw *SpatialWorld) AddObstacleBox(bb cp.BB) {
	if sw == nil {
		return
	}
	shape := cp.NewBox2(sw.space.StaticBody, bb, 0)
	shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, categoryObstacle, cp.ALL_CATEGORIES))
	sw.space.AddShape(shape)
	sw.space.ReindexShape(shape)
}

// QueryNearby returns entities whose body center lies within radius of
// origin, excluding the querying entity. Results are sorted by handle so
// callers iterate deterministically.
func (sw *SpatialWorld) QueryNearby(origin cp.Vector, radius float64, exclude Entity) []Entity {
	if sw == nil || radius <= 0 {
		return nil
	}
	var out []Entity
	filter := cp.NewShapeFilter(cp.NO_GROUP, cp.ALL_CATEGORIES, categoryUnit)
	sw.space.BBQuery(cp.NewBBForCircle(origin, radius), filter, func(shape *cp.Shape, _ interface{}) {
		ent, ok := shape.UserData.(Entity)
		if !ok || ent == exclude {
			return
		}
		if shape.Body().Position().Distance(origin) > radius {
			return
		}
		out = append(out, ent)
	}, nil)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// LineOfSight reports whether the straight segment between two points is
// free of obstacle shapes. Unit bodies never block sight.
func (sw *SpatialWorld) LineOfSight(a, b cp.Vector) bool {
	if sw == nil {
		return true
	}
	filter := cp.NewShapeFilter(cp.NO_GROUP, cp.ALL_CATEGORIES, categoryObstacle)
	info := sw.space.SegmentQueryFirst(a, b, 0, filter)
	return info.Shape == nil
}
