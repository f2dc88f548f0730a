package component

import "github.com/jakecoffman/cp/v2"

// Transform is an entity's position in world units.
type Transform struct {
	Pos cp.Vector
}

var TransformComponent = NewComponent[Transform]()
