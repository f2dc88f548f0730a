package component

import "github.com/jakecoffman/cp/v2"

// ArriveTolerance is the radius within which a move order counts as done.
const ArriveTolerance = 0.5

// NavAgent is the seam to the navigation service: order execution writes a
// destination, the mover fills in velocity and clears Active on arrival.
// Swapping in a real pathfinder means replacing the system that consumes
// this component, not the component itself.
type NavAgent struct {
	Destination cp.Vector
	Active      bool
	Velocity    cp.Vector
}

var NavAgentComponent = NewComponent[NavAgent]()
