package component

import "github.com/jakecoffman/cp/v2"

// OrderKind tags the variant of a queued directive.
type OrderKind uint8

const (
	OrderMove OrderKind = iota
	OrderAttack
	OrderPatrol
	OrderHold
	OrderStop
)

func (k OrderKind) String() string {
	switch k {
	case OrderMove:
		return "move"
	case OrderAttack:
		return "attack"
	case OrderPatrol:
		return "patrol"
	case OrderHold:
		return "hold"
	case OrderStop:
		return "stop"
	default:
		return "unknown"
	}
}

// Order is a single queued directive for a unit. Target is a raw entity
// handle (ecs.Entity is uint64). Done is a one-way flag: a completed order
// never executes again.
type Order struct {
	Kind   OrderKind
	Pos    cp.Vector
	Target uint64
	Done   bool
}

// OrderStatus reports what an order execution tick did, so conditions that
// would otherwise be silent no-ops stay observable.
type OrderStatus uint8

const (
	StatusIdle OrderStatus = iota
	StatusMoving
	StatusWaitingCooldown
	StatusStruck
	StatusTargetGone
	StatusCompleted
	StatusStopped
)

func (s OrderStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusMoving:
		return "moving"
	case StatusWaitingCooldown:
		return "waiting_cooldown"
	case StatusStruck:
		return "struck"
	case StatusTargetGone:
		return "target_gone"
	case StatusCompleted:
		return "completed"
	case StatusStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// DefaultQueueCap bounds how many orders a unit will hold pending.
const DefaultQueueCap = 16

// OrderQueue holds a unit's pending orders plus the one being executed.
// At most one non-complete current order exists at any time.
type OrderQueue struct {
	Pending    []Order
	Current    *Order
	Cap        int
	LastStatus OrderStatus
}

// Push appends an order, returning false when the queue is full.
func (q *OrderQueue) Push(o Order) bool {
	if q == nil {
		return false
	}
	cap := q.Cap
	if cap <= 0 {
		cap = DefaultQueueCap
	}
	if len(q.Pending) >= cap {
		return false
	}
	q.Pending = append(q.Pending, o)
	return true
}

// Clear discards all pending orders and the current one.
func (q *OrderQueue) Clear() {
	if q == nil {
		return
	}
	q.Pending = q.Pending[:0]
	q.Current = nil
}

// Next pops the pending head into Current. Returns nil when empty.
func (q *OrderQueue) Next() *Order {
	if q == nil || len(q.Pending) == 0 {
		if q != nil {
			q.Current = nil
		}
		return nil
	}
	o := q.Pending[0]
	q.Pending = q.Pending[1:]
	q.Current = &o
	return q.Current
}

// Idle reports whether there is nothing to execute.
func (q *OrderQueue) Idle() bool {
	if q == nil {
		return true
	}
	return len(q.Pending) == 0 && (q.Current == nil || q.Current.Done)
}

var OrderQueueComponent = NewComponent[OrderQueue]()
