package ecs

import "skirmish/ecs/component"

// Event is a simulation event payload. Systems push events while they run;
// the owner of the world drains the queue once per tick, which keeps
// observation ordering deterministic.
type Event struct {
	Type string
	Data any
}

const (
	EventHealthChanged  = "health_changed"
	EventUnitDied       = "unit_died"
	EventOrderStatus    = "order_status"
	EventOrderCompleted = "order_completed"
	EventTargetAcquired = "target_acquired"
	EventTargetLost     = "target_lost"
	EventStateChanged   = "state_changed"
)

// HealthChangedEvent is emitted whenever damage or healing lands.
type HealthChangedEvent struct {
	Entity   Entity
	Previous float64
	Current  float64
}

// UnitDiedEvent is emitted once when health first reaches zero.
type UnitDiedEvent struct {
	Entity Entity
	At     float64
}

// OrderStatusEvent reports what an order execution tick did. Conditions that
// would otherwise be silent no-ops (vanished targets, dead units) surface here.
type OrderStatusEvent struct {
	Entity Entity
	Kind   component.OrderKind
	Status component.OrderStatus
}

// OrderCompletedEvent is emitted when an order finishes.
type OrderCompletedEvent struct {
	Entity Entity
	Kind   component.OrderKind
}

// TargetAcquiredEvent is emitted when targeting picks or switches a target.
type TargetAcquiredEvent struct {
	Entity Entity
	Target Entity
	Score  float64
}

// TargetLostEvent is emitted when the current target becomes invalid.
type TargetLostEvent struct {
	Entity Entity
	Target Entity
}

// StateChangedEvent is emitted on every brain state transition.
type StateChangedEvent struct {
	Entity Entity
	From   component.BrainState
	To     component.BrainState
	At     float64
}

// EventQueue is a simple FIFO queue.
type EventQueue struct {
	items []Event
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

// Len returns the number of queued events.
func (q *EventQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}
