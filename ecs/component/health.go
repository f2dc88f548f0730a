package component

// Health tracks hit points. Current never leaves [0, Max].
type Health struct {
	Current float64
	Max     float64
}

func (h *Health) Ratio() float64 {
	if h == nil || h.Max <= 0 {
		return 0
	}
	return h.Current / h.Max
}

func (h *Health) Alive() bool {
	return h != nil && h.Current > 0
}

// Damage lowers Current, clamping at zero, and returns the amount applied.
func (h *Health) Damage(amount float64) float64 {
	if h == nil || amount <= 0 {
		return 0
	}
	if amount > h.Current {
		amount = h.Current
	}
	h.Current -= amount
	return amount
}

// Heal raises Current, clamping at Max, and returns the amount applied.
func (h *Health) Heal(amount float64) float64 {
	if h == nil || amount <= 0 {
		return 0
	}
	if h.Current+amount > h.Max {
		amount = h.Max - h.Current
	}
	h.Current += amount
	return amount
}

var HealthComponent = NewComponent[Health]()

// Dying marks a dead unit awaiting removal. The entity stays in the world
// until the sim clock passes RemoveAt, then it is destroyed.
type Dying struct {
	RemoveAt float64
}

var DyingComponent = NewComponent[Dying]()
