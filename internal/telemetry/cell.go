package telemetry

// Cell is a single-slot value that is armed once and consumed once.
// Consuming resets it to unarmed. Cells are not safe for concurrent use.
type Cell[T any] struct {
	value T
	armed bool
}

func (c *Cell[T]) Arm(v T) {
	c.value = v
	c.armed = true
}

func (c *Cell[T]) Consume() (T, bool) {
	v, ok := c.value, c.armed
	c.Reset()
	return v, ok
}

func (c *Cell[T]) Armed() bool {
	return c.armed
}

func (c *Cell[T]) Reset() {
	var zero T
	c.value = zero
	c.armed = false
}
