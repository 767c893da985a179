package charts

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

// Instance is a chart installed in a board slot
type Instance struct {
	ID   string
	Slot string
	Spec Spec

	mu       sync.Mutex
	disposed bool
}

// Dispose releases the instance. It is idempotent.
func (i *Instance) Dispose() {
	i.mu.Lock()
	i.disposed = true
	i.mu.Unlock()
}

func (i *Instance) Disposed() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.disposed
}

// Config is the JSON the page hands to the charting library
func (i *Instance) Config() string {
	data, err := json.Marshal(i.Spec)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// Board owns the charts of one page. A slot holds at most one live
// instance; replacing it disposes the previous one first.
type Board struct {
	mu    sync.Mutex
	slots map[string]*Instance
	order []string
}

func NewBoard() *Board {
	return &Board{slots: make(map[string]*Instance)}
}

// Replace installs spec in slot, disposing whatever instance was there
func (b *Board) Replace(slot string, spec Spec) *Instance {
	b.mu.Lock()
	defer b.mu.Unlock()

	if prev, ok := b.slots[slot]; ok {
		prev.Dispose()
	} else {
		b.order = append(b.order, slot)
	}
	inst := &Instance{ID: uuid.NewString(), Slot: slot, Spec: spec}
	b.slots[slot] = inst
	return inst
}

func (b *Board) Get(slot string) (*Instance, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	inst, ok := b.slots[slot]
	return inst, ok
}

// Instances returns the live instances in the order their slots were first
// filled.
func (b *Board) Instances() []*Instance {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*Instance, 0, len(b.order))
	for _, slot := range b.order {
		out = append(out, b.slots[slot])
	}
	return out
}

// Clear disposes every instance and empties the board
func (b *Board) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, inst := range b.slots {
		inst.Dispose()
	}
	b.slots = make(map[string]*Instance)
	b.order = nil
}

func (b *Board) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.slots)
}
