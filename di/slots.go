package di

import (
	"context"
	"sync/atomic"
)

// instance boxes a constructed bean so a cell can publish it atomically.
type instance struct {
	value any
}

// cell is the storage behind one index. Singleton beans keep their instance
// in value; thread beans keep theirs in per-thread tables and use gen to
// detect invalidation.
type cell struct {
	value  atomic.Pointer[instance]
	gen    atomic.Uint64
	thread atomic.Bool
}

func (c *cell) load() (any, bool) {
	if inst := c.value.Load(); inst != nil {
		return inst.value, true
	}
	return nil, false
}

func (c *cell) store(v any) { c.value.Store(&instance{value: v}) }

// clear empties the singleton slot and invalidates every thread slot built
// against the previous generation.
func (c *cell) clear() {
	c.value.Store(nil)
	c.gen.Add(1)
}

// slotTable is append-only and copy-on-write: a published table is never
// modified except through its cells.
type slotTable struct {
	epoch uint64
	cells []*cell
}

func (t *slotTable) grow(scope Scope) *slotTable {
	cells := make([]*cell, len(t.cells), len(t.cells)+1)
	copy(cells, t.cells)
	c := &cell{}
	c.thread.Store(scope == ScopeThread)
	return &slotTable{epoch: t.epoch, cells: append(cells, c)}
}

// threadSlot is valid only while gen matches the owning cell's generation.
type threadSlot struct {
	inst *instance
	gen  uint64
}

// threadTable belongs to one thread context and is never shared, so it
// needs no synchronization.
type threadTable struct {
	epoch uint64
	slots []threadSlot
}

// sync drops every slot built before the last Reset.
func (tt *threadTable) sync(epoch uint64) {
	if tt.epoch != epoch {
		tt.epoch = epoch
		tt.slots = nil
	}
}

func (tt *threadTable) get(epoch uint64, index int, gen uint64) (any, bool) {
	if tt.epoch != epoch || index >= len(tt.slots) {
		return nil, false
	}
	s := tt.slots[index]
	if s.inst == nil || s.gen != gen {
		return nil, false
	}
	return s.inst.value, true
}

func (tt *threadTable) put(index int, v any, gen uint64) {
	if index >= len(tt.slots) {
		tt.slots = append(tt.slots, make([]threadSlot, index+1-len(tt.slots))...)
	}
	tt.slots[index] = threadSlot{inst: &instance{value: v}, gen: gen}
}

func (tt *threadTable) clear(index int) {
	if index < len(tt.slots) {
		tt.slots[index] = threadSlot{}
	}
}

type threadKey struct{ m *Manager }

// WithThread returns a context carrying a fresh thread: thread-scoped beans
// resolved through it, or through contexts derived from it, are private to
// it. A thread context must be used by one goroutine at a time.
func (m *Manager) WithThread(ctx context.Context) context.Context {
	return context.WithValue(ctx, threadKey{m}, &threadTable{epoch: m.table.Load().epoch})
}

func (m *Manager) threadFrom(ctx context.Context) *threadTable {
	tt, _ := ctx.Value(threadKey{m}).(*threadTable)
	return tt
}
