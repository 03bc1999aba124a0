// Package input enumerates gamepads, maps vendor axes/buttons/hats to the
// wire layout, and maintains the six ordered device slots with UUID locks
// (§4.3). The slot table is owned for the process lifetime and guarded by
// a single mutex shared with the coordinator.
package input

import (
	"sort"
	"sync"

	"station/internal/codec"
)

// SlotCount is the number of ordered device positions (§4.3).
const SlotCount = 6

// Slot is one of the six ordered positions a device can occupy.
type Slot struct {
	Index       int
	UUID        string
	Name        string
	Locked      bool
	Connected   bool
	AxisCount   int
	ButtonCount int
	HatCount    int
	Data        codec.JoystickData
}

// Table owns the six slots plus the UUID lock table. Reassignment (lock,
// reorder) is inherently a multi-slot operation, so there is exactly one
// lock over the whole table, not one per slot.
type Table struct {
	mu      sync.Mutex
	slots   [SlotCount]Slot
	locks   map[string]int // uuid -> locked slot index
}

// NewTable returns an empty slot table with all slots free and
// disconnected.
func NewTable() *Table {
	t := &Table{locks: make(map[string]int)}
	for i := range t.slots {
		t.slots[i] = Slot{Index: i}
	}
	return t
}

// Lock reserves slot for uuid. If another device currently occupies slot,
// it is bumped to the next free slot on the next Attach/reconcile pass.
func (t *Table) Lock(uuid string, slot int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.locks[uuid] = slot
}

// Unlock releases any lock held by uuid.
func (t *Table) Unlock(uuid string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.locks, uuid)
}

// Locks returns a copy of the uuid->slot lock table, e.g. for persisting
// to the startup configuration document on shutdown (§6).
func (t *Table) Locks() map[string]int {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]int, len(t.locks))
	for k, v := range t.locks {
		out[k] = v
	}
	return out
}

// LoadLocks replaces the lock table wholesale, used when restoring
// persisted joystick_locks from configuration at startup.
func (t *Table) LoadLocks(locks map[string]int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.locks = make(map[string]int, len(locks))
	for k, v := range locks {
		t.locks[k] = v
	}
}

// Attach reconciles the appearance of a device with the given uuid/name
// into the table, applying the slot assignment rules of §4.3:
//   - a locked uuid occupies its locked slot, bumping any unlocked occupant
//     to the next free slot
//   - an unlocked device occupies the lowest free slot on first appearance
//   - a device already resident in a slot stays there
func (t *Table) Attach(uuid, name string, axisCount, buttonCount, hatCount int) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if idx := t.indexOf(uuid); idx >= 0 {
		t.slots[idx].Connected = true
		t.slots[idx].Name = name
		t.slots[idx].AxisCount = axisCount
		t.slots[idx].ButtonCount = buttonCount
		t.slots[idx].HatCount = hatCount
		return idx
	}

	if target, locked := t.locks[uuid]; locked {
		if occupantUUID := t.slots[target].UUID; occupantUUID != "" && occupantUUID != uuid && !t.slots[target].Locked {
			t.bumpToFreeSlot(target)
		}
		t.slots[target] = Slot{
			Index:       target,
			UUID:        uuid,
			Name:        name,
			Locked:      true,
			Connected:   true,
			AxisCount:   axisCount,
			ButtonCount: buttonCount,
			HatCount:    hatCount,
		}
		return target
	}

	free := t.lowestFreeSlot()
	if free < 0 {
		return -1 // table full
	}
	t.slots[free] = Slot{
		Index:       free,
		UUID:        uuid,
		Name:        name,
		Connected:   true,
		AxisCount:   axisCount,
		ButtonCount: buttonCount,
		HatCount:    hatCount,
	}
	return free
}

// Detach marks uuid's slot as disconnected. A locked slot stays reserved
// (named, not-connected); an unlocked slot becomes free and the remaining
// occupants do NOT shift (§4.3).
func (t *Table) Detach(uuid string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	idx := t.indexOf(uuid)
	if idx < 0 {
		return
	}
	if t.slots[idx].Locked {
		t.slots[idx].Connected = false
		t.slots[idx].Data = codec.JoystickData{}
		return
	}
	t.slots[idx] = Slot{Index: idx}
}

// UpdateData replaces the joystick data sample for uuid's slot, if present.
func (t *Table) UpdateData(uuid string, data codec.JoystickData) {
	t.mu.Lock()
	defer t.mu.Unlock()
	idx := t.indexOf(uuid)
	if idx < 0 {
		return
	}
	t.slots[idx].Data = data
}

// Reorder replaces the slot table wholesale from a provided UUID ordering
// (manual reorder, §4.3). UUIDs in order that already have a slot keep
// whatever connection state they had and are packed into slots 0, 1, 2...
// in the order given; UUIDs in order with no prior slot are skipped (they
// must be attached through Attach first to carry axis/button/hat counts);
// slots whose UUID does not appear in order are dropped from the table.
func (t *Table) Reorder(order []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	byUUID := make(map[string]Slot, len(order))
	for _, s := range t.slots {
		if s.UUID != "" {
			byUUID[s.UUID] = s
		}
	}

	var next [SlotCount]Slot
	for i := range next {
		next[i] = Slot{Index: i}
	}
	used := 0
	for _, uuid := range order {
		if used >= SlotCount {
			break
		}
		if s, ok := byUUID[uuid]; ok {
			s.Index = used
			next[used] = s
			used++
		}
	}
	t.slots = next
}

// Snapshot returns a copy of all six slots in slot order, safe to publish
// outside the engine.
func (t *Table) Snapshot() [SlotCount]Slot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.slots
}

// ConnectedSlots returns the slots currently connected, in slot order:
// the order the send loop emits joystick tag sections in (§4.1).
func (t *Table) ConnectedSlots() []Slot {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []Slot
	for _, s := range t.slots {
		if s.Connected {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

func (t *Table) indexOf(uuid string) int {
	for i, s := range t.slots {
		if s.UUID == uuid {
			return i
		}
	}
	return -1
}

func (t *Table) lowestFreeSlot() int {
	for i, s := range t.slots {
		if s.UUID == "" {
			return i
		}
	}
	return -1
}

// bumpToFreeSlot relocates whatever unlocked occupant is in from to the
// next free slot, displacing it to make room for a locked device.
func (t *Table) bumpToFreeSlot(from int) {
	to := t.lowestFreeSlot()
	if to < 0 || to == from {
		return
	}
	occupant := t.slots[from]
	occupant.Index = to
	t.slots[to] = occupant
}
