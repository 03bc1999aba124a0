package input

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"station/internal/codec"
)

func TestAttachLowestFreeSlotWhenUnlocked(t *testing.T) {
	tbl := NewTable()
	idx := tbl.Attach("xyz", "pad one", 6, 10, 1)
	assert.Equal(t, 0, idx)
}

func TestAttachResidentDeviceStaysPut(t *testing.T) {
	tbl := NewTable()
	tbl.Attach("xyz", "pad one", 6, 10, 1)
	idx := tbl.Attach("xyz", "pad one", 6, 10, 1)
	assert.Equal(t, 0, idx)
}

// TestAttachLockedUUIDBumpsUnlockedOccupant reproduces §8's worked example:
// uuid "abc" is locked to slot 3; uuid "xyz" (unlocked) is already resident
// in slot 3 when "abc" appears, so "xyz" is bumped to the next free slot.
func TestAttachLockedUUIDBumpsUnlockedOccupant(t *testing.T) {
	tbl := NewTable()
	tbl.Lock("abc", 3)

	// Fill slots 0-2 so xyz, attaching unlocked, lands in slot 3 — the
	// lowest free slot at the time, and also "abc"'s locked slot.
	tbl.Attach("p0", "p0", 1, 1, 1) // slot 0
	tbl.Attach("p1", "p1", 1, 1, 1) // slot 1
	tbl.Attach("p2", "p2", 1, 1, 1) // slot 2
	tbl.Attach("xyz", "xyz", 1, 1, 1) // slot 3, lowest free

	idxABC := tbl.Attach("abc", "abc pad", 6, 10, 1)
	assert.Equal(t, 3, idxABC)

	snap := tbl.Snapshot()
	assert.Equal(t, "abc", snap[3].UUID)
	assert.True(t, snap[3].Locked)

	// xyz must have been bumped to slot 4, the next free slot, not dropped.
	assert.Equal(t, "xyz", snap[4].UUID)
	assert.False(t, snap[4].Locked)
}

func TestAttachLockedUUIDTakesEmptyLockedSlotDirectly(t *testing.T) {
	tbl := NewTable()
	tbl.Lock("abc", 3)
	idx := tbl.Attach("abc", "abc pad", 6, 10, 1)
	assert.Equal(t, 3, idx)
	snap := tbl.Snapshot()
	assert.True(t, snap[3].Locked)
}

func TestAttachReturnsMinusOneWhenFull(t *testing.T) {
	tbl := NewTable()
	for i := 0; i < SlotCount; i++ {
		tbl.Attach(string(rune('a'+i)), "pad", 1, 1, 1)
	}
	idx := tbl.Attach("overflow", "pad", 1, 1, 1)
	assert.Equal(t, -1, idx)
}

func TestDetachUnlockedSlotClearsFully(t *testing.T) {
	tbl := NewTable()
	tbl.Attach("xyz", "pad", 6, 10, 1)
	tbl.Detach("xyz")
	snap := tbl.Snapshot()
	assert.Equal(t, "", snap[0].UUID)
	assert.False(t, snap[0].Connected)
}

func TestDetachLockedSlotStaysReserved(t *testing.T) {
	tbl := NewTable()
	tbl.Lock("abc", 3)
	tbl.Attach("abc", "abc pad", 6, 10, 1)
	tbl.Detach("abc")
	snap := tbl.Snapshot()
	assert.Equal(t, "abc", snap[3].UUID)
	assert.False(t, snap[3].Connected)
	assert.True(t, snap[3].Locked)
}

func TestUnlockedSlotsDoNotShiftOnDetach(t *testing.T) {
	tbl := NewTable()
	tbl.Attach("a", "a", 1, 1, 1) // slot 0
	tbl.Attach("b", "b", 1, 1, 1) // slot 1
	tbl.Detach("a")
	snap := tbl.Snapshot()
	assert.Equal(t, "", snap[0].UUID)
	assert.Equal(t, "b", snap[1].UUID)
}

func TestUpdateDataAndConnectedSlotsOrder(t *testing.T) {
	tbl := NewTable()
	tbl.Attach("a", "a", 1, 1, 1) // slot 0
	tbl.Attach("b", "b", 1, 1, 1) // slot 1
	data := codec.JoystickData{Axes: []int8{42}}
	tbl.UpdateData("b", data)

	connected := tbl.ConnectedSlots()
	assert.Len(t, connected, 2)
	assert.Equal(t, 0, connected[0].Index)
	assert.Equal(t, 1, connected[1].Index)
	assert.Equal(t, data, connected[1].Data)
}

func TestReorderPreservesStateAtNewIndex(t *testing.T) {
	tbl := NewTable()
	tbl.Attach("a", "a", 1, 1, 1) // slot 0
	tbl.Attach("b", "b", 1, 1, 1) // slot 1
	tbl.Reorder([]string{"b", "a"})
	snap := tbl.Snapshot()
	assert.Equal(t, "b", snap[0].UUID)
	assert.Equal(t, 0, snap[0].Index)
	assert.Equal(t, "a", snap[1].UUID)
	assert.Equal(t, 1, snap[1].Index)
}

func TestLoadLocksReplacesWholeTable(t *testing.T) {
	tbl := NewTable()
	tbl.Lock("stale", 5)
	tbl.LoadLocks(map[string]int{"abc": 3})
	locks := tbl.Locks()
	assert.Equal(t, map[string]int{"abc": 3}, locks)
}
