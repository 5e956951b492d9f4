// Package inventory implements slot inventories with a wrapping selection
// cursor.
//
// Slots are never removed. Popping an item leaves the empty sentinel in its
// place so the indices of other slots stay valid.
package inventory

import (
	"errors"

	"github.com/Faultbox/glops/internal/entity"
)

// ErrEmpty is returned when selecting in an inventory without slots.
var ErrEmpty = errors.New("inventory has no slots")

// SelectionEvent describes the selection after an inventory change.
type SelectionEvent struct {
	Possible  bool
	Index     int
	Name      string
	SlotCount int
	ItemCount int
	Method    string
}

// Inventory is a list of item slots with a selection cursor. Selected is
// -1 until the first item arrives.
type Inventory struct {
	slots     []entity.Item
	selected  int
	unbounded bool
}

// New creates an empty inventory. A bounded inventory only fills slots
// that already exist.
func New(unbounded bool) *Inventory {
	return &Inventory{selected: -1, unbounded: unbounded}
}

// WithSlots creates a bounded inventory with n empty slots.
func WithSlots(n int) *Inventory {
	inv := New(false)
	inv.slots = make([]entity.Item, n)
	for i := range inv.slots {
		inv.slots[i] = entity.EmptyItem()
	}
	return inv
}

// Len returns the number of slots, empty ones included.
func (inv *Inventory) Len() int {
	return len(inv.slots)
}

// Count returns the number of non-empty slots.
func (inv *Inventory) Count() int {
	n := 0
	for i := range inv.slots {
		if !inv.slots[i].IsEmpty() {
			n++
		}
	}
	return n
}

// Selected returns the cursor, or -1 when unset.
func (inv *Inventory) Selected() int {
	return inv.selected
}

// Slot returns a pointer to slot i, or nil when out of range.
func (inv *Inventory) Slot(i int) *entity.Item {
	if i < 0 || i >= len(inv.slots) {
		return nil
	}
	return &inv.slots[i]
}

// SelectedItem returns the item under the cursor, or nil.
func (inv *Inventory) SelectedItem() *entity.Item {
	return inv.Slot(inv.selected)
}

// Has reports whether any slot holds an item called name.
func (inv *Inventory) Has(name string) bool {
	for i := range inv.slots {
		if !inv.slots[i].IsEmpty() && inv.slots[i].Name == name {
			return true
		}
	}
	return false
}

// Push stores item in the first empty slot, appending when there is none
// and the inventory is unbounded. It returns the slot used, or -1.
func (inv *Inventory) Push(item entity.Item) (SelectionEvent, int) {
	slot := -1
	for i := range inv.slots {
		if inv.slots[i].IsEmpty() {
			slot = i
			break
		}
	}
	if slot < 0 && inv.unbounded {
		inv.slots = append(inv.slots, entity.EmptyItem())
		slot = len(inv.slots) - 1
	}
	if slot < 0 {
		return SelectionEvent{Possible: false, Index: inv.selected, SlotCount: len(inv.slots), ItemCount: inv.Count(), Method: "push"}, -1
	}

	inv.slots[slot] = item
	if inv.selected < 0 {
		inv.selected = slot
	}
	return inv.event("push"), slot
}

// SelectNext moves the cursor one slot forward or backward, wrapping at
// both ends.
func (inv *Inventory) SelectNext(forward bool) (SelectionEvent, error) {
	if len(inv.slots) == 0 {
		return SelectionEvent{Possible: false, Index: inv.selected, Method: "select_next"}, ErrEmpty
	}
	if forward {
		inv.selected++
	} else {
		inv.selected--
	}
	if inv.selected < 0 {
		inv.selected = len(inv.slots) - 1
	} else if inv.selected >= len(inv.slots) {
		inv.selected = 0
	}
	return inv.event("select_next"), nil
}

// Pop empties slot index and returns what it held. The cursor then moves
// forward when slot 0 was emptied and backward otherwise.
func (inv *Inventory) Pop(index int) (entity.Item, SelectionEvent, bool) {
	if index < 0 || index >= len(inv.slots) {
		return entity.Item{}, SelectionEvent{Possible: false, Index: inv.selected, SlotCount: len(inv.slots), Method: "pop"}, false
	}
	item := inv.slots[index]
	inv.slots[index] = entity.EmptyItem()
	ev, _ := inv.SelectNext(index == 0)
	ev.Method = "select_next from pop"
	return item, ev, true
}

func (inv *Inventory) event(method string) SelectionEvent {
	ev := SelectionEvent{
		Possible:  true,
		Index:     inv.selected,
		SlotCount: len(inv.slots),
		ItemCount: inv.Count(),
		Method:    method,
	}
	if it := inv.SelectedItem(); it != nil {
		ev.Name = it.Name
	}
	return ev
}
