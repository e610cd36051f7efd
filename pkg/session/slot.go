package session

import (
	"f1lapcompare/pkg/model"
)

// Slot is one side of a comparison. Slot 1 is the reference lap.
type Slot int

const (
	Reference Slot = 1
	Compared  Slot = 2
)

func (sl Slot) index() (int, error) {
	if sl != Reference && sl != Compared {
		return 0, model.NewError(model.KindInvalidSlot, nil, "slot must be 1 or 2, got %d", int(sl))
	}
	return int(sl) - 1, nil
}
