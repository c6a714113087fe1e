package parking

// Slot is one unit of capacity. A nil Vehicle means the slot is empty.
type Slot struct {
	Index   int
	Vehicle *Vehicle
}

func (s Slot) IsOccupied() bool {
	return s.Vehicle != nil
}
