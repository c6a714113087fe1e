package parking

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// MaxSpots bounds the slot array so an oversized lot fails at construction
// instead of exhausting memory.
const MaxSpots = 1 << 20

var ErrInvalidConfiguration = errors.New("invalid parking lot configuration")

type Lot struct {
	lotArea  float64
	spotArea float64
	slots    []Slot
	occupied int
	byPlate  map[string]int
	empty    *emptySet
	src      Source
}

type LotOption func(*Lot)

func WithSource(src Source) LotOption {
	return func(l *Lot) {
		if src != nil {
			l.src = src
		}
	}
}

// NewLot sizes a lot as floor(lotArea / (spotLength * spotWidth)) empty slots.
func NewLot(lotArea, spotLength, spotWidth float64, opts ...LotOption) (*Lot, error) {
	for _, d := range []struct {
		name  string
		value float64
	}{
		{"lot area", lotArea},
		{"spot length", spotLength},
		{"spot width", spotWidth},
	} {
		if math.IsNaN(d.value) || math.IsInf(d.value, 0) || d.value <= 0 {
			return nil, fmt.Errorf("%w: %s must be a positive number, got %v", ErrInvalidConfiguration, d.name, d.value)
		}
	}

	spotArea := spotLength * spotWidth
	if math.IsInf(spotArea, 0) || spotArea <= 0 {
		return nil, fmt.Errorf("%w: spot area %v is not representable", ErrInvalidConfiguration, spotArea)
	}
	if spotArea > lotArea {
		return nil, fmt.Errorf("%w: spot area %v cannot be more than lot area %v", ErrInvalidConfiguration, spotArea, lotArea)
	}

	count := math.Floor(lotArea / spotArea)
	if count > MaxSpots {
		return nil, fmt.Errorf("%w: %v spots exceeds the limit of %d", ErrInvalidConfiguration, count, MaxSpots)
	}

	total := int(count)
	slots := make([]Slot, total)
	for i := range slots {
		slots[i].Index = i
	}

	l := &Lot{
		lotArea:  lotArea,
		spotArea: spotArea,
		slots:    slots,
		byPlate:  make(map[string]int, total),
		empty:    newEmptySet(total),
		src:      NewCryptoSource(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

func (l *Lot) LotArea() float64 {
	return l.lotArea
}

func (l *Lot) SpotArea() float64 {
	return l.spotArea
}

func (l *Lot) TotalSpots() int {
	return len(l.slots)
}

func (l *Lot) Occupied() int {
	return l.occupied
}

func (l *Lot) Available() int {
	return len(l.slots) - l.occupied
}

func (l *Lot) IsFull() bool {
	return l.occupied == len(l.slots)
}

func (l *Lot) validIndex(index int) bool {
	return index >= 0 && index < len(l.slots)
}

// FindRandomEmptySlot draws uniformly among the slots that are empty right
// now: a draw of k selects the k-th empty slot in index order. It reports
// false when the lot is full.
func (l *Lot) FindRandomEmptySlot() (int, bool) {
	if l.IsFull() {
		return -1, false
	}

	n := l.empty.len()
	return l.empty.nth(normalize(l.src.Intn(n), n)), true
}

func (l *Lot) SlotOf(plate string) (int, bool) {
	index, ok := l.byPlate[plate]
	return index, ok
}

// Slots returns a copy of every slot in index order.
func (l *Lot) Slots() []Slot {
	out := make([]Slot, len(l.slots))
	copy(out, l.slots)
	return out
}

// OccupiedMapping maps each occupied slot index, as a decimal string, to the
// plate parked there.
func (l *Lot) OccupiedMapping() map[string]string {
	mapping := make(map[string]string, l.occupied)
	for _, slot := range l.slots {
		if slot.IsOccupied() {
			mapping[strconv.Itoa(slot.Index)] = slot.Vehicle.Plate()
		}
	}
	return mapping
}

func (l *Lot) place(v *Vehicle, index int) {
	l.slots[index].Vehicle = v
	l.occupied++
	l.byPlate[v.plate] = index
	l.empty.remove(index)
}
