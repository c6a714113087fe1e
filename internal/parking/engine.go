package parking

type Status int

const (
	StatusParked Status = iota
	StatusOutOfRange
	StatusOccupied
	StatusAlreadyParked
	StatusLotFull
)

func (s Status) String() string {
	switch s {
	case StatusParked:
		return "parked"
	case StatusOutOfRange:
		return "out_of_range"
	case StatusOccupied:
		return "already_occupied"
	case StatusAlreadyParked:
		return "already_parked"
	case StatusLotFull:
		return "lot_full"
	default:
		return "unknown"
	}
}

// Placement is the outcome of one attempt. Slot is -1 for a lot-full record.
type Placement struct {
	Status Status
	Plate  string
	Slot   int
}

func (p Placement) OK() bool {
	return p.Status == StatusParked
}

type Report struct {
	Attempts []Placement
	Mapping  map[string]string
	Parked   int
	Full     bool
	// Skipped lists plates that were never placed because the lot filled up.
	Skipped []string
}

// Park puts v into the given slot. Rejections are reported through the
// returned Placement and leave the lot untouched.
func Park(v *Vehicle, lot *Lot, slot int) Placement {
	p := Placement{Plate: v.Plate(), Slot: slot}

	switch {
	case !lot.validIndex(slot):
		p.Status = StatusOutOfRange
	case lot.slots[slot].IsOccupied():
		p.Status = StatusOccupied
	default:
		if _, parked := lot.SlotOf(v.Plate()); parked {
			p.Status = StatusAlreadyParked
			return p
		}
		lot.place(v, slot)
		p.Status = StatusParked
	}
	return p
}

// Run parks vehicles in order, each into a random empty slot, and stops at
// the first vehicle that finds the lot full.
func Run(vehicles []*Vehicle, lot *Lot) Report {
	var rep Report

	for i, v := range vehicles {
		if lot.IsFull() || !parkRandom(v, lot, &rep) {
			rep.lotFull(vehicles[i:])
			break
		}
	}

	rep.Mapping = lot.OccupiedMapping()
	return rep
}

func parkRandom(v *Vehicle, lot *Lot, rep *Report) bool {
	for {
		slot, ok := lot.FindRandomEmptySlot()
		if !ok {
			return false
		}

		p := Park(v, lot, slot)
		rep.Attempts = append(rep.Attempts, p)

		switch p.Status {
		case StatusParked:
			rep.Parked++
			return true
		case StatusAlreadyParked:
			return true
		}
	}
}

func (r *Report) lotFull(remaining []*Vehicle) {
	r.Full = true
	r.Attempts = append(r.Attempts, Placement{Status: StatusLotFull, Plate: remaining[0].Plate(), Slot: -1})
	for _, v := range remaining {
		r.Skipped = append(r.Skipped, v.Plate())
	}
}
