package parking

import "fmt"

// DescribePlacement renders one attempt as a console line.
func DescribePlacement(p Placement) string {
	switch p.Status {
	case StatusParked:
		return fmt.Sprintf("Car with license plate %s parked successfully in spot %d.", p.Plate, p.Slot)
	case StatusOutOfRange:
		return fmt.Sprintf("Spot number %d is out of range.", p.Slot)
	case StatusOccupied:
		return fmt.Sprintf("Spot %d is already occupied.", p.Slot)
	case StatusAlreadyParked:
		return fmt.Sprintf("Car with license plate %s is already parked.", p.Plate)
	case StatusLotFull:
		return "Parking lot is full."
	default:
		return fmt.Sprintf("Unknown placement status for %s.", p.Plate)
	}
}
