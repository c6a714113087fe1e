package parking

import (
	"errors"
	"fmt"
	"strings"
)

const (
	PlateLength   = 7
	plateAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var ErrInvalidVehicleIdentifier = errors.New("invalid vehicle identifier")

type Vehicle struct {
	plate string
}

func NewVehicle(plate string) (*Vehicle, error) {
	if !validPlate(plate) {
		return nil, fmt.Errorf("%w: license plate %q must be a %d character alphanumeric string",
			ErrInvalidVehicleIdentifier, plate, PlateLength)
	}
	return &Vehicle{plate: plate}, nil
}

func (v *Vehicle) Plate() string {
	return v.plate
}

func (v *Vehicle) String() string {
	return v.plate
}

// ParseVehicles builds one vehicle per plate. Every rejected plate is reported
// in the returned error; no vehicles are returned when any plate is invalid.
func ParseVehicles(plates []string) ([]*Vehicle, error) {
	vehicles := make([]*Vehicle, 0, len(plates))
	var errs []error
	for _, plate := range plates {
		v, err := NewVehicle(strings.TrimSpace(plate))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		vehicles = append(vehicles, v)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return vehicles, nil
}

func RandomPlate(src Source) string {
	var b strings.Builder
	b.Grow(PlateLength)
	for i := 0; i < PlateLength; i++ {
		b.WriteByte(plateAlphabet[src.Intn(len(plateAlphabet))])
	}
	return b.String()
}

func RandomVehicles(n int, src Source) []*Vehicle {
	vehicles := make([]*Vehicle, 0, max(n, 0))
	for i := 0; i < n; i++ {
		vehicles = append(vehicles, &Vehicle{plate: RandomPlate(src)})
	}
	return vehicles
}

func validPlate(plate string) bool {
	if len(plate) != PlateLength {
		return false
	}
	for i := 0; i < len(plate); i++ {
		c := plate[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}
