package profile

import (
	"fmt"
	"strings"

	"github.com/hupe1980/georoute/model"
)

// Vehicle selects the access rules and the speed limit of a profile.
type Vehicle uint8

const (
	VehicleFoot Vehicle = iota
	VehicleBicycle
	VehicleCar
)

// String returns the name of the vehicle.
func (v Vehicle) String() string {
	switch v {
	case VehicleFoot:
		return "foot"
	case VehicleBicycle:
		return "bicycle"
	case VehicleCar:
		return "car"
	default:
		return fmt.Sprintf("vehicle(%d)", uint8(v))
	}
}

// ParseVehicle parses a vehicle name.
func ParseVehicle(s string) (Vehicle, error) {
	switch strings.ToLower(s) {
	case "foot":
		return VehicleFoot, nil
	case "bicycle", "bike":
		return VehicleBicycle, nil
	case "car":
		return VehicleCar, nil
	default:
		return 0, fmt.Errorf("profile: unknown vehicle %q", s)
	}
}

func (v Vehicle) access() (forward, backward model.AccessFlags) {
	switch v {
	case VehicleFoot:
		return model.AccessFootForward, model.AccessFootBackward
	case VehicleBicycle:
		return model.AccessBicycleForward, model.AccessBicycleBackward
	default:
		return model.AccessCarForward, model.AccessCarBackward
	}
}

// MaxSpeed returns the default top speed of the vehicle in km/h.
func (v Vehicle) MaxSpeed() float64 {
	switch v {
	case VehicleFoot:
		return 5
	case VehicleBicycle:
		return 20
	default:
		return 130
	}
}
