package geo

import (
	"errors"
	"fmt"
	"math"
)

var ErrOutOfRange = errors.New("coordinate out of range")

// Coordinate is a WGS84 position in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Path is an ordered list of coordinates in recording order.
type Path []Coordinate

func (c Coordinate) Validate() error {
	if math.IsNaN(c.Latitude) || math.IsInf(c.Latitude, 0) || c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("latitude %v: %w", c.Latitude, ErrOutOfRange)
	}
	if math.IsNaN(c.Longitude) || math.IsInf(c.Longitude, 0) || c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("longitude %v: %w", c.Longitude, ErrOutOfRange)
	}
	return nil
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%v,%v)", c.Latitude, c.Longitude)
}

// Clone returns a copy that does not share backing storage with p.
func (p Path) Clone() Path {
	out := make(Path, len(p))
	copy(out, p)
	return out
}
