// Package codec converts a recorded path to and from its stored form: a JSON
// array of "lat,lon" strings.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"backend-pathtracker/internal/shared/geo"
)

// ErrDecode matches every DecodeError through errors.Is.
var ErrDecode = errors.New("decode path")

// DecodeError reports why stored bytes could not be turned back into a path.
// Index is -1 when the envelope itself is malformed.
type DecodeError struct {
	Index   int
	Element string
	Err     error
}

func (e *DecodeError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("decode path: %v", e.Err)
	}
	return fmt.Sprintf("decode path: element %d %q: %v", e.Index, e.Element, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

var (
	errNotArray   = errors.New("not a JSON array of strings")
	errComponents = errors.New("expected two comma separated components")
)

// Encode serializes path. Values are written with the shortest decimal form
// that parses back to the same float64, so Decode(Encode(p)) == p exactly.
func Encode(path geo.Path) ([]byte, error) {
	elems := make([]string, 0, len(path))
	for i, c := range path {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("encode point %d: %w", i, err)
		}
		elems = append(elems, formatPair(c))
	}
	return json.Marshal(elems)
}

// Decode is the inverse of Encode. It either returns the whole path or a
// *DecodeError; a single bad element invalidates the result.
func Decode(data []byte) (geo.Path, error) {
	var elems []string
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, &DecodeError{Index: -1, Err: fmt.Errorf("%w: %v", errNotArray, err)}
	}
	if elems == nil {
		return nil, &DecodeError{Index: -1, Err: errNotArray}
	}

	path := make(geo.Path, 0, len(elems))
	for i, elem := range elems {
		c, err := parsePair(elem)
		if err != nil {
			return nil, &DecodeError{Index: i, Element: elem, Err: err}
		}
		path = append(path, c)
	}
	return path, nil
}

func formatPair(c geo.Coordinate) string {
	return strconv.FormatFloat(c.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(c.Longitude, 'f', -1, 64)
}

func parsePair(s string) (geo.Coordinate, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return geo.Coordinate{}, errComponents
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("longitude: %w", err)
	}
	c := geo.Coordinate{Latitude: lat, Longitude: lon}
	if err := c.Validate(); err != nil {
		return geo.Coordinate{}, err
	}
	return c, nil
}
