package codec

import (
	"errors"
	"math/rand"
	"testing"

	"backend-pathtracker/internal/shared/geo"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := map[string]geo.Path{
		"empty":      {},
		"single":     {{Latitude: 24.7, Longitude: 46.6}},
		"scenario":   {{Latitude: 24.7, Longitude: 46.6}, {Latitude: 24.71, Longitude: 46.61}},
		"boundaries": {{Latitude: 90, Longitude: 180}, {Latitude: -90, Longitude: -180}},
		"duplicates": {{Latitude: 1.5, Longitude: 2.5}, {Latitude: 1.5, Longitude: 2.5}},
		"precision":  {{Latitude: 24.713612345678901, Longitude: 46.675298765432109}, {Latitude: -0.000001, Longitude: 1e-9}},
	}

	for name, path := range cases {
		t.Run(name, func(t *testing.T) {
			data, err := Encode(path)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			got, err := Decode(data)
			if err != nil {
				t.Fatalf("decode %s: %v", data, err)
			}
			assertSamePath(t, path, got)
		})
	}
}

func TestRoundTripRandomPaths(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		path := make(geo.Path, rng.Intn(40))
		for j := range path {
			path[j] = geo.Coordinate{
				Latitude:  rng.Float64()*180 - 90,
				Longitude: rng.Float64()*360 - 180,
			}
		}
		data, err := Encode(path)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		got, err := Decode(data)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		assertSamePath(t, path, got)
	}
}

func TestEncodeFormat(t *testing.T) {
	data, err := Encode(geo.Path{{Latitude: 24.7, Longitude: 46.6}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if string(data) != `["24.7,46.6"]` {
		t.Fatalf("unexpected encoding %s", data)
	}

	data, err = Encode(nil)
	if err != nil {
		t.Fatalf("encode nil: %v", err)
	}
	if string(data) != `[]` {
		t.Fatalf("expected empty array, got %s", data)
	}
}

func TestEncodeRejectsInvalidCoordinate(t *testing.T) {
	_, err := Encode(geo.Path{{Latitude: 10, Longitude: 10}, {Latitude: 91, Longitude: 0}})
	if !errors.Is(err, geo.ErrOutOfRange) {
		t.Fatalf("expected out of range error, got %v", err)
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	cases := map[string]struct {
		input string
		index int
	}{
		"truncated":        {input: `["24.7,46.6","24.71,46`, index: -1},
		"garbage":          {input: `not json`, index: -1},
		"null":             {input: `null`, index: -1},
		"object":           {input: `{"a":"b"}`, index: -1},
		"numbers":          {input: `[24.7, 46.6]`, index: -1},
		"one component":    {input: `["24.7"]`, index: 0},
		"three components": {input: `["1,2,3"]`, index: 0},
		"non numeric":      {input: `["24.7,46.6","abc,def"]`, index: 1},
		"bad trailing":     {input: `["24.7,46.6","24.71,46.61","24.72,"]`, index: 2},
		"lat out of range": {input: `["90.5,0"]`, index: 0},
		"lon out of range": {input: `["0,-180.01"]`, index: 0},
		"nan":              {input: `["NaN,0"]`, index: 0},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			path, err := Decode([]byte(tc.input))
			if path != nil {
				t.Fatalf("expected no partial path, got %v", path)
			}
			if !errors.Is(err, ErrDecode) {
				t.Fatalf("expected decode error, got %v", err)
			}
			var de *DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("expected *DecodeError, got %T", err)
			}
			if de.Index != tc.index {
				t.Fatalf("expected index %d, got %d", tc.index, de.Index)
			}
		})
	}
}

func TestDecodeAcceptsLegacySpacing(t *testing.T) {
	path, err := Decode([]byte(`["24.7, 46.6"]`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	assertSamePath(t, geo.Path{{Latitude: 24.7, Longitude: 46.6}}, path)
}

func assertSamePath(t *testing.T, want, got geo.Path) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("expected %d points, got %d", len(want), len(got))
	}
	for i := range want {
		if want[i] != got[i] {
			t.Fatalf("point %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}
