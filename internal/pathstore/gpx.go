package pathstore

import (
	"io"
	"time"

	"backend-pathtracker/internal/shared/geo"

	"github.com/tkrajina/gpxgo/gpx"
)

const gpxCreator = "pathtracker"

// ToGPX renders a decoded path as a single-track, single-segment GPX document
// so it can be replayed in any GPX viewer.
func ToGPX(p SavedPath, path geo.Path) *gpx.GPX {
	points := make([]gpx.GPXPoint, len(path))
	for i, c := range path {
		points[i] = gpx.GPXPoint{
			Point: gpx.Point{
				Latitude:  c.Latitude,
				Longitude: c.Longitude,
			},
		}
	}

	return &gpx.GPX{
		Version:     "1.1",
		Creator:     gpxCreator,
		Name:        p.ID,
		Description: p.RecordedAt.UTC().Format(time.RFC3339),
		Tracks: []gpx.GPXTrack{{
			Name:     p.ID,
			Segments: []gpx.GPXTrackSegment{{Points: points}},
		}},
	}
}

func WriteGPX(w io.Writer, p SavedPath, path geo.Path) error {
	data, err := ToGPX(p, path).ToXml(gpx.ToXmlParams{Version: "1.1", Indent: true})
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
