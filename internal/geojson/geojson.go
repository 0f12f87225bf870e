// ABOUTME: GeoJSON generation utilities
// ABOUTME: Converts recorded fixes to GeoJSON FeatureCollections

package geojson

import (
	"cmp"
	"encoding/json"
	"slices"
	"time"

	"github.com/harper/fixtrack/internal/models"
)

// FeatureCollection represents a GeoJSON FeatureCollection.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature represents a GeoJSON Feature.
type Feature struct {
	Type       string                 `json:"type"`
	Geometry   Geometry               `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

// Geometry represents a GeoJSON Geometry.
type Geometry struct {
	Type        string      `json:"type"`
	Coordinates interface{} `json:"coordinates"`
}

// PointCoordinates represents [longitude, latitude] for a Point.
type PointCoordinates [2]float64

// LineCoordinates represents [[lng, lat], [lng, lat], ...] for a LineString.
type LineCoordinates []PointCoordinates

// ToPointsFeatureCollection converts fixes to a FeatureCollection of Points,
// one per fix, in the order given.
func ToPointsFeatureCollection(fixes []*models.Fix) *FeatureCollection {
	features := make([]Feature, 0, len(fixes))

	for _, fix := range fixes {
		features = append(features, Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: PointCoordinates{fix.Longitude, fix.Latitude},
			},
			Properties: map[string]interface{}{
				"id":                 fix.ID,
				"timestamp":          fix.Timestamp,
				"recorded_at":        fix.Time().UTC().Format(time.RFC3339),
				"is_moving":          fix.IsMoving,
				"no_motion_notified": fix.NoMotionNotified,
			},
		})
	}

	return &FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}

// ToLineFeatureCollection converts fixes to a single LineString tracing the
// path in chronological order. Fewer than two fixes give an empty
// collection.
func ToLineFeatureCollection(fixes []*models.Fix) *FeatureCollection {
	fc := &FeatureCollection{
		Type:     "FeatureCollection",
		Features: []Feature{},
	}
	if len(fixes) < 2 {
		// Need at least 2 points for a line
		return fc
	}

	ordered := slices.Clone(fixes)
	slices.SortFunc(ordered, func(a, b *models.Fix) int {
		if c := cmp.Compare(a.Timestamp, b.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	coords := make(LineCoordinates, len(ordered))
	for i, fix := range ordered {
		coords[i] = PointCoordinates{fix.Longitude, fix.Latitude}
	}

	first, last := ordered[0], ordered[len(ordered)-1]
	fc.Features = append(fc.Features, Feature{
		Type: "Feature",
		Geometry: Geometry{
			Type:        "LineString",
			Coordinates: coords,
		},
		Properties: map[string]interface{}{
			"point_count": len(ordered),
			"started_at":  first.Time().UTC().Format(time.RFC3339),
			"ended_at":    last.Time().UTC().Format(time.RFC3339),
		},
	})
	return fc
}

// ToJSON serializes a FeatureCollection to JSON.
func (fc *FeatureCollection) ToJSON() ([]byte, error) {
	return json.Marshal(fc)
}

// ToJSONIndent serializes a FeatureCollection to indented JSON.
func (fc *FeatureCollection) ToJSONIndent() ([]byte, error) {
	return json.MarshalIndent(fc, "", "  ")
}
