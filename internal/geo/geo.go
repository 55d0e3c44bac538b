// Package geo turns sheets that carry coordinate columns into map points.
package geo

import (
	"encoding/json"

	"github.com/KaramelBytes/sheetdash/internal/table"
)

// Coordinate column names. Matching is exact and case-sensitive.
const (
	LatitudeColumn  = "Latitud"
	LongitudeColumn = "Longitud"
)

// Field is one column value attached to a point for hover display.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Point is a single located row.
type Point struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Label string  `json:"label"`
	Meta  []Field `json:"meta,omitempty"`
}

// Detect reports whether the table has both coordinate columns. Presence
// alone triggers the map, even when every coordinate is missing.
func Detect(t *table.Table) bool {
	return t.Has(LatitudeColumn, LongitudeColumn)
}

// Points returns one point per row whose latitude and longitude are both
// numbers. The first column supplies the label and every non-coordinate
// column is attached as metadata in column order. Tables without the
// coordinate columns yield nil.
func Points(t *table.Table) []Point {
	if !Detect(t) {
		return nil
	}
	latIdx, lonIdx := t.Index(LatitudeColumn), t.Index(LongitudeColumn)
	var out []Point
	for _, r := range t.Rows {
		lat, lon := r[latIdx], r[lonIdx]
		if lat.Kind != table.Number || lon.Kind != table.Number {
			continue
		}
		p := Point{Lat: lat.Num, Lon: lon.Num, Label: r[0].Raw}
		for j, name := range t.Columns {
			if j == latIdx || j == lonIdx {
				continue
			}
			p.Meta = append(p.Meta, Field{Name: name, Value: r[j].Raw})
		}
		out = append(out, p)
	}
	return out
}

// Bounds is the smallest box holding every point.
type Bounds struct {
	MinLat, MinLon, MaxLat, MaxLon float64
}

// Extent returns the bounds of the points, ok is false for none.
func Extent(points []Point) (Bounds, bool) {
	if len(points) == 0 {
		return Bounds{}, false
	}
	b := Bounds{MinLat: points[0].Lat, MaxLat: points[0].Lat, MinLon: points[0].Lon, MaxLon: points[0].Lon}
	for _, p := range points[1:] {
		b.MinLat = min(b.MinLat, p.Lat)
		b.MaxLat = max(b.MaxLat, p.Lat)
		b.MinLon = min(b.MinLon, p.Lon)
		b.MaxLon = max(b.MaxLon, p.Lon)
	}
	return b, true
}

// Center is the midpoint of the bounds.
func (b Bounds) Center() (lat, lon float64) {
	return (b.MinLat + b.MaxLat) / 2, (b.MinLon + b.MaxLon) / 2
}

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Type       string         `json:"type"`
	Geometry   geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type geometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// FeatureCollection encodes points as a GeoJSON FeatureCollection. Each
// feature carries "label" plus a "fields" list preserving column order.
func FeatureCollection(points []Point) ([]byte, error) {
	fc := featureCollection{Type: "FeatureCollection", Features: make([]feature, 0, len(points))}
	for _, p := range points {
		fields := p.Meta
		if fields == nil {
			fields = []Field{}
		}
		fc.Features = append(fc.Features, feature{
			Type:       "Feature",
			Geometry:   geometry{Type: "Point", Coordinates: [2]float64{p.Lon, p.Lat}},
			Properties: map[string]any{"label": p.Label, "fields": fields},
		})
	}
	return json.Marshal(fc)
}
