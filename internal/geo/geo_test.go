package geo

import (
	"encoding/json"
	"testing"

	"github.com/KaramelBytes/sheetdash/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sites() *table.Table {
	p := table.ParseValue
	return table.New([]string{"Proyecto", "Latitud", "País", "Longitud"}, [][]table.Value{
		{p("Escuela"), p("14.6"), p("Guatemala"), p("-90.5")},
		{p("Clínica"), p("n/d"), p("Honduras"), p("-87.2")},
		{p("Huerto"), p("9.9"), table.Missing(), p("-84.1")},
	})
}

func TestDetect(t *testing.T) {
	assert.True(t, Detect(sites()))
	assert.False(t, Detect(table.New([]string{"latitud", "Longitud"}, nil)), "match is case-sensitive")
	assert.False(t, Detect(table.New([]string{"Latitud"}, nil)))
}

func TestPoints(t *testing.T) {
	pts := Points(sites())
	require.Len(t, pts, 2, "row with unparsable latitude is skipped")

	assert.Equal(t, "Escuela", pts[0].Label)
	assert.InDelta(t, 14.6, pts[0].Lat, 1e-9)
	assert.InDelta(t, -90.5, pts[0].Lon, 1e-9)
	assert.Equal(t, []Field{{"Proyecto", "Escuela"}, {"País", "Guatemala"}}, pts[0].Meta)
	assert.Equal(t, []Field{{"Proyecto", "Huerto"}, {"País", ""}}, pts[1].Meta)
}

func TestPointsWithoutCoordinates(t *testing.T) {
	tb := table.New([]string{"Latitud", "Longitud"}, [][]table.Value{
		{table.Missing(), table.ParseValue("1")},
	})
	assert.True(t, Detect(tb))
	assert.Empty(t, Points(tb))
	assert.Nil(t, Points(table.New([]string{"A"}, nil)))
}

func TestExtent(t *testing.T) {
	_, ok := Extent(nil)
	assert.False(t, ok)

	b, ok := Extent(Points(sites()))
	require.True(t, ok)
	assert.Equal(t, Bounds{MinLat: 9.9, MinLon: -90.5, MaxLat: 14.6, MaxLon: -84.1}, b)
	lat, lon := b.Center()
	assert.InDelta(t, 12.25, lat, 1e-9)
	assert.InDelta(t, -87.3, lon, 1e-9)
}

func TestFeatureCollection(t *testing.T) {
	data, err := FeatureCollection(Points(sites()))
	require.NoError(t, err)

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type        string    `json:"type"`
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties struct {
				Label  string  `json:"label"`
				Fields []Field `json:"fields"`
			} `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(data, &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 2)
	assert.Equal(t, "Point", fc.Features[0].Geometry.Type)
	assert.Equal(t, []float64{-90.5, 14.6}, fc.Features[0].Geometry.Coordinates, "GeoJSON order is lon, lat")
	assert.Equal(t, "Huerto", fc.Features[1].Properties.Label)

	empty, err := FeatureCollection(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, string(empty))
}
