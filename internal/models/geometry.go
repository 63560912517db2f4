package models

import (
	"encoding/json"
	"fmt"
)

// EsriPolygon represents parcel boundary geometry as returned by the EGIS
// query API: a ring array in ESRI JSON format. Rings follow the same
// [rings][points][x,y] layout as GeoJSON Polygon coordinates, so the type
// decodes the upstream shape and re-encodes as GeoJSON for the frontend.
type EsriPolygon struct {
	Rings [][][2]float64
}

// IsEmpty reports whether the polygon carries no rings, which is how a failed
// or skipped geometry fetch is represented on the aggregated record.
func (p EsriPolygon) IsEmpty() bool {
	return len(p.Rings) == 0
}

// UnmarshalJSON parses the ESRI JSON geometry object ({"rings": [...]}).
func (p *EsriPolygon) UnmarshalJSON(data []byte) error {
	var geom struct {
		Rings [][][2]float64 `json:"rings"`
	}
	if err := json.Unmarshal(data, &geom); err != nil {
		return fmt.Errorf("failed to unmarshal esri polygon: %w", err)
	}
	p.Rings = geom.Rings
	return nil
}

// MarshalJSON emits a GeoJSON Polygon for API responses. The frontend map
// component consumes GeoJSON, not ESRI JSON.
func (p EsriPolygon) MarshalJSON() ([]byte, error) {
	geom := struct {
		Type        string         `json:"type"`
		Coordinates [][][2]float64 `json:"coordinates"`
	}{
		Type:        "Polygon",
		Coordinates: p.Rings,
	}
	return json.Marshal(geom)
}
