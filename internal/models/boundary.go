package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidBoundary is returned when a boundary cannot describe an area.
var ErrInvalidBoundary = errors.New("boundary needs at least 3 points with valid coordinates")

// Boundary is the outline of a parcel as drawn on a map.
// Points are [lat, lng] pairs in WGS84 and the ring is implicitly closed.
type Boundary struct {
	Points [][2]float64
}

// ParseBoundary accepts either a list of [lat, lng] pairs or a GeoJSON Polygon
// (whose coordinates are [lng, lat]) and returns the boundary it describes.
func ParseBoundary(value interface{}) (Boundary, error) {
	var raw []byte
	switch v := value.(type) {
	case nil:
		return Boundary{}, nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return Boundary{}, fmt.Errorf("failed to encode boundary: %w", err)
		}
		raw = encoded
	}

	var b Boundary
	if err := b.UnmarshalJSON(raw); err != nil {
		return Boundary{}, err
	}
	return b, nil
}

// Valid reports whether the boundary has at least three points and every point
// lies within latitude/longitude range. An empty boundary is not valid.
func (b Boundary) Valid() bool {
	if len(b.Points) < 3 {
		return false
	}
	for _, pt := range b.Points {
		if pt[0] < -90 || pt[0] > 90 || pt[1] < -180 || pt[1] > 180 {
			return false
		}
	}
	return true
}

// Centroid is the mean of the boundary's vertices. ok is false when the
// boundary is not valid.
func (b Boundary) Centroid() (lat, lng float64, ok bool) {
	if !b.Valid() {
		return 0, 0, false
	}
	for _, pt := range b.Points {
		lat += pt[0]
		lng += pt[1]
	}
	n := float64(len(b.Points))
	return lat / n, lng / n, true
}

// Scan implements sql.Scanner for boundaries stored as JSON.
func (b *Boundary) Scan(value interface{}) error {
	if value == nil {
		b.Points = nil
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("failed to scan Boundary: expected []byte, got %T", value)
	}
	return b.UnmarshalJSON(raw)
}

// Value implements driver.Valuer. An empty boundary is stored as NULL.
func (b Boundary) Value() (driver.Value, error) {
	if len(b.Points) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(b.Points)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal boundary: %w", err)
	}
	return string(data), nil
}

// MarshalJSON encodes the boundary as a plain list of [lat, lng] pairs.
func (b Boundary) MarshalJSON() ([]byte, error) {
	if b.Points == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(b.Points)
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *Boundary) UnmarshalJSON(data []byte) error {
	var points [][2]float64
	if err := json.Unmarshal(data, &points); err == nil {
		b.Points = points
		return nil
	}

	var geom struct {
		Type        string         `json:"type"`
		Coordinates [][][2]float64 `json:"coordinates"`
	}
	if err := json.Unmarshal(data, &geom); err != nil {
		return fmt.Errorf("failed to unmarshal boundary: %w", err)
	}
	if geom.Type != "Polygon" {
		return fmt.Errorf("expected Polygon type, got %q", geom.Type)
	}

	b.Points = nil
	if len(geom.Coordinates) == 0 {
		return nil
	}
	ring := geom.Coordinates[0]
	// GeoJSON rings repeat the first point at the end.
	if n := len(ring); n > 1 && ring[0] == ring[n-1] {
		ring = ring[:n-1]
	}
	for _, c := range ring {
		b.Points = append(b.Points, [2]float64{c[1], c[0]})
	}
	return nil
}
