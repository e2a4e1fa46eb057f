// Package geo turns the user's position into a region name. It is a
// best-effort enhancement: every failure is logged and reported as "no
// region" so the feed falls back to dataset or default regions.
package geo

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// ErrNoPosition is returned by sources that cannot supply coordinates.
var ErrNoPosition = errors.New("position unavailable")

// Position is a WGS84 coordinate pair.
type Position struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate rejects coordinates outside the WGS84 range.
func (p Position) Validate() error {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) || p.Lat < -90 || p.Lat > 90 || p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("invalid position %v,%v", p.Lat, p.Lon)
	}
	return nil
}

// PositionSource supplies the user's last known position.
type PositionSource interface {
	Position(ctx context.Context) (Position, error)
}

// StaticSource always reports the same coordinates, e.g. from flags.
type StaticSource Position

// Position implements PositionSource.
func (s StaticSource) Position(ctx context.Context) (Position, error) {
	if err := ctx.Err(); err != nil {
		return Position{}, err
	}
	p := Position(s)
	if err := p.Validate(); err != nil {
		return Position{}, err
	}
	return p, nil
}

// NoSource is used when the user shared no position.
type NoSource struct{}

// Position implements PositionSource.
func (NoSource) Position(context.Context) (Position, error) {
	return Position{}, ErrNoPosition
}
