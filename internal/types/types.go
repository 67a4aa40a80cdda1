// README: Common identifier and geo value objects used across modules.
package types

// ID is an opaque entity identifier (accounts, rides, tokens).
type ID string

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Zero reports whether the point is the default origin value.
func (p Point) Zero() bool {
	return p.Lat == 0 && p.Lng == 0
}
