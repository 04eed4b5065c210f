package tetris

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidContainer is returned when a container dimension is not a finite positive number.
	ErrInvalidContainer = errors.New("invalid container")
	// ErrInvalidItem is returned when a cylinder has non-positive or non-finite dimensions or an invalid value.
	ErrInvalidItem = errors.New("invalid item")
)

// Container is the usable interior box.
// X runs along Length, Y along Width, Z along Height, origin at a bottom corner.
type Container struct {
	Length float64 `json:"length" yaml:"length"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Volume returns the interior volume.
func (c Container) Volume() float64 {
	return c.Length * c.Width * c.Height
}

// Validate reports whether every dimension is finite and positive.
func (c Container) Validate() error {
	if !positive(c.Length) || !positive(c.Width) || !positive(c.Height) {
		return fmt.Errorf("%w: dimensions must be finite and positive, got %gx%gx%g", ErrInvalidContainer, c.Length, c.Width, c.Height)
	}
	return nil
}

// positive reports whether v is a finite number greater than zero. NaN fails.
func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

// Cylinder is a right circular cylinder standing upright.
// X, Y, Z is the bottom-center. A negative Z means the cylinder is not loaded.
type Cylinder struct {
	ID     int     `json:"id"`
	Radius float64 `json:"radius"`
	Height float64 `json:"height"`
	Value  float64 `json:"value"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Z      float64 `json:"z"`
	Color  string  `json:"color"`
}

// NewCylinder returns an unplaced cylinder.
func NewCylinder(id int, radius, height, value float64) *Cylinder {
	c := &Cylinder{ID: id, Radius: radius, Height: height, Value: value}
	c.MarkUnplaced()
	return c
}

// MarkUnplaced moves the cylinder to the unplaced sentinel (-r, -r, -h).
func (c *Cylinder) MarkUnplaced() {
	c.X = -c.Radius
	c.Y = -c.Radius
	c.Z = -c.Height
}

// IsUnplaced reports whether the position equals the unplaced sentinel exactly.
func (c *Cylinder) IsUnplaced() bool {
	return c.X == -c.Radius && c.Y == -c.Radius && c.Z == -c.Height
}

// Placed reports whether the cylinder has a position inside a container.
func (c *Cylinder) Placed() bool {
	return c.Z >= 0
}

// Top returns the Z coordinate of the top face.
func (c *Cylinder) Top() float64 {
	return c.Z + c.Height
}

// Volume returns pi * r^2 * h.
func (c *Cylinder) Volume() float64 {
	return math.Pi * c.Radius * c.Radius * c.Height
}

// Density returns value per unit volume.
func (c *Cylinder) Density() float64 {
	return c.Value / c.Volume()
}

// Clone copies the physical attributes and position.
func (c *Cylinder) Clone() *Cylinder {
	cp := *c
	return &cp
}

// Fresh returns an unplaced copy carrying only id and physical attributes.
func (c *Cylinder) Fresh() *Cylinder {
	cp := NewCylinder(c.ID, c.Radius, c.Height, c.Value)
	cp.Color = c.Color
	return cp
}

// Validate checks the attributes a loader must guarantee before placement.
func (c *Cylinder) Validate() error {
	if !positive(c.Radius) || !positive(c.Height) {
		return fmt.Errorf("%w: item %d: radius and height must be finite and positive", ErrInvalidItem, c.ID)
	}
	if !(c.Value >= 0) || math.IsInf(c.Value, 1) {
		return fmt.Errorf("%w: item %d: value must be finite and non-negative", ErrInvalidItem, c.ID)
	}
	return nil
}

// Tuning adjusts how the placement search walks candidate points.
// It never changes which positions are geometrically valid.
type Tuning struct {
	// Dense selects the finer grid factors.
	Dense bool
	Order PointOrder
}

// PointOrder is the preference applied to candidate (x, y) points.
type PointOrder int

const (
	// OrderGenerated keeps points in x-major generation order.
	OrderGenerated PointOrder = iota
	// OrderNearOrigin tries points closest to (0, 0) first.
	OrderNearOrigin
	// OrderAwayFromCorner tries points farthest from (length, width) first.
	OrderAwayFromCorner
)

func (o PointOrder) String() string {
	switch o {
	case OrderNearOrigin:
		return "near-origin"
	case OrderAwayFromCorner:
		return "away-from-corner"
	default:
		return "generated"
	}
}
