package tetris

import "math"

// FitsIn reports whether the cylinder lies entirely inside the container.
func FitsIn(c *Cylinder, box Container) bool {
	if c.X-c.Radius < 0 || c.X+c.Radius > box.Length {
		return false
	}
	if c.Y-c.Radius < 0 || c.Y+c.Radius > box.Width {
		return false
	}
	if c.Z < 0 || c.Z+c.Height > box.Height {
		return false
	}
	return true
}

// Overlaps reports whether the cylinder intersects any cylinder in placed.
// Vertical intervals are half-open, so one cylinder resting exactly on another does not overlap.
func Overlaps(c *Cylinder, placed []*Cylinder) bool {
	for _, p := range placed {
		if p == c {
			continue
		}
		dx := c.X - p.X
		dy := c.Y - p.Y
		if math.Sqrt(dx*dx+dy*dy) >= c.Radius+p.Radius {
			continue
		}
		if !(c.Top() <= p.Z || c.Z >= p.Top()) {
			return true
		}
	}
	return false
}
