package cv

import "math"

// CollectiveVariable describes one collective variable and the fictitious
// extended particle coupled to it.
type CollectiveVariable struct {
	ID            string
	MinValue      float64
	MaxValue      float64
	Periodic      bool
	ForceConstant float64
	Mass          float64
	Temperature   float64
	Sigma         float64
}

// Range returns the declared span of the variable.
func (c *CollectiveVariable) Range() float64 { return c.MaxValue - c.MinValue }

// Wrap applies the minimal image convention, mapping a displacement into
// the symmetric interval around zero. Non-periodic variables pass through.
func (c *CollectiveVariable) Wrap(dx float64) float64 {
	if !c.Periodic {
		return dx
	}
	r := c.Range()
	return dx - r*math.Round(dx/r)
}

// Fold maps an absolute value into [MinValue, MaxValue) for periodic
// variables and passes non-periodic values through.
func (c *CollectiveVariable) Fold(x float64) float64 {
	if !c.Periodic {
		return x
	}
	r := c.Range()
	return x - r*math.Floor((x-c.MinValue)/r)
}

// RestraintForce returns the harmonic coupling force acting on the
// extended particle for a CV value and extended position s.
func (c *CollectiveVariable) RestraintForce(value, s float64) float64 {
	return c.ForceConstant * c.Wrap(value-s)
}

// RestraintEnergy returns the harmonic coupling energy for a CV value
// and extended position s.
func (c *CollectiveVariable) RestraintEnergy(value, s float64) float64 {
	dx := c.Wrap(value - s)
	return 0.5 * c.ForceConstant * dx * dx
}
