package integrator

import "github.com/df07/go-sphere-pathtracer/pkg/core"

// Background is a vertical gradient returned for rays that escape the scene
type Background struct {
	Top    core.Color // Color seen looking straight up
	Bottom core.Color // Color seen looking straight down
}

// DefaultBackground returns the white to sky-blue gradient
func DefaultBackground() Background {
	return Background{
		Top:    core.NewVec3(0.5, 0.7, 1.0),
		Bottom: core.NewVec3(1.0, 1.0, 1.0),
	}
}

// Evaluate returns the gradient color based on ray direction
func (b Background) Evaluate(r core.Ray) core.Color {
	// Normalize the ray direction to get consistent results
	unitDirection := r.Direction.Normalize()

	// Use the y-component to create a gradient (map from -1,1 to 0,1)
	a := 0.5 * (unitDirection.Y + 1.0)

	// Linear interpolation: (1-a)*bottom + a*top
	return b.Bottom.Multiply(1.0 - a).Add(b.Top.Multiply(a))
}
