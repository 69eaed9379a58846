package integrator

import (
	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
)

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// RayColor computes the incoming radiance along ray.
	// sampler must not be shared between goroutines.
	RayColor(ray core.Ray, world geometry.Shape, sampler core.Sampler) core.Color
}
