package integrator

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
)

// MockMaterial implements material.Material for testing
type MockMaterial struct {
	scatterFn func(rayIn core.Ray, hit material.HitRecord, sampler core.Sampler) (material.ScatterResult, bool)
}

func (m MockMaterial) Scatter(rayIn core.Ray, hit material.HitRecord, sampler core.Sampler) (material.ScatterResult, bool) {
	return m.scatterFn(rayIn, hit, sampler)
}

// MockShape implements geometry.Shape for testing
type MockShape struct {
	hitFn func(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool)
}

func (m MockShape) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	return m.hitFn(ray, tMin, tMax)
}

// downwardFloor hits every ray travelling downward at t=1 with the given material
func downwardFloor(mat material.Material) MockShape {
	return MockShape{hitFn: func(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
		if ray.Direction.Y >= 0 {
			return nil, false
		}
		hit := &material.HitRecord{T: 1, Point: ray.At(1), Material: mat}
		hit.SetFaceNormal(ray, core.NewVec3(0, 1, 0))
		return hit, true
	}}
}

// createTestWorld creates a simple world with a lambertian sphere on a large ground sphere
func createTestWorld() *geometry.ShapeList {
	lambertian := material.NewLambertian(core.NewVec3(0.7, 0.3, 0.3))
	return geometry.NewShapeList(
		geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, lambertian),
		geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100, lambertian),
	)
}

func TestPathTracingDepthZeroIsBlack(t *testing.T) {
	world := createTestWorld()
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(42)))
	integrator := NewPathTracingIntegrator(0)

	rays := []core.Ray{
		core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1)), // hits sphere
		core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0)),  // escapes
	}

	for _, ray := range rays {
		if color := integrator.RayColor(ray, world, sampler); color != (core.Vec3{}) {
			t.Errorf("Expected black color for depth 0, got %v", color)
		}
	}

	// Depth 0 never touches the world
	untouchable := MockShape{hitFn: func(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
		t.Fatal("world should not be queried at depth 0")
		return nil, false
	}}
	integrator.RayColor(rays[0], untouchable, sampler)
}

func TestPathTracingMissReturnsBackground(t *testing.T) {
	integrator := NewPathTracingIntegrator(5)
	empty := geometry.NewShapeList()
	sampler := core.NewSeededSampler(1)

	directions := []core.Vec3{
		core.NewVec3(0, 1, 0),
		core.NewVec3(0, -1, 0),
		core.NewVec3(1, 0, 0),
		core.NewVec3(0.3, 0.4, -2),
		core.NewVec3(-5, -1, 0.5),
	}

	for _, dir := range directions {
		ray := core.NewRay(core.NewVec3(0, 0, 0), dir)
		got := integrator.RayColor(ray, empty, sampler)

		a := 0.5 * (dir.Normalize().Y + 1)
		expected := core.NewVec3(1, 1, 1).Multiply(1 - a).Add(core.NewVec3(0.5, 0.7, 1.0).Multiply(a))
		if got != expected {
			t.Errorf("Direction %v: expected background %v, got %v", dir, expected, got)
		}
	}
}

func TestPathTracingAbsorptionIsBlack(t *testing.T) {
	absorber := MockMaterial{scatterFn: func(rayIn core.Ray, hit material.HitRecord, sampler core.Sampler) (material.ScatterResult, bool) {
		return material.ScatterResult{}, false
	}}
	integrator := NewPathTracingIntegrator(10)

	ray := core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0))
	color := integrator.RayColor(ray, downwardFloor(absorber), core.NewSeededSampler(1))
	if color != (core.Vec3{}) {
		t.Errorf("Expected black for absorbed ray, got %v", color)
	}
}

func TestPathTracingAttenuationMultipliesRecursiveColor(t *testing.T) {
	attenuation := core.NewVec3(0.5, 0.25, 1.0)
	mirrorUp := MockMaterial{scatterFn: func(rayIn core.Ray, hit material.HitRecord, sampler core.Sampler) (material.ScatterResult, bool) {
		return material.ScatterResult{
			Scattered:   core.NewRay(hit.Point, core.NewVec3(0, 1, 0)),
			Attenuation: attenuation,
		}, true
	}}
	world := downwardFloor(mirrorUp)
	ray := core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0))

	// Two levels: one bounce, then the escaping ray picks up the top of the gradient
	color := NewPathTracingIntegrator(2).RayColor(ray, world, core.NewSeededSampler(1))
	expected := attenuation.MultiplyVec(core.NewVec3(0.5, 0.7, 1.0))
	if color.Subtract(expected).Length() > 1e-12 {
		t.Errorf("Expected %v, got %v", expected, color)
	}

	// One level: the bounce runs out of depth
	color = NewPathTracingIntegrator(1).RayColor(ray, world, core.NewSeededSampler(1))
	if color != (core.Vec3{}) {
		t.Errorf("Expected black once depth is exhausted, got %v", color)
	}
}

func TestPathTracingQueriesWithAcneEpsilon(t *testing.T) {
	var gotMin, gotMax float64
	world := MockShape{hitFn: func(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
		gotMin, gotMax = tMin, tMax
		return nil, false
	}}

	NewPathTracingIntegrator(3).RayColor(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1)), world, core.NewSeededSampler(1))

	if gotMin != ShadowAcneEpsilon {
		t.Errorf("Expected tMin %f, got %f", ShadowAcneEpsilon, gotMin)
	}
	if !math.IsInf(gotMax, 1) {
		t.Errorf("Expected unbounded tMax, got %f", gotMax)
	}
}

func TestPathTracingLambertianEnergyBounded(t *testing.T) {
	world := createTestWorld()
	sampler := core.NewSeededSampler(42)
	integrator := NewPathTracingIntegrator(10)

	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))
	for i := 0; i < 200; i++ {
		color := integrator.RayColor(ray, world, sampler)
		// A sample can never exceed the albedo times the brightest background value
		if color.X > 0.7+1e-9 || color.Y > 0.3+1e-9 || color.Z > 0.3+1e-9 {
			t.Fatalf("Sample %v exceeds albedo bound", color)
		}
		if color.X < 0 || color.Y < 0 || color.Z < 0 {
			t.Fatalf("Sample %v has negative radiance", color)
		}
	}
}

func TestPathTracingSetBackground(t *testing.T) {
	integrator := NewPathTracingIntegrator(1)
	integrator.SetBackground(Background{Top: core.NewVec3(1, 0, 0), Bottom: core.NewVec3(0, 0, 1)})

	color := integrator.RayColor(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0)), geometry.NewShapeList(), core.NewSeededSampler(1))
	if color != core.NewVec3(1, 0, 0) {
		t.Errorf("Expected top color, got %v", color)
	}
	if integrator.MaxDepth() != 1 {
		t.Errorf("Expected max depth 1, got %d", integrator.MaxDepth())
	}
}
