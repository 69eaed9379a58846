package renderer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/integrator"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
)

// MockIntegrator returns a fixed color and counts the rays it is asked to trace
type MockIntegrator struct {
	color core.Color
	calls atomic.Int64
}

func (m *MockIntegrator) RayColor(ray core.Ray, world geometry.Shape, sampler core.Sampler) core.Color {
	m.calls.Add(1)
	return m.color
}

// bufferLogger collects log output
type bufferLogger struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *bufferLogger) Printf(format string, args ...interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fmt.Fprintf(&b.buf, format, args...)
}

func (b *bufferLogger) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// twoSphereWorld is a diffuse sphere resting on a large diffuse ground sphere
func twoSphereWorld() *geometry.ShapeList {
	gray := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	return geometry.NewShapeList(
		geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, gray),
		geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100, gray),
	)
}

// mixedWorld exercises every material
func mixedWorld() *geometry.ShapeList {
	return geometry.NewShapeList(
		geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100, material.NewLambertian(core.NewVec3(0.8, 0.8, 0))),
		geometry.NewSphere(core.NewVec3(0, 0, -1.2), 0.5, material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5))),
		geometry.NewSphere(core.NewVec3(-1, 0, -1), 0.5, material.NewDielectric(1.5)),
		geometry.NewSphere(core.NewVec3(1, 0, -1), 0.5, material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.3)),
	)
}

func smallCameraConfig() CameraConfig {
	config := DefaultCameraConfig()
	config.AspectRatio = 16.0 / 9.0
	config.ImageWidth = 48
	config.SamplesPerPixel = 4
	config.MaxDepth = 5
	return config
}

func render(t *testing.T, world geometry.Shape, cameraConfig CameraConfig, renderConfig RenderConfig) (*Raster, RenderStats) {
	t.Helper()
	raytracer := NewRaytracer(world, mustCamera(t, cameraConfig), renderConfig, nil)
	raster, stats, err := raytracer.Render(context.Background())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	return raster, stats
}

func byteNear(a, b uint8, tolerance int) bool {
	d := int(a) - int(b)
	return d >= -tolerance && d <= tolerance
}

func TestRaytracer_TwoSphereScene(t *testing.T) {
	cameraConfig := DefaultCameraConfig()
	cameraConfig.AspectRatio = 16.0 / 9.0
	cameraConfig.ImageWidth = 400
	cameraConfig.SamplesPerPixel = 1
	cameraConfig.MaxDepth = 1

	raytracer := NewRaytracer(twoSphereWorld(), mustCamera(t, cameraConfig), DefaultRenderConfig(), nil)
	raster, stats, err := raytracer.Render(context.Background())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if raster.Width != 400 || raster.Height != 225 {
		t.Fatalf("Expected 400x225, got %dx%d", raster.Width, raster.Height)
	}
	if len(raster.Pix) != 400*225*3 {
		t.Fatalf("Expected %d bytes, got %d", 400*225*3, len(raster.Pix))
	}
	if stats.TotalPixels != 400*225 || stats.TotalSamples != 400*225 {
		t.Errorf("Unexpected stats %+v", stats)
	}

	camera := raytracer.Camera()
	background := integrator.DefaultBackground()
	backgroundAt := func(i, j int) (uint8, uint8, uint8) {
		ray := core.NewRay(camera.Center(), camera.PixelCenter(i, j).Subtract(camera.Center()))
		return ColorToRGB(background.Evaluate(ray))
	}

	// Top row looks over the sphere into the sky
	r, g, b := raster.At(200, 0)
	er, eg, eb := backgroundAt(200, 0)
	if !byteNear(r, er, 1) || !byteNear(g, eg, 1) || !byteNear(b, eb, 1) {
		t.Errorf("Top pixel (%d,%d,%d), expected background (%d,%d,%d)", r, g, b, er, eg, eb)
	}

	// With one bounce allowed, a hit cannot gather any light
	r, g, b = raster.At(200, 112)
	if r != 0 || g != 0 || b != 0 {
		t.Errorf("Center pixel (%d,%d,%d), expected black", r, g, b)
	}
	if er, eg, eb := backgroundAt(200, 112); r == er && g == eg && b == eb {
		t.Error("Center pixel should not show the background")
	}
}

func TestRaytracer_TwoBouncesShadeSphere(t *testing.T) {
	cameraConfig := DefaultCameraConfig()
	cameraConfig.AspectRatio = 16.0 / 9.0
	cameraConfig.ImageWidth = 400
	cameraConfig.SamplesPerPixel = 1
	cameraConfig.MaxDepth = 2

	raster, _ := render(t, twoSphereWorld(), cameraConfig, DefaultRenderConfig())

	// The top of the sphere faces the sky, so one bounce usually escapes. Across a block of pixels
	// some samples must come back lit, and none can exceed half the brightest sky.
	lit := 0
	for j := 60; j < 80; j++ {
		for i := 190; i < 210; i++ {
			r, g, b := raster.At(i, j)
			if r > 0 || g > 0 || b > 0 {
				lit++
			}
			if r > 128 || g > 128 || b > 128 {
				t.Fatalf("Pixel (%d,%d) = (%d,%d,%d) brighter than albedo allows", i, j, r, g, b)
			}
		}
	}
	if lit == 0 {
		t.Error("Expected sky light to reach the upper sphere after one bounce")
	}
}

func TestRaytracer_DeterministicAcrossWorkerCounts(t *testing.T) {
	cameraConfig := smallCameraConfig()

	single, _ := render(t, mixedWorld(), cameraConfig, RenderConfig{TileSize: 8, NumWorkers: 1, Seed: 7})
	parallel, _ := render(t, mixedWorld(), cameraConfig, RenderConfig{TileSize: 8, NumWorkers: 8, Seed: 7})

	if !bytes.Equal(single.Pix, parallel.Pix) {
		t.Error("Expected identical output regardless of worker count")
	}
}

func TestRaytracer_SeedChangesNoise(t *testing.T) {
	cameraConfig := smallCameraConfig()

	a, _ := render(t, mixedWorld(), cameraConfig, RenderConfig{TileSize: 16, NumWorkers: 2, Seed: 1})
	b, _ := render(t, mixedWorld(), cameraConfig, RenderConfig{TileSize: 16, NumWorkers: 2, Seed: 2})

	if bytes.Equal(a.Pix, b.Pix) {
		t.Error("Expected different seeds to give different noise")
	}
}

func TestRaytracer_AveragesSamples(t *testing.T) {
	cameraConfig := smallCameraConfig()
	camera := mustCamera(t, cameraConfig)

	mock := &MockIntegrator{color: core.NewVec3(0.25, 0.5, 0.75)}
	raytracer := NewRaytracer(twoSphereWorld(), camera, RenderConfig{TileSize: 10, NumWorkers: 3}, nil)
	raytracer.SetIntegrator(mock)

	raster, stats, err := raytracer.Render(context.Background())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	pixels := camera.ImageWidth() * camera.ImageHeight()
	if got := mock.calls.Load(); got != int64(pixels*cameraConfig.SamplesPerPixel) {
		t.Errorf("Expected %d rays, got %d", pixels*cameraConfig.SamplesPerPixel, got)
	}
	if stats.TotalPixels != pixels || stats.AverageSamples() != float64(cameraConfig.SamplesPerPixel) {
		t.Errorf("Unexpected stats %+v", stats)
	}
	if stats.TotalTiles != 5*3 || stats.Workers != 3 {
		t.Errorf("Expected 15 tiles on 3 workers, got %d on %d", stats.TotalTiles, stats.Workers)
	}

	// Four identical samples average back to the same color
	for y := 0; y < raster.Height; y++ {
		for x := 0; x < raster.Width; x++ {
			if r, g, b := raster.At(x, y); r != 64 || g != 128 || b != 192 {
				t.Fatalf("Pixel (%d,%d) = (%d,%d,%d), expected (64,128,192)", x, y, r, g, b)
			}
		}
	}
}

func TestRaytracer_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	raytracer := NewRaytracer(mixedWorld(), mustCamera(t, smallCameraConfig()), DefaultRenderConfig(), nil)
	raster, _, err := raytracer.Render(ctx)

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if raster != nil {
		t.Error("Expected no raster from a cancelled render")
	}
}

func TestRaytracer_EmptyWorldIsBackground(t *testing.T) {
	cameraConfig := smallCameraConfig()
	raytracer := NewRaytracer(geometry.NewShapeList(), mustCamera(t, cameraConfig), DefaultRenderConfig(), nil)

	raster, _, err := raytracer.Render(context.Background())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	// Blue never drops below the gradient's 1.0 floor
	for y := 0; y < raster.Height; y++ {
		for x := 0; x < raster.Width; x++ {
			if _, _, b := raster.At(x, y); b != 255 {
				t.Fatalf("Pixel (%d,%d) blue = %d, expected 255", x, y, b)
			}
		}
	}
}

func TestRaytracer_LogsProgress(t *testing.T) {
	logger := &bufferLogger{}
	raytracer := NewRaytracer(mixedWorld(), mustCamera(t, smallCameraConfig()), RenderConfig{TileSize: 4, NumWorkers: 2}, logger)

	if _, _, err := raytracer.Render(context.Background()); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	output := logger.String()
	for _, want := range []string{"Rendering 48x27", "Tiles remaining: 0", "Render completed"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected log to contain %q, got:\n%s", want, output)
		}
	}
}

func TestNewRaytracerDefaultsTileSize(t *testing.T) {
	raytracer := NewRaytracer(twoSphereWorld(), mustCamera(t, smallCameraConfig()), RenderConfig{}, nil)
	if raytracer.config.TileSize != DefaultRenderConfig().TileSize {
		t.Errorf("Expected default tile size, got %d", raytracer.config.TileSize)
	}
}
