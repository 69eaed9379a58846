package renderer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/integrator"
)

// RenderConfig controls how the image is split up and scheduled
type RenderConfig struct {
	TileSize   int   // Size of each square tile in pixels
	NumWorkers int   // Number of parallel workers (0 = use CPU count)
	Seed       int64 // Base seed; tile n uses Seed+n
}

// DefaultRenderConfig returns sensible default values
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		TileSize:   32,
		NumWorkers: 0,
		Seed:       42,
	}
}

// Raytracer handles the rendering process
type Raytracer struct {
	world      geometry.Shape
	camera     *Camera
	integrator integrator.Integrator
	config     RenderConfig
	logger     core.Logger
}

// NewRaytracer creates a new raytracer using path tracing bounded by the camera's MaxDepth
func NewRaytracer(world geometry.Shape, camera *Camera, config RenderConfig, logger core.Logger) *Raytracer {
	if config.TileSize <= 0 {
		config.TileSize = DefaultRenderConfig().TileSize
	}
	if logger == nil {
		logger = NopLogger{}
	}
	return &Raytracer{
		world:      world,
		camera:     camera,
		integrator: integrator.NewPathTracingIntegrator(camera.Config().MaxDepth),
		config:     config,
		logger:     logger,
	}
}

// SetIntegrator replaces the light transport algorithm
func (rt *Raytracer) SetIntegrator(integratorInst integrator.Integrator) {
	rt.integrator = integratorInst
}

// Camera returns the camera the raytracer renders through
func (rt *Raytracer) Camera() *Camera {
	return rt.camera
}

// Render traces the whole image. The scene and camera are only read, and each tile writes
// its own pixels, so tiles run in parallel without locking.
func (rt *Raytracer) Render(ctx context.Context) (*Raster, RenderStats, error) {
	width, height := rt.camera.ImageWidth(), rt.camera.ImageHeight()
	raster := NewRaster(width, height)
	tiles := NewTileGrid(width, height, rt.config.TileSize, rt.config.Seed)
	tileRenderer := NewTileRenderer(rt.camera, rt.world, rt.integrator)
	pool := NewWorkerPool(rt.config.NumWorkers)

	rt.logger.Printf("Rendering %dx%d, %d samples per pixel, max depth %d, %d tiles on %d workers\n",
		width, height, rt.camera.Config().SamplesPerPixel, rt.camera.Config().MaxDepth,
		len(tiles), pool.GetNumWorkers())

	progress := newProgressReporter(rt.logger, len(tiles))
	startTime := time.Now()

	results, err := pool.Run(ctx, tiles, func(ctx context.Context, tile *Tile) (TileResult, error) {
		result, err := tileRenderer.RenderTile(ctx, tile, raster)
		if err == nil {
			progress.tileDone()
		}
		return result, err
	})
	if err != nil {
		return nil, RenderStats{}, fmt.Errorf("rendering tiles: %w", err)
	}

	stats := RenderStats{
		TotalTiles: len(tiles),
		Workers:    pool.GetNumWorkers(),
		Elapsed:    time.Since(startTime),
	}
	for _, result := range results {
		stats.add(result)
	}

	rt.logger.Printf("Render completed in %v (%.1f samples/pixel)\n", stats.Elapsed, stats.AverageSamples())
	return raster, stats, nil
}

// progressReporter logs tile completion in 10% steps
type progressReporter struct {
	mu         sync.Mutex
	logger     core.Logger
	total      int
	done       int
	lastDecile int
}

func newProgressReporter(logger core.Logger, total int) *progressReporter {
	return &progressReporter{logger: logger, total: total}
}

func (p *progressReporter) tileDone() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done++
	decile := p.done * 10 / p.total
	if decile > p.lastDecile {
		p.lastDecile = decile
		p.logger.Printf("Tiles remaining: %d\n", p.total-p.done)
	}
}
