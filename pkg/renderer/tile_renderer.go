package renderer

import (
	"context"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/integrator"
)

// TileRenderer handles the actual rendering of individual tiles using an integrator
type TileRenderer struct {
	camera     *Camera
	world      geometry.Shape
	integrator integrator.Integrator
}

// NewTileRenderer creates a new tile renderer
func NewTileRenderer(camera *Camera, world geometry.Shape, integratorInst integrator.Integrator) *TileRenderer {
	return &TileRenderer{
		camera:     camera,
		world:      world,
		integrator: integratorInst,
	}
}

// RenderTile renders every pixel of tile into raster. Tiles never overlap, so concurrent
// calls for different tiles may share a raster.
func (tr *TileRenderer) RenderTile(ctx context.Context, tile *Tile, raster *Raster) (TileResult, error) {
	bounds := tile.Bounds
	result := TileResult{TileID: tile.ID}

	for j := bounds.Min.Y; j < bounds.Max.Y; j++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		for i := bounds.Min.X; i < bounds.Max.X; i++ {
			raster.SetColor(i, j, tr.SamplePixel(i, j, tile.Sampler))
			result.Pixels++
			result.Samples += tr.camera.Config().SamplesPerPixel
		}
	}

	return result, nil
}

// SamplePixel averages SamplesPerPixel jittered camera rays through pixel (i, j)
func (tr *TileRenderer) SamplePixel(i, j int, sampler core.Sampler) core.Color {
	colorAccum := core.Vec3{X: 0, Y: 0, Z: 0}

	for sample := 0; sample < tr.camera.Config().SamplesPerPixel; sample++ {
		ray := tr.camera.GetRay(i, j, sampler)
		colorAccum = colorAccum.Add(tr.integrator.RayColor(ray, tr.world, sampler))
	}

	return colorAccum.Multiply(tr.camera.PixelSampleScale())
}
