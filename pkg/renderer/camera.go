package renderer

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// ErrInvalidConfig is wrapped by every camera configuration validation failure
var ErrInvalidConfig = errors.New("invalid camera configuration")

// CameraConfig contains all parameters needed to set up a camera and its sampling
type CameraConfig struct {
	AspectRatio     float64   // Ideal width / height
	ImageWidth      int       // Rendered image width in pixels
	SamplesPerPixel int       // Number of rays per pixel
	MaxDepth        int       // Maximum ray bounce depth
	VFov            float64   // Vertical field of view in degrees
	LookFrom        core.Vec3 // Camera position
	LookAt          core.Vec3 // Point the camera is looking at
	VUp             core.Vec3 // Up direction
	DefocusAngle    float64   // Cone angle in degrees of rays through each pixel (0 = pinhole)
	FocusDistance   float64   // Distance from the camera to the plane of perfect focus
}

// DefaultCameraConfig returns sensible default values
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		AspectRatio:     1.0,
		ImageWidth:      100,
		SamplesPerPixel: 10,
		MaxDepth:        10,
		VFov:            90,
		LookFrom:        core.NewVec3(0, 0, 0),
		LookAt:          core.NewVec3(0, 0, -1),
		VUp:             core.NewVec3(0, 1, 0),
		DefocusAngle:    0,
		FocusDistance:   10,
	}
}

// MergeCameraConfig returns base with every non-zero field of override applied on top
func MergeCameraConfig(base, override CameraConfig) CameraConfig {
	result := base
	if override.AspectRatio != 0 {
		result.AspectRatio = override.AspectRatio
	}
	if override.ImageWidth != 0 {
		result.ImageWidth = override.ImageWidth
	}
	if override.SamplesPerPixel != 0 {
		result.SamplesPerPixel = override.SamplesPerPixel
	}
	if override.MaxDepth != 0 {
		result.MaxDepth = override.MaxDepth
	}
	if override.VFov != 0 {
		result.VFov = override.VFov
	}
	if override.LookFrom != (core.Vec3{}) {
		result.LookFrom = override.LookFrom
	}
	if override.LookAt != (core.Vec3{}) {
		result.LookAt = override.LookAt
	}
	if override.VUp != (core.Vec3{}) {
		result.VUp = override.VUp
	}
	if override.DefocusAngle != 0 {
		result.DefocusAngle = override.DefocusAngle
	}
	if override.FocusDistance != 0 {
		result.FocusDistance = override.FocusDistance
	}
	return result
}

// Validate checks the configuration before any camera state is derived from it
func (c CameraConfig) Validate() error {
	switch {
	case c.ImageWidth < 1:
		return fmt.Errorf("%w: image width %d must be at least 1", ErrInvalidConfig, c.ImageWidth)
	case c.SamplesPerPixel < 1:
		return fmt.Errorf("%w: samples per pixel %d must be at least 1", ErrInvalidConfig, c.SamplesPerPixel)
	case c.MaxDepth < 0:
		return fmt.Errorf("%w: max depth %d must not be negative", ErrInvalidConfig, c.MaxDepth)
	case !(c.AspectRatio > 0) || math.IsInf(c.AspectRatio, 0):
		return fmt.Errorf("%w: aspect ratio %g must be positive and finite", ErrInvalidConfig, c.AspectRatio)
	case !(c.VFov > 0 && c.VFov < 180):
		return fmt.Errorf("%w: vertical field of view %g must be in (0, 180) degrees", ErrInvalidConfig, c.VFov)
	case c.DefocusAngle >= 180:
		return fmt.Errorf("%w: defocus angle %g must be below 180 degrees", ErrInvalidConfig, c.DefocusAngle)
	case !(c.FocusDistance > 0):
		return fmt.Errorf("%w: focus distance %g must be positive", ErrInvalidConfig, c.FocusDistance)
	case c.LookFrom == c.LookAt:
		return fmt.Errorf("%w: look-from and look-at are both %v", ErrInvalidConfig, c.LookFrom)
	case c.VUp.Cross(c.LookFrom.Subtract(c.LookAt)).NearZero():
		return fmt.Errorf("%w: up vector %v is parallel to the view direction", ErrInvalidConfig, c.VUp)
	}
	return nil
}

// Camera generates rays for rendering. All fields are derived once by NewCamera and read-only afterward.
type Camera struct {
	config CameraConfig

	imageHeight      int
	pixelSampleScale float64   // Color scale factor for a sum of pixel samples
	center           core.Vec3 // Camera center
	pixel00Loc       core.Vec3 // Location of pixel 0, 0
	pixelDeltaU      core.Vec3 // Offset to pixel to the right
	pixelDeltaV      core.Vec3 // Offset to pixel below
	u, v, w          core.Vec3 // Camera frame basis vectors
	defocusDiskU     core.Vec3 // Defocus disk horizontal radius
	defocusDiskV     core.Vec3 // Defocus disk vertical radius
}

// NewCamera validates config and derives the camera state
func NewCamera(config CameraConfig) (*Camera, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	c := &Camera{config: config}
	c.initialize()
	return c, nil
}

func (c *Camera) initialize() {
	c.imageHeight = max(1, int(float64(c.config.ImageWidth)/c.config.AspectRatio))
	c.pixelSampleScale = 1.0 / float64(c.config.SamplesPerPixel)
	c.center = c.config.LookFrom

	// Viewport dimensions use the actual aspect ratio after rounding the height
	theta := degreesToRadians(c.config.VFov)
	h := math.Tan(theta / 2)
	viewportHeight := 2 * h * c.config.FocusDistance
	viewportWidth := viewportHeight * (float64(c.config.ImageWidth) / float64(c.imageHeight))

	c.w = c.config.LookFrom.Subtract(c.config.LookAt).Normalize()
	c.u = c.config.VUp.Cross(c.w).Normalize()
	c.v = c.w.Cross(c.u)

	// Vectors across the horizontal and down the vertical viewport edges
	viewportU := c.u.Multiply(viewportWidth)
	viewportV := c.v.Negate().Multiply(viewportHeight)

	c.pixelDeltaU = viewportU.Divide(float64(c.config.ImageWidth))
	c.pixelDeltaV = viewportV.Divide(float64(c.imageHeight))

	viewportUpperLeft := c.center.
		Subtract(c.w.Multiply(c.config.FocusDistance)).
		Subtract(viewportU.Divide(2)).
		Subtract(viewportV.Divide(2))
	c.pixel00Loc = viewportUpperLeft.Add(c.pixelDeltaU.Add(c.pixelDeltaV).Multiply(0.5))

	defocusRadius := c.config.FocusDistance * math.Tan(degreesToRadians(c.config.DefocusAngle/2))
	c.defocusDiskU = c.u.Multiply(defocusRadius)
	c.defocusDiskV = c.v.Multiply(defocusRadius)
}

// GetRay returns a ray from the defocus disk toward a random point inside pixel (i, j)
func (c *Camera) GetRay(i, j int, sampler core.Sampler) core.Ray {
	offset := sampleSquare(sampler)
	pixelSample := c.pixel00Loc.
		Add(c.pixelDeltaU.Multiply(float64(i) + offset.X)).
		Add(c.pixelDeltaV.Multiply(float64(j) + offset.Y))

	rayOrigin := c.center
	if c.config.DefocusAngle > 0 {
		rayOrigin = c.defocusDiskSample(sampler)
	}

	return core.NewRay(rayOrigin, pixelSample.Subtract(rayOrigin))
}

// PixelCenter returns the world-space center of pixel (i, j) on the focus plane
func (c *Camera) PixelCenter(i, j int) core.Vec3 {
	return c.pixel00Loc.
		Add(c.pixelDeltaU.Multiply(float64(i))).
		Add(c.pixelDeltaV.Multiply(float64(j)))
}

// ImageWidth returns the rendered width in pixels
func (c *Camera) ImageWidth() int { return c.config.ImageWidth }

// ImageHeight returns the derived height in pixels
func (c *Camera) ImageHeight() int { return c.imageHeight }

// PixelSampleScale returns 1 / samples per pixel
func (c *Camera) PixelSampleScale() float64 { return c.pixelSampleScale }

// Center returns the camera center
func (c *Camera) Center() core.Vec3 { return c.center }

// Basis returns the camera frame: u right, v up, w backward
func (c *Camera) Basis() (u, v, w core.Vec3) { return c.u, c.v, c.w }

// Config returns the configuration the camera was built from
func (c *Camera) Config() CameraConfig { return c.config }

// defocusDiskSample returns a random point on the camera defocus disk
func (c *Camera) defocusDiskSample(sampler core.Sampler) core.Vec3 {
	p := core.RandomInUnitDisk(sampler)
	return c.center.Add(c.defocusDiskU.Multiply(p.X)).Add(c.defocusDiskV.Multiply(p.Y))
}

// sampleSquare returns a random offset in the [-0.5, 0.5] unit square
func sampleSquare(sampler core.Sampler) core.Vec2 {
	s := sampler.Get2D()
	return core.NewVec2(s.X-0.5, s.Y-0.5)
}

func degreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
