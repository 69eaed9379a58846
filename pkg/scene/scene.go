package scene

import (
	"errors"
	"fmt"

	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
)

// ErrEmptyScene is returned by Validate for a scene without a world
var ErrEmptyScene = errors.New("scene has no world")

// Scene contains all the elements needed for rendering
type Scene struct {
	Name         string
	World        *geometry.ShapeList // Objects in the scene
	CameraConfig renderer.CameraConfig
}

// Validate checks that the scene can be rendered
func (s *Scene) Validate() error {
	if s.World == nil {
		return fmt.Errorf("scene %q: %w", s.Name, ErrEmptyScene)
	}
	if err := s.CameraConfig.Validate(); err != nil {
		return fmt.Errorf("scene %q: %w", s.Name, err)
	}
	return nil
}

// NewCamera builds the camera described by the scene's configuration
func (s *Scene) NewCamera() (*renderer.Camera, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return renderer.NewCamera(s.CameraConfig)
}

// GetPrimitiveCount returns the total number of primitive objects in the scene
func (s *Scene) GetPrimitiveCount() int {
	if s.World == nil {
		return 0
	}
	return s.World.Len()
}

// cameraConfig applies the first override, if any, on top of base
func cameraConfig(base renderer.CameraConfig, overrides []renderer.CameraConfig) renderer.CameraConfig {
	if len(overrides) > 0 {
		return renderer.MergeCameraConfig(base, overrides[0])
	}
	return base
}
