package scene

import (
	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
)

// NewDefaultScene creates the three-sphere showcase: diffuse, hollow glass and brushed metal on a diffuse ground
func NewDefaultScene(cameraOverrides ...renderer.CameraConfig) *Scene {
	defaultCameraConfig := renderer.DefaultCameraConfig()
	defaultCameraConfig.AspectRatio = 16.0 / 9.0
	defaultCameraConfig.ImageWidth = 400
	defaultCameraConfig.SamplesPerPixel = 100
	defaultCameraConfig.MaxDepth = 50

	// Create materials
	materialGround := material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0))
	materialCenter := material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5))
	materialLeft := material.NewDielectric(1.5)
	materialBubble := material.NewDielectric(1.0 / 1.5) // Air pocket inside the glass
	materialRight := material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 1.0)

	world := geometry.NewShapeList(
		geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100, materialGround),
		geometry.NewSphere(core.NewVec3(0, 0, -1.2), 0.5, materialCenter),
		geometry.NewSphere(core.NewVec3(-1, 0, -1), 0.5, materialLeft),
		geometry.NewSphere(core.NewVec3(-1, 0, -1), 0.4, materialBubble),
		geometry.NewSphere(core.NewVec3(1, 0, -1), 0.5, materialRight),
	)

	return &Scene{
		Name:         "default",
		World:        world,
		CameraConfig: cameraConfig(defaultCameraConfig, cameraOverrides),
	}
}

// NewSimpleScene creates a gray sphere resting on a gray ground sphere
func NewSimpleScene(cameraOverrides ...renderer.CameraConfig) *Scene {
	defaultCameraConfig := renderer.DefaultCameraConfig()
	defaultCameraConfig.AspectRatio = 16.0 / 9.0
	defaultCameraConfig.ImageWidth = 400
	defaultCameraConfig.SamplesPerPixel = 10
	defaultCameraConfig.MaxDepth = 10

	gray := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))

	world := geometry.NewShapeList(
		geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, gray),
		geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100, gray),
	)

	return &Scene{
		Name:         "simple",
		World:        world,
		CameraConfig: cameraConfig(defaultCameraConfig, cameraOverrides),
	}
}
