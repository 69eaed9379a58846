package scene

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
)

// ErrUnknownScene is returned by NewScene for a name that is not in the catalogue
var ErrUnknownScene = errors.New("unknown scene")

// SceneInfo describes a built-in scene
type SceneInfo struct {
	ID          string `json:"id"`          // Name accepted by NewScene
	DisplayName string `json:"displayName"` // Human readable name
	Description string `json:"description"`
}

type sceneFactory func(cameraOverrides ...renderer.CameraConfig) *Scene

type catalogueEntry struct {
	description string
	create      sceneFactory
}

var catalogue = map[string]catalogueEntry{
	"default": {
		description: "Diffuse, hollow glass and fuzzed metal spheres on a diffuse ground",
		create:      NewDefaultScene,
	},
	"simple": {
		description: "Gray diffuse sphere on a gray ground sphere",
		create:      NewSimpleScene,
	},
	"depth-of-field": {
		description: "Field of random small spheres seen through a defocused lens",
		create:      NewDepthOfFieldScene,
	},
}

// NewScene builds the named scene with optional camera overrides
func NewScene(name string, cameraOverrides ...renderer.CameraConfig) (*Scene, error) {
	entry, ok := catalogue[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownScene, name, strings.Join(Names(), ", "))
	}
	return entry.create(cameraOverrides...), nil
}

// Names returns the catalogue's scene names in sorted order
func Names() []string {
	names := make([]string, 0, len(catalogue))
	for name := range catalogue {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListScenes returns a description of every built-in scene, sorted by name
func ListScenes() []SceneInfo {
	var scenes []SceneInfo
	for _, name := range Names() {
		scenes = append(scenes, SceneInfo{
			ID:          name,
			DisplayName: titleCase(name),
			Description: catalogue[name].description,
		})
	}
	return scenes
}

// titleCase converts a scene name to title case
// e.g., "depth-of-field" -> "Depth Of Field"
func titleCase(s string) string {
	// Replace hyphens and underscores with spaces
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	// Title case each word
	words := strings.Fields(s)
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
		}
	}

	return strings.Join(words, " ")
}
