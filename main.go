package main

import (
	"context"
	"flag"
	"fmt"
	"image/png"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

// Config holds the command line settings
type Config struct {
	SceneType  string
	Width      int
	Samples    int
	MaxDepth   int
	NumWorkers int
	Seed       int64
	OutputDir  string
	Help       bool
}

func main() {
	config := parseFlags()

	if config.Help {
		showHelp()
		return
	}

	if err := run(config); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() Config {
	config := Config{}
	flag.StringVar(&config.SceneType, "scene", "default", "Scene type (see -help)")
	flag.IntVar(&config.Width, "width", 0, "Image width in pixels (0 = scene default)")
	flag.IntVar(&config.Samples, "samples", 0, "Samples per pixel (0 = scene default)")
	flag.IntVar(&config.MaxDepth, "depth", 0, "Maximum bounce depth (0 = scene default)")
	flag.IntVar(&config.NumWorkers, "workers", 0, "Number of parallel workers (0 = CPU count)")
	flag.Int64Var(&config.Seed, "seed", renderer.DefaultRenderConfig().Seed, "Random seed")
	flag.StringVar(&config.OutputDir, "output", "output", "Root directory for rendered images")
	flag.BoolVar(&config.Help, "help", false, "Show help information")
	flag.Parse()
	return config
}

func showHelp() {
	fmt.Println("Sphere Path Tracer")
	fmt.Println("Usage: raytracer [options]")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Available scenes:")
	for _, info := range scene.ListScenes() {
		fmt.Printf("  %-15s - %s\n", info.ID, info.Description)
	}
	fmt.Println()
	fmt.Println("Output will be saved to <output>/<scene>/render_<timestamp>.png")
}

func run(config Config) error {
	logger := renderer.NewDefaultLogger()

	selectedScene, err := createScene(config)
	if err != nil {
		return err
	}
	camera, err := selectedScene.NewCamera()
	if err != nil {
		return err
	}

	outputDir, err := createOutputDir(config.OutputDir, selectedScene.Name)
	if err != nil {
		return err
	}

	// Stop rendering cleanly on Ctrl+C
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Printf("Using %s scene (%d spheres)...\n", selectedScene.Name, selectedScene.GetPrimitiveCount())
	raytracer := renderer.NewRaytracer(selectedScene.World, camera, renderer.RenderConfig{
		TileSize:   renderer.DefaultRenderConfig().TileSize,
		NumWorkers: config.NumWorkers,
		Seed:       config.Seed,
	}, logger)

	raster, stats, err := raytracer.Render(ctx)
	if err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	logger.Printf("Traced %d camera rays over %d pixels on %d workers\n",
		stats.TotalSamples, stats.TotalPixels, stats.Workers)

	filename, err := savePNG(raster, outputDir)
	if err != nil {
		return err
	}
	logger.Printf("Render saved as %s\n", filename)
	return nil
}

// createScene builds the requested scene with any command line overrides applied
func createScene(config Config) (*scene.Scene, error) {
	return scene.NewScene(config.SceneType, renderer.CameraConfig{
		ImageWidth:      config.Width,
		SamplesPerPixel: config.Samples,
		MaxDepth:        config.MaxDepth,
	})
}

// createOutputDir creates and returns <root>/<sceneName>
func createOutputDir(root, sceneName string) (string, error) {
	outputDir := filepath.Join(root, sceneName)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	return outputDir, nil
}

// savePNG writes the raster to a timestamped file in outputDir
func savePNG(raster *renderer.Raster, outputDir string) (string, error) {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(outputDir, fmt.Sprintf("render_%s.png", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, raster.ToImage()); err != nil {
		return "", fmt.Errorf("saving PNG: %w", err)
	}
	return filename, nil
}
