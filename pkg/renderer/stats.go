package renderer

import "time"

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	TotalPixels  int           // Total number of pixels rendered
	TotalSamples int           // Total number of camera rays traced
	TotalTiles   int           // Number of tiles the image was split into
	Workers      int           // Number of tiles rendered concurrently
	Elapsed      time.Duration // Wall-clock render time
}

// AverageSamples returns camera rays per pixel
func (s RenderStats) AverageSamples() float64 {
	if s.TotalPixels == 0 {
		return 0
	}
	return float64(s.TotalSamples) / float64(s.TotalPixels)
}

// add folds the counters of a finished tile into s
func (s *RenderStats) add(tile TileResult) {
	s.TotalPixels += tile.Pixels
	s.TotalSamples += tile.Samples
}
