package tracking

import (
	"fmt"
	"time"

	"github.com/teslashibe/go-circletrack/pkg/ratelimit"
)

// Config holds all tunable parameters for region tracking
type Config struct {
	// Patches
	PatchSize    int `yaml:"patch_size" json:"patch_size"`         // Side of the square patch around a candidate
	MinPatchSize int `yaml:"min_patch_size" json:"min_patch_size"` // Clamped patches smaller than this are skipped

	// Candidates
	MinBlobArea int `yaml:"min_blob_area" json:"min_blob_area"` // Smaller target-colored regions are treated as noise

	// Loss tolerance
	MaxLostFrames int `yaml:"max_lost_frames" json:"max_lost_frames"` // Misses before falling back to a full search

	// Timing
	FPS        float64       `yaml:"fps" json:"fps"` // Processing rate cap
	RateWindow time.Duration `yaml:"rate_window" json:"rate_window"`
}

// DefaultConfig returns the reference tracking configuration
func DefaultConfig() Config {
	return Config{
		PatchSize:     30,
		MinPatchSize:  5,
		MinBlobArea:   2,
		MaxLostFrames: 5,
		FPS:           150,
		RateWindow:    ratelimit.DefaultWindow,
	}
}

// Validate checks the configuration is usable
func (c Config) Validate() error {
	if c.PatchSize < 1 {
		return fmt.Errorf("patch_size must be positive, got %d", c.PatchSize)
	}
	if c.MinPatchSize < 1 || c.MinPatchSize > c.PatchSize {
		return fmt.Errorf("min_patch_size must be between 1 and patch_size (%d), got %d", c.PatchSize, c.MinPatchSize)
	}
	if c.MinBlobArea < 1 {
		return fmt.Errorf("min_blob_area must be at least 1, got %d", c.MinBlobArea)
	}
	if c.MaxLostFrames < 1 {
		return fmt.Errorf("max_lost_frames must be at least 1, got %d", c.MaxLostFrames)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %v", c.FPS)
	}
	return nil
}
