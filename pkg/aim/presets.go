package aim

import (
	"errors"
	"fmt"
)

// ErrUnknownPreset is returned for a preset name that has no ratio.
var ErrUnknownPreset = errors.New("unknown aim preset")

// Preset names for the vertical aim point, top to bottom
const (
	PresetHead  = "head"
	PresetChest = "chest"
	PresetBelly = "belly"
	PresetFeet  = "feet"
)

// Presets returns the aim ratio of every preset.
// The aim point sits at screenHeight / ratio.
func Presets() map[string]float64 {
	return map[string]float64{
		PresetHead:  2.16,
		PresetChest: 2.22,
		PresetBelly: 2.30,
		PresetFeet:  2.38,
	}
}

// PresetNames returns the list of available preset names, top to bottom.
func PresetNames() []string {
	return []string{
		PresetHead,
		PresetChest,
		PresetBelly,
		PresetFeet,
	}
}

// Ratio returns the aim ratio for a preset name.
func Ratio(name string) (float64, error) {
	if r, ok := Presets()[name]; ok {
		return r, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
}
