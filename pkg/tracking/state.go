package tracking

import (
	"fmt"
	"image"
)

// Mode is the acquisition state.
type Mode int

const (
	// Searching scans the whole frame for candidate regions.
	Searching Mode = iota
	// Tracking re-checks only the patch around the last hit.
	Tracking
)

func (m Mode) String() string {
	switch m {
	case Searching:
		return "searching"
	case Tracking:
		return "tracking"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// MarshalText renders the mode by name for the dashboard.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// State is the tracker's acquisition state.
type State struct {
	Mode          Mode        `json:"mode"`
	LastCenter    image.Point `json:"last_center"`
	HasLastCenter bool        `json:"has_last_center"`
	LostFrames    int         `json:"lost_frames"`
}

// UnmarshalText parses a mode name.
func (m *Mode) UnmarshalText(b []byte) error {
	switch string(b) {
	case "searching":
		*m = Searching
	case "tracking":
		*m = Tracking
	default:
		return fmt.Errorf("unknown tracking mode %q", b)
	}
	return nil
}
