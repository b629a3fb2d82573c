package tracking

// Stats is a point-in-time view of the tracker for logs and the dashboard.
type Stats struct {
	State
	ProcessFPS   float64 `json:"process_fps"`
	Acquisitions uint64  `json:"acquisitions"`
	Losses       uint64  `json:"losses"`
}

// Stats returns the current tracker statistics.
func (t *Tracker) Stats() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return Stats{
		State:        t.state,
		ProcessFPS:   t.meter.Rate(),
		Acquisitions: t.acquisitions,
		Losses:       t.losses,
	}
}
