package capture

import "sync/atomic"

// Slot holds the most recently published frame.
// Publish and Load are a single atomic pointer swap: a reader sees either the
// previous frame or the new one, never a partial write.
type Slot struct {
	current atomic.Pointer[Frame]
	seq     atomic.Uint64
}

// Publish makes f the current frame and stamps its sequence number.
// f must not be modified afterwards.
func (s *Slot) Publish(f *Frame) {
	f.Seq = s.seq.Add(1)
	s.current.Store(f)
}

// Load returns the current frame, or nil if nothing was published yet.
func (s *Slot) Load() *Frame {
	return s.current.Load()
}
