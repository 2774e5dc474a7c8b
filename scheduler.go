package gravit

// FrameID identifies a requested frame callback. Zero is never issued.
type FrameID uint64

// FrameScheduler runs repaint callbacks on the host's next frame.
type FrameScheduler interface {
	// RequestFrame queues fn for the next frame and returns its id.
	RequestFrame(fn func()) FrameID
	// CancelFrame drops a queued callback. Unknown ids are ignored.
	CancelFrame(id FrameID)
}

type queuedFrame struct {
	id FrameID
	fn func()
}

// ManualScheduler queues frames until Flush is called. It drives headless
// rendering and tests; the Viewer flushes it once per ebiten frame.
type ManualScheduler struct {
	queue  []queuedFrame
	nextID FrameID
}

// NewManualScheduler creates an empty scheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// RequestFrame implements FrameScheduler.
func (s *ManualScheduler) RequestFrame(fn func()) FrameID {
	s.nextID++
	s.queue = append(s.queue, queuedFrame{id: s.nextID, fn: fn})
	return s.nextID
}

// CancelFrame implements FrameScheduler.
func (s *ManualScheduler) CancelFrame(id FrameID) {
	for i, f := range s.queue {
		if f.id == id {
			s.queue = append(s.queue[:i], s.queue[i+1:]...)
			return
		}
	}
}

// Pending returns the number of queued callbacks.
func (s *ManualScheduler) Pending() int {
	return len(s.queue)
}

// Flush runs every callback queued before the call. Callbacks requested while
// flushing run on the next Flush. It returns the number of callbacks run.
func (s *ManualScheduler) Flush() int {
	frames := s.queue
	s.queue = nil
	for _, f := range frames {
		f.fn()
	}
	return len(frames)
}
