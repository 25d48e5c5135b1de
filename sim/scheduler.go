package sim

// Event is a callback scheduled at a virtual time
type Event struct {
	WakeTime uint64
	Handler  func(*Event) uint8
	Next     *Event
}

// Handler results
const (
	SF_DONE       = 0
	SF_RESCHEDULE = 1
)

// Scheduler keeps events sorted by WakeTime. Events due at the same time
// run in the order they were scheduled.
type Scheduler struct {
	head *Event
}

// Schedule adds an event
func (s *Scheduler) Schedule(e *Event) {
	if s.head == nil || e.WakeTime < s.head.WakeTime {
		e.Next = s.head
		s.head = e
		return
	}

	current := s.head
	for current.Next != nil && current.Next.WakeTime <= e.WakeTime {
		current = current.Next
	}

	e.Next = current.Next
	current.Next = e
}

// Cancel removes a pending event. It reports whether the event was found.
func (s *Scheduler) Cancel(e *Event) bool {
	prev := &s.head
	for cur := s.head; cur != nil; cur = cur.Next {
		if cur == e {
			*prev = cur.Next
			cur.Next = nil
			return true
		}
		prev = &cur.Next
	}
	return false
}

// NextWake returns the time of the earliest pending event
func (s *Scheduler) NextWake() (uint64, bool) {
	if s.head == nil {
		return 0, false
	}
	return s.head.WakeTime, true
}

// Pending returns the number of scheduled events
func (s *Scheduler) Pending() int {
	n := 0
	for cur := s.head; cur != nil; cur = cur.Next {
		n++
	}
	return n
}

// Dispatch runs every event due at or before now
func (s *Scheduler) Dispatch(now uint64) {
	for s.head != nil && s.head.WakeTime <= now {
		e := s.head
		s.head = e.Next
		e.Next = nil

		if e.Handler(e) == SF_RESCHEDULE {
			s.Schedule(e)
		}
	}
}
