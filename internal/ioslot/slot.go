// Package ioslot implements the I/O slot table (C2): a fixed-size,
// address-stable array pairing each pool buffer with the bookkeeping a
// submitted-but-not-yet-reaped I/O needs. Grounded on the freeSlots/
// startTimes arrays in jolt's pkg/engine/{uring,libaio}.go, generalized
// into the stable per-slot record the spec requires.
package ioslot

// State is the lifecycle state of a slot.
type State int

const (
	// Idle slots are not submitted and free for reuse.
	Idle State = iota
	// InFlight slots have been submitted and are awaiting completion.
	InFlight
	// Completed is a transient state a slot passes through between being
	// reaped by the completion loop and either being resubmitted
	// (InFlight again) or left Idle (drain).
	Completed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case InFlight:
		return "InFlight"
	case Completed:
		return "Completed"
	default:
		return "Unknown"
	}
}

// Slot is the C2 entity. The backing Table never reallocates its slots
// slice after construction, which is what makes a Slot's address stable
// for the lifetime of the table: Go's non-moving heap means &Table.slots[i]
// never changes once allocated, satisfying the "address-stable until
// destruction" invariant without any pinning API.
type Slot struct {
	Index       int
	Offset      int64
	Size        int
	IsWrite     bool
	SubmitTicks int64
	State       State

	// Token is the opaque value handed to the platform completion
	// mechanism (io_uring user_data, or the fake backend's own
	// bookkeeping). It is always set to Index: submission APIs hand it
	// back verbatim on completion, which gives O(1) find_by_token for
	// free instead of the linear scan §4.2 allows as a fallback.
	Token uint64
}

// Table owns N slots, one per buffer in the paired pool.
type Table struct {
	slots []Slot
}

// New allocates a table of n slots, indices 0..n-1, all Idle.
func New(n int) *Table {
	t := &Table{slots: make([]Slot, n)}
	for i := range t.slots {
		t.slots[i] = Slot{Index: i, Token: uint64(i)}
	}
	return t
}

// Len returns the slot count (== QueueDepth).
func (t *Table) Len() int { return len(t.slots) }

// Slot returns a pointer to slot i. The pointer is valid for the lifetime
// of the Table.
func (t *Table) Slot(i int) *Slot { return &t.slots[i] }

// Configure mutates slot i before submission: offset/size/direction and
// the submit timestamp (in latency ticks, i.e. whatever monotonic clock
// the caller uses consistently).
func (t *Table) Configure(i int, offset int64, size int, isWrite bool, submitTicks int64) {
	s := &t.slots[i]
	s.Offset = offset
	s.Size = size
	s.IsWrite = isWrite
	s.SubmitTicks = submitTicks
}

// MarkPending flips Idle->InFlight. Must only be called by the single
// submitter (the completion thread itself, per §4.2/§5).
func (t *Table) MarkPending(i int) {
	t.slots[i].State = InFlight
}

// MarkIdle flips a slot back to Idle, e.g. after a synchronous submit
// failure or a drain-timeout abandonment.
func (t *Table) MarkIdle(i int) {
	t.slots[i].State = Idle
}

// MarkCompleted flips InFlight->Completed; callers inspect/record the
// slot's final fields, then either resubmit (MarkPending) or MarkIdle.
func (t *Table) MarkCompleted(i int) {
	t.slots[i].State = Completed
}

// FindByToken locates a slot from an opaque completion token. The
// recommended fast path (§4.2b) encodes the slot index directly in the
// token, which is exactly what Table.New does, so lookup is O(1) here
// regardless of queue depth.
func (t *Table) FindByToken(token uint64) (*Slot, bool) {
	i := int(token)
	if i < 0 || i >= len(t.slots) {
		return nil, false
	}
	return &t.slots[i], true
}

// InFlightCount scans for diagnostics/tests; not used on the hot path.
func (t *Table) InFlightCount() int {
	n := 0
	for i := range t.slots {
		if t.slots[i].State == InFlight {
			n++
		}
	}
	return n
}
