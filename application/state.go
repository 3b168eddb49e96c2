package application

import "sync"

// Snapshot is a copy of the session state handed to the presentation layer.
type Snapshot struct {
	// Status is the last server-confirmed device state. Only meaningful
	// when HasStatus is true.
	Status    DeviceStatus
	HasStatus bool
	// DisplayedBrightness may run ahead of Status.Brightness while an
	// optimistic update is in flight. Zero means nothing to display.
	DisplayedBrightness int
	// LastError is the most recent user-facing failure message, empty
	// after any applied success.
	LastError string
	Fetching  bool
	Busy      bool
}

// StatusCache holds the per-session device state shared by the status
// synchronizer and the command dispatcher. Every request draws a sequence
// number from Next at dispatch time; a result is applied only if nothing
// dispatched later has been applied already, so out-of-order responses
// between the poll loop and command dispatches cannot roll state backwards.
type StatusCache struct {
	mu         sync.Mutex
	seq        uint64
	appliedSeq uint64

	status    DeviceStatus
	hasStatus bool
	displayed int
	lastError string
	fetching  int
	busy      bool
}

func NewStatusCache() *StatusCache {
	return &StatusCache{}
}

// Next reserves a sequence number for a request about to be dispatched.
func (c *StatusCache) Next() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

// Commit replaces the cached status wholesale with a fetch result and
// clears the error. Returns false when a later-dispatched result already
// applied, in which case nothing changes.
func (c *StatusCache) Commit(seq uint64, status DeviceStatus) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq <= c.appliedSeq {
		return false
	}
	c.appliedSeq = seq
	c.status = status
	c.hasStatus = true
	c.displayed = status.Brightness
	c.lastError = ""
	return true
}

// CommitPower applies a server-confirmed power state, leaving the rest of
// the cached status untouched.
func (c *StatusCache) CommitPower(seq uint64, power PowerState) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq <= c.appliedSeq {
		return false
	}
	c.appliedSeq = seq
	c.status.Power = power
	c.hasStatus = true
	c.lastError = ""
	return true
}

// CommitBrightness applies a server-confirmed brightness level and brings
// the displayed value in line with it.
func (c *StatusCache) CommitBrightness(seq uint64, level int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq <= c.appliedSeq {
		return false
	}
	c.appliedSeq = seq
	c.status.Brightness = level
	c.displayed = level
	c.lastError = ""
	return true
}

// Fail records a failure message. The previously cached status stays as it
// was; stale data beats a blank display. A stale failure is discarded the
// same way a stale success is.
func (c *StatusCache) Fail(seq uint64, message string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq <= c.appliedSeq {
		return false
	}
	c.appliedSeq = seq
	c.lastError = message
	return true
}

// PreviewBrightness updates only the displayed value, no sequence number
// involved. This is the in-progress slider drag path.
func (c *StatusCache) PreviewBrightness(level int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.displayed = level
}

// RevertBrightness drops an optimistic displayed value back to the last
// server-confirmed one.
func (c *StatusCache) RevertBrightness() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.displayed = c.status.Brightness
}

func (c *StatusCache) BeginFetch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetching++
}

func (c *StatusCache) EndFetch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fetching > 0 {
		c.fetching--
	}
}

// TryBusy sets the busy flag if no command is pending. Callers that get
// true must call ClearBusy when the dispatch settles.
func (c *StatusCache) TryBusy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return false
	}
	c.busy = true
	return true
}

func (c *StatusCache) ClearBusy() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
}

func (c *StatusCache) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Status:              c.status,
		HasStatus:           c.hasStatus,
		DisplayedBrightness: c.displayed,
		LastError:           c.lastError,
		Fetching:            c.fetching > 0,
		Busy:                c.busy,
	}
}
