package blockkit

import (
	"sync"
	"time"

	"github.com/felixgeelhaar/blockkit/internal/ir"
)

// Driver runs an Interpreter against the wall clock. It arms a timer for the
// next due continuation and ticks the interpreter when it fires.
//
// Driver is safe for concurrent use. Observers, sound sinks and win callbacks
// run with the driver lock held and must not call back into the Driver; they
// may call Stop on the wrapped Interpreter.
type Driver struct {
	mu     sync.Mutex
	interp *Interpreter
	now    func() time.Time
	timer  *time.Timer
	closed bool
}

// NewDriver wraps interp. The driver owns interp from now on.
func NewDriver(interp *Interpreter) *Driver {
	return &Driver{interp: interp, now: time.Now}
}

// Run starts a run and ticks it immediately
func (d *Driver) Run() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.interp.Run()
	d.tickLocked()
}

// Stop cancels the current run
func (d *Driver) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.interp.Stop()
	d.disarmLocked()
}

// Configure replaces the program; see Interpreter.Configure
func (d *Driver) Configure(program *ir.Program) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.interp.Configure(program)
}

// CycleParameter edits a parameter; see Interpreter.CycleParameter
func (d *Driver) CycleParameter(id InstructionID, kind Kind) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.interp.CycleParameter(id, kind)
}

// Snapshot returns the latest snapshot
func (d *Driver) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.interp.Snapshot()
}

// State returns the current run state
func (d *Driver) State() RunState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.interp.State()
}

// Close stops any pending timer. The driver ignores Run afterwards.
func (d *Driver) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.disarmLocked()
}

func (d *Driver) fire() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.timer = nil
	d.tickLocked()
}

func (d *Driver) tickLocked() {
	now := d.now()
	d.interp.Tick(now)

	d.disarmLocked()
	next, ok := d.interp.NextDue()
	if !ok {
		return
	}
	d.timer = time.AfterFunc(max(next.Sub(now), 0), d.fire)
}

func (d *Driver) disarmLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Simulate drives interp on a virtual clock starting at start, jumping from
// one due continuation to the next, until the run leaves Running or the
// next continuation lies beyond limit. It returns the virtual time reached.
func Simulate(interp *Interpreter, start time.Time, limit time.Duration) time.Time {
	now := start
	interp.Tick(now)
	for interp.State() == Running {
		next, ok := interp.NextDue()
		if !ok || next.Sub(start) > limit {
			break
		}
		if next.After(now) {
			now = next
		}
		interp.Tick(now)
	}
	return now
}
