package blockkit

import (
	"time"

	"github.com/felixgeelhaar/blockkit/internal/ir"
	"github.com/felixgeelhaar/blockkit/internal/sched"
)

// Timing holds the fixed cooperative pauses
type Timing struct {
	Step time.Duration // after each Move and Turn
	Say  time.Duration // how long a speech bubble stays up
	Loop time.Duration // between Forever passes
}

// DefaultTiming returns the pacing used by the workshop stage
func DefaultTiming() Timing {
	return Timing{
		Step: 400 * time.Millisecond,
		Say:  1500 * time.Millisecond,
		Loop: 100 * time.Millisecond,
	}
}

// Interpreter evaluates a block program against a single actor.
//
// Evaluation is cooperative and single-threaded: each leaf instruction
// applies its mutation and then schedules its continuation on a timer queue.
// Nothing runs until Tick is called, so the caller owns the clock. The
// Interpreter is not safe for concurrent use; see Driver for a real-time,
// goroutine-safe wrapper.
type Interpreter struct {
	program   *ir.Program
	world     World
	start     Actor
	win       Predicate
	timing    Timing
	sound     AudioSink
	observers []Observer
	onWin     func()

	state   RunState
	actor   Actor
	frames  []*frame
	queue   *sched.Queue
	current InstructionID
	loop    *LoopProgress
	seq     uint64
	runID   uint64
	cancel  bool
	ticking bool
}

// frame is one sequence being evaluated: the program body or a container's body
type frame struct {
	owner *ir.Instruction // nil for the top-level sequence
	body  []*ir.Instruction
	pc    int
	pass  int // completed passes, Repeat and Forever only
}

// NewInterpreter creates an idle interpreter for program on the given stage.
// The program is copied, so later parameter edits never touch the caller's tree.
func NewInterpreter(program *ir.Program, world World) *Interpreter {
	if program == nil {
		program = ir.NewProgram("empty")
	}
	return &Interpreter{
		program: program.Clone(),
		world:   world,
		win:     AtGoal,
		timing:  DefaultTiming(),
		queue:   sched.NewQueue(),
		state:   Idle,
	}
}

// WithStart sets the actor every run starts from
func (i *Interpreter) WithStart(a Actor) *Interpreter {
	i.start = a
	if i.state == Idle {
		i.actor = a
	}
	return i
}

// WithWinCondition sets the predicate that wins the level.
// An empty predicate never wins, as in free play.
func (i *Interpreter) WithWinCondition(pred Predicate) *Interpreter {
	i.win = pred
	return i
}

// WithTiming overrides the cooperative pauses. Zero fields keep their defaults.
func (i *Interpreter) WithTiming(t Timing) *Interpreter {
	def := DefaultTiming()
	if t.Step <= 0 {
		t.Step = def.Step
	}
	if t.Say <= 0 {
		t.Say = def.Say
	}
	if t.Loop <= 0 {
		t.Loop = def.Loop
	}
	i.timing = t
	return i
}

// WithSound sets the audio sink
func (i *Interpreter) WithSound(sink AudioSink) *Interpreter {
	i.sound = sink
	return i
}

// WithObserver adds a snapshot observer
func (i *Interpreter) WithObserver(fn Observer) *Interpreter {
	if fn != nil {
		i.observers = append(i.observers, fn)
	}
	return i
}

// OnWin sets the callback invoked once when a run reaches Won
func (i *Interpreter) OnWin(fn func()) *Interpreter {
	i.onWin = fn
	return i
}

// State returns the current run state
func (i *Interpreter) State() RunState {
	return i.state
}

// Actor returns a copy of the current actor
func (i *Interpreter) Actor() Actor {
	return i.actor
}

// World returns the stage geometry
func (i *Interpreter) World() World {
	return i.world
}

// Program returns a copy of the current program
func (i *Interpreter) Program() *ir.Program {
	return i.program.Clone()
}

// Snapshot returns the latest read-only view of the interpreter
func (i *Interpreter) Snapshot() Snapshot {
	s := Snapshot{
		Seq:     i.seq,
		Program: i.program.ID,
		State:   i.state,
		Actor:   i.actor,
		Current: i.current,
	}
	if i.loop != nil {
		lp := *i.loop
		s.Loop = &lp
	}
	return s
}

// NextDue reports when the next scheduled continuation becomes due
func (i *Interpreter) NextDue() (time.Time, bool) {
	return i.queue.Next()
}

// Configure replaces the program. It is a no-op returning false while a run
// is in progress. A won level goes back to Idle with a fresh actor.
func (i *Interpreter) Configure(program *ir.Program) bool {
	if i.state == Running || program == nil {
		return false
	}
	i.program = program.Clone()
	i.reset()
	return true
}

// CycleParameter advances the parameter of instruction id to the next value
// of its kind's enumeration, wrapping around. It only applies while Idle and
// when kind matches the instruction.
func (i *Interpreter) CycleParameter(id InstructionID, kind Kind) bool {
	if i.state != Idle {
		return false
	}
	ins := i.program.Find(id)
	if ins == nil || ins.Kind != kind {
		return false
	}
	ins.Param = ir.NextParam(kind, ins.Param)
	i.publish()
	return true
}

// Run starts evaluation from the configured start actor. It is a no-op when
// already Running or Won.
func (i *Interpreter) Run() {
	if i.state != Idle {
		return
	}
	i.runID++
	i.cancel = false
	i.actor = i.start
	i.current = ""
	i.loop = nil
	i.frames = []*frame{{body: i.program.Instructions}}
	i.state = Running
	i.publish()

	runID := i.runID
	i.queue.Schedule(time.Time{}, func(now time.Time) { i.resume(runID, now) })
}

// Stop cancels the run. Called from an observer, sound sink or win callback
// during Tick, it only raises the cancellation flag and the run halts at the
// next checkpoint. Either way the interpreter ends Idle with the start actor.
func (i *Interpreter) Stop() {
	if i.ticking {
		i.cancel = true
		return
	}
	i.reset()
}

// Tick runs every continuation due at now. It is the single entry point that
// advances evaluation.
func (i *Interpreter) Tick(now time.Time) {
	if i.ticking {
		return
	}
	i.ticking = true
	i.queue.RunDue(now)
	i.ticking = false

	if i.cancel {
		i.reset()
	}
}

func (i *Interpreter) reset() {
	i.runID++
	i.queue.Clear()
	i.frames = nil
	i.cancel = false
	i.state = Idle
	i.actor = i.start
	i.current = ""
	i.loop = nil
	i.publish()
}

// resume evaluates until the next cooperative pause or the end of the run
func (i *Interpreter) resume(runID uint64, now time.Time) {
	for runID == i.runID && i.state == Running {
		if i.cancel {
			return
		}

		top := i.frames[len(i.frames)-1]
		if top.pc >= len(top.body) {
			if delay, paused := i.endOfSequence(top); paused {
				i.pause(runID, now, delay, nil)
				return
			}
			continue
		}

		ins := top.body[top.pc]
		top.pc++
		if delay, then, paused := i.exec(ins); paused {
			i.pause(runID, now, delay, then)
			return
		}
	}
}

// exec evaluates one instruction. Leaves mutate the actor and report the
// pause that follows; containers push a frame and continue immediately.
func (i *Interpreter) exec(ins *ir.Instruction) (time.Duration, func(), bool) {
	i.setCurrent(ins.ID)

	switch ins.Kind {
	case KindMove:
		i.actor.Position = i.world.Clamp(Step(i.actor.Position, i.actor.Heading, ins.Param.Steps))
		PlaySound(i.sound, SoundStep)
		i.publish()
		return i.timing.Step, nil, true

	case KindTurn:
		i.actor.Heading += ins.Param.Degrees
		PlaySound(i.sound, SoundTurn)
		i.publish()
		return i.timing.Step, nil, true

	case KindWait:
		return ins.Param.Duration, nil, true

	case KindSay:
		i.actor.Speech = ins.Param.Message
		PlaySound(i.sound, SoundAlertFanfare)
		i.publish()
		return i.timing.Say, func() {
			i.actor.Speech = ""
			i.publish()
		}, true

	case KindRepeat:
		if ins.Param.Times <= 0 {
			return 0, nil, false
		}
		i.frames = append(i.frames, &frame{owner: ins, body: ins.Body})
		i.setLoop(&LoopProgress{ID: ins.ID, Pass: 1, Of: ins.Param.Times})

	case KindForever:
		i.frames = append(i.frames, &frame{owner: ins, body: ins.Body})
		i.setLoop(&LoopProgress{ID: ins.ID, Pass: 1})

	case KindIf:
		if i.world.Sense(ins.Param.Predicate, i.actor) {
			i.frames = append(i.frames, &frame{owner: ins, body: ins.Body})
		}
	}
	return 0, nil, false
}

// endOfSequence handles a frame whose body is exhausted. It reports a pause
// when the next step must wait.
func (i *Interpreter) endOfSequence(f *frame) (time.Duration, bool) {
	if f.owner == nil {
		i.finish()
		return 0, false
	}

	switch f.owner.Kind {
	case KindRepeat:
		f.pass++
		if f.pass < f.owner.Param.Times {
			f.pc = 0
			i.setLoop(&LoopProgress{ID: f.owner.ID, Pass: f.pass + 1, Of: f.owner.Param.Times})
			return 0, false
		}

	case KindForever:
		f.pass++
		if i.winning() {
			i.declareWin()
			return 0, false
		}
		f.pc = 0
		i.setLoop(&LoopProgress{ID: f.owner.ID, Pass: f.pass + 1})
		return i.timing.Loop, true
	}

	i.frames = i.frames[:len(i.frames)-1]
	i.restoreLoop()
	return 0, false
}

// finish ends a run whose top-level sequence completed
func (i *Interpreter) finish() {
	if i.winning() {
		i.declareWin()
		return
	}
	i.frames = nil
	i.state = Idle
	i.current = ""
	i.loop = nil
	i.publish()
}

func (i *Interpreter) winning() bool {
	return i.win != "" && i.world.Sense(i.win, i.actor)
}

// declareWin moves to Won exactly once per run
func (i *Interpreter) declareWin() {
	if i.state != Running {
		return
	}
	i.state = Won
	i.frames = nil
	i.queue.Clear()
	i.loop = nil
	i.actor.Score++
	PlaySound(i.sound, SoundSuccess)
	i.publish()
	if i.onWin != nil {
		i.onWin()
	}
}

func (i *Interpreter) pause(runID uint64, now time.Time, d time.Duration, then func()) {
	i.queue.Schedule(now.Add(d), func(at time.Time) {
		if runID != i.runID {
			return
		}
		if then != nil {
			then()
		}
		i.resume(runID, at)
	})
}

func (i *Interpreter) setCurrent(id InstructionID) {
	i.current = id
	i.publish()
}

func (i *Interpreter) setLoop(lp *LoopProgress) {
	i.loop = lp
	i.publish()
}

// restoreLoop reports the innermost loop still on the frame stack
func (i *Interpreter) restoreLoop() {
	for n := len(i.frames) - 1; n >= 0; n-- {
		f := i.frames[n]
		if f.owner == nil {
			continue
		}
		switch f.owner.Kind {
		case KindRepeat:
			i.loop = &LoopProgress{ID: f.owner.ID, Pass: f.pass + 1, Of: f.owner.Param.Times}
			return
		case KindForever:
			i.loop = &LoopProgress{ID: f.owner.ID, Pass: f.pass + 1}
			return
		}
	}
	i.loop = nil
}

func (i *Interpreter) publish() {
	i.seq++
	if len(i.observers) == 0 {
		return
	}
	s := i.Snapshot()
	for _, fn := range i.observers {
		fn(s)
	}
}
