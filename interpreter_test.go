package blockkit

import (
	"math"
	"testing"
	"time"

	"github.com/felixgeelhaar/blockkit/internal/ir"
)

var epoch = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

const floatTolerance = 1e-9

// recorder collects everything an interpreter reports
type recorder struct {
	snapshots []Snapshot
	sounds    []Sound
	wins      int
}

func (r *recorder) attach(i *Interpreter) *Interpreter {
	return i.
		WithObserver(func(s Snapshot) { r.snapshots = append(r.snapshots, s) }).
		WithSound(AudioFunc(func(s Sound) { r.sounds = append(r.sounds, s) })).
		OnWin(func() { r.wins++ })
}

func (r *recorder) count(sound Sound) int {
	n := 0
	for _, s := range r.sounds {
		if s == sound {
			n++
		}
	}
	return n
}

func mustBuild(t *testing.T, b *ProgramBuilder) *ir.Program {
	t.Helper()
	program, err := b.Build()
	if err != nil {
		t.Fatalf("failed to build program: %v", err)
	}
	return program
}

func near(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

func TestInterpreter_InitialState(t *testing.T) {
	interp := NewInterpreter(mustBuild(t, NewProgram("p").Move(10)), DefaultWorld()).
		WithStart(Actor{Position: Vec{X: -50, Y: 10}, Heading: 90, Lives: 3})

	if interp.State() != Idle {
		t.Errorf("expected Idle, got %v", interp.State())
	}
	a := interp.Actor()
	if a.Position != (Vec{X: -50, Y: 10}) || a.Heading != 90 || a.Lives != 3 {
		t.Errorf("expected start actor, got %+v", a)
	}
}

func TestInterpreter_MoveTurnMoveScenario(t *testing.T) {
	program := mustBuild(t, NewProgram("corner").Move(40).Turn(90).Move(40))
	rec := &recorder{}
	interp := rec.attach(NewInterpreter(program, DefaultWorld()).WithWinCondition(""))

	interp.Run()
	interp.Tick(epoch)

	a := interp.Actor()
	if !near(a.Position.X, 40) || !near(a.Position.Y, 0) {
		t.Fatalf("expected (40,0) after first move, got %+v", a.Position)
	}

	step := DefaultTiming().Step
	interp.Tick(epoch.Add(step))
	if interp.Actor().Heading != 90 {
		t.Fatalf("expected heading 90, got %d", interp.Actor().Heading)
	}

	interp.Tick(epoch.Add(2 * step))
	a = interp.Actor()
	if !near(a.Position.X, 40) || !near(a.Position.Y, 40) {
		t.Errorf("expected (40,40), got %+v", a.Position)
	}

	interp.Tick(epoch.Add(3 * step))
	if interp.State() != Idle {
		t.Errorf("expected Idle after program end, got %v", interp.State())
	}
	if rec.count(SoundStep) != 2 || rec.count(SoundTurn) != 1 {
		t.Errorf("expected 2 step and 1 turn sounds, got %v", rec.sounds)
	}
}

func TestInterpreter_MoveFollowsHeading(t *testing.T) {
	tests := []struct {
		heading int
		steps   float64
	}{
		{0, 40},
		{45, 20},
		{90, -20},
		{180, 10},
		{-90, 40},
		{405, 20},
	}

	for _, tt := range tests {
		program := mustBuild(t, NewProgram("m").Move(tt.steps))
		interp := NewInterpreter(program, DefaultWorld()).
			WithWinCondition("").
			WithStart(Actor{Heading: tt.heading})

		interp.Run()
		interp.Tick(epoch)

		rad := float64(tt.heading) * math.Pi / 180
		wantX := tt.steps * math.Cos(rad)
		wantY := tt.steps * math.Sin(rad)
		got := interp.Actor().Position
		if !near(got.X, wantX) || !near(got.Y, wantY) {
			t.Errorf("heading %d steps %v: expected (%v,%v), got %+v", tt.heading, tt.steps, wantX, wantY, got)
		}
	}
}

func TestInterpreter_MoveClampsToStage(t *testing.T) {
	world := DefaultWorld()
	limit := world.Limit()

	program := mustBuild(t, NewProgram("run").Repeat(10).Move(40).End())
	interp := NewInterpreter(program, world).WithWinCondition("")

	var maxSeen float64
	interp.WithObserver(func(s Snapshot) {
		maxSeen = max(maxSeen, math.Abs(s.Actor.Position.X), math.Abs(s.Actor.Position.Y))
	})

	interp.Run()
	Simulate(interp, epoch, time.Minute)

	if got := interp.Actor().Position.X; got != limit {
		t.Errorf("expected x clamped to %v, got %v", limit, got)
	}
	if maxSeen > limit {
		t.Errorf("actor left the stage: %v > %v", maxSeen, limit)
	}
}

func TestInterpreter_TurnAccumulatesWithoutNormalizing(t *testing.T) {
	program := mustBuild(t, NewProgram("spin").Repeat(10).Turn(180).End())
	interp := NewInterpreter(program, DefaultWorld()).WithWinCondition("")

	interp.Run()
	Simulate(interp, epoch, time.Minute)

	if got := interp.Actor().Heading; got != 1800 {
		t.Errorf("expected heading 1800, got %d", got)
	}
}

func TestInterpreter_WaitPausesWithoutMutation(t *testing.T) {
	program := mustBuild(t, NewProgram("w").Wait(time.Second).Move(10))
	interp := NewInterpreter(program, DefaultWorld()).WithWinCondition("")

	interp.Run()
	interp.Tick(epoch)
	interp.Tick(epoch.Add(999 * time.Millisecond))
	if interp.Actor().Position.X != 0 {
		t.Fatalf("expected no movement during wait, got %+v", interp.Actor().Position)
	}

	interp.Tick(epoch.Add(time.Second))
	if !near(interp.Actor().Position.X, 10) {
		t.Errorf("expected move after wait, got %+v", interp.Actor().Position)
	}
}

func TestInterpreter_SayShowsThenClears(t *testing.T) {
	program := mustBuild(t, NewProgram("s").Say("Hello!"))
	rec := &recorder{}
	interp := rec.attach(NewInterpreter(program, DefaultWorld()).WithWinCondition(""))

	interp.Run()
	interp.Tick(epoch)
	if interp.Actor().Speech != "Hello!" {
		t.Fatalf("expected speech 'Hello!', got %q", interp.Actor().Speech)
	}
	if rec.count(SoundAlertFanfare) != 1 {
		t.Errorf("expected alert-fanfare on say, got %v", rec.sounds)
	}

	interp.Tick(epoch.Add(DefaultTiming().Say - time.Millisecond))
	if interp.Actor().Speech != "Hello!" {
		t.Fatal("expected speech to stay up for the display duration")
	}

	interp.Tick(epoch.Add(DefaultTiming().Say))
	if interp.Actor().Speech != "" {
		t.Errorf("expected speech cleared, got %q", interp.Actor().Speech)
	}
	if interp.State() != Idle {
		t.Errorf("expected Idle, got %v", interp.State())
	}
}

func TestInterpreter_RepeatRunsBodyExactlyNTimes(t *testing.T) {
	for _, n := range ir.RepeatTimes {
		program := mustBuild(t, NewProgram("r").Repeat(n).Turn(90).End())
		rec := &recorder{}
		interp := rec.attach(NewInterpreter(program, DefaultWorld()).WithWinCondition(""))

		interp.Run()
		Simulate(interp, epoch, time.Hour)

		if got := rec.count(SoundTurn); got != n {
			t.Errorf("repeat %d: expected %d turns, got %d", n, n, got)
		}
		if interp.Actor().Heading != 90*n {
			t.Errorf("repeat %d: expected heading %d, got %d", n, 90*n, interp.Actor().Heading)
		}
	}
}

func TestInterpreter_RepeatReportsProgress(t *testing.T) {
	program := mustBuild(t, NewProgram("r").Repeat(3).Turn(90).End().Label("loop"))
	rec := &recorder{}
	interp := rec.attach(NewInterpreter(program, DefaultWorld()).WithWinCondition(""))

	interp.Run()
	Simulate(interp, epoch, time.Minute)

	var passes []int
	last := 0
	for _, s := range rec.snapshots {
		if s.Loop == nil || s.Loop.ID != "loop" || s.Loop.Pass == last {
			continue
		}
		if s.Loop.Of != 3 {
			t.Errorf("expected Of=3, got %d", s.Loop.Of)
		}
		last = s.Loop.Pass
		passes = append(passes, s.Loop.Pass)
	}

	if len(passes) != 3 || passes[0] != 1 || passes[1] != 2 || passes[2] != 3 {
		t.Errorf("expected progress 1,2,3 got %v", passes)
	}

	final := rec.snapshots[len(rec.snapshots)-1]
	if final.Loop != nil {
		t.Errorf("expected no loop progress after the run, got %+v", final.Loop)
	}
}

func TestInterpreter_RepeatDoesNotCheckWin(t *testing.T) {
	goal := Vec{X: 20}
	world := DefaultWorld()
	world.Goal = &goal

	// Passes over the goal on the first pass and walks on; only the end of
	// the program checks the win condition.
	program := mustBuild(t, NewProgram("overshoot").Repeat(4).Move(20).End())
	rec := &recorder{}
	interp := rec.attach(NewInterpreter(program, world))

	interp.Run()
	Simulate(interp, epoch, time.Minute)

	if interp.State() != Idle || rec.wins != 0 {
		t.Errorf("expected no win, got state %v and %d wins", interp.State(), rec.wins)
	}
}

func TestInterpreter_ProgramEndChecksWin(t *testing.T) {
	goal := Vec{X: 80}
	world := DefaultWorld()
	world.Goal = &goal

	program := mustBuild(t, NewProgram("reach").Repeat(4).Move(20).End())
	rec := &recorder{}
	interp := rec.attach(NewInterpreter(program, world))

	interp.Run()
	Simulate(interp, epoch, time.Minute)

	if interp.State() != Won {
		t.Fatalf("expected Won, got %v", interp.State())
	}
	if rec.wins != 1 || rec.count(SoundSuccess) != 1 {
		t.Errorf("expected exactly one win and one success sound, got %d and %v", rec.wins, rec.sounds)
	}
	if interp.Actor().Score != 1 {
		t.Errorf("expected score 1, got %d", interp.Actor().Score)
	}
}

func TestInterpreter_ForeverHaltsOnWinAfterFullPass(t *testing.T) {
	goal := Vec{X: 40}
	world := DefaultWorld()
	world.Tolerance = 0.5
	world.Goal = &goal

	// The second pass reaches the goal with its move, but the win is only
	// noticed once that pass completes its say block.
	program := mustBuild(t, NewProgram("seek").
		Forever().
			Move(20).
			Say("Hmm...").
		End())
	rec := &recorder{}
	interp := rec.attach(NewInterpreter(program, world))

	interp.Run()
	Simulate(interp, epoch, time.Minute)

	if interp.State() != Won {
		t.Fatalf("expected Won, got %v", interp.State())
	}
	if got := rec.count(SoundStep); got != 2 {
		t.Errorf("expected 2 moves before the win, got %d", got)
	}
	if got := rec.count(SoundAlertFanfare); got != 2 {
		t.Errorf("expected the second pass to finish its say block, got %d says", got)
	}
	if rec.wins != 1 {
		t.Errorf("expected onWin once, got %d", rec.wins)
	}
	if _, pending := interp.NextDue(); pending {
		t.Error("expected nothing scheduled after the win")
	}
}

func TestInterpreter_ForeverWithoutWinKeepsLooping(t *testing.T) {
	program := mustBuild(t, NewProgram("spin").Forever().Turn(90).End())
	rec := &recorder{}
	interp := rec.attach(NewInterpreter(program, DefaultWorld()).WithWinCondition(""))

	interp.Run()
	Simulate(interp, epoch, 10*time.Second)

	if interp.State() != Running {
		t.Fatalf("expected still Running, got %v", interp.State())
	}
	// Each pass costs one step pause and one loop pause
	perPass := DefaultTiming().Step + DefaultTiming().Loop
	if got, want := rec.count(SoundTurn), int(10*time.Second/perPass)+1; got != want {
		t.Errorf("expected %d turns in 10s, got %d", want, got)
	}
}

func TestInterpreter_EmptyForeverStillPaces(t *testing.T) {
	program := mustBuild(t, NewProgram("idle").Forever().End())
	interp := NewInterpreter(program, DefaultWorld()).WithWinCondition("")

	interp.Run()
	interp.Tick(epoch)

	next, ok := interp.NextDue()
	if !ok || !next.Equal(epoch.Add(DefaultTiming().Loop)) {
		t.Errorf("expected next pass after the loop pause, got %v (ok=%v)", next, ok)
	}
}

func TestInterpreter_IfAtGoal(t *testing.T) {
	goal := Vec{X: 30, Y: -10}
	world := DefaultWorld()
	world.Tolerance = 0.5
	world.Goal = &goal

	program := mustBuild(t, NewProgram("check").If(AtGoal).Say("I did it!").End())

	tests := []struct {
		name  string
		start Vec
		say   bool
	}{
		{"exactly at goal", goal, true},
		{"one unit right", Vec{X: 31, Y: -10}, false},
		{"one unit down", Vec{X: 30, Y: -11}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			interp := rec.attach(NewInterpreter(program, world).
				WithWinCondition("").
				WithStart(Actor{Position: tt.start}))

			interp.Run()
			interp.Tick(epoch)

			if got := rec.count(SoundAlertFanfare) == 1; got != tt.say {
				t.Errorf("expected body executed=%v, got %v", tt.say, got)
			}
		})
	}
}

func TestInterpreter_IfUnknownPredicateIsFalse(t *testing.T) {
	program := mustBuild(t, NewProgram("p").If("raining").Move(10).End())
	interp := NewInterpreter(program, DefaultWorld()).WithWinCondition("")

	interp.Run()
	Simulate(interp, epoch, time.Minute)

	if interp.Actor().Position.X != 0 {
		t.Errorf("expected body skipped, got %+v", interp.Actor().Position)
	}
}

func TestInterpreter_UnknownWinPredicateNeverWins(t *testing.T) {
	program := mustBuild(t, NewProgram("p").Move(10))
	rec := &recorder{}
	interp := rec.attach(NewInterpreter(program, DefaultWorld()).WithWinCondition("raining"))

	interp.Run()
	Simulate(interp, epoch, time.Minute)

	if interp.State() != Idle || rec.wins != 0 {
		t.Errorf("expected Idle without win, got %v and %d wins", interp.State(), rec.wins)
	}
}

func TestInterpreter_RunIsNoOpWhenRunningOrWon(t *testing.T) {
	goal := Vec{}
	world := DefaultWorld()
	world.Goal = &goal

	program := mustBuild(t, NewProgram("p").Turn(90))
	rec := &recorder{}
	interp := rec.attach(NewInterpreter(program, world))

	interp.Run()
	interp.Tick(epoch)
	interp.Run()
	if interp.Actor().Heading != 90 {
		t.Fatalf("expected Run while Running not to reset, heading %d", interp.Actor().Heading)
	}

	Simulate(interp, epoch, time.Minute)
	if interp.State() != Won {
		t.Fatalf("expected Won, got %v", interp.State())
	}

	interp.Run()
	interp.Tick(epoch.Add(time.Hour))
	if interp.State() != Won || rec.wins != 1 || rec.count(SoundTurn) != 1 {
		t.Errorf("expected Run while Won to do nothing, got %v, %d wins, %v", interp.State(), rec.wins, rec.sounds)
	}
}

func TestInterpreter_CurrentInstructionHighlight(t *testing.T) {
	program := mustBuild(t, NewProgram("p").
		Move(10).Label("first").
		Repeat(2).
			Turn(90).Label("spin").
		End().Label("loop"))
	rec := &recorder{}
	interp := rec.attach(NewInterpreter(program, DefaultWorld()).WithWinCondition(""))

	interp.Run()
	Simulate(interp, epoch, time.Minute)

	var order []InstructionID
	for _, s := range rec.snapshots {
		if s.Current != "" && (len(order) == 0 || order[len(order)-1] != s.Current) {
			order = append(order, s.Current)
		}
	}

	want := []InstructionID{"first", "loop", "spin"}
	if len(order) != len(want) {
		t.Fatalf("expected highlight order %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], order[i])
		}
	}
}

func TestInterpreter_SnapshotsAreMonotonic(t *testing.T) {
	program := mustBuild(t, NewProgram("p").Move(10).Say("Hello!").Turn(90))
	rec := &recorder{}
	interp := rec.attach(NewInterpreter(program, DefaultWorld()).WithWinCondition(""))

	interp.Run()
	Simulate(interp, epoch, time.Minute)

	for i := 1; i < len(rec.snapshots); i++ {
		if rec.snapshots[i].Seq <= rec.snapshots[i-1].Seq {
			t.Fatalf("snapshot %d not after %d", rec.snapshots[i].Seq, rec.snapshots[i-1].Seq)
		}
	}
	if rec.snapshots[0].Program != "p" {
		t.Errorf("expected program id in snapshot, got %q", rec.snapshots[0].Program)
	}
}

func TestInterpreter_EmptyProgramCompletes(t *testing.T) {
	interp := NewInterpreter(mustBuild(t, NewProgram("empty")), DefaultWorld()).WithWinCondition("")

	interp.Run()
	interp.Tick(epoch)

	if interp.State() != Idle {
		t.Errorf("expected Idle, got %v", interp.State())
	}
}

func TestInterpreter_EachRunStartsFromStart(t *testing.T) {
	program := mustBuild(t, NewProgram("p").Move(40))
	interp := NewInterpreter(program, DefaultWorld()).WithWinCondition("")

	interp.Run()
	Simulate(interp, epoch, time.Minute)
	interp.Run()
	Simulate(interp, epoch.Add(time.Minute), time.Minute)

	if !near(interp.Actor().Position.X, 40) {
		t.Errorf("expected second run to start from the origin, got %+v", interp.Actor().Position)
	}
}

func TestInterpreter_SoundSinkPanicIsSwallowed(t *testing.T) {
	program := mustBuild(t, NewProgram("p").Move(10).Turn(90))
	interp := NewInterpreter(program, DefaultWorld()).
		WithWinCondition("").
		WithSound(AudioFunc(func(Sound) { panic("speaker unplugged") }))

	interp.Run()
	Simulate(interp, epoch, time.Minute)

	if interp.Actor().Heading != 90 {
		t.Errorf("expected run to complete despite sink failure, heading %d", interp.Actor().Heading)
	}
}

func TestInterpreter_CustomTiming(t *testing.T) {
	program := mustBuild(t, NewProgram("p").Move(10).Move(10))
	interp := NewInterpreter(program, DefaultWorld()).
		WithWinCondition("").
		WithTiming(Timing{Step: 50 * time.Millisecond})

	interp.Run()
	interp.Tick(epoch)

	next, ok := interp.NextDue()
	if !ok || !next.Equal(epoch.Add(50*time.Millisecond)) {
		t.Errorf("expected custom step pause, got %v", next)
	}
}
