package blockkit

import "github.com/felixgeelhaar/blockkit/internal/ir"

// Re-export types from internal/ir for public API
type (
	// Kind represents the kind of an instruction node
	Kind = ir.Kind
	// InstructionID identifies an instruction for highlighting
	InstructionID = ir.InstructionID
	// Predicate names a sensing query
	Predicate = ir.Predicate
	// Param is the kind-dependent parameter of an instruction
	Param = ir.Param
	// Instruction is a node of the program tree
	Instruction = ir.Instruction
	// Program is a validated instruction tree
	Program = ir.Program
)

// Re-export constants
const (
	KindMove    = ir.KindMove
	KindTurn    = ir.KindTurn
	KindWait    = ir.KindWait
	KindSay     = ir.KindSay
	KindRepeat  = ir.KindRepeat
	KindForever = ir.KindForever
	KindIf      = ir.KindIf

	TouchingEdge     = ir.PredicateTouchingEdge
	TouchingObstacle = ir.PredicateTouchingObstacle
	AtGoal           = ir.PredicateAtGoal
)

// RunState is the interpreter's top-level mode
type RunState int

const (
	// Idle means no run is in progress
	Idle RunState = iota
	// Running means a program is being evaluated
	Running
	// Won means the win condition was met; only Stop leaves this state
	Won
)

// String returns the string representation of RunState
func (s RunState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Won:
		return "won"
	default:
		return "unknown"
	}
}

// Vec is a point on the stage. The origin is the stage centre.
type Vec struct {
	X float64 `yaml:"x" toml:"x" msgpack:"x" json:"x"`
	Y float64 `yaml:"y" toml:"y" msgpack:"y" json:"y"`
}

// Actor is the mutable sprite record the interpreter drives
type Actor struct {
	Position Vec    `msgpack:"pos" json:"position"`
	Heading  int    `msgpack:"heading" json:"heading"` // degrees, never normalized
	Speech   string `msgpack:"speech,omitempty" json:"speech,omitempty"`
	Score    int    `msgpack:"score" json:"score"`
	Lives    int    `msgpack:"lives" json:"lives"`
}

// LoopProgress reports which pass of a loop is executing.
// Of is zero for Forever loops.
type LoopProgress struct {
	ID   InstructionID `msgpack:"id" json:"id"`
	Pass int           `msgpack:"pass" json:"pass"`
	Of   int           `msgpack:"of" json:"of"`
}

// Snapshot is the read-only view published after every interpreter step
type Snapshot struct {
	Seq     uint64        `msgpack:"seq" json:"seq"`
	Program string        `msgpack:"program" json:"program"`
	State   RunState      `msgpack:"state" json:"state"`
	Actor   Actor         `msgpack:"actor" json:"actor"`
	Current InstructionID `msgpack:"current,omitempty" json:"current,omitempty"`
	Loop    *LoopProgress `msgpack:"loop,omitempty" json:"loop,omitempty"`
}

// Observer receives every published snapshot. It runs on the interpreter's
// goroutine and must not block.
type Observer func(s Snapshot)
