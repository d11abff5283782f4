package ir

import (
	"strings"
	"time"
)

// Kind represents the kind of an instruction node
type Kind int

const (
	// KindMove translates the actor along its heading
	KindMove Kind = iota
	// KindTurn adds degrees to the actor heading
	KindTurn
	// KindWait pauses without touching the actor
	KindWait
	// KindSay shows a speech bubble for a fixed duration
	KindSay
	// KindRepeat runs its body a fixed number of times
	KindRepeat
	// KindForever runs its body until the level is won or the run is stopped
	KindForever
	// KindIf runs its body once when a sensing predicate holds
	KindIf
)

var kindNames = [...]string{
	KindMove:    "move",
	KindTurn:    "turn",
	KindWait:    "wait",
	KindSay:     "say",
	KindRepeat:  "repeat",
	KindForever: "forever",
	KindIf:      "if",
}

// String returns the string representation of Kind
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// ParseKind converts a block keyword to a Kind.
func ParseKind(s string) (Kind, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return Kind(k), true
		}
	}
	return 0, false
}

// IsContainer reports whether instructions of this kind carry a body
func (k Kind) IsContainer() bool {
	return k == KindRepeat || k == KindForever || k == KindIf
}

// InstructionID identifies an instruction for highlighting. It carries no
// meaning during evaluation.
type InstructionID string

// Predicate names a sensing query
type Predicate string

// Sensing predicates understood by the interpreter
const (
	PredicateTouchingEdge     Predicate = "touching_edge"
	PredicateTouchingObstacle Predicate = "touching_obstacle"
	PredicateAtGoal           Predicate = "at_goal"
)

// Param is the kind-dependent parameter of an instruction. Only the field
// matching the instruction kind is meaningful.
type Param struct {
	Steps     float64       // Move
	Degrees   int           // Turn
	Duration  time.Duration // Wait
	Message   string        // Say
	Times     int           // Repeat
	Predicate Predicate     // If
}

// Instruction is a node of the program tree
type Instruction struct {
	ID    InstructionID
	Kind  Kind
	Param Param
	Body  []*Instruction // Repeat, Forever and If only
}
