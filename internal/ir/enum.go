package ir

import (
	"strconv"
	"time"
)

// Closed parameter enumerations. Authoring cycles through these values, so
// the evaluator never sees anything else.
var (
	MoveSteps    = []float64{10, 20, 40, -20}
	TurnDegrees  = []int{90, -90, 45, 180}
	WaitDuration = []time.Duration{250 * time.Millisecond, 500 * time.Millisecond, time.Second, 2 * time.Second}
	SayMessages  = []string{"Hello!", "Hmm...", "I did it!", "Beep boop!"}
	RepeatTimes  = []int{2, 3, 4, 5, 10}
	Predicates   = []Predicate{PredicateTouchingEdge, PredicateTouchingObstacle, PredicateAtGoal}
)

// DefaultParam returns the first value of the kind's enumeration
func DefaultParam(kind Kind) Param {
	switch kind {
	case KindMove:
		return Param{Steps: MoveSteps[0]}
	case KindTurn:
		return Param{Degrees: TurnDegrees[0]}
	case KindWait:
		return Param{Duration: WaitDuration[0]}
	case KindSay:
		return Param{Message: SayMessages[0]}
	case KindRepeat:
		return Param{Times: RepeatTimes[0]}
	case KindIf:
		return Param{Predicate: Predicates[0]}
	default:
		return Param{}
	}
}

// NextParam returns the value after p in the kind's enumeration, wrapping
// around at the end. A value outside the enumeration cycles to the first one.
// Forever has no parameter and is returned unchanged.
func NextParam(kind Kind, p Param) Param {
	switch kind {
	case KindMove:
		return Param{Steps: next(MoveSteps, p.Steps)}
	case KindTurn:
		return Param{Degrees: next(TurnDegrees, p.Degrees)}
	case KindWait:
		return Param{Duration: next(WaitDuration, p.Duration)}
	case KindSay:
		return Param{Message: next(SayMessages, p.Message)}
	case KindRepeat:
		return Param{Times: next(RepeatTimes, p.Times)}
	case KindIf:
		return Param{Predicate: next(Predicates, p.Predicate)}
	default:
		return p
	}
}

// InRange reports whether p is a member of the kind's enumeration.
// Predicates are not checked: an unknown predicate is legal and senses false.
func InRange(kind Kind, p Param) bool {
	switch kind {
	case KindMove:
		return indexOf(MoveSteps, p.Steps) >= 0
	case KindTurn:
		return indexOf(TurnDegrees, p.Degrees) >= 0
	case KindWait:
		return indexOf(WaitDuration, p.Duration) >= 0
	case KindSay:
		return indexOf(SayMessages, p.Message) >= 0
	case KindRepeat:
		return indexOf(RepeatTimes, p.Times) >= 0
	default:
		return true
	}
}

// ParamText renders the meaningful field of p for the given kind.
// Forever has no parameter and renders as the empty string.
func ParamText(kind Kind, p Param) string {
	switch kind {
	case KindMove:
		return strconv.FormatFloat(p.Steps, 'g', -1, 64)
	case KindTurn:
		return strconv.Itoa(p.Degrees)
	case KindWait:
		return p.Duration.String()
	case KindSay:
		return p.Message
	case KindRepeat:
		return strconv.Itoa(p.Times)
	case KindIf:
		return string(p.Predicate)
	default:
		return ""
	}
}

// Options returns every value of the kind's enumeration, in cycling order
func Options(kind Kind) []Param {
	first := DefaultParam(kind)
	if kind == KindForever || first == (Param{}) {
		return nil
	}
	out := []Param{first}
	for p := NextParam(kind, first); p != first; p = NextParam(kind, p) {
		out = append(out, p)
	}
	return out
}

func next[T comparable](values []T, cur T) T {
	i := indexOf(values, cur)
	return values[(i+1)%len(values)]
}

func indexOf[T comparable](values []T, v T) int {
	for i, candidate := range values {
		if candidate == v {
			return i
		}
	}
	return -1
}
