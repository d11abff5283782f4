package blockkit

import (
	"fmt"
	"strconv"
	"time"

	"github.com/felixgeelhaar/blockkit/internal/ir"
)

// ProgramBuilder provides a fluent API for constructing block programs.
//
// Container blocks (Repeat, Forever, If) open a body that collects the
// following blocks until End is called:
//
//	program, err := blockkit.NewProgram("square").
//		Repeat(4).
//			Move(40).
//			Turn(90).
//		End().
//		Say("I did it!").
//		Build()
type ProgramBuilder struct {
	id    string
	root  []*blockBuilder
	open  []*blockBuilder // innermost last
	last  *blockBuilder
	issue error
}

type blockBuilder struct {
	label string
	kind  Kind
	param Param
	body  []*blockBuilder
}

// NewProgram creates a new ProgramBuilder with the given ID
func NewProgram(id string) *ProgramBuilder {
	return &ProgramBuilder{id: id}
}

// Move appends a move block
func (b *ProgramBuilder) Move(steps float64) *ProgramBuilder {
	return b.add(&blockBuilder{kind: KindMove, param: Param{Steps: steps}})
}

// Turn appends a turn block
func (b *ProgramBuilder) Turn(degrees int) *ProgramBuilder {
	return b.add(&blockBuilder{kind: KindTurn, param: Param{Degrees: degrees}})
}

// Wait appends a wait block
func (b *ProgramBuilder) Wait(d time.Duration) *ProgramBuilder {
	return b.add(&blockBuilder{kind: KindWait, param: Param{Duration: d}})
}

// Say appends a say block
func (b *ProgramBuilder) Say(message string) *ProgramBuilder {
	return b.add(&blockBuilder{kind: KindSay, param: Param{Message: message}})
}

// Repeat opens a repeat block; close it with End
func (b *ProgramBuilder) Repeat(times int) *ProgramBuilder {
	return b.push(&blockBuilder{kind: KindRepeat, param: Param{Times: times}})
}

// Forever opens a forever block; close it with End
func (b *ProgramBuilder) Forever() *ProgramBuilder {
	return b.push(&blockBuilder{kind: KindForever})
}

// If opens a conditional block; close it with End
func (b *ProgramBuilder) If(pred Predicate) *ProgramBuilder {
	return b.push(&blockBuilder{kind: KindIf, param: Param{Predicate: pred}})
}

// End closes the innermost open container block
func (b *ProgramBuilder) End() *ProgramBuilder {
	if len(b.open) == 0 {
		b.fail(fmt.Errorf("End called with no open block"))
		return b
	}
	b.last = b.open[len(b.open)-1]
	b.open = b.open[:len(b.open)-1]
	return b
}

// Label sets the ID of the most recently added (or closed) block.
// Unlabelled blocks get b1, b2, ... in pre-order.
func (b *ProgramBuilder) Label(id InstructionID) *ProgramBuilder {
	if b.last == nil {
		b.fail(fmt.Errorf("Label(%q) called before any block", id))
		return b
	}
	b.last.label = string(id)
	return b
}

// Build constructs and validates the Program
func (b *ProgramBuilder) Build() (*ir.Program, error) {
	if b.issue != nil {
		return nil, b.issue
	}
	if len(b.open) > 0 {
		inner := b.open[len(b.open)-1]
		return nil, fmt.Errorf("%s block not closed with End", inner.kind)
	}

	seq := 0
	program := ir.NewProgram(b.id, buildSequence(b.root, &seq)...)

	if err := ir.Validate(program); err != nil {
		return nil, err
	}
	return program, nil
}

// buildSequence converts builders to instructions, numbering in pre-order
func buildSequence(blocks []*blockBuilder, seq *int) []*ir.Instruction {
	out := make([]*ir.Instruction, 0, len(blocks))
	for _, bb := range blocks {
		*seq++
		id := bb.label
		if id == "" {
			id = "b" + strconv.Itoa(*seq)
		}
		ins := &ir.Instruction{
			ID:    ir.InstructionID(id),
			Kind:  bb.kind,
			Param: bb.param,
		}
		if bb.kind.IsContainer() {
			ins.Body = buildSequence(bb.body, seq)
		}
		out = append(out, ins)
	}
	return out
}

func (b *ProgramBuilder) add(bb *blockBuilder) *ProgramBuilder {
	if n := len(b.open); n > 0 {
		parent := b.open[n-1]
		parent.body = append(parent.body, bb)
	} else {
		b.root = append(b.root, bb)
	}
	b.last = bb
	return b
}

func (b *ProgramBuilder) push(bb *blockBuilder) *ProgramBuilder {
	b.add(bb)
	b.open = append(b.open, bb)
	return b
}

func (b *ProgramBuilder) fail(err error) {
	if b.issue == nil {
		b.issue = err
	}
}
