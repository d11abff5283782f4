package blockkit

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/blockkit/internal/ir"
	"github.com/felixgeelhaar/blockkit/internal/parser"
)

// ProgramDef is a marker type that must be embedded in a struct to define a
// block program using the reflection DSL.
//
// Use the id tag to name the program. Every other block field is a
// top-level block, in field order:
//
//	type Square struct {
//	    blockkit.ProgramDef `id:"square"`
//	    Loop struct {
//	        blockkit.RepeatBlock `times:"4"`
//	        Step   blockkit.MoveBlock `steps:"40"`
//	        Corner blockkit.TurnBlock `degrees:"90"`
//	    }
//	}
type ProgramDef struct{}

// MoveBlock is a leaf marker; tag `steps:"40"`.
type MoveBlock struct{}

// TurnBlock is a leaf marker; tag `degrees:"90"`.
type TurnBlock struct{}

// WaitBlock is a leaf marker; tag `for:"500ms"`.
type WaitBlock struct{}

// SayBlock is a leaf marker; tag `text:"Hello!"`.
type SayBlock struct{}

// RepeatBlock is a container marker embedded in a struct whose other block
// fields form the body; tag `times:"4"`.
type RepeatBlock struct{}

// ForeverBlock is a container marker. It takes no tag.
type ForeverBlock struct{}

// IfBlock is a container marker; tag `when:"at_goal"`.
type IfBlock struct{}

// FromStruct builds a Program from a struct definition using the reflection
// DSL. Field names become instruction IDs in snake_case.
func FromStruct[P any]() (*ir.Program, error) {
	var p P
	schema, err := parser.ParseProgramStruct(reflect.TypeOf(p))
	if err != nil {
		return nil, fmt.Errorf("parse struct: %w", err)
	}
	return buildProgramFromSchema(schema)
}

// buildProgramFromSchema converts a parsed schema into a validated Program.
// Anonymous blocks are numbered b1, b2, ... in pre-order.
func buildProgramFromSchema(schema *parser.ProgramSchema) (*ir.Program, error) {
	seq := 0
	instructions, err := buildBlocksFromSchema(schema.Blocks, &seq)
	if err != nil {
		return nil, err
	}

	program := ir.NewProgram(schema.ID, instructions...)
	if err := ir.Validate(program); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return program, nil
}

func buildBlocksFromSchema(blocks []*parser.BlockSchema, seq *int) ([]*ir.Instruction, error) {
	out := make([]*ir.Instruction, 0, len(blocks))
	for _, block := range blocks {
		*seq++
		ins, err := buildBlockFromSchema(block, *seq)
		if err != nil {
			return nil, err
		}
		if ins.Kind.IsContainer() {
			body, err := buildBlocksFromSchema(block.Body, seq)
			if err != nil {
				return nil, err
			}
			ins.Body = body
		}
		out = append(out, ins)
	}
	return out, nil
}

// buildBlockFromSchema converts one block, without its body.
func buildBlockFromSchema(block *parser.BlockSchema, n int) (*ir.Instruction, error) {
	kind, ok := ir.ParseKind(block.Kind)
	if !ok {
		return nil, blockError(block, fmt.Errorf("unknown block kind %q", block.Kind))
	}

	id := block.Name
	if id == "" {
		id = "b" + strconv.Itoa(n)
	}
	ins := &ir.Instruction{ID: ir.InstructionID(id), Kind: kind}

	param, err := parseParam(kind, block.Arg)
	if err != nil {
		return nil, blockError(block, err)
	}
	ins.Param = param
	return ins, nil
}

// parseParam converts raw parameter text for the given kind. Wait accepts a
// Go duration ("500ms") or a bare number of milliseconds.
func parseParam(kind Kind, arg string) (Param, error) {
	arg = strings.TrimSpace(arg)
	switch kind {
	case KindMove:
		steps, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return Param{}, fmt.Errorf("move steps %q: %w", arg, err)
		}
		return Param{Steps: steps}, nil
	case KindTurn:
		degrees, err := strconv.Atoi(arg)
		if err != nil {
			return Param{}, fmt.Errorf("turn degrees %q: %w", arg, err)
		}
		return Param{Degrees: degrees}, nil
	case KindWait:
		if ms, err := strconv.Atoi(arg); err == nil {
			return Param{Duration: time.Duration(ms) * time.Millisecond}, nil
		}
		d, err := time.ParseDuration(arg)
		if err != nil {
			return Param{}, fmt.Errorf("wait duration %q: %w", arg, err)
		}
		return Param{Duration: d}, nil
	case KindSay:
		return Param{Message: arg}, nil
	case KindRepeat:
		times, err := strconv.Atoi(arg)
		if err != nil {
			return Param{}, fmt.Errorf("repeat times %q: %w", arg, err)
		}
		return Param{Times: times}, nil
	case KindIf:
		if arg == "" {
			return Param{}, fmt.Errorf("if needs a predicate")
		}
		return Param{Predicate: Predicate(arg)}, nil
	default:
		return Param{}, nil
	}
}

func blockError(block *parser.BlockSchema, err error) error {
	if block.Line > 0 {
		return &parser.SyntaxError{Line: block.Line, Msg: err.Error()}
	}
	if block.Name != "" {
		return fmt.Errorf("block %s: %w", block.Name, err)
	}
	return err
}
