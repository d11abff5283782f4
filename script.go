package blockkit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/blockkit/internal/ir"
	"github.com/felixgeelhaar/blockkit/internal/parser"
)

// SyntaxError reports a problem in block script source
type SyntaxError = parser.SyntaxError

// ParseProgram builds a Program from block script source:
//
//	repeat 4 {
//	    move 40
//	    turn 90
//	}
//	forever { move 10; if at_goal { say "I did it!" } }
//
// Blocks may be labelled with @name; others are numbered b1, b2, ... in
// pre-order.
func ParseProgram(id, src string) (*ir.Program, error) {
	schema, err := parser.ParseScript(id, src)
	if err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	return buildProgramFromSchema(schema)
}

// FormatProgram renders p as block script that ParseProgram reads back.
// Every block carries its ID as a label.
func FormatProgram(p *ir.Program) string {
	var b strings.Builder
	formatSequence(&b, p.Instructions, 0)
	return b.String()
}

func formatSequence(b *strings.Builder, seq []*ir.Instruction, depth int) {
	indent := strings.Repeat("    ", depth)
	for _, ins := range seq {
		b.WriteString(indent)
		b.WriteString(FormatInstruction(ins))
		if ins.ID != "" {
			b.WriteString(" @")
			b.WriteString(string(ins.ID))
		}
		if ins.Kind.IsContainer() {
			b.WriteString(" {\n")
			formatSequence(b, ins.Body, depth+1)
			b.WriteString(indent)
			b.WriteString("}")
		}
		b.WriteString("\n")
	}
}

// FormatInstruction renders the keyword and parameter of one block
func FormatInstruction(ins *ir.Instruction) string {
	switch ins.Kind {
	case KindForever:
		return ins.Kind.String()
	case KindSay:
		return "say " + strconv.Quote(ins.Param.Message)
	default:
		return ins.Kind.String() + " " + ir.ParamText(ins.Kind, ins.Param)
	}
}
