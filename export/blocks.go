// Package export provides exporters for converting block programs to
// external formats, such as the blocks JSON consumed by visual editors.
package export

import (
	"encoding/json"

	"github.com/felixgeelhaar/blockkit/internal/ir"
)

// Block categories, used by editors to colour the palette
const (
	CategoryMotion  = "motion"
	CategoryLooks   = "looks"
	CategoryControl = "control"
	CategorySensing = "sensing"
)

// BlocksExporter converts a Program to blocks JSON. The output lists every
// block with its current value and the values it cycles through, so an
// editor can render the palette without knowing the enumerations.
type BlocksExporter struct {
	program *ir.Program
	title   string
}

// NewBlocksExporter creates a new exporter for the given program
func NewBlocksExporter(program *ir.Program) *BlocksExporter {
	return &BlocksExporter{program: program}
}

// BlocksProgram represents a program in blocks JSON
type BlocksProgram struct {
	ID     string      `json:"id"`
	Title  string      `json:"title,omitempty"`
	Blocks []BlockNode `json:"blocks"`
}

// BlockNode represents a single block
type BlockNode struct {
	ID       string      `json:"id"`
	Type     string      `json:"type"`     // move, turn, wait, say, repeat, forever, if
	Category string      `json:"category"` // motion, looks, control, sensing
	Value    string      `json:"value,omitempty"`
	Options  []string    `json:"options,omitempty"`
	Body     []BlockNode `json:"body,omitempty"` // containers only; empty bodies are omitted
}

// Export converts the program to blocks JSON form
func (e *BlocksExporter) Export() (*BlocksProgram, error) {
	out := &BlocksProgram{
		ID:     e.program.ID,
		Title:  e.title,
		Blocks: e.buildBlocks(e.program.Instructions),
	}
	return out, nil
}

// ExportJSON returns the program as a JSON string
func (e *BlocksExporter) ExportJSON() (string, error) {
	program, err := e.Export()
	if err != nil {
		return "", err
	}

	data, err := json.Marshal(program)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

// ExportJSONIndent returns the program as a formatted JSON string
func (e *BlocksExporter) ExportJSONIndent(prefix, indent string) (string, error) {
	program, err := e.Export()
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(program, prefix, indent)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

// WithTitle sets the display title written alongside the program
func (e *BlocksExporter) WithTitle(title string) *BlocksExporter {
	e.title = title
	return e
}

func (e *BlocksExporter) buildBlocks(seq []*ir.Instruction) []BlockNode {
	nodes := make([]BlockNode, 0, len(seq))
	for _, ins := range seq {
		if ins == nil {
			continue
		}
		nodes = append(nodes, e.buildBlockNode(ins))
	}
	return nodes
}

// buildBlockNode recursively builds a node for ins
func (e *BlocksExporter) buildBlockNode(ins *ir.Instruction) BlockNode {
	node := BlockNode{
		ID:       string(ins.ID),
		Type:     ins.Kind.String(),
		Category: category(ins.Kind),
		Value:    ir.ParamText(ins.Kind, ins.Param),
	}

	for _, opt := range ir.Options(ins.Kind) {
		node.Options = append(node.Options, ir.ParamText(ins.Kind, opt))
	}

	if ins.Kind.IsContainer() && len(ins.Body) > 0 {
		node.Body = e.buildBlocks(ins.Body)
	}

	return node
}

func category(k ir.Kind) string {
	switch k {
	case ir.KindMove, ir.KindTurn:
		return CategoryMotion
	case ir.KindSay:
		return CategoryLooks
	case ir.KindIf:
		return CategorySensing
	default:
		return CategoryControl
	}
}
