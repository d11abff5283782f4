package ir

// Program is the immutable internal representation of a block program
type Program struct {
	ID           string
	Instructions []*Instruction
}

// NewProgram creates a new Program with the given top-level sequence
func NewProgram(id string, instructions ...*Instruction) *Program {
	return &Program{
		ID:           id,
		Instructions: instructions,
	}
}

// NewInstruction creates a new Instruction with the default parameter for its kind
func NewInstruction(id InstructionID, kind Kind) *Instruction {
	return &Instruction{
		ID:    id,
		Kind:  kind,
		Param: DefaultParam(kind),
		Body:  nil,
	}
}

// Walk visits every instruction in pre-order. Returning false from fn stops
// the walk. Cycles are not detected here; run Validate first.
func (p *Program) Walk(fn func(ins *Instruction, depth int) bool) {
	walk(p.Instructions, 0, fn)
}

func walk(seq []*Instruction, depth int, fn func(*Instruction, int) bool) bool {
	for _, ins := range seq {
		if ins == nil {
			continue
		}
		if !fn(ins, depth) {
			return false
		}
		if !walk(ins.Body, depth+1, fn) {
			return false
		}
	}
	return true
}

// Find returns the instruction with the given ID, or nil if not found
func (p *Program) Find(id InstructionID) *Instruction {
	var found *Instruction
	p.Walk(func(ins *Instruction, _ int) bool {
		if ins.ID == id {
			found = ins
			return false
		}
		return true
	})
	return found
}

// IDs returns all instruction IDs in pre-order
func (p *Program) IDs() []InstructionID {
	var ids []InstructionID
	p.Walk(func(ins *Instruction, _ int) bool {
		ids = append(ids, ins.ID)
		return true
	})
	return ids
}

// Len returns the number of instructions in the tree
func (p *Program) Len() int {
	n := 0
	p.Walk(func(*Instruction, int) bool {
		n++
		return true
	})
	return n
}

// Clone returns a deep copy so that parameter edits never alias another program
func (p *Program) Clone() *Program {
	return &Program{
		ID:           p.ID,
		Instructions: cloneSeq(p.Instructions),
	}
}

func cloneSeq(seq []*Instruction) []*Instruction {
	if seq == nil {
		return nil
	}
	out := make([]*Instruction, 0, len(seq))
	for _, ins := range seq {
		if ins == nil {
			continue
		}
		c := *ins
		c.Body = cloneSeq(ins.Body)
		out = append(out, &c)
	}
	return out
}
