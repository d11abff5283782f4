package ir

import (
	"strings"
	"testing"
	"time"
)

func move(id InstructionID, steps float64) *Instruction {
	ins := NewInstruction(id, KindMove)
	ins.Param.Steps = steps
	return ins
}

func TestValidate_ValidProgram(t *testing.T) {
	loop := NewInstruction("loop", KindRepeat)
	loop.Param.Times = 4
	turn := NewInstruction("turn", KindTurn)
	loop.Body = []*Instruction{move("step", 40), turn}

	program := NewProgram("square", loop)

	if err := Validate(program); err != nil {
		t.Errorf("expected no error, got: %v", err)
	}
}

func TestValidate_EmptyProgram(t *testing.T) {
	if err := Validate(NewProgram("empty")); err != nil {
		t.Errorf("expected empty program to be valid, got: %v", err)
	}
}

func TestValidate_MissingProgramID(t *testing.T) {
	err := Validate(NewProgram("", move("a", 10)))
	if err == nil {
		t.Fatal("expected error for missing program id")
	}
	if !err.Has(ErrCodeMissingProgramID) {
		t.Errorf("expected MISSING_PROGRAM_ID error, got: %v", err)
	}
}

func TestValidate_MissingID(t *testing.T) {
	err := Validate(NewProgram("p", move("", 10)))
	if err == nil {
		t.Fatal("expected error for missing instruction id")
	}
	if !err.Has(ErrCodeMissingID) {
		t.Errorf("expected MISSING_ID error, got: %v", err)
	}
}

func TestValidate_DuplicateID(t *testing.T) {
	loop := NewInstruction("a", KindForever)
	loop.Body = []*Instruction{move("a", 10)}

	err := Validate(NewProgram("p", loop))
	if err == nil {
		t.Fatal("expected error for duplicate id")
	}
	if !err.Has(ErrCodeDuplicateID) {
		t.Errorf("expected DUPLICATE_ID error, got: %v", err)
	}
	if !strings.Contains(err.Error(), "instructions.0") {
		t.Errorf("expected message to point at first use, got: %v", err)
	}
}

func TestValidate_BodyNotAllowed(t *testing.T) {
	leaf := NewInstruction("wait", KindWait)
	leaf.Body = []*Instruction{move("a", 10)}

	err := Validate(NewProgram("p", leaf))
	if err == nil {
		t.Fatal("expected error for leaf with body")
	}
	if !err.Has(ErrCodeBodyNotAllowed) {
		t.Errorf("expected BODY_NOT_ALLOWED error, got: %v", err)
	}
}

func TestValidate_ParamOutOfRange(t *testing.T) {
	tests := []struct {
		name string
		ins  *Instruction
	}{
		{"move", move("m", 33)},
		{"turn", &Instruction{ID: "t", Kind: KindTurn, Param: Param{Degrees: 7}}},
		{"wait", &Instruction{ID: "w", Kind: KindWait, Param: Param{Duration: 3 * time.Millisecond}}},
		{"say", &Instruction{ID: "s", Kind: KindSay, Param: Param{Message: "free text"}}},
		{"repeat", &Instruction{ID: "r", Kind: KindRepeat, Param: Param{Times: 7}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(NewProgram("p", tt.ins))
			if err == nil {
				t.Fatal("expected error for out of range parameter")
			}
			if !err.Has(ErrCodeParamOutOfRange) {
				t.Errorf("expected PARAM_OUT_OF_RANGE error, got: %v", err)
			}
		})
	}
}

func TestValidate_UnknownPredicateAllowed(t *testing.T) {
	cond := &Instruction{ID: "c", Kind: KindIf, Param: Param{Predicate: "raining"}}
	if err := Validate(NewProgram("p", cond)); err != nil {
		t.Errorf("expected unknown predicate to be accepted, got: %v", err)
	}
}

func TestValidate_UnknownKind(t *testing.T) {
	err := Validate(NewProgram("p", &Instruction{ID: "x", Kind: Kind(42)}))
	if err == nil {
		t.Fatal("expected error for unknown kind")
	}
	if !err.Has(ErrCodeUnknownKind) {
		t.Errorf("expected UNKNOWN_KIND error, got: %v", err)
	}
}

func TestValidate_Cycle(t *testing.T) {
	loop := NewInstruction("loop", KindForever)
	loop.Body = []*Instruction{loop}

	err := Validate(NewProgram("p", loop))
	if err == nil {
		t.Fatal("expected error for cyclic tree")
	}
	if !err.Has(ErrCodeCycle) {
		t.Errorf("expected CYCLE error, got: %v", err)
	}
}

func TestValidate_NilInstruction(t *testing.T) {
	err := Validate(NewProgram("p", nil))
	if err == nil || !err.Has(ErrCodeNilInstruction) {
		t.Errorf("expected NIL_INSTRUCTION error, got: %v", err)
	}
}

func TestValidationError_String(t *testing.T) {
	err := &ValidationError{}
	err.AddIssue("TEST_CODE", "test message", "path", "to", "issue")

	str := err.Error()
	if !strings.Contains(str, "TEST_CODE") {
		t.Errorf("expected error string to contain code, got: %s", str)
	}
	if !strings.Contains(str, "test message") {
		t.Errorf("expected error string to contain message, got: %s", str)
	}
	if !strings.Contains(str, "path.to.issue") {
		t.Errorf("expected error string to contain path, got: %s", str)
	}
}

func TestValidationError_MultipleIssues(t *testing.T) {
	err := Validate(NewProgram("", move("", 33)))
	if err == nil {
		t.Fatal("expected errors")
	}
	if len(err.Issues) != 3 {
		t.Fatalf("expected 3 issues, got %d: %v", len(err.Issues), err)
	}
	if !strings.Contains(err.Error(), "validation failed with 3 issues") {
		t.Errorf("unexpected summary: %s", err.Error())
	}
}
