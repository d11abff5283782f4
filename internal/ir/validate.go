package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidationIssue represents a single validation problem
type ValidationIssue struct {
	Code    string   // e.g., "DUPLICATE_ID", "PARAM_OUT_OF_RANGE"
	Message string   // Human-readable description
	Path    []string // e.g., ["instructions", "0", "body", "1"]
}

// String returns a human-readable representation of the issue
func (v ValidationIssue) String() string {
	if len(v.Path) > 0 {
		return fmt.Sprintf("[%s] %s (at %s)", v.Code, v.Message, strings.Join(v.Path, "."))
	}
	return fmt.Sprintf("[%s] %s", v.Code, v.Message)
}

// ValidationError contains all validation issues found during validation
type ValidationError struct {
	Issues []ValidationIssue
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "validation failed"
	}
	if len(e.Issues) == 1 {
		return e.Issues[0].String()
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("validation failed with %d issues:\n", len(e.Issues)))
	for i, issue := range e.Issues {
		b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, issue.String()))
	}
	return b.String()
}

// AddIssue adds a validation issue to the error
func (e *ValidationError) AddIssue(code, message string, path ...string) {
	e.Issues = append(e.Issues, ValidationIssue{
		Code:    code,
		Message: message,
		Path:    path,
	})
}

// HasIssues returns true if there are any validation issues
func (e *ValidationError) HasIssues() bool {
	return len(e.Issues) > 0
}

// Has reports whether an issue with the given code was recorded
func (e *ValidationError) Has(code string) bool {
	for _, issue := range e.Issues {
		if issue.Code == code {
			return true
		}
	}
	return false
}

// Validation error codes
const (
	ErrCodeMissingProgramID = "MISSING_PROGRAM_ID"
	ErrCodeMissingID        = "MISSING_ID"
	ErrCodeDuplicateID      = "DUPLICATE_ID"
	ErrCodeUnknownKind      = "UNKNOWN_KIND"
	ErrCodeBodyNotAllowed   = "BODY_NOT_ALLOWED"
	ErrCodeParamOutOfRange  = "PARAM_OUT_OF_RANGE"
	ErrCodeCycle            = "CYCLE"
	ErrCodeNilInstruction   = "NIL_INSTRUCTION"
)

// Validate checks the program tree for errors. An empty program is valid.
func Validate(p *Program) *ValidationError {
	errs := &ValidationError{}

	if p.ID == "" {
		errs.AddIssue(ErrCodeMissingProgramID, "program id is required")
	}

	v := &validator{
		errs:   errs,
		seen:   make(map[InstructionID][]string),
		onPath: make(map[*Instruction]bool),
	}
	v.sequence(p.Instructions, []string{"instructions"})

	if errs.HasIssues() {
		return errs
	}
	return nil
}

type validator struct {
	errs   *ValidationError
	seen   map[InstructionID][]string
	onPath map[*Instruction]bool
}

func (v *validator) sequence(seq []*Instruction, path []string) {
	for i, ins := range seq {
		insPath := appendPath(path, strconv.Itoa(i))
		if ins == nil {
			v.errs.AddIssue(ErrCodeNilInstruction, "instruction is nil", insPath...)
			continue
		}
		v.instruction(ins, insPath)
	}
}

func (v *validator) instruction(ins *Instruction, path []string) {
	if v.onPath[ins] {
		v.errs.AddIssue(ErrCodeCycle,
			fmt.Sprintf("instruction '%s' contains itself", ins.ID),
			path...)
		return
	}

	if ins.ID == "" {
		v.errs.AddIssue(ErrCodeMissingID, "instruction id is required", path...)
	} else if first, dup := v.seen[ins.ID]; dup {
		v.errs.AddIssue(ErrCodeDuplicateID,
			fmt.Sprintf("instruction id '%s' already used at %s", ins.ID, strings.Join(first, ".")),
			path...)
	} else {
		v.seen[ins.ID] = path
	}

	if ins.Kind.String() == "unknown" {
		v.errs.AddIssue(ErrCodeUnknownKind,
			fmt.Sprintf("instruction '%s' has unknown kind %d", ins.ID, int(ins.Kind)),
			path...)
		return
	}

	if !InRange(ins.Kind, ins.Param) {
		v.errs.AddIssue(ErrCodeParamOutOfRange,
			fmt.Sprintf("%s parameter of '%s' is not one of the allowed values", ins.Kind, ins.ID),
			appendPath(path, "param")...)
	}

	if !ins.Kind.IsContainer() {
		if len(ins.Body) > 0 {
			v.errs.AddIssue(ErrCodeBodyNotAllowed,
				fmt.Sprintf("%s instruction '%s' cannot have a body", ins.Kind, ins.ID),
				appendPath(path, "body")...)
		}
		return
	}

	v.onPath[ins] = true
	v.sequence(ins.Body, appendPath(path, "body"))
	delete(v.onPath, ins)
}

// appendPath copies before appending so sibling paths never share a backing array
func appendPath(path []string, elems ...string) []string {
	out := make([]string, 0, len(path)+len(elems))
	out = append(out, path...)
	return append(out, elems...)
}
