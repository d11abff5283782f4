// Package parser turns authored block programs into schemas. Two front ends
// share one schema: struct definitions read through reflection, and the
// textual block script.
package parser

import (
	"fmt"
	"reflect"
	"strings"
)

// BlockSchema represents a parsed block before parameter conversion.
type BlockSchema struct {
	Name string // explicit id, empty when the block is anonymous
	Kind string // block keyword: move, turn, wait, say, repeat, forever, if
	Arg  string // raw parameter text
	Body []*BlockSchema
	Line int // source line for script blocks, 0 for struct blocks
}

// ProgramSchema represents the complete parsed program.
type ProgramSchema struct {
	ID     string
	Blocks []*BlockSchema
}

// Marker type names for detection.
const (
	MarkerProgram = "ProgramDef"
	MarkerMove    = "MoveBlock"
	MarkerTurn    = "TurnBlock"
	MarkerWait    = "WaitBlock"
	MarkerSay     = "SayBlock"
	MarkerRepeat  = "RepeatBlock"
	MarkerForever = "ForeverBlock"
	MarkerIf      = "IfBlock"
)

// markerInfo maps a marker to its block keyword and the tag key holding its parameter.
type markerInfo struct {
	kind   string
	argTag string
}

var leafMarkers = map[string]markerInfo{
	MarkerMove: {"move", "steps"},
	MarkerTurn: {"turn", "degrees"},
	MarkerWait: {"wait", "for"},
	MarkerSay:  {"say", "text"},
}

var containerMarkers = map[string]markerInfo{
	MarkerRepeat:  {"repeat", "times"},
	MarkerForever: {"forever", ""},
	MarkerIf:      {"if", "when"},
}

// ParseProgramStruct parses a struct type into a ProgramSchema.
// The struct must have an embedded ProgramDef marker type; every other
// block field is a top-level block, in field order.
func ParseProgramStruct(t reflect.Type) (*ProgramSchema, error) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("expected struct, got %s", t.Kind())
	}

	schema := &ProgramSchema{}

	found := false
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if isMarkerType(field.Type, MarkerProgram) {
			schema.ID = field.Tag.Get("id")
			if schema.ID == "" {
				return nil, fmt.Errorf("invalid program tag: missing required 'id' tag")
			}
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("struct must embed blockkit.ProgramDef")
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if isMarkerType(field.Type, MarkerProgram) {
			continue
		}

		block, err := parseBlockField(field)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}
		if block != nil {
			schema.Blocks = append(schema.Blocks, block)
		}
	}

	return schema, nil
}

// parseBlockField parses a struct field into a BlockSchema. Fields that are
// not blocks return nil.
func parseBlockField(field reflect.StructField) (*BlockSchema, error) {
	fieldType := field.Type
	if fieldType.Kind() == reflect.Ptr {
		fieldType = fieldType.Elem()
	}
	if fieldType.Kind() != reflect.Struct {
		return nil, nil
	}

	if marker, ok := leafMarkers[fieldType.Name()]; ok {
		return &BlockSchema{
			Name: toSnakeCase(field.Name),
			Kind: marker.kind,
			Arg:  strings.TrimSpace(field.Tag.Get(marker.argTag)),
		}, nil
	}
	if marker, ok := containerMarkers[fieldType.Name()]; ok {
		// Bare container marker used as a field: a container with an empty body
		return &BlockSchema{
			Name: toSnakeCase(field.Name),
			Kind: marker.kind,
			Arg:  argFromTag(field.Tag, marker),
		}, nil
	}

	markerName, markerTag, hasMarker := findEmbeddedMarker(fieldType)
	if !hasMarker {
		return nil, nil
	}

	// Use parent tag if marker has no tag
	tag := markerTag
	if tag == "" {
		tag = field.Tag
	}
	marker := containerMarkers[markerName]
	block := &BlockSchema{
		Name: toSnakeCase(field.Name),
		Kind: marker.kind,
		Arg:  argFromTag(tag, marker),
	}

	for i := 0; i < fieldType.NumField(); i++ {
		child := fieldType.Field(i)
		if child.Anonymous && isMarkerType(child.Type, markerName) {
			continue
		}
		childBlock, err := parseBlockField(child)
		if err != nil {
			return nil, fmt.Errorf("child %s: %w", child.Name, err)
		}
		if childBlock != nil {
			block.Body = append(block.Body, childBlock)
		}
	}

	return block, nil
}

func argFromTag(tag reflect.StructTag, marker markerInfo) string {
	if marker.argTag == "" {
		return ""
	}
	return strings.TrimSpace(tag.Get(marker.argTag))
}

// findEmbeddedMarker finds an embedded container marker in a struct.
func findEmbeddedMarker(t reflect.Type) (string, reflect.StructTag, bool) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.Anonymous {
			continue
		}
		for marker := range containerMarkers {
			if isMarkerType(field.Type, marker) {
				return marker, field.Tag, true
			}
		}
	}
	return "", "", false
}

// isMarkerType checks if a type matches a marker type name.
func isMarkerType(t reflect.Type, markerName string) bool {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name() == markerName
}

// toSnakeCase converts CamelCase to snake_case.
// Handles acronyms properly: HTTPServer -> http_server, APIGateway -> api_gateway.
func toSnakeCase(s string) string {
	if s == "" {
		return ""
	}

	runes := []rune(s)
	var result strings.Builder
	result.Grow(len(s) + 5)

	for i, r := range runes {
		isUpper := r >= 'A' && r <= 'Z'

		if i > 0 && isUpper {
			prevIsLower := runes[i-1] >= 'a' && runes[i-1] <= 'z'
			prevIsDigit := runes[i-1] >= '0' && runes[i-1] <= '9'
			nextIsLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'

			if prevIsLower || prevIsDigit || nextIsLower {
				result.WriteByte('_')
			}
		}

		if isUpper {
			result.WriteRune(r + 32)
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}
