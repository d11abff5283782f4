package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// SyntaxError reports a problem in block script source.
type SyntaxError struct {
	Line int
	Msg  string
}

// Error implements the error interface
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokWord
	tokString
	tokLBrace
	tokRBrace
	tokEnd // newline or ';'
	tokLabel
)

type token struct {
	kind tokenKind
	text string
	line int
}

// ParseScript parses block script source into a ProgramSchema.
//
// Grammar, one block per line or separated by ';':
//
//	move 40
//	turn -90 @left
//	wait 500ms
//	say "Hello!"
//	repeat 4 { move 40; turn 90 }
//	forever { if at_goal { say "I did it!" } }
//
// '#' starts a comment that runs to the end of the line.
func ParseScript(id, src string) (*ProgramSchema, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &scriptParser{toks: toks}
	blocks, err := p.sequence(false)
	if err != nil {
		return nil, err
	}
	return &ProgramSchema{ID: id, Blocks: blocks}, nil
}

type scriptParser struct {
	toks []token
	pos  int
}

func (p *scriptParser) peek() token {
	return p.toks[p.pos]
}

func (p *scriptParser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

// sequence parses blocks until EOF, or until the closing brace when nested.
func (p *scriptParser) sequence(nested bool) ([]*BlockSchema, error) {
	var blocks []*BlockSchema
	for {
		t := p.peek()
		switch t.kind {
		case tokEnd:
			p.next()
			continue
		case tokEOF:
			if nested {
				return nil, &SyntaxError{Line: t.line, Msg: "missing '}'"}
			}
			return blocks, nil
		case tokRBrace:
			if !nested {
				return nil, &SyntaxError{Line: t.line, Msg: "unexpected '}'"}
			}
			p.next()
			return blocks, nil
		case tokWord:
			block, err := p.block()
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, block)
		default:
			return nil, &SyntaxError{Line: t.line, Msg: fmt.Sprintf("expected block keyword, got %q", t.text)}
		}
	}
}

func (p *scriptParser) block() (*BlockSchema, error) {
	kw := p.next()
	kind := strings.ToLower(kw.text)
	block := &BlockSchema{Kind: kind, Line: kw.line}

	container := false
	switch kind {
	case "move", "turn", "wait", "say":
	case "repeat", "if", "forever":
		container = true
	default:
		return nil, &SyntaxError{Line: kw.line, Msg: fmt.Sprintf("unknown block %q", kw.text)}
	}

	if kind != "forever" {
		arg := p.peek()
		if arg.kind != tokWord && arg.kind != tokString {
			return nil, &SyntaxError{Line: kw.line, Msg: fmt.Sprintf("%s needs a value", kind)}
		}
		p.next()
		block.Arg = arg.text
	}

	if p.peek().kind == tokLabel {
		block.Name = p.next().text
	}

	if container {
		open := p.next()
		if open.kind != tokLBrace {
			return nil, &SyntaxError{Line: open.line, Msg: fmt.Sprintf("%s needs a '{' body", kind)}
		}
		body, err := p.sequence(true)
		if err != nil {
			return nil, err
		}
		block.Body = body
	}

	switch t := p.peek(); t.kind {
	case tokEnd, tokEOF, tokRBrace:
	default:
		return nil, &SyntaxError{Line: t.line, Msg: fmt.Sprintf("unexpected %q after %s block", t.text, kind)}
	}
	return block, nil
}

func tokenize(src string) ([]token, error) {
	var toks []token
	line := 1
	runes := []rune(src)

	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case r == '\n':
			toks = append(toks, token{kind: tokEnd, text: "\\n", line: line})
			line++
			i++
		case r == ';':
			toks = append(toks, token{kind: tokEnd, text: ";", line: line})
			i++
		case unicode.IsSpace(r):
			i++
		case r == '#':
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
		case r == '{':
			toks = append(toks, token{kind: tokLBrace, text: "{", line: line})
			i++
		case r == '}':
			toks = append(toks, token{kind: tokRBrace, text: "}", line: line})
			i++
		case r == '"':
			j := i + 1
			for j < len(runes) && runes[j] != '"' {
				if runes[j] == '\\' {
					j++
				}
				if j < len(runes) && runes[j] == '\n' {
					return nil, &SyntaxError{Line: line, Msg: "unterminated string"}
				}
				j++
			}
			if j >= len(runes) {
				return nil, &SyntaxError{Line: line, Msg: "unterminated string"}
			}
			text, err := strconv.Unquote(string(runes[i : j+1]))
			if err != nil {
				return nil, &SyntaxError{Line: line, Msg: fmt.Sprintf("bad string: %v", err)}
			}
			toks = append(toks, token{kind: tokString, text: text, line: line})
			i = j + 1
		case r == '@':
			j := i + 1
			for j < len(runes) && isWordRune(runes[j]) {
				j++
			}
			if j == i+1 {
				return nil, &SyntaxError{Line: line, Msg: "empty label"}
			}
			toks = append(toks, token{kind: tokLabel, text: string(runes[i+1 : j]), line: line})
			i = j
		case isWordRune(r):
			j := i
			for j < len(runes) && isWordRune(runes[j]) {
				j++
			}
			toks = append(toks, token{kind: tokWord, text: string(runes[i:j]), line: line})
			i = j
		default:
			return nil, &SyntaxError{Line: line, Msg: fmt.Sprintf("unexpected character %q", r)}
		}
	}

	return append(toks, token{kind: tokEOF, line: line}), nil
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' || r == '+' || r == '.'
}
