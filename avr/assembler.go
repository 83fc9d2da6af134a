// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package avr

import (
	"errors"
	"io"
	"maps"

	"github.com/ezrec/avrasm/translate"
)

// State of an assembly run.
type State int

//go:generate go tool stringer -linecomment -type=State
const (
	STATE_PARSING   = State(0) // parsing
	STATE_RESOLVING = State(1) // resolving
	STATE_ENCODED   = State(2) // encoded
	STATE_FAILED    = State(3) // failed
)

// Predefined system equates
var sysEquate = map[string]int32{
	"SREG": 0x3f,
	"SPH":  0x3e,
	"SPL":  0x3d,
}

// Predefined register aliases for the indirect address register halves.
var sysRegister = map[string]int{
	"XL": 26,
	"XH": 27,
	"YL": 28,
	"YH": 29,
	"ZL": 30,
	"ZH": 31,
}

// Assembler is a two pass assembler for the AVR instruction set.
//
// Each call to Assemble is an independent run; symbols and segments
// do not survive between runs.
type Assembler struct {
	Verbose      bool            // If set, verbosely logs the assembler actions.
	StrictEquate bool            // If set, redeclaring a constant is fatal.
	Table        *OperationTable // Operation table; nil selects Operations.

	State    State   // State of the last run.
	Warnings []error // Advisories from the last run.

	predefine map[string]int32
}

// Predefine declares a constant for every subsequent run.
func (asm *Assembler) Predefine(name string, value int32) {
	if asm.predefine == nil {
		asm.predefine = map[string]int32{name: value}
	} else {
		asm.predefine[name] = value
	}
}

// Assemble parses the source from input, resolves labels and encodes
// every instruction. On any error no program is returned, and the error
// includes all collected lexical errors.
func (asm *Assembler) Assemble(input io.Reader) (prog *Program, err error) {
	asm.State = STATE_PARSING
	asm.Warnings = nil

	defer func() {
		if err != nil {
			prog = nil
			asm.State = STATE_FAILED
		}
	}()

	src, err := io.ReadAll(input)
	if err != nil {
		return
	}

	table := asm.Table
	if table == nil {
		table = Operations
	}

	symbols := NewSymbolTable()
	symbols.Strict = asm.StrictEquate
	maps.Copy(symbols.constants, sysEquate)
	maps.Copy(symbols.constants, asm.predefine)
	maps.Copy(symbols.aliases, sysRegister)

	lexer := NewLexer(string(src), symbols)
	parser := NewParser(lexer, symbols, table)
	parser.Verbose = asm.Verbose

	err = parser.Parse()
	asm.Warnings = parser.Warnings
	if len(lexer.Errors) > 0 {
		err = errors.Join(append(lexer.Errors, err)...)
	}
	if err != nil {
		return
	}

	asm.State = STATE_RESOLVING
	segments := parser.Segments()
	for _, seg := range segments {
		err = asm.resolve(seg, lexer)
		if err != nil {
			return
		}
	}

	for _, seg := range segments {
		for _, item := range seg.Items {
			inst, ok := item.(*Instruction)
			if !ok {
				continue
			}
			err = inst.Encode()
			if err != nil {
				err = &ErrSyntax{LineNo: inst.LineNo, Line: lexer.Line(inst.LineNo), Err: err}
				return
			}
		}
	}

	asm.State = STATE_ENCODED
	prog = &Program{
		Segments: segments,
	}

	return
}

// resolve replaces label references in a segment's items with the
// label addresses of that same segment.
func (asm *Assembler) resolve(seg *Segment, lexer *Lexer) (err error) {
	for _, item := range seg.Items {
		switch it := item.(type) {
		case *Instruction:
			err = it.Resolve(seg)
		case *DefinedWords:
			err = it.Resolve(seg)
		}
		if err != nil {
			lineno := item.Line()
			err = &ErrSyntax{LineNo: lineno, Line: lexer.Line(lineno), Err: err}
			return
		}
		if asm.Verbose {
			translate.Logf("%v: %v", seg.Kind, item)
		}
	}

	return
}
