package avr

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestParser(src string) *Parser {
	symbols := NewSymbolTable()
	return NewParser(NewLexer(src, symbols), symbols, Operations)
}

func TestParser_Line(t *testing.T) {
	assert := assert.New(t)

	p := newTestParser("ADD r1, r2\n\nstart: nop\n")

	inst, done, err := p.ParseLine()
	assert.NoError(err)
	assert.False(done)
	assert.Equal("ADD", inst.Spec.Mnemonic)
	assert.Equal([]Operand{RegisterOperand(1), RegisterOperand(2)}, inst.Operands)
	assert.Equal(0, inst.Offset)
	assert.Equal(1, inst.LineNo)

	inst, done, err = p.ParseLine()
	assert.NoError(err)
	assert.False(done)
	assert.Nil(inst)

	inst, _, err = p.ParseLine()
	assert.NoError(err)
	assert.Equal("NOP", inst.Spec.Mnemonic)
	assert.Equal(2, inst.Offset)
	offset, ok := p.Current().Label("start")
	assert.True(ok)
	assert.Equal(inst.Offset, offset)

	_, done, err = p.ParseLine()
	assert.NoError(err)
	assert.True(done)
}

// argumentsFor spells arity legal operands for an operation.
func argumentsFor(op *OperationSpec) (args []string) {
	for _, kind := range op.Operands {
		lo, _ := kind.Range()
		switch kind.Class {
		case CLASS_REGISTER:
			args = append(args, fmt.Sprintf("r%d", lo))
		case CLASS_INDIRECT:
			args = append(args, kind.Symbol)
		default:
			args = append(args, "0")
		}
	}
	return
}

func TestParser_Arity(t *testing.T) {
	for name, op := range Operations.All() {
		assert := assert.New(t)

		args := argumentsFor(op)
		p := newTestParser(name + " " + strings.Join(args, ", "))
		inst, _, err := p.ParseLine()
		assert.NoError(err, name)
		if err == nil {
			assert.Equal(op, inst.Spec)
		}

		args = append(args, "r1")
		p = newTestParser(name + " " + strings.Join(args, ", "))
		_, _, err = p.ParseLine()
		assert.ErrorIs(err, ErrArgumentCount, name)

		if op.Arity() > 0 {
			p = newTestParser(name)
			_, _, err = p.ParseLine()
			assert.ErrorIs(err, ErrArgumentCount, name)
		}
	}
}

func TestParser_Operands(t *testing.T) {
	assert := assert.New(t)

	tests := []struct {
		line string
		err  error
	}{
		{"LDI r16, r1", ErrExpectedNumeric},
		{"ADD r1, 5", ErrExpectedRegister},
		{"ADD r1, loop", ErrExpectedRegister},
		{"LDI r15, 1", ErrRegisterRange},
		{"LDI r16, 256", ErrConstantRange},
		{"LDI r16, -1", ErrConstantNegative},
		{"LD r1, r2", ErrIndirectInvalid},
		{"LD r1, W", ErrIndirectInvalid},
		{"LDD r1, Y+64", ErrConstantRange},
		{"ADD r1, \"r2\"", ErrOperandSyntax},
		{"ADD r1 r2", ErrOperandSyntax},
		{"ADD r1, -r2", ErrOperandSyntax},
		{".CSEG foo", ErrLineExtra},
		{"= 5", ErrStatementSyntax},
	}

	for _, test := range tests {
		_, _, err := newTestParser(test.line).ParseLine()
		assert.ErrorIs(err, test.err, test.line)

		var syntax *ErrSyntax
		if assert.True(errors.As(err, &syntax), test.line) {
			assert.Equal(1, syntax.LineNo)
			assert.Equal(test.line, syntax.Line)
		}
	}

	_, _, err := newTestParser("ADD r32, r1").ParseLine()
	assert.True(errors.As(err, new(ErrRegisterInvalid)))

	_, _, err = newTestParser("\n  frob r1").ParseLine()
	assert.NoError(err)
	_, _, err = newTestParser("frob r1").ParseLine()
	var unknown ErrOpcodeUnknown
	assert.True(errors.As(err, &unknown))
	assert.Equal(ErrOpcodeUnknown("frob"), unknown)

	var operr *ErrOperand
	_, _, err = newTestParser("LDI r16, r1").ParseLine()
	assert.True(errors.As(err, &operr))
	assert.Equal("LDI", operr.Mnemonic)
	assert.Equal(1, operr.Index)
}

func TestParser_Indirect(t *testing.T) {
	assert := assert.New(t)

	p := newTestParser("LDD r1, Y+5\nSTD z+3, r2\nld r0, x")

	inst, _, err := p.ParseLine()
	assert.NoError(err)
	assert.Equal([]Operand{RegisterOperand(1), RegisterOperand(POINTER_Y), ConstantOperand(5)}, inst.Operands)

	inst, _, err = p.ParseLine()
	assert.Error(err)
	assert.Nil(inst)

	p = newTestParser("ld r0, x")
	inst, _, err = p.ParseLine()
	assert.NoError(err)
	assert.Equal([]Operand{RegisterOperand(0), RegisterOperand(POINTER_X)}, inst.Operands)
}

func TestParser_Equate(t *testing.T) {
	assert := assert.New(t)

	p := newTestParser(strings.Join([]string{
		".EQU X = 10",
		"LDI r16, X",
		"X = 20",
		"LDI r17, X",
		"Y = $(X + 1)",
		"LDI r18, Y",
		"Z = -X",
	}, "\n"))

	var insts []*Instruction
	for {
		inst, done, err := p.ParseLine()
		assert.NoError(err)
		if err != nil || done {
			break
		}
		if inst != nil {
			insts = append(insts, inst)
		}
	}

	if assert.Len(insts, 3) {
		assert.Equal(ConstantOperand(10), insts[0].Operands[1])
		assert.Equal(ConstantOperand(20), insts[1].Operands[1])
		assert.Equal(ConstantOperand(21), insts[2].Operands[1])
	}

	if assert.Len(p.Warnings, 1) {
		var redeclared ErrRedeclared
		assert.True(errors.As(p.Warnings[0], &redeclared))
		assert.Equal(ErrRedeclared("X"), redeclared)
	}

	value, ok := p.symbols.Constant("Z")
	assert.True(ok)
	assert.Equal(int32(-20), value)
}

func TestParser_EquateErrors(t *testing.T) {
	assert := assert.New(t)

	_, _, err := newTestParser(".EQU A = B").ParseLine()
	assert.True(errors.As(err, new(ErrUnknownVariable)))

	_, _, err = newTestParser("A = $(B * 2)").ParseLine()
	assert.True(errors.As(err, new(ErrUnknownVariable)))

	_, _, err = newTestParser(".EQU A 5").ParseLine()
	assert.ErrorIs(err, ErrEquateSyntax)

	_, _, err = newTestParser(".EQU r1 = 5").ParseLine()
	assert.ErrorIs(err, ErrEquateSyntax)

	p := newTestParser("A = 1\nA = 2")
	p.symbols.Strict = true
	assert.ErrorIs(p.Parse(), ErrEquateDuplicate)
}

func TestParser_Define(t *testing.T) {
	assert := assert.New(t)

	p := newTestParser(".DEF acc = r16\nLDI acc, 1\n.def tmp = acc\nmov tmp, r1")
	assert.NoError(p.Parse())

	items := p.Current().Items
	if assert.Len(items, 2) {
		assert.Equal([]Operand{RegisterOperand(16), ConstantOperand(1)}, items[0].(*Instruction).Operands)
		assert.Equal([]Operand{RegisterOperand(16), RegisterOperand(1)}, items[1].(*Instruction).Operands)
	}

	_, _, err := newTestParser(".DEF acc = 5").ParseLine()
	assert.ErrorIs(err, ErrDefineSyntax)

	_, _, err = newTestParser(".DEF acc = r40").ParseLine()
	assert.Equal(ErrRegisterInvalid(40), errors.Unwrap(err))
}

func TestParser_Segments(t *testing.T) {
	assert := assert.New(t)

	p := newTestParser(strings.Join([]string{
		"nop",
		".DSEG",
		"buf: .BYTE 4",
		"len: .BYTE 2",
		".ESEG",
		".ORG 0x10",
		"msg: .DB \"hi\", 0",
		"ptr: .DW msg, -1",
		".CSEG",
		"loop: rjmp loop",
	}, "\n"))
	assert.NoError(p.Parse())

	segs := p.Segments()
	if !assert.Len(segs, 3) {
		return
	}
	code, eeprom, sram := segs[0], segs[1], segs[2]

	assert.Equal(SEGMENT_CODE, code.Kind)
	assert.Len(code.Items, 2)
	assert.Equal(map[string]int{"loop": 2}, code.Labels)

	assert.Equal(SEGMENT_SRAM, sram.Kind)
	assert.Empty(sram.Items)
	assert.Equal(map[string]int{"buf": 0, "len": 4}, sram.Labels)
	assert.Equal(6, sram.Offset)

	assert.Equal(SEGMENT_EEPROM, eeprom.Kind)
	assert.Equal(0x10, *eeprom.Origin)
	assert.Equal(map[string]int{"msg": 0x10, "ptr": 0x14}, eeprom.Labels)
	if assert.Len(eeprom.Items, 2) {
		assert.Equal([]byte{'h', 'i', 0}, eeprom.Items[0].(*DefinedBytes).Data)
		assert.Equal([]Operand{SymbolOperand("msg"), ConstantOperand(-1)}, eeprom.Items[1].(*DefinedWords).Values)
	}
}

func TestParser_DataErrors(t *testing.T) {
	assert := assert.New(t)

	tests := []struct {
		line string
		err  error
	}{
		{".BYTE 4", ErrReserveCode},
		{".DB 300", ErrByteRange},
		{".DB r1", ErrExpectedNumeric},
		{".DB", ErrDataSyntax},
		{".DW \"no\"", ErrDataSyntax},
		{".DW 70000", ErrWordRange},
		{".ORG label", ErrUnknownVariable("label")},
	}

	for _, test := range tests {
		_, _, err := newTestParser(test.line).ParseLine()
		assert.ErrorIs(err, test.err, test.line)
	}

	p := newTestParser(".ORG 4\n.ORG 2")
	assert.ErrorIs(p.Parse(), ErrOriginBackwards)
}

func TestParser_Expression(t *testing.T) {
	assert := assert.New(t)

	p := newTestParser("BASE = 0x20\nLDI r16, $(BASE | 3)\nLDI r17, $(BASE >> 4)")
	assert.NoError(p.Parse())

	items := p.Current().Items
	if assert.Len(items, 2) {
		assert.Equal(ConstantOperand(0x23), items[0].(*Instruction).Operands[1])
		assert.Equal(ConstantOperand(2), items[1].(*Instruction).Operands[1])
	}
}

func TestParser_DefineBytesCharacters(t *testing.T) {
	assert := assert.New(t)

	p := newTestParser(".ESEG\n.DB \"né\", 1")
	assert.NoError(p.Parse())
	items := p.Current().Items
	if assert.Len(items, 1) {
		assert.Equal([]byte{'n', 0xe9, 1}, items[0].(*DefinedBytes).Data)
	}

	_, _, err := newTestParser(".DB \"5€\"").ParseLine()
	assert.ErrorIs(err, ErrByteRange)
}

func TestParser_RegisterSymbol(t *testing.T) {
	assert := assert.New(t)

	p := newTestParser(".DEF acc = r16\nmov acx, r1")
	err := p.Parse()
	assert.ErrorIs(err, ErrExpectedRegister)

	var symbol ErrRegisterSymbol
	if assert.True(errors.As(err, &symbol)) {
		assert.Equal(ErrRegisterSymbol("acx"), symbol)
	}
	assert.Contains(err.Error(), "acx")
	assert.NotContains(err.Error(), "got constant")
}
