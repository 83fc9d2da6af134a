package avr

import (
	"fmt"
	"strings"
)

// REGISTER_COUNT is the size of the register file.
const REGISTER_COUNT = 32

// OperandClass is the category of an operand kind.
type OperandClass int

//go:generate go tool stringer -linecomment -type=OperandClass
const (
	CLASS_REGISTER     = OperandClass(0) // register
	CLASS_UNSIGNED     = OperandClass(1) // unsigned
	CLASS_SIGNED       = OperandClass(2) // signed
	CLASS_INDIRECT     = OperandClass(3) // indirect
	CLASS_IO           = OperandClass(4) // io
	CLASS_BIT          = OperandClass(5) // bit
	CLASS_DISPLACEMENT = OperandClass(6) // displacement
)

// IsRegister returns true for classes that take register operands.
func (class OperandClass) IsRegister() bool {
	return class == CLASS_REGISTER || class == CLASS_INDIRECT
}

// Addressing selects how a resolved label offset becomes an operand value.
type Addressing int

const (
	ADDR_VALUE    = Addressing(0) // Label byte offset, unchanged.
	ADDR_PROGRAM  = Addressing(1) // Absolute program word address.
	ADDR_RELATIVE = Addressing(2) // Word offset from the next instruction.
)

// Indirect address register base indexes.
const (
	POINTER_X = 26 // R27:R26
	POINTER_Y = 28 // R29:R28
	POINTER_Z = 30 // R31:R30
)

// OperandKind is the declared category, width and signedness of an
// instruction argument slot.
type OperandKind struct {
	Symbol      string // Declaration symbol, ie "Rd".
	Class       OperandClass
	Bits        int        // Encoded width in bits.
	Letter      byte       // Opcode template placeholder letter.
	Base        int        // Lowest register index, for register kinds.
	Pointer     int        // Register index of an indirect kind.
	Addressing  Addressing // Label resolution mode.
	Description string
}

// operandKinds is the catalogue of declarable operand kinds.
var operandKinds = []OperandKind{
	{Symbol: "Rd", Class: CLASS_REGISTER, Bits: 5, Letter: 'd', Description: "Destination register"},
	{Symbol: "Rr", Class: CLASS_REGISTER, Bits: 5, Letter: 'r', Description: "Source register"},
	{Symbol: "Rh", Class: CLASS_REGISTER, Bits: 4, Letter: 'd', Base: 16, Description: "Destination register r16-r31"},
	{Symbol: "K", Class: CLASS_UNSIGNED, Bits: 8, Letter: 'k', Description: "Constant data"},
	{Symbol: "k", Class: CLASS_SIGNED, Bits: 7, Letter: 'k', Addressing: ADDR_RELATIVE, Description: "Relative program address"},
	{Symbol: "p", Class: CLASS_UNSIGNED, Bits: 22, Letter: 'k', Addressing: ADDR_PROGRAM, Description: "Absolute program address"},
	{Symbol: "m", Class: CLASS_UNSIGNED, Bits: 16, Letter: 'k', Description: "Data memory address"},
	{Symbol: "b", Class: CLASS_BIT, Bits: 3, Letter: 'b', Description: "Bit in a register"},
	{Symbol: "s", Class: CLASS_BIT, Bits: 3, Letter: 's', Description: "Bit in the status register"},
	{Symbol: "X", Class: CLASS_INDIRECT, Pointer: POINTER_X, Description: "Indirect address register (R27:R26)"},
	{Symbol: "Y", Class: CLASS_INDIRECT, Pointer: POINTER_Y, Description: "Indirect address register (R29:R28)"},
	{Symbol: "Z", Class: CLASS_INDIRECT, Pointer: POINTER_Z, Description: "Indirect address register (R31:R30)"},
	{Symbol: "A", Class: CLASS_IO, Bits: 6, Letter: 'a', Description: "IO location address"},
	{Symbol: "q", Class: CLASS_DISPLACEMENT, Bits: 6, Letter: 'q', Description: "Displacement for direct addressing"},
}

// LookupOperandKind returns the catalogue kind for a declaration symbol.
func LookupOperandKind(symbol string) (kind OperandKind, ok bool) {
	for _, kind = range operandKinds {
		if kind.Symbol == symbol {
			ok = true
			return
		}
	}

	kind = OperandKind{}
	return
}

// Range returns the inclusive range of legal operand values.
func (kind OperandKind) Range() (lo, hi int64) {
	switch kind.Class {
	case CLASS_REGISTER:
		lo = int64(kind.Base)
		hi = lo + (int64(1) << kind.Bits) - 1
		hi = min(hi, REGISTER_COUNT-1)
	case CLASS_INDIRECT:
		lo = int64(kind.Pointer)
		hi = lo
	case CLASS_SIGNED:
		lo = -(int64(1) << (kind.Bits - 1))
		hi = (int64(1) << (kind.Bits - 1)) - 1
	default:
		hi = (int64(1) << kind.Bits) - 1
	}
	return
}

// Validate checks an operand value against the kind.
// Symbol operands of constant kinds are accepted as-is; they are checked
// again once resolved.
func (kind OperandKind) Validate(operand Operand) (err error) {
	switch op := operand.(type) {
	case RegisterOperand:
		if !kind.Class.IsRegister() {
			err = ErrExpectedNumeric
			return
		}
		lo, hi := kind.Range()
		if int64(op) < lo || int64(op) > hi {
			if kind.Class == CLASS_INDIRECT {
				err = ErrIndirectInvalid
			} else {
				err = ErrRegisterRange
			}
			return
		}
	case ConstantOperand:
		if kind.Class.IsRegister() {
			err = ErrExpectedRegister
			return
		}
		lo, hi := kind.Range()
		value := int64(op)
		if kind.Class != CLASS_SIGNED && value < 0 {
			err = ErrConstantNegative
			return
		}
		if value < lo || value > hi {
			err = ErrConstantRange
			return
		}
	case SymbolOperand:
		if kind.Class.IsRegister() {
			err = ErrRegisterSymbol(op)
			return
		}
	}

	return
}

// Field returns the unsigned bit field value encoding an operand.
func (kind OperandKind) Field(operand Operand) (field uint64, err error) {
	switch op := operand.(type) {
	case RegisterOperand:
		field = uint64(int(op) - kind.Base)
	case ConstantOperand:
		field = uint64(int64(op))
	default:
		err = ErrSymbolUnresolved
		return
	}

	if kind.Bits < 64 {
		field &= (uint64(1) << kind.Bits) - 1
	}

	return
}

// Operand decodes a bit field back into an operand value.
func (kind OperandKind) Operand(field uint64) Operand {
	switch kind.Class {
	case CLASS_REGISTER:
		return RegisterOperand(int(field) + kind.Base)
	case CLASS_INDIRECT:
		return RegisterOperand(kind.Pointer)
	case CLASS_SIGNED:
		value := int64(field)
		if kind.Bits > 0 && (field>>(kind.Bits-1))&1 == 1 {
			value -= int64(1) << kind.Bits
		}
		return ConstantOperand(value)
	}

	return ConstantOperand(int64(field))
}

// Resolve converts a label byte offset into the operand value for an
// instruction placed at offset with the given size.
func (kind OperandKind) Resolve(label int, offset int, size int) int64 {
	switch kind.Addressing {
	case ADDR_PROGRAM:
		return int64(label / 2)
	case ADDR_RELATIVE:
		return int64(label/2) - int64((offset+size)/2)
	}

	return int64(label)
}

func (kind OperandKind) String() string {
	if kind.Bits > 0 && kind.Class != CLASS_REGISTER {
		return fmt.Sprintf("%v:%d", kind.Symbol, kind.Bits)
	}
	return kind.Symbol
}

// Operand is an instruction argument value: a RegisterOperand, a
// ConstantOperand or an unresolved SymbolOperand.
type Operand interface {
	isOperand()
	String() string
}

// RegisterOperand is a register file index.
type RegisterOperand int

// NewRegisterOperand creates a register operand, rejecting indexes
// outside of the register file.
func NewRegisterOperand(index int) (reg RegisterOperand, err error) {
	if index < 0 || index >= REGISTER_COUNT {
		err = ErrRegisterInvalid(index)
		return
	}

	reg = RegisterOperand(index)
	return
}

func (RegisterOperand) isOperand() {}

func (reg RegisterOperand) String() string {
	return fmt.Sprintf("r%d", int(reg))
}

// ConstantOperand is a signed 32-bit integer value.
type ConstantOperand int32

func (ConstantOperand) isOperand() {}

func (value ConstantOperand) String() string {
	return fmt.Sprintf("%d", int32(value))
}

// SymbolOperand is a label reference awaiting resolution.
type SymbolOperand string

func (SymbolOperand) isOperand() {}

func (sym SymbolOperand) String() string {
	return string(sym)
}

// pointerIndex returns the indirect register named by word.
func pointerIndex(word string) (index int, ok bool) {
	switch strings.ToUpper(word) {
	case "X":
		return POINTER_X, true
	case "Y":
		return POINTER_Y, true
	case "Z":
		return POINTER_Z, true
	}
	return
}
