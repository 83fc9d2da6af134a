package avr

import (
	"errors"

	"github.com/ezrec/avrasm/translate"
)

var f = translate.From

var (
	// Lexical errors
	ErrStringUnterminated = errors.New(f("unterminated string"))
	ErrExprUnterminated   = errors.New(f("unterminated $( expression"))
	ErrNumberRange        = errors.New(f("number out of range"))

	// Syntax errors
	ErrStatementSyntax = errors.New(f("syntax error"))
	ErrEquateSyntax    = errors.New(f(".equ syntax"))
	ErrDefineSyntax    = errors.New(f(".def syntax"))
	ErrDataSyntax      = errors.New(f("data directive syntax"))
	ErrOperandSyntax   = errors.New(f("operand syntax"))
	ErrLineExtra       = errors.New(f("unexpected text at end of line"))

	// Operation table errors
	ErrArgumentCount    = errors.New(f("wrong argument count"))
	ErrExpectedRegister = errors.New(f("expected register, got constant"))
	ErrExpectedNumeric  = errors.New(f("expected numeric value, got register"))
	ErrRegisterRange    = errors.New(f("register not allowed for operand"))
	ErrIndirectInvalid  = errors.New(f("expected indirect register X, Y or Z"))
	ErrConstantRange    = errors.New(f("constant exceeds range of argument"))
	ErrConstantNegative = errors.New(f("expected unsigned argument"))
	ErrSymbolUnresolved = errors.New(f("symbol unresolved"))

	// Symbol and segment errors
	ErrEquateDuplicate = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate  = errors.New(f("label duplicated"))
	ErrReserveCode     = errors.New(f("reserving bytes is only legal in a data segment"))
	ErrReserveNegative = errors.New(f("reserve count negative"))
	ErrOriginBackwards = errors.New(f(".org moves address backwards"))
	ErrByteRange       = errors.New(f("byte value out of range"))
	ErrWordRange       = errors.New(f("word value out of range"))
)

// ErrIllegalCharacter is a character no token can start with.
type ErrIllegalCharacter rune

func (err ErrIllegalCharacter) Error() string {
	return f("illegal character '%c'", rune(err))
}

// ErrDirectiveUnknown is a '.' word that is not a reserved directive.
type ErrDirectiveUnknown string

func (err ErrDirectiveUnknown) Error() string {
	return f("unknown directive .%v", string(err))
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrRegisterInvalid int

func (err ErrRegisterInvalid) Error() string {
	return f("invalid register number %d", int(err))
}

type ErrUnknownVariable string

func (err ErrUnknownVariable) Error() string {
	return f("unknown variable %v", string(err))
}

type ErrOpcodeUnknown string

func (err ErrOpcodeUnknown) Error() string {
	return f("unknown operation %v", string(err))
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("unknown label %v", string(el))
}

// ErrRegisterSymbol is a name that is neither a register nor a register
// alias, given where a register is required.
type ErrRegisterSymbol string

func (err ErrRegisterSymbol) Error() string {
	return f("expected register, got unknown symbol %v", string(err))
}

func (err ErrRegisterSymbol) Is(target error) bool {
	return target == ErrExpectedRegister
}

// ErrRedeclared is the advisory recorded when a constant is redeclared.
type ErrRedeclared string

func (err ErrRedeclared) Error() string {
	return f("constant %v redeclared", string(err))
}

// ErrOperand locates an operand error within an instruction.
type ErrOperand struct {
	Mnemonic string
	Index    int
	Err      error
}

func (err *ErrOperand) Error() string {
	return f("%v operand %d: %v", err.Mnemonic, err.Index+1, err.Err)
}

func (err *ErrOperand) Unwrap() error {
	return err.Err
}

// ErrExpression reports a failed $( ... ) evaluation.
type ErrExpression struct {
	Expr string
	Err  error
}

func (err *ErrExpression) Error() string {
	return f("$(%v) is not a valid expression: %v", err.Expr, err.Err)
}

func (err *ErrExpression) Unwrap() error {
	return err.Err
}

// ErrTable is a defect in an operation table declaration.
type ErrTable struct {
	Mnemonic string
	Err      error
}

func (err *ErrTable) Error() string {
	return f("operation table %v: %v", err.Mnemonic, err.Err)
}

func (err *ErrTable) Unwrap() error {
	return err.Err
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err *ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err *ErrSyntax) Unwrap() error {
	return err.Err
}
