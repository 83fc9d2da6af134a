package avr

import (
	"math"

	"github.com/ezrec/avrasm/translate"
)

// Parser builds segment contents from the token stream, one source line
// at a time.
type Parser struct {
	Verbose  bool    // If set, logs each parsed line.
	Warnings []error // Advisories, such as redeclared constants.

	lexer    *Lexer
	symbols  *SymbolTable
	table    *OperationTable
	segments [SEGMENT_COUNT]*Segment
	current  *Segment
	peeked   *Token
}

// NewParser creates a parser reading from lexer, declaring into symbols,
// and checking instructions against table. The code segment is selected.
func NewParser(lexer *Lexer, symbols *SymbolTable, table *OperationTable) (p *Parser) {
	p = &Parser{
		lexer:   lexer,
		symbols: symbols,
		table:   table,
	}

	p.Select(SEGMENT_CODE)

	return
}

// Select makes the segment of a kind current, creating it on first use.
func (p *Parser) Select(kind SegmentKind) *Segment {
	if p.segments[kind] == nil {
		p.segments[kind] = NewSegment(kind)
	}
	p.current = p.segments[kind]
	return p.current
}

// Current returns the current segment.
func (p *Parser) Current() *Segment {
	return p.current
}

// Segments returns the segments created so far, in kind order.
func (p *Parser) Segments() (segs []*Segment) {
	for _, seg := range p.segments {
		if seg != nil {
			segs = append(segs, seg)
		}
	}
	return
}

func (p *Parser) next() (tok Token) {
	if p.peeked != nil {
		tok = *p.peeked
		p.peeked = nil
		return
	}
	return p.lexer.Next()
}

func (p *Parser) peek() Token {
	if p.peeked == nil {
		tok := p.lexer.Next()
		p.peeked = &tok
	}
	return *p.peeked
}

func atEnd(tok Token) bool {
	return tok.Kind == TOKEN_NEWLINE || tok.Kind == TOKEN_EOF
}

// Parse parses all remaining lines, stopping at the first error.
func (p *Parser) Parse() (err error) {
	for {
		var done bool
		_, done, err = p.ParseLine()
		if err != nil || done {
			return
		}
	}
}

// ParseLine parses one line: an optional label, then a statement.
// If the statement is an instruction, it is returned.
func (p *Parser) ParseLine() (inst *Instruction, done bool, err error) {
	tok := p.next()
	lineno := tok.LineNo

	defer func() {
		if err != nil {
			inst = nil
			err = &ErrSyntax{LineNo: lineno, Line: p.lexer.Line(lineno), Err: err}
		}
	}()

	switch tok.Kind {
	case TOKEN_EOF:
		done = true
		return
	case TOKEN_NEWLINE:
		return
	}

	if p.Verbose {
		translate.Logf("%v: %v", lineno, p.lexer.Line(lineno))
	}

	if tok.Kind == TOKEN_LABEL {
		err = p.current.AddLabel(tok.Text)
		if err != nil {
			return
		}
		if p.Verbose {
			translate.Logf("%v: label %v = %v:%#04x", lineno, tok.Text, p.current.Kind, p.current.Offset)
		}
		tok = p.next()
		if atEnd(tok) {
			return
		}
	}

	inst, err = p.statement(tok)
	if err != nil {
		return
	}

	if !atEnd(p.next()) {
		err = ErrLineExtra
		return
	}

	return
}

// statement parses the statement starting with tok.
func (p *Parser) statement(tok Token) (inst *Instruction, err error) {
	lineno := tok.LineNo

	switch tok.Kind {
	case TOKEN_EQU:
		name, ok := p.next().Name()
		if !ok || !p.next().IsLiteral('=') {
			err = ErrEquateSyntax
			return
		}
		err = p.equate(name, lineno)
	case TOKEN_DEF:
		err = p.define()
	case TOKEN_ORG:
		var address int32
		address, err = p.constant()
		if err != nil {
			return
		}
		err = p.current.SetOrigin(int(address))
	case TOKEN_CSEG:
		p.Select(SEGMENT_CODE)
	case TOKEN_DSEG:
		p.Select(SEGMENT_SRAM)
	case TOKEN_ESEG:
		p.Select(SEGMENT_EEPROM)
	case TOKEN_DB:
		err = p.defineBytes(lineno)
	case TOKEN_DW:
		err = p.defineWords(lineno)
	case TOKEN_BYTE:
		var count int32
		count, err = p.constant()
		if err != nil {
			return
		}
		err = p.current.ReserveBytes(int(count))
	default:
		name, ok := tok.Name()
		if !ok {
			err = ErrStatementSyntax
			return
		}
		if p.peek().IsLiteral('=') {
			p.next()
			err = p.equate(name, lineno)
			return
		}
		inst, err = p.instruction(name, lineno)
	}

	return
}

// equate declares name from a constant expression.
func (p *Parser) equate(name string, lineno int) (err error) {
	value, err := p.constant()
	if err != nil {
		return
	}

	advisory, err := p.symbols.SetConstant(name, value)
	if err != nil {
		return
	}
	if advisory != nil {
		warning := &ErrSyntax{LineNo: lineno, Line: p.lexer.Line(lineno), Err: advisory}
		p.Warnings = append(p.Warnings, warning)
		translate.Logf("warning: %v", warning)
	}

	return
}

// define parses '.DEF name = Rn'.
func (p *Parser) define() (err error) {
	name, ok := p.next().Name()
	if !ok || !p.next().IsLiteral('=') {
		err = ErrDefineSyntax
		return
	}

	tok := p.next()
	if tok.Kind != TOKEN_REGISTER {
		err = ErrDefineSyntax
		return
	}

	err = p.symbols.DefineRegister(name, int(tok.Value))
	return
}

// value converts a number or expression token to a value.
func (p *Parser) value(tok Token, negate bool) (value int64, err error) {
	switch tok.Kind {
	case TOKEN_NUMBER:
		value = tok.Value
	case TOKEN_EXPR:
		var v32 int32
		v32, err = p.symbols.Evaluate(tok.Text)
		if err != nil {
			return
		}
		value = int64(v32)
	case TOKEN_SYMBOL:
		err = ErrUnknownVariable(tok.Text)
		return
	default:
		err = ErrOperandSyntax
		return
	}

	if negate {
		value = -value
	}
	if value > math.MaxInt32 || value < math.MinInt32 {
		err = ErrNumberRange
	}

	return
}

// constant parses a constant expression: an optionally negated number,
// previously declared constant or $( ... ) expression.
func (p *Parser) constant() (value int32, err error) {
	tok := p.next()
	negate := tok.IsLiteral('-')
	if negate {
		tok = p.next()
	}

	v64, err := p.value(tok, negate)
	if err != nil {
		return
	}

	value = int32(v64)
	return
}

// argument is an unconverted instruction or data argument.
type argument struct {
	tok    Token
	negate bool
}

// arguments collects the comma separated argument list up to the end of
// the line. A '+' after an indirect register also separates arguments.
func (p *Parser) arguments() (args []argument, err error) {
	if atEnd(p.peek()) {
		return
	}

	for {
		arg := argument{tok: p.next()}
		if arg.tok.IsLiteral('-') {
			arg.negate = true
			arg.tok = p.next()
		}

		switch arg.tok.Kind {
		case TOKEN_NUMBER, TOKEN_EXPR:
		case TOKEN_SYMBOL, TOKEN_REGISTER, TOKEN_STRING:
			if arg.negate {
				err = ErrOperandSyntax
				return
			}
		default:
			err = ErrOperandSyntax
			return
		}
		args = append(args, arg)

		sep := p.peek()
		switch {
		case atEnd(sep):
			return
		case sep.IsLiteral(','):
			p.next()
		case sep.IsLiteral('+') && arg.tok.Kind == TOKEN_SYMBOL:
			if _, ok := pointerIndex(arg.tok.Text); !ok {
				err = ErrOperandSyntax
				return
			}
			p.next()
		default:
			err = ErrOperandSyntax
			return
		}
	}
}

// instruction parses the arguments of an operation and places it in the
// current segment.
func (p *Parser) instruction(mnemonic string, lineno int) (inst *Instruction, err error) {
	spec, ok := p.table.Lookup(mnemonic)
	if !ok {
		err = ErrOpcodeUnknown(mnemonic)
		return
	}

	args, err := p.arguments()
	if err != nil {
		return
	}

	if len(args) != spec.Arity() {
		err = ErrArgumentCount
		return
	}

	operands := make([]Operand, len(args))
	for n, arg := range args {
		kind := spec.Operands[n]
		var operand Operand
		operand, err = p.operand(kind, arg)
		if err == nil {
			err = kind.Validate(operand)
		}
		if err != nil {
			err = &ErrOperand{Mnemonic: spec.Mnemonic, Index: n, Err: err}
			return
		}
		operands[n] = operand
	}

	inst = p.current.AddInstruction(spec, operands, lineno)
	return
}

// operand builds an operand for a kind, rejecting tokens of the wrong
// category.
func (p *Parser) operand(kind OperandKind, arg argument) (operand Operand, err error) {
	tok := arg.tok

	switch tok.Kind {
	case TOKEN_REGISTER:
		if !kind.Class.IsRegister() {
			err = ErrExpectedNumeric
			return
		}
		if kind.Class == CLASS_INDIRECT {
			err = ErrIndirectInvalid
			return
		}
		operand, err = NewRegisterOperand(int(tok.Value))
	case TOKEN_NUMBER, TOKEN_EXPR:
		if kind.Class.IsRegister() {
			err = ErrExpectedRegister
			return
		}
		var value int64
		value, err = p.value(tok, arg.negate)
		if err != nil {
			return
		}
		operand = ConstantOperand(value)
	case TOKEN_SYMBOL:
		if kind.Class == CLASS_INDIRECT {
			index, ok := pointerIndex(tok.Text)
			if !ok {
				err = ErrIndirectInvalid
				return
			}
			operand = RegisterOperand(index)
			return
		}
		if kind.Class.IsRegister() {
			err = ErrRegisterSymbol(tok.Text)
			return
		}
		operand = SymbolOperand(tok.Text)
	default:
		err = ErrOperandSyntax
	}

	return
}

// defineBytes parses a '.DB' list of strings and byte values.
// Each string character is one byte, so characters above U+00FF are
// rejected.
func (p *Parser) defineBytes(lineno int) (err error) {
	args, err := p.arguments()
	if err != nil {
		return
	}
	if len(args) == 0 {
		err = ErrDataSyntax
		return
	}

	var values []int64
	for _, arg := range args {
		switch arg.tok.Kind {
		case TOKEN_STRING:
			for _, r := range arg.tok.Text {
				if r > 0xff {
					err = ErrByteRange
					return
				}
				values = append(values, int64(r))
			}
		case TOKEN_REGISTER:
			err = ErrExpectedNumeric
			return
		default:
			var value int64
			value, err = p.value(arg.tok, arg.negate)
			if err != nil {
				return
			}
			values = append(values, value)
		}
	}

	_, err = p.current.DefineBytes(values, lineno)
	return
}

// defineWords parses a '.DW' list of word values and labels.
func (p *Parser) defineWords(lineno int) (err error) {
	args, err := p.arguments()
	if err != nil {
		return
	}
	if len(args) == 0 {
		err = ErrDataSyntax
		return
	}

	values := make([]Operand, len(args))
	for n, arg := range args {
		switch arg.tok.Kind {
		case TOKEN_SYMBOL:
			values[n] = SymbolOperand(arg.tok.Text)
		case TOKEN_REGISTER:
			err = ErrExpectedNumeric
			return
		case TOKEN_STRING:
			err = ErrDataSyntax
			return
		default:
			var value int64
			value, err = p.value(arg.tok, arg.negate)
			if err != nil {
				return
			}
			values[n] = ConstantOperand(value)
		}
	}

	_, err = p.current.DefineWords(values, lineno)
	return
}
