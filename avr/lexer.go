package avr

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// TokenKind is the class of a lexeme.
type TokenKind int

//go:generate go tool stringer -linecomment -type=TokenKind
const (
	TOKEN_EOF      = TokenKind(0)  // EOF
	TOKEN_NEWLINE  = TokenKind(1)  // NEWLINE
	TOKEN_NUMBER   = TokenKind(2)  // NUMBER
	TOKEN_LABEL    = TokenKind(3)  // LABEL
	TOKEN_SYMBOL   = TokenKind(4)  // SYMBOL
	TOKEN_STRING   = TokenKind(5)  // STRING
	TOKEN_REGISTER = TokenKind(6)  // REGISTER
	TOKEN_LITERAL  = TokenKind(7)  // LITERAL
	TOKEN_EXPR     = TokenKind(8)  // EXPR
	TOKEN_EQU      = TokenKind(9)  // .EQU
	TOKEN_DEF      = TokenKind(10) // .DEF
	TOKEN_ORG      = TokenKind(11) // .ORG
	TOKEN_CSEG     = TokenKind(12) // .CSEG
	TOKEN_DSEG     = TokenKind(13) // .DSEG
	TOKEN_ESEG     = TokenKind(14) // .ESEG
	TOKEN_DB       = TokenKind(15) // .DB
	TOKEN_DW       = TokenKind(16) // .DW
	TOKEN_BYTE     = TokenKind(17) // .BYTE
)

// directiveMap maps reserved directive words to their token kinds.
var directiveMap = map[string]TokenKind{
	"EQU":  TOKEN_EQU,
	"DEF":  TOKEN_DEF,
	"ORG":  TOKEN_ORG,
	"CSEG": TOKEN_CSEG,
	"DSEG": TOKEN_DSEG,
	"ESEG": TOKEN_ESEG,
	"DB":   TOKEN_DB,
	"DW":   TOKEN_DW,
	"BYTE": TOKEN_BYTE,
}

// literals are the single character punctuation tokens.
const literals = "=,+-"

// Token is a classified lexeme.
type Token struct {
	Kind   TokenKind
	LineNo int
	Text   string // Name, decoded string, expression or lexeme.
	Value  int64  // Number value or register index.
	Ident  bool   // Text is an identifier reclassified by a symbol lookup.
}

// IsLiteral returns true if the token is the punctuation 'c'.
func (tok Token) IsLiteral(c byte) bool {
	return tok.Kind == TOKEN_LITERAL && len(tok.Text) == 1 && tok.Text[0] == c
}

// Name returns the identifier spelled by the token, if any.
func (tok Token) Name() (name string, ok bool) {
	switch {
	case tok.Kind == TOKEN_SYMBOL:
		return tok.Text, true
	case tok.Ident:
		return tok.Text, true
	}
	return
}

// SymbolLookup resolves identifiers while lexing.
type SymbolLookup interface {
	Constant(name string) (value int32, ok bool)
	RegisterAlias(name string) (index int, ok bool)
}

// Lexer produces tokens on demand from source text.
// Illegal input is recorded in Errors and skipped.
type Lexer struct {
	Errors []error // Collected lexical errors.

	src    string
	pos    int
	lineNo int
	lines  []string
	lookup SymbolLookup
}

// NewLexer creates a lexer over src that classifies identifiers using
// lookup.
func NewLexer(src string, lookup SymbolLookup) (lex *Lexer) {
	lex = &Lexer{
		src:    src,
		lineNo: 1,
		lines:  strings.Split(src, "\n"),
		lookup: lookup,
	}

	return
}

// LineNo is the current source line.
func (lex *Lexer) LineNo() int {
	return lex.lineNo
}

// Line returns the text of a source line, without its comment.
func (lex *Lexer) Line(lineno int) string {
	if lineno < 1 || lineno > len(lex.lines) {
		return ""
	}
	line := lex.lines[lineno-1]
	if n := strings.IndexByte(line, ';'); n >= 0 && !strings.Contains(line[:n], "\"") {
		line = line[:n]
	}
	return strings.TrimSpace(line)
}

func (lex *Lexer) error(err error) {
	lex.Errors = append(lex.Errors, &ErrSyntax{LineNo: lex.lineNo, Line: lex.Line(lex.lineNo), Err: err})
}

func isWord(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHex(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// word scans a run of word characters.
func (lex *Lexer) word() string {
	start := lex.pos
	for lex.pos < len(lex.src) && isWord(lex.src[lex.pos]) {
		lex.pos++
	}
	return lex.src[start:lex.pos]
}

// Next returns the next token, or TOKEN_EOF at the end of input.
func (lex *Lexer) Next() (tok Token) {
	for lex.pos < len(lex.src) {
		c := lex.src[lex.pos]
		tok = Token{LineNo: lex.lineNo}

		switch {
		case c == ' ' || c == '\t' || c == '\r':
			lex.pos++
			continue
		case c == ';':
			for lex.pos < len(lex.src) && lex.src[lex.pos] != '\n' {
				lex.pos++
			}
			continue
		case c == '\n':
			lex.pos++
			lex.lineNo++
			tok.Kind = TOKEN_NEWLINE
			tok.Text = "\n"
			return
		case c == '"':
			lex.pos++
			text, ok := lex.quoted()
			if !ok {
				lex.error(ErrStringUnterminated)
			}
			tok.Kind = TOKEN_STRING
			tok.Text = text
			return
		case c == '.':
			lex.pos++
			word := lex.word()
			kind, ok := directiveMap[strings.ToUpper(word)]
			if !ok {
				lex.error(ErrDirectiveUnknown(word))
				continue
			}
			tok.Kind = kind
			tok.Text = "." + word
			return
		case c == '$':
			lex.pos++
			if lex.pos < len(lex.src) && lex.src[lex.pos] == '(' {
				text, ok := lex.expression()
				if !ok {
					lex.error(ErrExprUnterminated)
					continue
				}
				tok.Kind = TOKEN_EXPR
				tok.Text = text
				return
			}
			word := lex.word()
			if len(word) == 0 {
				lex.error(ErrIllegalCharacter(c))
				continue
			}
			if ok := lex.number(&tok, "$"+word, "0x"+word); !ok {
				continue
			}
			return
		case isWord(c):
			word := lex.word()
			if lex.pos < len(lex.src) && lex.src[lex.pos] == ':' {
				lex.pos++
				tok.Kind = TOKEN_LABEL
				tok.Text = word
				return
			}
			if isDigit(c) {
				if ok := lex.number(&tok, word, word); !ok {
					continue
				}
				return
			}
			lex.identifier(&tok, word)
			return
		case strings.IndexByte(literals, c) >= 0:
			lex.pos++
			tok.Kind = TOKEN_LITERAL
			tok.Text = string(c)
			return
		default:
			r, size := utf8.DecodeRuneInString(lex.src[lex.pos:])
			lex.pos += size
			lex.error(ErrIllegalCharacter(r))
			continue
		}
	}

	tok = Token{Kind: TOKEN_EOF, LineNo: lex.lineNo}
	return
}

// quoted collects a string literal after its opening quote.
// A backslash takes the next character literally. The string may not
// span lines.
func (lex *Lexer) quoted() (text string, ok bool) {
	var sb strings.Builder
	for lex.pos < len(lex.src) {
		c := lex.src[lex.pos]
		switch c {
		case '"':
			lex.pos++
			ok = true
			text = sb.String()
			return
		case '\n':
			text = sb.String()
			return
		case '\\':
			lex.pos++
			if lex.pos < len(lex.src) && lex.src[lex.pos] != '\n' {
				sb.WriteByte(lex.src[lex.pos])
				lex.pos++
			}
		default:
			sb.WriteByte(c)
			lex.pos++
		}
	}

	text = sb.String()
	return
}

// expression collects a balanced $( ... ) expression on one line.
func (lex *Lexer) expression() (text string, ok bool) {
	start := lex.pos + 1
	depth := 0
	for lex.pos < len(lex.src) && lex.src[lex.pos] != '\n' {
		switch lex.src[lex.pos] {
		case '(':
			depth++
		case ')':
			depth--
		}
		lex.pos++
		if depth == 0 {
			text = lex.src[start : lex.pos-1]
			ok = true
			return
		}
	}
	return
}

// number parses a numeric literal into tok. Accepts decimal, 0x, $
// and 0b forms.
func (lex *Lexer) number(tok *Token, lexeme string, word string) (ok bool) {
	var value int64
	var err error

	lower := strings.ToLower(word)
	switch {
	case strings.HasPrefix(lower, "0x"):
		value, err = strconv.ParseInt(word[2:], 16, 64)
	case strings.HasPrefix(lower, "0b"):
		value, err = strconv.ParseInt(word[2:], 2, 64)
	default:
		value, err = strconv.ParseInt(word, 10, 64)
	}
	if err != nil {
		lex.error(ErrParseNumber(lexeme))
		return
	}
	if value > math.MaxInt32 {
		lex.error(ErrNumberRange)
		return
	}

	tok.Kind = TOKEN_NUMBER
	tok.Text = lexeme
	tok.Value = value
	ok = true
	return
}

// register returns the register index spelled by 'r' and one or two
// digits. The index is not bounds checked here.
func register(word string) (index int, ok bool) {
	if len(word) < 2 || len(word) > 3 || (word[0] != 'r' && word[0] != 'R') {
		return
	}
	for n := 1; n < len(word); n++ {
		if !isDigit(word[n]) {
			return
		}
	}
	index, _ = strconv.Atoi(word[1:])
	ok = true
	return
}

// identifier classifies a word as register, constant, register alias or
// plain symbol.
func (lex *Lexer) identifier(tok *Token, word string) {
	tok.Text = word

	if index, ok := register(word); ok {
		tok.Kind = TOKEN_REGISTER
		tok.Value = int64(index)
		return
	}

	if lex.lookup != nil {
		if value, ok := lex.lookup.Constant(word); ok {
			tok.Kind = TOKEN_NUMBER
			tok.Value = int64(value)
			tok.Ident = true
			return
		}
		if index, ok := lex.lookup.RegisterAlias(word); ok {
			tok.Kind = TOKEN_REGISTER
			tok.Value = int64(index)
			tok.Ident = true
			return
		}
	}

	tok.Kind = TOKEN_SYMBOL
}
