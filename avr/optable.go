package avr

import (
	"errors"
	"fmt"
	"iter"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// Declaration pairs a mnemonic with its operand signature and opcode
// bit template.
//
// The signature is a comma separated list of operand kind symbols, each
// optionally followed by ':' and an explicit bit width (ie "Rd,k:12").
// The template is a string of '0', '1' and lowercase placeholder letters;
// whitespace is ignored.
type Declaration struct {
	Mnemonic  string
	Signature string
	Template  string
}

// OperationSpec is a validated operation table entry.
type OperationSpec struct {
	Mnemonic string        // Uppercased mnemonic.
	Operands []OperandKind // Operand kinds, in source order.
	Template string        // Opcode template without whitespace.

	fields [][]int // Template bit positions of each operand, MSB first.
}

// Size in bytes of the encoded instruction.
func (op *OperationSpec) Size() int {
	return len(op.Template) / 8
}

// Arity is the number of operands the operation takes.
func (op *OperationSpec) Arity() int {
	return len(op.Operands)
}

func (op *OperationSpec) String() string {
	kinds := make([]string, len(op.Operands))
	for n, kind := range op.Operands {
		kinds[n] = kind.String()
	}
	return fmt.Sprintf("%v %v", op.Mnemonic, strings.Join(kinds, ","))
}

// OperationTable maps uppercased mnemonics to operation specs.
// It is read-only once built.
type OperationTable struct {
	ops map[string]*OperationSpec
}

// Lookup finds an operation by mnemonic, ignoring case.
func (table *OperationTable) Lookup(mnemonic string) (op *OperationSpec, ok bool) {
	op, ok = table.ops[strings.ToUpper(mnemonic)]
	return
}

// All iterates over the operations in mnemonic order.
func (table *OperationTable) All() iter.Seq2[string, *OperationSpec] {
	return func(yield func(string, *OperationSpec) bool) {
		for _, key := range slices.Sorted(maps.Keys(table.ops)) {
			if !yield(key, table.ops[key]) {
				return
			}
		}
	}
}

// Len returns the number of operations in the table.
func (table *OperationTable) Len() int {
	return len(table.ops)
}

var reWidth = regexp.MustCompile(`^(\w+):(\d+)$`)

var (
	errTemplateEmpty     = errors.New(f("template is not a multiple of 16 bits"))
	errTemplateDuplicate = errors.New(f("mnemonic declared twice"))
	errSignatureKind     = errors.New(f("unknown operand kind"))
)

type errTemplateChar rune

func (err errTemplateChar) Error() string {
	return f("invalid template character '%c'", rune(err))
}

type errTemplateLetter rune

func (err errTemplateLetter) Error() string {
	return f("placeholder '%c' belongs to no operand", rune(err))
}

type errLetterShared rune

func (err errLetterShared) Error() string {
	return f("placeholder '%c' shared by two operands", rune(err))
}

type errLetterCount struct {
	Kind  OperandKind
	Count int
}

func (err errLetterCount) Error() string {
	return f("operand %v declares %d bits, template has %d '%c'",
		err.Kind.Symbol, err.Kind.Bits, err.Count, rune(err.Kind.Letter))
}

// parseSignature converts a declaration signature into operand kinds.
func parseSignature(signature string) (kinds []OperandKind, err error) {
	signature = strings.TrimSpace(signature)
	if len(signature) == 0 {
		return
	}

	for _, arg := range strings.Split(signature, ",") {
		arg = strings.TrimSpace(arg)
		width := -1
		if m := reWidth.FindStringSubmatch(arg); m != nil {
			arg = m[1]
			width, _ = strconv.Atoi(m[2])
		}
		kind, ok := LookupOperandKind(arg)
		if !ok {
			err = fmt.Errorf("%w %q", errSignatureKind, arg)
			return
		}
		if width >= 0 {
			kind.Bits = width
		}
		kinds = append(kinds, kind)
	}

	return
}

// NewOperationSpec builds and checks a single operation from its
// declaration. Every placeholder letter must belong to exactly one
// operand, and occur exactly as many times as that operand is wide.
func NewOperationSpec(decl Declaration) (op *OperationSpec, err error) {
	mnemonic := strings.ToUpper(decl.Mnemonic)
	defer func() {
		if err != nil {
			op = nil
			err = &ErrTable{Mnemonic: mnemonic, Err: err}
		}
	}()

	kinds, err := parseSignature(decl.Signature)
	if err != nil {
		return
	}

	template := strings.Join(strings.Fields(decl.Template), "")
	if len(template) == 0 || len(template)%16 != 0 {
		err = errTemplateEmpty
		return
	}

	owner := map[byte]int{}
	for n, kind := range kinds {
		if kind.Bits == 0 {
			continue
		}
		if _, ok := owner[kind.Letter]; ok {
			err = errLetterShared(kind.Letter)
			return
		}
		owner[kind.Letter] = n
	}

	fields := make([][]int, len(kinds))
	for pos := range len(template) {
		c := template[pos]
		switch {
		case c == '0' || c == '1':
			continue
		case c >= 'a' && c <= 'z':
			n, ok := owner[c]
			if !ok {
				err = errTemplateLetter(c)
				return
			}
			fields[n] = append(fields[n], pos)
		default:
			err = errTemplateChar(c)
			return
		}
	}

	for n, kind := range kinds {
		if len(fields[n]) != kind.Bits {
			err = errLetterCount{Kind: kind, Count: len(fields[n])}
			return
		}
	}

	op = &OperationSpec{
		Mnemonic: mnemonic,
		Operands: kinds,
		Template: template,
		fields:   fields,
	}

	return
}

// NewOperationTable builds a table from declarations, stopping at the
// first defective declaration.
func NewOperationTable(decls []Declaration) (table *OperationTable, err error) {
	ops := make(map[string]*OperationSpec, len(decls))
	for _, decl := range decls {
		var op *OperationSpec
		op, err = NewOperationSpec(decl)
		if err != nil {
			return
		}
		if _, ok := ops[op.Mnemonic]; ok {
			err = &ErrTable{Mnemonic: op.Mnemonic, Err: errTemplateDuplicate}
			return
		}
		ops[op.Mnemonic] = op
	}

	table = &OperationTable{ops: ops}
	return
}

// Operations is the built-in operation table.
var Operations = mustOperationTable(avrDeclarations)

func mustOperationTable(decls []Declaration) *OperationTable {
	table, err := NewOperationTable(decls)
	if err != nil {
		panic(err)
	}
	return table
}

// avrDeclarations is a representative subset of the AVR instruction set.
var avrDeclarations = []Declaration{
	{"NOP", "", "0000 0000 0000 0000"},

	// Register to register arithmetic and logic.
	{"ADD", "Rd,Rr", "0000 11rd dddd rrrr"},
	{"ADC", "Rd,Rr", "0001 11rd dddd rrrr"},
	{"SUB", "Rd,Rr", "0001 10rd dddd rrrr"},
	{"SBC", "Rd,Rr", "0000 10rd dddd rrrr"},
	{"AND", "Rd,Rr", "0010 00rd dddd rrrr"},
	{"OR", "Rd,Rr", "0010 10rd dddd rrrr"},
	{"EOR", "Rd,Rr", "0010 01rd dddd rrrr"},
	{"MOV", "Rd,Rr", "0010 11rd dddd rrrr"},
	{"CP", "Rd,Rr", "0001 01rd dddd rrrr"},
	{"CPC", "Rd,Rr", "0000 01rd dddd rrrr"},
	{"MUL", "Rd,Rr", "1001 11rd dddd rrrr"},

	// Immediates, upper registers only.
	{"LDI", "Rh,K", "1110 kkkk dddd kkkk"},
	{"SUBI", "Rh,K", "0101 kkkk dddd kkkk"},
	{"SBCI", "Rh,K", "0100 kkkk dddd kkkk"},
	{"CPI", "Rh,K", "0011 kkkk dddd kkkk"},
	{"ANDI", "Rh,K", "0111 kkkk dddd kkkk"},
	{"ORI", "Rh,K", "0110 kkkk dddd kkkk"},

	// Single register.
	{"COM", "Rd", "1001 010d dddd 0000"},
	{"NEG", "Rd", "1001 010d dddd 0001"},
	{"SWAP", "Rd", "1001 010d dddd 0010"},
	{"INC", "Rd", "1001 010d dddd 0011"},
	{"ASR", "Rd", "1001 010d dddd 0101"},
	{"LSR", "Rd", "1001 010d dddd 0110"},
	{"ROR", "Rd", "1001 010d dddd 0111"},
	{"DEC", "Rd", "1001 010d dddd 1010"},
	{"PUSH", "Rd", "1001 001d dddd 1111"},
	{"POP", "Rd", "1001 000d dddd 1111"},

	// Bit operations.
	{"BLD", "Rd,b", "1111 100d dddd 0bbb"},
	{"BST", "Rd,b", "1111 101d dddd 0bbb"},
	{"SBRC", "Rr,b", "1111 110r rrrr 0bbb"},
	{"SBRS", "Rr,b", "1111 111r rrrr 0bbb"},
	{"BSET", "s", "1001 0100 0sss 1000"},
	{"BCLR", "s", "1001 0100 1sss 1000"},
	{"SEI", "", "1001 0100 0111 1000"},
	{"CLI", "", "1001 0100 1111 1000"},

	// I/O space.
	{"IN", "Rd,A:6", "1011 0aad dddd aaaa"},
	{"OUT", "A:6,Rr", "1011 1aar rrrr aaaa"},
	{"SBI", "A:5,b", "1001 1010 aaaa abbb"},
	{"CBI", "A:5,b", "1001 1000 aaaa abbb"},
	{"SBIC", "A:5,b", "1001 1001 aaaa abbb"},
	{"SBIS", "A:5,b", "1001 1011 aaaa abbb"},

	// Data memory.
	{"LDS", "Rd,m:16", "1001 000d dddd 0000 kkkk kkkk kkkk kkkk"},
	{"STS", "m:16,Rr", "1001 001r rrrr 0000 kkkk kkkk kkkk kkkk"},
	{"LD", "Rd,X", "1001 000d dddd 1100"},
	{"ST", "X,Rr", "1001 001r rrrr 1100"},
	{"LDD", "Rd,Y,q", "10q0 qq0d dddd 1qqq"},
	{"STD", "Y,q,Rr", "10q0 qq1r rrrr 1qqq"},
	{"LPM", "", "1001 0101 1100 1000"},

	// Flow control.
	{"RJMP", "k:12", "1100 kkkk kkkk kkkk"},
	{"RCALL", "k:12", "1101 kkkk kkkk kkkk"},
	{"JMP", "p:22", "1001 010k kkkk 110k kkkk kkkk kkkk kkkk"},
	{"CALL", "p:22", "1001 010k kkkk 111k kkkk kkkk kkkk kkkk"},
	{"IJMP", "", "1001 0100 0000 1001"},
	{"RET", "", "1001 0101 0000 1000"},
	{"RETI", "", "1001 0101 0001 1000"},
	{"BRBS", "s,k:7", "1111 00kk kkkk ksss"},
	{"BRBC", "s,k:7", "1111 01kk kkkk ksss"},
	{"BREQ", "k:7", "1111 00kk kkkk k001"},
	{"BRNE", "k:7", "1111 01kk kkkk k001"},
	{"BRCS", "k:7", "1111 00kk kkkk k000"},
	{"BRCC", "k:7", "1111 01kk kkkk k000"},
	{"BRLT", "k:7", "1111 00kk kkkk k100"},
	{"BRGE", "k:7", "1111 01kk kkkk k100"},

	// MCU control.
	{"SLEEP", "", "1001 0101 1000 1000"},
	{"WDR", "", "1001 0101 1010 1000"},
	{"BREAK", "", "1001 0101 1001 1000"},
}
