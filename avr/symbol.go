package avr

import (
	"errors"
	"iter"
	"maps"
	"math"
	"strings"

	"go.starlark.net/resolve"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// SymbolTable holds the constants and register aliases of one assembly
// run.
type SymbolTable struct {
	Strict bool // If set, redeclaring a constant is an error.

	constants map[string]int32
	aliases   map[string]int
}

var _ SymbolLookup = (*SymbolTable)(nil)

// NewSymbolTable creates an empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		constants: make(map[string]int32),
		aliases:   make(map[string]int),
	}
}

// Constant returns the value of a declared constant.
func (st *SymbolTable) Constant(name string) (value int32, ok bool) {
	value, ok = st.constants[name]
	return
}

// RegisterAlias returns the register index of a declared alias.
func (st *SymbolTable) RegisterAlias(name string) (index int, ok bool) {
	index, ok = st.aliases[name]
	return
}

// Constants iterates over all declared constants.
func (st *SymbolTable) Constants() iter.Seq2[string, int32] {
	return maps.All(st.constants)
}

// SetConstant declares or redeclares a constant. A redeclaration
// overwrites the old value and returns the ErrRedeclared advisory, unless
// the table is Strict.
func (st *SymbolTable) SetConstant(name string, value int32) (advisory error, err error) {
	if _, ok := st.constants[name]; ok {
		if st.Strict {
			err = ErrEquateDuplicate
			return
		}
		advisory = ErrRedeclared(name)
	}

	st.constants[name] = value
	return
}

// DefineRegister declares a register alias.
func (st *SymbolTable) DefineRegister(name string, index int) (err error) {
	reg, err := NewRegisterOperand(index)
	if err != nil {
		return
	}

	st.aliases[name] = int(reg)
	return
}

// Evaluate computes a $( ... ) expression with the declared constants in
// scope. Names not yet declared fail with ErrUnknownVariable.
func (st *SymbolTable) Evaluate(expr string) (value int32, err error) {
	defer func() {
		if err != nil {
			err = &ErrExpression{Expr: expr, Err: err}
		}
	}()

	pred := starlark.StringDict{}
	for key, val := range st.constants {
		pred[key] = starlark.MakeInt(int(val))
	}

	opts := syntax.FileOptions{}
	thread := starlark.Thread{}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		var resolveErrs resolve.ErrorList
		if errors.As(err, &resolveErrs) && len(resolveErrs) > 0 {
			name, ok := strings.CutPrefix(resolveErrs[0].Msg, "undefined: ")
			if ok {
				err = ErrUnknownVariable(name)
			}
		}
		return
	}

	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrStatementSyntax
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseNumber(st_rc.String())
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok || st_int64 > math.MaxInt32 || st_int64 < math.MinInt32 {
		err = ErrNumberRange
		return
	}

	value = int32(st_int64)
	return
}
