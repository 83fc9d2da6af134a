package avr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSymbolTable_Evaluate(t *testing.T) {
	assert := assert.New(t)

	st := NewSymbolTable()
	_, err := st.SetConstant("X", 10)
	assert.NoError(err)

	value, err := st.Evaluate("1 + 2*3")
	assert.NoError(err)
	assert.Equal(int32(7), value)

	value, err = st.Evaluate("X * 2 - 1")
	assert.NoError(err)
	assert.Equal(int32(19), value)

	value, err = st.Evaluate("(0x1234 >> 8) & 0xff")
	assert.NoError(err)
	assert.Equal(int32(0x12), value)

	value, err = st.Evaluate("-X")
	assert.NoError(err)
	assert.Equal(int32(-10), value)
}

func TestSymbolTable_EvaluateErrors(t *testing.T) {
	assert := assert.New(t)

	st := NewSymbolTable()

	_, err := st.Evaluate("Y + 1")
	var unknown ErrUnknownVariable
	assert.True(errors.As(err, &unknown))
	assert.Equal(ErrUnknownVariable("Y"), unknown)

	var expr *ErrExpression
	assert.True(errors.As(err, &expr))
	assert.Equal("Y + 1", expr.Expr)

	_, err = st.Evaluate("1 << 40")
	assert.ErrorIs(err, ErrNumberRange)

	_, err = st.Evaluate(`"text"`)
	assert.True(errors.As(err, new(ErrParseNumber)))

	_, err = st.Evaluate("1 +")
	assert.Error(err)
}

func TestSymbolTable_SetConstant(t *testing.T) {
	assert := assert.New(t)

	st := NewSymbolTable()

	advisory, err := st.SetConstant("X", 10)
	assert.NoError(err)
	assert.NoError(advisory)

	advisory, err = st.SetConstant("X", 20)
	assert.NoError(err)
	assert.Equal(ErrRedeclared("X"), advisory)

	value, ok := st.Constant("X")
	assert.True(ok)
	assert.Equal(int32(20), value)

	_, ok = st.Constant("x")
	assert.False(ok)

	st.Strict = true
	_, err = st.SetConstant("X", 30)
	assert.ErrorIs(err, ErrEquateDuplicate)

	value, _ = st.Constant("X")
	assert.Equal(int32(20), value)

	count := 0
	for name, value := range st.Constants() {
		assert.Equal("X", name)
		assert.Equal(int32(20), value)
		count++
	}
	assert.Equal(1, count)
}

func TestSymbolTable_DefineRegister(t *testing.T) {
	assert := assert.New(t)

	st := NewSymbolTable()

	assert.NoError(st.DefineRegister("acc", 16))
	index, ok := st.RegisterAlias("acc")
	assert.True(ok)
	assert.Equal(16, index)

	assert.Equal(ErrRegisterInvalid(32), st.DefineRegister("bad", 32))
	_, ok = st.RegisterAlias("bad")
	assert.False(ok)
}
