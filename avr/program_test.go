package avr

import (
	"maps"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testProgram(t *testing.T, lines ...string) *Program {
	asm := &Assembler{}
	prog, err := asm.Assemble(strings.NewReader(strings.Join(lines, "\n")))
	if err != nil {
		t.Fatal(err)
	}
	return prog
}

func TestProgram_Debug(t *testing.T) {
	assert := assert.New(t)

	prog := testProgram(t,
		"ldi r16, 0x10",
		"ldi r17, 0x20",
		"add r16, r17",
	)

	dbg := prog.Debug(SEGMENT_CODE, 0)
	assert.NotNil(dbg.Item)
	assert.Equal(1, dbg.Line())
	assert.Equal(0, dbg.Index)

	dbg = prog.Debug(SEGMENT_CODE, 2)
	assert.NotNil(dbg.Item)
	assert.Equal(2, dbg.Line())
	assert.Equal(0, dbg.Index)

	dbg = prog.Debug(SEGMENT_CODE, 5)
	assert.NotNil(dbg.Item)
	assert.Equal(3, dbg.Line())
	assert.Equal(1, dbg.Index)
}

func TestProgram_Debug_NotFound(t *testing.T) {
	assert := assert.New(t)

	prog := testProgram(t, "ldi r16, 0x10")

	dbg := prog.Debug(SEGMENT_CODE, 10)
	assert.Nil(dbg.Item)
	assert.Equal(0, dbg.Index)

	dbg = prog.Debug(SEGMENT_EEPROM, 0)
	assert.Nil(dbg.Item)
}

func TestProgram_Debug_MultipleWords(t *testing.T) {
	assert := assert.New(t)

	prog := testProgram(t, "FUNC: call FUNC", ".ESEG", ".DB 1, 2, 3")

	for address := range 4 {
		dbg := prog.Debug(SEGMENT_CODE, address)
		assert.Equal(address, dbg.Index)
		assert.Equal(1, dbg.Line())
	}
	assert.Nil(prog.Debug(SEGMENT_CODE, 4).Item)

	dbg := prog.Debug(SEGMENT_EEPROM, 3)
	assert.Equal(3, dbg.Index)
	assert.Equal(3, dbg.Line())
}

func TestProgram_Items(t *testing.T) {
	assert := assert.New(t)

	prog := testProgram(t,
		".DSEG",
		".BYTE 2",
		".ESEG",
		".DB 1",
		".CSEG",
		"nop",
		"ret",
	)

	var segs []SegmentKind
	var lines []int
	for kind, item := range prog.Items() {
		segs = append(segs, kind)
		lines = append(lines, item.Line())
	}
	assert.Equal([]SegmentKind{SEGMENT_CODE, SEGMENT_CODE, SEGMENT_EEPROM}, segs)
	assert.Equal([]int{6, 7, 4}, lines)

	// Stopping early.
	for kind := range prog.Items() {
		assert.Equal(SEGMENT_CODE, kind)
		break
	}

	insts := slices.Collect(prog.Instructions())
	assert.Len(insts, 2)
	assert.Equal("0002: <RET>", insts[1].String())
}

func TestProgram_Binary(t *testing.T) {
	assert := assert.New(t)

	prog := testProgram(t, ".ORG 4", "ldi r16, 0xff", ".DW 0xbeef")

	assert.Equal([]byte{0, 0, 0, 0, 0x0f, 0xef, 0xef, 0xbe}, prog.Binary(SEGMENT_CODE))
	assert.Nil(prog.Binary(SEGMENT_EEPROM))

	var pcs []int
	var codes []uint16
	for pc, code := range prog.Codes() {
		pcs = append(pcs, pc)
		codes = append(codes, code)
	}
	assert.Equal([]int{2, 3}, pcs)
	assert.Equal([]uint16{0xef0f, 0xbeef}, codes)
}

func TestProgram_Codes_FarAddress(t *testing.T) {
	assert := assert.New(t)

	prog := testProgram(t,
		"nop",
		".ORG 0x20000",
		"far: ldi r16, 1",
		"jmp far",
	)

	assert.Equal(map[int]uint16{
		0:       0x0000,
		0x10000: 0xe001,
		0x10001: 0x940d,
		0x10002: 0x0000,
	}, maps.Collect(prog.Codes()))
}
