package avr

import (
	"fmt"
	"math"
	"strings"
)

// SegmentKind selects an address space.
type SegmentKind int

//go:generate go tool stringer -linecomment -type=SegmentKind
const (
	SEGMENT_CODE   = SegmentKind(0) // cseg
	SEGMENT_EEPROM = SegmentKind(1) // eseg
	SEGMENT_SRAM   = SegmentKind(2) // dseg
)

// SEGMENT_COUNT is the number of segment kinds.
const SEGMENT_COUNT = 3

// IsData returns true for the data segments, which may reserve space.
func (kind SegmentKind) IsData() bool {
	return kind != SEGMENT_CODE
}

// Item is a sized entry placed in a segment.
type Item interface {
	Address() int   // Byte offset within the segment.
	Size() int      // Size in bytes.
	Line() int      // Source line number.
	Bytes() []byte  // Encoded payload, little-endian words.
	String() string // Listing representation.
}

// Instruction is an operation with its operands, placed in a segment.
type Instruction struct {
	Spec     *OperationSpec
	Operands []Operand
	Offset   int
	LineNo   int
	Words    []uint16 // Encoded words, set by Encode.
}

var _ Item = (*Instruction)(nil)

func (inst *Instruction) Address() int { return inst.Offset }
func (inst *Instruction) Size() int    { return inst.Spec.Size() }
func (inst *Instruction) Line() int    { return inst.LineNo }

// Bytes returns the encoded words, little-endian.
func (inst *Instruction) Bytes() (data []byte) {
	for _, word := range inst.Words {
		data = append(data, byte(word), byte(word>>8))
	}
	return
}

// Encode packs the resolved operands into Words.
func (inst *Instruction) Encode() (err error) {
	inst.Words, err = inst.Spec.Encode(inst.Operands)
	return
}

func (inst *Instruction) String() string {
	args := make([]string, len(inst.Operands))
	for n, op := range inst.Operands {
		args[n] = op.String()
	}
	if len(args) == 0 {
		return fmt.Sprintf("%04x: <%v>", inst.Offset, inst.Spec.Mnemonic)
	}
	return fmt.Sprintf("%04x: <%v %v>", inst.Offset, inst.Spec.Mnemonic, strings.Join(args, ","))
}

// DefinedBytes is raw byte data, padded to an even size.
type DefinedBytes struct {
	Offset int
	LineNo int
	Data   []byte
}

var _ Item = (*DefinedBytes)(nil)

func (db *DefinedBytes) Address() int { return db.Offset }
func (db *DefinedBytes) Size() int    { return (len(db.Data) + 1) &^ 1 }
func (db *DefinedBytes) Line() int    { return db.LineNo }

// Bytes returns the data, including the alignment pad.
func (db *DefinedBytes) Bytes() []byte {
	data := make([]byte, db.Size())
	copy(data, db.Data)
	return data
}

func (db *DefinedBytes) String() string {
	return fmt.Sprintf("%04x: .db % x", db.Offset, db.Data)
}

// DefinedWords is raw word data. Values may name labels until resolved.
type DefinedWords struct {
	Offset int
	LineNo int
	Values []Operand
}

var _ Item = (*DefinedWords)(nil)

func (dw *DefinedWords) Address() int { return dw.Offset }
func (dw *DefinedWords) Size() int    { return len(dw.Values) * 2 }
func (dw *DefinedWords) Line() int    { return dw.LineNo }

// Words returns the resolved values as 16-bit words.
func (dw *DefinedWords) Words() (words []uint16) {
	for _, value := range dw.Values {
		if c, ok := value.(ConstantOperand); ok {
			words = append(words, uint16(c))
		} else {
			words = append(words, 0)
		}
	}
	return
}

// Bytes returns the words, little-endian.
func (dw *DefinedWords) Bytes() (data []byte) {
	for _, word := range dw.Words() {
		data = append(data, byte(word), byte(word>>8))
	}
	return
}

func (dw *DefinedWords) String() string {
	args := make([]string, len(dw.Values))
	for n, op := range dw.Values {
		args[n] = op.String()
	}
	return fmt.Sprintf("%04x: .dw %v", dw.Offset, strings.Join(args, ","))
}

// Segment is an address space with its own offset counter and labels.
type Segment struct {
	Kind   SegmentKind
	Origin *int           // Address of the first .ORG, if any.
	Offset int            // Next free byte offset.
	Items  []Item         // Placed items, in declaration order.
	Labels map[string]int // Label byte offsets.
}

// NewSegment creates an empty segment at offset 0.
func NewSegment(kind SegmentKind) *Segment {
	return &Segment{
		Kind:   kind,
		Labels: make(map[string]int),
	}
}

// AddLabel records name at the current offset.
func (seg *Segment) AddLabel(name string) (err error) {
	if _, ok := seg.Labels[name]; ok {
		err = ErrLabelDuplicate
		return
	}

	seg.Labels[name] = seg.Offset
	return
}

// Label returns the offset of a label in this segment.
func (seg *Segment) Label(name string) (offset int, ok bool) {
	offset, ok = seg.Labels[name]
	return
}

// SetOrigin moves the offset counter. It may not move backwards.
func (seg *Segment) SetOrigin(address int) (err error) {
	if address < seg.Offset {
		err = ErrOriginBackwards
		return
	}

	if seg.Origin == nil {
		origin := address
		seg.Origin = &origin
	}
	seg.Offset = address
	return
}

// ReserveBytes advances a data segment's offset without placing an item.
func (seg *Segment) ReserveBytes(count int) (err error) {
	if !seg.Kind.IsData() {
		err = ErrReserveCode
		return
	}
	if count < 0 {
		err = ErrReserveNegative
		return
	}

	seg.Offset += count
	return
}

// place appends an item at the current offset and advances past it.
func (seg *Segment) place(item Item) {
	seg.Items = append(seg.Items, item)
	seg.Offset += item.Size()
}

// AddInstruction places an instruction at the current offset.
func (seg *Segment) AddInstruction(spec *OperationSpec, operands []Operand, lineno int) (inst *Instruction) {
	inst = &Instruction{
		Spec:     spec,
		Operands: operands,
		Offset:   seg.Offset,
		LineNo:   lineno,
	}

	seg.place(inst)
	return
}

// DefineBytes places byte data; each value must be in -128..255.
func (seg *Segment) DefineBytes(values []int64, lineno int) (db *DefinedBytes, err error) {
	data := make([]byte, len(values))
	for n, value := range values {
		if value < -128 || value > 255 {
			err = ErrByteRange
			return
		}
		data[n] = byte(value)
	}

	db = &DefinedBytes{
		Offset: seg.Offset,
		LineNo: lineno,
		Data:   data,
	}

	seg.place(db)
	return
}

// DefineWords places word data; constants must be in -32768..65535.
// Symbol values are checked when resolved.
func (seg *Segment) DefineWords(values []Operand, lineno int) (dw *DefinedWords, err error) {
	for _, value := range values {
		if err = checkWord(value); err != nil {
			return
		}
	}

	dw = &DefinedWords{
		Offset: seg.Offset,
		LineNo: lineno,
		Values: values,
	}

	seg.place(dw)
	return
}

func checkWord(value Operand) (err error) {
	switch v := value.(type) {
	case ConstantOperand:
		if v < -32768 || v > 65535 {
			err = ErrWordRange
		}
	case RegisterOperand:
		err = ErrExpectedNumeric
	}
	return
}

// Resolve replaces symbol operands with the offsets of labels in seg,
// range checking the resolved values.
func (inst *Instruction) Resolve(seg *Segment) (err error) {
	for n, operand := range inst.Operands {
		sym, ok := operand.(SymbolOperand)
		if !ok {
			continue
		}
		label, ok := seg.Label(string(sym))
		if !ok {
			err = ErrLabelMissing(sym)
			return
		}

		kind := inst.Spec.Operands[n]
		value := kind.Resolve(label, inst.Offset, inst.Size())
		if value > math.MaxInt32 || value < math.MinInt32 {
			err = &ErrOperand{Mnemonic: inst.Spec.Mnemonic, Index: n, Err: ErrConstantRange}
			return
		}
		resolved := ConstantOperand(value)
		if err = kind.Validate(resolved); err != nil {
			err = &ErrOperand{Mnemonic: inst.Spec.Mnemonic, Index: n, Err: err}
			return
		}
		inst.Operands[n] = resolved
	}

	return
}

// Resolve replaces label values with their addresses in seg. Code
// segment labels resolve to program word addresses.
func (dw *DefinedWords) Resolve(seg *Segment) (err error) {
	for n, value := range dw.Values {
		sym, ok := value.(SymbolOperand)
		if !ok {
			continue
		}
		label, ok := seg.Label(string(sym))
		if !ok {
			err = ErrLabelMissing(sym)
			return
		}
		if seg.Kind == SEGMENT_CODE {
			label /= 2
		}
		resolved := ConstantOperand(label)
		if err = checkWord(resolved); err != nil {
			return
		}
		dw.Values[n] = resolved
	}

	return
}
