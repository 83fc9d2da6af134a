package avr

import (
	"iter"

	"github.com/ezrec/avrasm/internal"
)

// Program is a fully resolved and encoded assembly, by segment.
type Program struct {
	Segments []*Segment
}

// Debug locates the item covering an address.
type Debug struct {
	Item
	Index int // Byte index of the address within the item.
}

// Segment returns the program segment of a kind, or nil if the source
// never used it.
func (prog *Program) Segment(kind SegmentKind) *Segment {
	for _, seg := range prog.Segments {
		if seg.Kind == kind {
			return seg
		}
	}
	return nil
}

// Items iterates over all segments' items, in segment and declaration order.
func (prog *Program) Items() iter.Seq2[SegmentKind, Item] {
	seqs := make([]iter.Seq2[SegmentKind, Item], len(prog.Segments))
	for n, seg := range prog.Segments {
		seqs[n] = func(yield func(SegmentKind, Item) bool) {
			for _, item := range seg.Items {
				if !yield(seg.Kind, item) {
					return
				}
			}
		}
	}
	return internal.IterSeq2Concat(seqs...)
}

// Instructions iterates over the instructions of all segments.
func (prog *Program) Instructions() iter.Seq[*Instruction] {
	seqs := make([]iter.Seq[*Instruction], len(prog.Segments))
	for n, seg := range prog.Segments {
		seqs[n] = func(yield func(*Instruction) bool) {
			for _, item := range seg.Items {
				inst, ok := item.(*Instruction)
				if ok && !yield(inst) {
					return
				}
			}
		}
	}
	return internal.IterSeqConcat(seqs...)
}

// Codes iterates over the code segment as program word address and
// opcode word pairs. Addresses span the full 22-bit program space.
func (prog *Program) Codes() iter.Seq2[int, uint16] {
	return func(yield func(pc int, code uint16) bool) {
		seg := prog.Segment(SEGMENT_CODE)
		if seg == nil {
			return
		}
		for _, item := range seg.Items {
			pc := item.Address() / 2
			var words []uint16
			switch it := item.(type) {
			case *Instruction:
				words = it.Words
			case *DefinedWords:
				words = it.Words()
			case *DefinedBytes:
				data := it.Bytes()
				for n := 0; n < len(data); n += 2 {
					words = append(words, uint16(data[n])|uint16(data[n+1])<<8)
				}
			}
			for n, code := range words {
				if !yield(pc+n, code) {
					return
				}
			}
		}
	}
}

// Binary returns the memory image of a segment, little-endian, from
// address 0 to the end of its last item. Gaps are zero filled.
func (prog *Program) Binary(kind SegmentKind) (image []byte) {
	seg := prog.Segment(kind)
	if seg == nil {
		return
	}

	for _, item := range seg.Items {
		end := item.Address() + item.Size()
		if end > len(image) {
			image = append(image, make([]byte, end-len(image))...)
		}
		copy(image[item.Address():], item.Bytes())
	}

	return
}

// Debug finds the item of a segment that covers a byte address.
func (prog *Program) Debug(kind SegmentKind, address int) (dbg Debug) {
	seg := prog.Segment(kind)
	if seg == nil {
		return
	}

	for _, item := range seg.Items {
		if address >= item.Address() && address < item.Address()+item.Size() {
			dbg = Debug{
				Item:  item,
				Index: address - item.Address(),
			}
			break
		}
	}

	return
}
