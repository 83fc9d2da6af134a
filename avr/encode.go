package avr

// Encode packs operand values into the opcode template, returning one
// 16-bit word per 16 template bits.
//
// Each operand's bit field is spread over the template positions of its
// placeholder letter, most significant bit first in template order, across
// word boundaries.
func (op *OperationSpec) Encode(operands []Operand) (words []uint16, err error) {
	if len(operands) != len(op.Operands) {
		err = ErrArgumentCount
		return
	}

	words = make([]uint16, len(op.Template)/16)
	for pos := range len(op.Template) {
		if op.Template[pos] == '1' {
			setBit(words, pos)
		}
	}

	for n, kind := range op.Operands {
		var field uint64
		field, err = kind.Field(operands[n])
		if err != nil {
			words = nil
			err = &ErrOperand{Mnemonic: op.Mnemonic, Index: n, Err: err}
			return
		}
		positions := op.fields[n]
		for i, pos := range positions {
			if (field>>(len(positions)-1-i))&1 == 1 {
				setBit(words, pos)
			}
		}
	}

	return
}

// Decode extracts the operand values from encoded words. It does not
// check that the fixed template bits match.
func (op *OperationSpec) Decode(words []uint16) (operands []Operand, err error) {
	if len(words) != len(op.Template)/16 {
		err = ErrArgumentCount
		return
	}

	operands = make([]Operand, len(op.Operands))
	for n, kind := range op.Operands {
		var field uint64
		for _, pos := range op.fields[n] {
			field <<= 1
			if getBit(words, pos) {
				field |= 1
			}
		}
		operands[n] = kind.Operand(field)
	}

	return
}

// Matches returns true if the fixed template bits match the words.
func (op *OperationSpec) Matches(words []uint16) bool {
	if len(words) != len(op.Template)/16 {
		return false
	}

	for pos := range len(op.Template) {
		switch op.Template[pos] {
		case '0':
			if getBit(words, pos) {
				return false
			}
		case '1':
			if !getBit(words, pos) {
				return false
			}
		}
	}

	return true
}

// setBit sets template bit 'pos'; bit 0 is the MSB of the first word.
func setBit(words []uint16, pos int) {
	words[pos/16] |= 1 << (15 - pos%16)
}

func getBit(words []uint16, pos int) bool {
	return (words[pos/16]>>(15-pos%16))&1 == 1
}
