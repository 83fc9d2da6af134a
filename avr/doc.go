// Package avr implements a two pass assembler front end for the AVR family
// of 8-bit microcontrollers.
//
// Source text is lexed with live symbol lookups, parsed line by line into
// per-segment instruction and data streams, checked against a declarative
// operation table, resolved against the label tables of each segment, and
// finally packed into 16-bit opcode words using the bit templates of the
// operation table.
//
// Three segments are supported: code (.CSEG), initialized data held in
// EEPROM (.ESEG) and uninitialized data held in SRAM (.DSEG). Each segment
// keeps its own address counter and label namespace.
package avr
