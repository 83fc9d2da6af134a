// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/ezrec/avrasm/avr"
)

// defines collects repeated -D NAME=VALUE flags.
type defines map[string]int32

func (d defines) String() string {
	return fmt.Sprint(map[string]int32(d))
}

func (d defines) Set(arg string) (err error) {
	name, text, ok := strings.Cut(arg, "=")
	if !ok {
		text = "1"
	}
	value, err := strconv.ParseInt(text, 0, 32)
	if err != nil {
		return
	}
	d[name] = int32(value)
	return
}

func main() {
	var output string
	var segment string
	var strict bool
	var verbose bool
	predefine := defines{}

	flag.StringVar(&output, "o", "", "Write the segment image to this file")
	flag.StringVar(&segment, "seg", "cseg", "Segment to write with -o: cseg, eseg or dseg")
	flag.BoolVar(&strict, "s", false, "Strict mode, constant redeclaration is an error")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.Var(predefine, "D", "Predefine a constant, NAME=VALUE")

	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatalf("%v: expected one source file, got: %v", os.Args[0], flag.Args())
	}
	source := flag.Arg(0)

	inf, err := os.Open(source)
	if err != nil {
		log.Fatalf("%v: %v", source, err)
	}
	defer inf.Close()

	asm := &avr.Assembler{
		Verbose:      verbose,
		StrictEquate: strict,
	}
	for name, value := range predefine {
		asm.Predefine(name, value)
	}

	prog, err := asm.Assemble(inf)
	if err != nil {
		log.Fatalf("%v: %v", source, err)
	}

	for kind, item := range prog.Items() {
		fmt.Printf("%v %v % x\n", kind, item, item.Bytes())
	}

	if len(output) != 0 {
		kind := avr.SEGMENT_CODE
		switch segment {
		case "cseg":
		case "eseg":
			kind = avr.SEGMENT_EEPROM
		case "dseg":
			kind = avr.SEGMENT_SRAM
		default:
			log.Fatalf("%v: unknown segment %v", os.Args[0], segment)
		}
		err = os.WriteFile(output, prog.Binary(kind), 0o644)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
	}
}
