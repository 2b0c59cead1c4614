// Package disasm renders a Universal Machine instruction word as a
// human-readable mnemonic line. It shares the engine package's decode
// helpers rather than re-implementing the bit layout, so the two can
// never drift apart.
//
// This is supplementary tooling, not part of the engine's hot path:
// the standalone cmd/umdis binary uses it to disassemble whole
// programs, and cmd/um's -v flag uses it to trace execution.
package disasm

import (
	"fmt"

	"github.com/yann-ybi/rum/pkg/engine"
)

var mnemonics = map[uint32]string{
	engine.OpCondMove: "cond-move",
	engine.OpSegLoad:  "seg-load",
	engine.OpSegStore: "seg-store",
	engine.OpAdd:      "add",
	engine.OpMul:      "mul",
	engine.OpDiv:      "div",
	engine.OpNand:     "nand",
	engine.OpHalt:     "halt",
	engine.OpMap:      "map",
	engine.OpUnmap:    "unmap",
	engine.OpOutput:   "output",
	engine.OpInput:    "input",
	engine.OpProgLoad: "prog-load",
	engine.OpLoadImm:  "load-imm",
}

// One disassembles a single instruction word into one line of text,
// with no trailing newline.
func One(word uint32) string {
	inst := engine.Decode(word)
	name, ok := mnemonics[inst.Opcode]
	if !ok {
		return fmt.Sprintf("<invalid opcode %d>", inst.Opcode)
	}
	switch inst.Opcode {
	case engine.OpHalt:
		return name
	case engine.OpLoadImm:
		return fmt.Sprintf("%s r%d %d", name, inst.ImmA, inst.V)
	case engine.OpSegLoad, engine.OpAdd, engine.OpMul, engine.OpDiv, engine.OpNand, engine.OpCondMove:
		return fmt.Sprintf("%s r%d r%d r%d", name, inst.A, inst.B, inst.C)
	case engine.OpSegStore:
		return fmt.Sprintf("%s r%d r%d r%d", name, inst.A, inst.B, inst.C)
	case engine.OpMap:
		return fmt.Sprintf("%s r%d r%d", name, inst.B, inst.C)
	case engine.OpUnmap, engine.OpOutput, engine.OpInput:
		return fmt.Sprintf("%s r%d", name, inst.C)
	case engine.OpProgLoad:
		return fmt.Sprintf("%s r%d r%d", name, inst.B, inst.C)
	default:
		return name
	}
}
