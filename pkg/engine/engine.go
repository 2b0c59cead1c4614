// Package engine implements the Universal Machine's execution engine:
// the fetch-decode-execute loop that drives a register file and a
// segmented heap to run UM bytecode.
//
// The engine owns no goroutines and blocks only inside the input
// opcode, waiting on its configured reader. It is not safe for
// concurrent use by multiple goroutines; the dispatch loop is the only
// thread of execution the Universal Machine ever has.
package engine

import (
	"errors"
	"fmt"
	"io"

	"github.com/yann-ybi/rum/pkg/memory"
	"github.com/yann-ybi/rum/pkg/registers"
)

// The following constants name the fourteen opcodes. Bits 28-31 of an
// instruction word select one of these.
const (
	OpCondMove = uint32(iota)
	OpSegLoad
	OpSegStore
	OpAdd
	OpMul
	OpDiv
	OpNand
	OpHalt
	OpMap
	OpUnmap
	OpOutput
	OpInput
	OpProgLoad
	OpLoadImm
	opCount // first invalid opcode; also the count of valid opcodes
)

// EndOfInput is the sentinel word opcode 11 (input) writes to its
// destination register when the input stream is exhausted.
const EndOfInput = uint32(0xFFFFFFFF)

// Sentinel errors surfaced by the engine. Use errors.Is to test for a
// specific fault.
var (
	// ErrHalted is returned by Step when opcode 7 executes. It is not
	// a fault: Step sets the terminal State Halted, and Run translates
	// it into a nil error.
	ErrHalted = errors.New("engine: halted")

	// ErrInvalidOpcode indicates the opcode field was >= 14.
	ErrInvalidOpcode = errors.New("engine: invalid opcode")

	// ErrFetchOutOfBounds indicates pc pointed outside segment 0 at
	// fetch time.
	ErrFetchOutOfBounds = errors.New("engine: fetch out of bounds")

	// ErrDivByZero indicates opcode 5 executed with r[C] = 0.
	ErrDivByZero = errors.New("engine: division by zero")

	// ErrInvalidOutputByte indicates opcode 10 executed with r[C] > 255.
	ErrInvalidOutputByte = errors.New("engine: output value exceeds one byte")

	// ErrIO wraps a failure reported by the configured input or output
	// stream.
	ErrIO = errors.New("engine: i/o failure")

	// ErrNotRunning indicates Step was called after the engine already
	// reached a terminal state (Halted or Faulted).
	ErrNotRunning = errors.New("engine: not running")
)

// State is one of the engine's three lifecycle states.
type State int

const (
	// Running is the initial state; the dispatch loop may still advance.
	Running State = iota
	// Halted is terminal: opcode 7 executed successfully.
	Halted
	// Faulted is terminal: some fatal condition aborted execution.
	Faulted
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Halted:
		return "halted"
	case Faulted:
		return "faulted"
	default:
		return "unknown"
	}
}

// Instruction is a decoded instruction word. Three-register-format
// opcodes (0..12) use A, B, C; the load-immediate opcode (13) uses
// ImmA and V instead, since its A field sits at a different bit
// position than the three-register format's A.
type Instruction struct {
	Opcode  uint32
	A, B, C uint32
	ImmA    uint32
	V       uint32
}

// Decode splits an instruction word into its opcode and operand
// fields. Both the three-register and load-immediate fields are always
// computed; callers select the ones that apply to Opcode.
func Decode(word uint32) Instruction {
	return Instruction{
		Opcode: word >> 28,
		A:      (word >> 6) & 0b111,
		B:      (word >> 3) & 0b111,
		C:      word & 0b111,
		ImmA:   (word >> 25) & 0b111,
		V:      word & 0x01FFFFFF,
	}
}

// Engine is the Universal Machine's execution engine: a program
// counter, a register file, and a segmented heap, driven by Run/Step.
type Engine struct {
	pc    uint32
	regs  registers.File
	heap  *memory.Heap
	state State

	in  io.Reader
	out io.Writer

	// inbuf/outbuf avoid a fresh one-byte allocation on every opcode
	// 10/11 execution.
	inbuf  [1]byte
	outbuf [1]byte

	lastWord uint32

	// Trace, if non-nil, is invoked after every successful fetch with
	// the pc the instruction was fetched from and the raw word. It is
	// a pure side channel for CLI verbose tracing and never influences
	// engine state.
	Trace func(pc, word uint32)
}

// New constructs an engine whose segment 0 holds a copy of program,
// opcode 11 reads from in, and opcode 10 writes to out.
func New(program []uint32, in io.Reader, out io.Writer) *Engine {
	return &Engine{
		heap: memory.New(program),
		in:   in,
		out:  out,
	}
}

// State returns the engine's current lifecycle state.
func (e *Engine) State() State {
	return e.state
}

// PC returns the current program counter, an offset into segment 0.
func (e *Engine) PC() uint32 {
	return e.pc
}

// Register returns the current value of register i (0..7).
func (e *Engine) Register(i uint32) uint32 {
	return e.regs.Read(i)
}

// LastWord returns the most recently fetched instruction word, for
// fault reporting.
func (e *Engine) LastWord() uint32 {
	return e.lastWord
}

// Run drives the dispatch loop until the engine halts or faults. It
// returns nil on a clean halt (opcode 7) and a non-nil, errors.Is-
// testable error on any fault.
func (e *Engine) Run() error {
	for {
		err := e.Step()
		if err == nil {
			continue
		}
		if errors.Is(err, ErrHalted) {
			return nil
		}
		return err
	}
}

// Step fetches, decodes, and executes exactly one instruction. It
// returns ErrHalted when opcode 7 executes, any other fault on a fatal
// condition, and nil otherwise. Step may not be called again once the
// engine has reached a terminal state.
func (e *Engine) Step() error {
	if e.state != Running {
		return ErrNotRunning
	}

	word, err := e.heap.Load(memory.ProgramSegment, e.pc)
	if err != nil {
		e.state = Faulted
		return fmt.Errorf("%w: pc=%d: %s", ErrFetchOutOfBounds, e.pc, err)
	}
	e.lastWord = word
	if e.Trace != nil {
		e.Trace(e.pc, word)
	}
	fetchedPC := e.pc
	e.pc++

	inst := Decode(word)
	if inst.Opcode >= opCount {
		e.state = Faulted
		return fmt.Errorf("%w: %d at pc=%d", ErrInvalidOpcode, inst.Opcode, fetchedPC)
	}

	if err := e.execute(inst); err != nil {
		if errors.Is(err, ErrHalted) {
			e.state = Halted
			return err
		}
		e.state = Faulted
		return err
	}
	return nil
}

func (e *Engine) execute(inst Instruction) error {
	switch inst.Opcode {
	case OpCondMove:
		if e.regs.Read(inst.C) != 0 {
			e.regs.Write(inst.A, e.regs.Read(inst.B))
		}

	case OpSegLoad:
		w, err := e.heap.Load(e.regs.Read(inst.B), e.regs.Read(inst.C))
		if err != nil {
			return err
		}
		e.regs.Write(inst.A, w)

	case OpSegStore:
		if err := e.heap.Store(e.regs.Read(inst.A), e.regs.Read(inst.B), e.regs.Read(inst.C)); err != nil {
			return err
		}

	case OpAdd:
		e.regs.Write(inst.A, e.regs.Read(inst.B)+e.regs.Read(inst.C))

	case OpMul:
		e.regs.Write(inst.A, e.regs.Read(inst.B)*e.regs.Read(inst.C))

	case OpDiv:
		divisor := e.regs.Read(inst.C)
		if divisor == 0 {
			return fmt.Errorf("%w: pc=%d", ErrDivByZero, e.pc-1)
		}
		e.regs.Write(inst.A, e.regs.Read(inst.B)/divisor)

	case OpNand:
		e.regs.Write(inst.A, ^(e.regs.Read(inst.B) & e.regs.Read(inst.C)))

	case OpHalt:
		return ErrHalted

	case OpMap:
		id := e.heap.Allocate(e.regs.Read(inst.C))
		e.regs.Write(inst.B, id)

	case OpUnmap:
		if err := e.heap.Deallocate(e.regs.Read(inst.C)); err != nil {
			return err
		}

	case OpOutput:
		v := e.regs.Read(inst.C)
		if v > 0xFF {
			return fmt.Errorf("%w: value %d at pc=%d", ErrInvalidOutputByte, v, e.pc-1)
		}
		e.outbuf[0] = byte(v)
		if _, err := e.out.Write(e.outbuf[:]); err != nil {
			return fmt.Errorf("%w: %s", ErrIO, err)
		}

	case OpInput:
		n, err := e.in.Read(e.inbuf[:])
		switch {
		case n == 1:
			e.regs.Write(inst.C, uint32(e.inbuf[0]))
		case errors.Is(err, io.EOF):
			e.regs.Write(inst.C, EndOfInput)
		case err != nil:
			return fmt.Errorf("%w: %s", ErrIO, err)
		default:
			// n == 0 with a nil error: treat as end of input rather
			// than spin; well-behaved io.Readers shouldn't do this,
			// but the contract allows it.
			e.regs.Write(inst.C, EndOfInput)
		}

	case OpProgLoad:
		b := e.regs.Read(inst.B)
		if b != memory.ProgramSegment {
			if err := e.heap.CloneIntoZero(b); err != nil {
				return err
			}
		}
		e.pc = e.regs.Read(inst.C)

	case OpLoadImm:
		e.regs.Write(inst.ImmA, inst.V)
	}
	return nil
}
