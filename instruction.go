package alu

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Opcode represents an ALU instruction.
type Opcode int

// Instruction opcodes.
const (
	OpInp Opcode = iota + 1
	OpAdd
	OpMul
	OpDiv
	OpMod
	OpEql
)

var opcodes = [...]string{
	OpInp: "inp",
	OpAdd: "add",
	OpMul: "mul",
	OpDiv: "div",
	OpMod: "mod",
	OpEql: "eql",
}

// String returns the mnemonic of the opcode.
func (op Opcode) String() string {
	if op > 0 && int(op) < len(opcodes) {
		return opcodes[op]
	}
	return fmt.Sprintf("Opcode<%d>", op)
}

// BinaryOp returns the expression operation performed by a two-operand
// opcode. Returns false for inp.
func (op Opcode) BinaryOp() (BinaryOp, bool) {
	switch op {
	case OpAdd:
		return ADD, true
	case OpMul:
		return MUL, true
	case OpDiv:
		return DIV, true
	case OpMod:
		return MOD, true
	case OpEql:
		return EQL, true
	default:
		return 0, false
	}
}

// parseOpcode returns the opcode for a mnemonic.
func parseOpcode(s string) (Opcode, bool) {
	for i, name := range opcodes {
		if name != "" && name == s {
			return Opcode(i), true
		}
	}
	return 0, false
}

// Register represents one of the four ALU registers.
type Register int

// ALU registers.
const (
	RegW Register = iota
	RegX
	RegY
	RegZ
)

// Registers lists every register in order.
var Registers = []Register{RegW, RegX, RegY, RegZ}

var registerNames = [...]string{
	RegW: "w",
	RegX: "x",
	RegY: "y",
	RegZ: "z",
}

// IsValid returns true if r names one of the four registers.
func (r Register) IsValid() bool {
	return r >= RegW && r <= RegZ
}

// String returns the name of the register.
func (r Register) String() string {
	if r.IsValid() {
		return registerNames[r]
	}
	return fmt.Sprintf("Register<%d>", r)
}

// ParseRegister returns the register named s.
func ParseRegister(s string) (Register, error) {
	for i, name := range registerNames {
		if name == s {
			return Register(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownRegister, s)
}

// Operand is the second operand of an instruction: a register or an
// immediate value.
type Operand struct {
	IsRegister bool
	Register   Register
	Value      int64
}

// RegisterOperand returns an operand that reads r.
func RegisterOperand(r Register) Operand {
	return Operand{IsRegister: true, Register: r}
}

// ValueOperand returns an immediate operand.
func ValueOperand(v int64) Operand {
	return Operand{Value: v}
}

func (o Operand) String() string {
	if o.IsRegister {
		return o.Register.String()
	}
	return strconv.FormatInt(o.Value, 10)
}

// Instruction represents a single line of an ALU program.
type Instruction struct {
	Op      Opcode
	Dest    Register
	Operand Operand // unused by inp

	Line int // source line, zero if unknown
}

// String returns the instruction in source form.
func (instr Instruction) String() string {
	if instr.Op == OpInp {
		return fmt.Sprintf("%s %s", instr.Op, instr.Dest)
	}
	return fmt.Sprintf("%s %s %s", instr.Op, instr.Dest, instr.Operand)
}

// ParseInstruction parses a single instruction such as "add x -3".
func ParseInstruction(s string) (Instruction, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return Instruction{}, fmt.Errorf("%w: empty line", ErrMalformedInstruction)
	}

	op, ok := parseOpcode(fields[0])
	if !ok {
		return Instruction{}, fmt.Errorf("%w: unknown opcode %q", ErrMalformedInstruction, fields[0])
	}

	// Verify operand count.
	want := 3
	if op == OpInp {
		want = 2
	}
	if len(fields) != want {
		return Instruction{}, fmt.Errorf("%w: %s expects %d operands: %q", ErrMalformedInstruction, op, want-1, s)
	}

	dest, err := ParseRegister(fields[1])
	if err != nil {
		return Instruction{}, err
	}
	instr := Instruction{Op: op, Dest: dest}
	if op == OpInp {
		return instr, nil
	}

	// The second operand is a register name or a signed integer literal.
	if r, err := ParseRegister(fields[2]); err == nil {
		instr.Operand = RegisterOperand(r)
	} else if v, err := strconv.ParseInt(fields[2], 10, 64); err == nil {
		instr.Operand = ValueOperand(v)
	} else {
		return Instruction{}, fmt.Errorf("%w: invalid operand %q", ErrMalformedInstruction, fields[2])
	}
	return instr, nil
}

// ParseProgram parses one instruction per line from r. Blank lines are ignored.
func ParseProgram(r io.Reader) ([]Instruction, error) {
	var prog []Instruction
	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		instr, err := ParseInstruction(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		instr.Line = line
		prog = append(prog, instr)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return prog, nil
}
