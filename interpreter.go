package alu

import (
	"fmt"
	"log"

	"github.com/benbjohnson/immutable"
)

// Interpreter executes ALU instructions symbolically. Each register holds an
// expression over the inputs read so far.
type Interpreter struct {
	factory *Factory

	// Register file. Maps Register to Expr.
	registers *immutable.SortedMap

	inputs int // inputs read so far
	tags   int // register-to-register comparisons seen so far
}

// NewInterpreter returns an interpreter with every register set to zero.
func NewInterpreter(factory *Factory) *Interpreter {
	zero := factory.Constant(0)
	registers := immutable.NewSortedMap(&registerComparer{})
	for _, r := range Registers {
		registers = registers.Set(r, zero)
	}
	return &Interpreter{factory: factory, registers: registers}
}

// Factory returns the factory used to build register expressions.
func (i *Interpreter) Factory() *Factory {
	return i.factory
}

// Inputs returns the number of inputs read so far.
func (i *Interpreter) Inputs() int {
	return i.inputs
}

// Clone returns a snapshot of the interpreter. Executing instructions on
// either copy does not affect the other.
func (i *Interpreter) Clone() *Interpreter {
	other := *i
	return &other
}

// Register returns the current expression held by r.
func (i *Interpreter) Register(r Register) (Expr, error) {
	v, ok := i.registers.Get(r)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRegister, r)
	}
	return v.(Expr), nil
}

// Run executes every instruction of prog in order.
func (i *Interpreter) Run(prog []Instruction) error {
	for _, instr := range prog {
		if err := i.Execute(instr); err != nil {
			return err
		}
	}
	log.Printf("[interp] done: inputs=%d tags=%d nodes=%d", i.inputs, i.tags, i.factory.Len())
	return nil
}

// Execute executes a single instruction. On error the register file is
// left unchanged.
func (i *Interpreter) Execute(instr Instruction) error {
	if err := i.execute(instr); err != nil {
		if instr.Line > 0 {
			return fmt.Errorf("line %d: %s: %w", instr.Line, instr, err)
		}
		return fmt.Errorf("%s: %w", instr, err)
	}
	return nil
}

func (i *Interpreter) execute(instr Instruction) error {
	if _, err := i.Register(instr.Dest); err != nil {
		return err
	}

	if instr.Op == OpInp {
		if i.inputs >= NumInputs {
			return ErrTooManyInputs
		}
		log.Printf("[interp] %s: input %d", instr, i.inputs)
		i.registers = i.registers.Set(instr.Dest, i.factory.Input(i.inputs))
		i.inputs++
		return nil
	}

	op, ok := instr.Op.BinaryOp()
	if !ok {
		return fmt.Errorf("%w: unknown opcode %s", ErrMalformedInstruction, instr.Op)
	}

	lhs, err := i.Register(instr.Dest)
	if err != nil {
		return err
	}
	rhs, err := i.operand(instr.Operand)
	if err != nil {
		return err
	}

	// Only comparisons between registers are tracked as constraints.
	tracked := op == EQL && instr.Operand.IsRegister
	tag := NoTag
	if tracked && i.tags < NumInputs {
		tag = i.tags
	}

	expr, err := i.factory.Intern(op, lhs, rhs, tag)
	if err != nil {
		return err
	}
	i.registers = i.registers.Set(instr.Dest, expr)
	if tracked {
		i.tags++
	}
	return nil
}

// operand returns the expression for the second operand of an instruction.
func (i *Interpreter) operand(o Operand) (Expr, error) {
	if o.IsRegister {
		return i.Register(o.Register)
	}
	return i.factory.Constant(o.Value), nil
}

// registerComparer compares two registers. Implements immutable.Comparer.
type registerComparer struct{}

// Compare returns -1 if a is less than b, returns 1 if a is greater than b, and
// returns 0 if a is equal to b. Panic if a or b is not a Register.
func (c *registerComparer) Compare(a, b interface{}) int {
	if i, j := a.(Register), b.(Register); i < j {
		return -1
	} else if i > j {
		return 1
	}
	return 0
}
