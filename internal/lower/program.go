// Package lower turns a checked program into the flat instruction form
// executed by the engine, together with the debug metadata needed to
// replace internal function identifiers with display names.
package lower

import (
	"fmt"

	"github.com/astroforge/astro/pkg/felt"
)

// Opcode identifies one instruction of the lowered form.
type Opcode uint8

const (
	OpNop Opcode = iota

	OpPush  // push Operand
	OpLoad  // push local slot Imm
	OpStore // pop into local slot Imm
	OpPop   // discard top of stack

	OpAdd
	OpSub
	OpMul

	// Comparisons pop y then x and push 1 or 0.
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe

	OpJump       // jump to Imm
	OpJumpIfZero // pop cond; jump to Imm when zero

	OpCall  // call Target/TargetName with Imm arguments
	OpRet   // return Imm values (0 or 1)
	OpPanic // pop Imm values and raise a program-level panic

	OpPrint // pop one value and emit it to the debug log

	OpWithdrawGas // metered prelude; consumes from the gas counter
)

var opcodeNames = map[Opcode]string{
	OpNop:         "nop",
	OpPush:        "push",
	OpLoad:        "load",
	OpStore:       "store",
	OpPop:         "pop",
	OpAdd:         "add",
	OpSub:         "sub",
	OpMul:         "mul",
	OpEq:          "eq",
	OpNe:          "ne",
	OpLt:          "lt",
	OpLe:          "le",
	OpGt:          "gt",
	OpGe:          "ge",
	OpJump:        "jump",
	OpJumpIfZero:  "jumpz",
	OpCall:        "call",
	OpRet:         "ret",
	OpPanic:       "panic",
	OpPrint:       "print",
	OpWithdrawGas: "withdraw_gas",
}

func (op Opcode) String() string {
	if s, ok := opcodeNames[op]; ok {
		return s
	}
	return fmt.Sprintf("Opcode(%d)", int(op))
}

// FuncID is an internal function identifier, valid before enrichment
// erases it. NoFunc marks an erased identifier.
type FuncID int

// NoFunc is the erased identifier value.
const NoFunc FuncID = -1

// Instruction is one lowered operation.
type Instruction struct {
	Op      Opcode
	Imm     int       // slot, jump target, or value count
	Operand felt.Felt // OpPush only

	// Call target. Lowering emits the internal identifier; the
	// replacer fills TargetName and erases Target.
	Target     FuncID
	TargetName string
}

func (in Instruction) String() string {
	switch in.Op {
	case OpPush:
		return fmt.Sprintf("push %s", in.Operand)
	case OpLoad, OpStore:
		return fmt.Sprintf("%s [%d]", in.Op, in.Imm)
	case OpJump, OpJumpIfZero:
		return fmt.Sprintf("%s %d", in.Op, in.Imm)
	case OpCall:
		if in.TargetName != "" {
			return fmt.Sprintf("call %s/%d", in.TargetName, in.Imm)
		}
		return fmt.Sprintf("call #%d/%d", in.Target, in.Imm)
	case OpRet, OpPanic:
		return fmt.Sprintf("%s %d", in.Op, in.Imm)
	default:
		return in.Op.String()
	}
}

// Function is one lowered function body.
type Function struct {
	ID           FuncID // NoFunc after enrichment
	Name         string // display name, empty until enriched
	ParamCount   int
	NumLocals    int // params included
	ReturnsValue bool
	Code         []Instruction
}

// Program is the ordered sequence of lowered functions.
type Program struct {
	Funcs []Function
}

// RequiresGasCounter reports whether any instruction consumes from a
// metering budget. The property belongs to the lowered instructions,
// not the source program.
func (p *Program) RequiresGasCounter() bool {
	for _, fn := range p.Funcs {
		for _, in := range fn.Code {
			if in.Op == OpWithdrawGas {
				return true
			}
		}
	}
	return false
}
