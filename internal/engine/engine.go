// Package engine executes lowered programs. The engine is a stack
// machine over field elements with optional gas metering and profiling
// collection. One engine instance serves one pipeline invocation; it
// must not be shared across concurrent runs.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/astroforge/astro/internal/logdb"
	"github.com/astroforge/astro/internal/lower"
	"github.com/astroforge/astro/pkg/felt"
)

// stepLimit bounds unmetered execution so runaway recursion surfaces
// as an engine error instead of a hang.
const stepLimit = 1 << 24

// Engine executes one enriched lowered program.
type Engine struct {
	prog      *lower.Program
	metering  *CostModel
	contracts ContractsInfo
	profiling *ProfileConfig

	logger *slog.Logger
	dbgLog *logdb.Log

	byName map[string]*lower.Function
}

// Option configures optional engine collaborators.
type Option func(*Engine)

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithDebugLog attaches the captured-text log that the print builtin
// writes to.
func WithDebugLog(l *logdb.Log) Option {
	return func(e *Engine) { e.dbgLog = l }
}

// New constructs an engine for an enriched program. metering is nil
// for unmetered execution; profiling is nil to disable collection.
// Construction fails on malformed program structure: missing display
// names, unresolved call targets, or jumps outside the code.
func New(prog *lower.Program, metering *CostModel, contracts ContractsInfo, profiling *ProfileConfig, opts ...Option) (*Engine, error) {
	e := &Engine{
		prog:      prog,
		metering:  metering,
		contracts: contracts,
		profiling: profiling,
		logger:    slog.New(slog.DiscardHandler),
		byName:    make(map[string]*lower.Function, len(prog.Funcs)),
	}
	for _, opt := range opts {
		opt(e)
	}

	for i := range prog.Funcs {
		fn := &prog.Funcs[i]
		if fn.Name == "" {
			return nil, fmt.Errorf("function #%d has no display name; program not enriched", i)
		}
		if _, dup := e.byName[fn.Name]; dup {
			return nil, fmt.Errorf("duplicate function name %q", fn.Name)
		}
		e.byName[fn.Name] = fn
	}

	for i := range prog.Funcs {
		fn := &prog.Funcs[i]
		for pc, in := range fn.Code {
			switch in.Op {
			case lower.OpCall:
				if in.TargetName == "" {
					return nil, fmt.Errorf("%s+%d: call with unresolved target", fn.Name, pc)
				}
				if _, ok := e.byName[in.TargetName]; !ok {
					return nil, fmt.Errorf("%s+%d: call to unknown function %q", fn.Name, pc, in.TargetName)
				}
			case lower.OpJump, lower.OpJumpIfZero:
				if in.Imm < 0 || in.Imm > len(fn.Code) {
					return nil, fmt.Errorf("%s+%d: jump target %d out of range", fn.Name, pc, in.Imm)
				}
			}
		}
	}

	for name := range contracts {
		if _, ok := e.byName[name]; !ok {
			return nil, fmt.Errorf("contract metadata references unknown function %q", name)
		}
	}

	return e, nil
}

// frame is one activation record. Locals live in the shared memory
// trace starting at base.
type frame struct {
	fn   *lower.Function
	pc   int
	base int
}

type execution struct {
	e       *Engine
	stack   []felt.Felt
	memory  []*felt.Felt
	frames  []frame
	metered bool
	gas     uint64
	steps   uint64
	state   *State
	profile *ProfileData
}

// outOfGas is the panic payload for budget exhaustion.
var outOfGas = mustShortString("Out of gas")

func mustShortString(s string) felt.Felt {
	f, ok := felt.FromShortString(s)
	if !ok {
		panic("short string too long: " + s)
	}
	return f
}

// RunFunction executes fn with the given arguments, budget, and fresh
// execution-context state. A program-level panic is a normal outcome;
// the returned error covers engine-internal failures only.
func (e *Engine) RunFunction(fn *lower.Function, args []felt.Felt, availableGas *uint64, st *State) (*RunResult, error) {
	if len(args) != fn.ParamCount {
		return nil, fmt.Errorf("function %s takes %d arguments, got %d", fn.Name, fn.ParamCount, len(args))
	}
	if e.metering != nil && availableGas == nil {
		return nil, fmt.Errorf("metering configured but no gas supplied")
	}
	if st == nil {
		st = NewState()
	}

	ex := &execution{e: e, state: st}
	if e.metering != nil {
		ex.metered = true
		ex.gas = *availableGas
	}
	if e.profiling != nil {
		ex.profile = &ProfileData{
			StepsByFunction: make(map[string]uint64),
			CallsByFunction: make(map[string]uint64),
		}
	}

	e.logger.Debug("executing function",
		"function", fn.Name,
		"args", len(args),
		"metered", ex.metered,
	)

	ex.pushFrame(fn, args)
	res, err := ex.run()
	if err != nil {
		return nil, err
	}

	if ex.metered {
		remaining := ex.gas
		res.GasCounter = &remaining
	}
	res.Memory = ex.memory
	res.Profiling = ex.profile

	e.logger.Debug("execution finished",
		"outcome", res.Kind.String(),
		"values", len(res.Values),
		"steps", ex.steps,
	)
	return res, nil
}

func (ex *execution) pushFrame(fn *lower.Function, args []felt.Felt) {
	base := len(ex.memory)
	for range fn.NumLocals {
		ex.memory = append(ex.memory, nil)
	}
	for i, arg := range args {
		a := arg
		ex.memory[base+i] = &a
	}
	ex.frames = append(ex.frames, frame{fn: fn, base: base})
}

func (ex *execution) push(v felt.Felt) {
	ex.stack = append(ex.stack, v)
}

func (ex *execution) pop() felt.Felt {
	v := ex.stack[len(ex.stack)-1]
	ex.stack = ex.stack[:len(ex.stack)-1]
	return v
}

// popN pops n values, returning them in push order.
func (ex *execution) popN(n int) []felt.Felt {
	vals := make([]felt.Felt, n)
	for i := n - 1; i >= 0; i-- {
		vals[i] = ex.pop()
	}
	return vals
}

func (ex *execution) recordStep(fn *lower.Function) {
	ex.steps++
	if ex.profile == nil {
		return
	}
	ex.profile.TotalSteps++
	if len(ex.frames) <= ex.e.profiling.MaxCallDepth {
		ex.profile.StepsByFunction[fn.Name]++
	}
}

// panicResult builds a Panic outcome and appends its payload to the
// memory trace.
func (ex *execution) panicResult(values []felt.Felt) *RunResult {
	for _, v := range values {
		v := v
		ex.memory = append(ex.memory, &v)
	}
	return &RunResult{Kind: ResultPanic, Values: values}
}

func (ex *execution) run() (*RunResult, error) {
	for {
		if len(ex.frames) == 0 {
			return nil, fmt.Errorf("no active frame")
		}
		fr := &ex.frames[len(ex.frames)-1]
		if fr.pc < 0 || fr.pc >= len(fr.fn.Code) {
			return nil, fmt.Errorf("%s: program counter %d out of range", fr.fn.Name, fr.pc)
		}
		in := fr.fn.Code[fr.pc]

		if ex.steps >= stepLimit {
			return nil, fmt.Errorf("step limit exceeded after %d steps", ex.steps)
		}
		ex.recordStep(fr.fn)

		if ex.metered {
			cost := ex.e.metering.cost(in.Op)
			if ex.gas < cost {
				ex.gas = 0
				return ex.panicResult([]felt.Felt{outOfGas}), nil
			}
			ex.gas -= cost
		}

		switch in.Op {
		case lower.OpNop:
			fr.pc++

		case lower.OpPush:
			ex.push(in.Operand)
			fr.pc++

		case lower.OpLoad:
			cell := ex.memory[fr.base+in.Imm]
			if cell == nil {
				return nil, fmt.Errorf("%s+%d: load of unset local %d", fr.fn.Name, fr.pc, in.Imm)
			}
			ex.push(*cell)
			fr.pc++

		case lower.OpStore:
			v := ex.pop()
			ex.memory[fr.base+in.Imm] = &v
			fr.pc++

		case lower.OpPop:
			ex.pop()
			fr.pc++

		case lower.OpAdd, lower.OpSub, lower.OpMul,
			lower.OpEq, lower.OpNe, lower.OpLt, lower.OpLe, lower.OpGt, lower.OpGe:
			y := ex.pop()
			x := ex.pop()
			ex.push(binary(in.Op, x, y))
			fr.pc++

		case lower.OpJump:
			fr.pc = in.Imm

		case lower.OpJumpIfZero:
			if ex.pop().IsZero() {
				fr.pc = in.Imm
			} else {
				fr.pc++
			}

		case lower.OpCall:
			callee := ex.e.byName[in.TargetName]
			args := ex.popN(in.Imm)
			fr.pc++
			if ex.profile != nil {
				ex.profile.CallsByFunction[callee.Name]++
			}
			ex.pushFrame(callee, args)

		case lower.OpRet:
			values := ex.popN(in.Imm)
			ex.frames = ex.frames[:len(ex.frames)-1]
			if len(ex.frames) == 0 {
				for _, v := range values {
					v := v
					ex.memory = append(ex.memory, &v)
				}
				return &RunResult{Kind: ResultSuccess, Values: values}, nil
			}
			for _, v := range values {
				ex.push(v)
			}

		case lower.OpPanic:
			return ex.panicResult(ex.popN(in.Imm)), nil

		case lower.OpPrint:
			v := ex.pop()
			ex.state.DebugPrints++
			if ex.e.dbgLog != nil {
				ex.e.dbgLog.Append(logdb.DefaultFile, felt.FormatValue(v)+"\n")
			}
			fr.pc++

		case lower.OpWithdrawGas:
			// Cost already charged above; nothing else to do.
			fr.pc++

		default:
			return nil, fmt.Errorf("%s+%d: unknown opcode %d", fr.fn.Name, fr.pc, in.Op)
		}
	}
}

func binary(op lower.Opcode, x, y felt.Felt) felt.Felt {
	switch op {
	case lower.OpAdd:
		return x.Add(y)
	case lower.OpSub:
		return x.Sub(y)
	case lower.OpMul:
		return x.Mul(y)
	case lower.OpEq:
		return boolFelt(x.Equal(y))
	case lower.OpNe:
		return boolFelt(!x.Equal(y))
	case lower.OpLt:
		return boolFelt(x.Cmp(y) < 0)
	case lower.OpLe:
		return boolFelt(x.Cmp(y) <= 0)
	case lower.OpGt:
		return boolFelt(x.Cmp(y) > 0)
	case lower.OpGe:
		return boolFelt(x.Cmp(y) >= 0)
	}
	return felt.Felt{}
}

func boolFelt(b bool) felt.Felt {
	if b {
		return felt.New(1)
	}
	return felt.New(0)
}
