package engine

import "github.com/astroforge/astro/internal/lower"

// CostModel assigns a gas cost to every executed instruction. A nil
// model means execution is unmetered.
type CostModel struct {
	Step        uint64 // ordinary instructions
	Call        uint64 // function calls
	WithdrawGas uint64 // the metered prelude itself
}

// DefaultCostModel returns the standard costs.
func DefaultCostModel() *CostModel {
	return &CostModel{Step: 1, Call: 2, WithdrawGas: 5}
}

func (m *CostModel) cost(op lower.Opcode) uint64 {
	switch op {
	case lower.OpWithdrawGas:
		return m.WithdrawGas
	case lower.OpCall:
		return m.Call
	default:
		return m.Step
	}
}

// ProfileConfig controls profiling data collection.
type ProfileConfig struct {
	// MaxCallDepth bounds the call stack considered when attributing
	// steps. Steps in deeper frames still count toward the total.
	MaxCallDepth int
}

// DefaultProfileConfig returns the standard collection settings.
func DefaultProfileConfig() *ProfileConfig {
	return &ProfileConfig{MaxCallDepth: 128}
}

// ProfileData is the raw profiling outcome of one execution. It is
// post-processed into a report by the profiling package.
type ProfileData struct {
	StepsByFunction map[string]uint64
	CallsByFunction map[string]uint64
	TotalSteps      uint64
}
