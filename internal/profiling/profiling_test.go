package profiling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astroforge/astro/internal/engine"
)

func TestProcessOrdersByStepsDescending(t *testing.T) {
	raw := &engine.ProfileData{
		TotalSteps: 30,
		StepsByFunction: map[string]uint64{
			"astro::main":   10,
			"astro::helper": 20,
		},
		CallsByFunction: map[string]uint64{
			"astro::helper": 2,
		},
	}

	rep := NewProcessor().Process(raw)
	require.Len(t, rep.Rows, 2)
	assert.Equal(t, Row{Function: "astro::helper", Steps: 20, Calls: 2}, rep.Rows[0])
	assert.Equal(t, Row{Function: "astro::main", Steps: 10, Calls: 0}, rep.Rows[1])
	assert.Equal(t, uint64(30), rep.TotalSteps)
}

func TestProcessBreaksTiesByName(t *testing.T) {
	raw := &engine.ProfileData{
		StepsByFunction: map[string]uint64{
			"astro::b": 5,
			"astro::a": 5,
		},
	}

	rep := NewProcessor().Process(raw)
	require.Len(t, rep.Rows, 2)
	assert.Equal(t, "astro::a", rep.Rows[0].Function)
	assert.Equal(t, "astro::b", rep.Rows[1].Function)
}

func TestProcessNilInput(t *testing.T) {
	rep := NewProcessor().Process(nil)
	assert.Empty(t, rep.Rows)
	assert.Zero(t, rep.TotalSteps)
}

func TestReportString(t *testing.T) {
	rep := NewProcessor().Process(&engine.ProfileData{
		TotalSteps:      7,
		StepsByFunction: map[string]uint64{"astro::main": 7},
	})

	s := rep.String()
	assert.Contains(t, s, "astro::main")
	assert.Contains(t, s, "Total")
	assert.Contains(t, s, "7")
}
