package scenarios

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/fresim/internal/sim"
	"github.com/san-kum/fresim/internal/states"
)

type opaqueState struct{ fxi, delta float64 }

func (o *opaqueState) FXI() float64                { return o.fxi }
func (o *opaqueState) Delta() float64              { return o.delta }
func (o *opaqueState) Validate() error             { return nil }
func (o *opaqueState) ComputeDelta()               {}
func (o *opaqueState) UpdateFromOperator(n float64) { o.fxi = n }

func TestNoShockReturnsSameState(t *testing.T) {
	st := states.NewMass(1.2, 1.0, 1.15)
	got := NoShock{}.Apply(st, 3)
	assert.Same(t, st, got)
	assert.Equal(t, 1.15, got.FXI())
}

func TestFunc(t *testing.T) {
	calls := 0
	f := Func(func(s sim.State, step int) sim.State {
		calls++
		assert.Equal(t, 7, step)
		return s
	})

	st := states.NewMass(1.0, 1.0, 1.0)
	f.Apply(st, 7)
	assert.Equal(t, 1, calls)
}

func TestScheduleAppliesOnlyAtStep(t *testing.T) {
	sched := NewSchedule("kick",
		Shock{Step: 2, Kind: ShockFXIShift, Value: 0.3},
		Shock{Step: 2, Kind: ShockDeltaSet, Value: 0.7},
		Shock{Step: 4, Kind: ShockFXISet, Value: 0.9},
	)
	require.NoError(t, sched.Validate())

	st := states.NewMass(1.0, 1.0, 1.0)

	sched.Apply(st, 1)
	assert.Equal(t, 1.0, st.FXI())
	assert.Equal(t, 0.0, st.Delta())

	sched.Apply(st, 2)
	assert.InDelta(t, 1.3, st.FXI(), 1e-12)
	assert.InDelta(t, 0.7, st.Delta(), 1e-12)

	sched.Apply(st, 4)
	assert.Equal(t, 0.9, st.FXI())
}

func TestScheduleDeltaShift(t *testing.T) {
	st := states.NewMass(1.2, 1.0, 1.0)
	NewSchedule("", Shock{Step: 0, Kind: ShockDeltaShift, Value: -0.5}).Apply(st, 0)
	assert.InDelta(t, -0.3, st.Delta(), 1e-12)
}

func TestScheduleSkipsOpaqueState(t *testing.T) {
	st := &opaqueState{fxi: 1.1, delta: 0.1}
	got := NewSchedule("", Shock{Step: 0, Kind: ShockFXISet, Value: 3}).Apply(st, 0)
	assert.Same(t, st, got)
	assert.Equal(t, 1.1, st.fxi)
}

func TestScheduleValidate(t *testing.T) {
	tests := []struct {
		name  string
		shock Shock
	}{
		{"negative step", Shock{Step: -1, Kind: ShockFXISet}},
		{"missing kind", Shock{Step: 1}},
		{"unknown kind", Shock{Step: 1, Kind: "teleport"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, NewSchedule("bad", tt.shock).Validate())
		})
	}
}

func TestLoadSchedule(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shock.yaml")
	content := `
name: late-kick
shocks:
  - step: 5
    kind: delta_set
    value: 2.0
  - step: 8
    kind: fxi_shift
    value: 0.25
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	sched, err := LoadSchedule(path)
	require.NoError(t, err)
	assert.Equal(t, "late-kick", sched.Name)
	require.Len(t, sched.Shocks, 2)
	assert.Equal(t, Shock{Step: 5, Kind: ShockDeltaSet, Value: 2.0}, sched.Shocks[0])
}

func TestLoadScheduleRejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "typo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: x\nshock: []\n"), 0644))

	_, err := LoadSchedule(path)
	assert.Error(t, err)
}

func TestLoadScheduleMissingFile(t *testing.T) {
	_, err := LoadSchedule(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
