package supervisor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateNames(t *testing.T) {
	assert.Equal(t, NotRunning, State(0), "zero value must be NotRunning")
	for _, s := range []State{NotRunning, Updating, Running} {
		got, err := ParseState(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	assert.Equal(t, []string{"not_running", "updating", "running"}, StateNames())
	assert.Equal(t, "state(9)", State(9).String())

	_, err := ParseState("sleeping")
	assert.Error(t, err)
}

func TestStateJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		S State `json:"s"`
	}{Running})
	require.NoError(t, err)
	assert.JSONEq(t, `{"s":"running"}`, string(b))

	var v struct {
		S State `json:"s"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"s":"updating"}`), &v))
	assert.Equal(t, Updating, v.S)
	assert.Error(t, json.Unmarshal([]byte(`{"s":"bogus"}`), &v))
	assert.Error(t, json.Unmarshal([]byte(`{"s":1}`), &v))
}

func TestBusyStates(t *testing.T) {
	assert.True(t, Updating.busy())
	assert.True(t, Running.busy())
	assert.False(t, NotRunning.busy())
}

func TestLaunchErrorUnwrap(t *testing.T) {
	inner := assert.AnError
	err := &LaunchError{Path: "/bin/x", Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "/bin/x")
	assert.Equal(t, "start", failureReason(err))
	assert.Equal(t, "not_found", failureReason(ErrNotFound))
	assert.Equal(t, "closed", failureReason(ErrClosed))
	assert.Equal(t, "other", failureReason(assert.AnError))
}
