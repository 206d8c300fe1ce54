package supervisor

import (
	"encoding/json"
	"fmt"
)

// State is the run state of a handle's child.
type State int

const (
	NotRunning State = iota
	// Updating is reserved. Nothing sets it yet, but Launch treats it like Running.
	Updating
	Running
)

var stateNames = [...]string{
	NotRunning: "not_running",
	Updating:   "updating",
	Running:    "running",
}

// StateNames lists every state name, in declaration order.
func StateNames() []string {
	return append([]string(nil), stateNames[:]...)
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// ParseState is the inverse of State.String.
func ParseState(name string) (State, error) {
	for i, n := range stateNames {
		if n == name {
			return State(i), nil
		}
	}
	return NotRunning, fmt.Errorf("unknown state %q", name)
}

func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *State) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	v, err := ParseState(name)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// busy reports whether a launch must be rejected in this state.
func (s State) busy() bool { return s == Running || s == Updating }
