// Package model provides domain types for the metrics engine.
package model

// State is a canonical work-item state.
//
// Raw tracker states are free-form strings; the engine normalizes them
// through a StateMap so the calculators only ever compare canonical values.
type State string

// Canonical states the calculators react to. Anything else is a
// pass-through state.
const (
	StateActive               State = "Active"
	StateCodeReview           State = "CodeReview"
	StateFixRequired          State = "FixRequired"
	StateDevInTesting         State = "DevInTesting"
	StateDevAcceptanceTesting State = "DevAcceptanceTesting"
	StateStgInTesting         State = "StgInTesting"
	StateStgAcceptanceTesting State = "StgAcceptanceTesting"
	StateDevApproved          State = "DevApproved"
	StateApproved             State = "Approved"
	StateReadyForRelease      State = "ReadyForRelease"
)

// StateMap maps raw tracker state names to canonical states.
type StateMap map[string]State

// DefaultStateMap returns the mapping for the default tracker process
// template.
func DefaultStateMap() StateMap {
	return StateMap{
		"Active":                 StateActive,
		"Code Review":            StateCodeReview,
		"Fix Required":           StateFixRequired,
		"DEV In Testing":         StateDevInTesting,
		"DEV Acceptance Testing": StateDevAcceptanceTesting,
		"STG In Testing":         StateStgInTesting,
		"STG Acceptance Testing": StateStgAcceptanceTesting,
		"Dev Approved":           StateDevApproved,
		"Approved":               StateApproved,
		"Ready for Release":      StateReadyForRelease,
	}
}

// Canonical returns the canonical state for a raw tracker state name.
// Unmapped states pass through unchanged so new tracker states act as
// pass-through states instead of breaking the calculators.
func (m StateMap) Canonical(raw string) State {
	if s, ok := m[raw]; ok {
		return s
	}
	return State(raw)
}

// Environment parameterizes the testing-cycle calculator for one testing
// stage (DEV or STG).
type Environment struct {
	// Name identifies the environment in results ("DEV" or "STG").
	Name string
	// InTesting is the state in which a tester actively works on the item.
	InTesting State
	// Acceptance is the state in which the item awaits the tester's verdict.
	Acceptance State
	// Terminals are the states that close a testing cycle for this
	// environment.
	Terminals []State
}

// DevEnvironment returns the DEV testing environment. DEV cycles terminate
// on FixRequired, DevApproved, Approved and ReadyForRelease.
func DevEnvironment() Environment {
	return Environment{
		Name:       "DEV",
		InTesting:  StateDevInTesting,
		Acceptance: StateDevAcceptanceTesting,
		Terminals:  []State{StateFixRequired, StateDevApproved, StateApproved, StateReadyForRelease},
	}
}

// StgEnvironment returns the STG testing environment. STG cycles terminate
// on FixRequired and ReadyForRelease only; Approved does not close an STG
// cycle.
func StgEnvironment() Environment {
	return Environment{
		Name:       "STG",
		InTesting:  StateStgInTesting,
		Acceptance: StateStgAcceptanceTesting,
		Terminals:  []State{StateFixRequired, StateReadyForRelease},
	}
}

// IsTerminal reports whether s closes a testing cycle in this environment.
func (e Environment) IsTerminal(s State) bool {
	for _, t := range e.Terminals {
		if s == t {
			return true
		}
	}
	return false
}
