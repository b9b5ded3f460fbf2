package ability

import (
	"fmt"

	"tacticore/internal/value"
)

// Host runs a script as a resumable coroutine. internal/scripthost
// implements this; this package only depends on the interface so it
// never imports the sandbox/runtime machinery directly.
type Host interface {
	// Run starts script with sandbox as its initial environment and
	// drives it to either completion or its first yield.
	Run(script string, sandbox map[string]value.Value) (Coroutine, Outcome, error)
}

// Coroutine is a suspended script invocation awaiting a client reply.
type Coroutine interface {
	// Resume continues the coroutine with reply as the yield's result,
	// driving it to either completion or its next yield.
	Resume(reply value.Value) (Outcome, error)
}

// Outcome is what running or resuming a coroutine produces: either a
// pending InputRequest (Request non-nil, Coroutine still suspended) or
// a final result map (Request nil).
type Outcome struct {
	Request *InputRequest
	Result  map[string]value.Value
}

// Partial is an ability invocation suspended mid on_input, waiting for
// a client reply — the "Partial action" of the spec's glossary.
type Partial struct {
	Coroutine Coroutine
	Request   InputRequest
}

// GatherInput runs script's on_input coroutine to its first suspension
// or completion. A non-nil Partial means the client must be asked for
// more information before Phase 2 can run.
func GatherInput(host Host, script Script, cache map[string]string, sandbox map[string]value.Value) (*Partial, map[string]value.Value, error) {
	contents, err := script.Contents(cache)
	if err != nil {
		return nil, nil, err
	}
	coro, outcome, err := host.Run(contents, sandbox)
	if err != nil {
		return nil, nil, fmt.Errorf("ability: on_input %s: %w", script.Name(), err)
	}
	if outcome.Request != nil {
		return &Partial{Coroutine: coro, Request: *outcome.Request}, nil, nil
	}
	return nil, outcome.Result, nil
}

// ResumeInput continues a suspended Partial with the client's reply.
func ResumeInput(p *Partial, reply value.Value) (*Partial, map[string]value.Value, error) {
	outcome, err := p.Coroutine.Resume(reply)
	if err != nil {
		return nil, nil, fmt.Errorf("ability: coroutine resume: %w", err)
	}
	if outcome.Request != nil {
		return &Partial{Coroutine: p.Coroutine, Request: *outcome.Request}, nil, nil
	}
	return nil, outcome.Result, nil
}

// EffectsKey is the reserved result-map key a combat/world library call
// accumulates its declared world mutations under (see internal/scripthost):
// a value.Sequence of value.Table effect descriptions, interpreted by
// the caller (internal/world) once the script completes.
const EffectsKey = "__effects__"

// ApplyEffect runs an ability's on_use/on_cast script to completion and
// returns its result map. The script does not mutate the world itself:
// its combat/world library calls (see internal/scripthost) only declare
// effects, which come back under EffectsKey. This function drives the
// script, surfaces its terminal error if any, and hands the result map
// — including any EffectsKey entry — back for the caller
// (internal/world) to apply.
// A script that itself tries to yield an InputRequest during effect
// application is a content bug — all input gathering belongs in Phase
// 1 — and is reported as an error rather than silently ignored.
func ApplyEffect(host Host, script Script, cache map[string]string, sandbox map[string]value.Value) (map[string]value.Value, error) {
	contents, err := script.Contents(cache)
	if err != nil {
		return nil, err
	}
	_, outcome, err := host.Run(contents, sandbox)
	if err != nil {
		return nil, fmt.Errorf("ability: effect script %s: %w", script.Name(), err)
	}
	if outcome.Request != nil {
		return nil, fmt.Errorf("ability: effect script %s yielded input mid-resolution", script.Name())
	}
	return outcome.Result, nil
}
