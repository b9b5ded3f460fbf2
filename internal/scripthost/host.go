// Package scripthost implements internal/ability's Host/Coroutine
// interfaces against the Yaegi interpreter: script text is ordinary Go
// source, interpreted rather than compiled, so a malformed or hostile
// resource can't hang or crash the process the way a `go build` step
// could. Only a whitelisted set of stdlib packages plus the engine's
// own value/scripthost API are importable: the interpreter is loaded
// with the full stdlib symbol table, and validateImports rejects any
// script importing a package off the whitelist (filesystem, network and
// process-exec packages included) before it is evaluated.
package scripthost

import (
	"fmt"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"tacticore/internal/ability"
	"tacticore/internal/value"
)

// Host runs ability scripts through a fresh interpreter per invocation.
type Host struct {
	allowedPackages map[string]bool
}

// New builds a Host with the default stdlib whitelist.
func New() *Host {
	return &Host{
		allowedPackages: map[string]bool{
			"strings":  true,
			"strconv":  true,
			"fmt":      true,
			"math":     true,
			"sort":     true,

			"tacticore/internal/value":               true,
			"tacticore/internal/scripthost":           true,
			"tacticore/internal/scripthost/combat":    true,
			"tacticore/internal/scripthost/world":     true,
			"tacticore/internal/scripthost/resources": true,

			// deliberately absent: os, os/exec, net, net/http, syscall,
			// unsafe, io/ioutil, path/filepath.
		},
	}
}

// Runtime is the environment an interpreted script's Run function
// receives: read access to the sandbox table its caller populated, the
// suspend primitives that turn Phase 1 (on_input) scripts into a
// resumable coroutine, and (for Phase 2 effect scripts) the
// combat/world/resources library functions that accumulate declared
// world mutations for the caller to apply once the script completes.
type Runtime struct {
	sandbox  map[string]value.Value
	toHost   chan ability.InputRequest
	fromHost chan value.Value

	user    string
	effects []value.Value
}

// Get reads a sandbox variable, returning value.Unit() if unset.
func (rt *Runtime) Get(name string) value.Value {
	if v, ok := rt.sandbox[name]; ok {
		return v
	}
	return value.Unit()
}

// addEffect appends a declarative world-mutation table, later
// interpreted by internal/world once the script completes.
func (rt *Runtime) addEffect(fields ...value.Pair) {
	rt.effects = append(rt.effects, value.Table(fields))
}

// RequestCursor suspends the script until the client replies with a
// chosen tile, modeled as a value.Table of {"x": Int, "y": Int}.
func (rt *Runtime) RequestCursor(x, y, rng int, radius *int, message string) value.Value {
	return rt.suspend(ability.CursorRequest(x, y, rng, radius, message))
}

// RequestPrompt suspends the script until the client replies yes/no/cancel.
func (rt *Runtime) RequestPrompt(message string) value.Value {
	return rt.suspend(ability.PromptRequest(message))
}

// RequestDirection suspends the script until the client replies with
// one of the eight compass directions.
func (rt *Runtime) RequestDirection(message string) value.Value {
	return rt.suspend(ability.DirectionRequest(message))
}

func (rt *Runtime) suspend(req ability.InputRequest) value.Value {
	rt.toHost <- req
	return <-rt.fromHost
}

// coroutine implements ability.Coroutine around the goroutine running
// an interpreted script's Run function.
type coroutine struct {
	toHost   chan ability.InputRequest
	fromHost chan value.Value
	done     chan completion
}

type completion struct {
	values map[string]value.Value
	err    error
}

// Resume hands reply to the suspended script and waits for its next
// suspension or completion.
func (c *coroutine) Resume(reply value.Value) (ability.Outcome, error) {
	select {
	case c.fromHost <- reply:
	case comp := <-c.done:
		// The script exited without consuming the reply; report its
		// own terminal state rather than blocking forever.
		return completionOutcome(comp)
	}
	return c.await()
}

func (c *coroutine) await() (ability.Outcome, error) {
	select {
	case req := <-c.toHost:
		return ability.Outcome{Request: &req}, nil
	case comp := <-c.done:
		return completionOutcome(comp)
	}
}

func completionOutcome(comp completion) (ability.Outcome, error) {
	if comp.err != nil {
		return ability.Outcome{}, comp.err
	}
	return ability.Outcome{Result: comp.values}, nil
}

// Run interprets script against sandbox, driving it to its first
// suspension (if it yields an InputRequest) or straight to completion.
func (h *Host) Run(script string, sandbox map[string]value.Value) (ability.Coroutine, ability.Outcome, error) {
	if err := h.validateImports(script); err != nil {
		return nil, ability.Outcome{}, fmt.Errorf("scripthost: %w", err)
	}

	co := &coroutine{
		toHost:   make(chan ability.InputRequest),
		fromHost: make(chan value.Value),
		done:     make(chan completion, 1),
	}
	rt := &Runtime{sandbox: sandbox, toHost: co.toHost, fromHost: co.fromHost}
	if user, ok := sandbox["User"]; ok {
		rt.user, _ = user.Str()
	}

	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, ability.Outcome{}, fmt.Errorf("scripthost: load stdlib: %w", err)
	}
	if err := i.Use(symbols); err != nil {
		return nil, ability.Outcome{}, fmt.Errorf("scripthost: load runtime symbols: %w", err)
	}
	if _, err := i.Eval(wrapScript(script)); err != nil {
		return nil, ability.Outcome{}, fmt.Errorf("scripthost: evaluate script: %w", err)
	}

	runSym, err := i.Eval("script.Run")
	if err != nil {
		return nil, ability.Outcome{}, fmt.Errorf("scripthost: script must define func Run(*scripthost.Runtime) (map[string]value.Value, error): %w", err)
	}
	run, ok := runSym.Interface().(func(*Runtime) (map[string]value.Value, error))
	if !ok {
		return nil, ability.Outcome{}, fmt.Errorf("scripthost: Run has the wrong signature")
	}

	go func() {
		values, err := run(rt)
		if err == nil && len(rt.effects) > 0 {
			if values == nil {
				values = map[string]value.Value{}
			}
			values[ability.EffectsKey] = value.Sequence(rt.effects)
		}
		co.done <- completion{values: values, err: err}
	}()

	outcome, err := co.await()
	if err != nil {
		return nil, ability.Outcome{}, err
	}
	return co, outcome, nil
}

// validateImports rejects any import not on the stdlib/runtime
// whitelist, the same defense-in-depth the teacher's executor applies
// before handing code to the interpreter.
func (h *Host) validateImports(script string) error {
	var imports []string
	inBlock := false
	for _, line := range strings.Split(script, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "import ("):
			inBlock = true
		case inBlock && strings.HasPrefix(trimmed, ")"):
			inBlock = false
		case inBlock:
			imports = append(imports, strings.Trim(trimmed, `"`))
		case strings.HasPrefix(trimmed, "import "):
			imports = append(imports, strings.Trim(strings.TrimPrefix(trimmed, "import "), `"`))
		}
	}

	var forbidden []string
	for _, pkg := range imports {
		if pkg != "" && !h.allowedPackages[pkg] {
			forbidden = append(forbidden, pkg)
		}
	}
	if len(forbidden) > 0 {
		return fmt.Errorf("forbidden imports: %v", forbidden)
	}
	return nil
}

// wrapScript wraps bare script text in the "script" package interp.Eval
// expects, unless the author already supplied a package clause.
func wrapScript(src string) string {
	if strings.Contains(src, "package script") {
		return src
	}
	return fmt.Sprintf("package script\n\n%s", src)
}
