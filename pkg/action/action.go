// Package action implements the deferred-invocation value the
// scheduler stores: a callable plus arguments, where an argument may
// itself be a literal, another Action, or (deprecated) a name to be
// looked up in a process-wide naming table. A tuple of Actions is a
// Composite executed in order under a single dispatch (spec.md §3,
// §9 "Polymorphic action dispatch").
package action

import (
	"sync"

	"github.com/butter-bot-machines/desim/pkg/logging"
)

// Func is the callable an Action wraps. Resolved argument values are
// passed positionally; the return value is substituted for a Deferred
// argument, returned by Invoke (a Composite returns its last member's),
// read as a bool by conditions, and handed back by now().
type Func func(args ...interface{}) (interface{}, error)

// Arg is one argument slot: exactly one of its fields is meaningful,
// selected by Kind.
type Arg struct {
	kind     argKind
	literal  interface{}
	deferred *Action
	symbol   string
}

type argKind int

const (
	argLiteral argKind = iota
	argDeferred
	argSymbol
)

// Literal wraps a plain value argument.
func Literal(v interface{}) Arg { return Arg{kind: argLiteral, literal: v} }

// Deferred wraps another Action as an argument; it is invoked and its
// result substituted when the outer Action dispatches.
func Deferred(a *Action) Arg { return Arg{kind: argDeferred, deferred: a} }

// Symbol wraps a name to be looked up in the global naming scope at
// dispatch time. This path is deprecated (spec.md §9): the first
// resolution of each name emits a warning through the supplied logger;
// later resolutions of that name do not.
func Symbol(name string) Arg { return Arg{kind: argSymbol, symbol: name} }

// Action is a deferred callable invocation, or a Composite sequence of
// them executed in order under one dispatch.
type Action struct {
	Name      string // optional, for logging/printing only
	Fn        Func
	Args      []Arg
	Composite []*Action
}

// New creates a simple (non-composite) Action.
func New(name string, fn Func, args ...Arg) *Action {
	return &Action{Name: name, Fn: fn, Args: args}
}

// Seq creates a composite Action executing each of actions in order.
func Seq(actions ...*Action) *Action {
	return &Action{Name: "seq", Composite: actions}
}

// Invoke resolves arguments and runs the Action (or, for a Composite,
// each member action in order), returning the last result. logger
// receives the one-time DeprecatedUsage warning for Symbol args.
func (a *Action) Invoke(logger logging.Logger) (interface{}, error) {
	if len(a.Composite) > 0 {
		var last interface{}
		for _, sub := range a.Composite {
			v, err := sub.Invoke(logger)
			if err != nil {
				return nil, err
			}
			last = v
		}
		return last, nil
	}

	resolved := make([]interface{}, len(a.Args))
	for i, arg := range a.Args {
		v, err := resolveArg(arg, logger)
		if err != nil {
			return nil, err
		}
		resolved[i] = v
	}
	if a.Fn == nil {
		return nil, nil
	}
	return a.Fn(resolved...)
}

func resolveArg(arg Arg, logger logging.Logger) (interface{}, error) {
	switch arg.kind {
	case argLiteral:
		return arg.literal, nil
	case argDeferred:
		return arg.deferred.Invoke(logger)
	case argSymbol:
		warnDeprecatedSymbol(arg.symbol, logger)
		v, ok := Lookup(arg.symbol)
		if !ok {
			return nil, nil
		}
		return v, nil
	default:
		return nil, nil
	}
}

// global naming scope, for the deprecated Symbol path only.
var (
	scopeMu sync.RWMutex
	scope   = make(map[string]interface{})

	warnedMu sync.Mutex
	warned   = make(map[string]bool)
)

// Define registers name in the global naming scope so Symbol(name) can
// resolve it. New code should prefer Deferred(action) instead.
func Define(name string, value interface{}) {
	scopeMu.Lock()
	defer scopeMu.Unlock()
	scope[name] = value
}

// Lookup resolves name from the global naming scope.
func Lookup(name string) (interface{}, bool) {
	scopeMu.RLock()
	defer scopeMu.RUnlock()
	v, ok := scope[name]
	return v, ok
}

// ResetScope clears the global naming scope; used by tests.
func ResetScope() {
	scopeMu.Lock()
	defer scopeMu.Unlock()
	scope = make(map[string]interface{})
}

func warnDeprecatedSymbol(name string, logger logging.Logger) {
	warnedMu.Lock()
	already := warned[name]
	warned[name] = true
	warnedMu.Unlock()
	if already || logger == nil {
		return
	}
	logger.Warn("deprecated Symbol argument resolved via global naming scope; use Deferred instead", "symbol", name)
}
