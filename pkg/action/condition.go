package action

import "github.com/butter-bot-machines/desim/pkg/logging"

// AllOf builds a single predicate Action from several, AND-combining
// their boolean results (spec.md §4.2: "cond is an Action returning
// bool, or a tuple implicitly AND-combined"). Evaluation short-circuits
// on the first false or erroring predicate.
func AllOf(predicates ...*Action) *Action {
	return New("all-of", func(...interface{}) (interface{}, error) {
		return nil, nil
	}, allOfArgs(predicates)...)
}

func allOfArgs(predicates []*Action) []Arg {
	args := make([]Arg, len(predicates))
	for i, p := range predicates {
		args[i] = Deferred(p)
	}
	return args
}

// EvalPredicate invokes a (possibly AllOf-composed) predicate Action
// and coerces its result to bool; a non-bool result is treated as
// false so a misbehaving predicate never busy-fires.
func EvalPredicate(predicate *Action, logger logging.Logger) (bool, error) {
	if predicate == nil {
		return false, nil
	}
	if len(predicate.Args) > 0 && predicate.Name == "all-of" {
		for _, arg := range predicate.Args {
			if arg.kind != argDeferred {
				continue
			}
			v, err := arg.deferred.Invoke(logger)
			if err != nil {
				return false, err
			}
			if b, ok := v.(bool); !ok || !b {
				return false, nil
			}
		}
		return true, nil
	}
	v, err := predicate.Invoke(logger)
	if err != nil {
		return false, err
	}
	b, _ := v.(bool)
	return b, nil
}
