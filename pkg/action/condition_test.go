package action

import "testing"

func TestAllOfShortCircuitsOnFalse(t *testing.T) {
	calls := 0
	first := New("first", func(args ...interface{}) (interface{}, error) {
		calls++
		return false, nil
	})
	second := New("second", func(args ...interface{}) (interface{}, error) {
		calls++
		return true, nil
	})

	ok, err := EvalPredicate(AllOf(first, second), nil)
	if err != nil {
		t.Fatalf("EvalPredicate: %v", err)
	}
	if ok {
		t.Fatal("expected AllOf to be false")
	}
	if calls != 1 {
		t.Fatalf("expected short-circuit after first predicate, got %d calls", calls)
	}
}

func TestAllOfAllTrue(t *testing.T) {
	a := New("a", func(args ...interface{}) (interface{}, error) { return true, nil })
	b := New("b", func(args ...interface{}) (interface{}, error) { return true, nil })

	ok, err := EvalPredicate(AllOf(a, b), nil)
	if err != nil || !ok {
		t.Fatalf("expected AllOf true, got %v err=%v", ok, err)
	}
}

func TestEvalPredicateSingleAction(t *testing.T) {
	p := New("p", func(args ...interface{}) (interface{}, error) { return true, nil })
	ok, err := EvalPredicate(p, nil)
	if err != nil || !ok {
		t.Fatalf("expected true, got %v err=%v", ok, err)
	}
}

func TestEvalPredicateNonBoolIsFalse(t *testing.T) {
	p := New("p", func(args ...interface{}) (interface{}, error) { return "not-a-bool", nil })
	ok, err := EvalPredicate(p, nil)
	if err != nil || ok {
		t.Fatalf("expected false for non-bool result, got %v err=%v", ok, err)
	}
}
