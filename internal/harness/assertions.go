package harness

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/roach88/storefront/internal/cart"
	"github.com/roach88/storefront/internal/money"
	"github.com/roach88/storefront/internal/testutil"
	"github.com/roach88/storefront/internal/topic"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for i, event := range e.Trace {
			if isAction(event) {
				fmt.Fprintf(&buf, "  [%d] %s %v\n", i+1, event.ActionURI, event.Args)
			}
		}
	}

	return buf.String()
}

// isAction reports whether event names an action: an invocation or a remote call.
func isAction(event TraceEvent) bool {
	return event.Type == EventInvocation || event.Type == EventRemote
}

// assertTraceContains checks if the trace contains an action matching
// the specified action and args (subset match).
func assertTraceContains(trace []TraceEvent, assertion Assertion) error {
	for _, event := range trace {
		if isAction(event) && event.ActionURI == assertion.Action {
			if matchArgs(event.Args, assertion.Args) {
				return nil
			}
		}
	}

	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("action %s with args %v", assertion.Action, assertion.Args),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that actions appear in the specified order.
// Intervening actions are allowed, and an action may repeat: each expected
// action is matched at its first occurrence after the previous match.
func assertTraceOrder(trace []TraceEvent, assertion Assertion) error {
	pos := 0
	for _, expected := range assertion.Actions {
		found := -1
		for i := pos; i < len(trace); i++ {
			if isAction(trace[i]) && trace[i].ActionURI == expected {
				found = i
				break
			}
		}
		if found < 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("actions in order: %v", assertion.Actions),
				Actual:   fmt.Sprintf("no %s after position %d", expected, pos),
				Trace:    trace,
			}
		}
		pos = found + 1
	}
	return nil
}

// assertTraceCount checks if the action appears exactly the specified number of times.
func assertTraceCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if isAction(event) && event.ActionURI == assertion.Action {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", assertion.Count, assertion.Action),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}
	return nil
}

func assertCartTotal(s cart.State, assertion Assertion) error {
	want, err := money.Parse(assertion.Total)
	if err != nil {
		return fmt.Errorf("cart_total: %w", err)
	}
	if !s.Total.Equal(want) {
		return &AssertionError{
			Type:     AssertCartTotal,
			Expected: want.String(),
			Actual:   s.Total.String(),
		}
	}
	return nil
}

func assertCartItem(s cart.State, assertion Assertion) error {
	got := 0
	if item, ok := s.Find(assertion.ProductID); ok {
		got = item.Quantity
	}
	if got != assertion.Quantity {
		return &AssertionError{
			Type:     AssertCartItem,
			Expected: fmt.Sprintf("product %d with quantity %d", assertion.ProductID, assertion.Quantity),
			Actual:   fmt.Sprintf("quantity %d", got),
		}
	}
	return nil
}

func assertCartSize(s cart.State, assertion Assertion) error {
	if len(s.Items) != assertion.Count {
		return &AssertionError{
			Type:     AssertCartSize,
			Expected: fmt.Sprintf("%d lines", assertion.Count),
			Actual:   fmt.Sprintf("%d lines", len(s.Items)),
		}
	}
	return nil
}

func assertTopicCount(v topic.View, assertion Assertion) error {
	if len(v.Topics) != assertion.Count {
		return &AssertionError{
			Type:     AssertTopicCount,
			Expected: fmt.Sprintf("%d cached topics", assertion.Count),
			Actual:   fmt.Sprintf("%d cached topics", len(v.Topics)),
		}
	}
	return nil
}

func assertTopicSelected(v topic.View, assertion Assertion) error {
	want := assertion.IDs
	if want == nil {
		want = []int64{}
	}
	if !slices.Equal(v.Selected, want) {
		return &AssertionError{
			Type:     AssertTopicSelected,
			Expected: fmt.Sprintf("selection %v", want),
			Actual:   fmt.Sprintf("selection %v", v.Selected),
		}
	}
	return nil
}

func assertFormState(v topic.View, assertion Assertion) error {
	if v.Form.Title != assertion.Title || !sameID(v.Form.EditingID, assertion.EditingID) {
		return &AssertionError{
			Type:     AssertFormState,
			Expected: describeForm(assertion.Title, assertion.EditingID),
			Actual:   describeForm(v.Form.Title, v.Form.EditingID),
		}
	}
	return nil
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func describeForm(title string, editingID *int64) string {
	if editingID == nil {
		return fmt.Sprintf("title %q, creating", title)
	}
	return fmt.Sprintf("title %q, editing %d", title, *editingID)
}

func assertRemoteCalls(remote *testutil.FakeCollection, assertion Assertion) error {
	op, err := testutil.ParseOp(assertion.Op)
	if err != nil {
		return fmt.Errorf("remote_calls: %w", err)
	}
	if got := remote.Calls(op); got != assertion.Count {
		return &AssertionError{
			Type:     AssertRemoteCalls,
			Expected: fmt.Sprintf("%d %s calls", assertion.Count, op),
			Actual:   fmt.Sprintf("%d %s calls", got, op),
		}
	}
	return nil
}

// matchArgs checks if actual args contain all expected args (subset match).
// Extra keys in actual are ignored.
func matchArgs(actual map[string]interface{}, expected map[string]interface{}) bool {
	if len(expected) == 0 {
		return true
	}

	for key, expectedVal := range expected {
		actualVal, exists := actual[key]
		if !exists {
			return false
		}
		if !valuesEqual(actualVal, expectedVal) {
			return false
		}
	}
	return true
}

// valuesEqual compares two values for equality after normalizing numbers,
// so a YAML int matches the int64 a remote call recorded.
func valuesEqual(actual, expected interface{}) bool {
	return reflect.DeepEqual(normalize(actual), normalize(expected))
}

func normalize(v interface{}) interface{} {
	if n, ok := toInt64(v); ok {
		return n
	}
	switch val := v.(type) {
	case []int64:
		out := make([]interface{}, len(val))
		for i, n := range val {
			out[i] = n
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, elem := range val {
			out[i] = normalize(elem)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, elem := range val {
			out[k] = normalize(elem)
		}
		return out
	default:
		return v
	}
}

// AssertionContext provides the final state assertions are evaluated against.
type AssertionContext struct {
	Cart   *cart.Engine
	Topics *topic.Client
	Remote *testutil.FakeCollection
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		case AssertCartTotal, AssertCartItem, AssertCartSize:
			if actx == nil || actx.Cart == nil {
				err = fmt.Errorf("assertion[%d]: %s requires a cart", i, assertion.Type)
				break
			}
			s := actx.Cart.State()
			switch assertion.Type {
			case AssertCartTotal:
				err = assertCartTotal(s, assertion)
			case AssertCartItem:
				err = assertCartItem(s, assertion)
			default:
				err = assertCartSize(s, assertion)
			}
		case AssertTopicCount, AssertTopicSelected, AssertFormState:
			if actx == nil || actx.Topics == nil {
				err = fmt.Errorf("assertion[%d]: %s requires a topic client", i, assertion.Type)
				break
			}
			v := actx.Topics.View()
			switch assertion.Type {
			case AssertTopicCount:
				err = assertTopicCount(v, assertion)
			case AssertTopicSelected:
				err = assertTopicSelected(v, assertion)
			default:
				err = assertFormState(v, assertion)
			}
		case AssertRemoteCalls:
			if actx == nil || actx.Remote == nil {
				err = fmt.Errorf("assertion[%d]: remote_calls requires a remote collection", i)
				break
			}
			err = assertRemoteCalls(actx.Remote, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
