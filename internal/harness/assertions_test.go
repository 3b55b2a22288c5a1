package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storefront/internal/cart"
	"github.com/roach88/storefront/internal/catalog"
	"github.com/roach88/storefront/internal/money"
	"github.com/roach88/storefront/internal/testutil"
	"github.com/roach88/storefront/internal/topic"
)

func sampleTrace() []TraceEvent {
	r := NewResult()
	r.AddInvocationTrace("Topics.load", nil, 1)
	r.AddRemoteTrace("Remote.list", nil, 2)
	r.AddCompletionTrace(CaseSuccess, map[string]interface{}{"count": 1}, 3)
	r.AddInvocationTrace("Topics.delete", map[string]interface{}{"ids": []interface{}{2, 3}}, 4)
	r.AddRemoteTrace("Remote.delete", map[string]interface{}{"ids": []int64{2, 3}}, 5)
	r.AddRemoteTrace("Remote.list", nil, 6)
	r.AddCompletionTrace(CaseSuccess, map[string]interface{}{"count": 0}, 7)
	return r.Trace
}

func TestAssertTraceContains(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceContains(trace, Assertion{Action: "Remote.delete"}))
	assert.NoError(t, assertTraceContains(trace, Assertion{
		Action: "Remote.delete",
		Args:   map[string]interface{}{"ids": []interface{}{2, 3}},
	}))

	err := assertTraceContains(trace, Assertion{
		Action: "Remote.delete",
		Args:   map[string]interface{}{"ids": []interface{}{3}},
	})
	require.Error(t, err)
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, AssertTraceContains, ae.Type)
	assert.Equal(t, "not found in trace", ae.Actual)
	assert.Contains(t, err.Error(), "Full trace:")
}

func TestAssertTraceContains_IgnoresCompletions(t *testing.T) {
	trace := []TraceEvent{{Type: EventCompletion, ActionURI: "Topics.load", Seq: 1}}
	assert.Error(t, assertTraceContains(trace, Assertion{Action: "Topics.load"}))
}

func TestAssertTraceOrder(t *testing.T) {
	trace := sampleTrace()

	tests := []struct {
		name    string
		actions []string
		wantErr bool
	}{
		{"in order with gaps", []string{"Topics.load", "Remote.delete"}, false},
		{"repeated action", []string{"Remote.list", "Remote.delete", "Remote.list"}, false},
		{"reversed", []string{"Remote.delete", "Topics.load"}, true},
		{"too many repeats", []string{"Remote.list", "Remote.list", "Remote.list"}, true},
		{"absent", []string{"Remote.upsert"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := assertTraceOrder(trace, Assertion{Actions: tt.actions})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAssertTraceCount(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceCount(trace, Assertion{Action: "Remote.list", Count: 2}))
	assert.NoError(t, assertTraceCount(trace, Assertion{Action: "Remote.upsert", Count: 0}))

	err := assertTraceCount(trace, Assertion{Action: "Remote.list", Count: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 occurrences")
}

func cartWith(t *testing.T, quantities map[int64]int) *cart.Engine {
	t.Helper()
	cat := catalog.Default()
	e := cart.NewEngine(nil)
	for id, qty := range quantities {
		p, err := cat.Find(id)
		require.NoError(t, err)
		e.AddItem(p)
		e.UpdateQuantity(id, qty)
	}
	return e
}

func TestCartAssertions(t *testing.T) {
	e := cartWith(t, map[int64]int{1: 2})
	s := e.State()
	want := s.Total.String()

	assert.NoError(t, assertCartTotal(s, Assertion{Total: want}))
	assert.Error(t, assertCartTotal(s, Assertion{Total: "1"}))

	err := assertCartTotal(s, Assertion{Total: "abc"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cart_total")

	assert.NoError(t, assertCartItem(s, Assertion{ProductID: 1, Quantity: 2}))
	assert.NoError(t, assertCartItem(s, Assertion{ProductID: 2, Quantity: 0}))
	assert.Error(t, assertCartItem(s, Assertion{ProductID: 1, Quantity: 1}))

	assert.NoError(t, assertCartSize(s, Assertion{Count: 1}))
	assert.Error(t, assertCartSize(s, Assertion{Count: 2}))
}

func TestCartTotal_ComparesNumerically(t *testing.T) {
	s := cart.State{Total: money.MustParse("20.00")}
	assert.NoError(t, assertCartTotal(s, Assertion{Total: "20"}))
}

func loadedClient(t *testing.T, titles ...string) (*topic.Client, *testutil.FakeCollection) {
	t.Helper()
	remote := testutil.NewFakeCollection(titles...)
	c := topic.NewClient(remote, nil)
	require.NoError(t, c.Load(context.Background()))
	return c, remote
}

func TestTopicAssertions(t *testing.T) {
	c, _ := loadedClient(t, "A", "B", "C")
	c.ToggleSelection(3)
	c.ToggleSelection(1)
	c.BeginEdit(c.Topics()[1])
	v := c.View()

	assert.NoError(t, assertTopicCount(v, Assertion{Count: 3}))
	assert.Error(t, assertTopicCount(v, Assertion{Count: 2}))

	assert.NoError(t, assertTopicSelected(v, Assertion{IDs: []int64{3, 1}}))
	assert.Error(t, assertTopicSelected(v, Assertion{IDs: []int64{1, 3}}), "selection order matters")
	assert.Error(t, assertTopicSelected(v, Assertion{}))

	two := int64(2)
	assert.NoError(t, assertFormState(v, Assertion{Title: "B", EditingID: &two}))
	err := assertFormState(v, Assertion{Title: "B"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `title "B", editing 2`)
	assert.Contains(t, err.Error(), `title "B", creating`)
}

func TestTopicSelected_EmptyMatchesNil(t *testing.T) {
	c, _ := loadedClient(t)
	assert.NoError(t, assertTopicSelected(c.View(), Assertion{}))
}

func TestAssertRemoteCalls(t *testing.T) {
	_, remote := loadedClient(t, "A")

	assert.NoError(t, assertRemoteCalls(remote, Assertion{Op: "list", Count: 1}))
	assert.NoError(t, assertRemoteCalls(remote, Assertion{Op: "upsert", Count: 0}))
	assert.Error(t, assertRemoteCalls(remote, Assertion{Op: "list", Count: 2}))

	err := assertRemoteCalls(remote, Assertion{Op: "patch", Count: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "remote_calls")
}

func TestMatchArgs(t *testing.T) {
	actual := map[string]interface{}{
		"id":     int64(7),
		"title":  "Go",
		"drafts": []interface{}{map[string]interface{}{"id": int64(1), "title": "A"}},
	}

	assert.True(t, matchArgs(actual, nil))
	assert.True(t, matchArgs(actual, map[string]interface{}{"id": 7}))
	assert.True(t, matchArgs(actual, map[string]interface{}{"id": 7.0}))
	assert.True(t, matchArgs(actual, map[string]interface{}{
		"drafts": []interface{}{map[string]interface{}{"id": 1, "title": "A"}},
	}))
	assert.False(t, matchArgs(actual, map[string]interface{}{"id": 8}))
	assert.False(t, matchArgs(actual, map[string]interface{}{"missing": 1}))
	assert.False(t, matchArgs(actual, map[string]interface{}{"title": "go"}))
}

func TestEvaluateAssertions_MissingContext(t *testing.T) {
	r := NewResult()
	errs := EvaluateAssertions(r, []Assertion{
		{Type: AssertCartSize},
		{Type: AssertTopicCount},
		{Type: AssertRemoteCalls, Op: "list"},
		{Type: "bogus"},
	}, nil)

	require.Len(t, errs, 4)
	assert.Contains(t, errs[0], "requires a cart")
	assert.Contains(t, errs[1], "requires a topic client")
	assert.Contains(t, errs[2], "requires a remote collection")
	assert.Contains(t, errs[3], `unknown assertion type "bogus"`)
}
