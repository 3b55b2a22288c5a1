package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/roach88/storefront/internal/cart"
	"github.com/roach88/storefront/internal/catalog"
	"github.com/roach88/storefront/internal/testutil"
	"github.com/roach88/storefront/internal/topic"
)

// Harness is the test execution engine. Each scenario gets a fresh cart
// engine, a fresh fake remote collection and a topic client over it.
type Harness struct {
	catalog  *catalog.Catalog
	cart     *cart.Engine
	checkout cart.Checkout
	topics   *topic.Client
	remote   *testutil.FakeCollection
	clock    *testutil.DeterministicClock
	result   *Result
	logger   *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Execution flow:
// 1. Build the catalog, cart engine and topic client over a seeded fake remote
// 2. Execute setup steps, which must all succeed
// 3. Execute flow steps, checking expect clauses
// 4. Evaluate assertions against the trace and final state
//
// A non-nil error means the scenario could not be executed at all (bad
// catalog, malformed args); failed expectations are reported in the Result.
func Run(scenario *Scenario) (*Result, error) {
	cat := catalog.Default()
	if scenario.Catalog != "" {
		loaded, err := catalog.Load(scenario.Catalog)
		if err != nil {
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
		cat = loaded
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	result := NewResult()
	h := &Harness{
		catalog:  cat,
		cart:     cart.NewEngine(logger),
		checkout: cart.Unimplemented{},
		remote:   testutil.NewFakeCollection(scenario.RemoteTopics...),
		clock:    testutil.NewDeterministicClock(),
		result:   result,
		logger:   logger,
	}
	h.topics = topic.NewClient(&tracingCollection{next: h.remote, h: h}, logger)

	ctx := context.Background()

	if err := h.executeSetup(ctx, scenario.Setup); err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}

	if err := h.executeFlow(ctx, scenario.Flow); err != nil {
		return nil, fmt.Errorf("failed to execute flow: %w", err)
	}

	result.State["cart"] = h.cart.State()
	result.State["topics"] = h.topics.View()

	actx := &AssertionContext{
		Cart:   h.cart,
		Topics: h.topics,
		Remote: h.remote,
	}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}

	return result, nil
}

// executeSetup runs all setup steps. Setup steps must complete with Success.
func (h *Harness) executeSetup(ctx context.Context, setup []ActionStep) error {
	for i, step := range setup {
		outcome, err := h.invoke(ctx, step.Action, step.Args)
		if err != nil {
			return fmt.Errorf("setup step %d (%s): %w", i, step.Action, err)
		}
		if outcome.Case != CaseSuccess {
			h.result.AddError(fmt.Sprintf("setup[%d] %s: expected case %s, got %s",
				i, step.Action, CaseSuccess, outcome.Case))
		}
		h.logger.Info("setup step completed", "step", i, "action", step.Action, "output_case", outcome.Case)
	}
	return nil
}

// executeFlow runs all flow steps and validates expect clauses.
func (h *Harness) executeFlow(ctx context.Context, flow []FlowStep) error {
	for i, step := range flow {
		outcome, err := h.invoke(ctx, step.Invoke, step.Args)
		if err != nil {
			return fmt.Errorf("flow step %d (%s): %w", i, step.Invoke, err)
		}

		expect := step.Expect
		if expect == nil {
			expect = &ExpectClause{Case: CaseSuccess}
		}
		for _, msg := range checkExpect(expect, outcome) {
			h.result.AddError(fmt.Sprintf("flow[%d] %s: %s", i, step.Invoke, msg))
		}

		h.logger.Info("flow step completed", "step", i, "action", step.Invoke, "output_case", outcome.Case)
	}
	return nil
}

// checkExpect compares an outcome against an expect clause.
func checkExpect(expect *ExpectClause, outcome outcome) []string {
	var msgs []string
	if outcome.Case != expect.Case {
		msgs = append(msgs, fmt.Sprintf("expected case %s, got %s (result %v)", expect.Case, outcome.Case, outcome.Result))
	}
	if expect.Message != "" {
		got, _ := outcome.Result["message"].(string)
		if got != expect.Message {
			msgs = append(msgs, fmt.Sprintf("expected message %q, got %q", expect.Message, got))
		}
	}
	if !matchArgs(outcome.Result, expect.Result) {
		msgs = append(msgs, fmt.Sprintf("expected result %v, got %v", expect.Result, outcome.Result))
	}
	return msgs
}

// outcome is the completion of one action.
type outcome struct {
	Case   string
	Result map[string]interface{}
}

func success(result map[string]interface{}) outcome {
	return outcome{Case: CaseSuccess, Result: result}
}

// invoke records the invocation, executes the action and records its
// completion. Remote calls made by the action land between the two.
func (h *Harness) invoke(ctx context.Context, action string, args map[string]interface{}) (outcome, error) {
	h.result.AddInvocationTrace(action, args, h.clock.Next())

	run, ok := actions[action]
	if !ok {
		return outcome{}, fmt.Errorf("unknown action %q", action)
	}
	out, err := run(ctx, h, args)
	if err != nil {
		return outcome{}, err
	}

	h.result.AddCompletionTrace(out.Case, out.Result, h.clock.Next())
	return out, nil
}

type actionFunc func(ctx context.Context, h *Harness, args map[string]interface{}) (outcome, error)

var actions = map[string]actionFunc{
	"Cart.addItem":           cartAddItem,
	"Cart.removeItem":        cartRemoveItem,
	"Cart.updateQuantity":    cartUpdateQuantity,
	"Cart.clear":             cartClear,
	"Cart.checkout":          cartCheckout,
	"Topics.load":            topicsLoad,
	"Topics.beginEdit":       topicsBeginEdit,
	"Topics.setTitle":        topicsSetTitle,
	"Topics.submit":          topicsSubmit,
	"Topics.save":            topicsSave,
	"Topics.delete":          topicsDelete,
	"Topics.deleteSelected":  topicsDeleteSelected,
	"Topics.toggleSelection": topicsToggleSelection,
	"Topics.resetForm":       topicsResetForm,
	"Remote.fail":            remoteFail,
}

func knownAction(action string) bool {
	_, ok := actions[action]
	return ok
}

// Cart actions

func cartResult(s cart.State) map[string]interface{} {
	return map[string]interface{}{
		"lines": len(s.Items),
		"count": s.Count(),
		"total": s.Total.Fixed(),
	}
}

func cartAddItem(_ context.Context, h *Harness, args map[string]interface{}) (outcome, error) {
	id, err := argInt(args, "product_id")
	if err != nil {
		return outcome{}, err
	}
	product, err := h.catalog.Find(id)
	if errors.Is(err, catalog.ErrProductNotFound) {
		return outcome{Case: CaseProductNotFound, Result: map[string]interface{}{"message": err.Error()}}, nil
	}
	if err != nil {
		return outcome{}, err
	}
	return success(cartResult(h.cart.AddItem(product))), nil
}

func cartRemoveItem(_ context.Context, h *Harness, args map[string]interface{}) (outcome, error) {
	id, err := argInt(args, "product_id")
	if err != nil {
		return outcome{}, err
	}
	return success(cartResult(h.cart.RemoveItem(id))), nil
}

func cartUpdateQuantity(_ context.Context, h *Harness, args map[string]interface{}) (outcome, error) {
	id, err := argInt(args, "product_id")
	if err != nil {
		return outcome{}, err
	}
	qty, err := argInt(args, "quantity")
	if err != nil {
		return outcome{}, err
	}
	return success(cartResult(h.cart.UpdateQuantity(id, int(qty)))), nil
}

func cartClear(_ context.Context, h *Harness, _ map[string]interface{}) (outcome, error) {
	return success(cartResult(h.cart.Clear())), nil
}

func cartCheckout(ctx context.Context, h *Harness, _ map[string]interface{}) (outcome, error) {
	err := h.checkout.Checkout(ctx, h.cart.State())
	if errors.Is(err, cart.ErrCheckoutNotImplemented) {
		return outcome{Case: CaseNotImplemented, Result: map[string]interface{}{"message": err.Error()}}, nil
	}
	if err != nil {
		return outcome{}, err
	}
	return success(nil), nil
}

// Topic actions

// topicOutcome maps a client error to its output case.
func (h *Harness) topicOutcome(err error) outcome {
	if err == nil {
		return success(map[string]interface{}{"count": len(h.topics.Topics())})
	}
	var (
		fe *topic.FetchError
		se *topic.SaveError
		de *topic.DeleteError
	)
	out := outcome{Result: map[string]interface{}{"message": err.Error()}}
	switch {
	case errors.As(err, &fe):
		out.Case = CaseFetchError
	case errors.As(err, &se):
		out.Case = CaseSaveError
	case errors.As(err, &de):
		out.Case = CaseDeleteError
	default:
		out.Case = "Error"
	}
	return out
}

func topicsLoad(ctx context.Context, h *Harness, _ map[string]interface{}) (outcome, error) {
	return h.topicOutcome(h.topics.Load(ctx)), nil
}

func topicsBeginEdit(_ context.Context, h *Harness, args map[string]interface{}) (outcome, error) {
	if _, ok := args["id"]; !ok {
		// A topic without an id; the client ignores it.
		title, _ := args["title"].(string)
		h.topics.BeginEdit(topic.Topic{Title: title})
		return success(nil), nil
	}
	id, err := argInt(args, "id")
	if err != nil {
		return outcome{}, err
	}
	for _, t := range h.topics.Topics() {
		if t.ID != nil && *t.ID == id {
			h.topics.BeginEdit(t)
			return success(map[string]interface{}{"title": t.Title}), nil
		}
	}
	return outcome{Case: CaseNotFound, Result: map[string]interface{}{
		"message": fmt.Sprintf("topic %d is not cached", id),
	}}, nil
}

func topicsSetTitle(_ context.Context, h *Harness, args map[string]interface{}) (outcome, error) {
	title, err := argString(args, "title")
	if err != nil {
		return outcome{}, err
	}
	h.topics.SetTitle(title)
	return success(nil), nil
}

func topicsSubmit(ctx context.Context, h *Harness, _ map[string]interface{}) (outcome, error) {
	return h.topicOutcome(h.topics.Submit(ctx)), nil
}

func topicsSave(ctx context.Context, h *Harness, args map[string]interface{}) (outcome, error) {
	drafts, err := argDrafts(args, "drafts")
	if err != nil {
		return outcome{}, err
	}
	return h.topicOutcome(h.topics.Save(ctx, drafts...)), nil
}

func topicsDelete(ctx context.Context, h *Harness, args map[string]interface{}) (outcome, error) {
	ids, err := argInts(args, "ids")
	if err != nil {
		return outcome{}, err
	}
	return h.topicOutcome(h.topics.Delete(ctx, ids)), nil
}

func topicsDeleteSelected(ctx context.Context, h *Harness, _ map[string]interface{}) (outcome, error) {
	return h.topicOutcome(h.topics.DeleteSelected(ctx)), nil
}

func topicsToggleSelection(_ context.Context, h *Harness, args map[string]interface{}) (outcome, error) {
	id, err := argInt(args, "id")
	if err != nil {
		return outcome{}, err
	}
	h.topics.ToggleSelection(id)
	return success(map[string]interface{}{"selected": h.topics.IsSelected(id)}), nil
}

func topicsResetForm(_ context.Context, h *Harness, _ map[string]interface{}) (outcome, error) {
	h.topics.ResetForm()
	return success(nil), nil
}

// Remote actions

func remoteFail(_ context.Context, h *Harness, args map[string]interface{}) (outcome, error) {
	name, err := argString(args, "op")
	if err != nil {
		return outcome{}, err
	}
	op, err := testutil.ParseOp(name)
	if err != nil {
		return outcome{}, err
	}
	status := int64(http.StatusInternalServerError)
	if _, ok := args["status"]; ok {
		if status, err = argInt(args, "status"); err != nil {
			return outcome{}, err
		}
	}
	message, _ := args["message"].(string)
	h.remote.FailNext(op, int(status), message)
	return success(nil), nil
}

// tracingCollection records every remote call in the trace before
// delegating to the fake collection.
type tracingCollection struct {
	next topic.Collection
	h    *Harness
}

func (c *tracingCollection) List(ctx context.Context) ([]topic.Topic, error) {
	c.h.result.AddRemoteTrace("Remote.list", nil, c.h.clock.Next())
	return c.next.List(ctx)
}

func (c *tracingCollection) Upsert(ctx context.Context, drafts []topic.Draft) error {
	items := make([]interface{}, len(drafts))
	for i, d := range drafts {
		item := map[string]interface{}{"title": d.Title}
		if d.ID != nil {
			item["id"] = *d.ID
		}
		items[i] = item
	}
	c.h.result.AddRemoteTrace("Remote.upsert", map[string]interface{}{"drafts": items}, c.h.clock.Next())
	return c.next.Upsert(ctx, drafts)
}

func (c *tracingCollection) Delete(ctx context.Context, ids []int64) error {
	c.h.result.AddRemoteTrace("Remote.delete", map[string]interface{}{"ids": ids}, c.h.clock.Next())
	return c.next.Delete(ctx, ids)
}
