// Package harness runs YAML scenarios against the cart engine and the topic
// sync client, and validates the resulting trace and final state.
//
// # Scenario Format
//
//	name: scenario_name
//	description: "What this scenario validates"
//	catalog: products.yaml        # optional, relative to the scenario file
//	remote_topics: [Go, Rust]     # optional, seeds the fake remote collection
//	setup:
//	  - action: Topics.load
//	    args: {}
//	flow:
//	  - invoke: Remote.fail
//	    args: { op: delete, status: 409, message: "in use" }
//	  - invoke: Topics.delete
//	    args: { ids: [1] }
//	    expect:
//	      case: DeleteError
//	      message: "in use"
//	assertions:
//	  - type: topic_selected
//	    ids: [1]
//
// # Actions
//
// Cart: addItem {product_id}, removeItem {product_id},
// updateQuantity {product_id, quantity}, clear, checkout.
//
// Topics: load, beginEdit {id}, setTitle {title}, submit,
// save {drafts: [{id?, title}]}, delete {ids}, deleteSelected,
// toggleSelection {id}, resetForm.
//
// Remote: fail {op: list|upsert|delete, status, message} makes the next
// call of op fail.
//
// Every step is executed for real. Its completion carries an output case
// ("Success", "FetchError", "SaveError", "DeleteError", "ProductNotFound",
// "NotFound" or "NotImplemented") and a result; an expect clause is checked
// against both.
//
// # Assertion Types
//
//   - trace_contains: an action appears in the trace with matching args
//   - trace_order: actions appear in the given order
//   - trace_count: an action appears exactly N times
//   - cart_total: the cart total equals a decimal amount
//   - cart_item: a product's quantity (0 means absent)
//   - cart_size: the number of cart lines
//   - topic_count: the number of cached topics
//   - topic_selected: the exact selection, in order
//   - form_state: the form title and edit target
//   - remote_calls: how many times a remote operation was called
//
// Remote calls appear in the trace as "remote" events (Remote.list,
// Remote.upsert, Remote.delete), so the refresh-after-mutate order can be
// asserted with trace_order.
//
// # Deterministic Testing
//
// Sequence numbers come from testutil.DeterministicClock and remote records
// from testutil.FakeCollection, so the same scenario always yields a
// byte-identical trace for golden file comparison.
package harness
