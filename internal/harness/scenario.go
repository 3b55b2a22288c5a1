package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a storefront test scenario: a flow of cart and topic
// actions plus assertions on the resulting trace and final state.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Catalog is an optional product catalog file. Relative paths are
	// resolved against the scenario file's directory. Empty means the
	// embedded default catalog.
	Catalog string `yaml:"catalog,omitempty"`

	// RemoteTopics seeds the fake remote collection, one record per title,
	// with ids assigned from 1.
	RemoteTopics []string `yaml:"remote_topics,omitempty"`

	// Setup contains actions run before the flow. A setup step that does
	// not complete with Success fails the scenario.
	Setup []ActionStep `yaml:"setup,omitempty"`

	// Flow contains the main test flow.
	Flow []FlowStep `yaml:"flow"`

	// Assertions validate the final trace and state.
	Assertions []Assertion `yaml:"assertions"`
}

// ActionStep represents a single action invocation.
type ActionStep struct {
	// Action is the action URI (e.g., "Cart.addItem").
	Action string `yaml:"action"`

	// Args contains the action arguments.
	Args map[string]interface{} `yaml:"args"`
}

// FlowStep represents a step in the main test flow.
type FlowStep struct {
	// Invoke is the action URI to invoke.
	Invoke string `yaml:"invoke"`

	// Args contains the action arguments.
	Args map[string]interface{} `yaml:"args"`

	// Expect specifies the expected completion. If nil, the step must
	// complete with Success.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies expected completion behavior.
type ExpectClause struct {
	// Case is the expected output case (e.g., "Success", "DeleteError").
	Case string `yaml:"case"`

	// Message is the expected displayable error message, verbatim.
	Message string `yaml:"message,omitempty"`

	// Result contains expected result field values (subset match).
	Result map[string]interface{} `yaml:"result,omitempty"`
}

// Assertion validates trace or final state.
type Assertion struct {
	// Type selects the assertion; see the AssertXxx constants.
	Type string `yaml:"type"`

	// Action is the action URI (trace_contains, trace_count).
	Action string `yaml:"action,omitempty"`

	// Args are the expected action arguments (trace_contains, subset match).
	Args map[string]interface{} `yaml:"args,omitempty"`

	// Actions is the expected action order (trace_order).
	Actions []string `yaml:"actions,omitempty"`

	// Count is the expected number (trace_count, cart_size, topic_count,
	// remote_calls).
	Count int `yaml:"count,omitempty"`

	// Total is the expected cart total as a decimal string (cart_total).
	Total string `yaml:"total,omitempty"`

	// ProductID and Quantity identify a cart line (cart_item).
	// Quantity 0 asserts the line is absent.
	ProductID int64 `yaml:"product_id,omitempty"`
	Quantity  int   `yaml:"quantity,omitempty"`

	// IDs is the exact expected selection (topic_selected).
	IDs []int64 `yaml:"ids,omitempty"`

	// Title and EditingID are the expected form (form_state). A nil
	// EditingID asserts the form is creating, not editing.
	Title     string `yaml:"title,omitempty"`
	EditingID *int64 `yaml:"editing_id,omitempty"`

	// Op is the remote operation (remote_calls): list, upsert or delete.
	Op string `yaml:"op,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertCartTotal     = "cart_total"
	AssertCartItem      = "cart_item"
	AssertCartSize      = "cart_size"
	AssertTopicCount    = "topic_count"
	AssertTopicSelected = "topic_selected"
	AssertFormState     = "form_state"
	AssertRemoteCalls   = "remote_calls"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Catalog != "" && !filepath.IsAbs(scenario.Catalog) {
		scenario.Catalog = filepath.Join(filepath.Dir(path), scenario.Catalog)
	}
	return scenario, nil
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Setup {
		if step.Action == "" {
			return fmt.Errorf("setup[%d]: action is required", i)
		}
		if !knownAction(step.Action) {
			return fmt.Errorf("setup[%d]: unknown action %q", i, step.Action)
		}
	}

	for i, step := range s.Flow {
		if step.Invoke == "" {
			return fmt.Errorf("flow[%d]: invoke is required", i)
		}
		if !knownAction(step.Invoke) {
			return fmt.Errorf("flow[%d]: unknown action %q", i, step.Invoke)
		}
		if step.Expect != nil && step.Expect.Case == "" {
			return fmt.Errorf("flow[%d].expect: case is required", i)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Actions) == 0 {
			return fmt.Errorf("assertions[%d]: actions list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for trace_count", index)
		}
	case AssertCartTotal:
		if a.Total == "" {
			return fmt.Errorf("assertions[%d]: total is required for cart_total", index)
		}
	case AssertCartItem:
		if a.ProductID == 0 {
			return fmt.Errorf("assertions[%d]: product_id is required for cart_item", index)
		}
	case AssertRemoteCalls:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for remote_calls", index)
		}
	case AssertCartSize, AssertTopicCount, AssertTopicSelected, AssertFormState:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	if a.Count < 0 {
		return fmt.Errorf("assertions[%d]: count must be non-negative", index)
	}
	if a.Quantity < 0 {
		return fmt.Errorf("assertions[%d]: quantity must be non-negative", index)
	}

	return nil
}
