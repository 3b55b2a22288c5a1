package harness

// Trace event types.
const (
	EventInvocation = "invocation"
	EventCompletion = "completion"
	EventRemote     = "remote"
)

// Output cases.
const (
	CaseSuccess         = "Success"
	CaseFetchError      = "FetchError"
	CaseSaveError       = "SaveError"
	CaseDeleteError     = "DeleteError"
	CaseProductNotFound = "ProductNotFound"
	CaseNotFound        = "NotFound"
	CaseNotImplemented  = "NotImplemented"
)

// TraceEvent is one entry of a scenario trace: an invocation of a scenario
// action, its completion, or a call the topic client made to the remote.
type TraceEvent struct {
	Type       string                 `json:"type"`
	ActionURI  string                 `json:"action_uri,omitempty"`
	Args       map[string]interface{} `json:"args,omitempty"`
	OutputCase string                 `json:"output_case,omitempty"`
	Result     map[string]interface{} `json:"result,omitempty"`
	Seq        int64                  `json:"seq"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success: every expect clause and
	// assertion matched.
	Pass bool `json:"pass"`

	// Trace contains invocations, completions and remote calls in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// State holds the final cart state and topic view under "cart" and
	// "topics".
	State map[string]interface{} `json:"state,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		State:  make(map[string]interface{}),
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddInvocationTrace adds an invocation to the trace.
func (r *Result) AddInvocationTrace(actionURI string, args map[string]interface{}, seq int64) {
	r.Trace = append(r.Trace, TraceEvent{
		Type:      EventInvocation,
		ActionURI: actionURI,
		Args:      args,
		Seq:       seq,
	})
}

// AddCompletionTrace adds a completion to the trace.
func (r *Result) AddCompletionTrace(outputCase string, result map[string]interface{}, seq int64) {
	r.Trace = append(r.Trace, TraceEvent{
		Type:       EventCompletion,
		OutputCase: outputCase,
		Result:     result,
		Seq:        seq,
	})
}

// AddRemoteTrace adds a remote call to the trace.
func (r *Result) AddRemoteTrace(actionURI string, args map[string]interface{}, seq int64) {
	r.Trace = append(r.Trace, TraceEvent{
		Type:      EventRemote,
		ActionURI: actionURI,
		Args:      args,
		Seq:       seq,
	})
}
