package testutil

// FixedRequestID generates the same request id every time.
//
// Unlike topic.FixedGenerator which returns ids in sequence, this generator
// never runs out, which suits servers and clients whose call count a test
// does not pin down.
//
// Thread-safety: FixedRequestID is stateless and safe for concurrent use.
type FixedRequestID struct {
	id string
}

// NewFixedRequestID creates a fixed request id generator.
// If id is empty, Generate() returns "test-request-default".
func NewFixedRequestID(id string) *FixedRequestID {
	if id == "" {
		id = "test-request-default"
	}
	return &FixedRequestID{id: id}
}

// Generate returns the fixed request id.
//
// Implements topic.RequestIDGenerator.
func (g *FixedRequestID) Generate() string {
	return g.id
}
