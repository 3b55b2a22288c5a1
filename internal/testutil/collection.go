package testutil

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"sync"

	"github.com/roach88/storefront/internal/topic"
)

// Op names a remote collection operation.
type Op string

const (
	OpList   Op = "list"
	OpUpsert Op = "upsert"
	OpDelete Op = "delete"
)

// ParseOp validates an operation name.
func ParseOp(s string) (Op, error) {
	switch op := Op(s); op {
	case OpList, OpUpsert, OpDelete:
		return op, nil
	default:
		return "", fmt.Errorf("unknown remote operation %q (want list, upsert or delete)", s)
	}
}

// FakeCollection is an in-memory topic.Collection.
//
// Ids are assigned from 1 in creation order. Timestamps come from a
// DeterministicClock, so the same sequence of calls always yields the same
// records. Failures are injected per operation with FailNext and are
// consumed by the next call of that operation.
//
// Thread-safety: FakeCollection is safe for concurrent use via internal mutex.
type FakeCollection struct {
	mu       sync.Mutex
	clock    *DeterministicClock
	records  []topic.Topic
	nextID   int64
	failures map[Op][]error
	calls    map[Op]int
	upserts  [][]topic.Draft
	deletes  [][]int64
}

var _ topic.Collection = (*FakeCollection)(nil)

// NewFakeCollection creates a collection seeded with one record per title.
func NewFakeCollection(titles ...string) *FakeCollection {
	f := &FakeCollection{
		clock:    NewDeterministicClock(),
		nextID:   1,
		failures: make(map[Op][]error),
		calls:    make(map[Op]int),
	}
	for _, title := range titles {
		f.create(title)
	}
	return f
}

// FailNext makes the next call of op fail with a *topic.StatusError.
// An empty message mimics a remote that sends no error body.
func (f *FakeCollection) FailNext(op Op, status int, message string) {
	f.FailNextWith(op, &topic.StatusError{StatusCode: status, Message: message})
}

// FailNextWith makes the next call of op fail with err.
func (f *FakeCollection) FailNextWith(op Op, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[op] = append(f.failures[op], err)
}

// List returns every record in creation order.
func (f *FakeCollection) List(ctx context.Context) ([]topic.Topic, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.begin(ctx, OpList); err != nil {
		return nil, err
	}
	out := make([]topic.Topic, len(f.records))
	for i, t := range f.records {
		id := *t.ID
		t.ID = &id
		out[i] = t
	}
	return out, nil
}

// Upsert applies drafts atomically: an update of an unknown id rejects the
// whole batch with status 404.
func (f *FakeCollection) Upsert(ctx context.Context, drafts []topic.Draft) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.begin(ctx, OpUpsert); err != nil {
		return err
	}
	batch := make([]topic.Draft, len(drafts))
	for i, d := range drafts {
		if d.ID != nil {
			id := *d.ID
			d.ID = &id
			if f.index(id) < 0 {
				return &topic.StatusError{
					StatusCode: http.StatusNotFound,
					Message:    fmt.Sprintf("topic %d not found", id),
				}
			}
		}
		batch[i] = d
	}
	f.upserts = append(f.upserts, batch)

	for _, d := range batch {
		if d.ID == nil {
			f.create(d.Title)
			continue
		}
		i := f.index(*d.ID)
		f.records[i].Title = d.Title
		f.records[i].UpdatedAt = f.clock.Timestamp()
	}
	return nil
}

// Delete removes the records with the given ids. Unknown ids are ignored.
func (f *FakeCollection) Delete(ctx context.Context, ids []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.begin(ctx, OpDelete); err != nil {
		return err
	}
	f.deletes = append(f.deletes, slices.Clone(ids))
	f.records = slices.DeleteFunc(f.records, func(t topic.Topic) bool {
		return slices.Contains(ids, *t.ID)
	})
	return nil
}

// Calls returns how many times op was invoked, failed calls included.
func (f *FakeCollection) Calls(op Op) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// Upserts returns every accepted upsert batch in call order.
func (f *FakeCollection) Upserts() [][]topic.Draft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.upserts)
}

// Deletes returns every accepted delete batch in call order.
func (f *FakeCollection) Deletes() [][]int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.deletes)
}

// Len returns the number of stored records.
func (f *FakeCollection) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

// begin counts the call and returns an injected or context failure.
// Callers must hold f.mu.
func (f *FakeCollection) begin(ctx context.Context, op Op) error {
	f.calls[op]++
	if err := ctx.Err(); err != nil {
		return err
	}
	if queued := f.failures[op]; len(queued) > 0 {
		f.failures[op] = queued[1:]
		return queued[0]
	}
	return nil
}

func (f *FakeCollection) create(title string) {
	id := f.nextID
	f.nextID++
	now := f.clock.Timestamp()
	f.records = append(f.records, topic.Topic{
		ID:        &id,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (f *FakeCollection) index(id int64) int {
	return slices.IndexFunc(f.records, func(t topic.Topic) bool { return *t.ID == id })
}
