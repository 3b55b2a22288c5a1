package topic

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/storefront/internal/observe"
)

// Client caches the remote topic collection and holds the form state of the
// management screen.
//
// Thread-safety: Client is safe for concurrent use. Remote operations
// (Load, Save, Submit, Delete, DeleteSelected) are serialized, so at most one
// remote call per client is in flight. Readers and form transitions never
// wait on the network.
type Client struct {
	opMu sync.Mutex // serializes remote operations

	mu       sync.RWMutex
	topics   []Topic
	form     FormState
	selected []int64
	loading  bool
	lastErr  string

	remote    Collection
	observers observe.Registry[View]
	logger    *slog.Logger
}

// NewClient creates a client over remote with an empty cache.
// A nil logger discards log output.
func NewClient(remote Collection, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		topics:   []Topic{},
		selected: []int64{},
		remote:   remote,
		logger:   logger,
	}
}

// Load fetches the full collection and replaces the cache.
// On failure it returns a *FetchError and the cache is left as it was.
func (c *Client) Load(ctx context.Context) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	return c.load(ctx)
}

func (c *Client) load(ctx context.Context) error {
	c.update(func() { c.loading = true })

	topics, err := c.remote.List(ctx)
	if err != nil {
		fe := newFetchError(err)
		c.logger.Warn("topic load failed", "op", "load", "error", err)
		c.update(func() {
			c.loading = false
			c.lastErr = fe.Message
		})
		return fe
	}

	c.logger.Debug("topic load", "op", "load", "count", len(topics))
	c.update(func() {
		c.loading = false
		c.lastErr = ""
		c.topics = cloneTopics(topics)
	})
	return nil
}

// Save upserts drafts as one batch. On success the form is reset and the
// cache is reloaded; on failure it returns a *SaveError and local state is
// left as it was. Titles are normalized to Unicode NFC. Saving no drafts
// does nothing.
func (c *Client) Save(ctx context.Context, drafts ...Draft) error {
	if len(drafts) == 0 {
		return nil
	}
	batch := make([]Draft, len(drafts))
	for i, d := range drafts {
		batch[i] = Draft{ID: cloneID(d.ID), Title: norm.NFC.String(d.Title)}
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	if err := c.remote.Upsert(ctx, batch); err != nil {
		se := newSaveError(err)
		c.logger.Warn("topic save failed", "op", "save", "count", len(batch), "error", err)
		c.update(func() { c.lastErr = se.Message })
		return se
	}

	c.logger.Debug("topic save", "op", "save", "count", len(batch))
	c.update(func() { c.form = FormState{} })
	return c.load(ctx)
}

// Submit saves the form as a single draft. The draft carries the id being
// edited, or no id when the form is creating a record.
func (c *Client) Submit(ctx context.Context) error {
	form := c.Form()
	return c.Save(ctx, Draft{ID: form.EditingID, Title: form.Title})
}

// Delete removes ids as one batch. On success the ids leave the selection and
// the cache is reloaded; on failure it returns a *DeleteError and the
// selection and cache are left as they were. Deleting no ids does nothing.
func (c *Client) Delete(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	batch := slices.Clone(ids)

	c.opMu.Lock()
	defer c.opMu.Unlock()

	if err := c.remote.Delete(ctx, batch); err != nil {
		de := newDeleteError(err)
		c.logger.Warn("topic delete failed", "op", "delete", "count", len(batch), "error", err)
		c.update(func() { c.lastErr = de.Message })
		return de
	}

	c.logger.Debug("topic delete", "op", "delete", "count", len(batch))
	c.update(func() {
		c.selected = slices.DeleteFunc(c.selected, func(id int64) bool {
			return slices.Contains(batch, id)
		})
	})
	return c.load(ctx)
}

// DeleteSelected deletes every selected topic.
func (c *Client) DeleteSelected(ctx context.Context) error {
	return c.Delete(ctx, c.Selected())
}

// BeginEdit loads t into the form. Topics without an id are ignored.
func (c *Client) BeginEdit(t Topic) {
	if t.ID == nil {
		return
	}
	c.update(func() {
		c.form = FormState{Title: t.Title, EditingID: cloneID(t.ID)}
	})
}

// SetTitle replaces the form's title buffer.
func (c *Client) SetTitle(title string) {
	c.update(func() { c.form.Title = title })
}

// ResetForm clears the title buffer and the edit target.
func (c *Client) ResetForm() {
	c.update(func() { c.form = FormState{} })
}

// ToggleSelection adds id to the selection if absent and removes it if
// present. The selection keeps insertion order.
func (c *Client) ToggleSelection(id int64) {
	c.update(func() {
		if i := slices.Index(c.selected, id); i >= 0 {
			c.selected = slices.Delete(c.selected, i, i+1)
			return
		}
		c.selected = append(c.selected, id)
	})
}

// Topics returns a snapshot of the cache.
func (c *Client) Topics() []Topic {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneTopics(c.topics)
}

// Selected returns the selected ids in insertion order.
func (c *Client) Selected() []int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.selected)
}

// IsSelected reports whether id is selected.
func (c *Client) IsSelected(id int64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Contains(c.selected, id)
}

// Form returns a snapshot of the form state.
func (c *Client) Form() FormState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.form.clone()
}

// Editing returns the id being edited, if any.
func (c *Client) Editing() (int64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.form.EditingID == nil {
		return 0, false
	}
	return *c.form.EditingID, true
}

// Err returns the last displayable error, or "" after a successful load.
func (c *Client) Err() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

// Loading reports whether a load is in flight.
func (c *Client) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

// View returns a snapshot of all client state.
func (c *Client) View() View {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.viewLocked()
}

// Subscribe registers fn to receive a View after every state change.
// The returned function cancels the subscription.
func (c *Client) Subscribe(fn func(View)) (cancel func()) {
	return c.observers.Subscribe(func(v View) { fn(v.clone()) })
}

// update applies fn under the state lock and notifies observers after the
// lock is released.
func (c *Client) update(fn func()) {
	c.mu.Lock()
	fn()
	v := c.viewLocked()
	c.mu.Unlock()

	c.observers.Notify(v)
}

func (c *Client) viewLocked() View {
	return View{
		Topics:   cloneTopics(c.topics),
		Form:     c.form.clone(),
		Selected: slices.Clone(c.selected),
		Loading:  c.loading,
		Err:      c.lastErr,
	}
}

func (v View) clone() View {
	v.Topics = cloneTopics(v.Topics)
	v.Form = v.Form.clone()
	v.Selected = slices.Clone(v.Selected)
	return v
}
