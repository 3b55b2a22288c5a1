package topic

// Topic is a remote topic record as last fetched.
// CreatedAt and UpdatedAt are assigned by the remote and treated as opaque.
type Topic struct {
	ID        *int64 `json:"id,omitempty"`
	Title     string `json:"title"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// HasID reports whether the topic has been persisted.
func (t Topic) HasID() bool {
	return t.ID != nil
}

// Draft is the upsert payload for one topic: without an ID it creates a
// record, with an ID it updates that record. Timestamps are never sent.
type Draft struct {
	ID    *int64 `json:"id,omitempty"`
	Title string `json:"title"`
}

// NewDraft returns a create draft for title.
func NewDraft(title string) Draft {
	return Draft{Title: title}
}

// UpdateDraft returns a draft that updates the record with the given id.
func UpdateDraft(id int64, title string) Draft {
	return Draft{ID: &id, Title: title}
}

// FormState is the transient edit form. EditingID is nil while creating.
type FormState struct {
	Title     string `json:"title"`
	EditingID *int64 `json:"editingId,omitempty"`
}

// IsEditing reports whether the form targets an existing record.
func (f FormState) IsEditing() bool {
	return f.EditingID != nil
}

// View is a snapshot of everything the management screen renders.
type View struct {
	Topics   []Topic   `json:"topics"`
	Form     FormState `json:"form"`
	Selected []int64   `json:"selected"`
	Loading  bool      `json:"loading"`
	Err      string    `json:"error,omitempty"`
}

func int64Ptr(v int64) *int64 {
	return &v
}

func cloneID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	return int64Ptr(*id)
}

func (t Topic) clone() Topic {
	t.ID = cloneID(t.ID)
	return t
}

func cloneTopics(src []Topic) []Topic {
	out := make([]Topic, len(src))
	for i, t := range src {
		out[i] = t.clone()
	}
	return out
}

func (f FormState) clone() FormState {
	f.EditingID = cloneID(f.EditingID)
	return f
}
