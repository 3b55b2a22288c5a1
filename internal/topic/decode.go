package topic

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// DecodeError describes a collection payload that does not have the Topic shape.
type DecodeError struct {
	Index  int // element index, -1 for the document itself
	Field  string
	Reason string
}

func (e *DecodeError) Error() string {
	switch {
	case e.Index < 0:
		return fmt.Sprintf("decode topics: %s", e.Reason)
	case e.Field == "":
		return fmt.Sprintf("decode topics: element %d: %s", e.Index, e.Reason)
	default:
		return fmt.Sprintf("decode topics: element %d: field %q: %s", e.Index, e.Field, e.Reason)
	}
}

// DecodeTopics validates and decodes a collection payload.
//
// The document must be a JSON array of objects. In each object "id" must be
// an integer or null, and "title", "createdAt" and "updatedAt" must be
// strings or null. Missing fields are treated as null; unknown fields are
// ignored.
func DecodeTopics(body []byte) ([]Topic, error) {
	if !gjson.ValidBytes(body) {
		return nil, &DecodeError{Index: -1, Reason: "malformed JSON"}
	}
	root := gjson.ParseBytes(body)
	if !root.IsArray() {
		return nil, &DecodeError{Index: -1, Reason: "expected a JSON array"}
	}

	topics := []Topic{}
	var decodeErr error
	i := 0
	root.ForEach(func(_, value gjson.Result) bool {
		t, err := decodeTopic(i, value)
		if err != nil {
			decodeErr = err
			return false
		}
		topics = append(topics, t)
		i++
		return true
	})
	if decodeErr != nil {
		return nil, decodeErr
	}
	return topics, nil
}

func decodeTopic(i int, value gjson.Result) (Topic, error) {
	if !value.IsObject() {
		return Topic{}, &DecodeError{Index: i, Reason: "expected an object"}
	}

	var t Topic
	id := value.Get("id")
	switch id.Type {
	case gjson.Null:
	case gjson.Number:
		if strings.ContainsAny(id.Raw, ".eE") {
			return Topic{}, &DecodeError{Index: i, Field: "id", Reason: "expected an integer"}
		}
		t.ID = int64Ptr(id.Int())
	default:
		return Topic{}, &DecodeError{Index: i, Field: "id", Reason: "expected an integer"}
	}

	var err error
	if t.Title, err = optionalString(i, value, "title"); err != nil {
		return Topic{}, err
	}
	if t.CreatedAt, err = optionalString(i, value, "createdAt"); err != nil {
		return Topic{}, err
	}
	if t.UpdatedAt, err = optionalString(i, value, "updatedAt"); err != nil {
		return Topic{}, err
	}
	return t, nil
}

func optionalString(i int, obj gjson.Result, field string) (string, error) {
	v := obj.Get(field)
	switch v.Type {
	case gjson.Null:
		return "", nil
	case gjson.String:
		return v.Str, nil
	default:
		return "", &DecodeError{Index: i, Field: field, Reason: "expected a string"}
	}
}

// errorMessage returns the "message" string of a JSON error body, or "".
func errorMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	m := gjson.GetBytes(body, "message")
	if m.Type != gjson.String {
		return ""
	}
	return m.Str
}
