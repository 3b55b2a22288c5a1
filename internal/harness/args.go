package harness

import (
	"fmt"
	"math"

	"github.com/roach88/storefront/internal/topic"
)

// argInt reads a required integer argument.
func argInt(args map[string]interface{}, key string) (int64, error) {
	v, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("missing arg %q", key)
	}
	n, ok := toInt64(v)
	if !ok {
		return 0, fmt.Errorf("arg %q: expected an integer, got %T", key, v)
	}
	return n, nil
}

// argString reads a required string argument.
func argString(args map[string]interface{}, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("missing arg %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("arg %q: expected a string, got %T", key, v)
	}
	return s, nil
}

// argInts reads a required list of integers.
func argInts(args map[string]interface{}, key string) ([]int64, error) {
	list, err := argList(args, key)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(list))
	for i, v := range list {
		n, ok := toInt64(v)
		if !ok {
			return nil, fmt.Errorf("arg %q[%d]: expected an integer, got %T", key, i, v)
		}
		ids[i] = n
	}
	return ids, nil
}

// argDrafts reads a required list of {id?, title} objects.
func argDrafts(args map[string]interface{}, key string) ([]topic.Draft, error) {
	list, err := argList(args, key)
	if err != nil {
		return nil, err
	}
	drafts := make([]topic.Draft, len(list))
	for i, v := range list {
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("arg %q[%d]: expected an object, got %T", key, i, v)
		}
		title, err := argString(m, "title")
		if err != nil {
			return nil, fmt.Errorf("arg %q[%d]: %w", key, i, err)
		}
		if _, hasID := m["id"]; hasID {
			id, err := argInt(m, "id")
			if err != nil {
				return nil, fmt.Errorf("arg %q[%d]: %w", key, i, err)
			}
			drafts[i] = topic.UpdateDraft(id, title)
			continue
		}
		drafts[i] = topic.NewDraft(title)
	}
	return drafts, nil
}

func argList(args map[string]interface{}, key string) ([]interface{}, error) {
	v, ok := args[key]
	if !ok {
		return nil, fmt.Errorf("missing arg %q", key)
	}
	list, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("arg %q: expected a list, got %T", key, v)
	}
	return list, nil
}

// toInt64 converts YAML-decoded numbers to int64. Floats are accepted only
// when integral.
func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float64:
		if n != math.Trunc(n) || n > math.MaxInt64 || n < math.MinInt64 {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}
