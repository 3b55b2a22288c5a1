package topic

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeTopics(t *testing.T) {
	body := `[
		{"id": 1, "title": "Go", "createdAt": "2024-01-01T00:00:00Z", "updatedAt": "2024-01-02T00:00:00Z"},
		{"id": null, "title": "Draft"},
		{"title": "No id", "extra": true}
	]`

	topics, err := DecodeTopics([]byte(body))
	require.NoError(t, err)
	require.Len(t, topics, 3)

	require.NotNil(t, topics[0].ID)
	assert.Equal(t, int64(1), *topics[0].ID)
	assert.Equal(t, "Go", topics[0].Title)
	assert.Equal(t, "2024-01-01T00:00:00Z", topics[0].CreatedAt)
	assert.Equal(t, "2024-01-02T00:00:00Z", topics[0].UpdatedAt)

	assert.Nil(t, topics[1].ID)
	assert.False(t, topics[2].HasID())
	assert.Equal(t, "No id", topics[2].Title)
}

func TestDecodeTopicsEmptyArray(t *testing.T) {
	topics, err := DecodeTopics([]byte(`[]`))
	require.NoError(t, err)
	assert.NotNil(t, topics)
	assert.Empty(t, topics)
}

func TestDecodeTopicsRejectsBadShape(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		index int
		field string
	}{
		{"malformed", `[{"id": 1,`, -1, ""},
		{"empty body", ``, -1, ""},
		{"object at top level", `{"id": 1}`, -1, ""},
		{"element not object", `[1]`, 0, ""},
		{"fractional id", `[{"id": 1.5, "title": "x"}]`, 0, "id"},
		{"exponent id", `[{"id": 1e3, "title": "x"}]`, 0, "id"},
		{"string id", `[{"id": "1", "title": "x"}]`, 0, "id"},
		{"numeric title", `[{"id": 1, "title": 7}]`, 0, "title"},
		{"bool createdAt", `[{"id": 1, "title": "x", "createdAt": true}]`, 0, "createdAt"},
		{"second element bad", `[{"id": 1, "title": "x"}, {"id": 2, "updatedAt": []}]`, 1, "updatedAt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTopics([]byte(tt.body))
			require.Error(t, err)

			var de *DecodeError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, tt.index, de.Index)
			assert.Equal(t, tt.field, de.Field)
		})
	}
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "in use", errorMessage([]byte(`{"message": "in use"}`)))
	assert.Equal(t, "", errorMessage([]byte(`{"message": 3}`)))
	assert.Equal(t, "", errorMessage([]byte(`{"error": "x"}`)))
	assert.Equal(t, "", errorMessage([]byte(`<html>bad gateway</html>`)))
	assert.Equal(t, "", errorMessage(nil))
}
