package topic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method    string
	Path      string
	RequestID string
	Body      string
}

func newTestServer(t *testing.T, status int, response string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var requests []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		requests = append(requests, recordedRequest{
			Method:    r.Method,
			Path:      r.URL.Path,
			RequestID: r.Header.Get(RequestIDHeader),
			Body:      string(body),
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func TestHTTPCollectionList(t *testing.T) {
	srv, requests := newTestServer(t, http.StatusOK, `[{"id": 1, "title": "Go"}]`)
	c := NewHTTPCollection(HTTPConfig{
		BaseURL:    srv.URL + "/",
		RequestIDs: NewFixedGenerator("req-1"),
	})

	topics, err := c.List(context.Background())
	require.NoError(t, err)
	require.Len(t, topics, 1)
	assert.Equal(t, "Go", topics[0].Title)

	require.Len(t, *requests, 1)
	got := (*requests)[0]
	assert.Equal(t, http.MethodGet, got.Method)
	assert.Equal(t, CollectionPath, got.Path)
	assert.Equal(t, "req-1", got.RequestID)
	assert.Empty(t, got.Body)
}

func TestHTTPCollectionUpsertBody(t *testing.T) {
	srv, requests := newTestServer(t, http.StatusOK, `{}`)
	c := NewHTTPCollection(HTTPConfig{BaseURL: srv.URL, RequestIDs: NewFixedGenerator("req-1")})

	err := c.Upsert(context.Background(), []Draft{NewDraft("A"), UpdateDraft(7, "B")})
	require.NoError(t, err)

	require.Len(t, *requests, 1)
	got := (*requests)[0]
	assert.Equal(t, http.MethodPost, got.Method)
	assert.JSONEq(t, `[{"title":"A"},{"id":7,"title":"B"}]`, got.Body)
}

func TestHTTPCollectionDeleteBody(t *testing.T) {
	srv, requests := newTestServer(t, http.StatusNoContent, ``)
	c := NewHTTPCollection(HTTPConfig{BaseURL: srv.URL, RequestIDs: NewFixedGenerator("req-1")})

	require.NoError(t, c.Delete(context.Background(), []int64{3, 4}))

	got := (*requests)[0]
	assert.Equal(t, http.MethodDelete, got.Method)

	var ids []int64
	require.NoError(t, json.Unmarshal([]byte(got.Body), &ids))
	assert.Equal(t, []int64{3, 4}, ids)
}

func TestHTTPCollectionStatusError(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusConflict, `{"message": "in use"}`)
	c := NewHTTPCollection(HTTPConfig{BaseURL: srv.URL})

	err := c.Delete(context.Background(), []int64{3})
	require.Error(t, err)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusConflict, se.StatusCode)
	assert.Equal(t, "in use", se.Message)
}

func TestHTTPCollectionStatusErrorWithoutMessage(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusInternalServerError, `oops`)
	c := NewHTTPCollection(HTTPConfig{BaseURL: srv.URL})

	_, err := c.List(context.Background())
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Empty(t, se.Message)
	assert.Equal(t, "remote returned status 500", se.Error())
}

func TestHTTPCollectionMalformedPayload(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{"topics": []}`)
	c := NewHTTPCollection(HTTPConfig{BaseURL: srv.URL})

	_, err := c.List(context.Background())
	var de *DecodeError
	require.ErrorAs(t, err, &de)
}

func TestHTTPCollectionCancelledContext(t *testing.T) {
	srv, requests := newTestServer(t, http.StatusOK, `[]`)
	c := NewHTTPCollection(HTTPConfig{BaseURL: srv.URL})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.List(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, *requests)
}

func TestHTTPCollectionThroughClient(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusBadRequest, `{"message": "title required"}`)
	client := NewClient(NewHTTPCollection(HTTPConfig{BaseURL: srv.URL}), nil)

	err := client.Save(context.Background(), NewDraft(""))
	var se *SaveError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "title required", se.Error())
	assert.Equal(t, http.StatusBadRequest, se.StatusCode)
}

func TestFixedGeneratorExhausted(t *testing.T) {
	g := NewFixedGenerator("a")
	assert.Equal(t, "a", g.Generate())
	assert.Panics(t, func() { g.Generate() })
}

func TestUUIDv7GeneratorUnique(t *testing.T) {
	var g UUIDv7Generator
	a, b := g.Generate(), g.Generate()
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 36)
}
