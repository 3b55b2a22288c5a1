// Package topic keeps a local snapshot of remote topic records in sync with
// a remote collection.
//
// SYNCHRONIZATION POLICY (refresh-after-mutate):
//
// The local cache is only ever replaced wholesale by Load. Save and Delete
// never patch the cache themselves; after the remote accepts a mutation the
// client re-fetches the full collection. The remote collection is the source
// of truth for ids and timestamps.
//
// On top of the cache the Client tracks transient form state: the title
// edit buffer, the id being edited and a multi-selection used for bulk
// deletion. None of it is persisted.
//
// ERRORS:
//
// Failures surface as *FetchError, *SaveError or *DeleteError. Each carries
// a displayable Message (the server's message when it sent one) and the
// underlying cause via Unwrap. Nothing is retried.
package topic
