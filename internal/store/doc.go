// Package store provides SQLite-backed storage for the development topic
// collection served by internal/topicserver.
//
// # Batches
//
// UpsertTopics and DeleteTopics apply a whole batch in one transaction. An
// update that targets a missing id rolls the batch back, so a client never
// observes a partially applied batch.
//
// # Ordering
//
// ListTopics returns records ORDER BY id ASC. Ids come from AUTOINCREMENT
// and are never reused, so creation order is stable across restarts.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
