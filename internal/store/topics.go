package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/storefront/internal/topic"
)

// ErrTopicNotFound is returned when an update targets a missing id.
var ErrTopicNotFound = errors.New("topic not found")

// NotFoundError identifies the id an update could not find.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("topic %d not found", e.ID)
}

// Is makes errors.Is(err, ErrTopicNotFound) match.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrTopicNotFound
}

// ListTopics returns every topic ordered by id.
func (s *Store) ListTopics(ctx context.Context) ([]topic.Topic, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, created_at, updated_at
		FROM topics
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	defer rows.Close()

	topics := []topic.Topic{}
	for rows.Next() {
		var (
			id int64
			t  topic.Topic
		)
		if err := rows.Scan(&id, &t.Title, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("list topics: scan: %w", err)
		}
		t.ID = &id
		topics = append(topics, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	return topics, nil
}

// UpsertTopics creates drafts without an id and updates drafts with one.
// The batch is applied in a single transaction: if any update targets a
// missing id, nothing is written and the error wraps ErrTopicNotFound.
func (s *Store) UpsertTopics(ctx context.Context, drafts []topic.Draft) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("upsert topics: begin: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	now := s.timestamp()
	for _, d := range drafts {
		if d.ID == nil {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO topics (title, created_at, updated_at)
				VALUES (?, ?, ?)
			`, d.Title, now, now); err != nil {
				return fmt.Errorf("upsert topics: insert: %w", err)
			}
			continue
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE topics SET title = ?, updated_at = ?
			WHERE id = ?
		`, d.Title, now, *d.ID)
		if err != nil {
			return fmt.Errorf("upsert topics: update %d: %w", *d.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("upsert topics: update %d: %w", *d.ID, err)
		}
		if n == 0 {
			return &NotFoundError{ID: *d.ID}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("upsert topics: commit: %w", err)
	}
	return nil
}

// DeleteTopics removes the topics with the given ids in one transaction and
// returns how many rows were removed. Unknown ids are ignored.
func (s *Store) DeleteTopics(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("delete topics: begin: %w", err)
	}
	defer tx.Rollback()

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM topics WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return 0, fmt.Errorf("delete topics: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete topics: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("delete topics: commit: %w", err)
	}
	return n, nil
}

// GetTopic returns one topic by id.
func (s *Store) GetTopic(ctx context.Context, id int64) (topic.Topic, error) {
	var t topic.Topic
	err := s.db.QueryRowContext(ctx, `
		SELECT title, created_at, updated_at FROM topics WHERE id = ?
	`, id).Scan(&t.Title, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return topic.Topic{}, &NotFoundError{ID: id}
	}
	if err != nil {
		return topic.Topic{}, fmt.Errorf("get topic %d: %w", id, err)
	}
	t.ID = &id
	return t, nil
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}
