// Package redis holds the draft buffer store. The editing surface writes
// buffered content here as the user types; the auto-save reconciler drains
// it on its own schedule. Losing a buffer is acceptable (the worst case is
// one interval of typing), so Redis durability is enough.
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"proposalforge/internal/domain/repositories"
)

// buffers live under one hash per proposal so a reconciler tick can read a
// proposal's whole buffer map in one call.
const (
	bufferKeyPrefix = "draftbuf:"
	proposalSetKey  = "draftbuf:proposals"
	bufferTTL       = 24 * time.Hour
)

// BufferStore implements repositories.DraftBufferStore on Redis.
type BufferStore struct {
	client *redis.Client
	logger *slog.Logger
}

// NewBufferStore creates a buffer store from a Redis URL.
func NewBufferStore(url string, logger *slog.Logger) (*BufferStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &BufferStore{client: client, logger: logger}, nil
}

// NewBufferStoreFromClient wraps an existing client (used by tests with
// miniredis).
func NewBufferStoreFromClient(client *redis.Client, logger *slog.Logger) *BufferStore {
	return &BufferStore{client: client, logger: logger}
}

var _ repositories.DraftBufferStore = (*BufferStore)(nil)

// Put stores buffered content for a section key.
func (s *BufferStore) Put(ctx context.Context, proposalID, sectionKey, content string) error {
	key := bufferKeyPrefix + proposalID

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, sectionKey, content)
	pipe.Expire(ctx, key, bufferTTL)
	pipe.SAdd(ctx, proposalSetKey, proposalID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("put draft buffer: %w", err)
	}

	return nil
}

// Snapshot returns the current buffer map for a proposal.
func (s *BufferStore) Snapshot(ctx context.Context, proposalID string) (map[string]string, error) {
	buffers, err := s.client.HGetAll(ctx, bufferKeyPrefix+proposalID).Result()
	if err != nil {
		return nil, fmt.Errorf("snapshot draft buffers: %w", err)
	}
	return buffers, nil
}

// Proposals lists proposal IDs that currently have buffered content.
func (s *BufferStore) Proposals(ctx context.Context) ([]string, error) {
	ids, err := s.client.SMembers(ctx, proposalSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list buffered proposals: %w", err)
	}

	// Drop entries whose hash expired
	active := ids[:0]
	for _, id := range ids {
		exists, err := s.client.Exists(ctx, bufferKeyPrefix+id).Result()
		if err != nil {
			return nil, fmt.Errorf("check buffer existence: %w", err)
		}
		if exists > 0 {
			active = append(active, id)
		} else {
			if err := s.client.SRem(ctx, proposalSetKey, id).Err(); err != nil {
				s.logger.Warn("failed to prune expired buffer entry", "proposal_id", id, "error", err)
			}
		}
	}

	return active, nil
}

// Close releases the underlying client.
func (s *BufferStore) Close() error {
	return s.client.Close()
}
