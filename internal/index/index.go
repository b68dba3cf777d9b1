// Package index is the redis-backed search index: the write side used by
// ingestion and the read side consumed by the aggregation engine.
package index

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"mediamail/internal/config"
	"mediamail/internal/digest"
	"mediamail/internal/handle"
	"mediamail/internal/model"

	"github.com/redis/go-redis/v9"
)

// putAttempts bounds the collision retry loop on handle assignment. Past
// that the write overwrites: handle uniqueness is probabilistic within a
// rollover window and a partial report beats a stuck ingest.
const putAttempts = 4

type Store struct {
	rdb *redis.Client
	cfg config.IndexConfig
	gen *handle.Generator
	ttl time.Duration
}

func New(rdb *redis.Client, cfg config.IndexConfig) *Store {
	ttl, err := time.ParseDuration(cfg.RecordTTL)
	if err != nil || ttl < 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Store{
		rdb: rdb,
		cfg: cfg,
		gen: handle.NewGenerator(cfg.HandleWidth),
		ttl: ttl,
	}
}

func (s *Store) recordKey(h string) string {
	return fmt.Sprintf("%s:record:%s", s.cfg.Prefix, h)
}

func (s *Store) recordPattern() string {
	return fmt.Sprintf("%s:record:*", s.cfg.Prefix)
}

// Put assigns a fresh content handle to the record and stores it. On a key
// collision the handle is perturbed and retried a bounded number of times,
// then the last attempt overwrites. Returns the assigned handle.
func (s *Store) Put(ctx context.Context, rec model.Record) (string, error) {
	if rec.Text == "" {
		return "", fmt.Errorf("refusing to index record without text")
	}
	var h string
	for attempt := 0; attempt <= putAttempts; attempt++ {
		h = s.gen.Next()
		rec.Handle = h
		b, err := json.Marshal(rec)
		if err != nil {
			return "", err
		}
		if attempt == putAttempts {
			slog.Warn("handle collision retries exhausted; overwriting", "handle", h)
			return h, s.rdb.Set(ctx, s.recordKey(h), b, s.ttl).Err()
		}
		ok, err := s.rdb.SetNX(ctx, s.recordKey(h), b, s.ttl).Result()
		if err != nil {
			return "", err
		}
		if ok {
			return h, nil
		}
		slog.Debug("handle collision, retrying with perturbed counter", "handle", h)
	}
	return h, nil
}

// MarkSeen records that a platform post id has been ingested. Returns true
// the first time an id is seen, so pull-based collectors do not re-index
// the same post on every poll.
func (s *Store) MarkSeen(ctx context.Context, platformID string) (bool, error) {
	key := fmt.Sprintf("%s:seen:%s", s.cfg.Prefix, platformID)
	return s.rdb.SetNX(ctx, key, "1", s.ttl).Result()
}

// IsReported reports whether a digest was already delivered for a period.
func (s *Store) IsReported(ctx context.Context, period string) (bool, error) {
	res, err := s.rdb.Get(ctx, fmt.Sprintf("%s:reported:%s", s.cfg.Prefix, period)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return res == "1", nil
}

// MarkReported records that a digest was delivered for a period.
func (s *Store) MarkReported(ctx context.Context, period string) error {
	key := fmt.Sprintf("%s:reported:%s", s.cfg.Prefix, period)
	return s.rdb.Set(ctx, key, "1", 30*24*time.Hour).Err()
}

// Get resolves a content handle back to its record.
func (s *Store) Get(ctx context.Context, h string) (model.Record, error) {
	b, err := s.rdb.Get(ctx, s.recordKey(h)).Bytes()
	if err == redis.Nil {
		return model.Record{}, fmt.Errorf("no record for handle %s", h)
	}
	if err != nil {
		return model.Record{}, err
	}
	var rec model.Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return model.Record{}, fmt.Errorf("decode record %s: %w", h, err)
	}
	return rec, nil
}

// Retrieve compiles the opaque criteria and returns a lazy hit sequence
// over the whole index. The sequence pages through keys with SCAN, so large
// indexes are never materialized at once; it is not restartable.
func (s *Store) Retrieve(ctx context.Context, criteria map[string]any) (digest.Hits, error) {
	m, err := CompileCriteria(criteria)
	if err != nil {
		return nil, err
	}
	return &scanIterator{store: s, matcher: m}, nil
}

// scanIterator walks the record keyspace one SCAN page at a time, yielding
// only records that satisfy the matcher. Records that fail to decode are
// yielded too, surfacing the decode error from Record, so the caller can
// account for malformed hits.
type scanIterator struct {
	store   *Store
	matcher *Matcher

	cursor uint64
	done   bool
	keys   []string

	rec    model.Record
	recErr error
	err    error
}

func (it *scanIterator) Next(ctx context.Context) bool {
	for {
		if len(it.keys) == 0 {
			if it.done {
				return false
			}
			keys, cursor, err := it.store.rdb.Scan(ctx, it.cursor,
				it.store.recordPattern(), it.store.cfg.ScanCount).Result()
			if err != nil {
				it.err = err
				return false
			}
			it.cursor = cursor
			it.done = cursor == 0
			it.keys = keys
			continue
		}
		key := it.keys[0]
		it.keys = it.keys[1:]
		raw, err := it.store.rdb.Get(ctx, key).Bytes()
		if err == redis.Nil {
			// Expired between SCAN and GET.
			continue
		}
		if err != nil {
			it.err = err
			return false
		}
		var rec model.Record
		if uerr := json.Unmarshal(raw, &rec); uerr != nil {
			it.rec, it.recErr = model.Record{}, fmt.Errorf("decode %s: %w", key, uerr)
			return true
		}
		if !it.matcher.Matches(rec) {
			continue
		}
		it.rec, it.recErr = rec, nil
		return true
	}
}

func (it *scanIterator) Record() (model.Record, error) {
	return it.rec, it.recErr
}

func (it *scanIterator) Err() error { return it.err }
