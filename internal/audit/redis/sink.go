package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/arenactl/internal/audit"
)

// Sink is a Redis-stream-backed audit sink. Entries are buffered and
// written in pipelined batches; Flush writes whatever is pending.
type Sink struct {
	client *redis.Client
	cfg    Config
	key    string

	mu      sync.Mutex
	pending []record
}

// record is an entry already encoded for the stream
type record struct {
	entry audit.Entry
	data  string
}

// New creates a Redis audit sink and verifies the connection
func New(cfg Config) (*Sink, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a sink with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Sink {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1
	}
	if cfg.Stream == "" {
		cfg.Stream = DefaultConfig().Stream
	}
	return &Sink{
		client: client,
		cfg:    cfg,
		key:    streamKey(cfg.Stream),
	}
}

// Close flushes pending entries and closes the Redis connection
func (s *Sink) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	flushErr := s.Flush(ctx)
	if err := s.client.Close(); err != nil {
		return err
	}
	return flushErr
}

// Ensure Sink implements the interface
var _ audit.Sink = (*Sink)(nil)

// Record encodes and buffers the entry and writes the batch once it is full.
// An entry that cannot be encoded is rejected and never buffered.
func (s *Sink) Record(ctx context.Context, entry audit.Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode audit entry: %w", err)
	}

	s.mu.Lock()
	s.pending = append(s.pending, record{entry: entry, data: string(data)})
	full := len(s.pending) >= s.cfg.BatchSize
	s.mu.Unlock()

	if full {
		return s.Flush(ctx)
	}
	return nil
}

// Flush writes all pending entries in one pipeline. Entries whose XADD
// failed go back to the front of the buffer; the rest are not retried.
func (s *Sink) Flush(ctx context.Context) error {
	s.mu.Lock()
	batch := s.pending
	s.pending = nil
	s.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(batch))
	for i, rec := range batch {
		args := &redis.XAddArgs{
			Stream: s.key,
			Values: map[string]any{
				"action":  string(rec.entry.Action),
				"session": strconv.FormatUint(rec.entry.SessionID, 10),
				"address": rec.entry.Address,
				"entry":   rec.data,
			},
		}
		if s.cfg.MaxLen > 0 {
			args.MaxLen = s.cfg.MaxLen
			args.Approx = true
		}
		cmds[i] = pipe.XAdd(ctx, args)
	}

	_, err := pipe.Exec(ctx)
	if err == nil {
		return nil
	}

	if retry := unwritten(batch, cmds); len(retry) > 0 {
		s.mu.Lock()
		s.pending = append(retry, s.pending...)
		s.mu.Unlock()
	}
	return err
}

// unwritten returns the records whose command failed, in order
func unwritten(batch []record, cmds []*redis.StringCmd) []record {
	var retry []record
	for i, cmd := range cmds {
		if cmd.Err() != nil {
			retry = append(retry, batch[i])
		}
	}
	return retry
}

// Pending returns the number of buffered entries
func (s *Sink) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Recent reads up to count entries back from the stream, oldest first
func (s *Sink) Recent(ctx context.Context, count int64) ([]audit.Entry, error) {
	msgs, err := s.client.XRevRangeN(ctx, s.key, "+", "-", count).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]audit.Entry, 0, len(msgs))
	for i := len(msgs) - 1; i >= 0; i-- {
		raw, ok := msgs[i].Values["entry"].(string)
		if !ok {
			continue
		}
		var entry audit.Entry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			continue // Skip invalid data
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
