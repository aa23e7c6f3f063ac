// Package store owns the persisted todo collection.
//
// A Store keeps one in-memory snapshot per session. Every successful
// mutation replaces the snapshot and queues exactly one write of the full
// collection; writes run in order on a single goroutine and the caller does
// not wait for the adapter. Only a full write queue makes a mutation wait,
// and then at most until its context is done. Write failures do not roll
// back memory; they are logged, reported on Errors and kept for Failed.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Makepad-fr/tally/internal/kv"
	"github.com/Makepad-fr/tally/internal/model"
)

const (
	DefaultKey          = "todos"
	DefaultWriteTimeout = 5 * time.Second
	defaultErrorBuffer  = 16
	writeQueueSize      = 64
)

var (
	ErrOutOfRange = errors.New("index out of range")
	ErrNotFound   = errors.New("todo not found")
	ErrClosed     = errors.New("store closed")
)

// Options configures a Store. The zero value is usable.
type Options struct {
	Key          string
	WriteTimeout time.Duration
	Logger       log.FieldLogger
	// ErrorBuffer is the capacity of the Errors channel.
	ErrorBuffer int
}

// WriteError describes a write-through that did not reach the adapter.
type WriteError struct {
	Version uint64
	Err     error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("save version %d: %v", e.Version, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

type write struct {
	version uint64
	data    string
	barrier chan struct{}
}

type Store struct {
	adapter kv.Adapter
	key     string
	timeout time.Duration
	log     log.FieldLogger

	mu      sync.Mutex
	loaded  bool
	closed  bool
	records model.Collection
	version uint64

	writes chan write
	errs   chan error
	done   chan struct{}

	failMu sync.Mutex
	failed *WriteError
}

// New starts the writer goroutine. Call Close when done.
func New(adapter kv.Adapter, opts Options) *Store {
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = DefaultWriteTimeout
	}
	if opts.Logger == nil {
		opts.Logger = log.StandardLogger()
	}
	if opts.ErrorBuffer <= 0 {
		opts.ErrorBuffer = defaultErrorBuffer
	}
	s := &Store{
		adapter: adapter,
		key:     opts.Key,
		timeout: opts.WriteTimeout,
		log:     opts.Logger.WithField("key", opts.Key),
		writes:  make(chan write, writeQueueSize),
		errs:    make(chan error, opts.ErrorBuffer),
		done:    make(chan struct{}),
	}
	go s.writer()
	return s
}

// Load returns the current collection, reading it from the adapter on first
// use. Missing or corrupt stored data yields an empty collection. Only an
// adapter read failure is returned as an error, and the next call retries.
func (s *Store) Load(ctx context.Context) (model.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.hydrate(ctx); err != nil {
		return nil, err
	}
	return s.records.Clone(), nil
}

// Append validates and appends a new pending record.
func (s *Store) Append(ctx context.Context, content string, category model.Category) (model.Collection, error) {
	rec, err := model.NewRecord(content, category)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, func(c model.Collection) (model.Collection, error) {
		return append(c, rec), nil
	})
}

// Toggle flips the completion flag of the record at the 0-based index.
func (s *Store) Toggle(ctx context.Context, index int) (model.Collection, error) {
	return s.mutate(ctx, func(c model.Collection) (model.Collection, error) {
		if index < 0 || index >= len(c) {
			return nil, fmt.Errorf("%w: have %d, got %d", ErrOutOfRange, len(c), index)
		}
		c[index].Completed = !c[index].Completed
		return c, nil
	})
}

// ToggleID flips the completion flag of the record with the given ID.
func (s *Store) ToggleID(ctx context.Context, id string) (model.Collection, error) {
	return s.mutate(ctx, func(c model.Collection) (model.Collection, error) {
		i := c.IndexOf(id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		c[i].Completed = !c[i].Completed
		return c, nil
	})
}

// Snapshot returns the in-memory collection and its version without
// touching the adapter. Version 0 means nothing was mutated yet.
func (s *Store) Snapshot() (model.Collection, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records.Clone(), s.version
}

// Errors reports write-through failures as *WriteError. When nobody reads
// it and the buffer is full, the oldest report is dropped.
func (s *Store) Errors() <-chan error { return s.errs }

// Flush waits until every write queued so far has been attempted.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	barrier := make(chan struct{})
	select {
	case s.writes <- write{barrier: barrier}:
	case <-ctx.Done():
		s.mu.Unlock()
		return ctx.Err()
	}
	s.mu.Unlock()

	select {
	case <-barrier:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drains pending writes and stops the writer. It is safe to call
// more than once.
func (s *Store) Close() error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.writes)
	}
	s.mu.Unlock()
	<-s.done
	return nil
}

// mutate runs fn on a private copy of the snapshot under the writer lock,
// so each mutation sees the result of the previous one.
func (s *Store) mutate(ctx context.Context, fn func(model.Collection) (model.Collection, error)) (model.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	if err := s.hydrate(ctx); err != nil {
		return nil, err
	}

	next, err := fn(s.records.Clone())
	if err != nil {
		return nil, err
	}
	data, err := Encode(next)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}

	// The snapshot only moves once the write is queued.
	select {
	case s.writes <- write{version: s.version + 1, data: data}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	s.records = next
	s.version++
	return next.Clone(), nil
}

// hydrate must be called with mu held.
func (s *Store) hydrate(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	data, err := s.adapter.Get(ctx, s.key)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		s.log.Info("no stored todos, starting empty")
		s.records = model.Collection{}
	case err != nil:
		return fmt.Errorf("load: %w", err)
	default:
		recs, migrated, err := Decode(data)
		if err != nil {
			s.log.WithError(err).Warn("stored todos are corrupt, starting empty")
			recs = model.Collection{}
		} else if migrated {
			s.log.WithField("count", len(recs)).Debug("assigned ids to stored todos")
		}
		s.records = recs
	}
	s.loaded = true
	return nil
}

func (s *Store) writer() {
	defer close(s.done)
	for w := range s.writes {
		if w.barrier != nil {
			close(w.barrier)
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		err := s.adapter.Set(ctx, s.key, w.data)
		cancel()
		if err != nil {
			we := &WriteError{Version: w.version, Err: err}
			s.setFailed(we)
			s.report(we)
			continue
		}
		s.setFailed(nil)
		s.log.WithField("version", w.version).Debug("saved todos")
	}
}

// Failed returns the error of the latest attempted write, or nil when it
// succeeded. Every write carries the full collection, so a later success
// clears an earlier failure. Unlike Errors it is not consumed by reading;
// call Flush first to include writes still queued.
func (s *Store) Failed() error {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	if s.failed == nil {
		return nil
	}
	return s.failed
}

func (s *Store) setFailed(err *WriteError) {
	s.failMu.Lock()
	s.failed = err
	s.failMu.Unlock()
}

func (s *Store) report(err *WriteError) {
	s.log.WithError(err.Err).WithField("version", err.Version).Error("failed to save todos")
	for {
		select {
		case s.errs <- err:
			return
		default:
		}
		select {
		case <-s.errs:
		default:
		}
	}
}
