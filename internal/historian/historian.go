// Package historian drains game actions from the Redis queue and persists them to
// PostgreSQL in batches. A batch is written when it reaches the configured size or when
// the flush interval elapses, whichever comes first.
package historian

import (
	"context"
	"sync"
	"time"

	"github.com/jason-s-yu/uno/internal/cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Source yields queued records. ok is false when the wait timed out with nothing queued.
type Source interface {
	Pop(ctx context.Context, timeout time.Duration) (record cache.ActionRecord, ok bool, err error)
}

// Sink stores a batch. It must tolerate records it has already stored.
type Sink interface {
	InsertActionRecords(ctx context.Context, records []cache.ActionRecord) error
}

type Options struct {
	BatchSize  int
	FlushDelay time.Duration
	// PopTimeout bounds each blocking pop so cancellation is noticed.
	PopTimeout time.Duration
}

// Service batches records from a Source into a Sink.
type Service struct {
	src  Source
	sink Sink
	opts Options
	log  *logrus.Entry

	batchMu sync.Mutex
	batch   []cache.ActionRecord
}

func New(src Source, sink Sink, opts Options, log *logrus.Entry) *Service {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 20
	}
	if opts.FlushDelay <= 0 {
		opts.FlushDelay = 500 * time.Millisecond
	}
	if opts.PopTimeout <= 0 {
		opts.PopTimeout = 3 * time.Second
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Service{
		src:   src,
		sink:  sink,
		opts:  opts,
		log:   log.WithField("component", "historian"),
		batch: make([]cache.ActionRecord, 0, opts.BatchSize),
	}
}

// Run consumes until ctx is cancelled, then writes whatever is still buffered.
func (s *Service) Run(ctx context.Context) error {
	s.log.Info("historian started")
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.readLoop(gctx) })
	g.Go(func() error { return s.flushLoop(gctx) })
	err := g.Wait()

	finalCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if ferr := s.Flush(finalCtx); ferr != nil {
		s.log.WithError(ferr).Error("final flush failed")
	}
	s.log.Info("historian shutting down")
	return err
}

func (s *Service) readLoop(ctx context.Context) error {
	for ctx.Err() == nil {
		rec, ok, err := s.src.Pop(ctx, s.opts.PopTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.log.WithError(err).Error("pop failed")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}
		if !ok {
			continue
		}
		if s.add(rec) {
			if err := s.Flush(ctx); err != nil {
				s.log.WithError(err).Error("flush failed")
			}
		}
	}
	return nil
}

func (s *Service) flushLoop(ctx context.Context) error {
	ticker := time.NewTicker(s.opts.FlushDelay)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.Flush(ctx); err != nil {
				s.log.WithError(err).Error("flush failed")
			}
		}
	}
}

// add buffers rec and reports whether the batch is full.
func (s *Service) add(rec cache.ActionRecord) bool {
	s.batchMu.Lock()
	defer s.batchMu.Unlock()
	s.batch = append(s.batch, rec)
	return len(s.batch) >= s.opts.BatchSize
}

// Pending is the number of buffered records.
func (s *Service) Pending() int {
	s.batchMu.Lock()
	defer s.batchMu.Unlock()
	return len(s.batch)
}

// Flush writes the buffered records. On failure they go back to the front of the buffer
// and are retried on the next flush.
func (s *Service) Flush(ctx context.Context) error {
	s.batchMu.Lock()
	if len(s.batch) == 0 {
		s.batchMu.Unlock()
		return nil
	}
	out := s.batch
	s.batch = make([]cache.ActionRecord, 0, s.opts.BatchSize)
	s.batchMu.Unlock()

	if err := s.sink.InsertActionRecords(ctx, out); err != nil {
		s.batchMu.Lock()
		s.batch = append(out, s.batch...)
		s.batchMu.Unlock()
		return err
	}
	s.log.Debugf("Flushed %d actions to DB.", len(out))
	return nil
}
