package sync

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alfredjeanlab/flock/internal/store"
)

// Destination is a backup target.
type Destination interface {
	// Write sends the JSONL payload to the destination.
	Write(ctx context.Context, data []byte) error
}

// Scheduler exports the store to its destinations at a fixed interval.
// Exports whose content (everything after the header line) matches the
// previous successful run are skipped.
type Scheduler struct {
	store        store.Store
	destinations []Destination
	interval     time.Duration
	logger       *slog.Logger

	mu       sync.Mutex
	lastHash [sha256.Size]byte

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a scheduler. A nil logger uses slog.Default().
func NewScheduler(s store.Store, destinations []Destination, interval time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		store:        s,
		destinations: destinations,
		interval:     interval,
		logger:       logger,
	}
}

// Start runs an initial sync immediately, then one per interval until Stop.
func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()
}

// Stop cancels the scheduler and waits for the current sync to finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context) {
	_, _ = s.SyncNow(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = s.SyncNow(ctx)
		}
	}
}

// SyncNow exports once and writes to every destination. It reports whether
// anything was written; unchanged exports are skipped. Destination failures
// are logged and joined into the returned error, and a failed run is
// retried in full next time.
func (s *Scheduler) SyncNow(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var buf bytes.Buffer
	if err := ExportJSONL(ctx, s.store, &buf); err != nil {
		s.logger.Error("sync export failed", "err", err)
		return false, err
	}
	data := buf.Bytes()

	hash := sha256.Sum256(body(data))
	if hash == s.lastHash {
		s.logger.Debug("sync skipped, export unchanged", "bytes", len(data))
		return false, nil
	}

	var failed []error
	for _, dest := range s.destinations {
		if err := dest.Write(ctx, data); err != nil {
			s.logger.Error("sync destination write failed", "destination", describe(dest), "err", err)
			failed = append(failed, err)
		}
	}
	if len(failed) > 0 {
		return true, fmt.Errorf("sync: %d of %d destinations failed: %w", len(failed), len(s.destinations), failed[0])
	}

	s.lastHash = hash
	s.logger.Info("sync completed", "destinations", len(s.destinations), "bytes", len(data))
	return true, nil
}

// body strips the header line, whose timestamp changes on every export.
func body(data []byte) []byte {
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return data[i+1:]
	}
	return nil
}

func describe(d Destination) string {
	if s, ok := d.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", d)
}
