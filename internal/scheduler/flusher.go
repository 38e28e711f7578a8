package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/mapmarks/internal/logger"
)

const (
	// DefaultFlushInterval is used when the configured interval is not positive
	DefaultFlushInterval = 30 * time.Second
	// DefaultFinalFlushTimeout bounds the flush run by Stop
	DefaultFinalFlushTimeout = 10 * time.Second
)

type flushable interface {
	Flush(ctx context.Context) error
	Dirty() bool
}

// Flusher periodically writes unsaved engine changes to storage
type Flusher struct {
	engine        flushable
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	done          chan struct{}
	manualTrigger chan struct{}
	stopOnce      sync.Once
}

// NewFlusher creates a new flusher. manualTrigger may be nil.
func NewFlusher(
	eng flushable,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *Flusher {
	if interval <= 0 {
		interval = DefaultFlushInterval
	}

	return &Flusher{
		engine:        eng,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		done:          make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start begins the periodic flush loop
func (f *Flusher) Start(ctx context.Context) {
	ticker := time.NewTicker(f.interval)
	go func() {
		defer close(f.done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				f.flush(ctx)
			case <-f.manualTrigger:
				f.logger.Info("manual flush triggered")
				f.flush(ctx)
			case <-f.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop ends the loop and writes pending changes one last time
func (f *Flusher) Stop() {
	f.stopOnce.Do(func() {
		close(f.stopCh)
		<-f.done

		ctx, cancel := context.WithTimeout(context.Background(), DefaultFinalFlushTimeout)
		defer cancel()
		f.flush(ctx)
	})
}

// Flush writes pending changes now
func (f *Flusher) Flush(ctx context.Context) error {
	if !f.engine.Dirty() {
		f.logger.Debug("nothing to flush")
		return nil
	}

	start := time.Now()
	if err := f.engine.Flush(ctx); err != nil {
		return err
	}

	f.logger.Info("bookmarks flushed to storage",
		logger.Duration("took", time.Since(start)))
	return nil
}

func (f *Flusher) flush(ctx context.Context) {
	if err := f.Flush(ctx); err != nil {
		// state stays dirty, the next tick retries
		f.logger.Warn("failed to flush bookmarks",
			logger.Error(err))
	}
}
