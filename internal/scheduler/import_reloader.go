package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/MrSnakeDoc/mapmarks/internal/domain"
	"github.com/MrSnakeDoc/mapmarks/internal/engine"
	"github.com/MrSnakeDoc/mapmarks/internal/logger"
	"github.com/MrSnakeDoc/mapmarks/internal/sources/importer"
)

type importTarget interface {
	CategoryIndexByName(name string) (int, bool)
	CreateCategory(name string) int
	CategorySize(cat int) int
	BookmarkData(cat, idx int) (engine.BookmarkData, bool)
	AddBookmark(cat int, data engine.BookmarkData) int
}

// ImportReloader merges the import file into the engine
type ImportReloader struct {
	loader        *importer.Loader
	mapper        *importer.Mapper
	engine        importTarget
	mu            sync.Locker
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewImportReloader creates a new import reloader. mu serializes merges with
// other writers of the engine. An interval of 0 disables periodic reloads.
func NewImportReloader(
	importFile string,
	eng importTarget,
	mu sync.Locker,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *ImportReloader {
	return &ImportReloader{
		loader:        importer.NewLoader(importFile),
		mapper:        importer.NewMapper(),
		engine:        eng,
		mu:            mu,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start merges the file once and then keeps reloading it
func (ir *ImportReloader) Start(ctx context.Context) error {
	// Load immediately on start
	if _, err := ir.Reload(ctx); err != nil {
		return fmt.Errorf("initial import failed: %w", err)
	}

	go func() {
		// a nil channel never fires: with no interval only manual triggers reload
		var tick <-chan time.Time
		if ir.interval > 0 {
			ticker := time.NewTicker(ir.interval)
			defer ticker.Stop()
			tick = ticker.C
		}

		for {
			select {
			case <-tick:
				ir.reload(ctx)
			case <-ir.manualTrigger:
				ir.logger.Info("manual import reload triggered")
				ir.reload(ctx)
			case <-ir.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader
func (ir *ImportReloader) Stop() {
	close(ir.stopCh)
}

func (ir *ImportReloader) reload(ctx context.Context) {
	if _, err := ir.Reload(ctx); err != nil {
		ir.logger.Error("failed to reload import file",
			logger.Error(err))
	}
}

// Reload merges the import file and returns how many bookmarks were added.
// Categories are matched by name; a bookmark identical to one already in
// its category is skipped, so repeated reloads add nothing.
func (ir *ImportReloader) Reload(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	ir.logger.Info("reloading import file",
		logger.String("path", ir.loader.Path()))

	file, err := ir.loader.Load()
	if err != nil {
		return 0, fmt.Errorf("failed to load import file: %w", err)
	}

	res, err := ir.mapper.MapCategories(file)
	if err != nil {
		return 0, fmt.Errorf("failed to map import file: %w", err)
	}
	if len(res.Skipped) > 0 {
		ir.logger.Warn("skipped invalid import entries",
			logger.Int("count", len(res.Skipped)),
			logger.String("entries", strings.Join(res.Skipped, "; ")))
	}

	ir.mu.Lock()
	defer ir.mu.Unlock()

	added := 0
	for _, c := range res.Categories {
		cat, ok := ir.engine.CategoryIndexByName(c.Name)
		if !ok {
			cat = ir.engine.CreateCategory(c.Name)
			ir.logger.Info("created category from import",
				logger.String("name", c.Name))
		}

		for _, b := range c.Bookmarks {
			if ir.contains(cat, b) {
				continue
			}
			if ir.engine.AddBookmark(cat, b) >= 0 {
				added++
			}
		}
	}

	if added > 0 {
		ir.logger.Info("import merged",
			logger.Int("added", added))
	} else {
		ir.logger.Debug("import file already merged")
	}
	return added, nil
}

func (ir *ImportReloader) contains(cat int, b engine.BookmarkData) bool {
	candidate := domain.NewBookmark(cat, 0, b.Attrs, b.Icon)
	for i, n := 0, ir.engine.CategorySize(cat); i < n; i++ {
		existing, ok := ir.engine.BookmarkData(cat, i)
		if !ok {
			continue
		}
		if domain.NewBookmark(cat, 0, existing.Attrs, existing.Icon).SameAs(candidate) {
			return true
		}
	}
	return false
}
