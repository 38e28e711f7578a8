package scheduler

import (
	"context"

	"github.com/MrSnakeDoc/mapmarks/internal/logger"
)

type snapshotLoader interface {
	LoadBookmarks(ctx context.Context) error
	CategoriesCount() int
}

// StartupLoader restores the last saved snapshot into the engine on startup
type StartupLoader struct {
	engine snapshotLoader
	logger logger.Logger
}

// NewStartupLoader creates a new startup loader
func NewStartupLoader(eng snapshotLoader, log logger.Logger) *StartupLoader {
	return &StartupLoader{
		engine: eng,
		logger: log,
	}
}

// Load restores the snapshot. A failure leaves the engine empty and is
// returned so the caller can decide whether to continue.
func (sl *StartupLoader) Load(ctx context.Context) error {
	sl.logger.Info("restoring bookmarks from storage")

	if err := sl.engine.LoadBookmarks(ctx); err != nil {
		return err
	}

	count := sl.engine.CategoriesCount()
	if count == 0 {
		sl.logger.Info("no saved bookmarks found")
		return nil
	}

	sl.logger.Info("restored bookmarks from storage",
		logger.Int("categories", count))

	return nil
}
