// Package bookmarks is the facade between callers and the bookmark engine.
// It turns engine indices into model objects and owns the few policies the
// engine does not: category naming, fallback placement and POI labels.
package bookmarks

import (
	"strconv"

	"github.com/MrSnakeDoc/mapmarks/internal/domain"
	"github.com/MrSnakeDoc/mapmarks/internal/engine"
	"github.com/MrSnakeDoc/mapmarks/internal/i18n"
	"github.com/MrSnakeDoc/mapmarks/internal/icons"
	"github.com/MrSnakeDoc/mapmarks/internal/logger"
)

// Manager is created once at startup and shared by reference.
//
// It holds no lock: callers must not run mutations concurrently. In
// particular the name probe in CreateCategory is not atomic with the insert.
type Manager struct {
	engine engine.Engine
	icons  *icons.Catalog
	labels *i18n.Localizer
	logger logger.Logger
}

func NewManager(eng engine.Engine, catalog *icons.Catalog, labels *i18n.Localizer, log logger.Logger) *Manager {
	return &Manager{
		engine: eng,
		icons:  catalog,
		labels: labels,
		logger: log,
	}
}

// ─────────────────────────────────────────────────────────────────
// Categories
// ─────────────────────────────────────────────────────────────────

func (m *Manager) CategoriesCount() int {
	return m.engine.CategoriesCount()
}

// CategoryByID returns nil when id is out of range.
func (m *Manager) CategoryByID(id int) *Category {
	if id < 0 || id >= m.engine.CategoriesCount() {
		return nil
	}
	return &Category{index: id, engine: m.engine}
}

// Categories returns a handle for every category, in order.
func (m *Manager) Categories() []*Category {
	n := m.engine.CategoriesCount()
	out := make([]*Category, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, &Category{index: i, engine: m.engine})
	}
	return out
}

// CreateCategory creates a category named after name, adding " 1", " 2", ...
// until the name is free, moves bm into it and returns its handle.
func (m *Manager) CreateCategory(bm *domain.Bookmark, name string) *Category {
	candidate := name
	for i := 1; m.engine.CategoryExistsByName(candidate); i++ {
		candidate = name + " " + strconv.Itoa(i)
	}

	idx := m.engine.CreateCategory(candidate)
	m.logger.Info("category created",
		logger.String("name", candidate),
		logger.Int("index", idx))

	if bm != nil {
		m.SetCategory(bm, idx)
	}
	return &Category{index: m.engine.CategoriesCount() - 1, engine: m.engine}
}

// DeleteCategory reports whether the engine removed the category.
func (m *Manager) DeleteCategory(index int) bool {
	ok := m.engine.DeleteCategory(index)
	if !ok {
		m.logger.Debug("engine rejected category delete", logger.Int("index", index))
	}
	return ok
}

// ─────────────────────────────────────────────────────────────────
// Bookmarks
// ─────────────────────────────────────────────────────────────────

// Bookmark resolves a bookmark by slot without validation. An unknown slot
// yields an unsaved bookmark at the origin carrying the requested indices.
func (m *Manager) Bookmark(cat, idx int) *domain.Bookmark {
	if bm := m.FindBookmark(cat, idx); bm != nil {
		return bm
	}
	return domain.NewUnsavedBookmark(domain.Point{}, cat, idx)
}

// FindBookmark returns nil when the engine has no such bookmark.
func (m *Manager) FindBookmark(cat, idx int) *domain.Bookmark {
	data, ok := m.engine.BookmarkData(cat, idx)
	if !ok {
		return nil
	}
	return domain.NewBookmark(cat, idx, data.Attrs, data.Icon)
}

// BookmarkAt resolves a map point to the bookmark under it. When there is
// none, a new unsaved bookmark is returned, placed at the end of the last
// category (category 0 when there are no categories yet).
func (m *Manager) BookmarkAt(p domain.Point) *domain.Bookmark {
	if h, ok := m.engine.FindBookmarkNear(p); ok {
		return m.Bookmark(h.Category, h.Bookmark)
	}

	cat, idx := 0, 0
	if n := m.engine.CategoriesCount(); n > 0 {
		cat = n - 1
		idx = m.engine.CategorySize(cat)
	}
	bm := domain.NewUnsavedBookmark(p, cat, idx)
	bm.SetIcon(m.icons.Default().Name)
	return bm
}

// PreviewBookmark builds a bookmark for display that is never persisted.
func (m *Manager) PreviewBookmark(p domain.Point, name string) *domain.Bookmark {
	bm := domain.NewPreviewBookmark(p, name)
	bm.SetIcon(m.icons.Default().Name)
	return bm
}

// AddBookmark stores a new bookmark in cat. It returns nil when the engine
// rejects the category.
func (m *Manager) AddBookmark(p domain.Point, cat int, name, icon string) *domain.Bookmark {
	attrs := domain.CreateMapObject(domain.EmptyFeatureID, domain.TypeBookmark, name, "", p.Lat, p.Lon).Attrs()
	idx := m.engine.AddBookmark(cat, engine.BookmarkData{Attrs: attrs, Icon: m.IconByName(icon).Name})
	if idx < 0 {
		return nil
	}
	return m.FindBookmark(cat, idx)
}

// SaveBookmark writes bm back to its slot. Unsaved bookmarks are appended to
// their category and re-indexed.
func (m *Manager) SaveBookmark(bm *domain.Bookmark) bool {
	data := engine.BookmarkData{Attrs: bm.Attrs(), Icon: bm.Icon()}
	if m.engine.UpdateBookmark(bm.CategoryIndex(), bm.BookmarkIndex(), data) {
		return true
	}
	idx := m.engine.AddBookmark(bm.CategoryIndex(), data)
	if idx < 0 {
		return false
	}
	bm.Reindex(bm.CategoryIndex(), idx)
	return true
}

// SetCategory moves bm to cat and updates its indices. A bookmark the engine
// does not hold yet is inserted into cat instead.
func (m *Manager) SetCategory(bm *domain.Bookmark, cat int) {
	if _, ok := m.engine.BookmarkData(bm.CategoryIndex(), bm.BookmarkIndex()); ok && !bm.IsPreview() {
		if idx := m.engine.MoveBookmark(bm.CategoryIndex(), bm.BookmarkIndex(), cat); idx >= 0 {
			bm.Reindex(cat, idx)
		}
		return
	}

	idx := m.engine.AddBookmark(cat, engine.BookmarkData{Attrs: bm.Attrs(), Icon: bm.Icon()})
	if idx >= 0 {
		bm.Reindex(cat, idx)
	}
}

func (m *Manager) DeleteBookmark(cat, idx int) {
	m.engine.DeleteBookmark(cat, idx)
}

func (m *Manager) ShowBookmarkOnMap(cat, idx int) {
	m.engine.ShowBookmark(cat, idx)
}

// ─────────────────────────────────────────────────────────────────
// POI helpers
// ─────────────────────────────────────────────────────────────────

// NameForPOI returns the POI name at p, else the place name, else the
// localized "dropped pin" label; always title-cased and never empty.
func (m *Manager) NameForPOI(p domain.Point) string {
	name := m.engine.POINameNear(p)
	if name == "" {
		name = m.engine.PlaceNameNear(p)
	}
	if name == "" {
		name = m.labels.DroppedPin()
	}
	return m.labels.TitleCase(name)
}

func (m *Manager) FindVisiblePOI(p domain.Point) bool {
	return m.engine.IsVisiblePOI(p)
}

func (m *Manager) BmkPositionForPOI(p domain.Point) domain.Point {
	return m.engine.BookmarkPositionForPOI(p)
}

// ─────────────────────────────────────────────────────────────────
// Icons
// ─────────────────────────────────────────────────────────────────

func (m *Manager) Icons() []domain.Icon {
	return m.icons.All()
}

// IconByName falls back to the default icon for unknown names.
func (m *Manager) IconByName(name string) domain.Icon {
	return m.icons.ByName(name)
}
