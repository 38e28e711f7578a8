package engine

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/MrSnakeDoc/mapmarks/internal/domain"
)

type category struct {
	id        string
	name      string
	bookmarks []BookmarkData
}

// Options configures a Memory engine.
type Options struct {
	HitRadius   float64 // meters, DefaultHitRadius when zero
	PlaceRadius float64 // meters, DefaultPlaceRadius when zero
	POIs        []POI
	Persisters  []Persister
}

// Memory is the in-process engine. Categories keep their insertion order;
// every mutation bumps a version so Flush knows when a save is due.
type Memory struct {
	mu          sync.RWMutex
	categories  []*category
	pois        []POI
	proj        projector
	hitRadius   float64
	placeRadius float64
	persisters  []Persister

	version      uint64    // bumped on every mutation
	savedVersion uint64    // version last written by Flush
	lastShown    *Handle   // last bookmark passed to ShowBookmark
	lastLoad     time.Time // timestamp of last LoadBookmarks that found data
	lastFlush    time.Time // timestamp of last successful Flush
}

// NewMemory creates an empty engine.
func NewMemory(opts Options) *Memory {
	if opts.HitRadius <= 0 {
		opts.HitRadius = DefaultHitRadius
	}
	if opts.PlaceRadius <= 0 {
		opts.PlaceRadius = DefaultPlaceRadius
	}
	return &Memory{
		pois:        append([]POI(nil), opts.POIs...),
		proj:        newProjector(),
		hitRadius:   opts.HitRadius,
		placeRadius: opts.PlaceRadius,
		persisters:  opts.Persisters,
	}
}

var _ Engine = (*Memory)(nil)

func (m *Memory) touch() { m.version++ }

func (m *Memory) category(cat int) (*category, bool) {
	if cat < 0 || cat >= len(m.categories) {
		return nil, false
	}
	return m.categories[cat], true
}

// ─────────────────────────────────────────────────────────────────
// Persistence
// ─────────────────────────────────────────────────────────────────

// LoadBookmarks replaces the state with the first non-empty snapshot returned
// by the configured persisters, in order. Persisters that fail are skipped;
// the error is returned only when none produced data.
func (m *Memory) LoadBookmarks(ctx context.Context) error {
	var errs error
	for _, p := range m.persisters {
		cats, err := p.LoadCategories(ctx)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if len(cats) == 0 {
			continue
		}
		m.Replace(cats)

		m.mu.Lock()
		m.savedVersion = m.version
		m.lastLoad = time.Now()
		m.mu.Unlock()
		return nil
	}
	return errs
}

// Replace swaps the whole state for cats.
func (m *Memory) Replace(cats []CategoryData) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.categories = make([]*category, 0, len(cats))
	for _, c := range cats {
		id := c.ID
		if id == "" {
			id = uuid.NewString()
		}
		m.categories = append(m.categories, &category{
			id:        id,
			name:      c.Name,
			bookmarks: cloneBookmarks(c.Bookmarks),
		})
	}
	m.lastShown = nil
	m.touch()
}

// Flush saves a snapshot to every persister when the state changed since the
// last successful flush.
func (m *Memory) Flush(ctx context.Context) error {
	m.mu.RLock()
	if m.version == m.savedVersion {
		m.mu.RUnlock()
		return nil
	}
	version := m.version
	snapshot := m.snapshotLocked()
	m.mu.RUnlock()

	var errs error
	for _, p := range m.persisters {
		errs = multierr.Append(errs, p.SaveCategories(ctx, snapshot))
	}
	if errs != nil {
		return errs
	}

	m.mu.Lock()
	if version > m.savedVersion {
		m.savedVersion = version
	}
	m.lastFlush = time.Now()
	m.mu.Unlock()
	return nil
}

// Dirty reports unsaved changes.
func (m *Memory) Dirty() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.version != m.savedVersion
}

// Categories returns a deep copy of the state.
func (m *Memory) Categories() []CategoryData {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.snapshotLocked()
}

func (m *Memory) snapshotLocked() []CategoryData {
	out := make([]CategoryData, 0, len(m.categories))
	for _, c := range m.categories {
		out = append(out, CategoryData{
			ID:        c.id,
			Name:      c.name,
			Bookmarks: cloneBookmarks(c.bookmarks),
		})
	}
	return out
}

// GetLastLoad returns the timestamp of the last successful LoadBookmarks.
func (m *Memory) GetLastLoad() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.lastLoad
}

// GetLastFlush returns the timestamp of the last successful Flush.
func (m *Memory) GetLastFlush() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.lastFlush
}

// ─────────────────────────────────────────────────────────────────
// Categories
// ─────────────────────────────────────────────────────────────────

func (m *Memory) CategoriesCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.categories)
}

func (m *Memory) CategoryExistsByName(name string) bool {
	_, ok := m.CategoryIndexByName(name)
	return ok
}

// CategoryIndexByName returns the first category called name.
func (m *Memory) CategoryIndexByName(name string) (int, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i, c := range m.categories {
		if c.name == name {
			return i, true
		}
	}
	return -1, false
}

func (m *Memory) CategoryName(cat int) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if c, ok := m.category(cat); ok {
		return c.name
	}
	return ""
}

func (m *Memory) CategorySize(cat int) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if c, ok := m.category(cat); ok {
		return len(c.bookmarks)
	}
	return 0
}

func (m *Memory) CategoryID(cat int) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if c, ok := m.category(cat); ok {
		return c.id
	}
	return ""
}

// CreateCategory appends a category and returns its index.
func (m *Memory) CreateCategory(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.categories = append(m.categories, &category{id: uuid.NewString(), name: name})
	m.touch()
	return len(m.categories) - 1
}

func (m *Memory) DeleteCategory(cat int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.category(cat); !ok {
		return false
	}
	m.categories = append(m.categories[:cat], m.categories[cat+1:]...)
	if h := m.lastShown; h != nil {
		switch {
		case h.Category == cat:
			m.lastShown = nil
		case h.Category > cat:
			h.Category--
		}
	}
	m.touch()
	return true
}

// ─────────────────────────────────────────────────────────────────
// Bookmarks
// ─────────────────────────────────────────────────────────────────

func (m *Memory) BookmarkData(cat, idx int) (BookmarkData, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.category(cat)
	if !ok || idx < 0 || idx >= len(c.bookmarks) {
		return BookmarkData{}, false
	}
	return cloneBookmark(c.bookmarks[idx]), true
}

// AddBookmark appends data to cat and returns its index, or -1 when cat does
// not exist. An untitled bookmark placed on a visible POI takes the POI's
// name, feature id and types.
func (m *Memory) AddBookmark(cat int, data BookmarkData) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.category(cat)
	if !ok {
		return -1
	}

	data = cloneBookmark(data)
	data.Attrs.Type = domain.TypeBookmark
	if data.Attrs.Title == "" {
		pt := domain.Point{Lat: data.Attrs.Lat, Lon: data.Attrs.Lon}
		if poi, found := m.nearestPOI(pt, m.hitRadius, true); found {
			data.Attrs.Title = FormatBookmarkName(poi.Name, poi.BestType())
			if data.Attrs.FeatureID.IsEmpty() {
				data.Attrs.FeatureID = poi.FeatureID
			}
			if len(data.Attrs.RawTypes) == 0 {
				data.Attrs.RawTypes = append([]string(nil), poi.Types...)
			}
		}
	}

	c.bookmarks = append(c.bookmarks, data)
	m.touch()
	return len(c.bookmarks) - 1
}

func (m *Memory) UpdateBookmark(cat, idx int, data BookmarkData) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.category(cat)
	if !ok || idx < 0 || idx >= len(c.bookmarks) {
		return false
	}
	data = cloneBookmark(data)
	data.Attrs.Type = domain.TypeBookmark
	c.bookmarks[idx] = data
	m.touch()
	return true
}

// MoveBookmark moves a bookmark to the end of newCat and returns its new
// index, or -1 when either side does not exist.
func (m *Memory) MoveBookmark(cat, idx, newCat int) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	from, ok := m.category(cat)
	if !ok || idx < 0 || idx >= len(from.bookmarks) {
		return -1
	}
	to, ok := m.category(newCat)
	if !ok {
		return -1
	}
	if cat == newCat {
		return idx
	}

	bm := from.bookmarks[idx]
	from.bookmarks = append(from.bookmarks[:idx], from.bookmarks[idx+1:]...)
	to.bookmarks = append(to.bookmarks, bm)
	newIdx := len(to.bookmarks) - 1
	if m.lastShown != nil && *m.lastShown == (Handle{Category: cat, Bookmark: idx}) {
		m.lastShown = &Handle{Category: newCat, Bookmark: newIdx}
	} else {
		m.shiftShown(cat, idx)
	}
	m.touch()
	return newIdx
}

// DeleteBookmark is a no-op for a missing category or index.
func (m *Memory) DeleteBookmark(cat, idx int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.category(cat)
	if !ok || idx < 0 || idx >= len(c.bookmarks) {
		return
	}
	c.bookmarks = append(c.bookmarks[:idx], c.bookmarks[idx+1:]...)
	m.shiftShown(cat, idx)
	m.touch()
}

// shiftShown keeps lastShown on the same bookmark after bookmark idx left cat.
func (m *Memory) shiftShown(cat, idx int) {
	h := m.lastShown
	if h == nil || h.Category != cat {
		return
	}
	switch {
	case h.Bookmark == idx:
		m.lastShown = nil
	case h.Bookmark > idx:
		h.Bookmark--
	}
}

// ShowBookmark records the bookmark as last shown. The handle lives in memory
// only and does not mark the state dirty.
func (m *Memory) ShowBookmark(cat, idx int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.category(cat)
	if !ok || idx < 0 || idx >= len(c.bookmarks) {
		return
	}
	m.lastShown = &Handle{Category: cat, Bookmark: idx}
}

// LastShown returns the bookmark last passed to ShowBookmark.
func (m *Memory) LastShown() (Handle, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.lastShown == nil {
		return Handle{}, false
	}
	return *m.lastShown, true
}

func (m *Memory) FindBookmarkNear(p domain.Point) (Handle, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	best, bestDist := Handle{}, m.hitRadius
	found := false
	for ci, c := range m.categories {
		for bi, bm := range c.bookmarks {
			d := m.proj.distance(p, domain.Point{Lat: bm.Attrs.Lat, Lon: bm.Attrs.Lon})
			if d <= bestDist {
				best, bestDist, found = Handle{Category: ci, Bookmark: bi}, d, true
			}
		}
	}
	return best, found
}

func cloneBookmarks(in []BookmarkData) []BookmarkData {
	if len(in) == 0 {
		return nil
	}
	out := make([]BookmarkData, len(in))
	for i, b := range in {
		out[i] = cloneBookmark(b)
	}
	return out
}

func cloneBookmark(b BookmarkData) BookmarkData {
	b.Attrs = domain.NewMapObject(b.Attrs).Attrs()
	return b
}
