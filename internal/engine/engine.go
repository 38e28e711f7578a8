// Package engine is the storage and spatial-lookup boundary behind the
// bookmark facade. Categories and bookmarks are addressed by integer index;
// map positions by WGS84 point.
package engine

import (
	"context"

	"github.com/MrSnakeDoc/mapmarks/internal/domain"
)

// Handle addresses one bookmark slot.
type Handle struct {
	Category int `json:"category"`
	Bookmark int `json:"bookmark"`
}

// BookmarkData is what the engine stores for one bookmark.
type BookmarkData struct {
	Attrs domain.Attrs
	Icon  string
}

// CategoryData is a full snapshot of one category.
type CategoryData struct {
	ID        string
	Name      string
	Bookmarks []BookmarkData
}

// Engine is the capability contract consumed by the bookmark facade.
// Index arguments are not validated by callers; out-of-range behavior is
// defined by the implementation.
type Engine interface {
	LoadBookmarks(ctx context.Context) error

	CategoriesCount() int
	CategoryExistsByName(name string) bool
	CategoryName(cat int) string
	CategorySize(cat int) int
	CategoryID(cat int) string
	CreateCategory(name string) int
	DeleteCategory(cat int) bool

	BookmarkData(cat, idx int) (BookmarkData, bool)
	AddBookmark(cat int, data BookmarkData) int
	UpdateBookmark(cat, idx int, data BookmarkData) bool
	MoveBookmark(cat, idx, newCat int) int
	DeleteBookmark(cat, idx int)
	ShowBookmark(cat, idx int)

	// FindBookmarkNear reports false when no bookmark is close enough.
	FindBookmarkNear(p domain.Point) (Handle, bool)

	POINameNear(p domain.Point) string
	PlaceNameNear(p domain.Point) string
	BookmarkPositionForPOI(p domain.Point) domain.Point
	IsVisiblePOI(p domain.Point) bool
}

// Persister stores and restores full category snapshots.
type Persister interface {
	Name() string
	SaveCategories(ctx context.Context, cats []CategoryData) error
	// LoadCategories returns an empty slice when nothing was saved yet.
	LoadCategories(ctx context.Context) ([]CategoryData, error)
}

// FormatBookmarkName renders the engine-side label of a bookmark created on
// a POI: "name (type)", or just the type when the POI is unnamed.
func FormatBookmarkName(name, bestType string) string {
	switch {
	case name == "":
		return bestType
	case bestType == "":
		return name
	default:
		return name + " (" + bestType + ")"
	}
}
