package domain

// Bookmark is a user-saved map object.
// Its persistent identity is the (category, bookmark) index pair resolved by
// the engine, not its feature id.
type Bookmark struct {
	MapObject

	// ─────────────────────────────
	// Identity (engine handles)
	// ─────────────────────────────

	// categoryIndex is the owning category position, -1 for a preview.
	categoryIndex int

	// bookmarkIndex is the position inside the category, -1 for a preview.
	bookmarkIndex int

	// ─────────────────────────────
	// Presentation
	// ─────────────────────────────

	// icon is the catalog name of the marker.
	icon string
}

// NewBookmark wraps engine-resolved attributes. The type tag is forced to
// TypeBookmark.
func NewBookmark(categoryIndex, bookmarkIndex int, a Attrs, icon string) *Bookmark {
	a.Type = TypeBookmark
	return &Bookmark{
		MapObject:     MapObject{a: normalize(a)},
		categoryIndex: categoryIndex,
		bookmarkIndex: bookmarkIndex,
		icon:          icon,
	}
}

// NewUnsavedBookmark builds a bookmark for a raw coordinate that the engine
// does not know yet, pre-assigned to the given slot.
func NewUnsavedBookmark(p Point, categoryIndex, bookmarkIndex int) *Bookmark {
	base := CreateMapObject(EmptyFeatureID, TypeBookmark, "", "", p.Lat, p.Lon)
	return &Bookmark{
		MapObject:     *base,
		categoryIndex: categoryIndex,
		bookmarkIndex: bookmarkIndex,
	}
}

// NewPreviewBookmark builds a bookmark that is shown but never persisted.
func NewPreviewBookmark(p Point, name string) *Bookmark {
	base := CreateMapObject(EmptyFeatureID, TypeBookmark, name, "", p.Lat, p.Lon)
	return &Bookmark{
		MapObject:     *base,
		categoryIndex: -1,
		bookmarkIndex: -1,
	}
}

func (b *Bookmark) Base() *MapObject { return &b.MapObject }
func (b *Bookmark) variant() variant { return variantBookmark }

func (b *Bookmark) CategoryIndex() int  { return b.categoryIndex }
func (b *Bookmark) BookmarkIndex() int  { return b.bookmarkIndex }
func (b *Bookmark) Icon() string        { return b.icon }
func (b *Bookmark) SetIcon(name string) { b.icon = name }

// IsPreview reports whether the bookmark has no engine slot.
func (b *Bookmark) IsPreview() bool {
	return b.categoryIndex < 0 || b.bookmarkIndex < 0
}

// Reindex records the slot the engine assigned after a move or insert.
func (b *Bookmark) Reindex(categoryIndex, bookmarkIndex int) {
	b.categoryIndex = categoryIndex
	b.bookmarkIndex = bookmarkIndex
}

func (b *Bookmark) SameAs(other Object) bool {
	if b == nil {
		return false
	}
	return sameAs(variantBookmark, &b.MapObject, other)
}

func (b *Bookmark) Equal(other Object) bool {
	if b == nil {
		return false
	}
	return equalIn(variantBookmark, &b.MapObject, other)
}
