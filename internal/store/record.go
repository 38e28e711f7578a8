// Package store holds what the persistence backends share: bookmarks are
// written as codec records so every backend stores the same bytes.
package store

import (
	"fmt"

	"github.com/MrSnakeDoc/mapmarks/internal/codec"
	"github.com/MrSnakeDoc/mapmarks/internal/domain"
	"github.com/MrSnakeDoc/mapmarks/internal/engine"
)

// EncodeBookmark turns one stored bookmark into a codec record.
func EncodeBookmark(cat, idx int, b engine.BookmarkData) ([]byte, error) {
	data, err := codec.Encode(domain.NewBookmark(cat, idx, b.Attrs, b.Icon))
	if err != nil {
		return nil, fmt.Errorf("failed to encode bookmark %d/%d: %w", cat, idx, err)
	}
	return data, nil
}

// DecodeBookmark reads a record back. Plain map object records are accepted
// and come back without an icon.
func DecodeBookmark(data []byte) (engine.BookmarkData, error) {
	obj, err := codec.Decode(data)
	if err != nil {
		return engine.BookmarkData{}, fmt.Errorf("failed to decode bookmark: %w", err)
	}
	out := engine.BookmarkData{Attrs: obj.Base().Attrs()}
	if bm, ok := obj.(*domain.Bookmark); ok {
		out.Icon = bm.Icon()
	}
	out.Attrs.Type = domain.TypeBookmark
	return out, nil
}
