package importer

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/MrSnakeDoc/mapmarks/internal/domain"
	"github.com/MrSnakeDoc/mapmarks/internal/engine"
)

// Category is an import entry ready to be merged into the engine.
type Category struct {
	Name      string
	Bookmarks []engine.BookmarkData
}

// Result carries the mapped categories and a description of every entry
// that was dropped.
type Result struct {
	Categories []Category
	Skipped    []string
}

// Mapper validates file entries and converts them to engine values.
type Mapper struct {
	validate *validator.Validate
}

func NewMapper() *Mapper {
	return &Mapper{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// MapCategories converts f. Invalid entries are skipped and reported in
// Result.Skipped; an error is returned only when nothing usable is left.
func (m *Mapper) MapCategories(f File) (Result, error) {
	var res Result

	for ci, c := range f.Categories {
		if err := m.validate.Struct(c); err != nil {
			res.Skipped = append(res.Skipped, fmt.Sprintf("category #%d: %v", ci, err))
			continue
		}

		cat := Category{Name: c.Name}
		for bi, b := range c.Bookmarks {
			if err := m.validate.Struct(b); err != nil {
				res.Skipped = append(res.Skipped, fmt.Sprintf("%s bookmark #%d: %v", c.Name, bi, err))
				continue
			}
			cat.Bookmarks = append(cat.Bookmarks, bookmarkData(b))
		}
		res.Categories = append(res.Categories, cat)
	}

	if len(res.Categories) == 0 {
		return res, errors.New("no valid categories found in import file")
	}
	return res, nil
}

func bookmarkData(b BookmarkEntry) engine.BookmarkData {
	var meta domain.Metadata
	if b.Phone != "" {
		meta.Set(domain.MetaPhone, b.Phone)
	}
	if b.Website != "" {
		meta.Set(domain.MetaWebsite, b.Website)
	}

	attrs := domain.CreateMapObject(domain.EmptyFeatureID, domain.TypeBookmark, b.Name, b.Subtitle, b.Lat, b.Lon).Attrs()
	attrs.Address = b.Address
	attrs.Description = b.Description
	attrs.Metadata = meta
	attrs.RawTypes = b.Types

	return engine.BookmarkData{Attrs: attrs, Icon: b.Icon}
}

// MapPOIs converts a POI dataset. Invalid entries are dropped.
func (m *Mapper) MapPOIs(f POIFile) ([]engine.POI, error) {
	pois := make([]engine.POI, 0, len(f.POIs))
	var errs []error

	for i, p := range f.POIs {
		if err := m.validate.Struct(p); err != nil {
			errs = append(errs, fmt.Errorf("poi #%d: %w", i, err))
			continue
		}
		pois = append(pois, engine.POI{
			FeatureID: domain.FeatureID{MwmName: p.Mwm, MwmVersion: p.Version, FeatureIndex: p.Index},
			Name:      p.Name,
			Place:     p.Place,
			Types:     p.Types,
			Point:     domain.Point{Lat: p.Lat, Lon: p.Lon},
			Visible:   !p.Hidden,
		})
	}

	if len(pois) == 0 && len(errs) > 0 {
		return nil, fmt.Errorf("no valid pois found: %w", errors.Join(errs...))
	}
	return pois, nil
}
