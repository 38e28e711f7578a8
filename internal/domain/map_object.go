package domain

import (
	"math"
	"slices"
)

type variant uint8

const (
	variantPlain variant = iota + 1
	variantBookmark
)

// Object is the closed family of map objects: *MapObject and *Bookmark.
type Object interface {
	// Base returns the shared map object fields.
	Base() *MapObject
	SameAs(other Object) bool
	Equal(other Object) bool

	variant() variant
}

// Attrs carries every field of a map object. It is the construction input
// for NewMapObject and NewBookmark and the snapshot returned by Attrs().
type Attrs struct {
	FeatureID      FeatureID
	Type           MapObjectType
	Title          string
	SecondaryTitle string
	Subtitle       string
	Address        string
	Lat            float64
	Lon            float64
	Metadata       Metadata
	APIID          string
	TaxiTypes      []TaxiType
	BookingURL     string
	RoutePoint     *RoutePointInfo
	OpeningMode    OpeningMode
	ShouldShowUGC  bool
	CanBeRated     bool
	CanBeReviewed  bool
	Ratings        []Rating
	HotelType      *HotelType
	PriceRate      PriceRate
	Popularity     Popularity
	Description    string
	RoadWarning    RoadWarningMarkType
	TopChoice      bool
	RawTypes       []string
}

// MapObject is any point shown on the map.
//
// Fields are read through accessors. Only title, lat, lon, subtitle and
// description may change after construction, through their setters.
type MapObject struct {
	a Attrs
}

// NewMapObject builds a map object from a full attribute set.
// Collections are copied; empty collections are stored as nil.
func NewMapObject(a Attrs) *MapObject {
	return &MapObject{a: normalize(a)}
}

// CreateMapObject builds a minimal map object with every optional field
// defaulted. It never fails.
func CreateMapObject(id FeatureID, typ MapObjectType, title, subtitle string, lat, lon float64) *MapObject {
	return NewMapObject(Attrs{
		FeatureID:   id,
		Type:        typ,
		Title:       title,
		Subtitle:    subtitle,
		Lat:         lat,
		Lon:         lon,
		OpeningMode: OpeningModePreview,
		PriceRate:   PriceRateUndefined,
		Popularity:  DefaultPopularity(),
		RoadWarning: RoadWarningUnknown,
	})
}

func normalize(a Attrs) Attrs {
	a.Metadata = a.Metadata.Clone()
	if len(a.Metadata) == 0 {
		a.Metadata = nil
	}
	a.TaxiTypes = cloneOrNil(a.TaxiTypes)
	a.Ratings = cloneOrNil(a.Ratings)
	a.RawTypes = cloneOrNil(a.RawTypes)
	if a.RoutePoint != nil {
		rp := *a.RoutePoint
		a.RoutePoint = &rp
	}
	if a.HotelType != nil {
		ht := *a.HotelType
		a.HotelType = &ht
	}
	return a
}

func cloneOrNil[S ~[]E, E any](s S) S {
	if len(s) == 0 {
		return nil
	}
	return slices.Clone(s)
}

func (m *MapObject) Base() *MapObject { return m }
func (m *MapObject) variant() variant { return variantPlain }

// Attrs returns a copy of every field.
func (m *MapObject) Attrs() Attrs { return normalize(m.a) }

// ─────────────────────────────
// Accessors
// ─────────────────────────────

func (m *MapObject) FeatureID() FeatureID                     { return m.a.FeatureID }
func (m *MapObject) Type() MapObjectType                      { return m.a.Type }
func (m *MapObject) Title() string                            { return m.a.Title }
func (m *MapObject) SecondaryTitle() string                   { return m.a.SecondaryTitle }
func (m *MapObject) Subtitle() string                         { return m.a.Subtitle }
func (m *MapObject) Address() string                          { return m.a.Address }
func (m *MapObject) Lat() float64                             { return m.a.Lat }
func (m *MapObject) Lon() float64                             { return m.a.Lon }
func (m *MapObject) Point() Point                             { return Point{Lat: m.a.Lat, Lon: m.a.Lon} }
func (m *MapObject) APIID() string                            { return m.a.APIID }
func (m *MapObject) BookingURL() string                       { return m.a.BookingURL }
func (m *MapObject) OpeningMode() OpeningMode                 { return m.a.OpeningMode }
func (m *MapObject) ShouldShowUGC() bool                      { return m.a.ShouldShowUGC }
func (m *MapObject) CanBeRated() bool                         { return m.a.CanBeRated }
func (m *MapObject) CanBeReviewed() bool                      { return m.a.CanBeReviewed }
func (m *MapObject) PriceRate() PriceRate                     { return m.a.PriceRate }
func (m *MapObject) Popularity() Popularity                   { return m.a.Popularity }
func (m *MapObject) Description() string                      { return m.a.Description }
func (m *MapObject) RoadWarningMarkType() RoadWarningMarkType { return m.a.RoadWarning }
func (m *MapObject) IsTopChoice() bool                        { return m.a.TopChoice }

// TaxiTypes returns nil when the object has no reachable taxi providers.
func (m *MapObject) TaxiTypes() []TaxiType { return slices.Clone(m.a.TaxiTypes) }

// Ratings returns nil when the object carries no ratings.
func (m *MapObject) Ratings() []Rating { return slices.Clone(m.a.Ratings) }

// RawTypes never returns nil.
func (m *MapObject) RawTypes() []string {
	if len(m.a.RawTypes) == 0 {
		return []string{}
	}
	return slices.Clone(m.a.RawTypes)
}

func (m *MapObject) RoutePointInfo() *RoutePointInfo {
	if m.a.RoutePoint == nil {
		return nil
	}
	rp := *m.a.RoutePoint
	return &rp
}

func (m *MapObject) HotelType() *HotelType {
	if m.a.HotelType == nil {
		return nil
	}
	ht := *m.a.HotelType
	return &ht
}

// Metadata returns the value for key, or "" when absent.
func (m *MapObject) Metadata(key MetadataType) string { return m.a.Metadata.Get(key) }

func (m *MapObject) HasPhoneNumber() bool { return m.a.Metadata.Get(MetaPhone) != "" }
func (m *MapObject) HasMetadata() bool    { return !m.a.Metadata.IsEmpty() }

// ─────────────────────────────
// Setters
// ─────────────────────────────

func (m *MapObject) SetTitle(title string)       { m.a.Title = title }
func (m *MapObject) SetLat(lat float64)          { m.a.Lat = lat }
func (m *MapObject) SetLon(lon float64)          { m.a.Lon = lon }
func (m *MapObject) SetSubtitle(subtitle string) { m.a.Subtitle = subtitle }
func (m *MapObject) SetDescription(desc string)  { m.a.Description = desc }

// ─────────────────────────────
// Identity
// ─────────────────────────────

// SameAs reports whether other denotes the same pin on the map: same concrete
// variant and either equal non-empty feature ids or bit-identical coordinates.
func (m *MapObject) SameAs(other Object) bool {
	if m == nil {
		return false
	}
	return sameAs(variantPlain, m, other)
}

// Equal compares feature ids only. It is narrower than SameAs and must not be
// used to decide whether two objects are the same pin.
func (m *MapObject) Equal(other Object) bool {
	if m == nil {
		return false
	}
	return equalIn(variantPlain, m, other)
}

// HashKey is the key consistent with Equal.
func (m *MapObject) HashKey() FeatureID { return m.a.FeatureID }

func sameAs(v variant, m *MapObject, other Object) bool {
	if isNil(other) || other.variant() != v {
		return false
	}
	o := other.Base()
	if !m.a.FeatureID.IsEmpty() && !o.a.FeatureID.IsEmpty() {
		return m.a.FeatureID == o.a.FeatureID
	}
	return math.Float64bits(m.a.Lat) == math.Float64bits(o.a.Lat) &&
		math.Float64bits(m.a.Lon) == math.Float64bits(o.a.Lon)
}

func equalIn(v variant, m *MapObject, other Object) bool {
	if isNil(other) || other.variant() != v {
		return false
	}
	return m.a.FeatureID == other.Base().a.FeatureID
}

func isNil(o Object) bool {
	switch v := o.(type) {
	case nil:
		return true
	case *MapObject:
		return v == nil
	case *Bookmark:
		return v == nil
	default:
		return false
	}
}

// Same is the nil-safe form of SameAs: two nils are the same, one nil is not.
func Same(a, b Object) bool {
	aNil, bNil := isNil(a), isNil(b)
	if aNil || bNil {
		return aNil && bNil
	}
	return a.SameAs(b)
}

// IsOfType reports whether obj is non-nil and tagged typ.
func IsOfType(typ MapObjectType, obj Object) bool {
	return !isNil(obj) && obj.Base().a.Type == typ
}

// Dedup drops objects that are Same as an earlier element, keeping order.
func Dedup(objs []Object) []Object {
	out := make([]Object, 0, len(objs))
	for _, o := range objs {
		if slices.ContainsFunc(out, func(seen Object) bool { return Same(seen, o) }) {
			continue
		}
		out = append(out, o)
	}
	return out
}
