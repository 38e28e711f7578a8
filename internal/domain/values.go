package domain

import (
	"slices"
)

// MapObjectType is the type tag of a map object. The numeric values are part
// of the record wire format and must not be reordered.
type MapObjectType int

const (
	TypePOI MapObjectType = iota
	TypeAPIPoint
	TypeBookmark
	TypeMyPosition
	TypeSearch
)

func (t MapObjectType) Valid() bool {
	return t >= TypePOI && t <= TypeSearch
}

func (t MapObjectType) String() string {
	switch t {
	case TypePOI:
		return "poi"
	case TypeAPIPoint:
		return "api_point"
	case TypeBookmark:
		return "bookmark"
	case TypeMyPosition:
		return "my_position"
	case TypeSearch:
		return "search"
	default:
		return "unknown"
	}
}

// OpeningMode controls how much detail the UI reveals for an object.
type OpeningMode int

const (
	OpeningModePreview OpeningMode = iota
	OpeningModePreviewPlus
	OpeningModeDetails
	OpeningModeFull
)

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ─────────────────────────────
// Metadata
// ─────────────────────────────

// MetadataType enumerates the POI attributes kept in a Metadata bag.
type MetadataType int

const (
	MetaOpeningHours MetadataType = iota + 1
	MetaPhone
	MetaFax
	MetaWebsite
	MetaEmail
	MetaCuisine
	MetaStars
	MetaOperator
	MetaElevation
	MetaInternet
	MetaWikipedia
	MetaFlats
	MetaBuildingLevels
	MetaLevel
)

var metadataNames = map[MetadataType]string{
	MetaOpeningHours:   "opening_hours",
	MetaPhone:          "phone",
	MetaFax:            "fax",
	MetaWebsite:        "website",
	MetaEmail:          "email",
	MetaCuisine:        "cuisine",
	MetaStars:          "stars",
	MetaOperator:       "operator",
	MetaElevation:      "elevation",
	MetaInternet:       "internet",
	MetaWikipedia:      "wikipedia",
	MetaFlats:          "flats",
	MetaBuildingLevels: "building_levels",
	MetaLevel:          "level",
}

func (t MetadataType) String() string {
	if name, ok := metadataNames[t]; ok {
		return name
	}
	return "unknown"
}

// Metadata is an enumerated key -> string bag. The zero value is an empty bag.
type Metadata map[MetadataType]string

// Get returns the value for key, or "" when absent.
func (m Metadata) Get(key MetadataType) string {
	return m[key]
}

func (m *Metadata) Set(key MetadataType, value string) {
	if *m == nil {
		*m = make(Metadata)
	}
	(*m)[key] = value
}

func (m Metadata) IsEmpty() bool {
	return len(m) == 0
}

// Keys returns the keys in ascending order.
func (m Metadata) Keys() []MetadataType {
	keys := make([]MetadataType, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ─────────────────────────────
// Attached value objects
// ─────────────────────────────

type PopularityLevel int

const (
	PopularityNotPopular PopularityLevel = iota
	PopularityPopular
)

type Popularity struct {
	Level PopularityLevel `json:"level"`
}

func DefaultPopularity() Popularity {
	return Popularity{Level: PopularityNotPopular}
}

type RoadWarningMarkType int

const (
	RoadWarningToll RoadWarningMarkType = iota
	RoadWarningFerry
	RoadWarningDirty
	RoadWarningUnknown
)

// TaxiType is a ride provider reachable from the object.
type TaxiType int

const (
	TaxiYandex TaxiType = iota
	TaxiUber
	TaxiMaxim
	TaxiRutaxi
	TaxiFreenow
	TaxiYango
)

type Rating struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type HotelType int

const (
	HotelTypeHotel HotelType = iota
	HotelTypeApartment
	HotelTypeCampSite
	HotelTypeChalet
	HotelTypeGuestHouse
	HotelTypeHostel
	HotelTypeMotel
	HotelTypeResort
)

type PriceRate int

const (
	PriceRateUndefined PriceRate = iota
	PriceRateCheap
	PriceRateMedium
	PriceRateExpensive
)

type RouteMarkType int

const (
	RouteMarkStart RouteMarkType = iota
	RouteMarkIntermediate
	RouteMarkFinish
)

type RoutePointInfo struct {
	MarkType          RouteMarkType `json:"mark_type"`
	IntermediateIndex int           `json:"intermediate_index"`
}
