package handlers

import (
	"github.com/MrSnakeDoc/mapmarks/internal/bookmarks"
	"github.com/MrSnakeDoc/mapmarks/internal/domain"
)

type categoryResponse struct {
	Index int    `json:"index"`
	ID    string `json:"id"`
	Name  string `json:"name"`
	Size  int    `json:"size"`
}

func newCategoryResponse(c *bookmarks.Category) categoryResponse {
	return categoryResponse{Index: c.Index(), ID: c.ID(), Name: c.Name(), Size: c.Size()}
}

type featureIDResponse struct {
	MwmName      string `json:"mwm_name"`
	MwmVersion   int64  `json:"mwm_version"`
	FeatureIndex int    `json:"feature_index"`
}

// objectResponse renders a map object. Bookmark-only fields are set when the
// object is a bookmark.
type objectResponse struct {
	Kind           string             `json:"kind"`
	Type           string             `json:"type"`
	FeatureID      *featureIDResponse `json:"feature_id,omitempty"`
	Title          string             `json:"title"`
	SecondaryTitle string             `json:"secondary_title,omitempty"`
	Subtitle       string             `json:"subtitle,omitempty"`
	Address        string             `json:"address,omitempty"`
	Description    string             `json:"description,omitempty"`
	Lat            float64            `json:"lat"`
	Lon            float64            `json:"lon"`
	Metadata       map[string]string  `json:"metadata,omitempty"`
	APIID          string             `json:"api_id,omitempty"`
	BookingURL     string             `json:"booking_url,omitempty"`
	Ratings        []domain.Rating    `json:"ratings,omitempty"`
	TopChoice      bool               `json:"top_choice,omitempty"`
	RawTypes       []string           `json:"raw_types"`

	Category *int   `json:"category,omitempty"`
	Index    *int   `json:"index,omitempty"`
	Icon     string `json:"icon,omitempty"`
	Preview  bool   `json:"preview,omitempty"`
}

func newObjectResponse(obj domain.Object) objectResponse {
	m := obj.Base()
	out := objectResponse{
		Kind:           "map_object",
		Type:           m.Type().String(),
		Title:          m.Title(),
		SecondaryTitle: m.SecondaryTitle(),
		Subtitle:       m.Subtitle(),
		Address:        m.Address(),
		Description:    m.Description(),
		Lat:            m.Lat(),
		Lon:            m.Lon(),
		APIID:          m.APIID(),
		BookingURL:     m.BookingURL(),
		Ratings:        m.Ratings(),
		TopChoice:      m.IsTopChoice(),
		RawTypes:       m.RawTypes(),
	}

	if fid := m.FeatureID(); !fid.IsEmpty() {
		out.FeatureID = &featureIDResponse{MwmName: fid.MwmName, MwmVersion: fid.MwmVersion, FeatureIndex: fid.FeatureIndex}
	}

	attrs := m.Attrs()
	if !attrs.Metadata.IsEmpty() {
		out.Metadata = make(map[string]string, len(attrs.Metadata))
		for _, k := range attrs.Metadata.Keys() {
			out.Metadata[k.String()] = attrs.Metadata.Get(k)
		}
	}

	if bm, ok := obj.(*domain.Bookmark); ok {
		cat, idx := bm.CategoryIndex(), bm.BookmarkIndex()
		out.Kind = "bookmark"
		out.Icon = bm.Icon()
		out.Preview = bm.IsPreview()
		if !out.Preview {
			out.Category = &cat
			out.Index = &idx
		}
	}
	return out
}
