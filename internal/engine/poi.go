package engine

import (
	"github.com/MrSnakeDoc/mapmarks/internal/domain"
)

// POI is one feature of the lookup dataset.
type POI struct {
	FeatureID domain.FeatureID
	Name      string
	Place     string   // locality the feature belongs to
	Types     []string // classification, most specific first
	Point     domain.Point
	Visible   bool
}

// BestType is the most specific classification, or "".
func (p POI) BestType() string {
	if len(p.Types) == 0 {
		return ""
	}
	return p.Types[0]
}

func (m *Memory) nearestPOI(p domain.Point, radius float64, visibleOnly bool) (POI, bool) {
	i := m.proj.nearest(p, radius, len(m.pois), func(i int) (domain.Point, bool) {
		if visibleOnly && !m.pois[i].Visible {
			return domain.Point{}, false
		}
		return m.pois[i].Point, true
	})
	if i < 0 {
		return POI{}, false
	}
	return m.pois[i], true
}

// SetPOIs replaces the lookup dataset.
func (m *Memory) SetPOIs(pois []POI) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pois = append([]POI(nil), pois...)
}

func (m *Memory) POICount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.pois)
}

// POINameNear names the visible POI at p the way a new bookmark on it would be
// titled, or returns "" when no visible POI is in reach.
func (m *Memory) POINameNear(p domain.Point) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if poi, ok := m.nearestPOI(p, m.hitRadius, true); ok {
		return FormatBookmarkName(poi.Name, poi.BestType())
	}
	return ""
}

func (m *Memory) PlaceNameNear(p domain.Point) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// the nearest feature may be unnamed; any feature carrying a place will do
	i := m.proj.nearest(p, m.placeRadius, len(m.pois), func(i int) (domain.Point, bool) {
		return m.pois[i].Point, m.pois[i].Place != ""
	})
	if i < 0 {
		return ""
	}
	return m.pois[i].Place
}

// BookmarkPositionForPOI snaps p to the nearest visible POI, or returns p.
func (m *Memory) BookmarkPositionForPOI(p domain.Point) domain.Point {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if poi, ok := m.nearestPOI(p, m.hitRadius, true); ok {
		return poi.Point
	}
	return p
}

func (m *Memory) IsVisiblePOI(p domain.Point) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.nearestPOI(p, m.hitRadius, true)
	return ok
}
