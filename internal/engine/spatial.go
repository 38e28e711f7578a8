package engine

import (
	"math"

	"github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"

	"github.com/MrSnakeDoc/mapmarks/internal/domain"
)

const (
	// DefaultHitRadius is how far (meters) a tap may land from a bookmark.
	DefaultHitRadius = 50.0
	// DefaultPlaceRadius bounds the locality lookup (meters).
	DefaultPlaceRadius = 5000.0
)

// projector maps WGS84 points to Web Mercator and measures ground distance.
type projector struct {
	toMercator func(a, b, c float64) (float64, float64, float64)
}

func newProjector() projector {
	epsg := wgs84.EPSG()
	return projector{toMercator: epsg.Transform(4326, 3857)}
}

// point fails for coordinates that do not project to finite values.
func (p projector) point(pt domain.Point) (geom.Point, bool) {
	x, y, _ := p.toMercator(pt.Lon, pt.Lat, 0)
	gp, err := geom.NewPoint(geom.Coordinates{XY: geom.XY{X: x, Y: y}})
	if err != nil {
		return geom.Point{}, false
	}
	return gp, true
}

// distance returns the approximate ground distance in meters. Mercator
// stretches lengths by 1/cos(lat), so the planar distance is scaled back at
// the mean latitude of both points.
func (p projector) distance(a, b domain.Point) float64 {
	ga, okA := p.point(a)
	gb, okB := p.point(b)
	if !okA || !okB {
		return math.Inf(1)
	}
	d, ok := geom.Distance(ga.AsGeometry(), gb.AsGeometry())
	if !ok {
		return math.Inf(1)
	}
	midLat := (a.Lat + b.Lat) / 2 * math.Pi / 180
	return d * math.Cos(midLat)
}

// nearest returns the index of the closest candidate within radius, or -1.
func (p projector) nearest(target domain.Point, radius float64, n int, at func(i int) (domain.Point, bool)) int {
	best, bestDist := -1, radius
	for i := 0; i < n; i++ {
		pt, ok := at(i)
		if !ok {
			continue
		}
		if d := p.distance(target, pt); d <= bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
