package geo

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"github.com/rendis/rentscout/internal/model"
)

// LoadArea reads a GeoJSON file and merges every Polygon/MultiPolygon it
// contains into one MultiPolygon. Accepts a FeatureCollection, a single
// Feature or a bare geometry.
func LoadArea(path string) (orb.MultiPolygon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading area file: %w", err)
	}
	return ParseArea(data)
}

func ParseArea(data []byte) (orb.MultiPolygon, error) {
	var geoms []orb.Geometry
	if fc, err := geojson.UnmarshalFeatureCollection(data); err == nil && len(fc.Features) > 0 {
		for _, f := range fc.Features {
			geoms = append(geoms, f.Geometry)
		}
	} else if f, err := geojson.UnmarshalFeature(data); err == nil && f.Geometry != nil {
		geoms = append(geoms, f.Geometry)
	} else if g, err := geojson.UnmarshalGeometry(data); err == nil {
		geoms = append(geoms, g.Geometry())
	} else {
		return nil, fmt.Errorf("parsing geojson area: %w", err)
	}

	var area orb.MultiPolygon
	for _, g := range geoms {
		switch g := g.(type) {
		case orb.Polygon:
			area = append(area, g)
		case orb.MultiPolygon:
			area = append(area, g...)
		}
	}
	if len(area) == 0 {
		return nil, fmt.Errorf("geojson area contains no polygons")
	}
	return area, nil
}

// Contains reports whether c lies inside area.
func Contains(area orb.MultiPolygon, c model.Coordinate) bool {
	return planar.MultiPolygonContains(area, c.Point())
}
