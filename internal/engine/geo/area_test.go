package geo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rendis/rentscout/internal/model"
)

const squareFeature = `{"type":"Feature","properties":{},"geometry":{"type":"Polygon","coordinates":[[[34.77,32.07],[34.79,32.07],[34.79,32.09],[34.77,32.09],[34.77,32.07]]]}}`

func TestParseAreaShapes(t *testing.T) {
	tests := []struct {
		name  string
		data  string
		polys int
	}{
		{"feature", squareFeature, 1},
		{"collection", `{"type":"FeatureCollection","features":[` + squareFeature + `,` + squareFeature + `]}`, 2},
		{"bare geometry", `{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}`, 1},
		{"multipolygon", `{"type":"MultiPolygon","coordinates":[[[[0,0],[1,0],[1,1],[0,0]]],[[[2,2],[3,2],[3,3],[2,2]]]]}`, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			area, err := ParseArea([]byte(tt.data))
			if err != nil {
				t.Fatalf("ParseArea: %v", err)
			}
			if len(area) != tt.polys {
				t.Errorf("polygons = %d, want %d", len(area), tt.polys)
			}
		})
	}
}

func TestParseAreaRejects(t *testing.T) {
	for _, data := range []string{
		`not json`,
		`{"type":"Point","coordinates":[0,0]}`,
	} {
		if _, err := ParseArea([]byte(data)); err == nil {
			t.Errorf("ParseArea(%s): expected error", data)
		}
	}
}

func TestLoadAreaAndContains(t *testing.T) {
	path := filepath.Join(t.TempDir(), "area.geojson")
	if err := os.WriteFile(path, []byte(squareFeature), 0o644); err != nil {
		t.Fatal(err)
	}

	area, err := LoadArea(path)
	if err != nil {
		t.Fatalf("LoadArea: %v", err)
	}
	if !Contains(area, model.Coordinate{Lat: 32.08, Lng: 34.78}) {
		t.Error("expected point inside area")
	}
	if Contains(area, model.Coordinate{Lat: 32.10, Lng: 34.78}) {
		t.Error("expected point outside area")
	}
}
