// Package export writes ranked matches as CSV or GeoJSON.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/rendis/rentscout/internal/model"
)

// Format names accepted by Write.
const (
	FormatCSV     = "csv"
	FormatGeoJSON = "geojson"
)

var csvHeader = []string{
	"rank", "id", "title", "address", "price", "rooms", "seller_type",
	"features", "distance_m", "lat", "lng", "url",
}

// WriteCSV writes one row per match, in rank order.
func WriteCSV(w io.Writer, matches []model.Match) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for i, m := range matches {
		l := m.Listing
		if err := cw.Write([]string{
			strconv.Itoa(i + 1),
			l.ID,
			l.Title,
			l.Address,
			strconv.FormatInt(l.Price, 10),
			strconv.FormatFloat(l.Rooms, 'f', -1, 64),
			string(l.Seller),
			strings.Join(l.Features, ";"),
			fmt.Sprintf("%.1f", m.DistanceM),
			fmt.Sprintf("%.6f", l.Lat),
			fmt.Sprintf("%.6f", l.Lng),
			l.URL,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteGeoJSON writes a FeatureCollection holding the search center followed
// by one point feature per match.
func WriteGeoJSON(w io.Writer, center model.Coordinate, radiusM float64, matches []model.Match) error {
	fc := geojson.NewFeatureCollection()

	c := geojson.NewFeature(center.Point())
	c.Properties["kind"] = "center"
	c.Properties["radius_m"] = radiusM
	fc.Append(c)

	for i, m := range matches {
		l := m.Listing
		f := geojson.NewFeature(orb.Point{l.Lng, l.Lat})
		f.ID = l.ID
		f.Properties["kind"] = "listing"
		f.Properties["rank"] = i + 1
		f.Properties["title"] = l.Title
		f.Properties["address"] = l.Address
		f.Properties["price"] = l.Price
		f.Properties["rooms"] = l.Rooms
		f.Properties["seller_type"] = string(l.Seller)
		f.Properties["features"] = l.Features
		f.Properties["distance_m"] = m.DistanceM
		f.Properties["url"] = l.URL
		fc.Append(f)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encoding geojson: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// ToFile writes matches to path in the given format.
func ToFile(path, format string, center model.Coordinate, radiusM float64, matches []model.Match) error {
	if format != FormatCSV && format != FormatGeoJSON {
		return fmt.Errorf("unsupported format: %s (csv or geojson)", format)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	defer f.Close()

	if format == FormatGeoJSON {
		err = WriteGeoJSON(f, center, radiusM, matches)
	} else {
		err = WriteCSV(f, matches)
	}
	if err != nil {
		return err
	}
	return f.Close()
}
