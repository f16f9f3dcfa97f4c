package services

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"googlemaps.github.io/maps"
)

var (
	ErrNoResult              = errors.New("no geocoding result for address")
	ErrGeocoderNotConfigured = errors.New("GOOGLE_MAPS_API_KEY not set")
)

// Geocoder resolves a postal address to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (lat, lng float64, err error)
}

// GoogleGeocoder resolves addresses through the Google Maps Geocoding API.
type GoogleGeocoder struct {
	client *maps.Client
	logger *zap.Logger
}

// NewGoogleGeocoder builds a geocoder from GOOGLE_MAPS_API_KEY.
func NewGoogleGeocoder(logger *zap.Logger) (*GoogleGeocoder, error) {
	apiKey := os.Getenv("GOOGLE_MAPS_API_KEY")
	if apiKey == "" {
		return nil, ErrGeocoderNotConfigured
	}
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}
	return &GoogleGeocoder{client: client, logger: logger}, nil
}

// Geocode returns the first result's coordinates for the address.
func (g *GoogleGeocoder) Geocode(ctx context.Context, address string) (float64, float64, error) {
	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		return 0, 0, fmt.Errorf("geocode %q: %w", address, err)
	}
	if len(results) == 0 {
		return 0, 0, ErrNoResult
	}
	loc := results[0].Geometry.Location
	g.logger.Debug("address geocoded",
		zap.String("address", address),
		zap.Float64("lat", loc.Lat),
		zap.Float64("lng", loc.Lng))
	return loc.Lat, loc.Lng, nil
}
