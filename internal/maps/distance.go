// README: Distance/duration provider abstraction over the Google Maps API.
package maps

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"
)

// Route is the distance/time answer the fare estimator works from.
type Route struct {
	DistanceKm  float64
	DurationMin float64
}

// DistanceProvider resolves a pickup/destination pair to road distance
// and travel time. Implementations must not retry internally; a failed
// call surfaces to the caller as a retryable upstream error.
type DistanceProvider interface {
	Route(ctx context.Context, origin, destination string) (Route, error)
}

// GoogleProvider asks the Google Maps Directions API, driving mode.
type GoogleProvider struct {
	client *maps.Client
}

func NewGoogleProvider(apiKey string) (*GoogleProvider, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GoogleProvider{client: client}, nil
}

func (p *GoogleProvider) Route(ctx context.Context, origin, destination string) (Route, error) {
	r := &maps.DirectionsRequest{
		Origin:      origin,
		Destination: destination,
		Mode:        maps.TravelModeDriving,
	}

	routes, _, err := p.client.Directions(ctx, r)
	if err != nil {
		return Route{}, fmt.Errorf("maps api error: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return Route{}, fmt.Errorf("no route found between %q and %q", origin, destination)
	}

	leg := routes[0].Legs[0]
	return Route{
		DistanceKm:  float64(leg.Distance.Meters) / 1000.0,
		DurationMin: leg.Duration.Minutes(),
	}, nil
}

// StaticProvider answers with fixed values. Used when no API key is
// configured (dev environments) so fare estimation still works.
type StaticProvider struct {
	DistanceKm  float64
	DurationMin float64
}

func (p StaticProvider) Route(_ context.Context, _, _ string) (Route, error) {
	return Route{DistanceKm: p.DistanceKm, DurationMin: p.DurationMin}, nil
}
