// README: Fare estimator: rate schedule applied to provider distance/time.
package fare

import (
	"context"
	"errors"
	"math"
	"strings"

	"swiftcab/internal/maps"
	"swiftcab/internal/types"
)

var (
	ErrBadRequest = errors.New("pickup and destination must be at least 3 characters")
	// ErrUpstream marks a distance-provider failure. Retryable by the
	// caller; never retried here.
	ErrUpstream = errors.New("distance provider unavailable")
)

type Service struct {
	provider maps.DistanceProvider
	rates    map[string]Rate
}

func NewService(provider maps.DistanceProvider) *Service {
	rates := make(map[string]Rate, len(DefaultRates))
	for _, r := range DefaultRates {
		rates[r.Class] = r
	}
	return &Service{provider: provider, rates: rates}
}

// Estimate computes the fare for every vehicle class in one provider
// round trip, so the client can render the full table.
func (s *Service) Estimate(ctx context.Context, pickup, destination string) (Table, error) {
	if len(strings.TrimSpace(pickup)) < 3 || len(strings.TrimSpace(destination)) < 3 {
		return nil, ErrBadRequest
	}
	route, err := s.provider.Route(ctx, pickup, destination)
	if err != nil {
		return nil, errors.Join(ErrUpstream, err)
	}

	table := make(Table, len(s.rates))
	for class, rate := range s.rates {
		table[class] = types.Money{Amount: fareFor(rate, route), Currency: Currency}
	}
	return table, nil
}

// ForClass returns the estimate for a single class.
func (s *Service) ForClass(ctx context.Context, pickup, destination, class string) (types.Money, error) {
	if _, ok := s.rates[class]; !ok {
		return types.Money{}, ErrBadRequest
	}
	table, err := s.Estimate(ctx, pickup, destination)
	if err != nil {
		return types.Money{}, err
	}
	return table[class], nil
}

func fareFor(rate Rate, route maps.Route) int64 {
	total := rate.BaseFare +
		int64(math.Round(route.DistanceKm*float64(rate.PerKm))) +
		int64(math.Round(route.DurationMin*float64(rate.PerMin)))
	if total < rate.MinFare {
		return rate.MinFare
	}
	return total
}
