package service

import (
	"context"
	"math"
	"sort"

	"github.com/auxy/roadside-assist/internal/apperrors"
	"github.com/auxy/roadside-assist/internal/db"
	"github.com/auxy/roadside-assist/internal/geo"
	"github.com/auxy/roadside-assist/internal/models"
)

// defaultServiceTypes is what a provider is assumed to offer when their
// profile lists nothing.
var defaultServiceTypes = []models.ServiceType{
	models.ServiceTowing, models.ServiceBattery, models.ServiceTire,
	models.ServiceFuel, models.ServiceLockout,
}

// arrivalMinutesPerKm is the flat travel-time heuristic used for the
// estimated arrival field.
const arrivalMinutesPerKm = 3

// Locator finds approved providers around a point and ranks them by a
// blend of proximity and rating.
type Locator struct {
	users db.UserCollection
}

// NewLocator creates the provider discovery service.
func NewLocator(users db.UserCollection) *Locator {
	return &Locator{users: users}
}

// FindNearby returns approved providers within radiusKm of the point,
// best first. Providers without a stored location are skipped rather
// than treated as sitting at (0,0). When serviceType is set, only
// providers offering it are returned.
//
// The ranking score is (5 − distance) + rating, so a highly rated
// distant provider can outrank a nearby poorly rated one. Kept as-is
// for compatibility with existing integrations.
func (l *Locator) FindNearby(ctx context.Context, lat, lng, radiusKm float64, serviceType models.ServiceType) ([]models.ProviderSummary, error) {
	providers, err := l.users.FindProviders(ctx, true)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	results := []models.ProviderSummary{}
	for _, p := range providers {
		if !p.Location.HasCoordinates() {
			continue
		}

		offered := p.ServiceTypes
		if len(offered) == 0 {
			offered = defaultServiceTypes
		}
		if serviceType != "" && !offers(offered, serviceType) {
			continue
		}

		distance := geo.DistanceKm(lat, lng, p.Location.Lat, p.Location.Lng)
		if distance > radiusKm {
			continue
		}

		results = append(results, models.ProviderSummary{
			ID:               p.ID.Hex(),
			Name:             p.Name,
			CompanyName:      p.CompanyName,
			Rating:           p.Rating,
			TotalServices:    p.TotalServices,
			DistanceKm:       math.Round(distance*100) / 100,
			ServiceTypes:     offered,
			EstimatedArrival: int(math.Ceil(distance * arrivalMinutesPerKm)),
			IsAvailable:      p.Available(),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		scoreI := (5 - results[i].DistanceKm) + results[i].Rating
		scoreJ := (5 - results[j].DistanceKm) + results[j].Rating
		return scoreI > scoreJ
	})

	return results, nil
}

// NearestDistance returns the distance in kilometers to the closest
// approved, located provider, or ok=false when none exists.
func (l *Locator) NearestDistance(ctx context.Context, lat, lng float64) (float64, bool, error) {
	providers, err := l.users.FindProviders(ctx, true)
	if err != nil {
		return 0, false, apperrors.Internal(err)
	}

	nearest := math.MaxFloat64
	found := false
	for _, p := range providers {
		if !p.Location.HasCoordinates() {
			continue
		}
		if d := geo.DistanceKm(lat, lng, p.Location.Lat, p.Location.Lng); d < nearest {
			nearest = d
			found = true
		}
	}
	return nearest, found, nil
}

func offers(offered []models.ServiceType, want models.ServiceType) bool {
	for _, t := range offered {
		if t == want {
			return true
		}
	}
	return false
}
