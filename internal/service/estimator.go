package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/auxy/roadside-assist/internal/apperrors"
	"github.com/auxy/roadside-assist/internal/models"
)

// Base prices per service type, in MXN.
var basePrices = map[models.ServiceType]float64{
	models.ServiceTowing:  800,
	models.ServiceBattery: 300,
	models.ServiceTire:    250,
	models.ServiceFuel:    200,
	models.ServiceLockout: 350,
	models.ServiceOther:   400,
}

const (
	// Night surcharge applies from 22:00 through 06:59.
	nightMultiplier = 1.5
	truckMultiplier = 1.3

	// The distance fee scales with how far the nearest provider is,
	// capped so the multiplier stays in [1.0, 1.3]. When no provider
	// can be located the window midpoint is assumed.
	distanceCapKm      = 30.0
	fallbackMultiplier = 1.15

	// estimateValidity is how long a quote holds.
	estimateValidity = 30 * time.Minute
)

// PriceBreakdown reports each additive contribution relative to the
// base price.
type PriceBreakdown struct {
	BasePrice        int `json:"basePrice"`
	DistanceFee      int `json:"distanceFee"`
	TimeSurcharge    int `json:"timeSurcharge"`
	VehicleSurcharge int `json:"vehicleSurcharge"`
}

// PriceEstimate is a non-binding price range for a service.
type PriceEstimate struct {
	Minimum   int            `json:"minimum"`
	Maximum   int            `json:"maximum"`
	Average   int            `json:"average"`
	Breakdown PriceBreakdown `json:"breakdown"`
}

// EstimateResult wraps the estimate with its validity window.
type EstimateResult struct {
	ServiceType models.ServiceType `json:"serviceType"`
	Estimates   PriceEstimate      `json:"estimates"`
	Currency    string             `json:"currency"`
	ValidUntil  time.Time          `json:"validUntil"`
	Disclaimer  string             `json:"disclaimer"`
}

// nearestFinder is the slice of Locator the estimator needs.
type nearestFinder interface {
	NearestDistance(ctx context.Context, lat, lng float64) (float64, bool, error)
}

// Estimator computes bounded price ranges from service type, distance
// to the nearest provider, time of day and vehicle type.
type Estimator struct {
	locator nearestFinder
	now     func() time.Time
}

// NewEstimator creates the price estimator.
func NewEstimator(locator nearestFinder) *Estimator {
	return &Estimator{locator: locator, now: time.Now}
}

// Estimate computes the price range for a service at a location. An
// unknown service type falls back to the "other" base price rather than
// erroring, matching the public contract.
func (e *Estimator) Estimate(ctx context.Context, serviceType models.ServiceType, location models.RequestLocation, vehicleType string) (*EstimateResult, error) {
	base, ok := basePrices[serviceType]
	if !ok {
		base = basePrices[models.ServiceOther]
	}

	distanceMultiplier := fallbackMultiplier
	if e.locator != nil {
		d, found, err := e.locator.NearestDistance(ctx, location.Lat, location.Lng)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		if found {
			distanceMultiplier = 1 + math.Min(d, distanceCapKm)/100
		}
	}

	timeMultiplier := 1.0
	if hour := e.now().Hour(); hour >= 22 || hour <= 6 {
		timeMultiplier = nightMultiplier
	}

	vehicleMultiplier := 1.0
	if strings.EqualFold(vehicleType, "truck") {
		vehicleMultiplier = truckMultiplier
	}

	average := int(math.Round(base * distanceMultiplier * timeMultiplier * vehicleMultiplier))

	estimate := PriceEstimate{
		Minimum: int(math.Round(float64(average) * 0.8)),
		Maximum: int(math.Round(float64(average) * 1.2)),
		Average: average,
		Breakdown: PriceBreakdown{
			BasePrice:        int(base),
			DistanceFee:      int(math.Round(base * (distanceMultiplier - 1))),
			TimeSurcharge:    int(math.Round(base * (timeMultiplier - 1))),
			VehicleSurcharge: int(math.Round(base * (vehicleMultiplier - 1))),
		},
	}

	return &EstimateResult{
		ServiceType: serviceType,
		Estimates:   estimate,
		Currency:    "MXN",
		ValidUntil:  e.now().Add(estimateValidity),
		Disclaimer:  "Prices are estimates and may vary with the specific conditions of the service.",
	}, nil
}
