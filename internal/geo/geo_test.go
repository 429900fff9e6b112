package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKm_SamePoint(t *testing.T) {
	d := DistanceKm(19.4326, -99.1332, 19.4326, -99.1332)
	assert.Equal(t, 0.0, d)
}

func TestDistanceKm_KnownDistance(t *testing.T) {
	// Mexico City to Guadalajara is roughly 460 km great-circle.
	d := DistanceKm(19.4326, -99.1332, 20.6597, -103.3496)
	assert.InDelta(t, 460, d, 10)
}

func TestDistanceKm_Symmetric(t *testing.T) {
	a := DistanceKm(19.4326, -99.1332, 25.6866, -100.3161)
	b := DistanceKm(25.6866, -100.3161, 19.4326, -99.1332)
	assert.InDelta(t, a, b, 1e-9)
}

func TestDistanceKm_ShortDistance(t *testing.T) {
	// One degree of latitude is about 111 km.
	d := DistanceKm(19.0, -99.0, 20.0, -99.0)
	assert.InDelta(t, 111.2, d, 1)
}
