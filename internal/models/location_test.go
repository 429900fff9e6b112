package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocation_HasCoordinates(t *testing.T) {
	var missing *Location
	assert.False(t, missing.HasCoordinates())

	// The zero value is an unset location, not a point in the Gulf of
	// Guinea.
	assert.False(t, (&Location{}).HasCoordinates())

	assert.True(t, (&Location{Lat: 19.4326, Lng: -99.1332}).HasCoordinates())
	assert.True(t, (&Location{Lat: 0, Lng: -99.1332}).HasCoordinates())
}
