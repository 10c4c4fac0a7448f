package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKm(t *testing.T) {
	// Same point
	assert.InDelta(t, 0, DistanceKm(40.0, -74.0, 40.0, -74.0), 0.001)

	// One degree of latitude is ~111km
	assert.InDelta(t, 111.19, DistanceKm(40.0, -74.0, 41.0, -74.0), 0.5)

	// NYC -> LA is roughly 3940km
	assert.InDelta(t, 3940, DistanceKm(40.7128, -74.0060, 34.0522, -118.2437), 50)
}

func TestBoundingBoxContainsRadius(t *testing.T) {
	minLat, maxLat, minLng, maxLng := BoundingBox(40.0, -74.0, 5)

	assert.Less(t, minLat, 40.0)
	assert.Greater(t, maxLat, 40.0)
	assert.Less(t, minLng, -74.0)
	assert.Greater(t, maxLng, -74.0)

	// Points on the circle's cardinal extremes fall inside the box.
	assert.GreaterOrEqual(t, 40.0+5.0/111.0, minLat)
	assert.LessOrEqual(t, 40.0+5.0/111.0, maxLat)
}

func TestBoundingBoxNearPoles(t *testing.T) {
	_, _, minLng, maxLng := BoundingBox(89.9, 0, 10)
	assert.Equal(t, -180.0, minLng)
	assert.Equal(t, 180.0, maxLng)
}
