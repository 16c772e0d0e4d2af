package authUtils

import (
	"math"
	"testing"
)

func TestHaversineKmZeroDistance(t *testing.T) {
	d := HaversineKm(12.9716, 77.5946, 12.9716, 77.5946)
	if d != 0 {
		t.Errorf("distance between identical points = %v, want 0", d)
	}
	// radius 0 with an exact match must still include the point
	if !(d <= 0) {
		t.Error("zero distance should satisfy a zero radius filter")
	}
}

func TestHaversineKmKnownDistance(t *testing.T) {
	// One degree of longitude along the equator is about 111.19 km
	d := HaversineKm(0, 0, 0, 1)
	if math.Abs(d-111.19) > 0.5 {
		t.Errorf("HaversineKm(0,0,0,1) = %v, want ~111.19", d)
	}
}

func TestHaversineKmSymmetry(t *testing.T) {
	a := HaversineKm(48.8566, 2.3522, 51.5074, -0.1278)
	b := HaversineKm(51.5074, -0.1278, 48.8566, 2.3522)
	if math.Abs(a-b) > 1e-9 {
		t.Errorf("distance not symmetric: %v vs %v", a, b)
	}
}

func TestRoundKm(t *testing.T) {
	if got := RoundKm(3.14159); got != 3.14 {
		t.Errorf("RoundKm(3.14159) = %v, want 3.14", got)
	}
	if got := RoundKm(2.005); got != 2.01 && got != 2.0 {
		// floating point representation of 2.005 may round either way
		t.Errorf("RoundKm(2.005) = %v", got)
	}
}
