package services

import (
	"fmt"
	"math/rand"
	"testing"
)

func TestDeriveVitalsDeterministicParts(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for sud := 0; sud <= 10; sud++ {
		vs := DeriveVitals(sud, SkinConductanceProgress, rng)
		wantBP := fmt.Sprintf("%d/%d", 120+sud*2, 80+sud)
		if vs.BloodPressure != wantBP {
			t.Fatalf("sud %d: blood pressure %q, want %q", sud, vs.BloodPressure, wantBP)
		}
		if vs.RespirationRate != 16+sud {
			t.Fatalf("sud %d: respiration %d, want %d", sud, vs.RespirationRate, 16+sud)
		}
		if vs.OxygenSaturation != 98-float64(sud)*0.5 {
			t.Fatalf("sud %d: oxygen %v", sud, vs.OxygenSaturation)
		}
		if vs.StressLevel != sud {
			t.Fatalf("sud %d: stress %d", sud, vs.StressLevel)
		}
	}
}

func TestDeriveVitalsHeartRateFloor(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for sud := 0; sud <= 10; sud++ {
		for i := 0; i < 200; i++ {
			vs := DeriveVitals(sud, SkinConductanceProgress, rng)
			if vs.HeartRate < 60 {
				t.Fatalf("sud %d: heart rate %d below floor", sud, vs.HeartRate)
			}
			max := 70 + sud*3 + 5
			if vs.HeartRate > max {
				t.Fatalf("sud %d: heart rate %d above jitter bound %d", sud, vs.HeartRate, max)
			}
		}
	}
}

func TestDeriveVitalsTemperatureRange(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 500; i++ {
		vs := DeriveVitals(5, SkinConductanceProgress, rng)
		if vs.Temperature < 36.4 || vs.Temperature > 36.8 {
			t.Fatalf("temperature %v outside wobble range", vs.Temperature)
		}
	}
}

func TestSkinConductanceFactors(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	progress := DeriveVitals(6, SkinConductanceProgress, rng)
	if progress.SkinConductance != 3.8 {
		t.Fatalf("progress factor: got %v, want 3.8", progress.SkinConductance)
	}
	live := DeriveVitals(6, SkinConductanceLive, rng)
	if live.SkinConductance != 5.0 {
		t.Fatalf("live factor: got %v, want 5.0", live.SkinConductance)
	}
}
