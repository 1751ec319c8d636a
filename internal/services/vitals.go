package services

import (
	"fmt"
	"math"
	"math/rand"
)

// Skin-conductance factors differ between the phase-progress response and the
// live vitals read; both constants are part of the observed wire behavior.
const (
	SkinConductanceProgress = 0.3
	SkinConductanceLive     = 0.5
)

// VitalSigns is synthetic telemetry derived from the current SUD value.
type VitalSigns struct {
	HeartRate        int     `json:"heart_rate"`
	BloodPressure    string  `json:"blood_pressure"`
	Temperature      float64 `json:"temperature"`
	RespirationRate  int     `json:"respiration_rate"`
	SkinConductance  float64 `json:"skin_conductance"`
	OxygenSaturation float64 `json:"oxygen_saturation"`
	StressLevel      int     `json:"stress_level"`
}

// DeriveVitals maps a SUD value to vital signs. The heart rate carries a
// bounded random jitter and is floored at 60 bpm; everything else is
// deterministic in sud except the temperature wobble.
func DeriveVitals(sud int, scFactor float64, rng *rand.Rand) VitalSigns {
	hr := 70 + sud*3 + (rng.Intn(11) - 5)
	if hr < 60 {
		hr = 60
	}
	systolic := 120 + sud*2
	diastolic := 80 + sud
	return VitalSigns{
		HeartRate:        hr,
		BloodPressure:    fmt.Sprintf("%d/%d", systolic, diastolic),
		Temperature:      round1(36.6 + (rng.Float64()*0.4 - 0.2)),
		RespirationRate:  16 + sud,
		SkinConductance:  round1(2 + float64(sud)*scFactor),
		OxygenSaturation: 98 - float64(sud)*0.5,
		StressLevel:      sud,
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
