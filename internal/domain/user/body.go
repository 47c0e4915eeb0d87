package user

import (
	"math"
	"time"

	"github.com/levelup-fitness/levelup-core/pkg/timeutil"
)

// BMI returns weight / height^2 with height in centimetres, rounded to one
// decimal. ok is false when either input is missing or implausible.
func BMI(heightCm, weightKg float64) (bmi float64, ok bool) {
	if heightCm < 50 || heightCm > 250 || weightKg < 10 || weightKg > 400 {
		return 0, false
	}
	h := heightCm / 100.0
	return math.Round(weightKg/(h*h)*10) / 10, true
}

// BMICategory labels a BMI value.
func BMICategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "Underweight"
	case bmi < 25.0:
		return "Normal weight"
	case bmi < 30.0:
		return "Overweight"
	default:
		return "Obese"
	}
}

// Age returns the completed years between birthDate and now. ok is false for
// a missing or malformed date, or one in the future.
func Age(birthDate string, now time.Time) (years int, ok bool) {
	born, err := timeutil.ParseDayKey(birthDate)
	if err != nil {
		return 0, false
	}
	y, m, d := now.Date()
	years = y - born.Year()
	if m < born.Month() || (m == born.Month() && d < born.Day()) {
		years--
	}
	if years < 0 {
		return 0, false
	}
	return years, true
}
