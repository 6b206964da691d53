package dateutil

import (
	"time"
)

// Age calculates the age at a given date
func Age(birthDate, atDate time.Time) int {
	age := atDate.Year() - birthDate.Year()
	if atDate.Month() < birthDate.Month() ||
		(atDate.Month() == birthDate.Month() && atDate.Day() < birthDate.Day()) {
		age--
	}
	return age
}

// YearsToTarget returns the whole years from atDate until the start of targetYear, never negative
func YearsToTarget(targetYear int, atDate time.Time) int {
	years := targetYear - atDate.Year()
	if years < 0 {
		return 0
	}
	return years
}

// AgeAtTarget converts years-to-target into the equivalent current age,
// given the age the target date corresponds to (usually retirement age)
func AgeAtTarget(targetAge, yearsToTarget int) int {
	if yearsToTarget < 0 {
		yearsToTarget = 0
	}
	return targetAge - yearsToTarget
}
