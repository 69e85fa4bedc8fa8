package team

import "time"

// AgeAt returns the whole years elapsed between dateOfBirth and asOf,
// decremented by one if the birthday has not yet occurred in asOf's year.
// PRE: dateOfBirth is a well-formed calendar date not after asOf
// POST: Returns the person's age in whole years at asOf
func AgeAt(dateOfBirth, asOf time.Time) int {
	years := asOf.Year() - dateOfBirth.Year()
	if asOf.Month() < dateOfBirth.Month() ||
		(asOf.Month() == dateOfBirth.Month() && asOf.Day() < dateOfBirth.Day()) {
		years--
	}
	return years
}
