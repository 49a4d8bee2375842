package utils

import (
	"fmt"
	"slices"
	"time"
)

// GenerateSurveyVersionID returns the first unused id of the form YY-MM-<counter> for the month of t.
func GenerateSurveyVersionID(t time.Time, existingVersionIDs []string) string {
	date := t.Format("06-01")

	counter := 1
	newID := fmt.Sprintf("%s-%d", date, counter)
	for slices.Contains(existingVersionIDs, newID) {
		counter += 1
		newID = fmt.Sprintf("%s-%d", date, counter)
	}
	return newID
}
