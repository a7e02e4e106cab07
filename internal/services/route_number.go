package services

import (
	"fmt"
	"time"
)

const routeNumberPrefix = "RTE"

// FormatRouteNumber renders RTE-YYYYMMDD-NNNN for the given calendar day and sequence
func FormatRouteNumber(day time.Time, sequence int) string {
	return fmt.Sprintf("%s-%s-%04d", routeNumberPrefix, day.Format("20060102"), sequence)
}

// dayBounds returns [start of t's UTC calendar day, start of the next day)
func dayBounds(t time.Time) (time.Time, time.Time) {
	u := t.UTC()
	start := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}
