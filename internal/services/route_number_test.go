package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatRouteNumber(t *testing.T) {
	day := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "RTE-20241201-0001", FormatRouteNumber(day, 1))
	assert.Equal(t, "RTE-20241201-0042", FormatRouteNumber(day, 42))
	assert.Equal(t, "RTE-20241201-12345", FormatRouteNumber(day, 12345))
}

func TestDayBounds(t *testing.T) {
	// 23:30 in UTC-6 is already the next UTC day
	central := time.FixedZone("CST", -6*60*60)
	from, to := dayBounds(time.Date(2024, 11, 30, 23, 30, 0, 0, central))

	assert.Equal(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2024, 12, 2, 0, 0, 0, 0, time.UTC), to)
}
