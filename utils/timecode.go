package utils

import (
	"fmt"
	"math"
)

// FormatTimecode renders a fractional-seconds offset as HH:MM:SS.
func FormatTimecode(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// CalculateDifference returns the absolute in/out distance in seconds.
func CalculateDifference(inTime, outTime float64) float64 {
	return math.Abs(outTime - inTime)
}
