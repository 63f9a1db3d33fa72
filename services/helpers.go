package services

import (
	"strconv"
	"strings"
	"time"
)

// CombineStart overlays the HH:MM start time onto the date portion of the
// start date, with seconds zeroed. An empty or unparseable start time yields
// the date at midnight.
func CombineStart(startDate time.Time, startTime string) time.Time {
	hour, minute, ok := parseClock(startTime)
	if !ok {
		hour, minute = 0, 0
	}
	return time.Date(
		startDate.Year(), startDate.Month(), startDate.Day(),
		hour, minute, 0, 0,
		startDate.Location(),
	)
}

// parseClock parses a "HH:MM" 24-hour clock string.
func parseClock(s string) (hour, minute int, ok bool) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, false
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}
