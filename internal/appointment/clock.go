package appointment

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var errBadClock = errors.New("malformed clock value")

// ParseStart resolves a record's calendar date plus wall-clock time into a
// naive local timestamp. The clock value is split on its first space into
// HH:MM and an optional 12-hour period marker: PM adds 12 to hours below
// 12, and 12 AM becomes hour 0. A missing clock value means midnight, a
// missing minute means :00. No timezone conversion happens; the result is
// interpreted in loc, normally the consumer's local time.
//
// Every component deriving ordering from date+time must go through this
// function, otherwise "is upcoming" decisions diverge between consumers.
func ParseStart(date, clock string, loc *time.Location) (time.Time, error) {
	if date == "" {
		return time.Time{}, errors.New("empty date")
	}
	if clock == "" {
		clock = "00:00"
	}
	if loc == nil {
		loc = time.Local
	}

	hhmm, period, _ := strings.Cut(clock, " ")
	hourRaw, minuteRaw, _ := strings.Cut(hhmm, ":")

	hour, err := strconv.Atoi(strings.TrimSpace(hourRaw))
	if err != nil || hour < 0 || hour > 23 {
		return time.Time{}, errBadClock
	}

	minute := 0
	if minuteRaw != "" {
		minute, err = strconv.Atoi(strings.TrimSpace(minuteRaw))
		if err != nil || minute < 0 || minute > 59 {
			return time.Time{}, errBadClock
		}
	}

	switch strings.ToUpper(strings.TrimSpace(period)) {
	case "":
	case "PM":
		if hour < 12 {
			hour += 12
		}
	case "AM":
		if hour == 12 {
			hour = 0
		}
	default:
		return time.Time{}, errBadClock
	}

	composed := fmt.Sprintf("%sT%02d:%02d:00", date, hour, minute)
	ts, err := time.ParseInLocation("2006-01-02T15:04:05", composed, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %q: %w", composed, err)
	}
	return ts, nil
}
