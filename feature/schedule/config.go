package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Config holds configuration for the reconciliation engine.
type Config struct {
	// CheckinTime is the arrival time of day, e.g. "3:00P".
	CheckinTime string `mapstructure:"checkin_time" default:"3:00P"`
	// CheckoutTime is the departure time of day, e.g. "11:00A".
	CheckoutTime string `mapstructure:"checkout_time" default:"11:00A"`
	// ArrivingSoonTime is the time of day for the arriving-soon transition.
	// Empty disables the transition.
	ArrivingSoonTime string `mapstructure:"arriving_soon_time" default:""`
	// ArrivingSoonDaysBefore is how many days before check-in the
	// arriving-soon transition fires.
	ArrivingSoonDaysBefore int `mapstructure:"arriving_soon_days_before" default:"1"`
	// CheckinMode is the house mode set at check-in. Empty skips the mode change.
	CheckinMode string `mapstructure:"checkin_mode" default:""`
	// CheckoutMode is the house mode set at check-out. Empty skips the mode change.
	CheckoutMode string `mapstructure:"checkout_mode" default:""`
	// ArrivingSoonMode is the house mode set at arriving-soon.
	ArrivingSoonMode string `mapstructure:"arriving_soon_mode" default:""`
	// RunCheckoutImmediatelyIfReservationIsCancelledMidStay makes a mid-stay
	// cancellation run check-out actions right away instead of waiting for
	// the originally scheduled check-out time.
	RunCheckoutImmediatelyIfReservationIsCancelledMidStay bool `mapstructure:"run_checkout_immediately_if_reservation_is_cancelled_mid_stay" default:"false"`
	// IntervalMinutes is the cadence of periodic reconciliation passes.
	IntervalMinutes int `mapstructure:"interval_minutes" default:"15"`
	// Timezone is the IANA timezone of the property. Empty uses local time.
	Timezone string `mapstructure:"timezone" default:""`
}

// Location resolves the configured timezone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

var clockPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})(A|P)M?$`)

// ParseClockTime parses a time-of-day string of the form "3:00P" or
// "11:00AM" into an hour and minute. 12A maps to hour 0.
func ParseClockTime(s string) (hour, minute int, err error) {
	s = strings.ToUpper(strings.ReplaceAll(s, " ", ""))
	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, fmt.Errorf("could not parse time of day: %q", s)
	}

	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	if hour < 1 || hour > 12 || minute > 59 {
		return 0, 0, fmt.Errorf("time of day out of range: %q", s)
	}

	switch {
	case m[3] == "A" && hour == 12:
		hour = 0
	case m[3] == "P" && hour < 12:
		hour += 12
	}
	return hour, minute, nil
}
