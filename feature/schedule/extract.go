package schedule

import (
	"fmt"
	"regexp"
	"strings"

	"guesthub/core/calendar"
)

// Platform-specific extraction patterns. The Airbnb feed embeds a reservation
// URL and a labeled phone line in the event description; VRBO uses a bare
// reservation code. The generic fallback accepts any long alphanumeric token
// containing both letters and digits, plus the first standalone 4-digit run.
var (
	airbnbReservationPattern = regexp.MustCompile(`reservations/details/([A-Z0-9]+)`)
	airbnbPhonePattern       = regexp.MustCompile(`\(Last 4 Digits\):\s*(\d{4})`)
	vrboReservationPattern   = regexp.MustCompile(`Reservation ID:\s*([A-Z0-9]+)`)
	genericTokenPattern      = regexp.MustCompile(`\b([A-Z0-9]{8,})\b`)
	genericPhonePattern      = regexp.MustCompile(`\b(\d{4})\b`)
)

// reservation is the identifying data extracted from one event.
type reservation struct {
	// ID is the stable reservation identifier.
	ID string
	// Phone is the guest phone last-4 used as the lock-code payload.
	Phone string
}

// extractReservation pulls the reservation identifier and phone fragment out
// of an event's description. Extraction failure makes the event unusable: it
// is logged and skipped by the engine, never scheduled.
func extractReservation(ev calendar.Event) (reservation, error) {
	var id, phone string

	switch ev.Platform {
	case "airbnb":
		if m := airbnbReservationPattern.FindStringSubmatch(ev.Description); m != nil {
			id = m[1]
		}
		if m := airbnbPhonePattern.FindStringSubmatch(ev.Description); m != nil {
			phone = m[1]
		}
	case "vrbo":
		if m := vrboReservationPattern.FindStringSubmatch(ev.Description); m != nil {
			id = m[1]
		}
	}

	if id == "" {
		id = genericReservationID(ev.Description)
	}
	if phone == "" {
		if m := genericPhonePattern.FindStringSubmatch(ev.Description); m != nil {
			phone = m[1]
		}
	}

	if id == "" {
		return reservation{}, fmt.Errorf("no reservation identifier in event %q", ev.Summary)
	}
	if phone == "" {
		return reservation{}, fmt.Errorf("no phone digits in event %q (reservation %s)", ev.Summary, id)
	}
	return reservation{ID: id, Phone: phone}, nil
}

// genericReservationID returns the first long token that mixes letters and
// digits, which filters out plain words and bare numbers.
func genericReservationID(desc string) string {
	for _, m := range genericTokenPattern.FindAllStringSubmatch(desc, -1) {
		token := m[1]
		if strings.IndexFunc(token, isDigit) >= 0 && strings.IndexFunc(token, isLetter) >= 0 {
			return token
		}
	}
	return ""
}

func isDigit(r rune) bool  { return r >= '0' && r <= '9' }
func isLetter(r rune) bool { return r >= 'A' && r <= 'Z' }
