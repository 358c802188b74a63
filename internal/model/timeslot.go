package model

import "strings"

// TimeSlot is one of seven back-to-back two hour screening windows.
type TimeSlot string

var timeSlots = []TimeSlot{
	"10:00-12:00",
	"12:00-14:00",
	"14:00-16:00",
	"16:00-18:00",
	"18:00-20:00",
	"20:00-22:00",
	"22:00-00:00",
}

// TimeSlots lists the valid slots in chronological order.
func TimeSlots() []TimeSlot {
	out := make([]TimeSlot, len(timeSlots))
	copy(out, timeSlots)
	return out
}

// ParseTimeSlot trims surrounding whitespace and requires an exact match.
func ParseTimeSlot(s string) (TimeSlot, error) {
	v := TimeSlot(strings.TrimSpace(s))
	for _, ts := range timeSlots {
		if ts == v {
			return ts, nil
		}
	}
	return "", &ValidationError{Field: "timeSlot", Reason: "invalid time slot: " + s, Cause: ErrInvalidTimeSlot}
}

func (t TimeSlot) String() string { return string(t) }
