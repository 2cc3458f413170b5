package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/models"
)

// ParseTimeOfDay parses an "HH:MM" wall-clock value.
func ParseTimeOfDay(s string) (hour, minute int, err error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time of day %q", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid time of day %q", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid time of day %q", s)
	}
	return hour, minute, nil
}

// StepDueTime computes when a step fires: started_at shifted into the fixed
// organizational timezone, plus days_after days, with the wall clock set to
// time_of_day, converted back to an absolute instant. Delays are anchored to
// run start, never to the current time, so a late sweep does not push later
// steps later.
func StepDueTime(startedAt time.Time, step models.WorkflowStep, loc *time.Location) (time.Time, error) {
	hour, minute, err := ParseTimeOfDay(step.TimeOfDay)
	if err != nil {
		return time.Time{}, err
	}
	local := startedAt.In(loc).AddDate(0, 0, step.DaysAfter)
	return time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc), nil
}
