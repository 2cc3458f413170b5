package services

import (
	"testing"
	"time"

	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jst = time.FixedZone("org", 9*60*60)

func TestParseTimeOfDay(t *testing.T) {
	t.Run("parses valid values", func(t *testing.T) {
		hour, minute, err := ParseTimeOfDay("10:00")
		assert.NoError(t, err)
		assert.Equal(t, 10, hour)
		assert.Equal(t, 0, minute)

		hour, minute, err = ParseTimeOfDay("23:59")
		assert.NoError(t, err)
		assert.Equal(t, 23, hour)
		assert.Equal(t, 59, minute)
	})

	t.Run("rejects malformed values", func(t *testing.T) {
		for _, s := range []string{"", "10", "24:00", "10:60", "ab:cd", "-1:00"} {
			_, _, err := ParseTimeOfDay(s)
			assert.Error(t, err, "expected error for %q", s)
		}
	})
}

func TestStepDueTime(t *testing.T) {
	t.Run("computes wall clock in the org timezone", func(t *testing.T) {
		// Run started at 05:00 UTC = 14:00 JST on Jan 1.
		startedAt := time.Date(2024, 1, 1, 5, 0, 0, 0, time.UTC)
		step := models.WorkflowStep{DaysAfter: 1, TimeOfDay: "10:00"}

		due, err := StepDueTime(startedAt, step, jst)
		require.NoError(t, err)

		// Day after start, 10:00 JST = 01:00 UTC on Jan 2.
		assert.Equal(t, time.Date(2024, 1, 2, 1, 0, 0, 0, time.UTC), due.UTC())
	})

	t.Run("anchors to run start, not current time", func(t *testing.T) {
		startedAt := time.Date(2024, 1, 1, 5, 0, 0, 0, time.UTC)
		step := models.WorkflowStep{DaysAfter: 3, TimeOfDay: "19:30"}

		due, err := StepDueTime(startedAt, step, jst)
		require.NoError(t, err)

		want := time.Date(2024, 1, 4, 19, 30, 0, 0, jst)
		assert.True(t, due.Equal(want), "got %s, want %s", due, want)
	})

	t.Run("late-evening start near midnight JST lands on the right day", func(t *testing.T) {
		// 16:00 UTC on Jan 1 is already 01:00 JST on Jan 2.
		startedAt := time.Date(2024, 1, 1, 16, 0, 0, 0, time.UTC)
		step := models.WorkflowStep{DaysAfter: 1, TimeOfDay: "10:00"}

		due, err := StepDueTime(startedAt, step, jst)
		require.NoError(t, err)

		want := time.Date(2024, 1, 3, 10, 0, 0, 0, jst)
		assert.True(t, due.Equal(want), "got %s, want %s", due, want)
	})

	t.Run("day zero keeps the start date", func(t *testing.T) {
		startedAt := time.Date(2024, 6, 15, 0, 30, 0, 0, jst)
		step := models.WorkflowStep{DaysAfter: 0, TimeOfDay: "18:00"}

		due, err := StepDueTime(startedAt, step, jst)
		require.NoError(t, err)

		want := time.Date(2024, 6, 15, 18, 0, 0, 0, jst)
		assert.True(t, due.Equal(want))
	})

	t.Run("propagates time-of-day parse errors", func(t *testing.T) {
		step := models.WorkflowStep{DaysAfter: 1, TimeOfDay: "25:00"}
		_, err := StepDueTime(time.Now(), step, jst)
		assert.Error(t, err)
	})
}
