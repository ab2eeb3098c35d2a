package domain

import (
	"errors"
	"fmt"
	"time"
)

// DayLayout is the wire format of a calendar day sent by the date picker.
const DayLayout = "2006-01-02"

const MaxWorkoutNameLen = 255

var (
	// ErrWorkoutNotFound covers both a missing workout and one owned by someone else.
	ErrWorkoutNotFound = errors.New("workout not found")
	ErrInvalidDay      = errors.New("invalid day, expected YYYY-MM-DD")
)

type Workout struct {
	ID          string
	UserID      string
	Name        string
	StartedAt   time.Time
	CompletedAt *time.Time // nil = in progress or not recorded
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewWorkout is what storage needs to insert a row. UserID always comes
// from the resolved identity.
type NewWorkout struct {
	UserID    string
	Name      string
	StartedAt time.Time
}

// WorkoutPatch holds the fields of a partial update; nil fields are left unchanged.
type WorkoutPatch struct {
	Name      *string
	StartedAt *time.Time
}

// TimeRange is inclusive on both ends.
type TimeRange struct {
	From time.Time
	To   time.Time
}

func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.From) && !t.After(r.To)
}

// DayWindow returns the calendar day of date in loc, from 00:00:00.000 to 23:59:59.999.
func DayWindow(date time.Time, loc *time.Location) TimeRange {
	y, m, d := date.In(loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	end := time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), loc)
	return TimeRange{From: start, To: end}
}

// ParseDay parses a YYYY-MM-DD string as midnight of that day in loc.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DayLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDay, s)
	}
	return t, nil
}
