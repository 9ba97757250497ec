// Package calendar provides working-time calculation over a fixed business calendar.
package calendar

import (
	"fmt"
	"math"
	"time"
)

// Config holds working calendar configuration.
type Config struct {
	// UTCOffsetHours is the fixed offset of the calendar timezone from UTC.
	UTCOffsetHours int `json:"utc_offset_hours"   yaml:"utc_offset_hours"`
	// WorkdayStartHour is the hour the working day begins (local time).
	WorkdayStartHour int `json:"workday_start_hour" yaml:"workday_start_hour"`
	// WorkdayEndHour is the hour the working day ends (local time).
	WorkdayEndHour int `json:"workday_end_hour"   yaml:"workday_end_hour"`
	// Holidays is a list of recurring non-working days in "MM-DD" format.
	Holidays []string `json:"holidays"           yaml:"holidays"`
}

// DefaultConfig returns the default working calendar: 09:00-18:00 in UTC+3,
// weekends off, New Year holidays off.
func DefaultConfig() Config {
	return Config{
		UTCOffsetHours:   3,
		WorkdayStartHour: 9,
		WorkdayEndHour:   18,
		Holidays: []string{
			"01-01", "01-02", "01-03", "01-04", "01-05", "01-06", "01-07", "01-08",
			"02-23", "03-08", "05-01", "05-09", "06-12", "11-04",
		},
	}
}

// Validate validates calendar configuration.
func (c Config) Validate() error {
	if c.WorkdayStartHour < 0 || c.WorkdayStartHour > 23 {
		return fmt.Errorf("WorkdayStartHour must be between 0 and 23, got %d", c.WorkdayStartHour)
	}
	if c.WorkdayEndHour < 1 || c.WorkdayEndHour > 24 {
		return fmt.Errorf("WorkdayEndHour must be between 1 and 24, got %d", c.WorkdayEndHour)
	}
	if c.WorkdayEndHour <= c.WorkdayStartHour {
		return fmt.Errorf("WorkdayEndHour (%d) must be greater than WorkdayStartHour (%d)",
			c.WorkdayEndHour, c.WorkdayStartHour)
	}
	if c.UTCOffsetHours < -12 || c.UTCOffsetHours > 14 {
		return fmt.Errorf("UTCOffsetHours must be between -12 and 14, got %d", c.UTCOffsetHours)
	}
	for _, h := range c.Holidays {
		var month, day int
		if _, err := fmt.Sscanf(h, "%02d-%02d", &month, &day); err != nil {
			return fmt.Errorf("invalid holiday %q (must be MM-DD): %w", h, err)
		}
		if month < 1 || month > 12 || day < 1 || day > 31 {
			return fmt.Errorf("invalid holiday %q: month or day out of range", h)
		}
	}
	return nil
}

// Calendar computes working hours between two instants under a fixed
// business-hours calendar. Weekends and configured holidays contribute
// nothing; holidays recur every year by month and day.
type Calendar struct {
	loc       *time.Location
	startHour int
	endHour   int
	holidays  map[string]struct{}
}

// New creates a calendar from configuration.
func New(cfg Config) (*Calendar, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid calendar config: %w", err)
	}

	holidays := make(map[string]struct{}, len(cfg.Holidays))
	for _, h := range cfg.Holidays {
		holidays[h] = struct{}{}
	}

	name := fmt.Sprintf("UTC%+d", cfg.UTCOffsetHours)
	return &Calendar{
		loc:       time.FixedZone(name, cfg.UTCOffsetHours*3600),
		startHour: cfg.WorkdayStartHour,
		endHour:   cfg.WorkdayEndHour,
		holidays:  holidays,
	}, nil
}

// MustNew creates a calendar from configuration and panics on invalid config.
// Intended for the default configuration and tests.
func MustNew(cfg Config) *Calendar {
	c, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return c
}

// WorkingHours returns the number of working hours between start and end,
// rounded to 4 decimal places. Returns 0 when end is not after start.
func (c *Calendar) WorkingHours(start, end time.Time) float64 {
	if !end.After(start) {
		return 0
	}

	start = start.In(c.loc)
	end = end.In(c.loc)

	total := 0.0
	// Walk day by day; each working day contributes the overlap of
	// [start, end] with that day's business-hours window.
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, c.loc)
	for day.Before(end) {
		if c.isWorkingDay(day) {
			windowStart := day.Add(time.Duration(c.startHour) * time.Hour)
			windowEnd := day.Add(time.Duration(c.endHour) * time.Hour)

			overlapStart := maxTime(start, windowStart)
			overlapEnd := minTime(end, windowEnd)
			if overlapEnd.After(overlapStart) {
				total += overlapEnd.Sub(overlapStart).Hours()
			}
		}
		day = day.AddDate(0, 0, 1)
	}

	return Round(total)
}

// RawHours returns the elapsed hours between start and end without any
// calendar normalization, rounded to 4 decimal places. Returns 0 when end
// is not after start.
func (c *Calendar) RawHours(start, end time.Time) float64 {
	if !end.After(start) {
		return 0
	}
	return Round(end.Sub(start).Hours())
}

// isWorkingDay reports whether the given day (midnight in the calendar
// timezone) is a business day.
func (c *Calendar) isWorkingDay(day time.Time) bool {
	wd := day.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return false
	}
	key := fmt.Sprintf("%02d-%02d", int(day.Month()), day.Day())
	_, holiday := c.holidays[key]
	return !holiday
}

// Round rounds an hour value to 4 decimal places for floating-point stability.
func Round(hours float64) float64 {
	return math.Round(hours*10000) / 10000
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
