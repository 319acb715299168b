package model

import (
    "fmt"
    "time"
)

// DateLayout is the wire and storage format of calendar dates.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string into a UTC midnight time.
func ParseDate(s string) (time.Time, error) {
    t, err := time.ParseInLocation(DateLayout, s, time.UTC)
    if err != nil {
        return time.Time{}, fmt.Errorf("%w: invalid date %q", ErrInvalidInput, s)
    }
    return t, nil
}

// FormatDate renders a date as YYYY-MM-DD.
func FormatDate(t time.Time) string { return t.UTC().Format(DateLayout) }

// Day truncates t to UTC midnight of its calendar day.
func Day(t time.Time) time.Time {
    y, m, d := t.UTC().Date()
    return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateRange is a half-open interval of days [Start, End).
type DateRange struct {
    Start time.Time
    End   time.Time
}

// Validate requires End to be strictly after Start.
func (r DateRange) Validate() error {
    if r.Start.IsZero() || r.End.IsZero() {
        return fmt.Errorf("%w: start and end dates are required", ErrInvalidInput)
    }
    if !r.End.After(r.Start) {
        return fmt.Errorf("%w: start date must be before end date", ErrInvalidInput)
    }
    return nil
}

// Overlaps reports whether the two ranges share at least one day.  Ranges
// that only touch at an endpoint do not overlap.
func (r DateRange) Overlaps(o DateRange) bool {
    return r.Start.Before(o.End) && o.Start.Before(r.End)
}
