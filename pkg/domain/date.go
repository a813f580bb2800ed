package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// dateTimeLayout is the zone-less ISO-8601 form records are emitted in.
const dateTimeLayout = "2006-01-02T15:04:05"

// acceptedDateLayouts are tried in order when parsing a date from the wire.
var acceptedDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	dateTimeLayout,
	time.DateOnly,
}

// Date is a calendar date (with optional time of day) exchanged as an
// ISO-8601 string. Values parsed without a zone are held in UTC and emitted
// without one.
type Date struct {
	time.Time
}

// NewDate builds a midnight UTC date.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts YYYY-MM-DD, YYYY-MM-DDTHH:MM:SS[.fff] and RFC 3339.
func ParseDate(s string) (Date, error) {
	for _, layout := range acceptedDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{Time: t}, nil
		}
	}
	return Date{}, fmt.Errorf("invalid date %q: expected ISO-8601", s)
}

// String renders the date in its wire form.
func (d Date) String() string {
	if d.Location() == time.UTC {
		return d.Format(dateTimeLayout)
	}
	return d.Format(time.RFC3339)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Equal compares instants, ignoring location.
func (d Date) Equal(other Date) bool {
	return d.Time.Equal(other.Time)
}
