package newsfeed

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the internal date format used for filtering and output.
const DateLayout = "2006-01-02"

// Date is a calendar date without time of day or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate returns the calendar date of t in t's location.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses text against each layout in order and returns the first
// match, ignoring any time of day. With no layouts, DateLayout is used.
func ParseDate(text string, layouts ...string) (Date, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Date{}, fmt.Errorf("empty date")
	}
	if len(layouts) == 0 {
		layouts = []string{DateLayout}
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, text); err == nil {
			return NewDate(t), nil
		}
	}

	return Date{}, fmt.Errorf("date %q does not match any of %v", text, layouts)
}

// String renders the date as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// IsZero reports whether d is the zero date.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// Equal compares two dates by their YYYY-MM-DD form.
func (d Date) Equal(other Date) bool {
	return d.String() == other.String()
}

// MarshalJSON encodes the date as a YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a YYYY-MM-DD string.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
