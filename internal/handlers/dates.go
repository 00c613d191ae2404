package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// jsonDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates, the two
// forms date pickers send.
type jsonDate struct {
	time.Time
}

func (d *jsonDate) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date must be a string")
	}
	if raw == "" {
		return nil
	}

	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			d.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("invalid date %q, expected YYYY-MM-DD or RFC 3339", raw)
}

// value returns the zero time for an absent date.
func (d *jsonDate) value() time.Time {
	if d == nil {
		return time.Time{}
	}
	return d.Time
}

// ptr returns nil for an absent or empty date.
func (d *jsonDate) ptr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}
