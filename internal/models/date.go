package models

import (
	"encoding/json"
	"time"

	"github.com/anonto42/property-listing/backend/pkg/parse"
)

// Date is a request date in any layout parse.Date accepts ("2025-06-01", RFC3339, ...).
// A value that does not parse leaves the date absent, the same as the CSV importer.
type Date struct {
	Time  time.Time
	Valid bool
}

func (d *Date) UnmarshalJSON(b []byte) error {
	*d = Date{}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		// numbers, objects: absent
		return nil
	}
	if t, ok := parse.Date(s); ok {
		*d = Date{Time: *t, Valid: true}
	}
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(d.Time)
}

// Ptr returns the date or nil when absent
func (d Date) Ptr() *time.Time {
	if !d.Valid {
		return nil
	}
	t := d.Time
	return &t
}
