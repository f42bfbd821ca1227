package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

var ErrInvalidDate = errors.New("invalid date")

// dateLayouts lists the encodings the API has been seen to use, most specific first.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate parses a date or timestamp string in any of the accepted layouts.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidDate
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// Date is a time.Time that decodes from either a full timestamp or a bare
// calendar date. Missing, empty or unparsable values decode to the zero time
// instead of failing the enclosing document.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	d.Time = time.Time{}
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return nil
	}
	if t, err := ParseDate(s); err == nil {
		d.Time = t
	}
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(time.RFC3339))
}
