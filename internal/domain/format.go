package domain

import "time"

const (
	// DisplayLayout is the 12-hour clock format used for every human-readable timestamp.
	DisplayLayout = "01/02/2006 03:04:05 PM"

	// ISOLayout is the machine-readable companion of DisplayLayout.
	ISOLayout = time.RFC3339Nano
)

// FormatTimestamp renders t with DisplayLayout in t's own location. The zero
// time yields nil so it encodes as JSON null.
func FormatTimestamp(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.Format(DisplayLayout)
	return &s
}

// ISOTimestamp renders t with ISOLayout, or nil for the zero time.
func ISOTimestamp(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.Format(ISOLayout)
	return &s
}
