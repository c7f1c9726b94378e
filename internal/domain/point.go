package domain

import "time"

// Kind names in the store.
const (
	KindRainPoints = "RAINPOINTS"
	KindNexrain    = "NEXRAIN"
)

// Field names shared by both kinds.
const (
	FieldPointName = "POINTNAME"
	FieldPointType = "POINTTYPE"
	FieldDT        = "DT"
	FieldDBZ       = "DBZ"
)

// PointTypeMTB tags the mountain-bike trail subset of points.
const PointTypeMTB = "MTB"

// Record is an untyped entity as returned by the store, keyed by field name.
type Record map[string]any

// RainPoint is a named monitoring location.
type RainPoint struct {
	Name string
	Type string
}

// Reading is a single radar sample at a point. A zero DT means the stored
// value was missing or not a timestamp; a nil DBZ means it was not numeric.
type Reading struct {
	PointName string
	DT        time.Time
	DBZ       *float64
}

// ParseRainPoint maps a raw RAINPOINTS entity. Missing or non-string fields
// come back empty.
func ParseRainPoint(rec Record) RainPoint {
	return RainPoint{
		Name: stringField(rec, FieldPointName),
		Type: stringField(rec, FieldPointType),
	}
}

// ParseReading maps a raw NEXRAIN entity.
func ParseReading(rec Record) Reading {
	r := Reading{PointName: stringField(rec, FieldPointName)}
	if t, ok := rec[FieldDT].(time.Time); ok {
		r.DT = t
	}
	r.DBZ = numberField(rec, FieldDBZ)
	return r
}

func stringField(rec Record, field string) string {
	s, _ := rec[field].(string)
	return s
}

// numberField accepts the integer and float encodings the loader has used for DBZ.
func numberField(rec Record, field string) *float64 {
	var v float64
	switch n := rec[field].(type) {
	case float64:
		v = n
	case float32:
		v = float64(n)
	case int64:
		v = float64(n)
	case int:
		v = float64(n)
	case int32:
		v = float64(n)
	default:
		return nil
	}
	return &v
}
