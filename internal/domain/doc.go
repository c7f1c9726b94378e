// Package domain models the NEXRAIN rain-gauge telemetry read from Cloud Datastore.
//
// # Data Source
//
// Two entity kinds are maintained by an upstream loader and are only ever read
// here:
//
//	RAINPOINTS  one entity per monitoring point
//	  POINTNAME  point identifier, e.g. "Station1"
//	  POINTTYPE  point category, e.g. "MTB"
//
//	NEXRAIN     one entity per radar sample at a point
//	  POINTNAME  name of the RAINPOINTS entity the sample belongs to
//	  DT         sample timestamp, stored in UTC
//	  DBZ        radar reflectivity (dBZ), integer or float
//
// Entities are schema-less. Raw entities arrive as a [Record] and are mapped to
// [RainPoint] or [Reading] immediately by [ParseRainPoint] and [ParseReading];
// nothing past the store boundary looks fields up by name.
//
// # Timestamps
//
// Timestamps are rendered without any timezone conversion in the 12-hour form
// "01/02/2006 03:04:05 PM" (see [FormatTimestamp]) alongside an RFC 3339 form
// for machines (see [ISOTimestamp]). The recent window is computed from the
// package clock in UTC, the same zone the store uses, so window bounds and
// sample times are directly comparable.
package domain
