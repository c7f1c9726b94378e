package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/nexrain-service/internal/domain"
)

func readPoints(path string) ([]domain.RainPoint, error) {
	rows, err := readCSV(path, domain.FieldPointName, domain.FieldPointType)
	if err != nil {
		return nil, err
	}
	points := make([]domain.RainPoint, 0, len(rows))
	for _, row := range rows {
		if row[0] == "" {
			continue
		}
		points = append(points, domain.RainPoint{Name: row[0], Type: row[1]})
	}
	return points, nil
}

func readReadings(path string) ([]domain.Reading, error) {
	rows, err := readCSV(path, domain.FieldPointName, domain.FieldDT, domain.FieldDBZ)
	if err != nil {
		return nil, err
	}
	readings := make([]domain.Reading, 0, len(rows))
	for i, row := range rows {
		dt, err := parseTime(row[1])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		r := domain.Reading{PointName: row[0], DT: dt}
		if row[2] != "" {
			v, err := strconv.ParseFloat(row[2], 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid %s %q", i+2, domain.FieldDBZ, row[2])
			}
			r.DBZ = &v
		}
		readings = append(readings, r)
	}
	return readings, nil
}

// readCSV returns data rows reordered to match cols, which must all appear in the header.
func readCSV(path string, cols ...string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()
	return parseCSV(f, cols...)
}

func parseCSV(r io.Reader, cols ...string) ([][]string, error) {
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("missing header")
	}

	colIdx := map[string]int{}
	for i, h := range rows[0] {
		colIdx[strings.ToUpper(strings.TrimSpace(h))] = i
	}
	idx := make([]int, len(cols))
	for i, c := range cols {
		j, ok := colIdx[c]
		if !ok {
			return nil, fmt.Errorf("missing column %s", c)
		}
		idx[i] = j
	}

	out := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make([]string, len(cols))
		for i, j := range idx {
			if j < len(row) {
				rec[i] = strings.TrimSpace(row[j])
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

// parseTime accepts RFC 3339 or the service's 12-hour display form, read as UTC.
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(domain.DisplayLayout, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid %s %q", domain.FieldDT, s)
}

// syntheticReadings generates one reading per point every interval over
// (end-span, end]. Values are deterministic so repeated seeding is stable.
func syntheticReadings(points []domain.RainPoint, end time.Time, span, interval time.Duration) []domain.Reading {
	end = end.Truncate(interval)
	steps := int(span / interval)

	readings := make([]domain.Reading, 0, len(points)*steps)
	for p, point := range points {
		for i := range steps {
			dbz := float64((i*7 + p*13) % 60)
			readings = append(readings, domain.Reading{
				PointName: point.Name,
				DT:        end.Add(-time.Duration(i) * interval),
				DBZ:       &dbz,
			})
		}
	}
	return readings
}
