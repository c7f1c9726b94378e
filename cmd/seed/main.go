// Command seed loads rain points and readings into Cloud Datastore, or into
// the emulator when DATASTORE_EMULATOR_HOST is set. Datastore settings come
// from the same environment variables as the service.
//
// Usage:
//
//	DATASTORE_EMULATOR_HOST=localhost:8081 go run ./cmd/seed \
//	  -points testdata/points.csv \
//	  -readings testdata/readings.csv \
//	  -synthetic 168h -interval 15m
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	dsadapter "github.com/couchcryptid/nexrain-service/internal/adapter/datastore"
	"github.com/couchcryptid/nexrain-service/internal/config"
	"github.com/couchcryptid/nexrain-service/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	pointsPath := flag.String("points", "", "CSV of POINTNAME,POINTTYPE rows")
	readingsPath := flag.String("readings", "", "CSV of POINTNAME,DT,DBZ rows")
	synthetic := flag.Duration("synthetic", 0, "generate readings for every point over this span ending now")
	interval := flag.Duration("interval", time.Hour, "spacing of synthetic readings")
	flag.Parse()

	if *pointsPath == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -points")
	}
	if *synthetic > 0 && *interval <= 0 {
		return fmt.Errorf("-interval must be positive")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	points, err := readPoints(*pointsPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", *pointsPath, err)
	}

	var readings []domain.Reading
	if *readingsPath != "" {
		readings, err = readReadings(*readingsPath)
		if err != nil {
			return fmt.Errorf("reading %s: %w", *readingsPath, err)
		}
	}
	if *synthetic > 0 {
		_, end := domain.RecentWindow()
		readings = append(readings, syntheticReadings(points, end, *synthetic, *interval)...)
	}

	ctx := context.Background()
	client, err := dsadapter.NewClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	seeder := dsadapter.NewSeeder(client, cfg.DatastoreNamespace)
	if err := seeder.PutRainPoints(ctx, points); err != nil {
		return err
	}
	log.Printf("%s: %d points", domain.KindRainPoints, len(points))

	if err := seeder.PutReadings(ctx, readings); err != nil {
		return err
	}
	log.Printf("%s: %d readings", domain.KindNexrain, len(readings))

	if host := os.Getenv("DATASTORE_EMULATOR_HOST"); host != "" {
		log.Printf("seeded emulator at %s (project %s)", host, cfg.DatastoreProjectID)
	}
	return nil
}
