// Command probe checks a running nexrain service against its HTTP contract:
// routing, CORS, point list ordering, and the recent readings window.
//
// Usage:
//
//	go run ./cmd/probe -base-url http://localhost:8080 -point Station1
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	baseURL := flag.String("base-url", "http://localhost:8080", "service base URL")
	point := flag.String("point", "", "point to probe for recent readings (default: first MTB point)")
	timeout := flag.Duration("timeout", 30*time.Second, "per-request timeout")
	flag.Parse()

	p := &prober{
		baseURL: *baseURL,
		client:  &http.Client{Timeout: *timeout},
	}
	if code := run(p, *point); code != 0 {
		os.Exit(code)
	}
}

func run(p *prober, point string) int {
	fmt.Printf("=== NEXRAIN Contract Probe: %s ===\n\n", p.baseURL)

	points, pointsPhase := p.checkPoints()
	if point == "" && len(points) > 0 {
		point = points[0]
	}

	phases := []*phase{
		p.checkRouting(),
		pointsPhase,
		p.checkRecent(point),
		p.checkLimitClamp(point),
	}

	allPassed := true
	for _, ph := range phases {
		status := "\033[32mPASS\033[0m"
		if !ph.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(ph.errors))
			allPassed = false
		}
		fmt.Printf("  %-36s %s\n", ph.name, status)
	}

	for _, ph := range phases {
		if ph.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", ph.name)
		for i, e := range ph.errors {
			fmt.Printf("  %d. %s\n", i+1, e)
		}
	}

	fmt.Println()
	if !allPassed {
		fmt.Println("RESULT: FAIL")
		return 1
	}
	fmt.Println("RESULT: PASS")
	return 0
}
