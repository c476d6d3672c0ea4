// Command intersect computes closest approaches to Earth for a batch of small
// bodies using JPL Horizons state vectors. It reads object identifiers from a
// CSV, queries Horizons per object over a date window, and writes
// horizons_intersections.csv with the minimum geocentric distance per object.
// Per-object failures are recorded in the output row, not fatal.
//
// Usage:
//
//	go run ./cmd/intersect \
//	  -input combined_objects.csv \
//	  -out horizons_intersections.csv \
//	  -start 2025-01-01 -stop 2025-12-31 -step 1d
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/orbitwatch/neo-hazard-etl/internal/adapter/horizons"
	"github.com/orbitwatch/neo-hazard-etl/internal/domain"
)

const defaultHorizonsURL = "https://ssd.jpl.nasa.gov/api/horizons.api"

// requestPause spaces out Horizons queries to stay polite to the public API.
const requestPause = 250 * time.Millisecond

type options struct {
	input       string
	out         string
	start       string
	stop        string
	step        string
	thresholdAU float64
	maxObjects  int
	baseURL     string
}

func main() {
	var opts options
	flag.StringVar(&opts.input, "input", "", "input CSV with object ids (columns: id, name)")
	flag.StringVar(&opts.out, "out", "horizons_intersections.csv", "output CSV path")
	flag.StringVar(&opts.start, "start", "2025-01-01", "window start (YYYY-MM-DD)")
	flag.StringVar(&opts.stop, "stop", "2025-12-31", "window stop (YYYY-MM-DD)")
	flag.StringVar(&opts.step, "step", "1d", "ephemeris step size")
	flag.Float64Var(&opts.thresholdAU, "threshold-au", 0.001, "intersection threshold in AU")
	flag.IntVar(&opts.maxObjects, "max", 50, "maximum objects to query (0 = no limit)")
	flag.StringVar(&opts.baseURL, "horizons-url", defaultHorizonsURL, "Horizons API base URL")
	flag.Parse()

	if opts.input == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(opts); code != 0 {
		os.Exit(code)
	}
}

// resultRow is one output line; Err is set when the object could not be
// evaluated.
type resultRow struct {
	ID     string
	Name   string
	Result *domain.ApproachResult
	Points int
	Err    string
}

func run(opts options) int {
	objects, err := readObjects(opts.input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read input: %v\n", err)
		return 1
	}
	if opts.maxObjects > 0 && len(objects) > opts.maxObjects {
		objects = objects[:opts.maxObjects]
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	client := horizons.NewClient(opts.baseURL, 30*time.Second, logger)
	thresholdKm := opts.thresholdAU * domain.AUKilometers

	ctx := context.Background()
	results := make([]resultRow, 0, len(objects))

	for i, obj := range objects {
		fmt.Printf("[%d/%d] querying Horizons for %s (%s)\n", i+1, len(objects), obj.id, obj.name)

		row := resultRow{ID: obj.id, Name: obj.name}
		points, err := client.Vectors(ctx, obj.id, opts.start, opts.stop, opts.step)
		if err != nil {
			row.Err = err.Error()
		} else {
			approach, err := domain.ClosestApproach(points, thresholdKm)
			if err != nil {
				row.Err = err.Error()
			} else {
				row.Result = &approach
				row.Points = len(points)
			}
		}
		results = append(results, row)

		if i < len(objects)-1 {
			time.Sleep(requestPause)
		}
	}

	if err := writeResults(opts.out, results); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: write output: %v\n", err)
		return 1
	}

	fmt.Printf("Checked %d objects; wrote %s\n", len(results), opts.out)
	return 0
}

type object struct {
	id   string
	name string
}

// readObjects loads object identifiers from the input CSV. The id column may
// be named id or neo_reference_id; a name column falls back to the id.
func readObjects(path string) ([]object, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	all, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(all) < 2 {
		return nil, fmt.Errorf("no data rows in %s", path)
	}

	colIdx := map[string]int{}
	for i, h := range all[0] {
		colIdx[strings.ToLower(strings.TrimSpace(h))] = i
	}

	get := func(row []string, names ...string) string {
		for _, n := range names {
			if i, ok := colIdx[n]; ok && i < len(row) {
				if v := strings.TrimSpace(row[i]); v != "" {
					return v
				}
			}
		}
		return ""
	}

	var objects []object
	for _, row := range all[1:] {
		id := get(row, "id", "neo_reference_id")
		if id == "" {
			continue
		}
		name := get(row, "name")
		if name == "" {
			name = id
		}
		objects = append(objects, object{id: id, name: name})
	}
	return objects, nil
}

func writeResults(path string, results []resultRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"id", "name", "min_dist_km", "min_epoch_jd", "intersects", "points", "error"}); err != nil {
		return err
	}

	for _, r := range results {
		row := []string{r.ID, r.Name, "", "", "", "", r.Err}
		if r.Result != nil {
			row[2] = strconv.FormatFloat(r.Result.MinDistanceKm, 'f', 1, 64)
			row[3] = strconv.FormatFloat(r.Result.MinEpochJD, 'f', -1, 64)
			row[4] = strconv.FormatBool(r.Result.Intersects)
			row[5] = strconv.Itoa(r.Points)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
