package horizons

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/orbitwatch/neo-hazard-etl/internal/domain"
)

// Horizons text VECTORS tables sit between $$SOE and $$EOE markers, three
// lines per epoch:
//
//	2460676.500000000 = A.D. 2025-Jan-01 00:00:00.0000 TDB
//	 X = 1.513837E-01 Y =-9.257214E-01 Z = 2.529864E-05
//	 VX= 1.539010E-02 VY= 2.468558E-03 VZ=-1.873412E-07
//
// Positions are AU and velocities AU/day.
var (
	epochRe = regexp.MustCompile(`^(\d+\.\d+) =`)
	floatRe = regexp.MustCompile(`[+-]?\d+\.\d+E[+-]\d+|[+-]?\d+\.\d+`)
)

// ParseVectors extracts ephemeris points from a Horizons text response,
// converting AU to kilometers and AU/day to km/s. Partially populated epoch
// blocks are dropped. Returns points in table order.
func ParseVectors(text string) []domain.EphemerisPoint {
	var (
		points  []domain.EphemerisPoint
		inTable bool
		current block
	)

	for _, line := range strings.Split(text, "\n") {
		s := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(s, "$$SOE"):
			inTable = true
			continue
		case strings.HasPrefix(s, "$$EOE"):
			if p, ok := current.point(); ok {
				points = append(points, p)
			}
			return points
		}
		if !inTable {
			continue
		}

		if m := epochRe.FindStringSubmatch(s); m != nil {
			if p, ok := current.point(); ok {
				points = append(points, p)
			}
			current = block{}
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				current.epoch = &v
			}
			continue
		}

		if strings.HasPrefix(s, "X") && strings.Contains(s, "Y") && strings.Contains(s, "Z") {
			current.position = parseTriple(s)
			continue
		}
		if strings.Contains(s, "VX") && strings.Contains(s, "VY") && strings.Contains(s, "VZ") {
			current.velocity = parseTriple(s)
		}
	}

	return points
}

type block struct {
	epoch    *float64
	position *domain.Vec3
	velocity *domain.Vec3
}

// point assembles a finished block. The velocity row is optional: distance
// evaluation needs positions only.
func (b block) point() (domain.EphemerisPoint, bool) {
	if b.epoch == nil || b.position == nil {
		return domain.EphemerisPoint{}, false
	}
	p := domain.EphemerisPoint{
		EpochJD: *b.epoch,
		Position: domain.Vec3{
			X: b.position.X * domain.AUKilometers,
			Y: b.position.Y * domain.AUKilometers,
			Z: b.position.Z * domain.AUKilometers,
		},
	}
	if b.velocity != nil {
		p.Velocity = domain.Vec3{
			X: b.velocity.X * domain.AUKilometers / DaySeconds,
			Y: b.velocity.Y * domain.AUKilometers / DaySeconds,
			Z: b.velocity.Z * domain.AUKilometers / DaySeconds,
		}
	}
	return p, true
}

// parseTriple pulls the first three floats from a labeled component line.
func parseTriple(s string) *domain.Vec3 {
	vals := floatRe.FindAllString(s, 3)
	if len(vals) < 3 {
		return nil
	}
	x, errX := strconv.ParseFloat(vals[0], 64)
	y, errY := strconv.ParseFloat(vals[1], 64)
	z, errZ := strconv.ParseFloat(vals[2], 64)
	if errX != nil || errY != nil || errZ != nil {
		return nil
	}
	return &domain.Vec3{X: x, Y: y, Z: z}
}
