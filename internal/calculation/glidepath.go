package calculation

import (
	"math"

	"github.com/rpgo/allocation-planner/internal/domain"
)

// Glide path defaults, in years of age and bond percent
const (
	DefaultGlideStartAge      = 40
	DefaultGlideRetirementAge = 65
	DefaultBondMin            = 10
	DefaultBondMax            = 70

	minimumPlanningAge = 18
)

// GlidePath maps age to a suggested bond percentage along a quadratic curve.
// Bond share rises slowly after StartAge and accelerates toward RetirementAge.
type GlidePath struct {
	StartAge      int
	RetirementAge int
	BondMin       int
	BondMax       int
}

// DefaultGlidePath returns the 40→65 glide from 10% to 70% bonds
func DefaultGlidePath() GlidePath {
	return GlidePath{
		StartAge:      DefaultGlideStartAge,
		RetirementAge: DefaultGlideRetirementAge,
		BondMin:       DefaultBondMin,
		BondMax:       DefaultBondMax,
	}
}

// NewGlidePath builds a glide path from settings. Zero ages and nil bond
// bounds take the defaults.
func NewGlidePath(cfg domain.GlidePathConfig) GlidePath {
	gp := DefaultGlidePath()
	if cfg.StartAge > 0 {
		gp.StartAge = cfg.StartAge
	}
	if cfg.RetirementAge > 0 {
		gp.RetirementAge = cfg.RetirementAge
	}
	if cfg.BondMin != nil {
		gp.BondMin = *cfg.BondMin
	}
	if cfg.BondMax != nil {
		gp.BondMax = *cfg.BondMax
	}
	return gp.sanitized()
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (gp GlidePath) sanitized() GlidePath {
	gp.BondMin = clampInt(gp.BondMin, 0, 100)
	gp.BondMax = clampInt(gp.BondMax, 0, 100)
	if gp.BondMax < gp.BondMin {
		gp.BondMin, gp.BondMax = gp.BondMax, gp.BondMin
	}
	return gp
}

// BondPercent returns the suggested bond percentage for an age.
// Ages below 18 are treated as invalid and get BondMin.
func (gp GlidePath) BondPercent(age int) int {
	gp = gp.sanitized()
	if age < minimumPlanningAge || age < gp.StartAge {
		return gp.BondMin
	}
	if age >= gp.RetirementAge {
		return gp.BondMax
	}
	span := float64(gp.RetirementAge - gp.StartAge)
	progress := float64(age-gp.StartAge) / span
	bond := float64(gp.BondMin) + float64(gp.BondMax-gp.BondMin)*progress*progress
	return int(math.Round(bond))
}

// BondPercentForYearsToTarget treats the target date as RetirementAge and
// derives the equivalent age from the years remaining
func (gp GlidePath) BondPercentForYearsToTarget(years int) int {
	if years < 0 {
		years = 0
	}
	return gp.BondPercent(gp.RetirementAge - years)
}

// GlidePoint is one row of a rendered glide path
type GlidePoint struct {
	Age         int `json:"age"`
	BondPercent int `json:"bond_percent"`
}

// Curve evaluates the glide path for every age in [fromAge, toAge]
func (gp GlidePath) Curve(fromAge, toAge int) []GlidePoint {
	if toAge < fromAge {
		return nil
	}
	points := make([]GlidePoint, 0, toAge-fromAge+1)
	for age := fromAge; age <= toAge; age++ {
		points = append(points, GlidePoint{Age: age, BondPercent: gp.BondPercent(age)})
	}
	return points
}
