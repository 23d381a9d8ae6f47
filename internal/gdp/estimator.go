// Package gdp holds the pure computation stages of the refresh pipeline:
// the randomized GDP estimator and the country/rate merge.
package gdp

import (
	"math/rand/v2"

	"github.com/shopspring/decimal"
)

// Multiplier bounds, uniform draw per record per refresh.
const (
	MultiplierMin = 1000
	MultiplierMax = 2000
)

// RandSource yields uniform floats in [0, 1). Injectable so tests can
// pin the multiplier and assert exact figures.
type RandSource func() float64

// Estimator derives estimated GDP figures from population and rate.
type Estimator struct {
	rand RandSource
}

// NewEstimator builds an estimator; a nil source falls back to the
// shared math/rand generator.
func NewEstimator(source RandSource) *Estimator {
	if source == nil {
		source = rand.Float64
	}
	return &Estimator{rand: source}
}

// Estimate computes population * m / rate with m drawn uniformly from
// [MultiplierMin, MultiplierMax). A null, zero, or negative rate yields
// a null estimate; this never divides by zero.
func (e *Estimator) Estimate(population int64, rate decimal.NullDecimal) decimal.NullDecimal {
	if !rate.Valid || !rate.Decimal.IsPositive() {
		return decimal.NullDecimal{}
	}

	multiplier := decimal.NewFromFloat(MultiplierMin + e.rand()*(MultiplierMax-MultiplierMin))
	estimate := decimal.NewFromInt(population).Mul(multiplier).Div(rate.Decimal)
	return decimal.NullDecimal{Decimal: estimate, Valid: true}
}
