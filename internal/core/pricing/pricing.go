// Package pricing computes the clearing price of a Dutch auction.
//
// Every function here is pure: the same inputs always produce the same
// price, and nothing reads a clock. Callers pass the instant to price.
package pricing

import (
	"errors"
	"fmt"
	"math/bits"
)

// ErrInvalidSchedule is returned for a schedule whose floor exceeds its
// start price, whose window is empty, or whose step interval is unusable.
var ErrInvalidSchedule = errors.New("invalid price schedule")

// Curve selects how the price moves between start and end.
type Curve uint8

const (
	// CurveLinear decays continuously at clock resolution.
	CurveLinear Curve = iota
	// CurveStepped holds the linear price constant within each step and
	// drops it at every step boundary.
	CurveStepped
)

func (c Curve) String() string {
	switch c {
	case CurveLinear:
		return "linear"
	case CurveStepped:
		return "stepped"
	default:
		return fmt.Sprintf("Curve(%d)", uint8(c))
	}
}

// ParseCurve maps a curve name to a Curve. The empty string is linear.
func ParseCurve(s string) (Curve, error) {
	switch s {
	case "", "linear":
		return CurveLinear, nil
	case "stepped":
		return CurveStepped, nil
	default:
		return 0, fmt.Errorf("%w: unknown curve %q", ErrInvalidSchedule, s)
	}
}

// Schedule is the full set of price terms of an auction.
type Schedule struct {
	StartPrice   uint64
	FloorPrice   uint64
	StartTime    int64
	EndTime      int64
	Curve        Curve
	StepInterval int64
}

// Validate checks the schedule bounds.
func (s Schedule) Validate() error {
	if err := validateBounds(s.StartPrice, s.FloorPrice, s.StartTime, s.EndTime); err != nil {
		return err
	}
	switch s.Curve {
	case CurveLinear:
		if s.StepInterval != 0 {
			return fmt.Errorf("%w: step interval requires the stepped curve", ErrInvalidSchedule)
		}
	case CurveStepped:
		if s.StepInterval <= 0 {
			return fmt.Errorf("%w: step interval must be positive", ErrInvalidSchedule)
		}
	default:
		return fmt.Errorf("%w: unknown curve %d", ErrInvalidSchedule, s.Curve)
	}
	return nil
}

// PriceAt returns the clearing price of the schedule at now.
func (s Schedule) PriceAt(now int64) (uint64, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}
	if s.Curve == CurveStepped && now > s.StartTime && now < s.EndTime {
		elapsed := uint64(now) - uint64(s.StartTime)
		step := uint64(s.StepInterval)
		now = int64(uint64(s.StartTime) + elapsed/step*step)
	}
	return linear(s.StartPrice, s.FloorPrice, s.StartTime, s.EndTime, now), nil
}

// PriceAt returns the linear clearing price at now.
//
// Before the window opens the price is startPrice and from endTime onward
// it is floorPrice. In between the price falls linearly and is truncated
// toward the floor, so it never exceeds the exact value on the curve.
func PriceAt(startPrice, floorPrice uint64, startTime, endTime, now int64) (uint64, error) {
	if err := validateBounds(startPrice, floorPrice, startTime, endTime); err != nil {
		return 0, err
	}
	return linear(startPrice, floorPrice, startTime, endTime, now), nil
}

func validateBounds(startPrice, floorPrice uint64, startTime, endTime int64) error {
	if floorPrice > startPrice {
		return fmt.Errorf("%w: floor price %d above start price %d", ErrInvalidSchedule, floorPrice, startPrice)
	}
	if endTime <= startTime {
		return fmt.Errorf("%w: end time %d not after start time %d", ErrInvalidSchedule, endTime, startTime)
	}
	return nil
}

// linear computes floor + spread*(end-now)/(end-start) with a 128-bit
// intermediate. Differences are taken in uint64 two's complement, which is
// exact because end > now > start.
func linear(startPrice, floorPrice uint64, startTime, endTime, now int64) uint64 {
	if now <= startTime {
		return startPrice
	}
	if now >= endTime {
		return floorPrice
	}
	spread := startPrice - floorPrice
	remaining := uint64(endTime) - uint64(now)
	duration := uint64(endTime) - uint64(startTime)

	// remaining < duration, so the quotient is below spread and hi < duration.
	hi, lo := bits.Mul64(spread, remaining)
	q, _ := bits.Div64(hi, lo, duration)
	return floorPrice + q
}
