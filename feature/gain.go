// Package feature exposes the operational-space pose error between a
// current and a desired relative pose, together with the adaptive
// proportional gain driven by that error.
package feature

import "fmt"

// Default adaptive gain parameters, matching the tuning the pregrasp
// controller ships with: strong correction near the target, gentle effort
// far from it.
const (
	DefaultNearGain  = 0.9
	DefaultFarGain   = 0.1
	DefaultNearError = 0.3
	DefaultFarError  = 1.0
)

// AdaptiveGain maps an error magnitude to a proportional gain. It is a pure
// function of its four parameters, fixed at construction: below NearError
// the gain saturates at NearGain, above FarError at FarGain, and in between
// it follows a cubic smoothstep so control effort never jumps.
type AdaptiveGain struct {
	nearGain float64
	farGain  float64
	nearErr  float64
	farErr   float64
}

func NewAdaptiveGain(nearGain, farGain, nearErr, farErr float64) (*AdaptiveGain, error) {
	if nearErr < 0 || farErr <= nearErr {
		return nil, fmt.Errorf("adaptive gain thresholds must satisfy 0 <= near (%f) < far (%f)", nearErr, farErr)
	}
	return &AdaptiveGain{
		nearGain: nearGain,
		farGain:  farGain,
		nearErr:  nearErr,
		farErr:   farErr,
	}, nil
}

// Gain returns the proportional gain for the given error magnitude.
func (ag *AdaptiveGain) Gain(errNorm float64) float64 {
	if errNorm < 0 {
		errNorm = -errNorm
	}
	switch {
	case errNorm <= ag.nearErr:
		return ag.nearGain
	case errNorm >= ag.farErr:
		return ag.farGain
	}
	s := (errNorm - ag.nearErr) / (ag.farErr - ag.nearErr)
	blend := s * s * (3 - 2*s)
	return ag.nearGain + (ag.farGain-ag.nearGain)*blend
}
