package view

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPIDControllerDeadBandZeroesSmallOutput(t *testing.T) {
	p := NewPIDController(0.01, 0, 0)
	out := p.Update(1.0, 2.0, 1.0) // error 1.0 * kp 0.01 = 0.01, inside the (-0.01, 0.05) dead-band
	require.Zero(t, out)
}

func TestPIDControllerIntegralClampsAtLimit(t *testing.T) {
	p := NewPIDController(0, 1000, 0)
	p.SetOutputDeadBand(0, 0) // disable the dead-band so the clamp is directly observable
	for i := 0; i < 50; i++ {
		p.Update(0, 10.0, 1.0) // constant error of 10: unclamped, the integral would reach 500
	}
	require.LessOrEqual(t, p.Integral(), float32(100))
}

func TestPIDControllerIntegralInhibitionFreezesAccumulation(t *testing.T) {
	p := NewPIDController(0, 1, 0)
	p.SetOutputDeadBand(0, 0)
	p.Update(0, 1.0, 1.0)
	frozen := p.Integral()

	p.SetIntegralInhibitionEnabled(true)
	p.Update(0, 1.0, 1.0)
	require.Equal(t, frozen, p.Integral())
}

func TestPIDControllerProducesNegativeOutputWhenAboveSetpoint(t *testing.T) {
	p := NewPIDController(1.0, 0, 0)
	p.SetOutputDeadBand(0, 0)
	out := p.Update(2.0, 1.0, 1.0) // measured over setpoint -> error is negative
	require.Less(t, out, float32(0))
}
