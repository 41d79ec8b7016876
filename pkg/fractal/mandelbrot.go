package fractal

import (
	"math/cmplx"
)

const (
	MaxIterations = 1000
	// EscapeRadius сравнивается с |z|, а не с |z|^2
	EscapeRadius = 4.0
)

type Params struct {
	MaxIterations int
	EscapeRadius  float64
}

func DefaultParams() Params {
	return Params{MaxIterations: MaxIterations, EscapeRadius: EscapeRadius}
}

// RGB is one pixel, each channel in [0, depth].
type RGB [3]int

// Iterations returns how many steps of z <- z^2 + c ran before |z|
// exceeded the escape radius, capped at params.MaxIterations.
func Iterations(c complex128, params Params) int {
	var z complex128
	iteration := 0
	for cmplx.Abs(z) <= params.EscapeRadius && iteration < params.MaxIterations {
		z = z*z + c
		iteration++
	}
	return iteration
}

// Member reports whether the orbit of c survived the full iteration cap.
func Member(c complex128, params Params) bool {
	return Iterations(c, params) == params.MaxIterations
}

// Coordinate maps pixel (i, j) of a height x width grid onto the plane.
func Coordinate(i, j, height, width int) complex128 {
	re := 2.0 * (float64(j)/float64(width) - 0.75)
	im := (float64(i)/float64(height) - 0.5) * 2.0
	return complex(re, im)
}

// Shade colours a pixel. Points outside the set are white; points inside
// are a grey whose intensity encodes the worker that evaluated them. The
// inside grey stops one step short of white so membership stays readable
// from the colour alone.
func Shade(member bool, worker, tint, depth int) RGB {
	if !member {
		return RGB{depth, depth, depth}
	}
	v := min(max(worker*tint, 0), depth-1)
	return RGB{v, v, v}
}
