package fractal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMember_Boundaries(t *testing.T) {
	params := DefaultParams()

	assert.True(t, Member(0, params), "origin never escapes")
	assert.Equal(t, MaxIterations, Iterations(0, params))

	assert.False(t, Member(complex(10, 10), params))
	assert.LessOrEqual(t, Iterations(complex(10, 10), params), 2)

	assert.True(t, Member(complex(-1, 0), params), "-1 is a period two point")
	assert.False(t, Member(complex(1, 0), params))
}

func TestMember_LiteralEscapeRadius(t *testing.T) {
	params := Params{MaxIterations: 3, EscapeRadius: 4}
	// z: 0 -> 3 -> 12; |3| <= 4, so the second step still runs
	assert.Equal(t, 2, Iterations(complex(3, 0), params))
	assert.False(t, Member(complex(3, 0), params))

	// при радиусе 2 точка ушла бы уже после первого шага
	assert.Equal(t, 1, Iterations(complex(3, 0), Params{MaxIterations: 3, EscapeRadius: 2}))
}

func TestMember_Deterministic(t *testing.T) {
	params := DefaultParams()
	const h, w = 16, 16
	for i := range h {
		for j := range w {
			c := Coordinate(i, j, h, w)
			first := Member(c, params)
			for range 3 {
				assert.Equal(t, first, Member(c, params))
			}
		}
	}
}

func TestCoordinate(t *testing.T) {
	assert.Equal(t, complex(-1.5, -1.0), Coordinate(0, 0, 4, 4))
	assert.Equal(t, complex(0.0, 0.0), Coordinate(2, 3, 4, 4))
	assert.Equal(t, complex(-0.5, 0.5), Coordinate(3, 2, 4, 4))
}

func TestShade(t *testing.T) {
	assert.Equal(t, RGB{255, 255, 255}, Shade(false, 3, 30, 255))
	assert.Equal(t, RGB{90, 90, 90}, Shade(true, 3, 30, 255))
	assert.Equal(t, RGB{254, 254, 254}, Shade(true, 31, 30, 255))
	assert.Equal(t, RGB{0, 0, 0}, Shade(true, 0, 30, 255))
}
