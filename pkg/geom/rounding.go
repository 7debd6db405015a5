package geom

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"
)

// RoundToGrid rounds v away from zero onto the grid. The result is rounded
// to 6 decimals to drop float noise introduced by the division.
func RoundToGrid(v, grid float64) float64 {
	if grid == 0 {
		return v
	}
	if v >= 0 {
		return scalar.Round(math.Ceil(v/grid-TolMM)*grid, 6)
	}
	return scalar.Round(math.Floor(v/grid+TolMM)*grid, 6)
}

// RoundToGridNearest rounds v to the nearest grid point
func RoundToGridNearest(v, grid float64) float64 {
	if grid == 0 {
		return v
	}
	return scalar.Round(math.Round(v/grid)*grid, 6)
}

// RoundToGridUp rounds v towards +inf onto the grid
func RoundToGridUp(v, grid float64) float64 {
	if grid == 0 {
		return v
	}
	return scalar.Round(math.Ceil(v/grid-TolMM)*grid, 6)
}

// RoundToGridDown rounds v towards -inf onto the grid
func RoundToGridDown(v, grid float64) float64 {
	if grid == 0 {
		return v
	}
	return scalar.Round(math.Floor(v/grid+TolMM)*grid, 6)
}
