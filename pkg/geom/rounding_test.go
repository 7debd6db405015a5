package geom

import "testing"

func TestRoundToGrid(t *testing.T) {
	tests := []struct {
		name string
		fn   func(v, grid float64) float64
		v    float64
		grid float64
		want float64
	}{
		{"away from zero positive", RoundToGrid, 0.123, 0.01, 0.13},
		{"away from zero negative", RoundToGrid, -0.123, 0.01, -0.13},
		{"on grid", RoundToGrid, 0.12, 0.01, 0.12},
		{"on grid negative", RoundToGrid, -0.12, 0.01, -0.12},
		{"zero grid", RoundToGrid, 0.123, 0, 0.123},
		{"nearest down", RoundToGridNearest, 0.124, 0.01, 0.12},
		{"nearest up", RoundToGridNearest, 0.126, 0.01, 0.13},
		{"up negative", RoundToGridUp, -0.123, 0.01, -0.12},
		{"up positive", RoundToGridUp, 0.121, 0.01, 0.13},
		{"down positive", RoundToGridDown, 0.129, 0.01, 0.12},
		{"down negative", RoundToGridDown, -0.121, 0.01, -0.13},
		{"coarse grid", RoundToGrid, 1.01, 0.5, 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.v, tt.grid); got != tt.want {
				t.Errorf("round(%g, %g) = %g, want %g", tt.v, tt.grid, got, tt.want)
			}
		})
	}
}
